package topics

const (
	// Odds
	OddsChanges = "odds_changes"

	// Resultados
	RaceResults    = "race_results"
	RaceResultsDLQ = "race_results_dlq"
)
