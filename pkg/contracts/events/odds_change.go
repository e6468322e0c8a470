package events

import "time"

// Evento publicado no tópico "odds_changes".
// Cada observação é um delta de preço de um cavalo dentro de uma corrida.
type OddsChange struct {
	RaceID       string    `json:"race_id"`
	HorseID      string    `json:"horse_id"`
	HorseName    string    `json:"horse_name"`
	Course       string    `json:"course"`
	OffTime      string    `json:"off_time"` // "2:30", formato do racecard
	Direction    string    `json:"direction"` // "in" (encurtou) | "out" (alongou)
	ChangePct    float64   `json:"change_pct"`
	InitialPrice float64   `json:"initial_price"` // odd decimal
	CurrentPrice float64   `json:"current_price"`
	RecordedAt   time.Time `json:"recorded_at"`
	Source       string    `json:"source"` // "feed-simulator"
}
