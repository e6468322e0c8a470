package events

import "time"

// Evento publicado no tópico "race_results" quando uma corrida é oficializada.
type RaceResult struct {
	RaceID        string    `json:"race_id"`
	Course        string    `json:"course"`
	OffTime       string    `json:"off_time"`
	WinnerHorseID string    `json:"winner_horse_id"`
	OfficialAt    time.Time `json:"official_at"`
	TsUnixMs      int64     `json:"ts_unix_ms"`
}
