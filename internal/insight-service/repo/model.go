package repo

import "time"

// RaceEntry é uma linha do racecard com os scores crus por modelo.
// Os scores não somam 1 dentro da corrida; a normalização é feita na leitura.
type RaceEntry struct {
	RaceID           string  `json:"race_id"`
	HorseID          string  `json:"horse_id"`
	HorseName        string  `json:"horse_name"`
	Course           string  `json:"course"`
	OffTime          string  `json:"off_time"`
	Trainer          string  `json:"trainer"`
	DistanceFurlongs float64 `json:"distance_furlongs"`
	LR               float64 `json:"lr_prob"`
	RF               float64 `json:"rf_prob"`
	GBM              float64 `json:"gbm_prob"`
	XGB              float64 `json:"xgb_prob"`
	MLP              float64 `json:"mlp_prob"`
	Ensemble         float64 `json:"ensemble_prob"`
}

// Bet é o modelo persistido no Postgres.
type Bet struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	RaceID          string     `json:"race_id"`
	HorseID         string     `json:"horse_id"`
	HorseName       string     `json:"horse_name"`
	Course          string     `json:"course"`
	OffTime         string     `json:"off_time"`
	BetAmount       float64    `json:"bet_amount"`
	Odds            float64    `json:"odds"`
	PotentialReturn float64    `json:"potential_return"`
	Status          string     `json:"status"` // pending | won | lost
	CreatedAt       time.Time  `json:"created_at"`
	SettledAt       *time.Time `json:"settled_at,omitempty"`
}

// Bankroll é o saldo corrente de um usuário.
type Bankroll struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	CurrentAmount float64 `json:"current_amount"`
}

// ShortlistEntry é um cavalo marcado pelo usuário para acompanhar.
type ShortlistEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	HorseID   string    `json:"horse_id"`
	HorseName string    `json:"horse_name"`
	RaceID    string    `json:"race_id"`
	Course    string    `json:"course"`
	RaceTime  string    `json:"race_time"`
	CreatedAt time.Time `json:"created_at"`
}

// CourseRecord resume o retrospecto de um cavalo num hipódromo.
type CourseRecord struct {
	HorseID   string `json:"horse_id"`
	HorseName string `json:"horse_name"`
	Course    string `json:"course"`
	Runs      int    `json:"runs"`
	Wins      int    `json:"wins"`
}
