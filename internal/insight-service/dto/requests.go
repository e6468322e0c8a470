package dto

type PlaceBetRequest struct {
	HorseID   string  `json:"horse_id"`
	HorseName string  `json:"horse_name"`
	RaceID    string  `json:"race_id"`
	Course    string  `json:"course"`
	OffTime   string  `json:"off_time"`
	BetAmount float64 `json:"bet_amount"`
	Odds      float64 `json:"odds"` // odd decimal que o cliente viu
}

type CancelBetRequest struct {
	BetID string `json:"bet_id"`
}

type DepositRequest struct {
	Amount float64 `json:"amount"`
}

type AddShortlistRequest struct {
	HorseID   string `json:"horse_id"`
	HorseName string `json:"horse_name"`
	RaceID    string `json:"race_id"`
	Course    string `json:"course"`
	RaceTime  string `json:"race_time"`
}
