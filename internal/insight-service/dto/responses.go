package dto

import (
	"github.com/radieske/race-insight-platform/internal/insight-service/insights"
	"github.com/radieske/race-insight-platform/internal/insight-service/movers"
	"github.com/radieske/race-insight-platform/internal/insight-service/repo"
)

// Envelope é o envelope JSON comum de todas as respostas.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carrega um código estável e uma mensagem legível.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RunnerView é um runner do racecard pronto para exibição.
type RunnerView struct {
	HorseID            string  `json:"horse_id"`
	HorseName          string  `json:"horse_name"`
	NormalizedEnsemble float64 `json:"normalized_ensemble"`
	DisplayPct         string  `json:"display_pct"`
	Stars              int     `json:"stars"`
	Tier               string  `json:"tier"`
}

type ProbabilitiesResponse struct {
	RaceID     string                        `json:"race_id"`
	Normalized map[string]map[string]float64 `json:"normalized"` // campo -> horse_id -> prob
	Runners    []RunnerView                  `json:"runners"`
}

type MoversResponse struct {
	Movers []movers.Steamer   `json:"movers"`
	Races  []movers.RaceGroup `json:"races"`
}

type InsightsResponse struct {
	TrainerIntents    []insights.TrainerIntent    `json:"trainer_intents"`
	CourseSpecialists []insights.CourseSpecialist `json:"course_specialists"`
	Commentary        string                      `json:"commentary,omitempty"`
}

type PlaceBetResponse struct {
	Bet        *repo.Bet `json:"bet"`
	NewBalance float64   `json:"new_balance"`
}

type CancelBetResponse struct {
	BetID      string  `json:"bet_id"`
	Refunded   float64 `json:"refunded"`
	NewBalance float64 `json:"new_balance"`
}

type BankrollResponse struct {
	UserID        string  `json:"user_id"`
	CurrentAmount float64 `json:"current_amount"`
}

// ShortlistView separa a lista do usuário em corridas por vir e passadas,
// pelo mesmo relógio heurístico do board de movers.
type ShortlistView struct {
	Upcoming []repo.ShortlistEntry `json:"upcoming"`
	Past     []repo.ShortlistEntry `json:"past"`
}
