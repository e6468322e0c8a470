package movers

import (
	"math"
	"sort"
	"time"
)

// SteamerThresholdPct é o encurtamento mínimo (em %) para entrar no board.
const SteamerThresholdPct = 10.0

// Change é uma observação do log de movimentação de mercado do dia.
type Change struct {
	RaceID       string    `json:"race_id"`
	HorseID      string    `json:"horse_id"`
	HorseName    string    `json:"horse_name"`
	Course       string    `json:"course"`
	OffTime      string    `json:"off_time"`
	Direction    string    `json:"direction"` // "in" | "out"
	ChangePct    float64   `json:"change_pct"`
	InitialPrice float64   `json:"initial_price"`
	CurrentPrice float64   `json:"current_price"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Steamer é um cavalo cujo preço encurtou pelo menos SteamerThresholdPct
// hoje, deduplicado por (horse_id, race_id).
type Steamer struct {
	RaceID          string  `json:"race_id"`
	HorseID         string  `json:"horse_id"`
	HorseName       string  `json:"horse_name"`
	Course          string  `json:"course"`
	OffTime         string  `json:"off_time"`
	InitialOdds     float64 `json:"initial_odds"`
	CurrentOdds     float64 `json:"current_odds"`
	FractionalOdds  string  `json:"fractional_odds"`
	OddsMovementPct float64 `json:"odds_movement_pct"`
	TotalMovements  int     `json:"total_movements"`
}

// RaceGroup agrupa os steamers de uma mesma corrida (course + off_time).
type RaceGroup struct {
	Course   string    `json:"course"`
	OffTime  string    `json:"off_time"`
	Steamers []Steamer `json:"steamers"`
}

// DeriveSteamers filtra o log do dia para encurtamentos relevantes e
// colapsa observações repetidas do mesmo cavalo na mesma corrida.
//
// Primeira ocorrência semeia o registro; as seguintes atualizam o preço
// corrente, recalculam a fração, guardam o máximo de movimento e contam.
// Resultado na ordem de primeira aparição no log.
func DeriveSteamers(changes []Change) []Steamer {
	type key struct{ horseID, raceID string }

	index := make(map[key]int)
	out := make([]Steamer, 0)

	for _, c := range changes {
		if c.Direction != "in" {
			continue
		}
		movement := math.Abs(c.ChangePct)
		if movement < SteamerThresholdPct {
			continue
		}

		k := key{c.HorseID, c.RaceID}
		if i, ok := index[k]; ok {
			s := &out[i]
			s.CurrentOdds = c.CurrentPrice
			s.FractionalOdds = ToFractional(c.CurrentPrice)
			if movement > s.OddsMovementPct {
				s.OddsMovementPct = movement
			}
			s.TotalMovements++
			continue
		}

		index[k] = len(out)
		out = append(out, Steamer{
			RaceID:          c.RaceID,
			HorseID:         c.HorseID,
			HorseName:       c.HorseName,
			Course:          c.Course,
			OffTime:         c.OffTime,
			InitialOdds:     c.InitialPrice,
			CurrentOdds:     c.CurrentPrice,
			FractionalOdds:  ToFractional(c.CurrentPrice),
			OddsMovementPct: movement,
			TotalMovements:  1,
		})
	}

	return out
}

// GroupByRace organiza os steamers em baldes por corrida, ordenados pelo
// relógio heurístico de RaceClockMinutes (e por course no empate).
func GroupByRace(steamers []Steamer) []RaceGroup {
	type key struct{ course, offTime string }

	index := make(map[key]int)
	groups := make([]RaceGroup, 0)

	for _, s := range steamers {
		k := key{s.Course, s.OffTime}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, RaceGroup{Course: s.Course, OffTime: s.OffTime})
		}
		groups[i].Steamers = append(groups[i].Steamers, s)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		ta, tb := RaceClockMinutes(groups[a].OffTime), RaceClockMinutes(groups[b].OffTime)
		if ta != tb {
			return ta < tb
		}
		return groups[a].Course < groups[b].Course
	})

	return groups
}
