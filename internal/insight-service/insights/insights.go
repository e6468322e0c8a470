package insights

import (
	"fmt"
	"sort"

	"github.com/radieske/race-insight-platform/internal/insight-service/repo"
)

// Limiares dos heurísticos de insight.
const (
	specialistMinRuns       = 3
	specialistMinStrikeRate = 0.25
)

// TrainerIntent sinaliza um treinador que mandou um único representante
// para a reunião — leitura clássica de intenção no turfe.
type TrainerIntent struct {
	Trainer   string  `json:"trainer"`
	HorseID   string  `json:"horse_id"`
	HorseName string  `json:"horse_name"`
	RaceID    string  `json:"race_id"`
	Course    string  `json:"course"`
	OffTime   string  `json:"off_time"`
	Ensemble  float64 `json:"ensemble_prob"`
	Reason    string  `json:"reason"`
}

// CourseSpecialist é um cavalo com retrospecto forte no hipódromo do dia.
type CourseSpecialist struct {
	HorseID    string  `json:"horse_id"`
	HorseName  string  `json:"horse_name"`
	Course     string  `json:"course"`
	Runs       int     `json:"runs"`
	Wins       int     `json:"wins"`
	StrikeRate float64 `json:"strike_rate"`
}

// TrainerIntents varre o racecard do dia e devolve os representantes
// únicos de cada treinador por reunião, ordenados por ensemble cru.
func TrainerIntents(entries []repo.RaceEntry) []TrainerIntent {
	type key struct{ trainer, course string }

	counts := make(map[key]int)
	for _, e := range entries {
		if e.Trainer == "" {
			continue
		}
		counts[key{e.Trainer, e.Course}]++
	}

	var out []TrainerIntent
	for _, e := range entries {
		if e.Trainer == "" || counts[key{e.Trainer, e.Course}] != 1 {
			continue
		}
		out = append(out, TrainerIntent{
			Trainer:   e.Trainer,
			HorseID:   e.HorseID,
			HorseName: e.HorseName,
			RaceID:    e.RaceID,
			Course:    e.Course,
			OffTime:   e.OffTime,
			Ensemble:  e.Ensemble,
			Reason:    fmt.Sprintf("only runner for %s at %s today", e.Trainer, e.Course),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Ensemble > out[j].Ensemble })
	return out
}

// CourseSpecialists filtra o retrospecto por corridas suficientes e taxa
// de vitória mínima, ordenando da maior taxa para a menor.
func CourseSpecialists(records []repo.CourseRecord) []CourseSpecialist {
	var out []CourseSpecialist
	for _, r := range records {
		if r.Runs < specialistMinRuns {
			continue
		}
		rate := float64(r.Wins) / float64(r.Runs)
		if rate < specialistMinStrikeRate {
			continue
		}
		out = append(out, CourseSpecialist{
			HorseID:    r.HorseID,
			HorseName:  r.HorseName,
			Course:     r.Course,
			Runs:       r.Runs,
			Wins:       r.Wins,
			StrikeRate: rate,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].StrikeRate > out[j].StrikeRate })
	return out
}

// Courses devolve os hipódromos distintos do racecard, na ordem de aparição.
func Courses(entries []repo.RaceEntry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		if e.Course != "" && !seen[e.Course] {
			seen[e.Course] = true
			out = append(out, e.Course)
		}
	}
	return out
}
