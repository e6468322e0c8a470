package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/race-insight-platform/internal/insight-service/dto"
	"github.com/radieske/race-insight-platform/internal/insight-service/insights"
	"github.com/radieske/race-insight-platform/internal/insight-service/movers"
	"github.com/radieske/race-insight-platform/internal/insight-service/prob"
	"github.com/radieske/race-insight-platform/internal/insight-service/repo"
)

func toProbEntries(entries []repo.RaceEntry) []prob.Entry {
	out := make([]prob.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, prob.Entry{
			HorseID:   e.HorseID,
			HorseName: e.HorseName,
			LR:        e.LR,
			RF:        e.RF,
			GBM:       e.GBM,
			XGB:       e.XGB,
			MLP:       e.MLP,
			Ensemble:  e.Ensemble,
		})
	}
	return out
}

func (s *Server) getRaceProbabilities(w http.ResponseWriter, r *http.Request) {
	raceID := chi.URLParam(r, "raceId")

	rows, err := s.store.RaceEntries(r.Context(), raceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
		return
	}

	entries := toProbEntries(rows)
	augmented := prob.WithNormalizedEnsemble(entries)

	runners := make([]dto.RunnerView, 0, len(augmented))
	for _, a := range augmented {
		runners = append(runners, dto.RunnerView{
			HorseID:            a.HorseID,
			HorseName:          a.HorseName,
			NormalizedEnsemble: a.NormalizedEnsemble,
			DisplayPct:         prob.FormatPct(a.NormalizedEnsemble),
			Stars:              prob.Stars(a.NormalizedEnsemble),
			Tier:               prob.TierColor(a.NormalizedEnsemble),
		})
	}

	writeData(w, dto.ProbabilitiesResponse{
		RaceID:     raceID,
		Normalized: prob.NormalizeAll(entries),
		Runners:    runners,
	})
}

func (s *Server) getMovers(w http.ResponseWriter, r *http.Request) {
	changes, err := s.store.MovementsForDay(r.Context(), s.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
		return
	}

	steamers := movers.DeriveSteamers(changes)
	writeData(w, dto.MoversResponse{
		Movers: steamers,
		Races:  movers.GroupByRace(steamers),
	})
}

func (s *Server) getInsights(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.EntriesForDay(r.Context(), s.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
		return
	}

	intents := insights.TrainerIntents(entries)

	records, err := s.store.CourseRecords(r.Context(), insights.Courses(entries))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
		return
	}

	resp := dto.InsightsResponse{
		TrainerIntents:    intents,
		CourseSpecialists: insights.CourseSpecialists(records),
	}

	// comentário é acessório: falha vira warning, nunca derruba o payload
	if s.commentary != nil {
		changes, err := s.store.MovementsForDay(r.Context(), s.now())
		if err == nil {
			note, err := s.commentary.DailyNote(r.Context(), movers.DeriveSteamers(changes), intents)
			if err != nil {
				s.log.Warn("commentary generation failed", zap.Error(err))
			} else {
				resp.Commentary = note
			}
		}
	}

	writeData(w, resp)
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}

	// horse_id é obrigatório: não há resolução difusa por nome
	missing := ""
	switch {
	case req.HorseID == "":
		missing = "horse_id"
	case req.HorseName == "":
		missing = "horse_name"
	case req.RaceID == "":
		missing = "race_id"
	case req.Course == "":
		missing = "course"
	case req.OffTime == "":
		missing = "off_time"
	}
	if missing != "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "missing required field: "+missing)
		return
	}
	if req.BetAmount <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "bet_amount must be greater than 0")
		return
	}
	if req.Odds <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "odds must be greater than 0")
		return
	}

	bet, newBalance, err := s.bets.PlaceBet(r.Context(), &repo.Bet{
		UserID:    user.ID,
		RaceID:    req.RaceID,
		HorseID:   req.HorseID,
		HorseName: req.HorseName,
		Course:    req.Course,
		OffTime:   req.OffTime,
		BetAmount: req.BetAmount,
		Odds:      req.Odds,
	})
	if err != nil {
		if errors.Is(err, repo.ErrInsufficientFunds) {
			writeError(w, http.StatusBadRequest, "INSUFFICIENT_FUNDS", "bankroll does not cover the stake")
			return
		}
		writeError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
		return
	}

	writeData(w, dto.PlaceBetResponse{Bet: bet, NewBalance: newBalance})
}

func (s *Server) cancelBet(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req dto.CancelBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}
	if req.BetID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "missing required field: bet_id")
		return
	}

	refunded, newBalance, err := s.bets.CancelBet(r.Context(), user.ID, req.BetID)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			writeError(w, http.StatusNotFound, "BET_NOT_FOUND", "bet not found")
		case errors.Is(err, repo.ErrBetNotPending):
			writeError(w, http.StatusBadRequest, "BET_NOT_PENDING", "only pending bets can be cancelled")
		default:
			writeError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
		}
		return
	}

	writeData(w, dto.CancelBetResponse{BetID: req.BetID, Refunded: refunded, NewBalance: newBalance})
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	bets, err := s.store.ListBets(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
		return
	}
	if bets == nil {
		bets = []repo.Bet{}
	}
	writeData(w, bets)
}

func (s *Server) getBankroll(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	br, err := s.store.GetOrCreateBankroll(r.Context(), user.ID, s.starting)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
		return
	}
	writeData(w, dto.BankrollResponse{UserID: br.UserID, CurrentAmount: br.CurrentAmount})
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "amount must be greater than 0")
		return
	}

	if _, err := s.store.GetOrCreateBankroll(r.Context(), user.ID, s.starting); err != nil {
		writeError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
		return
	}
	newBalance, err := s.store.AdjustBankroll(r.Context(), user.ID, req.Amount, "deposit")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
		return
	}
	writeData(w, dto.BankrollResponse{UserID: user.ID, CurrentAmount: newBalance})
}

func (s *Server) addShortlist(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req dto.AddShortlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		return
	}
	if req.HorseID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "missing required field: horse_id")
		return
	}
	if req.RaceID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "missing required field: race_id")
		return
	}

	id, err := s.store.AddShortlist(r.Context(), &repo.ShortlistEntry{
		UserID:    user.ID,
		HorseID:   req.HorseID,
		HorseName: req.HorseName,
		RaceID:    req.RaceID,
		Course:    req.Course,
		RaceTime:  req.RaceTime,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
		return
	}
	writeData(w, map[string]string{"id": id})
}

func (s *Server) removeShortlist(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.RemoveShortlist(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "shortlist entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
		return
	}
	writeData(w, map[string]string{"id": id})
}

func (s *Server) listShortlist(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	entries, err := s.store.ListShortlist(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
		return
	}

	now := s.now()
	nowMinutes := now.Hour()*60 + now.Minute()

	view := dto.ShortlistView{Upcoming: []repo.ShortlistEntry{}, Past: []repo.ShortlistEntry{}}
	for _, e := range entries {
		if movers.IsUpcoming(e.RaceTime, nowMinutes) {
			view.Upcoming = append(view.Upcoming, e)
		} else {
			view.Past = append(view.Past, e)
		}
	}
	writeData(w, view)
}
