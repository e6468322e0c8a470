package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/race-insight-platform/internal/insight-service/auth"
	"github.com/radieske/race-insight-platform/internal/insight-service/betting"
	"github.com/radieske/race-insight-platform/internal/insight-service/commentary"
	"github.com/radieske/race-insight-platform/internal/insight-service/dto"
	"github.com/radieske/race-insight-platform/internal/insight-service/repo"
)

// Server expõe a API pública de insight: racecard, movers, apostas,
// bankroll, shortlist e insights agregados.
type Server struct {
	log        *zap.Logger
	store      repo.Store
	verifier   auth.Verifier
	bets       *betting.Service
	commentary *commentary.Generator // nil = comentário desligado
	starting   float64
	liveWS     http.HandlerFunc // opcional: WS de movers ao vivo

	// injetável nos testes; horário usado pelo relógio de corrida
	now func() time.Time
}

// WithLiveMovers registra o handler WebSocket de movers ao vivo.
// O upgrade de WS não carrega header Authorization; a rota fica fora do
// middleware de auth.
func (s *Server) WithLiveMovers(h http.HandlerFunc) { s.liveWS = h }

func NewServer(log *zap.Logger, store repo.Store, verifier auth.Verifier,
	bets *betting.Service, gen *commentary.Generator, startingBankroll float64) *Server {
	return &Server{
		log:        log,
		store:      store,
		verifier:   verifier,
		bets:       bets,
		commentary: gen,
		starting:   startingBankroll,
		now:        time.Now,
	}
}

// Router monta as rotas públicas. Tudo sob /v1 exige bearer token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Route("/v1", func(r chi.Router) {
		if s.liveWS != nil {
			r.Get("/movers/live", s.liveWS)
		}

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/races/{raceId}/probabilities", s.getRaceProbabilities)
			r.Get("/movers", s.getMovers)
			r.Get("/insights", s.getInsights)

			r.Post("/bets", s.placeBet)
			r.Post("/bets/cancel", s.cancelBet)
			r.Get("/bets", s.listBets)

			r.Get("/bankroll", s.getBankroll)
			r.Post("/bankroll/deposit", s.deposit)

			r.Post("/shortlist", s.addShortlist)
			r.Delete("/shortlist/{id}", s.removeShortlist)
			r.Get("/shortlist", s.listShortlist)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, dto.Envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.Envelope{
		Success: false,
		Error:   &dto.ErrorBody{Code: code, Message: message},
	})
}
