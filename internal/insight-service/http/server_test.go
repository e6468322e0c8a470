package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/race-insight-platform/internal/insight-service/auth"
	"github.com/radieske/race-insight-platform/internal/insight-service/betting"
	"github.com/radieske/race-insight-platform/internal/insight-service/movers"
	"github.com/radieske/race-insight-platform/internal/insight-service/repo"
)

type fakeVerifier struct {
	user *auth.User
	err  error
}

func (f *fakeVerifier) Verify(_ context.Context, _ string) (*auth.User, error) {
	return f.user, f.err
}

func newTestServer(t *testing.T, store *repo.Memory) *Server {
	t.Helper()
	log := zap.NewNop()
	s := NewServer(log, store, &fakeVerifier{user: &auth.User{ID: "u1"}},
		betting.New(log, store, 100), nil, 100)
	// relógio fixo às 15:00 para classificação upcoming/past determinística
	s.now = func() time.Time {
		return time.Date(2025, 6, 14, 15, 0, 0, 0, time.UTC)
	}
	return s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (bool, json.RawMessage, map[string]string) {
	t.Helper()
	var env struct {
		Success bool              `json:"success"`
		Data    json.RawMessage   `json:"data"`
		Error   map[string]string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid envelope %q: %v", rec.Body.String(), err)
	}
	return env.Success, env.Data, env.Error
}

func TestPreflightCORS(t *testing.T) {
	s := newTestServer(t, repo.NewMemory())
	req := httptest.NewRequest(http.MethodOptions, "/v1/bets", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("preflight status: got %d want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("preflight body should be empty, got %q", rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin: got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "authorization, x-client-info, apikey, content-type" {
		t.Errorf("allow-headers: got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "POST, GET, OPTIONS, PUT, DELETE, PATCH" {
		t.Errorf("allow-methods: got %q", got)
	}
}

func TestMissingToken(t *testing.T) {
	s := newTestServer(t, repo.NewMemory())
	req := httptest.NewRequest(http.MethodGet, "/v1/bets", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want 401", rec.Code)
	}
	_, _, errBody := decodeEnvelope(t, rec)
	if errBody["code"] != "MISSING_TOKEN" {
		t.Errorf("code: got %q", errBody["code"])
	}
}

func TestInvalidToken(t *testing.T) {
	s := newTestServer(t, repo.NewMemory())
	s.verifier = &fakeVerifier{err: auth.ErrInvalidToken}

	rec := doJSON(t, s.Router(), http.MethodGet, "/v1/bets", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want 401", rec.Code)
	}
	_, _, errBody := decodeEnvelope(t, rec)
	if errBody["code"] != "INVALID_TOKEN" {
		t.Errorf("code: got %q", errBody["code"])
	}
}

func TestAuthNotConfigured(t *testing.T) {
	s := newTestServer(t, repo.NewMemory())
	s.verifier = &fakeVerifier{err: auth.ErrNotConfigured}

	rec := doJSON(t, s.Router(), http.MethodGet, "/v1/bets", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d want 500", rec.Code)
	}
	_, _, errBody := decodeEnvelope(t, rec)
	if errBody["code"] != "CONFIG_ERROR" {
		t.Errorf("code: got %q", errBody["code"])
	}
}

func TestPlaceBetValidationEchoesField(t *testing.T) {
	s := newTestServer(t, repo.NewMemory())

	rec := doJSON(t, s.Router(), http.MethodPost, "/v1/bets", map[string]any{
		"horse_name": "Sea Mist", "race_id": "r1", "course": "Ascot",
		"off_time": "2:30", "bet_amount": 10, "odds": 5,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
	_, _, errBody := decodeEnvelope(t, rec)
	if errBody["code"] != "VALIDATION_ERROR" {
		t.Errorf("code: got %q", errBody["code"])
	}
	if errBody["message"] != "missing required field: horse_id" {
		t.Errorf("message should echo the field, got %q", errBody["message"])
	}
}

func TestPlaceAndCancelBetEndToEnd(t *testing.T) {
	store := repo.NewMemory()
	s := newTestServer(t, store)
	router := s.Router()

	rec := doJSON(t, router, http.MethodPost, "/v1/bets", map[string]any{
		"horse_id": "h1", "horse_name": "Sea Mist", "race_id": "r1",
		"course": "Ascot", "off_time": "2:30", "bet_amount": 10, "odds": 5,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("place status: got %d body %s", rec.Code, rec.Body.String())
	}
	ok, data, _ := decodeEnvelope(t, rec)
	if !ok {
		t.Fatal("place should succeed")
	}
	var placed struct {
		Bet        repo.Bet `json:"bet"`
		NewBalance float64  `json:"new_balance"`
	}
	if err := json.Unmarshal(data, &placed); err != nil {
		t.Fatal(err)
	}
	if placed.NewBalance != 90 {
		t.Errorf("balance after place: got %v want 90", placed.NewBalance)
	}
	if placed.Bet.PotentialReturn != 50 || placed.Bet.Status != "pending" {
		t.Errorf("bet: %+v", placed.Bet)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/bets/cancel", map[string]any{"bet_id": placed.Bet.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status: got %d body %s", rec.Code, rec.Body.String())
	}
	_, data, _ = decodeEnvelope(t, rec)
	var cancelled struct {
		NewBalance float64 `json:"new_balance"`
	}
	if err := json.Unmarshal(data, &cancelled); err != nil {
		t.Fatal(err)
	}
	if cancelled.NewBalance != 100 {
		t.Errorf("balance after cancel: got %v want 100", cancelled.NewBalance)
	}
}

func TestCancelWonBetFails(t *testing.T) {
	store := repo.NewMemory()
	s := newTestServer(t, store)
	router := s.Router()

	rec := doJSON(t, router, http.MethodPost, "/v1/bets", map[string]any{
		"horse_id": "h1", "horse_name": "Sea Mist", "race_id": "r1",
		"course": "Ascot", "off_time": "2:30", "bet_amount": 10, "odds": 5,
	})
	_, data, _ := decodeEnvelope(t, rec)
	var placed struct {
		Bet repo.Bet `json:"bet"`
	}
	if err := json.Unmarshal(data, &placed); err != nil {
		t.Fatal(err)
	}

	store.SetBetStatus(placed.Bet.ID, "won")

	rec = doJSON(t, router, http.MethodPost, "/v1/bets/cancel", map[string]any{"bet_id": placed.Bet.ID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
	_, _, errBody := decodeEnvelope(t, rec)
	if errBody["code"] != "BET_NOT_PENDING" {
		t.Errorf("code: got %q", errBody["code"])
	}

	br, _ := store.GetOrCreateBankroll(context.Background(), "u1", 100)
	if br.CurrentAmount != 90 {
		t.Errorf("bankroll must not move on failed cancel, got %v", br.CurrentAmount)
	}
}

func TestGetMovers(t *testing.T) {
	store := repo.NewMemory()
	store.Changes = []movers.Change{
		{RaceID: "r1", HorseID: "h1", HorseName: "Sea Mist", Course: "Ascot", OffTime: "2:30",
			Direction: "in", ChangePct: -15, InitialPrice: 6, CurrentPrice: 5},
		{RaceID: "r1", HorseID: "h1", HorseName: "Sea Mist", Course: "Ascot", OffTime: "2:30",
			Direction: "in", ChangePct: -20, InitialPrice: 6, CurrentPrice: 4.5},
		{RaceID: "r2", HorseID: "h2", HorseName: "Night Owl", Course: "York", OffTime: "1:50",
			Direction: "out", ChangePct: 30, InitialPrice: 3, CurrentPrice: 4},
	}
	s := newTestServer(t, store)

	rec := doJSON(t, s.Router(), http.MethodGet, "/v1/movers", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	_, data, _ := decodeEnvelope(t, rec)
	var resp struct {
		Movers []movers.Steamer   `json:"movers"`
		Races  []movers.RaceGroup `json:"races"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Movers) != 1 {
		t.Fatalf("expected 1 steamer, got %d", len(resp.Movers))
	}
	if resp.Movers[0].TotalMovements != 2 || resp.Movers[0].OddsMovementPct != 20 {
		t.Errorf("steamer: %+v", resp.Movers[0])
	}
	if len(resp.Races) != 1 {
		t.Errorf("expected 1 race group, got %d", len(resp.Races))
	}
}

func TestGetRaceProbabilities(t *testing.T) {
	store := repo.NewMemory()
	store.Entries = []repo.RaceEntry{
		{RaceID: "r1", HorseID: "h1", HorseName: "Sea Mist", Ensemble: 0.6, LR: 0.5},
		{RaceID: "r1", HorseID: "h2", HorseName: "Night Owl", Ensemble: 0.2, LR: 0.5},
		{RaceID: "other", HorseID: "h9", Ensemble: 0.9},
	}
	s := newTestServer(t, store)

	rec := doJSON(t, s.Router(), http.MethodGet, "/v1/races/r1/probabilities", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	_, data, _ := decodeEnvelope(t, rec)
	var resp struct {
		Normalized map[string]map[string]float64 `json:"normalized"`
		Runners    []struct {
			HorseID            string  `json:"horse_id"`
			NormalizedEnsemble float64 `json:"normalized_ensemble"`
			DisplayPct         string  `json:"display_pct"`
			Stars              int     `json:"stars"`
		} `json:"runners"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Runners) != 2 {
		t.Fatalf("expected 2 runners, got %d", len(resp.Runners))
	}
	if resp.Normalized["ensemble"]["h1"] != 0.75 {
		t.Errorf("h1 ensemble: got %v want 0.75", resp.Normalized["ensemble"]["h1"])
	}
	if resp.Normalized["lr"]["h1"] != 0.5 {
		t.Errorf("h1 lr: got %v want 0.5", resp.Normalized["lr"]["h1"])
	}
	for _, r := range resp.Runners {
		if r.HorseID == "h1" {
			if r.DisplayPct != "75.0%" || r.Stars != 5 {
				t.Errorf("h1 display: %+v", r)
			}
		}
	}
}

func TestShortlistClassification(t *testing.T) {
	store := repo.NewMemory()
	s := newTestServer(t, store) // relógio fixo às 15:00
	router := s.Router()

	for _, e := range []map[string]any{
		{"horse_id": "h1", "horse_name": "Sea Mist", "race_id": "r1", "course": "Ascot", "race_time": "3:30"},
		{"horse_id": "h2", "horse_name": "Night Owl", "race_id": "r2", "course": "York", "race_time": "2:15"},
	} {
		if rec := doJSON(t, router, http.MethodPost, "/v1/shortlist", e); rec.Code != http.StatusOK {
			t.Fatalf("add shortlist: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/v1/shortlist", nil)
	_, data, _ := decodeEnvelope(t, rec)
	var view struct {
		Upcoming []repo.ShortlistEntry `json:"upcoming"`
		Past     []repo.ShortlistEntry `json:"past"`
	}
	if err := json.Unmarshal(data, &view); err != nil {
		t.Fatal(err)
	}
	// 3:30 -> 15:30 (por vir), 2:15 -> 14:15 (passou)
	if len(view.Upcoming) != 1 || view.Upcoming[0].HorseID != "h1" {
		t.Errorf("upcoming: %+v", view.Upcoming)
	}
	if len(view.Past) != 1 || view.Past[0].HorseID != "h2" {
		t.Errorf("past: %+v", view.Past)
	}
}

func TestDepositIncreasesBankroll(t *testing.T) {
	s := newTestServer(t, repo.NewMemory())
	router := s.Router()

	rec := doJSON(t, router, http.MethodPost, "/v1/bankroll/deposit", map[string]any{"amount": 25.5})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	_, data, _ := decodeEnvelope(t, rec)
	var br struct {
		CurrentAmount float64 `json:"current_amount"`
	}
	if err := json.Unmarshal(data, &br); err != nil {
		t.Fatal(err)
	}
	if br.CurrentAmount != 125.5 {
		t.Errorf("balance: got %v want 125.5", br.CurrentAmount)
	}
}
