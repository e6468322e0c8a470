package betting

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/race-insight-platform/internal/insight-service/repo"
)

func newService(t *testing.T) (*Service, *repo.Memory) {
	t.Helper()
	store := repo.NewMemory()
	return New(zap.NewNop(), store, 100), store
}

func TestPlaceAndCancelRoundTrip(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	placed, balance, err := svc.PlaceBet(ctx, &repo.Bet{
		UserID: "u1", RaceID: "r1", HorseID: "h1", HorseName: "Sea Mist",
		Course: "Ascot", OffTime: "2:30", BetAmount: 10, Odds: 5,
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if balance != 90 {
		t.Errorf("balance after place: got %v want 90", balance)
	}
	if placed.PotentialReturn != 50 {
		t.Errorf("potential_return: got %v want 50", placed.PotentialReturn)
	}
	if placed.Status != "pending" {
		t.Errorf("status: got %q want pending", placed.Status)
	}

	refunded, balance, err := svc.CancelBet(ctx, "u1", placed.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if refunded != 10 || balance != 100 {
		t.Errorf("cancel refund/balance: got %v/%v want 10/100", refunded, balance)
	}

	if _, err := store.GetBet(ctx, placed.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("bet should be removed after cancel, got %v", err)
	}
}

func TestPlaceBetInsufficientFunds(t *testing.T) {
	svc, _ := newService(t)

	_, _, err := svc.PlaceBet(context.Background(), &repo.Bet{
		UserID: "u1", RaceID: "r1", HorseID: "h1", BetAmount: 500, Odds: 2,
	})
	if !errors.Is(err, repo.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestCancelNonPendingBetLeavesBankrollAlone(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	placed, _, err := svc.PlaceBet(ctx, &repo.Bet{
		UserID: "u1", RaceID: "r1", HorseID: "h1", BetAmount: 10, Odds: 5,
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	store.SetBetStatus(placed.ID, "won")

	_, _, err = svc.CancelBet(ctx, "u1", placed.ID)
	if !errors.Is(err, repo.ErrBetNotPending) {
		t.Fatalf("expected ErrBetNotPending, got %v", err)
	}

	br, _ := store.GetOrCreateBankroll(ctx, "u1", 100)
	if br.CurrentAmount != 90 {
		t.Errorf("bankroll must be untouched by failed cancel, got %v", br.CurrentAmount)
	}
}

func TestCancelSomeoneElsesBet(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	placed, _, err := svc.PlaceBet(ctx, &repo.Bet{
		UserID: "u1", RaceID: "r1", HorseID: "h1", BetAmount: 10, Odds: 2,
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if _, _, err := svc.CancelBet(ctx, "u2", placed.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign bet, got %v", err)
	}
}
