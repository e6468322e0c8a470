package repo

import (
	"context"
	"errors"
	"time"

	"github.com/radieske/race-insight-platform/internal/insight-service/movers"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBetNotPending     = errors.New("only pending bets can be cancelled")
)

// Store é o contrato de armazenamento usado pelos handlers.
// A implementação real fica no Postgres; a de memória serve os testes.
type Store interface {
	// Racecard
	RaceEntries(ctx context.Context, raceID string) ([]RaceEntry, error)
	EntriesForDay(ctx context.Context, day time.Time) ([]RaceEntry, error)

	// Log de movimentação de mercado (append-only, escrito pelo movers-worker)
	MovementsForDay(ctx context.Context, day time.Time) ([]movers.Change, error)

	// Apostas
	CreateBet(ctx context.Context, b *Bet) (string, error)
	GetBet(ctx context.Context, betID string) (*Bet, error)
	ListBets(ctx context.Context, userID string) ([]Bet, error)
	DeleteBet(ctx context.Context, betID string) error

	// Bankroll. Delta negativo debita e falha com ErrInsufficientFunds
	// se o saldo não cobrir; toda mudança gera linha no ledger.
	GetOrCreateBankroll(ctx context.Context, userID string, starting float64) (Bankroll, error)
	AdjustBankroll(ctx context.Context, userID string, delta float64, reason string) (newAmount float64, err error)

	// Shortlist
	AddShortlist(ctx context.Context, e *ShortlistEntry) (string, error)
	RemoveShortlist(ctx context.Context, userID, entryID string) error
	ListShortlist(ctx context.Context, userID string) ([]ShortlistEntry, error)

	// Insumos dos insights
	CourseRecords(ctx context.Context, courses []string) ([]CourseRecord, error)
}
