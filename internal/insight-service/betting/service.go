package betting

import (
	"context"

	"go.uber.org/zap"

	"github.com/radieske/race-insight-platform/internal/insight-service/repo"
)

// Policy nomeia o tratamento do segundo write do par aposta+bankroll.
type Policy string

// TolerateBankrollLag: a perna de bankroll que falhar depois do write
// primário é logada como warning e o resultado primário fica de pé.
// Não há transação compensatória nem retry; a autoridade de consistência
// é o banco, não este serviço. Um backend transacional pode substituir o
// Store sem mudar os chamadores.
const TolerateBankrollLag Policy = "tolerate-bankroll-lag"

// Service orquestra colocação e cancelamento de apostas contra o Store.
type Service struct {
	log      *zap.Logger
	store    repo.Store
	starting float64 // saldo inicial de bankroll criado sob demanda
	policy   Policy
}

func New(log *zap.Logger, store repo.Store, startingBankroll float64) *Service {
	return &Service{log: log, store: store, starting: startingBankroll, policy: TolerateBankrollLag}
}

// PlaceBet valida fundos, grava a aposta pendente e debita o bankroll.
// potential_return = valor * odd decimal. O débito é a perna tolerada.
func (s *Service) PlaceBet(ctx context.Context, b *repo.Bet) (*repo.Bet, float64, error) {
	br, err := s.store.GetOrCreateBankroll(ctx, b.UserID, s.starting)
	if err != nil {
		return nil, 0, err
	}
	if br.CurrentAmount < b.BetAmount {
		return nil, 0, repo.ErrInsufficientFunds
	}

	b.PotentialReturn = b.BetAmount * b.Odds
	b.Status = "pending"

	id, err := s.store.CreateBet(ctx, b)
	if err != nil {
		return nil, 0, err
	}
	b.ID = id

	newBalance, err := s.store.AdjustBankroll(ctx, b.UserID, -b.BetAmount, "bet:"+id)
	if err != nil {
		// política tolerate-bankroll-lag: aposta gravada prevalece
		s.log.Warn("bankroll debit failed after bet write",
			zap.String("bet_id", id),
			zap.String("policy", string(s.policy)),
			zap.Error(err))
		newBalance = br.CurrentAmount
	}

	placed, err := s.store.GetBet(ctx, id)
	if err != nil {
		placed = b
	}
	return placed, newBalance, nil
}

// CancelBet devolve o valor ao bankroll e remove a aposta.
// Só apostas pending cancelam; o delete após o refund é a perna tolerada.
func (s *Service) CancelBet(ctx context.Context, userID, betID string) (refunded float64, newBalance float64, err error) {
	b, err := s.store.GetBet(ctx, betID)
	if err != nil {
		return 0, 0, err
	}
	if b.UserID != userID {
		return 0, 0, repo.ErrNotFound
	}
	if b.Status != "pending" {
		return 0, 0, repo.ErrBetNotPending
	}

	newBalance, err = s.store.AdjustBankroll(ctx, userID, b.BetAmount, "cancel:"+betID)
	if err != nil {
		return 0, 0, err
	}

	if err := s.store.DeleteBet(ctx, betID); err != nil {
		s.log.Warn("bet delete failed after refund",
			zap.String("bet_id", betID),
			zap.String("policy", string(s.policy)),
			zap.Error(err))
	}

	return b.BetAmount, newBalance, nil
}
