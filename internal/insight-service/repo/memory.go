package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/race-insight-platform/internal/insight-service/movers"
)

// Memory implementa Store em memória. Serve os testes de handler e o modo
// de desenvolvimento sem Postgres; o contrato de leitura/escrita é o mesmo.
type Memory struct {
	mu sync.RWMutex

	Entries   []RaceEntry
	Changes   []movers.Change
	Records   []CourseRecord
	bets      map[string]*Bet
	bankrolls map[string]*Bankroll
	shortlist map[string]*ShortlistEntry
}

func NewMemory() *Memory {
	return &Memory{
		bets:      make(map[string]*Bet),
		bankrolls: make(map[string]*Bankroll),
		shortlist: make(map[string]*ShortlistEntry),
	}
}

func (m *Memory) RaceEntries(_ context.Context, raceID string) ([]RaceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []RaceEntry
	for _, e := range m.Entries {
		if e.RaceID == raceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) EntriesForDay(_ context.Context, _ time.Time) ([]RaceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RaceEntry, len(m.Entries))
	copy(out, m.Entries)
	return out, nil
}

func (m *Memory) MovementsForDay(_ context.Context, day time.Time) ([]movers.Change, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	var out []movers.Change
	for _, c := range m.Changes {
		if c.RecordedAt.IsZero() || (!c.RecordedAt.Before(start) && c.RecordedAt.Before(end)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) CreateBet(_ context.Context, b *Bet) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	cp.ID = uuid.NewString()
	cp.Status = "pending"
	cp.CreatedAt = time.Now()
	m.bets[cp.ID] = &cp
	return cp.ID, nil
}

func (m *Memory) GetBet(_ context.Context, betID string) (*Bet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bets[betID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *Memory) ListBets(_ context.Context, userID string) ([]Bet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Bet
	for _, b := range m.bets {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) DeleteBet(_ context.Context, betID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bets[betID]; !ok {
		return ErrNotFound
	}
	delete(m.bets, betID)
	return nil
}

// SetBetStatus existe para os cenários de teste de settlement/cancelamento.
func (m *Memory) SetBetStatus(betID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bets[betID]; ok {
		b.Status = status
	}
}

func (m *Memory) GetOrCreateBankroll(_ context.Context, userID string, starting float64) (Bankroll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if br, ok := m.bankrolls[userID]; ok {
		return *br, nil
	}
	br := &Bankroll{ID: uuid.NewString(), UserID: userID, CurrentAmount: starting}
	m.bankrolls[userID] = br
	return *br, nil
}

func (m *Memory) AdjustBankroll(_ context.Context, userID string, delta float64, _ string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	br, ok := m.bankrolls[userID]
	if !ok {
		return 0, ErrNotFound
	}
	if br.CurrentAmount+delta < 0 {
		return 0, ErrInsufficientFunds
	}
	br.CurrentAmount += delta
	return br.CurrentAmount, nil
}

func (m *Memory) AddShortlist(_ context.Context, e *ShortlistEntry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.shortlist {
		if s.UserID == e.UserID && s.HorseID == e.HorseID && s.RaceID == e.RaceID {
			return s.ID, nil
		}
	}
	cp := *e
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now()
	m.shortlist[cp.ID] = &cp
	return cp.ID, nil
}

func (m *Memory) RemoveShortlist(_ context.Context, userID, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.shortlist[entryID]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	delete(m.shortlist, entryID)
	return nil
}

func (m *Memory) ListShortlist(_ context.Context, userID string) ([]ShortlistEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ShortlistEntry
	for _, e := range m.shortlist {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CourseRecords(_ context.Context, courses []string) ([]CourseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := make(map[string]bool, len(courses))
	for _, c := range courses {
		want[c] = true
	}
	var out []CourseRecord
	for _, r := range m.Records {
		if want[r.Course] {
			out = append(out, r)
		}
	}
	return out, nil
}
