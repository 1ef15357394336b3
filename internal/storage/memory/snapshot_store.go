// Package memory provides in-memory storage implementations for tests
// and dry runs without durable state.
package memory

import (
	"context"
	"sync"

	"updown-bot/internal/domain"
	"updown-bot/internal/storage"
)

// SnapshotStore keeps the ledger state in memory.
type SnapshotStore struct {
	mu    sync.RWMutex
	state *domain.LedgerState
	saves int
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// LoadState returns a deep copy of the stored state, or ErrNotFound if
// nothing has been saved yet.
func (s *SnapshotStore) LoadState(_ context.Context) (*domain.LedgerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return nil, storage.ErrNotFound
	}
	return copyState(s.state), nil
}

// SaveState replaces the stored state with a deep copy of the input.
func (s *SnapshotStore) SaveState(_ context.Context, state *domain.LedgerState) error {
	if state == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = copyState(state)
	s.saves++
	return nil
}

// SaveCount reports how many times SaveState has been called. Test
// helper for asserting persist-per-mutation behavior.
func (s *SnapshotStore) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func copyState(in *domain.LedgerState) *domain.LedgerState {
	out := &domain.LedgerState{
		Positions:    make(map[string]domain.Position, len(in.Positions)),
		ClosedTrades: make([]domain.ClosedTrade, len(in.ClosedTrades)),
		TotalPnl:     in.TotalPnl,
	}
	for slug, p := range in.Positions {
		out.Positions[slug] = p
	}
	copy(out.ClosedTrades, in.ClosedTrades)
	if in.StartTime != nil {
		t := *in.StartTime
		out.StartTime = &t
	}
	if in.LastUpdate != nil {
		t := *in.LastUpdate
		out.LastUpdate = &t
	}
	return out
}
