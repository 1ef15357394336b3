package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"updown-bot/internal/domain"
	"updown-bot/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using PostgreSQL. The
// ledger document is stored whole as a single JSONB row so SaveState
// keeps its rewrite-in-full semantics and a restart reads back exactly
// what was last written.
type SnapshotStore struct {
	pool *Pool
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// LoadState retrieves the ledger snapshot. Returns ErrNotFound if no
// snapshot has been saved yet.
func (s *SnapshotStore) LoadState(ctx context.Context) (*domain.LedgerState, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT state FROM ledger_snapshots WHERE id = 1`).Scan(&raw)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load ledger snapshot: %w", err)
	}

	state := domain.NewLedgerState()
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("decode ledger snapshot: %w", err)
	}
	if state.Positions == nil {
		state.Positions = make(map[string]domain.Position)
	}
	return state, nil
}

// SaveState replaces the stored snapshot with the given state.
func (s *SnapshotStore) SaveState(ctx context.Context, state *domain.LedgerState) error {
	if state == nil {
		return storage.ErrInvalidInput
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode ledger snapshot: %w", err)
	}

	query := `
		INSERT INTO ledger_snapshots (id, state, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()
	`
	if _, err := s.pool.Exec(ctx, query, raw); err != nil {
		return fmt.Errorf("save ledger snapshot: %w", err)
	}
	return nil
}
