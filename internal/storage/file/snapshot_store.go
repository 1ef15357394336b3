// Package file implements the durable ledger documents as local files:
// a JSON snapshot rewritten in full after every mutation and a JSONL
// append-only trade journal.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"updown-bot/internal/domain"
	"updown-bot/internal/storage"
)

// SnapshotStore persists the ledger state as a pretty-printed JSON file.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a snapshot store writing to path. Parent
// directories are created on first save.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// LoadState reads the last persisted snapshot. A missing file yields
// ErrNotFound so the caller can fall back to the empty default state.
func (s *SnapshotStore) LoadState(_ context.Context) (*domain.LedgerState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	state := domain.NewLedgerState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	if state.Positions == nil {
		state.Positions = make(map[string]domain.Position)
	}
	return state, nil
}

// SaveState rewrites the snapshot in full. The write goes through a
// temp file and rename so a crash mid-write never leaves a truncated
// snapshot behind.
func (s *SnapshotStore) SaveState(_ context.Context, state *domain.LedgerState) error {
	if state == nil {
		return storage.ErrInvalidInput
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
