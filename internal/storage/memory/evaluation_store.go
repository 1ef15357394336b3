package memory

import (
	"context"
	"sync"

	"updown-bot/internal/storage"
)

// EvaluationStore buffers evaluation records in memory. Useful for dry
// runs and as the archive stand-in when ClickHouse is not configured.
type EvaluationStore struct {
	mu   sync.RWMutex
	recs []*storage.EvaluationRecord
}

// NewEvaluationStore creates an empty in-memory evaluation archive.
func NewEvaluationStore() *EvaluationStore {
	return &EvaluationStore{}
}

var _ storage.EvaluationStore = (*EvaluationStore)(nil)

// Archive stores copies of the given records.
func (s *EvaluationStore) Archive(_ context.Context, recs []*storage.EvaluationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		if rec == nil {
			return storage.ErrInvalidInput
		}
		cp := *rec
		s.recs = append(s.recs, &cp)
	}
	return nil
}

// Flush is a no-op; nothing is buffered beyond the slice itself.
func (s *EvaluationStore) Flush(_ context.Context) error { return nil }

// All returns copies of every archived record.
func (s *EvaluationStore) All() []*storage.EvaluationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*storage.EvaluationRecord, len(s.recs))
	for i, rec := range s.recs {
		cp := *rec
		out[i] = &cp
	}
	return out
}
