package memory

import (
	"context"
	"sync"

	"updown-bot/internal/domain"
	"updown-bot/internal/storage"
)

// JournalStore keeps journal records in an in-memory slice.
type JournalStore struct {
	mu   sync.RWMutex
	recs []*domain.JournalRecord
}

// NewJournalStore creates an empty in-memory journal.
func NewJournalStore() *JournalStore {
	return &JournalStore{}
}

var _ storage.JournalStore = (*JournalStore)(nil)

// Append adds one record to the journal.
func (s *JournalStore) Append(_ context.Context, rec *domain.JournalRecord) error {
	if rec == nil || rec.Type == "" || rec.Slug == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.recs = append(s.recs, &cp)
	return nil
}

// ReadAll returns copies of every record in append order.
func (s *JournalStore) ReadAll(_ context.Context) ([]*domain.JournalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.JournalRecord, len(s.recs))
	for i, rec := range s.recs {
		cp := *rec
		out[i] = &cp
	}
	return out, nil
}
