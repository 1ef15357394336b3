package storage

import (
	"context"
	"time"

	"updown-bot/internal/domain"
)

// SnapshotStore persists the full ledger document. SaveState rewrites
// the document in full; LoadState returns ErrNotFound when no snapshot
// has been written yet.
type SnapshotStore interface {
	LoadState(ctx context.Context) (*domain.LedgerState, error)
	SaveState(ctx context.Context, state *domain.LedgerState) error
}

// JournalStore is the append-only trade journal, an audit trail
// independent of the snapshot and never rewritten.
type JournalStore interface {
	// Append adds one record to the end of the journal.
	Append(ctx context.Context, rec *domain.JournalRecord) error

	// ReadAll returns every record in append order.
	ReadAll(ctx context.Context) ([]*domain.JournalRecord, error)
}

// EvaluationRecord is one market's evaluation outcome for one cycle,
// archived for offline analysis of the model against realized outcomes.
type EvaluationRecord struct {
	Timestamp        time.Time
	Asset            string
	Slug             string
	Price            *float64
	VWAP             *float64
	RSI              *float64
	MACDHist         *float64
	RawUp            float64
	AdjustedUp       float64
	MarketUp         *float64
	EdgeUp           *float64
	EdgeDown         *float64
	RemainingMinutes float64
	Phase            string
	Action           string
	Side             string
	Reason           string
}

// EvaluationStore archives per-cycle evaluation records. Implementations
// may batch; Flush forces any buffered rows out.
type EvaluationStore interface {
	Archive(ctx context.Context, recs []*EvaluationRecord) error
	Flush(ctx context.Context) error
}
