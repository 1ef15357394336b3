// Package clickhouse archives per-cycle evaluation rows for offline
// analysis. All writes go through batch inserts; MergeTree does not
// enforce uniqueness and the archive does not need it.
package clickhouse

import (
	"context"
	"fmt"
	"sync"

	"updown-bot/internal/storage"
)

// EvaluationStore implements storage.EvaluationStore using ClickHouse.
// Records are buffered in memory and flushed as one batch once the
// buffer reaches batchSize, or explicitly via Flush.
type EvaluationStore struct {
	conn      *Conn
	batchSize int

	mu  sync.Mutex
	buf []*storage.EvaluationRecord
}

// NewEvaluationStore creates a new EvaluationStore. batchSize values
// below 1 disable buffering and every Archive call writes immediately.
func NewEvaluationStore(conn *Conn, batchSize int) *EvaluationStore {
	return &EvaluationStore{conn: conn, batchSize: batchSize}
}

// Compile-time interface check.
var _ storage.EvaluationStore = (*EvaluationStore)(nil)

// Archive queues records and flushes when the buffer is full.
func (s *EvaluationStore) Archive(ctx context.Context, recs []*storage.EvaluationRecord) error {
	if len(recs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = append(s.buf, recs...)
	if len(s.buf) < s.batchSize {
		return nil
	}
	return s.flushLocked(ctx)
}

// Flush writes any buffered records out.
func (s *EvaluationStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

func (s *EvaluationStore) flushLocked(ctx context.Context) error {
	if len(s.buf) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO evaluations (
			ts, asset, slug, price, vwap, rsi, macd_hist,
			raw_up, adjusted_up, market_up, edge_up, edge_down,
			remaining_minutes, phase, action, side, reason
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range s.buf {
		err = batch.Append(
			r.Timestamp, r.Asset, r.Slug, r.Price, r.VWAP, r.RSI, r.MACDHist,
			r.RawUp, r.AdjustedUp, r.MarketUp, r.EdgeUp, r.EdgeDown,
			r.RemainingMinutes, r.Phase, r.Action, r.Side, r.Reason,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	// Keep buffered rows on failure so the next flush retries them.
	s.buf = s.buf[:0]
	return nil
}
