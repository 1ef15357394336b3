package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"updown-bot/internal/domain"
	"updown-bot/internal/storage"
)

// JournalStore implements storage.JournalStore using PostgreSQL. Rows
// are insert-only; the bigserial id preserves append order.
type JournalStore struct {
	pool *Pool
}

// NewJournalStore creates a new JournalStore.
func NewJournalStore(pool *Pool) *JournalStore {
	return &JournalStore{pool: pool}
}

// Compile-time interface check.
var _ storage.JournalStore = (*JournalStore)(nil)

// Append inserts one journal record.
func (s *JournalStore) Append(ctx context.Context, rec *domain.JournalRecord) error {
	if rec == nil || rec.Slug == "" || rec.Type == "" {
		return storage.ErrInvalidInput
	}

	var signals []byte
	if rec.Signals != nil {
		raw, err := json.Marshal(rec.Signals)
		if err != nil {
			return fmt.Errorf("encode journal signals: %w", err)
		}
		signals = raw
	}

	query := `
		INSERT INTO trade_journal (
			record_type, ts, slug, side, size, price_cents,
			entry_price_cents, exit_price_cents, pnl, outcome,
			external_ref, signals
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.pool.Exec(ctx, query,
		rec.Type, rec.Timestamp, rec.Slug, rec.Side, rec.Size, rec.PriceCents,
		rec.EntryPriceCents, rec.ExitPriceCents, rec.Pnl, rec.Outcome,
		rec.ExternalRef, signals,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("journal %s for %s: %w", rec.Type, rec.Slug, storage.ErrDuplicatePosition)
		}
		return fmt.Errorf("insert journal record: %w", err)
	}
	return nil
}

// ReadAll retrieves every record in append order.
func (s *JournalStore) ReadAll(ctx context.Context) ([]*domain.JournalRecord, error) {
	query := `
		SELECT record_type, ts, slug, side, size, price_cents,
			entry_price_cents, exit_price_cents, pnl, outcome,
			external_ref, signals
		FROM trade_journal
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read trade journal: %w", err)
	}
	defer rows.Close()

	return scanJournalRecords(rows)
}

func scanJournalRecords(rows pgx.Rows) ([]*domain.JournalRecord, error) {
	var recs []*domain.JournalRecord

	for rows.Next() {
		var (
			rec     domain.JournalRecord
			signals []byte
		)
		err := rows.Scan(
			&rec.Type, &rec.Timestamp, &rec.Slug, &rec.Side, &rec.Size, &rec.PriceCents,
			&rec.EntryPriceCents, &rec.ExitPriceCents, &rec.Pnl, &rec.Outcome,
			&rec.ExternalRef, &signals,
		)
		if err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		if signals != nil {
			rec.Signals = &domain.SignalSnapshot{}
			if err := json.Unmarshal(signals, rec.Signals); err != nil {
				return nil, fmt.Errorf("decode journal signals: %w", err)
			}
		}
		recs = append(recs, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return recs, nil
}
