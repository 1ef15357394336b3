// Package ledger maintains the durable record of open positions and
// realized PnL. The ledger is the single authority for the one-position-
// per-slug invariant: uniqueness is enforced inside RecordEntry under
// the ledger's lock, not by callers checking HasPosition first.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"updown-bot/internal/domain"
	"updown-bot/internal/storage"
)

// Stats summarizes the session.
type Stats struct {
	TotalTrades   int
	Wins          int
	Losses        int
	WinRate       float64 // fraction of wins among closed trades, 0 when none
	TotalPnl      float64
	OpenPositions int
}

// Ledger owns the persistent position state. Construct one per process
// with New and share it by reference; all mutations are serialized
// internally.
type Ledger struct {
	mu       sync.Mutex
	state    *domain.LedgerState
	snapshot storage.SnapshotStore
	journal  storage.JournalStore
	log      zerolog.Logger
	now      func() time.Time
}

// New constructs a ledger hydrated from the last persisted snapshot.
// A missing snapshot starts empty; a corrupt or unreadable one is
// logged and also starts empty, keeping startup infallible.
func New(ctx context.Context, snapshot storage.SnapshotStore, journal storage.JournalStore, log zerolog.Logger) *Ledger {
	l := &Ledger{
		snapshot: snapshot,
		journal:  journal,
		log:      log.With().Str("component", "ledger").Logger(),
		now:      time.Now,
	}

	state, err := snapshot.LoadState(ctx)
	switch {
	case err == nil:
		l.state = state
		l.log.Info().
			Int("positions", len(state.Positions)).
			Float64("total_pnl", state.TotalPnl).
			Msg("loaded ledger snapshot")
	case errors.Is(err, storage.ErrNotFound):
		l.state = domain.NewLedgerState()
	default:
		l.log.Error().Err(err).Msg("snapshot load failed, starting from empty state")
		l.state = domain.NewLedgerState()
	}

	return l
}

// RecordEntry creates a position for slug and durably records it. It
// fails with storage.ErrDuplicatePosition if the slug already holds an
// open position; the check and the insert happen atomically under the
// ledger lock, so concurrent entries for one slug cannot both succeed.
func (l *Ledger) RecordEntry(ctx context.Context, slug, side string, size, priceCents float64, externalRef string, signals *domain.SignalSnapshot) error {
	if slug == "" || (side != domain.SideUp && side != domain.SideDown) || size <= 0 {
		return storage.ErrInvalidInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.state.Positions[slug]; exists {
		return fmt.Errorf("record entry %s: %w", slug, storage.ErrDuplicatePosition)
	}

	now := l.now()
	if l.state.StartTime == nil {
		t := now
		l.state.StartTime = &t
	}

	l.state.Positions[slug] = domain.Position{
		Slug:          slug,
		Side:          side,
		Size:          size,
		AvgPriceCents: priceCents,
		EntryTime:     now,
		ExternalRef:   externalRef,
		Signals:       signals,
	}

	l.appendJournal(ctx, &domain.JournalRecord{
		Type:        domain.JournalEntry,
		Timestamp:   now,
		Slug:        slug,
		Side:        side,
		Size:        size,
		PriceCents:  priceCents,
		ExternalRef: externalRef,
		Signals:     signals,
	})
	l.persist(ctx)

	l.log.Info().
		Str("slug", slug).
		Str("side", side).
		Float64("size", size).
		Float64("price_cents", priceCents).
		Msg("recorded entry")
	return nil
}

// RecordExit closes the position for slug with the realized PnL. An
// unknown slug is logged and ignored; the settlement sweep may race a
// manual close and must not crash the loop.
func (l *Ledger) RecordExit(ctx context.Context, slug string, exitPriceCents, pnl float64, outcome string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	position, exists := l.state.Positions[slug]
	if !exists {
		l.log.Warn().Str("slug", slug).Msg("exit for unknown position ignored")
		return
	}

	now := l.now()
	closed := domain.ClosedTrade{
		Slug:            slug,
		Side:            position.Side,
		EntryPriceCents: position.AvgPriceCents,
		ExitPriceCents:  exitPriceCents,
		Size:            position.Size,
		Pnl:             pnl,
		Outcome:         outcome,
		Timestamp:       now,
	}

	l.appendJournal(ctx, &domain.JournalRecord{
		Type:            domain.JournalExit,
		Timestamp:       now,
		Slug:            slug,
		Side:            position.Side,
		Size:            position.Size,
		EntryPriceCents: position.AvgPriceCents,
		ExitPriceCents:  exitPriceCents,
		Pnl:             pnl,
		Outcome:         outcome,
	})

	l.state.TotalPnl += pnl
	l.state.ClosedTrades = append(l.state.ClosedTrades, closed)
	delete(l.state.Positions, slug)
	l.persist(ctx)

	l.log.Info().
		Str("slug", slug).
		Str("outcome", outcome).
		Float64("pnl", pnl).
		Float64("total_pnl", l.state.TotalPnl).
		Msg("recorded exit")
}

// HasPosition reports whether slug holds an open position. Informational
// only: entry uniqueness is enforced by RecordEntry itself.
func (l *Ledger) HasPosition(slug string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, exists := l.state.Positions[slug]
	return exists
}

// GetPosition returns the open position for slug.
func (l *Ledger) GetPosition(slug string) (domain.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, exists := l.state.Positions[slug]
	return p, exists
}

// AllPositions returns a copy of the open positions keyed by slug.
func (l *Ledger) AllPositions() map[string]domain.Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]domain.Position, len(l.state.Positions))
	for slug, p := range l.state.Positions {
		out[slug] = p
	}
	return out
}

// TotalExposure is the dollar cost of all open positions. The ledger
// only reports the figure; enforcing the exposure cap is the trader's
// job before it submits an order.
func (l *Ledger) TotalExposure() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var sum float64
	for _, p := range l.state.Positions {
		sum += p.Cost()
	}
	return sum
}

// Stats summarizes closed trades and open positions.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Stats{
		TotalTrades:   len(l.state.ClosedTrades),
		TotalPnl:      l.state.TotalPnl,
		OpenPositions: len(l.state.Positions),
	}
	for _, t := range l.state.ClosedTrades {
		if t.Pnl > 0 {
			s.Wins++
		} else {
			s.Losses++
		}
	}
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalTrades)
	}
	return s
}

// appendJournal writes the audit record. Journal failures are logged
// and do not fail the mutation; the snapshot remains the recovery
// source of truth.
func (l *Ledger) appendJournal(ctx context.Context, rec *domain.JournalRecord) {
	if err := l.journal.Append(ctx, rec); err != nil {
		l.log.Error().Err(err).Str("slug", rec.Slug).Str("type", rec.Type).Msg("journal append failed")
	}
}

// persist flushes the full state. On failure the in-memory state stays
// authoritative and the write is retried on the next mutation.
func (l *Ledger) persist(ctx context.Context) {
	t := l.now()
	l.state.LastUpdate = &t
	if err := l.snapshot.SaveState(ctx, l.state); err != nil {
		l.log.Error().Err(err).Msg("snapshot save failed, keeping in-memory state")
	}
}
