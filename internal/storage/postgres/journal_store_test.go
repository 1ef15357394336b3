package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"updown-bot/internal/domain"
	"updown-bot/internal/storage"
)

func TestJournalStore_AppendAndReadAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJournalStore(pool)
	ctx := context.Background()

	ts := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	entry := &domain.JournalRecord{
		Type:        domain.JournalEntry,
		Timestamp:   ts,
		Slug:        "btc-updown-15m-1748788200",
		Side:        domain.SideUp,
		Size:        12,
		PriceCents:  57,
		ExternalRef: "order-42",
		Signals:     &domain.SignalSnapshot{RSI: ptr(61.2), ModelProb: ptr(0.64)},
	}
	exit := &domain.JournalRecord{
		Type:            domain.JournalExit,
		Timestamp:       ts.Add(12 * time.Minute),
		Slug:            "btc-updown-15m-1748788200",
		Side:            domain.SideUp,
		Size:            12,
		EntryPriceCents: 57,
		ExitPriceCents:  100,
		Pnl:             5.16,
		Outcome:         domain.OutcomeWin,
	}

	require.NoError(t, store.Append(ctx, entry))
	require.NoError(t, store.Append(ctx, exit))

	recs, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, domain.JournalEntry, recs[0].Type)
	assert.Equal(t, "order-42", recs[0].ExternalRef)
	require.NotNil(t, recs[0].Signals)
	assert.InDelta(t, 0.64, *recs[0].Signals.ModelProb, 1e-9)
	assert.True(t, recs[0].Timestamp.Equal(ts))

	assert.Equal(t, domain.JournalExit, recs[1].Type)
	assert.Nil(t, recs[1].Signals)
	assert.InDelta(t, 5.16, recs[1].Pnl, 1e-9)
	assert.Equal(t, domain.OutcomeWin, recs[1].Outcome)
}

func TestJournalStore_PreservesAppendOrder(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJournalStore(pool)
	ctx := context.Background()

	slugs := []string{"a", "b", "c", "d", "e"}
	ts := time.Now().UTC().Truncate(time.Millisecond)
	for _, slug := range slugs {
		rec := &domain.JournalRecord{
			Type:      domain.JournalEntry,
			Timestamp: ts,
			Slug:      slug,
			Side:      domain.SideDown,
			Size:      1,
		}
		require.NoError(t, store.Append(ctx, rec))
	}

	recs, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, len(slugs))
	for i, slug := range slugs {
		assert.Equal(t, slug, recs[i].Slug)
	}
}

func TestJournalStore_RejectsSecondEntryForSlug(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJournalStore(pool)
	ctx := context.Background()

	rec := &domain.JournalRecord{
		Type:      domain.JournalEntry,
		Timestamp: time.Now().UTC(),
		Slug:      "btc-updown-15m-1748788200",
		Side:      domain.SideUp,
		Size:      10,
	}
	require.NoError(t, store.Append(ctx, rec))
	require.ErrorIs(t, store.Append(ctx, rec), storage.ErrDuplicatePosition)

	// An exit for the same slug is a different record type and fine.
	exit := &domain.JournalRecord{
		Type:      domain.JournalExit,
		Timestamp: time.Now().UTC(),
		Slug:      rec.Slug,
		Side:      domain.SideUp,
		Size:      10,
		Outcome:   domain.OutcomeWin,
	}
	require.NoError(t, store.Append(ctx, exit))
}

func TestJournalStore_RejectsInvalidRecord(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewJournalStore(pool)
	ctx := context.Background()

	assert.ErrorIs(t, store.Append(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Append(ctx, &domain.JournalRecord{Type: domain.JournalEntry}), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Append(ctx, &domain.JournalRecord{Slug: "m1"}), storage.ErrInvalidInput)

	recs, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
