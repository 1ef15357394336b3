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

func TestSnapshotStore_LoadMissingReturnsNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	_, err := store.LoadState(context.Background())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshotStore_SaveLoadRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	ctx := context.Background()

	entryTime := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	state := domain.NewLedgerState()
	state.Positions["btc-updown-15m-1748788200"] = domain.Position{
		Slug:          "btc-updown-15m-1748788200",
		Side:          domain.SideUp,
		Size:          12,
		AvgPriceCents: 57,
		EntryTime:     entryTime,
		ExternalRef:   "order-42",
		Signals:       &domain.SignalSnapshot{RSI: ptr(61.2), Edge: ptr(0.08)},
	}
	state.ClosedTrades = []domain.ClosedTrade{{
		Slug:            "eth-updown-15m-1748787300",
		Side:            domain.SideDown,
		EntryPriceCents: 44,
		ExitPriceCents:  0,
		Size:            8,
		Pnl:             -3.52,
		Outcome:         domain.OutcomeLoss,
		Timestamp:       entryTime.Add(10 * time.Minute),
	}}
	state.TotalPnl = -3.52
	state.StartTime = ptr(entryTime.Add(-time.Hour))

	require.NoError(t, store.SaveState(ctx, state))

	loaded, err := store.LoadState(ctx)
	require.NoError(t, err)

	require.Len(t, loaded.Positions, 1)
	pos := loaded.Positions["btc-updown-15m-1748788200"]
	assert.Equal(t, domain.SideUp, pos.Side)
	assert.Equal(t, 12.0, pos.Size)
	assert.Equal(t, "order-42", pos.ExternalRef)
	require.NotNil(t, pos.Signals)
	assert.InDelta(t, 61.2, *pos.Signals.RSI, 1e-9)
	assert.True(t, pos.EntryTime.Equal(entryTime))

	require.Len(t, loaded.ClosedTrades, 1)
	assert.Equal(t, domain.OutcomeLoss, loaded.ClosedTrades[0].Outcome)
	assert.InDelta(t, -3.52, loaded.TotalPnl, 1e-9)
	require.NotNil(t, loaded.StartTime)
}

func TestSnapshotStore_SaveRewritesInFull(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	ctx := context.Background()

	first := domain.NewLedgerState()
	first.Positions["m1"] = domain.Position{Slug: "m1", Side: domain.SideUp, Size: 5, AvgPriceCents: 50}
	require.NoError(t, store.SaveState(ctx, first))

	second := domain.NewLedgerState()
	second.Positions["m2"] = domain.Position{Slug: "m2", Side: domain.SideDown, Size: 7, AvgPriceCents: 40}
	second.TotalPnl = 2.5
	require.NoError(t, store.SaveState(ctx, second))

	loaded, err := store.LoadState(ctx)
	require.NoError(t, err)

	assert.Len(t, loaded.Positions, 1)
	_, hasOld := loaded.Positions["m1"]
	assert.False(t, hasOld, "m1 must not survive the rewrite")
	assert.Contains(t, loaded.Positions, "m2")
	assert.InDelta(t, 2.5, loaded.TotalPnl, 1e-9)
}

func TestSnapshotStore_RejectsNilState(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)
	err := store.SaveState(context.Background(), nil)
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}
