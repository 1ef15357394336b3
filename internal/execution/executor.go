// Package execution defines the order placement and settlement
// contracts. Orders are always BUY of one binary outcome token; a
// position is closed by the market resolving, not by selling.
package execution

import (
	"context"

	"updown-bot/internal/domain"
)

// TradeIntent is the order the trader wants filled.
type TradeIntent struct {
	TokenID    string
	Side       string // always "BUY"
	SizeUsd    float64
	PriceCents float64
	Slug       string
	Outcome    string // UP or DOWN
	Signals    *domain.SignalSnapshot
}

// TradeResult reports the fill. Success false carries the venue's
// rejection in Error; transport failures surface as Go errors from
// Execute instead.
type TradeResult struct {
	Success          bool
	OrderID          string
	FilledSize       float64
	FilledPriceCents float64
	Error            string
}

// Executor places an order. The ledger must see exactly one entry per
// successful result and none otherwise; that bookkeeping is the
// caller's job, executors only report fills.
type Executor interface {
	Execute(ctx context.Context, intent TradeIntent) (*TradeResult, error)
}

// Settlement is one resolved position as reported by the venue.
type Settlement struct {
	Slug      string
	Outcome   string // domain.OutcomeWin or domain.OutcomeLoss
	PayoutUsd float64
}

// Settler reports which of the given open positions have resolved.
// One winning contract pays $1; losing positions pay nothing.
type Settler interface {
	ResolvedPositions(ctx context.Context, open map[string]domain.Position) ([]Settlement, error)
}
