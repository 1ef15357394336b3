package execution

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// PaperExecutor simulates immediate full fills at the intent price.
// Used for dry runs and tests; no order leaves the process.
type PaperExecutor struct {
	log      zerolog.Logger
	orderSeq atomic.Uint64
}

// NewPaperExecutor creates a new PaperExecutor.
func NewPaperExecutor(log zerolog.Logger) *PaperExecutor {
	return &PaperExecutor{log: log.With().Str("component", "paper_executor").Logger()}
}

// Compile-time interface check.
var _ Executor = (*PaperExecutor)(nil)

// Execute fills the intent immediately. Contracts bought = dollars
// spent divided by the contract price.
func (e *PaperExecutor) Execute(_ context.Context, intent TradeIntent) (*TradeResult, error) {
	if intent.SizeUsd <= 0 {
		return &TradeResult{Success: false, Error: "non-positive size"}, nil
	}
	if intent.PriceCents <= 0 || intent.PriceCents >= 100 {
		return &TradeResult{Success: false, Error: fmt.Sprintf("price %.1fc outside (0,100)", intent.PriceCents)}, nil
	}

	contracts := intent.SizeUsd / (intent.PriceCents / 100)
	orderID := fmt.Sprintf("paper-%d", e.orderSeq.Add(1))

	e.log.Info().
		Str("slug", intent.Slug).
		Str("outcome", intent.Outcome).
		Float64("size_usd", intent.SizeUsd).
		Float64("price_cents", intent.PriceCents).
		Float64("contracts", contracts).
		Str("order_id", orderID).
		Msg("paper fill")

	return &TradeResult{
		Success:          true,
		OrderID:          orderID,
		FilledSize:       contracts,
		FilledPriceCents: intent.PriceCents,
	}, nil
}
