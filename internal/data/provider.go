// Package data defines the market data contracts the evaluation loop
// consumes. Implementations live in subpackages per venue.
package data

import (
	"context"

	"updown-bot/internal/domain"
)

// CandleProvider returns recent candles for an asset, ascending by
// open time. Callers need at least slow+signal bars for a full
// indicator snapshot; providers should default to a 100-bar window.
type CandleProvider interface {
	Candles(ctx context.Context, asset string, limit int) ([]domain.Candle, error)
}

// TickProvider exposes the most recent traded price when one fresher
// than the last candle close is available.
type TickProvider interface {
	// LastPrice returns the latest tick price, or false when no tick
	// has been observed yet.
	LastPrice(asset string) (float64, bool)
}

// QuoteProvider returns the upcoming binary markets for an asset,
// sorted by ascending end date.
type QuoteProvider interface {
	Markets(ctx context.Context, asset string) ([]domain.MarketQuote, error)
}
