package trader

import (
	"updown-bot/internal/config"
	"updown-bot/internal/domain"
	"updown-bot/internal/indicator"
)

// rsiSlopeLookback is fixed: RSI momentum reads the last three values
// of the incremental series.
const rsiSlopeLookback = 3

// buildSnapshot computes the per-cycle indicator snapshot from the
// candle window. tick, when non-nil, replaces the last close as the
// current price. Also returns the Heiken-Ashi streak for the scorer.
func buildSnapshot(candles []domain.Candle, ta config.TAConfig, tick *float64) (*domain.IndicatorSnapshot, string, int) {
	if len(candles) == 0 {
		return &domain.IndicatorSnapshot{}, "", 0
	}

	closes := domain.Closes(candles)

	snap := &domain.IndicatorSnapshot{
		Price: tick,
		VWAP:  indicator.VWAP(candles),
		RSI:   indicator.RSI(closes, ta.RSIPeriod),
		MACD:  indicator.MACD(closes, ta.MACDFast, ta.MACDSlow, ta.MACDSignal),
	}
	if snap.Price == nil {
		last := closes[len(closes)-1]
		snap.Price = &last
	}

	snap.VWAPSlope = indicator.VWAPSlope(indicator.VWAPSeries(candles), ta.VWAPSlopeLookback)
	snap.RSISlope = indicator.SlopeLast(indicator.RSISeries(closes, ta.RSIPeriod), rsiSlopeLookback)

	color, count := indicator.Streak(indicator.HeikenAshi(candles))
	return snap, color, count
}
