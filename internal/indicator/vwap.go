package indicator

import "updown-bot/internal/domain"

// VWAP is the session-cumulative volume-weighted average of the typical
// price over all candles. Returns nil for an empty series or zero
// cumulative volume.
func VWAP(candles []domain.Candle) *float64 {
	if len(candles) == 0 {
		return nil
	}

	var tpv, volume float64
	for _, c := range candles {
		tpv += c.TypicalPrice() * c.Volume
		volume += c.Volume
	}

	if volume == 0 {
		return nil
	}
	v := tpv / volume
	return &v
}

// VWAPSeries is the running cumulative VWAP at each candle. Positions
// before any volume has traded are skipped, so the result may be shorter
// than the input.
func VWAPSeries(candles []domain.Candle) []float64 {
	out := make([]float64, 0, len(candles))
	var tpv, volume float64
	for _, c := range candles {
		tpv += c.TypicalPrice() * c.Volume
		volume += c.Volume
		if volume > 0 {
			out = append(out, tpv/volume)
		}
	}
	return out
}

// VWAPSlope is the trailing slope of a VWAP series over lookback points.
func VWAPSlope(series []float64, lookback int) *float64 {
	if lookback <= 0 || len(series) < lookback {
		return nil
	}
	now := series[len(series)-1]
	then := series[len(series)-lookback]
	v := (now - then) / float64(lookback)
	return &v
}
