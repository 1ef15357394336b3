// Package indicator provides pure technical indicator math over candle
// series. Functions return nil when the history is too short to compute
// a value; they never fail otherwise.
package indicator

// RSI computes Wilder's smoothed Relative Strength Index over closing
// prices. Returns nil if fewer than period+1 closes exist. A series with
// no losses yields exactly 100.
func RSI(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain = (avgGain*float64(period-1) + change) / float64(period)
			avgLoss = (avgLoss * float64(period-1)) / float64(period)
		} else {
			avgGain = (avgGain * float64(period-1)) / float64(period)
			avgLoss = (avgLoss*float64(period-1) - change) / float64(period)
		}
	}

	if avgLoss == 0 {
		v := 100.0
		return &v
	}
	rs := avgGain / avgLoss
	v := 100 - (100 / (1 + rs))
	return &v
}

// RSISeries computes the RSI at every point from index period onward
// using a single incremental pass over the smoothed averages. The result
// is numerically identical to recomputing RSI over each prefix, without
// the quadratic cost.
func RSISeries(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	out := make([]float64, 0, len(closes)-period)
	out = append(out, rsiFromAverages(avgGain, avgLoss))

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain = (avgGain*float64(period-1) + change) / float64(period)
			avgLoss = (avgLoss * float64(period-1)) / float64(period)
		} else {
			avgGain = (avgGain * float64(period-1)) / float64(period)
			avgLoss = (avgLoss*float64(period-1) - change) / float64(period)
		}
		out = append(out, rsiFromAverages(avgGain, avgLoss))
	}

	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// SMA is the simple mean of the last period values. Returns nil on short
// input.
func SMA(values []float64, period int) *float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	v := sum / float64(period)
	return &v
}

// SlopeLast is the average per-step change over the trailing lookback
// window: (last - first) / lookback. Returns nil on short input.
func SlopeLast(values []float64, lookback int) *float64 {
	if lookback <= 0 || len(values) < lookback {
		return nil
	}
	recent := values[len(values)-lookback:]
	v := (recent[len(recent)-1] - recent[0]) / float64(lookback)
	return &v
}
