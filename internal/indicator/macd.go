package indicator

import "updown-bot/internal/domain"

// ema computes the full EMA series for the given period: simple-mean
// seed over the first period values, then the usual recursion with
// k = 2/(period+1). Empty result on short input.
func ema(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	k := 2 / float64(period+1)
	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)

	out := make([]float64, 0, len(values)-period+1)
	out = append(out, seed)

	current := seed
	for i := period; i < len(values); i++ {
		current = values[i]*k + current*(1-k)
		out = append(out, current)
	}

	return out
}

// MACD computes the classic EMA-based MACD triple over closing prices.
// The MACD line is fastEMA-slowEMA aligned on the slow EMA's start
// index; the signal line is an EMA of the MACD line; HistDelta is the
// change of the histogram since the previous bar (nil if fewer than two
// histogram points exist). Returns nil if len(closes) < slow+signal.
func MACD(closes []float64, fast, slow, signal int) *domain.MACDValues {
	if len(closes) < slow+signal {
		return nil
	}

	fastEMA := ema(closes, fast)
	slowEMA := ema(closes, slow)

	// The slow EMA starts slow-fast points later than the fast EMA.
	offset := slow - fast
	macdLine := make([]float64, len(slowEMA))
	for i := range slowEMA {
		macdLine[i] = fastEMA[i+offset] - slowEMA[i]
	}

	if len(macdLine) < signal {
		return nil
	}
	signalLine := ema(macdLine, signal)

	macd := macdLine[len(macdLine)-1]
	sig := signalLine[len(signalLine)-1]
	hist := macd - sig

	out := &domain.MACDValues{MACD: macd, Signal: sig, Hist: hist}
	if len(macdLine) >= 2 && len(signalLine) >= 2 {
		prevHist := macdLine[len(macdLine)-2] - signalLine[len(signalLine)-2]
		delta := hist - prevHist
		out.HistDelta = &delta
	}

	return out
}
