package domain

// Candle is a single OHLCV bar. Candle slices are ordered ascending by
// open time and are immutable once produced by a provider.
type Candle struct {
	OpenTime  int64   // bar open timestamp (ms)
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	CloseTime int64 // bar close timestamp (ms)
}

// TypicalPrice is (high+low+close)/3, the VWAP weighting price.
func (c Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}

// Closes extracts the close series from a candle slice.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// LastClose returns the most recent close, or nil for an empty series.
func LastClose(candles []Candle) *float64 {
	if len(candles) == 0 {
		return nil
	}
	v := candles[len(candles)-1].Close
	return &v
}
