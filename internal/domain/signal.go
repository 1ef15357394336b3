package domain

// MACDValues is the MACD triple plus histogram momentum. HistDelta is
// nil when fewer than two histogram points exist.
type MACDValues struct {
	MACD      float64  `json:"macd"`
	Signal    float64  `json:"signal"`
	Hist      float64  `json:"hist"`
	HistDelta *float64 `json:"histDelta"`
}

// IndicatorSnapshot is the per-cycle view of all technical signals for
// one asset. Fields are nil when the candle history is too short to
// compute them. Snapshots are recomputed every cycle, never persisted.
type IndicatorSnapshot struct {
	Price     *float64
	VWAP      *float64
	VWAPSlope *float64
	RSI       *float64
	RSISlope  *float64
	MACD      *MACDValues
}

// Heiken-Ashi candle colors.
const (
	ColorGreen = "green"
	ColorRed   = "red"
)

// SignalSnapshot is the reduced snapshot journaled with each entry so
// outcomes can be analyzed against the signals that produced them.
type SignalSnapshot struct {
	Price         *float64 `json:"price"`
	VWAP          *float64 `json:"vwap"`
	VWAPSlope     *float64 `json:"vwapSlope"`
	RSI           *float64 `json:"rsi"`
	RSISlope      *float64 `json:"rsiSlope"`
	MACDHist      *float64 `json:"macdHist"`
	MACDHistDelta *float64 `json:"macdHistDelta"`
	ModelProb     *float64 `json:"modelProb"`
	Edge          *float64 `json:"edge"`
	TimeRemaining *float64 `json:"timeRemaining"`
}

// Reduce collapses an IndicatorSnapshot into the journaled form,
// attaching the model probability, edge and time remaining that drove
// the decision.
func (s *IndicatorSnapshot) Reduce(modelProb, edge, timeRemaining *float64) *SignalSnapshot {
	if s == nil {
		return nil
	}
	out := &SignalSnapshot{
		Price:         s.Price,
		VWAP:          s.VWAP,
		VWAPSlope:     s.VWAPSlope,
		RSI:           s.RSI,
		RSISlope:      s.RSISlope,
		ModelProb:     modelProb,
		Edge:          edge,
		TimeRemaining: timeRemaining,
	}
	if s.MACD != nil {
		h := s.MACD.Hist
		out.MACDHist = &h
		out.MACDHistDelta = s.MACD.HistDelta
	}
	return out
}
