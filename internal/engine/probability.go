// Package engine turns indicator snapshots into directional
// probabilities, edges against market-implied odds, and trade decisions.
package engine

import "updown-bot/internal/domain"

// SignalInputs carries everything the scorer votes on. Nil fields mean
// the signal could not be computed and its rule abstains.
type SignalInputs struct {
	Price             *float64
	VWAP              *float64
	VWAPSlope         *float64
	RSI               *float64
	RSISlope          *float64
	MACD              *domain.MACDValues
	HeikenColor       string // "" when unknown
	HeikenCount       int
	FailedVWAPReclaim bool
}

// FromSnapshot builds scorer inputs from an indicator snapshot plus the
// optional Heiken-Ashi streak and reclaim flag.
func FromSnapshot(s *domain.IndicatorSnapshot, heikenColor string, heikenCount int, failedReclaim bool) SignalInputs {
	in := SignalInputs{
		HeikenColor:       heikenColor,
		HeikenCount:       heikenCount,
		FailedVWAPReclaim: failedReclaim,
	}
	if s != nil {
		in.Price = s.Price
		in.VWAP = s.VWAP
		in.VWAPSlope = s.VWAPSlope
		in.RSI = s.RSI
		in.RSISlope = s.RSISlope
		in.MACD = s.MACD
	}
	return in
}

// Score is the confluence vote result. RawUp = up/(up+down); the Laplace
// base of 1 per side keeps it strictly inside (0, 1).
type Score struct {
	UpScore   int
	DownScore int
	RawUp     float64
}

type voteSide int

const (
	voteUp voteSide = iota
	voteDown
)

// rule is one weighted confluence vote. Predicates return false both
// when the condition fails and when the underlying signal is missing.
type rule struct {
	name      string
	side      voteSide
	weight    int
	predicate func(SignalInputs) bool
}

// scoringRules is evaluated in order; the order and weights define the
// model and must not be reshuffled.
var scoringRules = []rule{
	{"price_above_vwap", voteUp, 2, func(in SignalInputs) bool {
		return in.Price != nil && in.VWAP != nil && *in.Price > *in.VWAP
	}},
	{"price_below_vwap", voteDown, 2, func(in SignalInputs) bool {
		return in.Price != nil && in.VWAP != nil && *in.Price < *in.VWAP
	}},
	{"vwap_slope_up", voteUp, 2, func(in SignalInputs) bool {
		return in.VWAPSlope != nil && *in.VWAPSlope > 0
	}},
	{"vwap_slope_down", voteDown, 2, func(in SignalInputs) bool {
		return in.VWAPSlope != nil && *in.VWAPSlope < 0
	}},
	{"rsi_bullish_momentum", voteUp, 2, func(in SignalInputs) bool {
		return in.RSI != nil && in.RSISlope != nil && *in.RSI > 55 && *in.RSISlope > 0
	}},
	{"rsi_bearish_momentum", voteDown, 2, func(in SignalInputs) bool {
		return in.RSI != nil && in.RSISlope != nil && *in.RSI < 45 && *in.RSISlope < 0
	}},
	{"macd_hist_expanding_up", voteUp, 2, func(in SignalInputs) bool {
		return in.MACD != nil && in.MACD.HistDelta != nil && in.MACD.Hist > 0 && *in.MACD.HistDelta > 0
	}},
	{"macd_hist_expanding_down", voteDown, 2, func(in SignalInputs) bool {
		return in.MACD != nil && in.MACD.HistDelta != nil && in.MACD.Hist < 0 && *in.MACD.HistDelta < 0
	}},
	{"macd_line_positive", voteUp, 1, func(in SignalInputs) bool {
		return in.MACD != nil && in.MACD.HistDelta != nil && in.MACD.MACD > 0
	}},
	{"macd_line_negative", voteDown, 1, func(in SignalInputs) bool {
		return in.MACD != nil && in.MACD.HistDelta != nil && in.MACD.MACD < 0
	}},
	{"heiken_green_streak", voteUp, 1, func(in SignalInputs) bool {
		return in.HeikenColor == domain.ColorGreen && in.HeikenCount >= 2
	}},
	{"heiken_red_streak", voteDown, 1, func(in SignalInputs) bool {
		return in.HeikenColor == domain.ColorRed && in.HeikenCount >= 2
	}},
	{"failed_vwap_reclaim", voteDown, 3, func(in SignalInputs) bool {
		return in.FailedVWAPReclaim
	}},
}

// ScoreDirection runs the weighted confluence vote. With every input
// missing or neutral the result is exactly 0.5 (up = down = 1).
func ScoreDirection(in SignalInputs) Score {
	up, down := 1, 1

	for _, r := range scoringRules {
		if !r.predicate(in) {
			continue
		}
		switch r.side {
		case voteUp:
			up += r.weight
		case voteDown:
			down += r.weight
		}
	}

	return Score{
		UpScore:   up,
		DownScore: down,
		RawUp:     float64(up) / float64(up+down),
	}
}
