package engine

import (
	"fmt"

	"updown-bot/internal/domain"
)

// Actions.
const (
	ActionEnter   = "ENTER"
	ActionNoTrade = "NO_TRADE"
)

// Phases bucket time-to-expiry; each fixes an edge threshold and a
// minimum probability floor.
const (
	PhaseEarly = "EARLY" // more than 10 minutes left
	PhaseMid   = "MID"   // (5, 10] minutes
	PhaseLate  = "LATE"  // (0, 5] minutes
)

// Signal strengths for ENTER decisions.
const (
	StrengthStrong   = "STRONG"   // edge >= 0.20
	StrengthGood     = "GOOD"     // edge >= 0.10
	StrengthMarginal = "MARGINAL"
)

// ReasonMissingMarketData is emitted when either edge is unknown.
const ReasonMissingMarketData = "missing_market_data"

// DecisionInput is one market's evaluation at a point in time. Nil edges
// mean market data was missing; nil model probabilities skip the floor
// check.
type DecisionInput struct {
	RemainingMinutes float64
	EdgeUp           *float64
	EdgeDown         *float64
	ModelUp          *float64
	ModelDown        *float64
}

// Decision is the verdict for one market and cycle.
type Decision struct {
	Action   string
	Side     string // UP, DOWN or "" for NO_TRADE
	Phase    string
	Strength string // set only on ENTER
	Edge     *float64
	Reason   string
}

// phaseParams returns the phase name, edge threshold and probability
// floor for the remaining time. Boundaries are half-open: exactly 10
// minutes is MID, exactly 5 is LATE.
func phaseParams(remainingMinutes float64) (phase string, threshold, minProb float64) {
	switch {
	case remainingMinutes > 10:
		return PhaseEarly, 0.05, 0.55
	case remainingMinutes > 5:
		return PhaseMid, 0.10, 0.60
	default:
		return PhaseLate, 0.20, 0.65
	}
}

// Decide applies the phase-dependent thresholds to the edge/probability
// pair. Ties between the two edges resolve to UP.
func Decide(in DecisionInput) Decision {
	phase, threshold, minProb := phaseParams(in.RemainingMinutes)

	if in.EdgeUp == nil || in.EdgeDown == nil {
		return Decision{Action: ActionNoTrade, Phase: phase, Reason: ReasonMissingMarketData}
	}

	side := domain.SideDown
	edge := *in.EdgeDown
	model := in.ModelDown
	if *in.EdgeUp >= *in.EdgeDown {
		side = domain.SideUp
		edge = *in.EdgeUp
		model = in.ModelUp
	}

	if edge < threshold {
		return Decision{
			Action: ActionNoTrade,
			Phase:  phase,
			Reason: fmt.Sprintf("edge %.1f%% < %.0f%% threshold", edge*100, threshold*100),
		}
	}

	if model != nil && *model < minProb {
		return Decision{
			Action: ActionNoTrade,
			Phase:  phase,
			Reason: fmt.Sprintf("prob %.1f%% < %.0f%% min", *model*100, minProb*100),
		}
	}

	strength := StrengthMarginal
	switch {
	case edge >= 0.20:
		strength = StrengthStrong
	case edge >= 0.10:
		strength = StrengthGood
	}

	return Decision{
		Action:   ActionEnter,
		Side:     side,
		Phase:    phase,
		Strength: strength,
		Edge:     &edge,
		Reason:   fmt.Sprintf("%.1f%% edge on %s", edge*100, side),
	}
}
