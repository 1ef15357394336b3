package engine

// EdgeResult compares model probabilities to market-implied ones. All
// four fields are nil together iff either input quote price was nil; no
// partial results are produced.
type EdgeResult struct {
	MarketUp   *float64
	MarketDown *float64
	EdgeUp     *float64
	EdgeDown   *float64
}

// ComputeEdge converts quote prices in cents to implied probabilities
// (normalized by their sum, clamped to [0,1]) and subtracts them from
// the model's probabilities.
func ComputeEdge(modelUp, modelDown float64, upCents, downCents *float64) EdgeResult {
	if upCents == nil || downCents == nil {
		return EdgeResult{}
	}

	sum := *upCents + *downCents
	if sum <= 0 {
		return EdgeResult{}
	}

	marketUp := clamp(*upCents/sum, 0, 1)
	marketDown := clamp(*downCents/sum, 0, 1)
	edgeUp := modelUp - marketUp
	edgeDown := modelDown - marketDown

	return EdgeResult{
		MarketUp:   &marketUp,
		MarketDown: &marketDown,
		EdgeUp:     &edgeUp,
		EdgeDown:   &edgeDown,
	}
}
