package engine

import (
	"math"
	"testing"
)

func TestComputeEdge_NilPriceNullsEverything(t *testing.T) {
	cases := []struct {
		name     string
		up, down *float64
	}{
		{"nil up", nil, f(45)},
		{"nil down", f(55), nil},
		{"both nil", nil, nil},
	}
	for _, tc := range cases {
		got := ComputeEdge(0.6, 0.4, tc.up, tc.down)
		if got.MarketUp != nil || got.MarketDown != nil || got.EdgeUp != nil || got.EdgeDown != nil {
			t.Errorf("%s: expected all-nil result, got %+v", tc.name, got)
		}
	}
}

func TestComputeEdge_ImpliedProbabilitiesNormalized(t *testing.T) {
	// 55 + 45 = 100: implied probabilities are the prices directly.
	got := ComputeEdge(0.62, 0.38, f(55), f(45))
	if got.MarketUp == nil {
		t.Fatal("expected result")
	}
	if math.Abs(*got.MarketUp-0.55) > 1e-12 {
		t.Errorf("marketUp = %v, want 0.55", *got.MarketUp)
	}
	if math.Abs(*got.MarketDown-0.45) > 1e-12 {
		t.Errorf("marketDown = %v, want 0.45", *got.MarketDown)
	}
	if math.Abs(*got.EdgeUp-0.07) > 1e-12 {
		t.Errorf("edgeUp = %v, want 0.07", *got.EdgeUp)
	}
	if math.Abs(*got.EdgeDown-(-0.07)) > 1e-12 {
		t.Errorf("edgeDown = %v, want -0.07", *got.EdgeDown)
	}
}

func TestComputeEdge_OverroundNormalized(t *testing.T) {
	// Prices summing over 100 get normalized by their sum.
	got := ComputeEdge(0.5, 0.5, f(60), f(60))
	if got.MarketUp == nil {
		t.Fatal("expected result")
	}
	if math.Abs(*got.MarketUp-0.5) > 1e-12 {
		t.Errorf("marketUp = %v, want 0.5", *got.MarketUp)
	}
	if math.Abs(*got.EdgeUp) > 1e-12 {
		t.Errorf("edgeUp = %v, want 0", *got.EdgeUp)
	}
}

func TestComputeEdge_ZeroSum(t *testing.T) {
	got := ComputeEdge(0.6, 0.4, f(0), f(0))
	if got.EdgeUp != nil || got.EdgeDown != nil {
		t.Errorf("zero price sum: expected nil edges, got %+v", got)
	}
}
