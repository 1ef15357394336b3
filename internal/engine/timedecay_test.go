package engine

import (
	"math"
	"testing"
)

func TestApplyTimeDecay_FullWindowKeepsRaw(t *testing.T) {
	got := ApplyTimeDecay(0.8, 15, 15)
	if got.TimeDecay != 1 {
		t.Errorf("timeDecay = %v, want 1", got.TimeDecay)
	}
	if math.Abs(got.AdjustedUp-0.8) > 1e-12 {
		t.Errorf("adjustedUp = %v, want 0.8", got.AdjustedUp)
	}
}

func TestApplyTimeDecay_ExpiryRevertsToPrior(t *testing.T) {
	got := ApplyTimeDecay(0.9, 0, 15)
	if got.TimeDecay != 0 {
		t.Errorf("timeDecay = %v, want 0", got.TimeDecay)
	}
	if got.AdjustedUp != 0.5 || got.AdjustedDown != 0.5 {
		t.Errorf("at expiry adjusted = (%v, %v), want (0.5, 0.5)", got.AdjustedUp, got.AdjustedDown)
	}
}

func TestApplyTimeDecay_Halfway(t *testing.T) {
	got := ApplyTimeDecay(0.7, 7.5, 15)
	if math.Abs(got.TimeDecay-0.5) > 1e-12 {
		t.Errorf("timeDecay = %v, want 0.5", got.TimeDecay)
	}
	// 0.5 + (0.7-0.5)*0.5 = 0.6
	if math.Abs(got.AdjustedUp-0.6) > 1e-12 {
		t.Errorf("adjustedUp = %v, want 0.6", got.AdjustedUp)
	}
}

func TestApplyTimeDecay_SumsToOne(t *testing.T) {
	for _, rawUp := range []float64{0, 0.25, 0.5, 0.77, 1} {
		for _, mins := range []float64{0, 3, 7.5, 15, 30} {
			got := ApplyTimeDecay(rawUp, mins, 15)
			if math.Abs(got.AdjustedUp+got.AdjustedDown-1) > 1e-12 {
				t.Errorf("rawUp=%v mins=%v: adjusted sum = %v, want 1",
					rawUp, mins, got.AdjustedUp+got.AdjustedDown)
			}
			if got.TimeDecay < 0 || got.TimeDecay > 1 {
				t.Errorf("rawUp=%v mins=%v: timeDecay %v outside [0,1]", rawUp, mins, got.TimeDecay)
			}
		}
	}
}
