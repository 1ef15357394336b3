package indicator

import (
	"math"
	"testing"
)

func TestRSI_InsufficientData(t *testing.T) {
	closes := []float64{1, 2, 3}
	if got := RSI(closes, 14); got != nil {
		t.Errorf("expected nil for %d closes, got %v", len(closes), *got)
	}
	// Exactly period closes is still one short.
	closes = make([]float64, 14)
	if got := RSI(closes, 14); got != nil {
		t.Errorf("expected nil at period closes, got %v", *got)
	}
}

func TestRSI_StrictlyIncreasing(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	got := RSI(closes, 14)
	if got == nil {
		t.Fatal("expected RSI value")
	}
	if *got != 100 {
		t.Errorf("strictly increasing series: expected RSI 100, got %v", *got)
	}
}

func TestRSI_StrictlyDecreasing(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	got := RSI(closes, 14)
	if got == nil {
		t.Fatal("expected RSI value")
	}
	if *got > 1e-9 {
		t.Errorf("strictly decreasing series: expected RSI 0, got %v", *got)
	}
}

func TestRSI_MonotonicInPositiveDeltas(t *testing.T) {
	// Fixed-length windows of unit moves: more up-moves must never
	// lower the RSI.
	const n = 20
	prev := -1.0
	for ups := 0; ups <= n; ups++ {
		closes := make([]float64, n+1)
		closes[0] = 100
		for i := 1; i <= n; i++ {
			if i <= ups {
				closes[i] = closes[i-1] + 1
			} else {
				closes[i] = closes[i-1] - 1
			}
		}
		got := RSI(closes, 14)
		if got == nil {
			t.Fatalf("ups=%d: expected RSI value", ups)
		}
		if *got < prev-1e-9 {
			t.Errorf("ups=%d: RSI %v decreased below %v", ups, *got, prev)
		}
		prev = *got
	}
}

// naiveRSISeries recomputes the full RSI over every prefix, the way the
// slope input was originally produced. Used to pin the incremental
// series against it.
func naiveRSISeries(closes []float64, period int) []float64 {
	var out []float64
	for i := period; i < len(closes); i++ {
		if v := RSI(closes[:i+1], period); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func TestRSISeries_MatchesNaiveRecomputation(t *testing.T) {
	closes := make([]float64, 60)
	closes[0] = 1000
	for i := 1; i < len(closes); i++ {
		// Deterministic pseudo-random walk.
		step := math.Sin(float64(i)*1.7)*3 + math.Cos(float64(i)*0.3)
		closes[i] = closes[i-1] + step
	}

	fast := RSISeries(closes, 14)
	slow := naiveRSISeries(closes, 14)

	if len(fast) != len(slow) {
		t.Fatalf("length mismatch: incremental %d vs naive %d", len(fast), len(slow))
	}
	for i := range fast {
		if math.Abs(fast[i]-slow[i]) > 1e-9 {
			t.Errorf("index %d: incremental %v != naive %v", i, fast[i], slow[i])
		}
	}
}

func TestSlopeLast(t *testing.T) {
	values := []float64{1, 2, 4, 8}
	got := SlopeLast(values, 3)
	if got == nil {
		t.Fatal("expected slope")
	}
	// (8 - 2) / 3
	if math.Abs(*got-2) > 1e-12 {
		t.Errorf("expected slope 2, got %v", *got)
	}

	if SlopeLast(values, 5) != nil {
		t.Error("expected nil slope for short input")
	}
}

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	got := SMA(values, 3)
	if got == nil || *got != 4 {
		t.Errorf("expected SMA 4, got %v", got)
	}
	if SMA(values, 6) != nil {
		t.Error("expected nil SMA for short input")
	}
}
