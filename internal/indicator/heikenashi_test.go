package indicator

import (
	"testing"

	"updown-bot/internal/domain"
)

func TestHeikenAshi_FirstCandleSeed(t *testing.T) {
	candles := []domain.Candle{
		{Open: 100, High: 120, Low: 90, Close: 110},
	}
	ha := HeikenAshi(candles)
	if len(ha) != 1 {
		t.Fatalf("expected 1 candle, got %d", len(ha))
	}

	wantClose := (100.0 + 120.0 + 90.0 + 110.0) / 4
	wantOpen := (100.0 + 110.0) / 2
	if ha[0].Close != wantClose {
		t.Errorf("haClose = %v, want %v", ha[0].Close, wantClose)
	}
	if ha[0].Open != wantOpen {
		t.Errorf("haOpen = %v, want %v", ha[0].Open, wantOpen)
	}
	if ha[0].High != 120 {
		t.Errorf("haHigh = %v, want 120", ha[0].High)
	}
	if ha[0].Low != 90 {
		t.Errorf("haLow = %v, want 90", ha[0].Low)
	}
	if ha[0].Color != domain.ColorGreen {
		t.Errorf("color = %s, want green (close %v >= open %v)", ha[0].Color, wantClose, wantOpen)
	}
}

func TestHeikenAshi_OpenChains(t *testing.T) {
	candles := []domain.Candle{
		{Open: 100, High: 110, Low: 95, Close: 105},
		{Open: 105, High: 115, Low: 100, Close: 110},
	}
	ha := HeikenAshi(candles)
	if len(ha) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(ha))
	}
	wantOpen := (ha[0].Open + ha[0].Close) / 2
	if ha[1].Open != wantOpen {
		t.Errorf("second haOpen = %v, want midpoint %v", ha[1].Open, wantOpen)
	}
}

func TestStreak(t *testing.T) {
	up := domain.Candle{Open: 100, High: 112, Low: 99, Close: 110}
	down := domain.Candle{Open: 110, High: 111, Low: 90, Close: 92}

	ha := HeikenAshi([]domain.Candle{up, down, down, up, up, up})
	color, count := Streak(ha)
	if color != domain.ColorGreen {
		t.Errorf("streak color = %s, want green", color)
	}
	if count != 3 {
		t.Errorf("streak count = %d, want 3", count)
	}

	color, count = Streak(nil)
	if color != "" || count != 0 {
		t.Errorf("empty streak = (%s, %d), want (\"\", 0)", color, count)
	}
}
