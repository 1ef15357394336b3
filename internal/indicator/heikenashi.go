package indicator

import "updown-bot/internal/domain"

// HACandle is a Heiken-Ashi smoothed candle.
type HACandle struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
	Color string // domain.ColorGreen or domain.ColorRed
}

// HeikenAshi transforms raw candles into Heiken-Ashi candles:
// haClose = (o+h+l+c)/4, haOpen = midpoint of the previous HA body
// (seeded as (o+c)/2), haHigh/haLow extended over the HA body. A candle
// with haClose >= haOpen is green, otherwise red.
func HeikenAshi(candles []domain.Candle) []HACandle {
	if len(candles) == 0 {
		return nil
	}

	ha := make([]HACandle, len(candles))
	for i, c := range candles {
		haClose := (c.Open + c.High + c.Low + c.Close) / 4

		var haOpen float64
		if i == 0 {
			haOpen = (c.Open + c.Close) / 2
		} else {
			haOpen = (ha[i-1].Open + ha[i-1].Close) / 2
		}

		haHigh := max(c.High, haOpen, haClose)
		haLow := min(c.Low, haOpen, haClose)

		color := domain.ColorRed
		if haClose >= haOpen {
			color = domain.ColorGreen
		}

		ha[i] = HACandle{Open: haOpen, High: haHigh, Low: haLow, Close: haClose, Color: color}
	}

	return ha
}

// Streak counts the trailing candles sharing the last candle's color,
// scanning backward until the color changes. Returns ("", 0) for an
// empty series.
func Streak(ha []HACandle) (string, int) {
	if len(ha) == 0 {
		return "", 0
	}

	last := ha[len(ha)-1].Color
	count := 0
	for i := len(ha) - 1; i >= 0; i-- {
		if ha[i].Color != last {
			break
		}
		count++
	}

	return last, count
}
