package domain

import "time"

// MarketQuote describes one fixed-duration binary up/down market,
// uniquely identified by slug. Prices are in cents of a dollar; a nil
// price means the market did not quote that side.
type MarketQuote struct {
	Asset       string
	Slug        string
	Question    string
	ConditionID string
	EndDate     time.Time
	UpCents     *float64 // 0..100
	DownCents   *float64 // 0..100
	UpTokenID   string
	DownTokenID string
	NegRisk     bool
}

// Timing is the time left until a market resolves.
type Timing struct {
	RemainingMinutes float64
	Expired          bool
}

// TimeRemaining computes the minutes left until endDate, floored at zero.
func TimeRemaining(endDate, now time.Time) Timing {
	diff := endDate.Sub(now)
	mins := diff.Minutes()
	if mins < 0 {
		mins = 0
	}
	return Timing{RemainingMinutes: mins, Expired: diff <= 0}
}
