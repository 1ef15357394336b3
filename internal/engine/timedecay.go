package engine

// TimeAware is a probability shrunk toward the uninformative prior as
// expiry approaches. AdjustedUp and AdjustedDown always sum to 1.
type TimeAware struct {
	TimeDecay    float64 // 0..1, fraction of the window remaining
	AdjustedUp   float64
	AdjustedDown float64
}

// ApplyTimeDecay scales a raw UP probability by the fraction of the
// trading window remaining: far from expiry the model's confidence is
// applied in full, near expiry it reverts toward 0.5.
func ApplyTimeDecay(rawUp, remainingMinutes, windowMinutes float64) TimeAware {
	decay := clamp(remainingMinutes/windowMinutes, 0, 1)
	up := clamp(0.5+(rawUp-0.5)*decay, 0, 1)
	return TimeAware{
		TimeDecay:    decay,
		AdjustedUp:   up,
		AdjustedDown: 1 - up,
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
