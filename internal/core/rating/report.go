package rating

// Accuracy accumulates prediction quality on the held-out evaluation year.
// Near-ties (realized outcome in the 0.4–0.6 window) are skipped before
// anything is accumulated, so Total counts only decisive samples.
type Accuracy struct {
	Brier       float64
	Total       int
	WinsCorrect int
}

func (a *Accuracy) record(expected, actual float64) {
	if actual > 0.4 && actual < 0.6 {
		return
	}
	diff := expected - actual
	a.Brier += diff * diff
	a.Total++
	if diff > -0.5 && diff < 0.5 {
		a.WinsCorrect++
	}
}

// BrierMean is the mean squared error of the recorded predictions.
func (a Accuracy) BrierMean() float64 {
	if a.Total == 0 {
		return 0
	}
	return a.Brier / float64(a.Total)
}

// BSS is the Brier skill score against a constant 0.5 predictor.
func (a Accuracy) BSS() float64 {
	if a.Total == 0 {
		return 0
	}
	return 1 - a.BrierMean()/0.25
}

// HitRate is the share of decisive matches whose winner was predicted.
func (a Accuracy) HitRate() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.WinsCorrect) / float64(a.Total)
}
