// Package decay models the probability that an exiting tau decays within
// the portion of its track visible to the payload.
package decay

import "math"

// #region probability
// Model computes decay probabilities from sampled decay lengths.
// The zero value is ready to use.
type Model struct{}

// Probability returns the probability that a tau with mean decay length
// lengthKm decays before passing the payload at distance dKm. A
// non-positive decay length means the tau decays immediately.
func (Model) Probability(lengthKm, dKm float64) float64 {
	if dKm <= 0 {
		return 0
	}
	if lengthKm <= 0 {
		return 1
	}
	return 1 - math.Exp(-dKm/lengthKm)
}

// #endregion probability
