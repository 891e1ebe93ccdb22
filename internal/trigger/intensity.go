package trigger

import (
	"math"
	"math/rand"
)

// #region intensity
// IntensityHeuristic declares a trigger when an intensity proxy computed
// from shower energy and view angle exceeds an empirical floor:
//
//	intensity = (Eshower/1e9) * exp(Intercept + Slope*view)
//
// This deliberately ignores antenna gain, frequency-dependent noise and
// SNR realization noise; the voltage-snr strategy carries those.
type IntensityHeuristic struct {
	Intercept float64
	Slope     float64 // per radian of view angle
	Threshold float64
}

// DefaultIntensityHeuristic returns the production constants.
func DefaultIntensityHeuristic() *IntensityHeuristic {
	return &IntensityHeuristic{
		Intercept: -7.7,
		Slope:     -0.39,
		Threshold: 2.4e-9,
	}
}

// Name implements Strategy.
func (*IntensityHeuristic) Name() string { return string(StrategyIntensity) }

// Decide implements Strategy. It never consumes the rng.
func (h *IntensityHeuristic) Decide(_ *rand.Rand, in Input) bool {
	intensity := (in.ShowerEnergyEV / 1e9) * math.Exp(h.Intercept+h.Slope*in.ViewRad)
	return intensity > h.Threshold
}

// #endregion intensity
