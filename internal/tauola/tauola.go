// Package tauola samples tau decay kinematics: the distance an exiting
// tau travels before decaying and the energy of the resulting shower.
package tauola

import (
	"math"
	"math/rand"
)

// #region constants
const (
	// tauMassEV is the tau lepton mass in eV.
	tauMassEV = 1.77686e9

	// cTauKm is the tau decay length constant cτ in km.
	cTauKm = 8.703e-8
)

// #endregion constants

// #region sampler
// Sampler draws decay lengths and shower energies for exiting taus.
// The zero value is ready to use.
type Sampler struct{}

// MeanRange returns the mean decay length γcτ in km for a tau of the
// given energy in eV.
func (Sampler) MeanRange(tauEnergyEV float64) float64 {
	return tauEnergyEV / tauMassEV * cTauKm
}

// SampleRange draws one decay length in km from the exponential decay
// distribution for a tau of the given energy.
func (s Sampler) SampleRange(rng *rand.Rand, tauEnergyEV float64) float64 {
	if tauEnergyEV <= 0 {
		return 0
	}
	return rng.ExpFloat64() * s.MeanRange(tauEnergyEV)
}

// SampleShowerEnergy draws the visible shower energy in eV for one tau
// decay, using the tabulated energy-fraction distribution.
func (Sampler) SampleShowerEnergy(rng *rand.Rand, tauEnergyEV float64) float64 {
	if tauEnergyEV <= 0 {
		return 0
	}
	return sampleFraction(rng) * tauEnergyEV
}

// #endregion sampler

// #region fraction-cdf
// fractionCDF tabulates the cumulative distribution of the shower energy
// fraction across tau decay channels. The ~18% of decays into a muon
// produce essentially no shower, which is the mass at fraction zero.
var fractionCDF = []struct {
	fraction float64
	cdf      float64
}{
	{0.00, 0.18},
	{0.10, 0.26},
	{0.20, 0.36},
	{0.30, 0.47},
	{0.40, 0.58},
	{0.50, 0.68},
	{0.60, 0.77},
	{0.70, 0.85},
	{0.80, 0.92},
	{0.90, 0.97},
	{1.00, 1.00},
}

// sampleFraction inverts the fraction CDF at a uniform draw.
func sampleFraction(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u <= fractionCDF[0].cdf {
		return 0
	}
	for i := 1; i < len(fractionCDF); i++ {
		if u <= fractionCDF[i].cdf {
			lo, hi := fractionCDF[i-1], fractionCDF[i]
			t := (u - lo.cdf) / (hi.cdf - lo.cdf)
			return lo.fraction + t*(hi.fraction-lo.fraction)
		}
	}
	return 1
}

// #endregion fraction-cdf

// #region gamma
// LorentzGamma returns the boost factor of a tau at the given energy.
func LorentzGamma(tauEnergyEV float64) float64 {
	return math.Max(1, tauEnergyEV/tauMassEV)
}

// #endregion gamma
