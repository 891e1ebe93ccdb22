package trigger

import (
	"math"
	"math/rand"

	"github.com/AnushkaDurg/poinsseta/internal/efield"
)

// #region voltage-snr
// VoltageSNR computes the band-summed antenna voltage for each trial,
// forms an SNR against the integrated noise spectrum, throws a Rician
// realization, and triggers above the SNR threshold.
type VoltageSNR struct {
	Field        *efield.Param
	Noise        []float64
	FreqsMHz     []float64
	Antennas     int
	SNRThreshold float64
}

// Name implements Strategy.
func (*VoltageSNR) Name() string { return string(StrategyVoltageSNR) }

// Decide implements Strategy. Consumes two normal draws per trial.
func (v *VoltageSNR) Decide(rng *rand.Rand, in Input) bool {
	volt := v.Field.Voltage(
		in.ViewDeg, in.ExitZenithDeg, in.DecayAltKm,
		v.FreqsMHz, in.ShowerEnergyEV, in.Gain, v.Antennas,
	)

	var signal, noiseSq float64
	for i, w := range volt {
		signal += w
		noiseSq += v.Noise[i] * v.Noise[i]
	}
	snr := signal / math.Sqrt(noiseSq)

	// Rician realization: in-phase component at the mean SNR plus an
	// independent quadrature component.
	realized := math.Hypot(rng.NormFloat64()+snr, rng.NormFloat64())
	return realized > v.SNRThreshold
}

// #endregion voltage-snr
