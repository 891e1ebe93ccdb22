// Package tauexit provides the tau exit lookup table: the probability that
// a tau neutrino interaction produces an exiting tau lepton at a given
// zenith angle, together with the mean energy of the exiting tau.
package tauexit

import (
	"fmt"
	"math"

	"github.com/AnushkaDurg/poinsseta/internal/geom"
)

// #region sample
// Sample is the per-trial output of the lookup table. Valid is false when
// no tau exits at the queried angle; callers must treat invalid samples as
// zero contribution rather than reading Prob or EnergyEV.
type Sample struct {
	Prob     float64 // exit probability
	EnergyEV float64 // exiting tau energy (eV)
	Valid    bool
}

// #endregion sample

// #region lut
// LUT interpolates exit probability and tau energy over emergence angle
// for one (neutrino energy, ice thickness) pair. Rows are tabulated at
// fixed emergence angles; queries interpolate linearly and are invalid
// outside the tabulated range.
type LUT struct {
	energyEV  float64
	ice       int
	emergence []float64 // tabulated emergence angles (deg)
	prob      []float64
	tauEnergy []float64 // eV
}

// New builds the lookup table for the given neutrino energy in eV and
// ice-thickness class. Energies are matched to the nearest tabulated
// decade between 1e17 and 1e21 eV.
func New(energyEV float64, ice int) (*LUT, error) {
	if energyEV < 1e17 || energyEV > 1e21 {
		return nil, fmt.Errorf("tauexit: energy %g eV outside tabulated range [1e17, 1e21]", energyEV)
	}
	if ice < 0 || ice > geom.MaxIceThickness {
		return nil, fmt.Errorf("tauexit: ice thickness class %d not in 0..%d", ice, geom.MaxIceThickness)
	}

	decade := math.Round(math.Log10(energyEV))
	row, ok := exitTables[int(decade)]
	if !ok {
		return nil, fmt.Errorf("tauexit: no table for energy decade 1e%d", int(decade))
	}

	l := &LUT{energyEV: energyEV, ice: ice}
	// Thicker ice regenerates more taus near the surface; the tabulated
	// base rows are for bare rock (class 0).
	thickness := 1 + 0.12*float64(ice)
	for _, r := range row {
		l.emergence = append(l.emergence, r.emergenceDeg)
		l.prob = append(l.prob, math.Min(1, r.prob*thickness))
		l.tauEnergy = append(l.tauEnergy, r.energyFraction*energyEV)
	}
	return l, nil
}

// #endregion lut

// #region evaluate
// Evaluate queries the table at the given zenith angles in degrees
// (zenith = 90° − emergence). Angles outside the tabulated emergence
// range produce invalid samples.
func (l *LUT) Evaluate(zenithDeg []float64) ([]Sample, error) {
	if len(l.emergence) == 0 {
		return nil, fmt.Errorf("tauexit: empty table")
	}
	out := make([]Sample, len(zenithDeg))
	lo := l.emergence[0]
	hi := l.emergence[len(l.emergence)-1]
	for i, z := range zenithDeg {
		em := 90 - z
		if em < lo || em > hi {
			continue // no tau exits here; sample stays invalid
		}
		out[i] = Sample{
			Prob:     interp(l.emergence, l.prob, em),
			EnergyEV: interp(l.emergence, l.tauEnergy, em),
			Valid:    true,
		}
	}
	return out, nil
}

// interp does piecewise-linear interpolation on a sorted grid.
func interp(xs, ys []float64, x float64) float64 {
	for i := 1; i < len(xs); i++ {
		if x <= xs[i] {
			t := (x - xs[i-1]) / (xs[i] - xs[i-1])
			return ys[i-1] + t*(ys[i]-ys[i-1])
		}
	}
	return ys[len(ys)-1]
}

// #endregion evaluate
