// Package efield provides the parameterized electric-field model used by
// the voltage/SNR trigger path. Parameterizations are keyed by payload
// altitude and addressed by the historical interpolator file names.
package efield

import (
	"fmt"
	"math"
)

// #region altitudes
// Altitudes lists the payload altitudes (km) with a field parameterization.
var Altitudes = []float64{0.5, 1.0, 2.0, 3.0, 4.0, 37.0}

// SnapAltitude returns the supported altitude nearest to h.
func SnapAltitude(h float64) float64 {
	best := Altitudes[0]
	for _, a := range Altitudes[1:] {
		if math.Abs(a-h) < math.Abs(best-h) {
			best = a
		}
	}
	return best
}

// FileName returns the interpolator name for the parameterization nearest
// to the given altitude, e.g. "interpolator_efields_4.0km".
func FileName(h float64) string {
	return fmt.Sprintf("interpolator_efields_%gkm", SnapAltitude(h))
}

// #endregion altitudes

// #region params
// fieldParams holds one altitude's field parameterization coefficients.
type fieldParams struct {
	peakV         float64 // peak voltage scale at 1e18 eV shower energy (V/MHz-band)
	coneDeg       float64 // Cherenkov cone angle (deg)
	widthDeg      float64 // off-cone gaussian width (deg)
	freqFalloff   float64 // exponential falloff scale (MHz)
	zenithStretch float64 // stretch of the cone with exit zenith
}

var paramsByAltitude = map[float64]fieldParams{
	0.5:  {peakV: 3.4e-5, coneDeg: 1.0, widthDeg: 0.45, freqFalloff: 220, zenithStretch: 0.012},
	1.0:  {peakV: 2.9e-5, coneDeg: 1.0, widthDeg: 0.50, freqFalloff: 210, zenithStretch: 0.012},
	2.0:  {peakV: 2.2e-5, coneDeg: 1.1, widthDeg: 0.55, freqFalloff: 200, zenithStretch: 0.011},
	3.0:  {peakV: 1.8e-5, coneDeg: 1.1, widthDeg: 0.60, freqFalloff: 195, zenithStretch: 0.011},
	4.0:  {peakV: 1.5e-5, coneDeg: 1.2, widthDeg: 0.65, freqFalloff: 190, zenithStretch: 0.010},
	37.0: {peakV: 2.1e-6, coneDeg: 1.5, widthDeg: 0.90, freqFalloff: 160, zenithStretch: 0.008},
}

// #endregion params

// #region param
// Param evaluates the field parameterization for one altitude.
type Param struct {
	name     string
	altitude float64
	p        fieldParams
}

// New looks up a parameterization by interpolator name, as produced by
// FileName.
func New(name string) (*Param, error) {
	var alt float64
	if _, err := fmt.Sscanf(name, "interpolator_efields_%fkm", &alt); err != nil {
		return nil, fmt.Errorf("efield: bad interpolator name %q: %w", name, err)
	}
	p, ok := paramsByAltitude[alt]
	if !ok {
		return nil, fmt.Errorf("efield: no parameterization for altitude %g km", alt)
	}
	return &Param{name: name, altitude: alt, p: p}, nil
}

// Name returns the interpolator name this parameterization was loaded from.
func (f *Param) Name() string { return f.name }

// Voltage returns the antenna voltage per frequency for one trial: a
// gaussian off-cone profile scaled by shower energy, frequency falloff,
// antenna gain and coherent antenna summation.
func (f *Param) Voltage(viewDeg, exitZenithDeg, decayAltKm float64, freqsMHz []float64, showerEnergyEV, gain float64, antennas int) []float64 {
	cone := f.p.coneDeg + f.p.zenithStretch*exitZenithDeg
	off := viewDeg - cone
	profile := math.Exp(-off * off / (2 * f.p.widthDeg * f.p.widthDeg))

	// Showers that decay well above the ground radiate less coherently
	// toward a low payload.
	altFade := math.Exp(-decayAltKm / (f.altitude + 1))

	scale := f.p.peakV * (showerEnergyEV / 1e18) * profile * altFade *
		math.Sqrt(gain) * float64(antennas)

	out := make([]float64, len(freqsMHz))
	for i, freq := range freqsMHz {
		out[i] = scale * math.Exp(-freq/f.p.freqFalloff)
	}
	return out
}

// #endregion param
