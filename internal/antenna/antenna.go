// Package antenna models the payload antenna array: band noise voltage
// and azimuthal directivity per prototype.
package antenna

import (
	"fmt"
	"math"
)

// #region constants
const (
	boltzmann = 1.380649e-23 // J/K
	impedance = 50.0         // ohm
	bandwidth = 10e6         // Hz per sub-band
)

// #endregion constants

// #region prototypes
// prototypeParams holds the per-prototype antenna characteristics.
type prototypeParams struct {
	systemTempK float64 // receiver system temperature
	peakGainDBi float64 // boresight gain
	beamWidth   float64 // azimuthal HPBW (deg)
}

// prototypes enumerates the supported payload prototypes by deployment year.
var prototypes = map[int]prototypeParams{
	2018: {systemTempK: 140, peakGainDBi: 10.0, beamWidth: 60},
	2019: {systemTempK: 120, peakGainDBi: 12.5, beamWidth: 50},
}

// #endregion prototypes

// #region model
// Model implements the antenna collaborator interface. The zero value is
// ready to use.
type Model struct{}

// NoiseVoltage returns the RMS noise voltage per 10 MHz sub-band at the
// given center frequencies in MHz, for one prototype scaled to the given
// antenna count. Galactic noise dominates in the 30-80 MHz band and
// falls as f^-2.41; the receiver adds a flat system temperature.
func (Model) NoiseVoltage(centerFreqsMHz []float64, prototype, antennas int) ([]float64, error) {
	p, ok := prototypes[prototype]
	if !ok {
		return nil, fmt.Errorf("antenna: unknown prototype %d", prototype)
	}
	if antennas <= 0 {
		return nil, fmt.Errorf("antenna: antenna count must be positive, got %d", antennas)
	}

	out := make([]float64, len(centerFreqsMHz))
	for i, f := range centerFreqsMHz {
		skyTemp := 5800 * math.Pow(f/60.0, -2.41)
		temp := skyTemp + p.systemTempK
		// Incoherent noise sum across antennas.
		out[i] = math.Sqrt(boltzmann*temp*impedance*bandwidth) * math.Sqrt(float64(antennas))
	}
	return out, nil
}

// Directivity returns the linear gain at the given azimuths in degrees
// (0 = boresight) for one prototype. Azimuths are wrapped to [0, 360).
func (Model) Directivity(prototype int, azimuthsDeg []float64) ([]float64, error) {
	p, ok := prototypes[prototype]
	if !ok {
		return nil, fmt.Errorf("antenna: unknown prototype %d", prototype)
	}

	peak := math.Pow(10, p.peakGainDBi/10)
	out := make([]float64, len(azimuthsDeg))
	for i, az := range azimuthsDeg {
		a := math.Mod(az, 360)
		if a < 0 {
			a += 360
		}
		// Fold to off-boresight angle in [0, 180].
		if a > 180 {
			a = 360 - a
		}
		// Gaussian beam in azimuth with the prototype's HPBW.
		sigma := p.beamWidth / 2.355
		out[i] = peak * math.Exp(-a*a/(2*sigma*sigma))
	}
	return out, nil
}

// #endregion model
