package aeff

import (
	"math"

	"github.com/AnushkaDurg/poinsseta/internal/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// #region visibility
// visibilityMask flags trials whose decay point cannot contribute a
// trigger. Two cuts apply, both affecting only the trigger stage:
//
//  1. Decay points jointly beyond the geometric horizon distance AND
//     below the horizon angle are physically hidden by the Earth.
//  2. Decay points above the payload's local horizontal would be removed
//     as background by the analysis cuts, so they earn no trigger credit
//     even though they are geometrically observable.
func visibilityMask(b *geom.Batch, decayLen []float64, altitude float64, ice int) []bool {
	m := b.Size()
	out := make([]bool, m)

	horizonDist := geom.DistanceToHorizon(altitude, ice)
	horizonAng := geom.HorizonAngle(altitude, ice)
	zenith := r3.Unit(b.Beacon)

	for j := 0; j < m; j++ {
		decayPoint := r3.Add(b.Trials[j], r3.Scale(decayLen[j], b.Axis[j]))
		v := r3.Sub(decayPoint, b.Beacon)
		d := r3.Norm(v)
		if d == 0 {
			continue
		}

		// Angle of the decay point relative to the payload's local
		// horizontal; more negative is further below.
		cosZen := clampUnit(r3.Dot(zenith, r3.Scale(1/d, v)))
		theta := math.Pi/2 - math.Acos(cosZen)

		beyond := d > horizonDist
		below := theta < horizonAng
		if (beyond && below) || theta > 0 {
			out[j] = true
		}
	}
	return out
}

func clampUnit(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}

// #endregion visibility
