package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// #region constants
// EarthRadius is the polar Earth radius in km used for all payload geometry.
const EarthRadius = 6356.755

// MaxIceThickness is the largest supported ice-thickness class in km.
// Supported classes are the integers 0 through MaxIceThickness.
const MaxIceThickness = 4

// #endregion constants

// #region batch
// Batch holds one Monte-Carlo batch of trial geometries at a single
// elevation angle. All slices share the same length: the number of trials
// whose sampled ray actually intersects the surface. Trials that miss are
// dropped; the caller keeps the thrown count as the reduction denominator.
type Batch struct {
	Emergence []float64 // tau emergence angle above local horizontal (rad)
	View      []float64 // view angle between shower axis and exit-to-payload vector (rad)
	DBeacon   []float64 // straight-line distance from exit point to payload (km)
	Dot       []float64 // projection of the shower axis onto the surface normal
	Trials    []r3.Vec  // exit points, geocentric (km)
	Axis      []r3.Vec  // shower propagation direction, unit vectors
	Beacon    r3.Vec    // payload position, geocentric (km)
	Area      float64   // sampled surface footprint (km²)
}

// Size returns the number of surviving trials in the batch.
func (b *Batch) Size() int {
	return len(b.Emergence)
}

// #endregion batch

// #region horizon
// DistanceToHorizon returns the straight-line distance in km from a payload
// at altitude h (km above the ice surface) to its geometric horizon, for
// the given ice-thickness class.
func DistanceToHorizon(h float64, ice int) float64 {
	r := EarthRadius + float64(ice)
	return math.Sqrt((r+h)*(r+h) - r*r)
}

// HorizonAngle returns the elevation angle of the geometric horizon as seen
// from a payload at altitude h, in radians. The value is negative: the
// horizon sits below the payload's local horizontal.
func HorizonAngle(h float64, ice int) float64 {
	r := EarthRadius + float64(ice)
	return -math.Acos(r / (r + h))
}

// #endregion horizon

// #region decay-geometry
// DecayView returns the view angle at the decay point. The exit point is
// seen at angle view off the shower axis at distance d from the payload;
// the decay point sits a further length L down-range along the axis.
func DecayView(view, d, length float64) float64 {
	along := d*math.Cos(view) - length
	transverse := d * math.Sin(view)
	return math.Atan2(transverse, along)
}

// DecayAltitude returns the altitude in km of the decay point above the
// ice surface, given the emergence angle at the exit point and the decay
// length along the shower axis.
func DecayAltitude(emergence, length float64, ice int) float64 {
	r := EarthRadius + float64(ice)
	rp := math.Sqrt(r*r + length*length + 2*r*length*math.Sin(emergence))
	return rp - r
}

// #endregion decay-geometry
