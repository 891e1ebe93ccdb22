package geom

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// #region sampler
// Sampler throws Monte-Carlo trial geometries for a payload looking down
// at the ice surface. The payload sits on the +z axis; its local
// horizontal is the x axis, so a line of sight at elevation e (negative =
// below horizontal) points along (cos e, 0, sin e).
type Sampler struct {
	Altitude float64 // payload altitude above the ice surface (km)
	MaxView  float64 // half-angle of the sampled view cone (rad)
	Ice      int     // ice-thickness class (km, 0..MaxIceThickness)
}

// NewSampler validates the geometry configuration and returns a sampler.
func NewSampler(altitude, maxView float64, ice int) (*Sampler, error) {
	if altitude <= 0 {
		return nil, fmt.Errorf("geometry: altitude must be positive, got %g", altitude)
	}
	if maxView <= 0 || maxView >= math.Pi/2 {
		return nil, fmt.Errorf("geometry: max view angle %g rad out of range (0, pi/2)", maxView)
	}
	if ice < 0 || ice > MaxIceThickness {
		return nil, fmt.Errorf("geometry: ice thickness class %d not in 0..%d", ice, MaxIceThickness)
	}
	return &Sampler{Altitude: altitude, MaxView: maxView, Ice: ice}, nil
}

// #endregion sampler

// #region sample
// Sample throws n rays uniformly in solid angle within the view cone
// around the line of sight at the given elevation and keeps those that
// intersect the surface with the shower axis emerging above the local
// horizontal. An elevation whose line of sight misses the surface yields
// an empty batch with zero area.
//
// In point-source mode every tau travels parallel to the source
// direction, so the shower axis is shared by all trials.
func (s *Sampler) Sample(rng *rand.Rand, elevation float64, n int) (Batch, error) {
	if n <= 0 {
		return Batch{}, fmt.Errorf("geometry: trial count must be positive, got %d", n)
	}

	surface := EarthRadius + float64(s.Ice)
	beacon := r3.Vec{Z: surface + s.Altitude}

	// Line of sight from the payload toward the source elevation.
	los := r3.Vec{X: math.Cos(elevation), Z: math.Sin(elevation)}

	// Shower axis: from the source through the Earth toward the payload.
	axis := r3.Scale(-1, los)

	dc, ok := intersectSphere(beacon, los, surface)
	if !ok {
		return Batch{Beacon: beacon}, nil
	}

	// Footprint of the view cone on the surface, approximated as the
	// projected ellipse at the central intersection point.
	center := r3.Add(beacon, r3.Scale(dc, los))
	normal := r3.Unit(center)
	cosInc := math.Abs(r3.Dot(los, normal))
	radius := dc * math.Tan(s.MaxView)
	area := math.Pi * radius * radius / cosInc

	e1, e2 := orthobasis(los)
	cosMax := math.Cos(s.MaxView)

	b := Batch{Beacon: beacon, Area: area}
	for i := 0; i < n; i++ {
		// Uniform in solid angle within the cone.
		cosT := 1 - rng.Float64()*(1-cosMax)
		sinT := math.Sqrt(1 - cosT*cosT)
		phi := 2 * math.Pi * rng.Float64()

		dir := r3.Add(
			r3.Scale(cosT, los),
			r3.Add(
				r3.Scale(sinT*math.Cos(phi), e1),
				r3.Scale(sinT*math.Sin(phi), e2),
			),
		)

		d, hit := intersectSphere(beacon, dir, surface)
		if !hit {
			continue
		}
		exit := r3.Add(beacon, r3.Scale(d, dir))
		outward := r3.Unit(exit)

		// Projection of the shower axis on the outward surface normal.
		dot := r3.Dot(axis, outward)
		if dot <= 0 {
			// Tau would re-enter the surface; no exit here.
			continue
		}
		emergence := math.Pi/2 - math.Acos(dot)

		toBeacon := r3.Sub(beacon, exit)
		dBeacon := r3.Norm(toBeacon)
		view := math.Acos(clamp(r3.Dot(axis, r3.Scale(1/dBeacon, toBeacon)), -1, 1))

		b.Emergence = append(b.Emergence, emergence)
		b.View = append(b.View, view)
		b.DBeacon = append(b.DBeacon, dBeacon)
		b.Dot = append(b.Dot, dot)
		b.Trials = append(b.Trials, exit)
		b.Axis = append(b.Axis, axis)
	}
	return b, nil
}

// #endregion sample

// #region helpers
// intersectSphere returns the distance along dir from origin to the first
// intersection with the sphere of the given radius about the geocenter.
func intersectSphere(origin, dir r3.Vec, radius float64) (float64, bool) {
	b := r3.Dot(origin, dir)
	c := r3.Dot(origin, origin) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	d := -b - math.Sqrt(disc)
	if d <= 0 {
		return 0, false
	}
	return d, true
}

// orthobasis returns two unit vectors orthogonal to v and to each other.
func orthobasis(v r3.Vec) (r3.Vec, r3.Vec) {
	ref := r3.Vec{Y: 1}
	if math.Abs(v.Y) > 0.9 {
		ref = r3.Vec{X: 1}
	}
	e1 := r3.Unit(r3.Cross(v, ref))
	e2 := r3.Cross(v, e1)
	return e1, e2
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// #endregion helpers
