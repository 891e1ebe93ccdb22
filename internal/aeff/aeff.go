// Package aeff holds the effective-area result entity and the per-elevation
// Monte-Carlo aggregation pipeline that produces it.
package aeff

import (
	"fmt"
	"math"
)

// #region entity
// EffectiveArea is the sampled effective-area curve of the payload across
// elevation, together with its decomposed factors. All per-elevation
// slices share the length of Elevation. Instances are immutable by
// convention: combination produces a new value.
type EffectiveArea struct {
	// N0 is the number of Monte-Carlo trials thrown per elevation bin.
	N0 []int `json:"n0"`

	// Elevation is the sampled payload elevation grid in degrees.
	Elevation []float64 `json:"elevation"`

	// EffectiveArea is the effective area in km², per (elevation, azimuth).
	EffectiveArea [][]float64 `json:"effective_area"`

	// Geometric is the mean geometric area in km² per elevation bin.
	Geometric []float64 `json:"geometric"`

	// Pexit, Pdecay and Ptrigger are the mean factor probabilities per bin.
	Pexit    []float64 `json:"pexit"`
	Pdecay   []float64 `json:"pdecay"`
	Ptrigger []float64 `json:"ptrigger"`

	// Args is the configuration snapshot this result was produced under.
	Args Args `json:"args"`
}

// newEffectiveArea allocates a zero-initialized result for the given
// elevation grid (degrees) and azimuth count.
func newEffectiveArea(elevationDeg []float64, azimuths int, args Args) *EffectiveArea {
	bins := len(elevationDeg)
	ea := &EffectiveArea{
		N0:            make([]int, bins),
		Elevation:     append([]float64(nil), elevationDeg...),
		EffectiveArea: make([][]float64, bins),
		Geometric:     make([]float64, bins),
		Pexit:         make([]float64, bins),
		Pdecay:        make([]float64, bins),
		Ptrigger:      make([]float64, bins),
		Args:          args,
	}
	for i := range ea.EffectiveArea {
		ea.EffectiveArea[i] = make([]float64, azimuths)
	}
	return ea
}

// #endregion entity

// #region combine
// Combine averages two independently-run results produced under identical
// configuration: trial counts sum, every other per-elevation array is the
// unweighted elementwise mean. This matches the historical behavior;
// CombineWeighted is the trial-count-weighted alternative.
func Combine(a, b *EffectiveArea) (*EffectiveArea, error) {
	if err := checkCombinable(a, b); err != nil {
		return nil, err
	}
	return combine(a, b, func(x, y float64, _, _ int) float64 {
		return 0.5 * (x + y)
	}), nil
}

// CombineWeighted averages two results weighting each elevation bin by
// the number of trials thrown there. Unlike Combine, chaining this
// operation reduces to a global trial-count-weighted mean.
func CombineWeighted(a, b *EffectiveArea) (*EffectiveArea, error) {
	if err := checkCombinable(a, b); err != nil {
		return nil, err
	}
	return combine(a, b, func(x, y float64, na, nb int) float64 {
		if na+nb == 0 {
			return 0
		}
		return (x*float64(na) + y*float64(nb)) / float64(na+nb)
	}), nil
}

// combine merges a and b with the given per-bin averaging rule. The rule
// receives the two values and both bins' trial counts.
func combine(a, b *EffectiveArea, avg func(x, y float64, na, nb int) float64) *EffectiveArea {
	out := newEffectiveArea(a.Elevation, len(a.EffectiveArea[0]), a.Args)
	for i := range a.Elevation {
		na, nb := a.N0[i], b.N0[i]
		out.N0[i] = na + nb
		out.Geometric[i] = avg(a.Geometric[i], b.Geometric[i], na, nb)
		out.Pexit[i] = avg(a.Pexit[i], b.Pexit[i], na, nb)
		out.Pdecay[i] = avg(a.Pdecay[i], b.Pdecay[i], na, nb)
		out.Ptrigger[i] = avg(a.Ptrigger[i], b.Ptrigger[i], na, nb)
		for k := range a.EffectiveArea[i] {
			out.EffectiveArea[i][k] = avg(a.EffectiveArea[i][k], b.EffectiveArea[i][k], na, nb)
		}
	}
	return out
}

// checkShape verifies that the per-elevation arrays agree with the
// elevation grid and that the area rows share one azimuth count. Results
// decoded from external storage can arrive truncated or ragged; indexing
// them without this check would panic.
func (a *EffectiveArea) checkShape() error {
	bins := len(a.Elevation)
	if bins == 0 {
		return fmt.Errorf("result has no elevation bins")
	}
	if len(a.N0) != bins || len(a.Geometric) != bins || len(a.Pexit) != bins ||
		len(a.Pdecay) != bins || len(a.Ptrigger) != bins || len(a.EffectiveArea) != bins {
		return fmt.Errorf("per-elevation arrays disagree with the %d-bin elevation grid", bins)
	}
	azimuths := len(a.EffectiveArea[0])
	for i, row := range a.EffectiveArea {
		if len(row) != azimuths {
			return fmt.Errorf("effective area row %d has %d azimuths, want %d", i, len(row), azimuths)
		}
	}
	return nil
}

// checkCombinable verifies the combination preconditions: well-formed
// inputs, elevation grids equal in length and numerically close, azimuth
// grids equal in length, and configuration snapshots exactly equal.
func checkCombinable(a, b *EffectiveArea) error {
	if err := a.checkShape(); err != nil {
		return err
	}
	if err := b.checkShape(); err != nil {
		return err
	}
	if len(a.Elevation) != len(b.Elevation) {
		return fmt.Errorf("elevation grids have %d and %d bins: %w",
			len(a.Elevation), len(b.Elevation), ErrConfigMismatch)
	}
	for i := range a.Elevation {
		if !isClose(a.Elevation[i], b.Elevation[i]) {
			return fmt.Errorf("elevation grids differ at bin %d (%g vs %g): %w",
				i, a.Elevation[i], b.Elevation[i], ErrConfigMismatch)
		}
	}
	if len(a.EffectiveArea[0]) != len(b.EffectiveArea[0]) {
		return fmt.Errorf("azimuth grids have %d and %d bins: %w",
			len(a.EffectiveArea[0]), len(b.EffectiveArea[0]), ErrConfigMismatch)
	}
	if !a.Args.Equal(b.Args) {
		return fmt.Errorf("argument snapshots differ: %w", ErrConfigMismatch)
	}
	return nil
}

// isClose mirrors the numpy closeness test used on elevation grids.
func isClose(a, b float64) bool {
	return math.Abs(a-b) <= 1e-8+1e-5*math.Abs(b)
}

// #endregion combine
