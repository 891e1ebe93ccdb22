package aeff

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

// #region snapshot
// snapshotVersion guards against loading snapshots written by an
// incompatible layout.
const snapshotVersion = 1

// snapshotJSON is the on-disk JSON form of a result.
type snapshotJSON struct {
	Version       int         `json:"version"`
	SavedAt       time.Time   `json:"saved_at"`
	N0            []int       `json:"n0"`
	Elevation     []float64   `json:"elevation"`
	EffectiveArea [][]float64 `json:"effective_area"`
	Geometric     []float64   `json:"geometric"`
	Pexit         []float64   `json:"pexit"`
	Pdecay        []float64   `json:"pdecay"`
	Ptrigger      []float64   `json:"ptrigger"`
	Args          Args        `json:"args"`
}

// Save writes the result to path as a JSON snapshot.
func (a *EffectiveArea) Save(path string) error {
	s := snapshotJSON{
		Version:       snapshotVersion,
		SavedAt:       time.Now().UTC(),
		N0:            a.N0,
		Elevation:     a.Elevation,
		EffectiveArea: a.EffectiveArea,
		Geometric:     a.Geometric,
		Pexit:         a.Pexit,
		Pdecay:        a.Pdecay,
		Ptrigger:      a.Ptrigger,
		Args:          a.Args,
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// FromFile loads one result from a JSON snapshot.
func FromFile(path string) (*EffectiveArea, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var s snapshotJSON
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot %s has version %d, want %d", path, s.Version, snapshotVersion)
	}
	a := &EffectiveArea{
		N0:            s.N0,
		Elevation:     s.Elevation,
		EffectiveArea: s.EffectiveArea,
		Geometric:     s.Geometric,
		Pexit:         s.Pexit,
		Pdecay:        s.Pdecay,
		Ptrigger:      s.Ptrigger,
		Args:          s.Args,
	}
	if err := a.checkShape(); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return a, nil
}

// FromFiles loads and combines multiple snapshots with the default
// unweighted rule. When allowAltitudes is non-empty, snapshots whose
// recorded altitude is not close to any allowed value are skipped; the
// skipped count is returned so callers can surface it. Zero paths is an
// ErrNoInputs error.
func FromFiles(paths []string, allowAltitudes []float64) (*EffectiveArea, int, error) {
	if len(paths) == 0 {
		return nil, 0, fmt.Errorf("from files: %w", ErrNoInputs)
	}

	var combined *EffectiveArea
	skipped := 0
	for _, p := range paths {
		a, err := FromFile(p)
		if err != nil {
			return nil, skipped, err
		}
		if !altitudeAllowed(a.Args.Altitude, allowAltitudes) {
			skipped++
			continue
		}
		if combined == nil {
			combined = a
			continue
		}
		combined, err = Combine(combined, a)
		if err != nil {
			return nil, skipped, fmt.Errorf("combine %s: %w", p, err)
		}
	}
	if combined == nil {
		return nil, skipped, fmt.Errorf(
			"all %d snapshots skipped by the altitude filter: %w", skipped, ErrNoInputs)
	}
	return combined, skipped, nil
}

// altitudeAllowed reports whether alt is close to any allowed altitude.
// An empty allow-list admits everything.
func altitudeAllowed(alt float64, allowed []float64) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if math.Abs(alt-a) <= 1e-6 {
			return true
		}
	}
	return false
}

// #endregion snapshot
