package aeff

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/AnushkaDurg/poinsseta/internal/geom"
	"github.com/AnushkaDurg/poinsseta/internal/tauexit"
	"github.com/AnushkaDurg/poinsseta/internal/trigger"
)

// #region collaborator-interfaces
// GeometrySampler produces one Monte-Carlo batch of trial geometries at a
// given elevation angle.
type GeometrySampler interface {
	Sample(rng *rand.Rand, elevationRad float64, n int) (geom.Batch, error)
}

// ExitModel maps zenith angles (degrees) to per-trial exit probability and
// exiting tau energy, with a validity flag where no tau exits.
type ExitModel interface {
	Evaluate(zenithDeg []float64) ([]tauexit.Sample, error)
}

// DecaySampler draws decay lengths and shower energies for exiting taus.
type DecaySampler interface {
	SampleRange(rng *rand.Rand, tauEnergyEV float64) float64
	SampleShowerEnergy(rng *rand.Rand, tauEnergyEV float64) float64
}

// DecayModel maps a decay length and payload distance to the probability
// that the decay happens within the visible path.
type DecayModel interface {
	Probability(lengthKm, dKm float64) float64
}

// AntennaModel provides the array noise spectrum and azimuthal gain.
type AntennaModel interface {
	NoiseVoltage(centerFreqsMHz []float64, prototype, antennas int) ([]float64, error)
	Directivity(prototype int, azimuthsDeg []float64) ([]float64, error)
}

// Collaborators bundles the physics models consumed by Calculate.
type Collaborators struct {
	Geometry  GeometrySampler
	Exit      ExitModel
	Decay     DecaySampler
	DecayProb DecayModel
	Antenna   AntennaModel
	Trigger   trigger.Strategy
}

// #endregion collaborator-interfaces

// #region config
// Config is the full input to one effective-area calculation.
type Config struct {
	EnergyEV     float64   // incident neutrino energy (eV)
	Elevation    []float64 // payload elevation grid (rad)
	Altitude     float64   // payload altitude (km)
	Prototype    int       // payload prototype year
	MaxView      float64   // maximum view angle (rad)
	IceThickness int       // ice-thickness class (km, 0..4)

	// Trials is the per-bin trial count. A single entry broadcasts to
	// every elevation bin.
	Trials []int

	Antennas         int
	MinFreq          float64 // MHz
	MaxFreq          float64 // MHz
	TriggerThreshold float64
	Azimuths         []float64 // gain evaluation azimuths (deg)

	// Seed feeds the per-bin random sources (Seed + bin index), making a
	// run bit-reproducible regardless of worker scheduling.
	Seed int64

	// Workers bounds the number of elevation bins computed concurrently.
	// Zero or one runs the bins sequentially.
	Workers int

	// Progress, when set, is invoked once per completed bin. It may be
	// called from multiple goroutines.
	Progress func(done, total int)
}

// DefaultConfig mirrors the historical defaults of the calculation.
func DefaultConfig() Config {
	return Config{
		Altitude:         3.87553,
		Prototype:        2018,
		MaxView:          3 * math.Pi / 180,
		IceThickness:     0,
		Trials:           []int{1_000_000},
		Antennas:         4,
		MinFreq:          30,
		MaxFreq:          80,
		TriggerThreshold: 5.0,
		Azimuths:         []float64{0},
		Workers:          1,
	}
}

// CenterFrequencies returns the center of each 10 MHz sub-band in the
// configured frequency range.
func (c Config) CenterFrequencies() []float64 {
	var out []float64
	for f := c.MinFreq + 5; f < c.MaxFreq; f += 10 {
		out = append(out, f)
	}
	return out
}

// trialCounts normalizes Trials to one count per elevation bin.
func (c Config) trialCounts() ([]int, error) {
	switch len(c.Trials) {
	case 1:
		out := make([]int, len(c.Elevation))
		for i := range out {
			out[i] = c.Trials[0]
		}
		return out, nil
	case len(c.Elevation):
		return append([]int(nil), c.Trials...), nil
	default:
		return nil, fmt.Errorf("trial counts must be scalar or match the %d elevation bins, got %d",
			len(c.Elevation), len(c.Trials))
	}
}

// #endregion config

// #region calculate
// Calculate runs the Monte-Carlo estimator over the configured elevation
// grid and returns the sampled effective-area curve with its decomposed
// factors. Elevation bins are data-independent and are computed by up to
// cfg.Workers concurrent workers, each writing a disjoint row of the
// output arrays. Collaborator errors abort the run unchanged; a bin whose
// sampler yields no emerging trials keeps its zero-initialized outputs.
func Calculate(ctx context.Context, cfg Config, col Collaborators) (*EffectiveArea, error) {
	if len(cfg.Elevation) == 0 {
		return nil, fmt.Errorf("calculate: elevation grid is empty")
	}
	trials, err := cfg.trialCounts()
	if err != nil {
		return nil, fmt.Errorf("calculate: %w", err)
	}
	for i, n := range trials {
		if n <= 0 {
			return nil, fmt.Errorf("calculate: trial count for bin %d must be positive, got %d", i, n)
		}
	}
	azimuths := cfg.Azimuths
	if len(azimuths) == 0 {
		azimuths = []float64{0}
	}

	gain, err := col.Antenna.Directivity(cfg.Prototype, wrapAzimuths(azimuths))
	if err != nil {
		return nil, fmt.Errorf("calculate: %w", err)
	}

	args := Args{
		EnergyEV:         cfg.EnergyEV,
		Altitude:         cfg.Altitude,
		Prototype:        cfg.Prototype,
		MaxView:          cfg.MaxView,
		IceThickness:     cfg.IceThickness,
		Antennas:         cfg.Antennas,
		Gain:             gain,
		TriggerThreshold: cfg.TriggerThreshold,
		MinFreq:          cfg.MinFreq,
		MaxFreq:          cfg.MaxFreq,
		Strategy:         col.Trigger.Name(),
	}

	elevationDeg := make([]float64, len(cfg.Elevation))
	for i, e := range cfg.Elevation {
		elevationDeg[i] = e * 180 / math.Pi
	}

	result := newEffectiveArea(elevationDeg, len(azimuths), args)
	copy(result.N0, trials)

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var done atomic.Int64
	total := len(cfg.Elevation)
	for i := range cfg.Elevation {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := runBin(result, i, cfg, col, trials[i], gain); err != nil {
				return fmt.Errorf("elevation bin %d (%.2f deg): %w", i, elevationDeg[i], err)
			}
			if cfg.Progress != nil {
				cfg.Progress(int(done.Add(1)), total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// #endregion calculate

// #region run-bin
// runBin computes one elevation bin, writing only row i of the output.
func runBin(out *EffectiveArea, i int, cfg Config, col Collaborators, n int, gain []float64) error {
	rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))

	batch, err := col.Geometry.Sample(rng, cfg.Elevation[i], n)
	if err != nil {
		return err
	}
	m := batch.Size()
	if m == 0 {
		// No trial emerges at this elevation under the geometric cut.
		// The bin keeps its zero outputs; this is a physical outcome.
		return nil
	}

	zenithDeg := make([]float64, m)
	for j, em := range batch.Emergence {
		zenithDeg[j] = 90 - em*180/math.Pi
	}

	exits, err := col.Exit.Evaluate(zenithDeg)
	if err != nil {
		return err
	}
	if len(exits) != m {
		return fmt.Errorf("exit model returned %d samples for %d trials", len(exits), m)
	}

	var (
		valid    = make([]float64, m) // 1 where a tau exits, else 0
		pexit    = make([]float64, m)
		pdecay   = make([]float64, m)
		decayLen = make([]float64, m)
		shower   = make([]float64, m)
		view     = make([]float64, m) // view angle at the decay point
	)
	for j := 0; j < m; j++ {
		if !exits[j].Valid {
			continue // no exit: zero contribution, nothing to sample
		}
		valid[j] = 1
		etau := exits[j].EnergyEV
		pexit[j] = exits[j].Prob
		decayLen[j] = col.Decay.SampleRange(rng, etau)
		pdecay[j] = col.DecayProb.Probability(decayLen[j], batch.DBeacon[j])
		view[j] = geom.DecayView(batch.View[j], batch.DBeacon[j], decayLen[j])
		shower[j] = col.Decay.SampleShowerEnergy(rng, etau)
	}

	// Trigger indicator per (azimuth, trial). The heuristic strategy is
	// gain-independent and yields identical columns.
	trig := make([][]float64, len(gain))
	for k := range trig {
		trig[k] = make([]float64, m)
	}
	for j := 0; j < m; j++ {
		if valid[j] == 0 {
			continue
		}
		in := trigger.Input{
			ShowerEnergyEV: shower[j],
			ViewRad:        view[j],
			ViewDeg:        view[j] * 180 / math.Pi,
			ExitZenithDeg:  zenithDeg[j],
			DecayAltKm:     geom.DecayAltitude(batch.Emergence[j], decayLen[j], cfg.IceThickness),
		}
		for k := range gain {
			in.Gain = gain[k]
			if col.Trigger.Decide(rng, in) {
				trig[k][j] = 1
			}
		}
	}

	// Geometric cuts suppress trigger credit only.
	suppressed := visibilityMask(&batch, decayLen, cfg.Altitude, cfg.IceThickness)
	for j, s := range suppressed {
		if s {
			for k := range trig {
				trig[k][j] = 0
			}
		}
	}

	ntrials := float64(n)
	out.Geometric[i] = batch.Area * floats.Sum(batch.Dot) / ntrials
	out.Pexit[i] = maskedMean(pexit, valid)
	out.Pdecay[i] = maskedMean(pdecay, valid)
	out.Ptrigger[i] = maskedMean(trig[0], valid)
	for k := range trig {
		var sum float64
		for j := 0; j < m; j++ {
			sum += batch.Area * batch.Dot[j] * pexit[j] * pdecay[j] * trig[k][j]
		}
		out.EffectiveArea[i][k] = sum / ntrials
	}
	return nil
}

// maskedMean averages x over the entries whose weight is nonzero,
// matching the masked-array convention of the historical pipeline. An
// all-invalid batch averages to zero.
func maskedMean(x, weights []float64) float64 {
	if floats.Sum(weights) == 0 {
		return 0
	}
	return stat.Mean(x, weights)
}

// wrapAzimuths maps azimuths into [0, 360).
func wrapAzimuths(az []float64) []float64 {
	out := make([]float64, len(az))
	for i, a := range az {
		w := math.Mod(a, 360)
		if w < 0 {
			w += 360
		}
		out[i] = w
	}
	return out
}

// #endregion run-bin
