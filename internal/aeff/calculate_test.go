package aeff

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/AnushkaDurg/poinsseta/internal/antenna"
	"github.com/AnushkaDurg/poinsseta/internal/decay"
	"github.com/AnushkaDurg/poinsseta/internal/geom"
	"github.com/AnushkaDurg/poinsseta/internal/tauexit"
	"github.com/AnushkaDurg/poinsseta/internal/tauola"
	"github.com/AnushkaDurg/poinsseta/internal/trigger"
)

type fakeGeom struct {
	batch geom.Batch
	err   error
}

func (f fakeGeom) Sample(_ *rand.Rand, _ float64, _ int) (geom.Batch, error) {
	return f.batch, f.err
}

type fakeExit struct {
	prob    float64
	energy  float64
	invalid map[int]bool
	err     error
}

func (f fakeExit) Evaluate(zenithDeg []float64) ([]tauexit.Sample, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]tauexit.Sample, len(zenithDeg))
	for i := range out {
		if f.invalid[i] {
			continue
		}
		out[i] = tauexit.Sample{Prob: f.prob, EnergyEV: f.energy, Valid: true}
	}
	return out, nil
}

type fakeDecaySampler struct {
	length float64
	shower float64
}

func (f fakeDecaySampler) SampleRange(_ *rand.Rand, _ float64) float64 {
	return f.length
}

func (f fakeDecaySampler) SampleShowerEnergy(_ *rand.Rand, _ float64) float64 {
	return f.shower
}

type fakeDecayModel struct{ p float64 }

func (f fakeDecayModel) Probability(_, _ float64) float64 { return f.p }

type fakeAntenna struct{ err error }

func (f fakeAntenna) NoiseVoltage(freqs []float64, _, _ int) ([]float64, error) {
	out := make([]float64, len(freqs))
	for i := range out {
		out[i] = 1e-6
	}
	return out, nil
}

func (f fakeAntenna) Directivity(_ int, az []float64) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, len(az))
	for i := range out {
		out[i] = 1
	}
	return out, nil
}

type fakeTrigger struct{ fire bool }

func (fakeTrigger) Name() string { return "always" }

func (f fakeTrigger) Decide(_ *rand.Rand, _ trigger.Input) bool { return f.fire }

// downRangeBatch builds a batch with trials on the surface sphere at the
// given down-range distances, all visible from the payload.
func downRangeBatch(altitude float64, downRangeKm ...float64) geom.Batch {
	b := geom.Batch{
		Beacon: r3.Vec{Z: geom.EarthRadius + altitude},
		Area:   10,
	}
	axis := r3.Unit(r3.Vec{X: -0.5, Z: 0.866})
	for _, x := range downRangeKm {
		z := math.Sqrt(geom.EarthRadius*geom.EarthRadius - x*x)
		exit := r3.Vec{X: x, Z: z}
		dot := r3.Dot(axis, r3.Unit(exit))
		toBeacon := r3.Sub(b.Beacon, exit)

		b.Emergence = append(b.Emergence, math.Asin(dot))
		b.View = append(b.View, 0.01)
		b.DBeacon = append(b.DBeacon, r3.Norm(toBeacon))
		b.Dot = append(b.Dot, dot)
		b.Trials = append(b.Trials, exit)
		b.Axis = append(b.Axis, axis)
	}
	return b
}

func fakeCollaborators(g fakeGeom) Collaborators {
	return Collaborators{
		Geometry:  g,
		Exit:      fakeExit{prob: 0.5, energy: 1e18},
		Decay:     fakeDecaySampler{length: 0.5, shower: 5e17},
		DecayProb: fakeDecayModel{p: 0.25},
		Antenna:   fakeAntenna{},
		Trigger:   fakeTrigger{fire: true},
	}
}

func testConfig(bins int) Config {
	cfg := DefaultConfig()
	cfg.EnergyEV = 1e18
	cfg.Trials = []int{4}
	cfg.Seed = 1
	for i := 0; i < bins; i++ {
		cfg.Elevation = append(cfg.Elevation, (-10-float64(i))*math.Pi/180)
	}
	return cfg
}

func TestCalculateFactorsFromFixedBatch(t *testing.T) {
	cfg := testConfig(1)
	batch := downRangeBatch(cfg.Altitude, 80, 100)
	col := fakeCollaborators(fakeGeom{batch: batch})

	result, err := Calculate(context.Background(), cfg, col)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if result.N0[0] != 4 {
		t.Fatalf("N0 = %d, want the thrown count 4", result.N0[0])
	}

	// Thrown 4, surviving 2: the reductions divide by the thrown count.
	dotSum := batch.Dot[0] + batch.Dot[1]
	wantGeo := batch.Area * dotSum / 4
	if math.Abs(result.Geometric[0]-wantGeo) > 1e-12 {
		t.Fatalf("Geometric = %g, want %g", result.Geometric[0], wantGeo)
	}
	if result.Pexit[0] != 0.5 || result.Pdecay[0] != 0.25 || result.Ptrigger[0] != 1 {
		t.Fatalf("factors = (%g, %g, %g), want (0.5, 0.25, 1)",
			result.Pexit[0], result.Pdecay[0], result.Ptrigger[0])
	}

	// With constant factors the effective area factorizes exactly.
	want := wantGeo * 0.5 * 0.25
	if math.Abs(result.EffectiveArea[0][0]-want) > 1e-12 {
		t.Fatalf("EffectiveArea = %g, want %g", result.EffectiveArea[0][0], want)
	}

	checks := Validate(result)
	if !AllPassed(checks) {
		t.Fatalf("validation failed: %+v", checks)
	}
}

func TestCalculateInvalidTrialsContributeNothing(t *testing.T) {
	cfg := testConfig(1)
	batch := downRangeBatch(cfg.Altitude, 80, 100)
	col := fakeCollaborators(fakeGeom{batch: batch})
	col.Exit = fakeExit{prob: 0.5, energy: 1e18, invalid: map[int]bool{1: true}}

	result, err := Calculate(context.Background(), cfg, col)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	// Masked means run over the single valid trial.
	if result.Pexit[0] != 0.5 || result.Pdecay[0] != 0.25 {
		t.Fatalf("masked means = (%g, %g), want (0.5, 0.25)", result.Pexit[0], result.Pdecay[0])
	}
	want := batch.Area * batch.Dot[0] * 0.5 * 0.25 / 4
	if math.Abs(result.EffectiveArea[0][0]-want) > 1e-12 {
		t.Fatalf("EffectiveArea = %g, want %g from the valid trial alone",
			result.EffectiveArea[0][0], want)
	}
}

func TestCalculateSuppressesUpgoingDecays(t *testing.T) {
	cfg := testConfig(1)

	// A decay directly above the payload: theta > 0, so the trial keeps
	// its exit and decay factors but earns no trigger credit.
	batch := geom.Batch{
		Beacon:    r3.Vec{Z: geom.EarthRadius + cfg.Altitude},
		Area:      10,
		Emergence: []float64{math.Pi / 2},
		View:      []float64{0.01},
		DBeacon:   []float64{cfg.Altitude},
		Dot:       []float64{1},
		Trials:    []r3.Vec{{Z: geom.EarthRadius}},
		Axis:      []r3.Vec{{Z: 1}},
	}
	col := fakeCollaborators(fakeGeom{batch: batch})
	col.Decay = fakeDecaySampler{length: 10, shower: 5e17}

	result, err := Calculate(context.Background(), cfg, col)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if result.Ptrigger[0] != 0 {
		t.Fatalf("suppressed trial still holds trigger credit: %g", result.Ptrigger[0])
	}
	if result.EffectiveArea[0][0] != 0 {
		t.Fatalf("suppressed trial contributed area %g", result.EffectiveArea[0][0])
	}
	if result.Pexit[0] != 0.5 || result.Pdecay[0] != 0.25 {
		t.Fatal("suppression must not touch the exit and decay factors")
	}
}

func TestCalculateSuppressesBeyondHorizon(t *testing.T) {
	cfg := testConfig(1)

	// 500 km down-range is past the ~222 km horizon and below the horizon
	// angle at the flight altitude.
	batch := downRangeBatch(cfg.Altitude, 500)
	col := fakeCollaborators(fakeGeom{batch: batch})

	result, err := Calculate(context.Background(), cfg, col)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if result.Ptrigger[0] != 0 || result.EffectiveArea[0][0] != 0 {
		t.Fatalf("hidden trial triggered: ptrigger=%g area=%g",
			result.Ptrigger[0], result.EffectiveArea[0][0])
	}
}

func TestCalculateEmptyBatchKeepsZeros(t *testing.T) {
	cfg := testConfig(1)
	col := fakeCollaborators(fakeGeom{batch: geom.Batch{}})

	result, err := Calculate(context.Background(), cfg, col)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if result.Geometric[0] != 0 || result.Pexit[0] != 0 ||
		result.Pdecay[0] != 0 || result.Ptrigger[0] != 0 ||
		result.EffectiveArea[0][0] != 0 {
		t.Fatal("empty batch must keep zero-initialized outputs")
	}
	if result.N0[0] != 4 {
		t.Fatalf("empty batch must still record the thrown count, got %d", result.N0[0])
	}
}

func TestCalculateValidation(t *testing.T) {
	col := fakeCollaborators(fakeGeom{})

	cfg := testConfig(0)
	if _, err := Calculate(context.Background(), cfg, col); err == nil {
		t.Fatal("expected error for empty elevation grid")
	}

	cfg = testConfig(3)
	cfg.Trials = []int{10, 20}
	if _, err := Calculate(context.Background(), cfg, col); err == nil {
		t.Fatal("expected error for mismatched trial counts")
	}

	cfg = testConfig(1)
	cfg.Trials = []int{0}
	if _, err := Calculate(context.Background(), cfg, col); err == nil {
		t.Fatal("expected error for zero trial count")
	}

	cfg = testConfig(1)
	cfg.Trials = nil
	if _, err := Calculate(context.Background(), cfg, col); err == nil {
		t.Fatal("expected error for missing trial counts")
	}
}

func TestCalculateTrialsBroadcast(t *testing.T) {
	cfg := testConfig(3)
	cfg.Trials = []int{4}
	col := fakeCollaborators(fakeGeom{batch: downRangeBatch(cfg.Altitude, 100)})

	result, err := Calculate(context.Background(), cfg, col)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	for i, n := range result.N0 {
		if n != 4 {
			t.Fatalf("bin %d: N0 = %d, want broadcast 4", i, n)
		}
	}

	cfg.Trials = []int{4, 8, 12}
	result, err = Calculate(context.Background(), cfg, col)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	for i, want := range []int{4, 8, 12} {
		if result.N0[i] != want {
			t.Fatalf("bin %d: N0 = %d, want %d", i, result.N0[i], want)
		}
	}
}

func TestCalculateCollaboratorErrors(t *testing.T) {
	boom := errors.New("boom")

	cfg := testConfig(2)
	col := fakeCollaborators(fakeGeom{err: boom})
	_, err := Calculate(context.Background(), cfg, col)
	if !errors.Is(err, boom) {
		t.Fatalf("geometry error not propagated: %v", err)
	}
	if !strings.Contains(err.Error(), "elevation bin") {
		t.Fatalf("error lacks the bin context: %v", err)
	}

	col = fakeCollaborators(fakeGeom{batch: downRangeBatch(cfg.Altitude, 100)})
	col.Exit = fakeExit{err: boom}
	if _, err := Calculate(context.Background(), cfg, col); !errors.Is(err, boom) {
		t.Fatalf("exit error not propagated: %v", err)
	}

	col = fakeCollaborators(fakeGeom{})
	col.Antenna = fakeAntenna{err: boom}
	if _, err := Calculate(context.Background(), cfg, col); !errors.Is(err, boom) {
		t.Fatalf("antenna error not propagated: %v", err)
	}
}

func TestCalculateArgsSnapshot(t *testing.T) {
	cfg := testConfig(1)
	cfg.Azimuths = []float64{0, 90}
	col := fakeCollaborators(fakeGeom{batch: downRangeBatch(cfg.Altitude, 100)})

	result, err := Calculate(context.Background(), cfg, col)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if result.Args.EnergyEV != cfg.EnergyEV || result.Args.Altitude != cfg.Altitude {
		t.Fatal("args snapshot does not reflect the configuration")
	}
	if result.Args.Strategy != "always" {
		t.Fatalf("args strategy = %q, want the trigger name", result.Args.Strategy)
	}
	if len(result.Args.Gain) != 2 || len(result.EffectiveArea[0]) != 2 {
		t.Fatal("expected one gain and one area column per azimuth")
	}
}

func TestCalculateDeterministicAcrossWorkers(t *testing.T) {
	run := func(workers int) *EffectiveArea {
		t.Helper()
		cfg := DefaultConfig()
		cfg.EnergyEV = 1e18
		cfg.Trials = []int{3000}
		cfg.Seed = 42
		cfg.Workers = workers
		for e := -25.0; e <= -5; e += 5 {
			cfg.Elevation = append(cfg.Elevation, e*math.Pi/180)
		}

		sampler, err := geom.NewSampler(cfg.Altitude, cfg.MaxView, cfg.IceThickness)
		if err != nil {
			t.Fatalf("NewSampler: %v", err)
		}
		exit, err := tauexit.New(cfg.EnergyEV, cfg.IceThickness)
		if err != nil {
			t.Fatalf("tauexit.New: %v", err)
		}
		strat, err := trigger.New(trigger.StrategyIntensity, trigger.Deps{})
		if err != nil {
			t.Fatalf("trigger.New: %v", err)
		}

		result, err := Calculate(context.Background(), cfg, Collaborators{
			Geometry:  sampler,
			Exit:      exit,
			Decay:     tauola.Sampler{},
			DecayProb: decay.Model{},
			Antenna:   antenna.Model{},
			Trigger:   strat,
		})
		if err != nil {
			t.Fatalf("Calculate: %v", err)
		}
		return result
	}

	serial := run(1)
	parallel := run(4)

	for i := range serial.Elevation {
		if serial.Geometric[i] != parallel.Geometric[i] ||
			serial.Pexit[i] != parallel.Pexit[i] ||
			serial.Pdecay[i] != parallel.Pdecay[i] ||
			serial.Ptrigger[i] != parallel.Ptrigger[i] ||
			serial.EffectiveArea[i][0] != parallel.EffectiveArea[i][0] {
			t.Fatalf("bin %d differs between 1 and 4 workers", i)
		}
	}
}

func TestCalculateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(3)
	col := fakeCollaborators(fakeGeom{batch: downRangeBatch(cfg.Altitude, 100)})
	if _, err := Calculate(ctx, cfg, col); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCenterFrequencies(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.CenterFrequencies()
	want := []float64{35, 45, 55, 65, 75}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
