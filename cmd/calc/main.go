package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/AnushkaDurg/poinsseta/internal/aeff"
	"github.com/AnushkaDurg/poinsseta/internal/antenna"
	"github.com/AnushkaDurg/poinsseta/internal/decay"
	"github.com/AnushkaDurg/poinsseta/internal/efield"
	"github.com/AnushkaDurg/poinsseta/internal/geom"
	"github.com/AnushkaDurg/poinsseta/internal/logging"
	"github.com/AnushkaDurg/poinsseta/internal/results"
	"github.com/AnushkaDurg/poinsseta/internal/tauexit"
	"github.com/AnushkaDurg/poinsseta/internal/tauola"
	"github.com/AnushkaDurg/poinsseta/internal/trigger"
)

// #region main
func main() {
	energy := flag.Float64("energy", 1e18, "neutrino energy (eV)")
	elevMin := flag.Float64("elev-min", -30, "lowest elevation angle (deg)")
	elevMax := flag.Float64("elev-max", -1, "highest elevation angle (deg)")
	elevStep := flag.Float64("elev-step", 1, "elevation grid step (deg)")
	altitude := flag.Float64("altitude", 3.87553, "payload altitude (km)")
	prototype := flag.Int("prototype", 2018, "payload prototype year")
	maxView := flag.Float64("maxview", 3, "maximum view angle (deg)")
	ice := flag.Int("ice", 0, "ice-thickness class (km, 0..4)")
	trials := flag.Int("trials", 1_000_000, "Monte-Carlo trials per elevation bin")
	antennas := flag.Int("antennas", 4, "number of antennas")
	minFreq := flag.Float64("minfreq", 30, "minimum frequency (MHz)")
	maxFreq := flag.Float64("maxfreq", 80, "maximum frequency (MHz)")
	threshold := flag.Float64("threshold", 5.0, "trigger SNR threshold (voltage-snr strategy)")
	azimuths := flag.String("azimuths", "0", "comma-separated gain azimuths (deg)")
	strategyID := flag.String("trigger", string(trigger.StrategyIntensity),
		"trigger strategy: intensity or voltage-snr")
	seed := flag.Int64("seed", 1, "random seed")
	workers := flag.Int("workers", 1, "concurrent elevation bins")
	outPath := flag.String("out", "", "write the result as a JSON snapshot")
	dbPath := flag.String("db", envOr("POINSSETA_DB", ""), "store the result in this SQLite catalog")
	note := flag.String("note", "", "free-form note recorded with the run")
	flag.Parse()

	elevation, err := elevationGrid(*elevMin, *elevMax, *elevStep)
	if err != nil {
		log.Fatalf("bad elevation grid: %v", err)
	}
	azGrid, err := parseFloats(*azimuths)
	if err != nil {
		log.Fatalf("bad azimuth list: %v", err)
	}

	cfg := aeff.DefaultConfig()
	cfg.EnergyEV = *energy
	cfg.Elevation = elevation
	cfg.Altitude = *altitude
	cfg.Prototype = *prototype
	cfg.MaxView = *maxView * math.Pi / 180
	cfg.IceThickness = *ice
	cfg.Trials = []int{*trials}
	cfg.Antennas = *antennas
	cfg.MinFreq = *minFreq
	cfg.MaxFreq = *maxFreq
	cfg.TriggerThreshold = *threshold
	cfg.Azimuths = azGrid
	cfg.Seed = *seed
	cfg.Workers = *workers

	col, err := buildCollaborators(cfg, trigger.ID(*strategyID))
	if err != nil {
		log.Fatalf("setup: %v", err)
	}

	bar := progressbar.Default(int64(len(elevation)), "elevation bins")
	cfg.Progress = func(done, total int) { bar.Add(1) }

	start := time.Now()
	result, err := aeff.Calculate(context.Background(), cfg, col)
	if err != nil {
		log.Fatalf("calculate: %v", err)
	}
	elapsed := time.Since(start)

	printSummary(result)

	if *outPath != "" {
		if err := result.Save(*outPath); err != nil {
			log.Fatalf("save snapshot: %v", err)
		}
		fmt.Printf("snapshot written to %s\n", *outPath)
	}

	if *dbPath != "" {
		store, err := results.NewStore(*dbPath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer store.Close()

		id, err := store.Save(result)
		if err != nil {
			log.Fatalf("store result: %v", err)
		}
		trialsJSON, _ := json.Marshal(result.N0)
		err = logging.LogRun(store.DB(), logging.RunEntry{
			ResultID:   id,
			Seed:       *seed,
			TrialsJSON: string(trialsJSON),
			Strategy:   col.Trigger.Name(),
			DurationMS: elapsed.Milliseconds(),
			Note:       *note,
		})
		if err != nil {
			log.Printf("log run: %v", err)
		}
		fmt.Printf("stored as %s in %s\n", id, *dbPath)
	}
}

// #endregion main

// #region setup
// buildCollaborators wires the concrete physics models for one run.
func buildCollaborators(cfg aeff.Config, id trigger.ID) (aeff.Collaborators, error) {
	sampler, err := geom.NewSampler(cfg.Altitude, cfg.MaxView, cfg.IceThickness)
	if err != nil {
		return aeff.Collaborators{}, err
	}
	exit, err := tauexit.New(cfg.EnergyEV, cfg.IceThickness)
	if err != nil {
		return aeff.Collaborators{}, err
	}

	ant := antenna.Model{}
	deps := trigger.Deps{
		Antennas:     cfg.Antennas,
		SNRThreshold: cfg.TriggerThreshold,
	}
	if id == trigger.StrategyVoltageSNR {
		// The field parameterization is keyed by the nearest supported
		// altitude, matching the historical interpolator files.
		field, err := efield.New(efield.FileName(cfg.Altitude))
		if err != nil {
			return aeff.Collaborators{}, err
		}
		freqs := cfg.CenterFrequencies()
		noise, err := ant.NoiseVoltage(freqs, cfg.Prototype, cfg.Antennas)
		if err != nil {
			return aeff.Collaborators{}, err
		}
		deps.Field = field
		deps.FreqsMHz = freqs
		deps.NoiseSpectrum = noise
	}
	strat, err := trigger.New(id, deps)
	if err != nil {
		return aeff.Collaborators{}, err
	}

	return aeff.Collaborators{
		Geometry:  sampler,
		Exit:      exit,
		Decay:     tauola.Sampler{},
		DecayProb: decay.Model{},
		Antenna:   ant,
		Trigger:   strat,
	}, nil
}

// #endregion setup

// #region output
func printSummary(a *aeff.EffectiveArea) {
	fmt.Printf("\n%8s  %8s  %12s  %10s  %10s  %10s  %12s\n",
		"Elev", "N0", "Geometric", "Pexit", "Pdecay", "Ptrigger", "Aeff[0]")
	for i := range a.Elevation {
		fmt.Printf("%7.2f°  %8d  %12.4e  %10.4e  %10.4e  %10.4e  %12.4e\n",
			a.Elevation[i], a.N0[i], a.Geometric[i],
			a.Pexit[i], a.Pdecay[i], a.Ptrigger[i], a.EffectiveArea[i][0])
	}
}

// #endregion output

// #region helpers
func elevationGrid(min, max, step float64) ([]float64, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %g", step)
	}
	if max < min {
		return nil, fmt.Errorf("max %g below min %g", max, min)
	}
	var out []float64
	for e := min; e <= max+1e-9; e += step {
		out = append(out, e*math.Pi/180)
	}
	return out, nil
}

func parseFloats(csv string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", part, err)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
