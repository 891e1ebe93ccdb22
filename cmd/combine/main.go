package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/AnushkaDurg/poinsseta/internal/aeff"
	"github.com/AnushkaDurg/poinsseta/internal/results"
)

// #region main
func main() {
	dbPath := flag.String("db", os.Getenv("POINSSETA_DB"), "combine stored results from this catalog")
	ids := flag.String("ids", "", "comma-separated result IDs to combine (requires --db)")
	weighted := flag.Bool("weighted", false, "weight the mean by per-bin trial counts")
	altitudes := flag.String("altitudes", "", "comma-separated altitude allow-list (km); empty admits all")
	outPath := flag.String("out", "", "write the combined result as a JSON snapshot")
	store := flag.Bool("store", false, "store the combined result back into the catalog")
	flag.Parse()

	allow, err := parseFloats(*altitudes)
	if err != nil {
		log.Fatalf("bad altitude list: %v", err)
	}

	var combined *aeff.EffectiveArea
	var skipped int
	switch {
	case *ids != "":
		if *dbPath == "" {
			log.Fatal("--ids requires --db")
		}
		combined, skipped, err = combineStored(*dbPath, splitCSV(*ids), allow, *weighted)
	case flag.NArg() > 0:
		combined, skipped, err = combineSnapshots(flag.Args(), allow, *weighted)
	default:
		fmt.Fprintln(os.Stderr, "usage: combine [--weighted] [--altitudes list] [--out file] snapshot.json... | --db catalog --ids a,b,c")
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("combine: %v", err)
	}

	if skipped > 0 {
		fmt.Printf("skipped %d input(s) outside the altitude allow-list\n", skipped)
	}
	fmt.Printf("combined %d bins, total trials per bin:", len(combined.Elevation))
	for _, n := range combined.N0 {
		fmt.Printf(" %d", n)
	}
	fmt.Println()

	if *outPath != "" {
		if err := combined.Save(*outPath); err != nil {
			log.Fatalf("save snapshot: %v", err)
		}
		fmt.Printf("snapshot written to %s\n", *outPath)
	}
	if *store {
		if *dbPath == "" {
			log.Fatal("--store requires --db")
		}
		s, err := results.NewStore(*dbPath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer s.Close()
		id, err := s.Save(combined)
		if err != nil {
			log.Fatalf("store result: %v", err)
		}
		fmt.Printf("stored as %s\n", id)
	}
}

// #endregion main

// #region combine
// combineSnapshots folds JSON snapshots into one result. The unweighted
// path goes through aeff.FromFiles; the weighted path loads each file
// and folds with the trial-weighted rule.
func combineSnapshots(paths []string, allow []float64, weighted bool) (*aeff.EffectiveArea, int, error) {
	if !weighted {
		return aeff.FromFiles(paths, allow)
	}
	load := func(p string) (*aeff.EffectiveArea, error) { return aeff.FromFile(p) }
	return fold(paths, allow, load)
}

func combineStored(dbPath string, ids []string, allow []float64, weighted bool) (*aeff.EffectiveArea, int, error) {
	s, err := results.NewStore(dbPath)
	if err != nil {
		return nil, 0, err
	}
	defer s.Close()

	if !weighted {
		return s.LoadMany(ids, allow)
	}
	return fold(ids, allow, s.Get)
}

// fold combines inputs pairwise with the trial-weighted rule, applying
// the altitude allow-list and counting skips.
func fold(keys []string, allow []float64, load func(string) (*aeff.EffectiveArea, error)) (*aeff.EffectiveArea, int, error) {
	if len(keys) == 0 {
		return nil, 0, fmt.Errorf("no inputs: %w", aeff.ErrNoInputs)
	}
	var combined *aeff.EffectiveArea
	skipped := 0
	for _, k := range keys {
		a, err := load(k)
		if err != nil {
			return nil, skipped, err
		}
		if !altitudeAllowed(a.Args.Altitude, allow) {
			skipped++
			continue
		}
		if combined == nil {
			combined = a
			continue
		}
		combined, err = aeff.CombineWeighted(combined, a)
		if err != nil {
			return nil, skipped, fmt.Errorf("combine %s: %w", k, err)
		}
	}
	if combined == nil {
		return nil, skipped, fmt.Errorf(
			"all %d inputs skipped by the altitude filter: %w", skipped, aeff.ErrNoInputs)
	}
	return combined, skipped, nil
}

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

// #endregion combine

// #region helpers
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseFloats(csv string) ([]float64, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, nil
	}
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
	return out, nil
}

// #endregion helpers
