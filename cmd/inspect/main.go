package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/AnushkaDurg/poinsseta/internal/aeff"
	"github.com/AnushkaDurg/poinsseta/internal/logging"
	"github.com/AnushkaDurg/poinsseta/internal/results"
)

// #region main

func main() {
	dbPath := flag.String("db", os.Getenv("POINSSETA_DB"), "path to the results catalog")
	last := flag.Int("last", 20, "show N most recent results")
	id := flag.String("id", "", "show single result detail")
	runs := flag.Bool("runs", false, "show recent calculation runs instead of results")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/poinsseta.db [--last N] [--id result] [--runs] [--json]")
		os.Exit(2)
	}

	store, err := results.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *runs:
		err = runRunsMode(store, *last, *jsonOut)
	case *id != "":
		err = runDetailMode(store, *id, *jsonOut)
	default:
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	ResultID  string  `json:"result_id"`
	CreatedAt string  `json:"created_at"`
	EnergyEV  float64 `json:"energy_ev"`
	Altitude  float64 `json:"altitude"`
	Bins      int     `json:"bins"`
	Azimuths  int     `json:"azimuths"`
	Strategy  string  `json:"strategy"`
}

func runListMode(store *results.Store, last int, jsonOut bool) error {
	summaries, err := store.List(last)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(os.Stderr, "no results found")
		return nil
	}

	rows := make([]listRow, len(summaries))
	for i, sm := range summaries {
		rows[i] = listRow{
			ResultID:  sm.ResultID,
			CreatedAt: sm.CreatedAt.Format("2006-01-02T15:04:05Z"),
			EnergyEV:  sm.Args.EnergyEV,
			Altitude:  sm.Args.Altitude,
			Bins:      sm.Bins,
			Azimuths:  sm.Azimuths,
			Strategy:  sm.Args.Strategy,
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-12s  %10s  %8s  %5s  %8s  %-12s  %s\n",
		"Result", "Energy", "Altitude", "Bins", "Azimuths", "Strategy", "Time")
	for _, r := range rows {
		fmt.Printf("%-12s  %10.2e  %8.3f  %5d  %8d  %-12s  %s\n",
			shortID(r.ResultID), r.EnergyEV, r.Altitude, r.Bins, r.Azimuths, r.Strategy, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	ResultID string       `json:"result_id"`
	Args     aeff.Args    `json:"args"`
	Bins     []binDetail  `json:"bins"`
	Checks   []aeff.Check `json:"checks"`
	AllPass  bool         `json:"all_pass"`
}

type binDetail struct {
	Elevation float64 `json:"elevation"`
	N0        int     `json:"n0"`
	Geometric float64 `json:"geometric"`
	Pexit     float64 `json:"pexit"`
	Pdecay    float64 `json:"pdecay"`
	Ptrigger  float64 `json:"ptrigger"`
	Aeff0     float64 `json:"aeff_0"`
}

func runDetailMode(store *results.Store, id string, jsonOut bool) error {
	a, err := store.Get(id)
	if err != nil {
		return err
	}

	checks := aeff.Validate(a)
	out := detailOutput{
		ResultID: id,
		Args:     a.Args,
		Checks:   checks,
		AllPass:  aeff.AllPassed(checks),
	}
	for i := range a.Elevation {
		out.Bins = append(out.Bins, binDetail{
			Elevation: a.Elevation[i],
			N0:        a.N0[i],
			Geometric: a.Geometric[i],
			Pexit:     a.Pexit[i],
			Pdecay:    a.Pdecay[i],
			Ptrigger:  a.Ptrigger[i],
			Aeff0:     a.EffectiveArea[i][0],
		})
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Result:    %s\n", out.ResultID)
	fmt.Printf("Energy:    %.3e eV\n", a.Args.EnergyEV)
	fmt.Printf("Altitude:  %.5f km\n", a.Args.Altitude)
	fmt.Printf("Prototype: %d\n", a.Args.Prototype)
	fmt.Printf("Strategy:  %s\n", a.Args.Strategy)

	fmt.Printf("\n%8s  %8s  %12s  %10s  %10s  %10s  %12s\n",
		"Elev", "N0", "Geometric", "Pexit", "Pdecay", "Ptrigger", "Aeff[0]")
	for _, b := range out.Bins {
		fmt.Printf("%7.2f°  %8d  %12.4e  %10.4e  %10.4e  %10.4e  %12.4e\n",
			b.Elevation, b.N0, b.Geometric, b.Pexit, b.Pdecay, b.Ptrigger, b.Aeff0)
	}

	fmt.Printf("\nChecks:\n")
	for _, c := range checks {
		status := "PASS"
		if !c.Pass {
			status = "FAIL"
		}
		fmt.Printf("  %-22s %s", c.Name, status)
		if c.Detail != "" {
			fmt.Printf("  (%s)", c.Detail)
		}
		fmt.Println()
	}
	if !out.AllPass {
		os.Exit(1)
	}
	return nil
}

// #endregion detail-mode

// #region runs-mode

func runRunsMode(store *results.Store, last int, jsonOut bool) error {
	entries, err := logging.ListRuns(store.DB(), last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no runs logged")
		return nil
	}

	if jsonOut {
		return printJSON(entries)
	}

	fmt.Printf("%-12s  %8s  %-12s  %10s  %-20s  %s\n",
		"Result", "Seed", "Strategy", "Duration", "Time", "Note")
	for _, e := range entries {
		fmt.Printf("%-12s  %8d  %-12s  %8dms  %-20s  %s\n",
			shortID(e.ResultID), e.Seed, e.Strategy, e.DurationMS,
			e.CreatedAt.Format("2006-01-02T15:04:05Z"), e.Note)
	}
	return nil
}

// #endregion runs-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
