// Package trigger decides, per Monte-Carlo trial, whether the detector
// would have registered the event. Two strategies exist: the simplified
// intensity heuristic used by the production analysis and the fuller
// voltage/SNR simulation. The active strategy is selected by ID through
// configuration.
package trigger

import (
	"fmt"
	"math/rand"

	"github.com/AnushkaDurg/poinsseta/internal/efield"
)

// #region strategy
// Input carries the per-trial quantities a strategy may consume.
type Input struct {
	ShowerEnergyEV float64
	ViewRad        float64 // view angle at the decay point (rad)
	ViewDeg        float64
	ExitZenithDeg  float64
	DecayAltKm     float64
	Gain           float64 // linear antenna gain for the evaluated azimuth
}

// Strategy is a swappable per-trial trigger decision.
type Strategy interface {
	Name() string
	// Decide reports whether this trial triggers the detector. The rng is
	// the per-bin source; deterministic strategies must not consume it.
	Decide(rng *rand.Rand, in Input) bool
}

// #endregion strategy

// #region registry
// ID names a built-in trigger strategy.
type ID string

const (
	// StrategyIntensity is the simplified exponential-attenuation
	// heuristic. It ignores antenna gain and noise.
	StrategyIntensity ID = "intensity"

	// StrategyVoltageSNR is the full voltage and SNR simulation with a
	// Rician-realized SNR threshold.
	StrategyVoltageSNR ID = "voltage-snr"
)

// Deps supplies the collaborator models a strategy may need.
type Deps struct {
	Field          *efield.Param
	NoiseSpectrum  []float64 // per-sub-band RMS noise voltage
	FreqsMHz       []float64 // sub-band center frequencies
	Antennas       int
	SNRThreshold   float64
	IntensityFloor float64 // heuristic threshold; zero selects the default
}

// New constructs the strategy for the given ID.
func New(id ID, deps Deps) (Strategy, error) {
	switch id {
	case StrategyIntensity:
		h := DefaultIntensityHeuristic()
		if deps.IntensityFloor > 0 {
			h.Threshold = deps.IntensityFloor
		}
		return h, nil
	case StrategyVoltageSNR:
		if deps.Field == nil {
			return nil, fmt.Errorf("trigger: voltage-snr strategy requires a field parameterization")
		}
		if len(deps.NoiseSpectrum) == 0 || len(deps.NoiseSpectrum) != len(deps.FreqsMHz) {
			return nil, fmt.Errorf("trigger: voltage-snr strategy requires matching noise spectrum and frequencies")
		}
		return &VoltageSNR{
			Field:        deps.Field,
			Noise:        deps.NoiseSpectrum,
			FreqsMHz:     deps.FreqsMHz,
			Antennas:     deps.Antennas,
			SNRThreshold: deps.SNRThreshold,
		}, nil
	default:
		return nil, fmt.Errorf("trigger: unknown strategy %q", id)
	}
}

// #endregion registry
