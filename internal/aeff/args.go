package aeff

// #region args
// Args is the configuration snapshot recorded with every result. Two
// results are combinable only when their Args are exactly equal.
type Args struct {
	EnergyEV         float64   `json:"energy_ev"`
	Altitude         float64   `json:"altitude"`          // km
	Prototype        int       `json:"prototype"`
	MaxView          float64   `json:"maxview"`           // rad
	IceThickness     int       `json:"ice_thickness"`     // km class
	Antennas         int       `json:"antennas"`
	Gain             []float64 `json:"gain"`              // linear, per azimuth bin
	TriggerThreshold float64   `json:"trigger_threshold"`
	MinFreq          float64   `json:"min_freq"`          // MHz
	MaxFreq          float64   `json:"max_freq"`          // MHz
	Strategy         string    `json:"strategy"`
}

// Equal reports exact equality of two configuration snapshots.
func (a Args) Equal(b Args) bool {
	if a.EnergyEV != b.EnergyEV ||
		a.Altitude != b.Altitude ||
		a.Prototype != b.Prototype ||
		a.MaxView != b.MaxView ||
		a.IceThickness != b.IceThickness ||
		a.Antennas != b.Antennas ||
		a.TriggerThreshold != b.TriggerThreshold ||
		a.MinFreq != b.MinFreq ||
		a.MaxFreq != b.MaxFreq ||
		a.Strategy != b.Strategy {
		return false
	}
	if len(a.Gain) != len(b.Gain) {
		return false
	}
	for i := range a.Gain {
		if a.Gain[i] != b.Gain[i] {
			return false
		}
	}
	return true
}

// #endregion args
