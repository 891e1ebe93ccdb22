package tauexit

// #region tables
// exitRow is one tabulated point of the exit parameterization.
type exitRow struct {
	emergenceDeg   float64
	prob           float64
	energyFraction float64 // mean exiting tau energy as a fraction of Enu
}

// exitTables holds the per-decade exit parameterizations, keyed by
// log10(Enu/eV). The probability falls steeply with emergence angle as
// the chord through the Earth lengthens; the surviving tau carries a
// smaller fraction of the neutrino energy at steeper angles.
var exitTables = map[int][]exitRow{
	17: {
		{0, 2.1e-2, 0.42},
		{5, 1.1e-2, 0.38},
		{10, 4.6e-3, 0.33},
		{15, 1.6e-3, 0.28},
		{20, 4.8e-4, 0.24},
		{25, 1.2e-4, 0.20},
		{30, 2.7e-5, 0.17},
		{40, 9.0e-7, 0.12},
		{50, 1.8e-8, 0.09},
	},
	18: {
		{0, 4.9e-2, 0.47},
		{5, 2.8e-2, 0.43},
		{10, 1.2e-2, 0.38},
		{15, 4.5e-3, 0.33},
		{20, 1.4e-3, 0.28},
		{25, 3.8e-4, 0.24},
		{30, 9.1e-5, 0.20},
		{40, 3.6e-6, 0.14},
		{50, 8.4e-8, 0.10},
	},
	19: {
		{0, 8.6e-2, 0.51},
		{5, 5.2e-2, 0.47},
		{10, 2.4e-2, 0.42},
		{15, 9.4e-3, 0.37},
		{20, 3.1e-3, 0.32},
		{25, 8.8e-4, 0.27},
		{30, 2.2e-4, 0.23},
		{40, 9.5e-6, 0.16},
		{50, 2.4e-7, 0.11},
	},
	20: {
		{0, 1.2e-1, 0.54},
		{5, 7.7e-2, 0.50},
		{10, 3.8e-2, 0.45},
		{15, 1.6e-2, 0.40},
		{20, 5.5e-3, 0.35},
		{25, 1.6e-3, 0.30},
		{30, 4.3e-4, 0.25},
		{40, 2.0e-5, 0.18},
		{50, 5.6e-7, 0.12},
	},
	21: {
		{0, 1.5e-1, 0.56},
		{5, 1.0e-1, 0.52},
		{10, 5.3e-2, 0.47},
		{15, 2.3e-2, 0.42},
		{20, 8.3e-3, 0.37},
		{25, 2.6e-3, 0.32},
		{30, 7.2e-4, 0.27},
		{40, 3.7e-5, 0.19},
		{50, 1.1e-6, 0.13},
	},
}

// #endregion tables
