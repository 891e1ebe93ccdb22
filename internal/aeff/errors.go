package aeff

import "errors"

// #region errors
var (
	// ErrConfigMismatch is returned when combining results whose elevation
	// grids or configuration snapshots differ.
	ErrConfigMismatch = errors.New("effective areas were generated with different configurations")

	// ErrNoInputs is returned when asked to load and combine zero results.
	ErrNoInputs = errors.New("no input results were given")
)

// #endregion errors
