// SPDX-License-Identifier: MIT

package forecast

import "errors"

var (
	// ErrMissingData is returned when the start year has no stock record, so
	// there is no initial population to forecast from.
	ErrMissingData = errors.New("forecast: no initial population for start year")

	// ErrDegenerateMatrix is returned when no transition matrix could be built
	// from any training pair nor from the start year alone.
	ErrDegenerateMatrix = errors.New("forecast: no transition matrix could be built")

	// ErrSuperseded is returned to a run that was replaced by a newer one
	// before it could publish its result.
	ErrSuperseded = errors.New("forecast: run superseded by a newer run")

	// ErrInvalidConfig is returned for a Config the pipeline cannot execute.
	ErrInvalidConfig = errors.New("forecast: invalid configuration")
)
