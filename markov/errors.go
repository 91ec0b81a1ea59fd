// SPDX-License-Identifier: MIT

package markov

import "errors"

var (
	// ErrNoLocations is returned when a transition is requested over an empty
	// location list.
	ErrNoLocations = errors.New("markov: no locations")

	// ErrDuplicateLocation is returned when a location list repeats a name.
	ErrDuplicateLocation = errors.New("markov: duplicate location")

	// ErrNoTransitions is returned by Average for an empty input list; callers
	// fall back to a single-year estimate.
	ErrNoTransitions = errors.New("markov: no transitions to average")

	// ErrLocationMismatch is returned when averaged transitions disagree on
	// their location order.
	ErrLocationMismatch = errors.New("markov: location lists differ")
)
