// SPDX-License-Identifier: MIT

package forecast

import "fmt"

// State is a stage of a model run.
//
//	Idle → LoadingTraining → BuildingMatrices → Averaging → Sampling → Scoring → Done
//
// Any stage may end in Failed. Idle is entered again before every new run.
type State int

const (
	Idle State = iota
	LoadingTraining
	BuildingMatrices
	Averaging
	Sampling
	Scoring
	Done
	Failed
)

var stateNames = [...]string{
	Idle:             "idle",
	LoadingTraining:  "loading_training",
	BuildingMatrices: "building_matrices",
	Averaging:        "averaging",
	Sampling:         "sampling",
	Scoring:          "scoring",
	Done:             "done",
	Failed:           "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}

	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool { return s == Done || s == Failed }
