// SPDX-License-Identifier: MIT

package forecast

import (
	"fmt"
	"slices"
)

// Mode selects how training matrices are built.
type Mode string

const (
	// ModeSingle estimates one matrix from the start year's flows.
	ModeSingle Mode = "single"

	// ModeMultiple averages matrices estimated from every consecutive year pair
	// around the selected input years.
	ModeMultiple Mode = "multiple"
)

// Config describes one model run. It is a value: the pipeline never mutates it.
type Config struct {
	Mode         Mode     `json:"mode"`
	InputYears   []int    `json:"inputYears"`
	TargetYear   int      `json:"targetYear"`
	Alpha        float64  `json:"alpha"`
	Beta         float64  `json:"beta"`
	EnsembleSize int      `json:"ensembleSize"`
	Seed         string   `json:"seed,omitempty"`
	HasSeed      bool     `json:"hasSeed"`
	Locations    []string `json:"locations,omitempty"`
}

// StartYear is the latest input year, the year the forecast starts from.
func (c Config) StartYear() int {
	if len(c.InputYears) == 0 {
		return 0
	}

	return slices.Max(c.InputYears)
}

// Validate checks what the pipeline itself needs to run. Range checks on
// Alpha, Beta and the ensemble size belong to the outer configuration layer.
func (c Config) Validate() error {
	switch {
	case c.Mode != ModeSingle && c.Mode != ModeMultiple:
		return fmt.Errorf("%w: mode %q", ErrInvalidConfig, c.Mode)
	case len(c.InputYears) == 0:
		return fmt.Errorf("%w: no input years", ErrInvalidConfig)
	case c.TargetYear <= c.StartYear():
		return fmt.Errorf("%w: target year %d not after start year %d",
			ErrInvalidConfig, c.TargetYear, c.StartYear())
	case c.EnsembleSize <= 0:
		return fmt.Errorf("%w: ensemble size %d", ErrInvalidConfig, c.EnsembleSize)
	}

	return nil
}
