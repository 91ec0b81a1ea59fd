// SPDX-License-Identifier: MIT

// Package markov: domain types of the transition model.
package markov

import (
	"fmt"

	"github.com/katalvlaran/popflow/matrix"
)

// Flow is one location's migration figures for a single year.
// Values are non-negative; malformed input is stored as 0 (see ParseNumber).
type Flow struct {
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	Stock   float64 `json:"stock"`
}

// FlowData maps location name to its Flow. Missing keys read as zero flows.
type FlowData map[string]Flow

// Vector is a population state keyed by location. Missing keys read as 0.
type Vector map[string]float64

// Slice returns the values of v in the order of locs.
func (v Vector) Slice(locs []string) []float64 {
	out := make([]float64, len(locs))
	for i, l := range locs {
		out[i] = v[l]
	}

	return out
}

// Total returns Σ v over all keys.
func (v Vector) Total() float64 {
	var s float64
	for _, x := range v {
		s += x
	}

	return s
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for k, x := range v {
		out[k] = x
	}

	return out
}

// VectorFromSlice pairs locs[i] with xs[i]. Extra values are ignored; missing
// ones are 0.
func VectorFromSlice(locs []string, xs []float64) Vector {
	out := make(Vector, len(locs))
	for i, l := range locs {
		if i < len(xs) {
			out[l] = xs[i]
		} else {
			out[l] = 0
		}
	}

	return out
}

// Transition is a row-stochastic n×n matrix over an ordered location list.
// Row i holds the one-step probabilities of moving from Locations[i].
// Year is the year whose flows produced it; it predicts Year+1.
type Transition struct {
	Year      int
	Locations []string
	M         *matrix.Dense

	index map[string]int
}

// NewTransition binds m to locations. m must be square with side len(locations)
// and location names must be unique.
func NewTransition(year int, locations []string, m *matrix.Dense) (*Transition, error) {
	if err := matrix.ValidateTransition(m); err != nil {
		return nil, fmt.Errorf("NewTransition: %w", err)
	}
	if m.Rows() != len(locations) {
		return nil, fmt.Errorf("NewTransition: %d locations for %d rows: %w",
			len(locations), m.Rows(), matrix.ErrDimensionMismatch)
	}
	idx := make(map[string]int, len(locations))
	for i, l := range locations {
		if _, dup := idx[l]; dup {
			return nil, fmt.Errorf("NewTransition: %q: %w", l, ErrDuplicateLocation)
		}
		idx[l] = i
	}

	return &Transition{
		Year:      year,
		Locations: append([]string(nil), locations...),
		M:         m,
		index:     idx,
	}, nil
}

// N is the number of locations.
func (t *Transition) N() int { return len(t.Locations) }

// Index returns the row/column index of loc.
func (t *Transition) Index(loc string) (int, bool) {
	i, ok := t.index[loc]
	return i, ok
}

// P returns the probability of moving from → to, 0 for unknown locations.
func (t *Transition) P(from, to string) float64 {
	i, okI := t.index[from]
	j, okJ := t.index[to]
	if !okI || !okJ {
		return 0
	}
	v, _ := t.M.At(i, j)

	return v
}

// Clone returns a deep copy sharing nothing with t.
func (t *Transition) Clone() *Transition {
	cp, _ := NewTransition(t.Year, t.Locations, t.M.CloneDense())
	return cp
}

// Table is the export form of a Transition: probabilities as percentages.
type Table struct {
	Year      int         `json:"year"`
	Locations []string    `json:"locations"`
	Percent   [][]float64 `json:"percent"`
}

// Percentages renders the matrix as percentages (row i, column j = 100·T_ij)
// for tabular display and export.
func (t *Transition) Percentages() Table {
	out := Table{
		Year:      t.Year,
		Locations: append([]string(nil), t.Locations...),
		Percent:   make([][]float64, t.N()),
	}
	for i := range out.Percent {
		row, _ := t.M.Row(i)
		for j := range row {
			row[j] *= 100
		}
		out.Percent[i] = row
	}

	return out
}
