// SPDX-License-Identifier: MIT

package markov

import (
	"fmt"
	"slices"

	"github.com/katalvlaran/popflow/matrix"
)

// Average returns the element-wise arithmetic mean of ts.
// The result carries the location order of ts[0] and the latest Year.
//
// Errors:
//   - ErrNoTransitions for an empty list (fall back to a single-year estimate).
//   - ErrLocationMismatch when the location lists differ.
func Average(ts []*Transition) (*Transition, error) {
	if len(ts) == 0 {
		return nil, ErrNoTransitions
	}
	ms := make([]matrix.Matrix, len(ts))
	year := ts[0].Year
	for k, t := range ts {
		if !slices.Equal(t.Locations, ts[0].Locations) {
			return nil, fmt.Errorf("Average: operand %d: %w", k, ErrLocationMismatch)
		}
		ms[k] = t.M
		year = max(year, t.Year)
	}
	M, err := matrix.Mean(ms)
	if err != nil {
		return nil, fmt.Errorf("Average: %w", err)
	}

	return NewTransition(year, ts[0].Locations, M)
}

// Propagate applies one Markov step: next_j = Σ_i pop_i · T_ij.
// Locations absent from pop count as 0; keys of pop that are not in t are
// dropped. A nil t yields an empty Vector. Never fails.
func Propagate(pop Vector, t *Transition) Vector {
	if t == nil || t.M == nil {
		return Vector{}
	}
	y, err := matrix.VecMul(pop.Slice(t.Locations), t.M)
	if err != nil {
		// unreachable: NewTransition guarantees a square matrix of side N()
		return Vector{}
	}

	return VectorFromSlice(t.Locations, y)
}

// PropagateN returns the trajectory [pop, T·pop, …] of length steps+1.
// steps ≤ 0 yields just the starting vector.
func PropagateN(pop Vector, t *Transition, steps int) []Vector {
	out := make([]Vector, 0, max(steps, 0)+1)
	cur := pop.Clone()
	out = append(out, cur)
	for s := 0; s < steps; s++ {
		cur = Propagate(cur, t)
		out = append(out, cur)
	}

	return out
}
