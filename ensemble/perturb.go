// SPDX-License-Identifier: MIT

package ensemble

import (
	"fmt"
	"math"

	"github.com/katalvlaran/popflow/matrix"
	"gonum.org/v1/gonum/floats"
)

const (
	// Concentration scales probabilities into Dirichlet shape parameters.
	Concentration = 100.0

	// MinShape floors a shape parameter so zero probabilities stay drawable.
	MinShape = 1e-6

	// MinDraw floors a uniform draw before the logarithm.
	MinDraw = 1e-12
)

// PerturbRow draws a Dirichlet-like variant of the probability row p.
// MAIN DESCRIPTION:
//   - alpha_k = max(MinShape, Concentration·p_k); g_k = −ln(max(u, MinDraw))·alpha_k;
//     result g / Σg sums to 1.
//
// Behavior highlights:
//   - Consumes exactly n draws from src, in column order, for a well-formed row.
//   - A row of the wrong length or with NaN/±Inf entries is replaced by the
//     uniform row 1/n and consumes no draws.
//   - n ≤ 0 yields an empty row.
//
// Complexity:
//   - Time O(n), Space O(n).
func PerturbRow(p []float64, n int, src Source) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if !wellFormed(p, n) {
		return uniformRow(n)
	}
	g := make([]float64, n)
	for k, pk := range p {
		shape := math.Max(MinShape, pk*Concentration)
		g[k] = -math.Log(math.Max(src.Float64(), MinDraw)) * shape
	}
	sum := floats.Sum(g)
	if !(sum > 0) || math.IsInf(sum, 0) {
		return uniformRow(n)
	}
	floats.Scale(1/sum, g)

	return g
}

// PerturbMatrix perturbs every row of m (row order, fresh draws per row) and
// returns the result as a new matrix. m is not modified.
func PerturbMatrix(m *matrix.Dense, src Source) (*matrix.Dense, error) {
	if err := matrix.ValidateTransition(m); err != nil {
		return nil, fmt.Errorf("PerturbMatrix: %w", err)
	}
	n := m.Rows()
	out, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, fmt.Errorf("PerturbMatrix: %w", err)
	}
	for i := 0; i < n; i++ {
		row, err := m.Row(i)
		if err != nil {
			return nil, fmt.Errorf("PerturbMatrix: %w", err)
		}
		if err = out.SetRow(i, PerturbRow(row, n, src)); err != nil {
			return nil, fmt.Errorf("PerturbMatrix: %w", err)
		}
	}

	return out, nil
}

func wellFormed(p []float64, n int) bool {
	if len(p) != n {
		return false
	}
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

func uniformRow(n int) []float64 {
	row := make([]float64, n)
	for k := range row {
		row[k] = 1 / float64(n)
	}

	return row
}
