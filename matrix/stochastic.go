// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Provide the fixed set of kernels a row-stochastic transition matrix needs:
//     row sums, L1 row normalization, row-vector × matrix, element-wise mean and
//     a structural stochasticity check.
//
// Exposed API:
//   - RowSums(X)          -> sums              // Σ_j X[i,j] per row
//   - NormalizeRowsL1(X)  -> (Y, sums)         // divide rows by their sum; zero-sum rows unchanged
//   - VecMul(x, X)        -> y                 // y_j = Σ_i x_i · X[i,j]
//   - Mean(Xs)            -> M                 // element-wise arithmetic mean
//   - IsRowStochastic(X)  -> error             // every row non-negative and Σ=1 within eps
//
// Determinism & Performance:
//   - Fixed i→j traversal for all explicit loops.
//   - Dense fast-paths avoid At/Set and operate on row-major flat buffers.

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// Operation name constants for unified error wrapping.
const (
	opRowSums         = "RowSums"
	opNormalizeRowsL1 = "NormalizeRowsL1"
	opVecMul          = "VecMul"
	opMean            = "Mean"
	opIsRowStochastic = "IsRowStochastic"
)

// matrixErrorf wraps an underlying error with the given tag.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// rowsOf materializes the rows of X as float64 slices.
// Dense rows alias the storage (read-only use!); other types are copied via At.
func rowsOf(tag string, X Matrix) ([][]float64, error) {
	r, c := X.Rows(), X.Cols()
	out := make([][]float64, r)
	if d, ok := X.(*Dense); ok {
		for i := 0; i < r; i++ {
			out[i] = d.data[i*c : (i+1)*c : (i+1)*c]
		}

		return out, nil
	}
	var err error
	for i := 0; i < r; i++ {
		out[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			if out[i][j], err = X.At(i, j); err != nil {
				return nil, matrixErrorf(tag, err)
			}
		}
	}

	return out, nil
}

// RowSums returns Σ_j X[i,j] for every row i.
//
// Errors:
//   - ErrNilMatrix from validation; wrapped At errors on the fallback path.
//
// Complexity:
//   - Time O(r*c), Space O(r).
func RowSums(X Matrix) ([]float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(opRowSums, err)
	}
	rows, err := rowsOf(opRowSums, X)
	if err != nil {
		return nil, err
	}
	sums := make([]float64, len(rows))
	for i, row := range rows {
		sums[i] = floats.Sum(row)
	}

	return sums, nil
}

// NormalizeRowsL1 divides every row by its sum.
// MAIN DESCRIPTION:
//   - Restores the row-stochastic invariant after floating-point drift.
//
// Implementation:
//   - Stage 1: validate X and compute row sums.
//   - Stage 2: build a *Dense copy; rows with sum > 0 and sum != 1 are scaled by 1/sum.
//   - Stage 3: rows with sum <= 0 and rows already summing to exactly 1 are copied unchanged.
//
// Returns:
//   - *Dense: normalized copy (X itself is never mutated).
//   - []float64: the pre-normalization row sums.
//
// Errors:
//   - ErrNilMatrix, wrapped At errors.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NormalizeRowsL1(X Matrix) (*Dense, []float64, error) {
	sums, err := RowSums(X)
	if err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL1, err)
	}
	rows, err := rowsOf(opNormalizeRowsL1, X)
	if err != nil {
		return nil, nil, err
	}
	Y, err := NewDense(X.Rows(), X.Cols())
	if err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL1, err)
	}
	c := Y.c
	for i, row := range rows {
		dst := Y.data[i*c : (i+1)*c]
		copy(dst, row)
		if sums[i] > 0 && sums[i] != 1 {
			floats.Scale(1/sums[i], dst)
		}
	}

	return Y, sums, nil
}

// VecMul computes the row-vector product y = x · X.
// MAIN DESCRIPTION:
//   - One Markov step: y_j = Σ_i x_i · X[i,j].
//
// Implementation:
//   - Stage 1: validate X non-nil and len(x) == Rows().
//   - Stage 2: accumulate x_i-scaled rows into y in fixed i→j order.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (wrapped).
//
// Determinism:
//   - Fixed accumulation order; identical inputs yield bit-identical outputs.
//
// Complexity:
//   - Time O(r*c), Space O(c).
func VecMul(x []float64, X Matrix) ([]float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(opVecMul, err)
	}
	if err := ValidateVecLen(x, X.Rows()); err != nil {
		return nil, matrixErrorf(opVecMul, err)
	}
	rows, err := rowsOf(opVecMul, X)
	if err != nil {
		return nil, err
	}
	y := make([]float64, X.Cols())
	for i, row := range rows {
		if x[i] == 0 {
			continue
		}
		floats.AddScaled(y, x[i], row) // y += x_i * row_i
	}

	return y, nil
}

// Mean returns the element-wise arithmetic mean of same-shaped matrices.
// MAIN DESCRIPTION:
//   - Plain unweighted average: M[i,j] = (Σ_k Xs[k][i,j]) / len(Xs).
//
// Errors:
//   - ErrEmptyInput for an empty list.
//   - ErrNilMatrix for a nil operand; ErrDimensionMismatch for a shape mismatch.
//
// Complexity:
//   - Time O(k*r*c), Space O(r*c).
func Mean(Xs []Matrix) (*Dense, error) {
	if len(Xs) == 0 {
		return nil, matrixErrorf(opMean, ErrEmptyInput)
	}
	for k, X := range Xs {
		if err := ValidateNotNil(X); err != nil {
			return nil, fmt.Errorf("%s: operand %d: %w", opMean, k, err)
		}
		if err := ValidateSameShape(Xs[0], X); err != nil {
			return nil, fmt.Errorf("%s: operand %d: %w", opMean, k, err)
		}
	}
	M, err := NewDense(Xs[0].Rows(), Xs[0].Cols())
	if err != nil {
		return nil, matrixErrorf(opMean, err)
	}
	for _, X := range Xs {
		rows, err := rowsOf(opMean, X)
		if err != nil {
			return nil, err
		}
		for i, row := range rows {
			floats.Add(M.data[i*M.c:(i+1)*M.c], row)
		}
	}
	n := float64(len(Xs))
	for k := range M.data {
		M.data[k] /= n
	}

	return M, nil
}

// IsRowStochastic reports, as an error, whether every row of X is a
// probability distribution: entries finite and >= 0, Σ within eps of 1.
//
// Errors:
//   - ErrNilMatrix; ErrNaNInf; ErrNotStochastic wrapped with the offending row.
//
// Complexity:
//   - Time O(r*c), Space O(r).
func IsRowStochastic(X Matrix, opts ...Option) error {
	o := gatherOptions(opts...)
	if err := ValidateNotNil(X); err != nil {
		return matrixErrorf(opIsRowStochastic, err)
	}
	rows, err := rowsOf(opIsRowStochastic, X)
	if err != nil {
		return err
	}
	for i, row := range rows {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%s: row %d col %d: %w", opIsRowStochastic, i, j, ErrNaNInf)
			}
			if o.requireNonNeg && v < 0 {
				return fmt.Errorf("%s: row %d col %d negative: %w", opIsRowStochastic, i, j, ErrNotStochastic)
			}
		}
		if s := floats.Sum(row); !scalar.EqualWithinAbs(s, 1, o.eps) {
			return fmt.Errorf("%s: row %d sums to %g: %w", opIsRowStochastic, i, s, ErrNotStochastic)
		}
	}

	return nil
}
