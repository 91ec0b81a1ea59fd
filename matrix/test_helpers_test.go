// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic test fixtures and utilities for kernels.
//   • Keep all data finite and well-formed to avoid numeric-policy interference.

package matrix_test

import (
	"testing"

	"github.com/katalvlaran/popflow/matrix"
)

// hide wraps any Matrix to hide its concrete type from type assertions,
// forcing kernels onto their non-*Dense (At-based) fallback paths.
type hide struct{ matrix.Matrix }

// MustDense allocates an r×c *Dense or fails the test.
func MustDense(t *testing.T, r, c int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(r, c)
	if err != nil {
		t.Fatalf("NewDense(%d,%d): %v", r, c, err)
	}

	return m
}

// MustRows builds a *Dense from a literal or fails the test.
func MustRows(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFromRows(rows)
	if err != nil {
		t.Fatalf("NewDenseFromRows: %v", err)
	}

	return m
}

// weatherChain is a classic 3-state row-stochastic chain (sunny, cloudy, rainy).
func weatherChain(t *testing.T) *matrix.Dense {
	t.Helper()

	return MustRows(t, [][]float64{
		{0.7, 0.2, 0.1},
		{0.3, 0.4, 0.3},
		{0.2, 0.3, 0.5},
	})
}
