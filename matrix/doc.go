// SPDX-License-Identifier: MIT

// Package matrix provides the dense numeric substrate used by popflow's
// Markov-chain model.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with safe accessors (At/Set return
//     errors instead of panicking) and an optional finite-only numeric policy.
//   - Row-stochastic kernels: RowSums, NormalizeRowsL1, IsRowStochastic.
//   - Vector and aggregate kernels: VecMul (row vector × matrix) and Mean
//     (element-wise arithmetic mean of same-shaped matrices).
//   - Validators shared by every kernel (nil, shape, square, vector length).
//
// It is intentionally NOT a general linear-algebra library: there is no
// inversion, decomposition or matrix product beyond what a transition matrix
// needs. All loops run in a fixed i→j order, so results are bit-reproducible
// for equal inputs.
//
// Errors are package sentinels (see errors.go), matched with errors.Is.
package matrix
