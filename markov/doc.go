// SPDX-License-Identifier: MIT

// Package markov estimates, averages and applies the transition matrices of
// the population-redistribution model.
//
// 🚀 What lives here?
//
//   - Estimator.Estimate: one year of inflow/outflow/stock figures → a
//     row-stochastic Transition, shaped by distance and border connectivity.
//   - Average: element-wise mean of several per-year Transitions.
//   - Propagate / PropagateN: one or many Markov steps of a population Vector.
//   - ParseNumber: defensive parsing of free-text figures (bad input → 0).
//
// Estimation per origin i:
//
//	p_stay  = max(0.5, 1 − outflow_i / max(1, stock_i))     (stock_i ≤ 0 → identity row)
//	w_ij    = max(1e-4, ln(inflow_j + 10)) · e^(−α·d_ij/1000) · (1 + β·c_ij)
//	T_ij    = (1 − p_stay) · w_ij / Σ_k w_ik                  (j ≠ i)
//
// followed by an L1 renormalization of the row. The estimator is total: it
// never fails on data, only on an empty or duplicated location list.
package markov
