// SPDX-License-Identifier: MIT

// Package popflow forecasts how a foreign-resident population stock
// redistributes across countries.
//
// The model is a Markov chain. A row-stochastic transition matrix is
// estimated from one year of stock and flow figures, weighted by great-circle
// distance and land borders; matrices from several consecutive year pairs are
// averaged; the population vector is then propagated to the target year. A
// seeded ensemble of perturbed matrices gives 95% credible bounds per step.
//
// Packages:
//
//	matrix/    dense row-major matrix and the row-stochastic kernels
//	geo/       country coordinates, adjacency, haversine distance
//	years/     training-year expansion and consecutive pairs
//	markov/    transition estimation, averaging, propagation
//	ensemble/  seeded LCG, Dirichlet-like perturbation, samplers
//	metrics/   RMSE, MAE, interval coverage
//	dataset/   yearly observations and CSV ingestion
//	forecast/  run pipeline, state machine, last-run-wins runner
//	config/    .env and POPFLOW_* settings
//	logger/    process slog logger
//
// The popflow command (cmd/popflow) wires them together: read a CSV, run one
// forecast, print JSON.
package popflow
