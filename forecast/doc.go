// SPDX-License-Identifier: MIT

// Package forecast runs the population model end to end.
//
// A run moves through fixed stages:
//
//	Idle → LoadingTraining → BuildingMatrices → Averaging → Sampling → Scoring → Done
//
// and ends in Failed as soon as a stage returns an error. Each stage is a
// function of a RunContext value and returns an extended copy, so a run never
// shares mutable state with another.
//
//   - LoadingTraining: validate the Config, read the start-year stock (the
//     latest input year) and, in multiple mode, derive the training pairs.
//   - BuildingMatrices: estimate one transition per pair, concurrently.
//   - Averaging: element-wise mean, or the start year's own matrix when no
//     pair produced one.
//   - Sampling: deterministic trajectory plus the seeded ensemble.
//   - Scoring: RMSE, MAE and interval coverage against observed stock.
//
// Pipeline executes single runs. Runner adds the "current run" slot: a new run
// cancels the previous one and only the newest run may publish (last run
// wins).
//
// Errors: ErrMissingData and ErrDegenerateMatrix abort a run without a partial
// result; ErrSuperseded reports a run replaced by a newer one.
package forecast
