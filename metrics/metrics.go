// SPDX-License-Identifier: MIT

// Package metrics scores ensemble forecasts against observed values.
package metrics

import "math"

// Point is one forecast value for a location in a year, with its credible
// interval.
type Point struct {
	Year     int     `json:"year"`
	Location string  `json:"location"`
	Mean     float64 `json:"mean"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
}

// Observed returns the actual value for (year, location) and whether one is
// known.
type Observed func(year int, location string) (float64, bool)

// Result summarises forecast accuracy. Coverage is a percentage in [0, 100].
type Result struct {
	RMSE        float64 `json:"rmse"`
	MAE         float64 `json:"mae"`
	Coverage    float64 `json:"coverage"`
	TotalPoints int     `json:"totalPoints"`
}

// Evaluate compares every point with a known actual value > 0 to that value.
// Points with no observation, or an observation ≤ 0 or NaN, are skipped since
// absent data is commonly zero-filled upstream.
//
//	RMSE     = sqrt(Σ(mean − actual)² / n)
//	MAE      = Σ|mean − actual| / n
//	Coverage = 100 · #{lower ≤ actual ≤ upper} / n
//
// n = 0 (including a nil observed) yields the zero Result.
func Evaluate(points []Point, observed Observed) Result {
	if observed == nil {
		return Result{}
	}
	var (
		se, ae  float64
		covered int
		n       int
	)
	for _, p := range points {
		actual, ok := observed(p.Year, p.Location)
		if !ok || !(actual > 0) || math.IsInf(actual, 0) || math.IsNaN(p.Mean) {
			continue
		}
		d := p.Mean - actual
		se += d * d
		ae += math.Abs(d)
		if actual >= p.Lower && actual <= p.Upper {
			covered++
		}
		n++
	}
	if n == 0 {
		return Result{}
	}

	return Result{
		RMSE:        math.Sqrt(se / float64(n)),
		MAE:         ae / float64(n),
		Coverage:    100 * float64(covered) / float64(n),
		TotalPoints: n,
	}
}
