// SPDX-License-Identifier: MIT

package markov

import (
	"fmt"
	"math"

	"github.com/katalvlaran/popflow/geo"
	"github.com/katalvlaran/popflow/matrix"
)

// Estimation constants.
const (
	// MinStayProbability floors the retention probability of a populated origin.
	MinStayProbability = 0.5

	// InflowOffset is added to inflow before taking the logarithm so that a
	// zero inflow stays finite.
	InflowOffset = 10.0

	// MinAttractiveness is the lower bound of a destination's attractiveness.
	MinAttractiveness = 1e-4

	// DistanceScaleKm converts kilometres into the decay exponent unit.
	DistanceScaleKm = 1000.0
)

// Estimator converts one year of flows into a Transition.
//
// Alpha is the distance effect and Beta the connectivity effect; both are
// expected in [0,1] and are not re-clamped here.
type Estimator struct {
	Features geo.Features
	Alpha    float64
	Beta     float64
}

// Estimate builds the transition predicting year+1 from the flows of year.
// MAIN DESCRIPTION:
//   - Per origin, keep p_stay on the diagonal and spread 1 − p_stay over the
//     other locations in proportion to attractiveness × distance decay ×
//     connectivity boost.
//
// Implementation:
//   - Stage 1: zero/missing stock → identity row.
//   - Stage 2: p_stay = max(0.5, 1 − outflow/max(1, stock)).
//   - Stage 3: weights for j ≠ i, distribute (1 − p_stay) proportionally;
//     a zero weight sum leaves the off-diagonal at 0.
//   - Stage 4: L1 renormalization of every row (matrix.NormalizeRowsL1).
//
// Behavior highlights:
//   - Malformed figures (negative, NaN, ±Inf) are treated as 0.
//   - A nil Features behaves as "every location unknown" (3000 km, no border).
//
// Errors:
//   - ErrNoLocations, ErrDuplicateLocation.
//
// Complexity:
//   - Time O(n²), Space O(n²).
func (e Estimator) Estimate(year int, flows FlowData, locations []string) (*Transition, error) {
	n := len(locations)
	if n == 0 {
		return nil, ErrNoLocations
	}
	M, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, fmt.Errorf("Estimate: %w", err)
	}

	// attractiveness depends only on the destination
	attr := make([]float64, n)
	for j, l := range locations {
		attr[j] = math.Max(MinAttractiveness, math.Log(sanitize(flows[l].Inflow)+InflowOffset))
	}

	row := make([]float64, n)
	for i, origin := range locations {
		for j := range row {
			row[j] = 0
		}
		f := flows[origin]
		stock := sanitize(f.Stock)
		if stock <= 0 {
			row[i] = 1
			if err = M.SetRow(i, row); err != nil {
				return nil, fmt.Errorf("Estimate: %w", err)
			}
			continue
		}

		pStay := math.Max(MinStayProbability, 1-sanitize(f.Outflow)/math.Max(1, stock))
		row[i] = pStay

		var total float64
		for j, dest := range locations {
			if j == i {
				continue
			}
			w := attr[j] * math.Exp(-e.Alpha*e.distance(origin, dest)/DistanceScaleKm) *
				(1 + e.Beta*e.connectivity(origin, dest))
			row[j] = w
			total += w
		}
		move := 1 - pStay
		for j := range row {
			if j == i {
				continue
			}
			if total > 0 {
				row[j] = move * row[j] / total
			} else {
				row[j] = 0
			}
		}
		if err = M.SetRow(i, row); err != nil {
			return nil, fmt.Errorf("Estimate: origin %q: %w", origin, err)
		}
	}

	normalized, _, err := matrix.NormalizeRowsL1(M)
	if err != nil {
		return nil, fmt.Errorf("Estimate: %w", err)
	}

	return NewTransition(year, locations, normalized)
}

func (e Estimator) distance(a, b string) float64 {
	if e.Features == nil {
		if a == b {
			return 0
		}
		return geo.DefaultDistanceKm
	}

	return e.Features.Distance(a, b)
}

func (e Estimator) connectivity(a, b string) float64 {
	if e.Features == nil {
		return 0
	}

	return e.Features.Connectivity(a, b)
}

// sanitize maps NaN, ±Inf and negatives to 0.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}

	return v
}
