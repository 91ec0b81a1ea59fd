// SPDX-License-Identifier: MIT

package ensemble

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/popflow/markov"
	"github.com/katalvlaran/popflow/matrix"
	"gonum.org/v1/gonum/stat"
)

// Credible interval bounds.
const (
	LowerQuantile = 0.025
	UpperQuantile = 0.975

	// DefaultSize is the ensemble size used when none is configured.
	DefaultSize = 100
)

// Params is the value snapshot a sampler works on.
type Params struct {
	Transition   *markov.Transition
	Initial      markov.Vector
	StartYear    int
	Steps        int
	EnsembleSize int
	Seed         string
	HasSeed      bool
}

// Validate reports unusable parameters as ErrInvalidParams.
func (p Params) Validate() error {
	switch {
	case p.Transition == nil || p.Transition.M == nil:
		return fmt.Errorf("%w: nil transition", ErrInvalidParams)
	case p.EnsembleSize <= 0:
		return fmt.Errorf("%w: ensemble size %d", ErrInvalidParams, p.EnsembleSize)
	case p.Steps < 0:
		return fmt.Errorf("%w: steps %d", ErrInvalidParams, p.Steps)
	}
	// rebinding re-checks shape, location count and duplicates
	if _, err := markov.NewTransition(p.Transition.Year, p.Transition.Locations, p.Transition.M); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	return nil
}

// snapshot deep-copies everything a worker reads, so it never touches
// caller-owned state.
func (p Params) snapshot() Params {
	cp := p
	cp.Transition = p.Transition.Clone()
	cp.Initial = p.Initial.Clone()

	return cp
}

// Step is the reduced ensemble at one forecast step.
type Step struct {
	Step  int           `json:"step"`
	Year  int           `json:"year"`
	Mean  markov.Vector `json:"mean"`
	Lower markov.Vector `json:"lower"`
	Upper markov.Vector `json:"upper"`
}

// Sampler runs the ensemble procedure and returns Steps+1 results, the first
// being the zero-width start state.
type Sampler interface {
	Run(ctx context.Context, p Params) ([]Step, error)
}

// LocalSampler runs the ensemble synchronously on the calling goroutine.
type LocalSampler struct{}

var _ Sampler = LocalSampler{}

// Run validates p and executes the ensemble with a fresh Source.
func (LocalSampler) Run(ctx context.Context, p Params) ([]Step, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.snapshot()

	return run(ctx, p, NewSource(p.Seed, p.HasSeed))
}

// run is the sampling algorithm shared by every Sampler.
// MAIN DESCRIPTION:
//   - Step 0 is the initial vector with zero-width bounds.
//   - For s = 1..Steps, every member perturbs the matrix with fresh draws and
//     propagates the previous step's mean; members are reduced per location.
//
// Behavior highlights:
//   - src is consumed sequentially: step → member → row → column.
//   - ctx is checked before every member; cancellation returns ctx.Err() and
//     no partial result.
//
// Complexity:
//   - Time O(Steps · Size · n²), Space O(Size · n + n²).
func run(ctx context.Context, p Params, src Source) ([]Step, error) {
	locs := p.Transition.Locations
	n := len(locs)
	out := make([]Step, 0, p.Steps+1)

	base := p.Initial.Slice(locs)
	start := markov.VectorFromSlice(locs, base)
	out = append(out, Step{
		Step:  0,
		Year:  p.StartYear,
		Mean:  start,
		Lower: start.Clone(),
		Upper: start.Clone(),
	})

	members := make([][]float64, p.EnsembleSize)
	column := make([]float64, p.EnsembleSize)
	for s := 1; s <= p.Steps; s++ {
		for m := range members {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			perturbed, err := PerturbMatrix(p.Transition.M, src)
			if err != nil {
				return nil, err
			}
			if members[m], err = matrix.VecMul(base, perturbed); err != nil {
				return nil, err
			}
		}

		mean := make([]float64, n)
		lower := make([]float64, n)
		upper := make([]float64, n)
		for j := 0; j < n; j++ {
			for m := range members {
				column[m] = members[m][j]
			}
			mean[j] = stat.Mean(column, nil)
			sort.Float64s(column)
			lower[j] = math.Min(column[quantileIndex(len(column), LowerQuantile)], mean[j])
			upper[j] = math.Max(column[quantileIndex(len(column), UpperQuantile)], mean[j])
		}

		out = append(out, Step{
			Step:  s,
			Year:  p.StartYear + s,
			Mean:  markov.VectorFromSlice(locs, mean),
			Lower: markov.VectorFromSlice(locs, lower),
			Upper: markov.VectorFromSlice(locs, upper),
		})
		base = mean // chain on the running mean
	}

	return out, nil
}

// quantileIndex returns floor(n·q) clamped into [0, n−1].
func quantileIndex(n int, q float64) int {
	idx := int(math.Floor(float64(n) * q))

	return min(max(idx, 0), n-1)
}
