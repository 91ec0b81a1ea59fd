package ensemble_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/popflow/ensemble"
	"github.com/katalvlaran/popflow/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constSource always returns the same draw and counts calls.
type constSource struct {
	u     float64
	calls int
}

func (c *constSource) Float64() float64 {
	c.calls++
	return c.u
}

// With equal draws every g_k is proportional to its shape, so the row comes
// back unchanged (up to rounding).
func TestPerturbRowConstantDrawsKeepRow(t *testing.T) {
	src := &constSource{u: 0.3}
	p := []float64{0.6, 0.3, 0.1}

	got := ensemble.PerturbRow(p, 3, src)
	assert.InDeltaSlice(t, p, got, 1e-12)
	assert.Equal(t, 3, src.calls)
}

func TestPerturbRowSumsToOne(t *testing.T) {
	src := ensemble.NewLCG(ensemble.SeedFromString("rows"))
	p := []float64{0.9, 0.05, 0.05, 0}

	for i := 0; i < 1000; i++ {
		got := ensemble.PerturbRow(p, len(p), src)
		require.Len(t, got, len(p))
		var s float64
		for _, v := range got {
			require.GreaterOrEqual(t, v, 0.0)
			s += v
		}
		require.InDelta(t, 1, s, 1e-12)
	}
}

// TestPerturbRowIsApproximateDirichlet documents the exponential stand-in for
// Gamma(alpha,1). An exact Dirichlet(alpha) sample has mean p; scaling Exp(1)
// draws by alpha instead pulls the sample mean toward uniform while keeping
// the order of the entries.
func TestPerturbRowIsApproximateDirichlet(t *testing.T) {
	src := ensemble.NewLCG(ensemble.SeedFromString("dirichlet"))
	p := []float64{0.7, 0.2, 0.1}
	const draws = 20000

	mean := make([]float64, len(p))
	for i := 0; i < draws; i++ {
		for k, v := range ensemble.PerturbRow(p, len(p), src) {
			mean[k] += v / draws
		}
	}
	assert.InDelta(t, 0.61, mean[0], 0.03)
	assert.Less(t, mean[0], p[0])
	assert.Greater(t, mean[2], p[2])
	assert.Greater(t, mean[0], mean[1])
	assert.Greater(t, mean[1], mean[2])
}

func TestPerturbRowMalformedFallsBackToUniform(t *testing.T) {
	tests := []struct {
		name string
		row  []float64
		n    int
	}{
		{"empty", nil, 4},
		{"short", []float64{1, 0}, 4},
		{"nan", []float64{0.5, math.NaN(), 0.5, 0}, 4},
		{"inf", []float64{math.Inf(1), 0, 0, 0}, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := &constSource{u: 0.5}
			got := ensemble.PerturbRow(tc.row, tc.n, src)
			assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, got)
			assert.Zero(t, src.calls)
		})
	}

	assert.Empty(t, ensemble.PerturbRow([]float64{1}, 0, &constSource{}))
}

// A zero draw is floored at MinDraw rather than producing +Inf.
func TestPerturbRowZeroDraw(t *testing.T) {
	got := ensemble.PerturbRow([]float64{0.5, 0.5}, 2, &constSource{u: 0})
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, got, 1e-12)
}

func TestPerturbMatrix(t *testing.T) {
	m, err := matrix.NewDenseFromRows([][]float64{{0.9, 0.1}, {0.04, 0.96}})
	require.NoError(t, err)
	orig := m.String()

	src := ensemble.NewLCG(42)
	pm, err := ensemble.PerturbMatrix(m, src)
	require.NoError(t, err)
	require.NoError(t, matrix.IsRowStochastic(pm))
	require.Equal(t, orig, m.String()) // input untouched
	require.NotEqual(t, orig, pm.String())

	rect, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	_, err = ensemble.PerturbMatrix(rect, src)
	require.ErrorIs(t, err, matrix.ErrNonSquare)
}
