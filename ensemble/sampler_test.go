package ensemble_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/katalvlaran/popflow/ensemble"
	"github.com/katalvlaran/popflow/markov"
	"github.com/katalvlaran/popflow/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoCountryParams(t *testing.T) ensemble.Params {
	t.Helper()
	m, err := matrix.NewDenseFromRows([][]float64{{0.9, 0.1}, {0.04, 0.96}})
	require.NoError(t, err)
	T, err := markov.NewTransition(2015, []string{"A", "B"}, m)
	require.NoError(t, err)

	return ensemble.Params{
		Transition:   T,
		Initial:      markov.Vector{"A": 1000, "B": 500},
		StartYear:    2015,
		Steps:        5,
		EnsembleSize: ensemble.DefaultSize,
		Seed:         "popflow",
		HasSeed:      true,
	}
}

func TestLocalSamplerShape(t *testing.T) {
	p := twoCountryParams(t)
	steps, err := ensemble.LocalSampler{}.Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, steps, p.Steps+1)

	// step 0 is the known start with a zero-width band
	assert.Equal(t, 0, steps[0].Step)
	assert.Equal(t, 2015, steps[0].Year)
	assert.Equal(t, p.Initial, steps[0].Mean)
	assert.Equal(t, steps[0].Mean, steps[0].Lower)
	assert.Equal(t, steps[0].Mean, steps[0].Upper)

	for i, s := range steps {
		assert.Equal(t, i, s.Step)
		assert.Equal(t, 2015+i, s.Year)
	}
}

func TestSeededRunsAreReproducible(t *testing.T) {
	p := twoCountryParams(t)
	a, err := ensemble.LocalSampler{}.Run(context.Background(), p)
	require.NoError(t, err)
	b, err := ensemble.LocalSampler{}.Run(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, a, b)

	// the worker path runs the same algorithm on the same seed
	c, err := ensemble.OffloadedSampler{}.Run(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, a, c)

	p.Seed = "another seed"
	d, err := ensemble.LocalSampler{}.Run(context.Background(), p)
	require.NoError(t, err)
	require.NotEqual(t, a[1].Mean, d[1].Mean)
}

func TestCredibleBandContainsMean(t *testing.T) {
	for _, size := range []int{1, 10, 39, 100, 500} {
		p := twoCountryParams(t)
		p.EnsembleSize = size
		steps, err := ensemble.LocalSampler{}.Run(context.Background(), p)
		require.NoError(t, err)
		for _, s := range steps {
			for _, loc := range p.Transition.Locations {
				require.LessOrEqual(t, s.Lower[loc], s.Mean[loc], "size %d step %d %s", size, s.Step, loc)
				require.LessOrEqual(t, s.Mean[loc], s.Upper[loc], "size %d step %d %s", size, s.Step, loc)
			}
		}
	}
}

// A single location has a 1×1 chain: every member reproduces the base exactly.
func TestSingleLocationHasZeroWidth(t *testing.T) {
	id, err := matrix.NewIdentity(1)
	require.NoError(t, err)
	T, err := markov.NewTransition(2000, []string{"A"}, id)
	require.NoError(t, err)

	steps, err := ensemble.LocalSampler{}.Run(context.Background(), ensemble.Params{
		Transition: T, Initial: markov.Vector{"A": 0.1}, Steps: 3, EnsembleSize: 100, HasSeed: true,
	})
	require.NoError(t, err)
	for _, s := range steps {
		assert.InDelta(t, 0.1, s.Mean["A"], 1e-15)
		assert.LessOrEqual(t, s.Lower["A"], s.Mean["A"])
		assert.GreaterOrEqual(t, s.Upper["A"], s.Mean["A"])
	}
}

func TestEnsembleConservesMass(t *testing.T) {
	p := twoCountryParams(t)
	p.Steps = 10
	steps, err := ensemble.LocalSampler{}.Run(context.Background(), p)
	require.NoError(t, err)
	for _, s := range steps {
		assert.InDelta(t, 1500, s.Mean.Total(), 1e-6)
	}
}

// TestUnseededIsStatisticallyEquivalent: a fallback without a seed must agree
// with the seeded run in distribution, not bit for bit.
func TestUnseededIsStatisticallyEquivalent(t *testing.T) {
	p := twoCountryParams(t)
	p.Steps = 1
	p.EnsembleSize = 1000
	seeded, err := ensemble.LocalSampler{}.Run(context.Background(), p)
	require.NoError(t, err)

	p.HasSeed = false
	unseeded, err := ensemble.LocalSampler{}.Run(context.Background(), p)
	require.NoError(t, err)

	// member std ≈ 230 ⇒ std of a 1000-member mean ≈ 7
	assert.InDelta(t, seeded[1].Mean["A"], unseeded[1].Mean["A"], 50)
	assert.InDelta(t, seeded[1].Lower["A"], unseeded[1].Lower["A"], 150)
	assert.InDelta(t, seeded[1].Upper["A"], unseeded[1].Upper["A"], 150)
}

func TestZeroStepsReturnsStartOnly(t *testing.T) {
	p := twoCountryParams(t)
	p.Steps = 0
	steps, err := ensemble.LocalSampler{}.Run(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, steps, 1)
}

func TestSamplerDoesNotTouchCallerState(t *testing.T) {
	p := twoCountryParams(t)
	before := p.Transition.M.String()
	steps, err := ensemble.OffloadedSampler{}.Run(context.Background(), p)
	require.NoError(t, err)

	steps[0].Mean["A"] = -1
	assert.Equal(t, 1000.0, p.Initial["A"])
	assert.Equal(t, before, p.Transition.M.String())
}

func TestParamsValidate(t *testing.T) {
	good := twoCountryParams(t)
	require.NoError(t, good.Validate())

	tests := map[string]func(p *ensemble.Params){
		"nil transition": func(p *ensemble.Params) { p.Transition = nil },
		"zero size":      func(p *ensemble.Params) { p.EnsembleSize = 0 },
		"negative steps": func(p *ensemble.Params) { p.Steps = -1 },
		"location count": func(p *ensemble.Params) {
			p.Transition = &markov.Transition{Locations: []string{"A"}, M: p.Transition.M}
		},
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := twoCountryParams(t)
			mutate(&p)
			require.ErrorIs(t, p.Validate(), ensemble.ErrInvalidParams)

			_, err := ensemble.LocalSampler{}.Run(context.Background(), p)
			require.ErrorIs(t, err, ensemble.ErrInvalidParams)
		})
	}
}

func TestLocalSamplerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ensemble.LocalSampler{}.Run(ctx, twoCountryParams(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestOffloadedSamplerTimeout(t *testing.T) {
	blocked := make(chan struct{})
	defer close(blocked)
	s := ensemble.OffloadedSampler{
		Timeout: 20 * time.Millisecond,
		Work: func(ctx context.Context, _ ensemble.Params) ([]ensemble.Step, error) {
			<-blocked // unresponsive worker
			return nil, nil
		},
	}
	_, err := s.Run(context.Background(), twoCountryParams(t))
	require.ErrorIs(t, err, ensemble.ErrWorkerTimeout)
}

func TestOffloadedSamplerPanic(t *testing.T) {
	s := ensemble.OffloadedSampler{
		Work: func(context.Context, ensemble.Params) ([]ensemble.Step, error) {
			panic("worker exploded")
		},
	}
	_, err := s.Run(context.Background(), twoCountryParams(t))
	require.ErrorIs(t, err, ensemble.ErrWorkerFailed)
	require.Contains(t, err.Error(), "worker exploded")
}

func TestOffloadedSamplerCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := ensemble.OffloadedSampler{
		Work: func(ctx context.Context, _ ensemble.Params) ([]ensemble.Step, error) {
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	_, err := s.Run(ctx, twoCountryParams(t))
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ensemble.ErrWorkerTimeout)
}

// failingSampler always fails with err and counts calls.
type failingSampler struct {
	err   error
	calls int
}

func (f *failingSampler) Run(context.Context, ensemble.Params) ([]ensemble.Step, error) {
	f.calls++
	return nil, f.err
}

func TestWithFallback(t *testing.T) {
	p := twoCountryParams(t)
	want, err := ensemble.LocalSampler{}.Run(context.Background(), p)
	require.NoError(t, err)

	primary := &failingSampler{err: ensemble.ErrWorkerFailed}
	var observed error
	s := ensemble.WithFallback(primary, ensemble.LocalSampler{}, func(err error) { observed = err })

	got, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, 1, primary.calls)
	require.ErrorIs(t, observed, ensemble.ErrWorkerFailed)
}

func TestWithFallbackSkipsInvalidParamsAndCancellation(t *testing.T) {
	fallback := &failingSampler{err: errors.New("must not run")}

	invalid := ensemble.WithFallback(ensemble.OffloadedSampler{}, fallback, nil)
	_, err := invalid.Run(context.Background(), ensemble.Params{})
	require.ErrorIs(t, err, ensemble.ErrInvalidParams)
	require.Zero(t, fallback.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cancelled := ensemble.WithFallback(&failingSampler{err: context.Canceled}, fallback, nil)
	_, err = cancelled.Run(ctx, twoCountryParams(t))
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, fallback.calls)
}

// TestTimeoutFallsBackToLocal wires the production composition: an
// unresponsive worker is abandoned and the synchronous path answers.
func TestTimeoutFallsBackToLocal(t *testing.T) {
	blocked := make(chan struct{})
	defer close(blocked)
	slow := ensemble.OffloadedSampler{
		Timeout: 10 * time.Millisecond,
		Work: func(context.Context, ensemble.Params) ([]ensemble.Step, error) {
			<-blocked
			return nil, nil
		},
	}
	fallbacks := 0
	s := ensemble.WithFallback(slow, ensemble.LocalSampler{}, func(err error) {
		fallbacks++
		require.ErrorIs(t, err, ensemble.ErrWorkerTimeout)
	})

	steps, err := s.Run(context.Background(), twoCountryParams(t))
	require.NoError(t, err)
	require.Len(t, steps, 6)
	require.Equal(t, 1, fallbacks)
}
