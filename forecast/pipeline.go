// SPDX-License-Identifier: MIT

package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/popflow/ensemble"
	"github.com/katalvlaran/popflow/geo"
	"github.com/katalvlaran/popflow/logger"
	"github.com/katalvlaran/popflow/markov"
	"github.com/katalvlaran/popflow/metrics"
	"github.com/katalvlaran/popflow/years"
)

// Source supplies the historical observations a run reads.
// Implementations must be safe for concurrent reads.
type Source interface {
	Years() []int
	Flows(year int) (markov.FlowData, bool)
	Stock(year int) (markov.Vector, bool)
	Observed(year int, location string) (float64, bool)
}

// Result is everything a finished run publishes.
type Result struct {
	RunID      string             `json:"runId"`
	Mode       Mode               `json:"mode"`
	StartYear  int                `json:"startYear"`
	TargetYear int                `json:"targetYear"`
	Years      []int              `json:"years"`
	Locations  []string           `json:"locations"`
	Pairs      []years.Pair       `json:"pairs"`
	Transition *markov.Transition `json:"-"`
	Matrix     markov.Table       `json:"matrix"`
	Point      []markov.Vector    `json:"point"`
	Ensemble   []ensemble.Step    `json:"ensemble"`
	Metrics    metrics.Result     `json:"metrics"`
}

// RunContext is the value threaded through the stages of one run. Each stage
// receives a copy and returns it extended with its own output.
type RunContext struct {
	ID         string
	Config     Config
	StartYear  int
	Locations  []string
	Initial    markov.Vector
	Pairs      []years.Pair
	Matrices   []*markov.Transition
	Transition *markov.Transition
	Point      []markov.Vector
	Ensemble   []ensemble.Step
	Metrics    metrics.Result
}

func (rc RunContext) result() *Result {
	ys := make([]int, len(rc.Ensemble))
	for i, s := range rc.Ensemble {
		ys[i] = s.Year
	}

	return &Result{
		RunID:      rc.ID,
		Mode:       rc.Config.Mode,
		StartYear:  rc.StartYear,
		TargetYear: rc.Config.TargetYear,
		Years:      ys,
		Locations:  rc.Locations,
		Pairs:      rc.Pairs,
		Transition: rc.Transition,
		Matrix:     rc.Transition.Percentages(),
		Point:      rc.Point,
		Ensemble:   rc.Ensemble,
		Metrics:    rc.Metrics,
	}
}

// Pipeline executes model runs. The zero value is usable: it reads the
// default country table, samples on an offloaded worker with a synchronous
// fallback and logs nowhere.
type Pipeline struct {
	// Features provides distance and connectivity; nil means geo.DefaultTable().
	Features geo.Features

	// Sampler overrides the ensemble sampler.
	Sampler ensemble.Sampler

	// OffloadTimeout bounds the default offloaded sampler; zero waits forever.
	OffloadTimeout time.Duration

	// Concurrency limits parallel matrix estimation; ≤ 0 means GOMAXPROCS.
	Concurrency int

	Logger    *slog.Logger
	Telemetry *Telemetry
}

type stage struct {
	state State
	fn    func(ctx context.Context, rc RunContext, src Source) (RunContext, error)
}

// Run executes one complete run with a fresh run ID.
//
// Errors:
//   - ErrInvalidConfig, ErrMissingData, ErrDegenerateMatrix, wrapped with the
//     failing stage.
//   - ctx.Err() when cancelled; no partial result is returned.
func (p *Pipeline) Run(ctx context.Context, cfg Config, src Source) (*Result, error) {
	id := uuid.NewString()
	res, err := p.run(ctx, id, cfg, src, func(State) {})
	if err != nil {
		p.Telemetry.run(OutcomeFailed)
		return nil, err
	}
	p.Telemetry.run(OutcomeDone)

	return res, nil
}

// run drives the stages in order, reporting each entered stage to enter.
func (p *Pipeline) run(ctx context.Context, id string, cfg Config, src Source, enter func(State)) (*Result, error) {
	log := p.logger().With("run", id)
	stages := []stage{
		{LoadingTraining, p.loadTraining},
		{BuildingMatrices, p.buildMatrices},
		{Averaging, p.average},
		{Sampling, p.sample},
		{Scoring, p.score},
	}

	rc := RunContext{ID: id, Config: cfg}
	log.Info("run_started", "mode", cfg.Mode, "input_years", cfg.InputYears, "target_year", cfg.TargetYear)
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		enter(st.state)
		start := time.Now()
		next, err := st.fn(ctx, rc, src)
		elapsed := time.Since(start)
		p.Telemetry.stage(st.state, elapsed)
		if err != nil {
			log.Warn("stage_failed", "stage", st.state, "err", err)
			return nil, fmt.Errorf("%s: %w", st.state, err)
		}
		log.Debug("stage_done", "stage", st.state, "duration_ms", elapsed.Milliseconds())
		rc = next
	}
	log.Info("run_done", "start_year", rc.StartYear, "pairs", len(rc.Pairs), "points", rc.Metrics.TotalPoints)

	return rc.result(), nil
}

// loadTraining validates the configuration, reads the initial population
// and works out the training pairs.
func (p *Pipeline) loadTraining(_ context.Context, rc RunContext, src Source) (RunContext, error) {
	if err := rc.Config.Validate(); err != nil {
		return rc, err
	}
	rc.StartYear = rc.Config.StartYear()
	stock, ok := src.Stock(rc.StartYear)
	if !ok || len(stock) == 0 {
		return rc, fmt.Errorf("%w: %d", ErrMissingData, rc.StartYear)
	}

	if len(rc.Config.Locations) > 0 {
		rc.Locations = append([]string(nil), rc.Config.Locations...)
	} else {
		rc.Locations = make([]string, 0, len(stock))
		for loc := range stock {
			rc.Locations = append(rc.Locations, loc)
		}
		sort.Strings(rc.Locations)
	}
	rc.Initial = markov.VectorFromSlice(rc.Locations, stock.Slice(rc.Locations))

	if rc.Config.Mode == ModeMultiple {
		rc.Pairs = years.Pairs(years.Expand(rc.Config.InputYears, src.Years()))
	}

	return rc, nil
}

// buildMatrices estimates one transition per training pair from the pair's
// first year. Pairs are estimated concurrently; the result keeps pair order
// and omits pairs without usable flows.
func (p *Pipeline) buildMatrices(ctx context.Context, rc RunContext, src Source) (RunContext, error) {
	log := p.logger().With("run", rc.ID)
	est := p.estimator(rc.Config)

	if rc.Config.Mode == ModeSingle {
		T, err := estimateYear(est, src, rc.StartYear, rc.Locations)
		if err != nil {
			log.Warn("matrix_skipped", "year", rc.StartYear, "err", err)
			return rc, nil
		}
		rc.Matrices = []*markov.Transition{T}
		return rc, nil
	}

	out := make([]*markov.Transition, len(rc.Pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency())
	for i, pair := range rc.Pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			T, err := estimateYear(est, src, pair.From, rc.Locations)
			if err != nil {
				log.Warn("matrix_skipped", "pair", pair, "err", err)
				return nil
			}
			out[i] = T
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rc, err
	}

	rc.Matrices = make([]*markov.Transition, 0, len(out))
	for _, T := range out {
		if T != nil {
			rc.Matrices = append(rc.Matrices, T)
		}
	}

	return rc, nil
}

// average merges the training matrices, falling back to the start year's own
// flows when no pair produced one.
func (p *Pipeline) average(_ context.Context, rc RunContext, src Source) (RunContext, error) {
	T, err := markov.Average(rc.Matrices)
	if errors.Is(err, markov.ErrNoTransitions) {
		p.logger().Info("average_fallback", "run", rc.ID, "year", rc.StartYear)
		T, err = estimateYear(p.estimator(rc.Config), src, rc.StartYear, rc.Locations)
	}
	if err != nil {
		return rc, fmt.Errorf("%w: %w", ErrDegenerateMatrix, err)
	}
	rc.Transition = T

	return rc, nil
}

// sample computes the deterministic trajectory and the ensemble.
func (p *Pipeline) sample(ctx context.Context, rc RunContext, _ Source) (RunContext, error) {
	steps := rc.Config.TargetYear - rc.StartYear
	rc.Point = markov.PropagateN(rc.Initial, rc.Transition, steps)

	out, err := p.sampler(rc.ID).Run(ctx, ensemble.Params{
		Transition:   rc.Transition,
		Initial:      rc.Initial,
		StartYear:    rc.StartYear,
		Steps:        steps,
		EnsembleSize: rc.Config.EnsembleSize,
		Seed:         rc.Config.Seed,
		HasSeed:      rc.Config.HasSeed,
	})
	if err != nil {
		return rc, err
	}
	rc.Ensemble = out

	return rc, nil
}

// score evaluates every forecast step whose year has observed data.
func (p *Pipeline) score(_ context.Context, rc RunContext, src Source) (RunContext, error) {
	rc.Metrics = metrics.Evaluate(Points(rc.Ensemble, rc.Locations), src.Observed)

	return rc, nil
}

// Points flattens ensemble steps after the start into scoring points.
func Points(steps []ensemble.Step, locations []string) []metrics.Point {
	var out []metrics.Point
	for _, s := range steps {
		if s.Step == 0 {
			continue
		}
		for _, loc := range locations {
			out = append(out, metrics.Point{
				Year:     s.Year,
				Location: loc,
				Mean:     s.Mean[loc],
				Lower:    s.Lower[loc],
				Upper:    s.Upper[loc],
			})
		}
	}

	return out
}

func estimateYear(est markov.Estimator, src Source, year int, locs []string) (*markov.Transition, error) {
	flows, ok := src.Flows(year)
	if !ok {
		return nil, fmt.Errorf("no flows for %d", year)
	}

	return est.Estimate(year, flows, locs)
}

func (p *Pipeline) estimator(cfg Config) markov.Estimator {
	f := p.Features
	if f == nil {
		f = geo.DefaultTable()
	}

	return markov.Estimator{Features: f, Alpha: cfg.Alpha, Beta: cfg.Beta}
}

func (p *Pipeline) sampler(runID string) ensemble.Sampler {
	if p.Sampler != nil {
		return p.Sampler
	}

	return ensemble.WithFallback(
		ensemble.OffloadedSampler{Timeout: p.OffloadTimeout},
		ensemble.LocalSampler{},
		func(err error) {
			p.Telemetry.fallback()
			p.logger().Warn("sampler_fallback", "run", runID, "err", err)
		},
	)
}

func (p *Pipeline) concurrency() int {
	if p.Concurrency > 0 {
		return p.Concurrency
	}

	return runtime.GOMAXPROCS(0)
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}

	return logger.Discard()
}
