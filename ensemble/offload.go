// SPDX-License-Identifier: MIT

package ensemble

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// WorkFunc is the computation an OffloadedSampler ships to its worker.
type WorkFunc func(ctx context.Context, p Params) ([]Step, error)

// OffloadedSampler runs the ensemble on a separate goroutine.
//
// The worker receives a deep snapshot of Params and hands back a value
// result over a channel. When the caller stops waiting (context cancelled or
// Timeout elapsed) the worker is cancelled and its result discarded.
type OffloadedSampler struct {
	// Timeout bounds the wait for the worker; zero means no timeout.
	Timeout time.Duration

	// Work overrides the computation; nil runs the standard algorithm.
	Work WorkFunc
}

var _ Sampler = OffloadedSampler{}

type workResult struct {
	steps []Step
	err   error
}

// Run validates p, starts the worker and waits for its answer.
//
// Errors:
//   - ErrInvalidParams from validation.
//   - ErrWorkerFailed if the worker panicked.
//   - ErrWorkerTimeout if Timeout elapsed first.
//   - ctx.Err() if the caller's context ended first.
func (s OffloadedSampler) Run(ctx context.Context, p Params) ([]Step, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	snap := p.snapshot()
	work := s.Work
	if work == nil {
		work = func(ctx context.Context, p Params) ([]Step, error) {
			return run(ctx, p, NewSource(p.Seed, p.HasSeed))
		}
	}

	var (
		wctx   context.Context
		cancel context.CancelFunc
	)
	if s.Timeout > 0 {
		wctx, cancel = context.WithTimeout(ctx, s.Timeout)
	} else {
		wctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan workResult, 1) // buffered: an abandoned worker never blocks
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- workResult{err: fmt.Errorf("%w: %v", ErrWorkerFailed, r)}
			}
		}()
		steps, err := work(wctx, snap)
		done <- workResult{steps: steps, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, s.classify(ctx, r.err)
		}
		return r.steps, nil
	case <-wctx.Done():
		return nil, s.classify(ctx, wctx.Err())
	}
}

// classify maps a worker-side deadline to ErrWorkerTimeout unless the
// caller's own context ended.
func (s OffloadedSampler) classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrWorkerTimeout, s.Timeout)
	}

	return err
}

// fallbackSampler reruns on a second Sampler when the first one fails.
type fallbackSampler struct {
	primary    Sampler
	fallback   Sampler
	onFallback func(error)
}

// WithFallback returns a Sampler that tries primary and, if it fails for any
// reason other than invalid parameters or the caller's cancellation, runs
// fallback with the same parameters. onFallback (may be nil) observes the
// primary's error.
func WithFallback(primary, fallback Sampler, onFallback func(error)) Sampler {
	return fallbackSampler{primary: primary, fallback: fallback, onFallback: onFallback}
}

func (f fallbackSampler) Run(ctx context.Context, p Params) ([]Step, error) {
	steps, err := f.primary.Run(ctx, p)
	if err == nil {
		return steps, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(err, ErrInvalidParams) {
		return nil, err
	}
	if f.onFallback != nil {
		f.onFallback(err)
	}

	return f.fallback.Run(ctx, p)
}
