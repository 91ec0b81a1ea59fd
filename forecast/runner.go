// SPDX-License-Identifier: MIT

package forecast

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// TransitionFunc observes a state change of the current run.
type TransitionFunc func(runID string, from, to State)

// Runner owns the single "current run" slot.
//
// Starting a run cancels the one in flight; only the newest run may publish.
// A failed run never replaces the last successful Result. All methods are
// safe for concurrent use.
type Runner struct {
	pipeline     *Pipeline
	onTransition TransitionFunc

	// hookMu orders hook calls; it is taken before mu and held across notify.
	hookMu sync.Mutex

	mu      sync.Mutex
	seq     uint64
	runID   string
	state   State
	lastErr error
	last    *Result
	cancel  context.CancelFunc
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTransitionHook registers fn to observe state changes of current runs.
// Calls are serialized and arrive in state order: once a run's Idle event is
// delivered, no event of an earlier run follows. fn may call the Runner's
// accessors but must not call Run.
func WithTransitionHook(fn TransitionFunc) RunnerOption {
	return func(r *Runner) { r.onTransition = fn }
}

// NewRunner returns an idle Runner over p; a nil p means the zero Pipeline.
func NewRunner(p *Pipeline, opts ...RunnerOption) *Runner {
	if p == nil {
		p = &Pipeline{}
	}
	r := &Runner{pipeline: p, state: Idle}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes cfg against src as the new current run.
//
// Errors:
//   - ErrSuperseded if another Run started before this one finished.
//   - the pipeline's error otherwise; the slot moves to Failed.
func (r *Runner) Run(ctx context.Context, cfg Config, src Source) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	id := uuid.NewString()

	r.hookMu.Lock()
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.seq++
	seq := r.seq
	r.runID = id
	r.cancel = cancel
	r.lastErr = nil
	prev := r.state
	r.state = Idle
	r.mu.Unlock()
	r.notify(id, prev, Idle)
	r.hookMu.Unlock()

	res, err := r.pipeline.run(ctx, id, cfg, src, func(s State) { r.transition(seq, id, s) })

	r.hookMu.Lock()
	r.mu.Lock()
	if seq != r.seq {
		r.mu.Unlock()
		r.hookMu.Unlock()
		r.pipeline.Telemetry.run(OutcomeSuperseded)
		return nil, fmt.Errorf("run %s: %w", id, ErrSuperseded)
	}
	r.cancel = nil
	prev = r.state
	if err != nil {
		r.state = Failed
		r.lastErr = err
	} else {
		r.state = Done
		r.last = res
	}
	next := r.state
	r.mu.Unlock()
	r.notify(id, prev, next)
	r.hookMu.Unlock()

	if err != nil {
		r.pipeline.Telemetry.run(OutcomeFailed)
		return nil, err
	}
	r.pipeline.Telemetry.run(OutcomeDone)

	return res, nil
}

// Cancel aborts the run in flight, if any. The run ends Failed with
// context.Canceled.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

// State returns the state of the current run and its error when Failed.
func (r *Runner) State() (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state, r.lastErr
}

// RunID returns the ID of the current run, "" before the first run.
func (r *Runner) RunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.runID
}

// Last returns the most recent successful Result, or nil.
func (r *Runner) Last() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.last
}

// transition moves the slot to s if run seq is still current.
func (r *Runner) transition(seq uint64, id string, s State) {
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	r.mu.Lock()
	if seq != r.seq {
		r.mu.Unlock()
		return
	}
	prev := r.state
	r.state = s
	r.mu.Unlock()
	r.notify(id, prev, s)
}

func (r *Runner) notify(id string, from, to State) {
	if r.onTransition != nil {
		r.onTransition(id, from, to)
	}
}
