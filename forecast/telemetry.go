// SPDX-License-Identifier: MIT

package forecast

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes recorded by Telemetry.Runs.
const (
	OutcomeDone       = "done"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
)

// Telemetry holds the Prometheus collectors of model runs. A nil *Telemetry
// records nothing.
type Telemetry struct {
	Runs             *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	SamplerFallbacks prometheus.Counter
}

// NewTelemetry creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewTelemetry(reg prometheus.Registerer) (*Telemetry, error) {
	t := &Telemetry{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "popflow_runs_total",
			Help: "Model runs by outcome",
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "popflow_stage_duration_seconds",
			Help:    "Duration of each model-run stage",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
		}, []string{"stage"}),
		SamplerFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "popflow_sampler_fallbacks_total",
			Help: "Ensemble runs that fell back to the synchronous sampler",
		}),
	}
	if reg == nil {
		return t, nil
	}
	for _, c := range []prometheus.Collector{t.Runs, t.StageDuration, t.SamplerFallbacks} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Telemetry) run(outcome string) {
	if t == nil {
		return
	}
	t.Runs.WithLabelValues(outcome).Inc()
}

func (t *Telemetry) stage(s State, d time.Duration) {
	if t == nil {
		return
	}
	t.StageDuration.WithLabelValues(s.String()).Observe(d.Seconds())
}

func (t *Telemetry) fallback() {
	if t == nil {
		return
	}
	t.SamplerFallbacks.Inc()
}
