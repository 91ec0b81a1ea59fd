// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for numeric checks.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - Safe by construction: panic only on invalid parameters (programmer error).
//   - Options fields are unexported; public APIs consume ...Option.
package matrix

import (
	"fmt"
	"math"
)

// Numeric policy.
const (
	// DefaultEpsilon defines the non-negative tolerance used by structural checks
	// such as IsRowStochastic.
	DefaultEpsilon = 1e-9

	// DefaultValidateNaNInf toggles strict finite-value validation on Set/Apply.
	DefaultValidateNaNInf = true
)

// Options carries resolved settings for structural checks.
type Options struct {
	eps           float64 // tolerance for |rowSum-1|
	requireNonNeg bool    // reject negative entries
}

// Option mutates Options.
type Option func(*Options)

// defaultOptions returns the documented defaults.
func defaultOptions() Options {
	return Options{
		eps:           DefaultEpsilon,
		requireNonNeg: true,
	}
}

// gatherOptions applies opts over the defaults in order.
func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithEpsilon sets the tolerance used by IsRowStochastic.
// Panics if eps is negative, NaN or Inf (programmer error).
func WithEpsilon(eps float64) Option {
	if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
		panic(fmt.Sprintf("matrix: WithEpsilon(%v): epsilon must be finite and >= 0", eps))
	}

	return func(o *Options) { o.eps = eps }
}

// WithAllowNegative disables the non-negativity requirement of IsRowStochastic.
func WithAllowNegative() Option {
	return func(o *Options) { o.requireNonNeg = false }
}
