// SPDX-License-Identifier: MIT

package ensemble

import (
	"math/rand/v2"
	"unicode/utf16"
)

// LCG constants (Numerical Recipes).
const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
	lcgModulus    = 1 << 32
	seedBase      = 31
)

// Source yields uniform draws in [0,1).
type Source interface {
	Float64() float64
}

// SeedFromString folds s into a 32-bit LCG state: state = state*31 + c over
// the UTF-16 code units of s, modulo 2^32. A zero result is forced to 1.
func SeedFromString(s string) uint32 {
	var state uint32
	for _, c := range utf16.Encode([]rune(s)) {
		state = state*seedBase + uint32(c) // uint32 wraps: mod 2^32
	}
	if state == 0 {
		state = 1
	}

	return state
}

// LCG is a 32-bit linear congruential generator. Not safe for concurrent use.
type LCG struct {
	state uint32
}

// NewLCG returns a generator starting from state.
func NewLCG(state uint32) *LCG {
	return &LCG{state: state}
}

// Float64 advances the state and returns state / 2^32.
func (g *LCG) Float64() float64 {
	g.state = lcgMultiplier*g.state + lcgIncrement

	return float64(g.state) / lcgModulus
}

// NewSource returns the run's random source: an LCG seeded from seed when
// hasSeed is true, otherwise an unseeded PCG generator.
func NewSource(seed string, hasSeed bool) Source {
	if hasSeed {
		return NewLCG(SeedFromString(seed))
	}

	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
