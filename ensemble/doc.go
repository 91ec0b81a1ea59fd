// SPDX-License-Identifier: MIT

// Package ensemble quantifies forecast uncertainty by sampling perturbed
// variants of a transition matrix and propagating each of them.
//
// Pipeline per step s = 1..Steps:
//
//	for every member:  perturb each row (fresh draws) → propagate mean(s−1)
//	reduce members:    mean, 2.5th and 97.5th percentile per location
//	mean(s) becomes the base of step s+1
//
// Randomness comes from a Source. A seeded run uses the LCG below, so equal
// seed, matrix, ensemble size and step count reproduce bit-identical output:
//
//	seed  = fold(state*31 + utf16 code unit) mod 2^32   (0 → 1)
//	state = 1664525·state + 1013904223 mod 2^32,  draw = state / 2^32
//
// Row perturbation is "Dirichlet-like": shape alpha_k = max(1e-6, 100·p_k),
// g_k = −ln(u)·alpha_k, then g/Σg. Scaling an Exp(1) draw by alpha is a cheap
// stand-in for a Gamma(alpha, 1) draw, not an exact Dirichlet sampler; the
// forecast's credible intervals are defined by this approximation.
//
// Execution is behind the Sampler interface: LocalSampler runs on the calling
// goroutine, OffloadedSampler on a worker goroutine over a value snapshot, and
// WithFallback composes the two.
package ensemble
