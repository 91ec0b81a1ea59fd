// SPDX-License-Identifier: MIT

package ensemble

import "errors"

var (
	// ErrInvalidParams is returned when sampling parameters are unusable
	// (nil transition, non-positive ensemble size, negative steps).
	ErrInvalidParams = errors.New("ensemble: invalid parameters")

	// ErrWorkerFailed is returned when the offloaded worker crashed.
	ErrWorkerFailed = errors.New("ensemble: worker failed")

	// ErrWorkerTimeout is returned when the offloaded worker did not answer
	// within its timeout.
	ErrWorkerTimeout = errors.New("ensemble: worker timed out")
)
