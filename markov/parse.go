// SPDX-License-Identifier: MIT

package markov

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber reads a free-text figure defensively.
// Surrounding whitespace, thousands separators (',', '_', ' ', U+00A0) and
// a trailing '%' are ignored. Anything unparsable, negative, NaN or infinite
// yields 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', '_', ' ', '\u00a0':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}

	return v
}
