// SPDX-License-Identifier: MIT

// Package years turns a sparse selection of training years into the list of
// consecutive year pairs a transition matrix can be estimated from.
//
// Expand grows each selected year by its immediate neighbours when data exists
// for them; Pairs then emits (y, y+1) for every one-year gap in the result.
// Non-consecutive neighbours are skipped, never bridged.
package years

import "sort"

// Pair is a consecutive training transition: flows of From predict To.
type Pair struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Expand returns selected ∪ {y−1, y+1 : y ∈ selected, neighbour ∈ available},
// sorted ascending without duplicates.
//
// Complexity: O((s + a) log(s + a)).
func Expand(selected, available []int) []int {
	avail := make(map[int]struct{}, len(available))
	for _, y := range available {
		avail[y] = struct{}{}
	}

	seen := make(map[int]struct{}, 3*len(selected))
	out := make([]int, 0, 3*len(selected))
	add := func(y int) {
		if _, dup := seen[y]; dup {
			return
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	for _, y := range selected {
		add(y)
		if _, ok := avail[y-1]; ok {
			add(y - 1)
		}
		if _, ok := avail[y+1]; ok {
			add(y + 1)
		}
	}
	sort.Ints(out)

	return out
}

// Pairs scans a sorted year list and emits (y, y+1) for each adjacent pair
// exactly one year apart.
func Pairs(expanded []int) []Pair {
	var out []Pair
	for i := 1; i < len(expanded); i++ {
		if expanded[i]-expanded[i-1] == 1 {
			out = append(out, Pair{From: expanded[i-1], To: expanded[i]})
		}
	}

	return out
}
