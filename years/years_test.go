package years_test

import (
	"fmt"
	"testing"

	"github.com/katalvlaran/popflow/years"
	"github.com/stretchr/testify/require"
)

func TestExpandAndPairs(t *testing.T) {
	expanded := years.Expand([]int{2005, 2010}, span(2000, 2020))
	require.Equal(t, []int{2004, 2005, 2006, 2009, 2010, 2011}, expanded)

	require.Equal(t, []years.Pair{
		{From: 2004, To: 2005},
		{From: 2005, To: 2006},
		{From: 2009, To: 2010},
		{From: 2010, To: 2011},
	}, years.Pairs(expanded))
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name      string
		selected  []int
		available []int
		want      []int
	}{
		{"edge of data", []int{2000}, span(2000, 2003), []int{2000, 2001}},
		{"neighbours overlap", []int{2001, 2002}, span(2000, 2003), []int{2000, 2001, 2002, 2003}},
		{"no neighbours", []int{2010}, []int{2000, 2020}, []int{2010}},
		{"unsorted selection", []int{2012, 2008}, span(2007, 2013), []int{2007, 2008, 2009, 2011, 2012, 2013}},
		{"empty selection", nil, span(2000, 2001), []int{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, years.Expand(tc.selected, tc.available))
		})
	}
}

func TestPairsSkipsGaps(t *testing.T) {
	require.Equal(t, []years.Pair{{From: 2001, To: 2002}}, years.Pairs([]int{1999, 2001, 2002, 2004}))
	require.Nil(t, years.Pairs([]int{2000}))
	require.Nil(t, years.Pairs(nil))
}

func ExamplePairs() {
	expanded := years.Expand([]int{2015}, span(2010, 2020))
	fmt.Println(expanded, years.Pairs(expanded))
	// Output:
	// [2014 2015 2016] [{2014 2015} {2015 2016}]
}
