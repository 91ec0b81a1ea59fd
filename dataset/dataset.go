// SPDX-License-Identifier: MIT

// Package dataset holds per-year migration observations and adapts them to
// the inputs the Markov model consumes (flow data, stock vectors, observed
// values for scoring).
//
// A Dataset is immutable once built; all accessors return copies.
package dataset

import (
	"math"
	"sort"

	"github.com/katalvlaran/popflow/markov"
)

// Observation is one country's figures for a year. Numbers are already
// sanitised: never negative, NaN or infinite.
type Observation struct {
	Country string  `json:"country"`
	Stock   float64 `json:"stock"`
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
}

// YearRecord groups the observations of one year.
type YearRecord struct {
	Year         int           `json:"year"`
	Observations []Observation `json:"observations"`
}

// Dataset is an immutable year → observations index.
type Dataset struct {
	years   []int
	records map[int]map[string]Observation
}

// New indexes records. Several records for the same year are merged; when a
// country appears twice in one year the later observation wins. Observations
// without a country name are dropped.
func New(records []YearRecord) *Dataset {
	d := &Dataset{records: make(map[int]map[string]Observation, len(records))}
	for _, rec := range records {
		byCountry, ok := d.records[rec.Year]
		if !ok {
			byCountry = make(map[string]Observation, len(rec.Observations))
			d.records[rec.Year] = byCountry
			d.years = append(d.years, rec.Year)
		}
		for _, o := range rec.Observations {
			if o.Country == "" {
				continue
			}
			o.Stock, o.Inflow, o.Outflow = clean(o.Stock), clean(o.Inflow), clean(o.Outflow)
			byCountry[o.Country] = o
		}
	}
	sort.Ints(d.years)

	return d
}

// Years returns the available years ascending.
func (d *Dataset) Years() []int {
	return append([]int(nil), d.years...)
}

// Record returns the observations of year sorted by country.
func (d *Dataset) Record(year int) (YearRecord, bool) {
	byCountry, ok := d.records[year]
	if !ok {
		return YearRecord{}, false
	}
	rec := YearRecord{Year: year, Observations: make([]Observation, 0, len(byCountry))}
	for _, o := range byCountry {
		rec.Observations = append(rec.Observations, o)
	}
	sort.Slice(rec.Observations, func(i, j int) bool {
		return rec.Observations[i].Country < rec.Observations[j].Country
	})

	return rec, true
}

// Countries returns every country seen in any year, sorted.
func (d *Dataset) Countries() []string {
	seen := make(map[string]struct{})
	for _, byCountry := range d.records {
		for c := range byCountry {
			seen[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)

	return out
}

// Flows returns year's observations as model flow data.
func (d *Dataset) Flows(year int) (markov.FlowData, bool) {
	byCountry, ok := d.records[year]
	if !ok {
		return nil, false
	}
	out := make(markov.FlowData, len(byCountry))
	for c, o := range byCountry {
		out[c] = markov.Flow{Inflow: o.Inflow, Outflow: o.Outflow, Stock: o.Stock}
	}

	return out, true
}

// Stock returns year's stock per country.
func (d *Dataset) Stock(year int) (markov.Vector, bool) {
	byCountry, ok := d.records[year]
	if !ok {
		return nil, false
	}
	out := make(markov.Vector, len(byCountry))
	for c, o := range byCountry {
		out[c] = o.Stock
	}

	return out, true
}

// Observed reports the stock of country in year, for forecast scoring.
func (d *Dataset) Observed(year int, country string) (float64, bool) {
	o, ok := d.records[year][country]
	if !ok {
		return 0, false
	}

	return o.Stock, true
}

// clean maps negative, NaN and infinite figures to 0.
func clean(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}

	return v
}
