// SPDX-License-Identifier: MIT

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/popflow/markov"
)

var (
	// ErrMissingColumn indicates the header lacks a required column.
	ErrMissingColumn = errors.New("dataset: missing column")

	// ErrEmpty indicates the input has a header but no usable rows.
	ErrEmpty = errors.New("dataset: no usable rows")
)

// Accepted header spellings per column, compared case-insensitively.
var (
	yearHeaders    = []string{"year"}
	countryHeaders = []string{"country", "location"}
	stockHeaders   = []string{"stock", "foreign population"}
	inflowHeaders  = []string{"inflow", "inflows"}
	outflowHeaders = []string{"outflow", "outflows"}
)

type columns struct {
	year, country, stock, inflow, outflow int
}

// ReadCSV parses a header-led CSV of per-year country observations.
//
// Required columns: Year, Country and a stock column spelled either "Stock"
// or "Foreign Population". Inflow and Outflow are optional and read as 0 when
// absent. Column order is free.
//
// Numbers go through markov.ParseNumber, so thousands separators are accepted
// and malformed figures become 0. Rows whose year is not an integer or whose
// country is blank are skipped.
//
// Errors:
//   - ErrMissingColumn if a required header is absent.
//   - ErrEmpty if no row survives.
//   - csv parse errors, wrapped with the line number.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ReadCSV: header: %w", ErrEmpty)
		}
		return nil, fmt.Errorf("ReadCSV: header: %w", err)
	}
	cols, err := locate(header)
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: %w", err)
	}

	byYear := make(map[int]*YearRecord)
	var order []int
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadCSV: line %d: %w", line, err)
		}

		year, err := strconv.Atoi(strings.TrimSpace(field(row, cols.year)))
		if err != nil {
			continue
		}
		country := strings.TrimSpace(field(row, cols.country))
		if country == "" {
			continue
		}
		rec, ok := byYear[year]
		if !ok {
			rec = &YearRecord{Year: year}
			byYear[year] = rec
			order = append(order, year)
		}
		rec.Observations = append(rec.Observations, Observation{
			Country: country,
			Stock:   markov.ParseNumber(field(row, cols.stock)),
			Inflow:  markov.ParseNumber(field(row, cols.inflow)),
			Outflow: markov.ParseNumber(field(row, cols.outflow)),
		})
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("ReadCSV: %w", ErrEmpty)
	}

	records := make([]YearRecord, 0, len(order))
	for _, y := range order {
		records = append(records, *byYear[y])
	}

	return New(records), nil
}

// ReadFile opens path and parses it with ReadCSV.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// locate maps header names to column indices; optional columns get -1.
func locate(header []string) (columns, error) {
	find := func(names []string) int {
		for i, h := range header {
			h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
			for _, n := range names {
				if h == n {
					return i
				}
			}
		}
		return -1
	}

	c := columns{
		year:    find(yearHeaders),
		country: find(countryHeaders),
		stock:   find(stockHeaders),
		inflow:  find(inflowHeaders),
		outflow: find(outflowHeaders),
	}
	var missing []string
	if c.year < 0 {
		missing = append(missing, "Year")
	}
	if c.country < 0 {
		missing = append(missing, "Country")
	}
	if c.stock < 0 {
		missing = append(missing, "Stock|Foreign Population")
	}
	if len(missing) > 0 {
		return c, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return c, nil
}

// field returns row[i], or "" when i is out of range.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}

	return row[i]
}
