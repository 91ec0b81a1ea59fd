// SPDX-License-Identifier: MIT

// Package geo supplies the geography features of the transition model:
// great-circle distance between two locations and a binary border
// connectivity indicator, both served from an immutable lookup table.
//
// Lookups never fail. A location missing from the table is answered with
// DefaultDistanceKm and zero connectivity.
package geo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/golang/geo/s2"
)

const (
	// EarthRadiusKm is the mean Earth radius used for haversine distances.
	EarthRadiusKm = 6371.0

	// DefaultDistanceKm is returned for pairs involving an unknown location.
	DefaultDistanceKm = 3000.0
)

var (
	// ErrDuplicateLocation is returned when a table lists the same name twice.
	ErrDuplicateLocation = errors.New("geo: duplicate location")

	// ErrInvalidCoordinate is returned for latitudes outside [-90,90] or
	// longitudes outside [-180,180].
	ErrInvalidCoordinate = errors.New("geo: invalid coordinate")

	// ErrUnknownLocation is returned when an adjacency entry names a location
	// that is not in the coordinate table.
	ErrUnknownLocation = errors.New("geo: unknown location")
)

// Features is what the transition estimator needs from geography.
type Features interface {
	// Distance returns the great-circle distance between a and b in km.
	Distance(a, b string) float64
	// Connectivity returns 1 if b is a listed neighbor of a, else 0.
	Connectivity(a, b string) float64
}

// Location is a named point on the globe.
type Location struct {
	Name string
	Lat  float64 // degrees
	Lon  float64 // degrees
}

// Table is an immutable coordinate + adjacency lookup. Safe for concurrent use.
type Table struct {
	byName    map[string]Location
	neighbors map[string]map[string]struct{}
	names     []string // sorted
}

var _ Features = (*Table)(nil)

// NewTable validates locs and neighbors and builds a Table.
// Adjacency is taken as given: listing b under a does not imply a under b.
func NewTable(locs []Location, neighbors map[string][]string) (*Table, error) {
	t := &Table{
		byName:    make(map[string]Location, len(locs)),
		neighbors: make(map[string]map[string]struct{}, len(neighbors)),
		names:     make([]string, 0, len(locs)),
	}
	for _, l := range locs {
		if _, dup := t.byName[l.Name]; dup {
			return nil, fmt.Errorf("%q: %w", l.Name, ErrDuplicateLocation)
		}
		if l.Lat < -90 || l.Lat > 90 || l.Lon < -180 || l.Lon > 180 {
			return nil, fmt.Errorf("%q (%g,%g): %w", l.Name, l.Lat, l.Lon, ErrInvalidCoordinate)
		}
		t.byName[l.Name] = l
		t.names = append(t.names, l.Name)
	}
	sort.Strings(t.names)

	for from, tos := range neighbors {
		if _, ok := t.byName[from]; !ok {
			return nil, fmt.Errorf("adjacency origin %q: %w", from, ErrUnknownLocation)
		}
		set := make(map[string]struct{}, len(tos))
		for _, to := range tos {
			if _, ok := t.byName[to]; !ok {
				return nil, fmt.Errorf("adjacency %q -> %q: %w", from, to, ErrUnknownLocation)
			}
			set[to] = struct{}{}
		}
		t.neighbors[from] = set
	}

	return t, nil
}

// Lookup returns the location registered under name.
func (t *Table) Lookup(name string) (Location, bool) {
	l, ok := t.byName[name]
	return l, ok
}

// Locations returns the registered names in ascending order (a fresh slice).
func (t *Table) Locations() []string {
	return append([]string(nil), t.names...)
}

// Neighbors returns the sorted neighbor list of name (nil when none).
func (t *Table) Neighbors(name string) []string {
	set := t.neighbors[name]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)

	return out
}

// Distance returns the haversine distance between a and b in kilometres.
// Distance(a, a) is 0 for any name; unknown locations yield DefaultDistanceKm.
func (t *Table) Distance(a, b string) float64 {
	if a == b {
		return 0
	}
	la, okA := t.byName[a]
	lb, okB := t.byName[b]
	if !okA || !okB {
		return DefaultDistanceKm
	}

	return Haversine(la, lb)
}

// Connectivity returns 1.0 if b is in a's neighbor set, else 0.0.
func (t *Table) Connectivity(a, b string) float64 {
	if _, ok := t.neighbors[a][b]; ok {
		return 1
	}

	return 0
}

// Haversine returns the great-circle distance between a and b in kilometres
// on a sphere of radius EarthRadiusKm.
func Haversine(a, b Location) float64 {
	pa := s2.LatLngFromDegrees(a.Lat, a.Lon)
	pb := s2.LatLngFromDegrees(b.Lat, b.Lon)

	return pa.Distance(pb).Radians() * EarthRadiusKm
}
