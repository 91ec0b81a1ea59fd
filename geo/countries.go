// SPDX-License-Identifier: MIT

package geo

import "sync"

// Country centroids (degrees).
var countryCoordinates = []Location{
	{Name: "Austria", Lat: 47.5162, Lon: 14.5501},
	{Name: "Belgium", Lat: 50.5039, Lon: 4.4699},
	{Name: "Czech Republic", Lat: 49.8175, Lon: 15.4730},
	{Name: "Denmark", Lat: 56.2639, Lon: 9.5018},
	{Name: "France", Lat: 46.2276, Lon: 2.2137},
	{Name: "Germany", Lat: 51.1657, Lon: 10.4515},
	{Name: "Italy", Lat: 41.8719, Lon: 12.5674},
	{Name: "Netherlands", Lat: 52.1326, Lon: 5.2913},
	{Name: "Norway", Lat: 60.4720, Lon: 8.4689},
	{Name: "Poland", Lat: 51.9194, Lon: 19.1451},
	{Name: "Portugal", Lat: 39.3999, Lon: -8.2245},
	{Name: "Spain", Lat: 40.4637, Lon: -3.7492},
	{Name: "Sweden", Lat: 60.1282, Lon: 18.6435},
	{Name: "Switzerland", Lat: 46.8182, Lon: 8.2275},
	{Name: "United Kingdom", Lat: 55.3781, Lon: -3.4360},
}

// Hand-curated land borders plus the fixed links (Channel Tunnel, Øresund).
var countryNeighbors = map[string][]string{
	"Austria":        {"Czech Republic", "Germany", "Italy", "Switzerland"},
	"Belgium":        {"France", "Germany", "Netherlands"},
	"Czech Republic": {"Austria", "Germany", "Poland"},
	"Denmark":        {"Germany", "Sweden"},
	"France":         {"Belgium", "Germany", "Italy", "Spain", "Switzerland", "United Kingdom"},
	"Germany":        {"Austria", "Belgium", "Czech Republic", "Denmark", "France", "Netherlands", "Poland", "Switzerland"},
	"Italy":          {"Austria", "France", "Switzerland"},
	"Netherlands":    {"Belgium", "Germany"},
	"Norway":         {"Sweden"},
	"Poland":         {"Czech Republic", "Germany"},
	"Portugal":       {"Spain"},
	"Spain":          {"France", "Portugal"},
	"Sweden":         {"Denmark", "Norway"},
	"Switzerland":    {"Austria", "France", "Germany", "Italy"},
	"United Kingdom": {"France"},
}

// DefaultTable returns the process-wide country table. Built once; the
// result is immutable and shared.
var DefaultTable = sync.OnceValue(func() *Table {
	t, err := NewTable(countryCoordinates, countryNeighbors)
	if err != nil {
		panic("geo: built-in country table is invalid: " + err.Error())
	}

	return t
})
