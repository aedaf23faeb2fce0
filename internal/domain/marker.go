package domain

import (
	"sort"
	"time"
)

// Dataset holds every country's series keyed by country name.
type Dataset map[string]CountrySeries

// Lookup returns a country's series, or ErrCountryNotFound.
func (d Dataset) Lookup(country string) (CountrySeries, error) {
	series, ok := d[country]
	if !ok {
		return nil, ErrCountryNotFound
	}
	return series, nil
}

// Countries returns the dataset's country names in sorted order.
func (d Dataset) Countries() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CountryLocation places a country on the map. Coordinates are WGS-84.
type CountryLocation struct {
	Name string  `json:"name"`
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
}

// Marker is one country's map marker.
type Marker struct {
	Country string        `json:"country"`
	Lon     float64       `json:"lon"`
	Lat     float64       `json:"lat"`
	Color   Color         `json:"color"`
	HasData bool          `json:"has_data"`
	Stats   *CountryStats `json:"stats,omitempty"`
}

// BuildMarkers creates a marker for every location. Locations missing from the
// dataset get a NeutralGray marker with HasData false.
func BuildMarkers(dataset Dataset, locations []CountryLocation, ref time.Time, lookback int) []Marker {
	markers := make([]Marker, 0, len(locations))
	for _, loc := range locations {
		m := Marker{Country: loc.Name, Lon: loc.Lon, Lat: loc.Lat}

		series, err := dataset.Lookup(loc.Name)
		if err != nil {
			m.Color = SeverityColor(nil)
			markers = append(markers, m)
			continue
		}

		stats := BuildCountryStats(loc.Name, series, ref, lookback)
		m.Color = stats.Color
		m.HasData = true
		m.Stats = &stats
		markers = append(markers, m)
	}
	return markers
}

// WrapLongitude shifts lon by whole turns until it is within 180 degrees of
// cursorLon, so a popup opens on the copy of the world under the cursor.
func WrapLongitude(lon, cursorLon float64) float64 {
	for cursorLon-lon > 180 {
		lon += 360
	}
	for lon-cursorLon > 180 {
		lon -= 360
	}
	return lon
}

// Snapshot is the result of one refresh: the dataset, the markers built from
// it and the reference time the markers were computed for.
type Snapshot struct {
	Dataset      Dataset
	Markers      []Marker
	Reference    time.Time
	LookbackDays int
}

// WithoutData counts markers whose country is missing from the dataset.
func (s Snapshot) WithoutData() int {
	n := 0
	for _, m := range s.Markers {
		if !m.HasData {
			n++
		}
	}
	return n
}
