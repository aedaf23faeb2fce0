package domain

import (
	"context"
	"log/slog"
)

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Found reports whether the provider returned a usable place.
func (r GeocodingResult) Found() bool {
	return r.FormattedAddress != "" && (r.Lat != 0 || r.Lon != 0)
}

// Geocoder resolves country names to coordinates.
type Geocoder interface {
	GeocodeCountry(ctx context.Context, name string) (GeocodingResult, error)
}

// ResolveLocations appends a geocoded location for every dataset country that
// the coordinate source does not cover. The input slice is not modified. With
// a nil geocoder the locations are returned unchanged; lookup failures are
// logged and the country is left without a marker.
func ResolveLocations(ctx context.Context, dataset Dataset, locations []CountryLocation, geocoder Geocoder, logger *slog.Logger) []CountryLocation {
	resolved := make([]CountryLocation, len(locations), len(locations)+len(dataset))
	copy(resolved, locations)
	if geocoder == nil {
		return resolved
	}

	known := make(map[string]struct{}, len(locations))
	for _, loc := range locations {
		known[loc.Name] = struct{}{}
	}

	for _, country := range dataset.Countries() {
		if _, ok := known[country]; ok {
			continue
		}
		if ctx.Err() != nil {
			return resolved
		}

		result, err := geocoder.GeocodeCountry(ctx, country)
		if err != nil {
			logger.Warn("country geocoding failed", "country", country, "error", err)
			continue
		}
		if !result.Found() {
			logger.Debug("country geocoding returned no place", "country", country)
			continue
		}
		resolved = append(resolved, CountryLocation{Name: country, Lon: result.Lon, Lat: result.Lat})
	}
	return resolved
}
