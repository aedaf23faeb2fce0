// Package geojson loads country marker coordinates from a GeoJSON
// FeatureCollection of points.
package geojson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/covid-map-service/internal/domain"
)

// countryProperty holds the country name in each feature's properties.
const countryProperty = "sr_subunit"

// Source reads coordinates from a local file or an http(s) URL.
type Source struct {
	location   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSource creates a coordinate source. location is a file path or URL.
func NewSource(location string, timeout time.Duration, logger *slog.Logger) *Source {
	return &Source{
		location:   location,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchLocations returns one location per usable feature. Features without a
// country name or a [lon, lat] point are skipped.
func (s *Source) FetchLocations(ctx context.Context) ([]domain.CountryLocation, error) {
	body, err := s.open(ctx)
	if err != nil {
		return nil, &domain.FetchError{Source: s.location, Err: err}
	}
	defer body.Close()

	locations, skipped, err := Decode(body)
	if err != nil {
		return nil, &domain.ParseError{Source: s.location, Err: err}
	}
	if skipped > 0 {
		s.logger.Warn("skipped unusable coordinate features", "source", s.location, "skipped", skipped)
	}
	return locations, nil
}

func (s *Source) open(ctx context.Context) (io.ReadCloser, error) {
	if !strings.HasPrefix(s.location, "http://") && !strings.HasPrefix(s.location, "https://") {
		return os.Open(s.location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Properties map[string]any `json:"properties"`
	Geometry   struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
}

// Decode parses a FeatureCollection and reports how many features were skipped.
func Decode(r io.Reader) ([]domain.CountryLocation, int, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, 0, fmt.Errorf("decode feature collection: %w", err)
	}
	if fc.Type != "" && fc.Type != "FeatureCollection" {
		return nil, 0, fmt.Errorf("unexpected GeoJSON type %q", fc.Type)
	}

	locations := make([]domain.CountryLocation, 0, len(fc.Features))
	skipped := 0
	for _, f := range fc.Features {
		name, _ := f.Properties[countryProperty].(string)
		coords := f.Geometry.Coordinates
		if name == "" || len(coords) < 2 {
			skipped++
			continue
		}
		locations = append(locations, domain.CountryLocation{Name: name, Lon: coords[0], Lat: coords[1]})
	}
	return locations, skipped, nil
}
