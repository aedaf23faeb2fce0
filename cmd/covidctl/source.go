package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/couchcryptid/covid-map-service/internal/adapter/geojson"
	"github.com/couchcryptid/covid-map-service/internal/adapter/timeseries"
	"github.com/couchcryptid/covid-map-service/internal/domain"
)

func loadDataset(path string) (domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.FetchError{Source: path, Err: err}
	}
	defer f.Close()
	return timeseries.Decode(path, f)
}

func loadLocations(ctx context.Context, path string) ([]domain.CountryLocation, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return geojson.NewSource(path, 10*time.Second, logger).FetchLocations(ctx)
}

// referenceTime resolves --date, defaulting to yesterday like the service.
func referenceTime(date string, now time.Time) (time.Time, error) {
	if date == "" {
		return now.AddDate(0, 0, -1), nil
	}
	day, ok := domain.ParseDay(date)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid --date %q: want YYYY-M-D", date)
	}
	return day.Time(), nil
}

func swatch(c domain.Color) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(c.String())).Render("  ")
}
