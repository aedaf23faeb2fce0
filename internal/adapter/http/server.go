package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/covid-map-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// noDataMessage is shown for countries without a dataset entry.
const noDataMessage = "No data available"

// MarkerReader serves the most recent refresh result.
type MarkerReader interface {
	Markers() []domain.Marker
	Country(name string) (domain.CountryStats, error)
}

// Server exposes the marker API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	markers    MarkerReader
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api routes.
func NewServer(addr string, markers MarkerReader, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		markers: markers,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/markers", s.handleMarkers)
	mux.HandleFunc("GET /api/countries/{name}", s.handleCountry)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleMarkers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.markers.Markers())
}

// countryResponse is the popup payload for one country.
type countryResponse struct {
	Stats     domain.CountryStats    `json:"stats"`
	Counts    domain.FormattedCounts `json:"counts"`
	Summary   string                 `json:"summary"`
	AnchorLon *float64               `json:"anchor_lon,omitempty"`
	AnchorLat *float64               `json:"anchor_lat,omitempty"`
}

func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	stats, err := s.markers.Country(name)
	if errors.Is(err, domain.ErrCountryNotFound) {
		s.logger.Debug("country has no data", "country", name)
		writeJSON(w, http.StatusNotFound, map[string]string{"message": noDataMessage})
		return
	}
	if err != nil {
		s.logger.Error("country lookup failed", "country", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	resp := countryResponse{
		Stats:   stats,
		Counts:  stats.Counts(),
		Summary: stats.Summary(),
	}

	// With cursor_lon the anchor is moved onto the world copy under the cursor.
	if raw := r.URL.Query().Get("cursor_lon"); raw != "" {
		cursor, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid cursor_lon"})
			return
		}
		if m, ok := s.findMarker(name); ok {
			lon := domain.WrapLongitude(m.Lon, cursor)
			lat := m.Lat
			resp.AnchorLon, resp.AnchorLat = &lon, &lat
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) findMarker(country string) (domain.Marker, bool) {
	for _, m := range s.markers.Markers() {
		if m.Country == country {
			return m, true
		}
	}
	return domain.Marker{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
