package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/covid-map-service/internal/adapter/geojson"
	httpadapter "github.com/couchcryptid/covid-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/covid-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/covid-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/covid-map-service/internal/adapter/timeseries"
	"github.com/couchcryptid/covid-map-service/internal/config"
	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/couchcryptid/covid-map-service/internal/observability"
	"github.com/couchcryptid/covid-map-service/internal/pipeline"
	"github.com/couchcryptid/covid-map-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Geocoding fallback for countries missing from the coordinate file
	// (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	memStore := store.NewMemoryStore()
	sinks := []pipeline.MarkerSink{memStore}

	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		sinks = append(sinks, publisher)
		logger.Info("kafka marker publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaMarkerTopic)
	}

	p := pipeline.New(
		timeseries.NewClient(cfg.DatasetURL, cfg.FetchTimeout, logger),
		geojson.NewSource(cfg.CoordsPath, cfg.FetchTimeout, logger),
		sinks,
		logger,
		metrics,
		pipeline.Options{
			LookbackDays: cfg.LookbackDays,
			DataLagDays:  cfg.DataLagDays,
			Interval:     cfg.RefreshInterval,
			Geocoder:     geocoder,
		},
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, memStore, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
