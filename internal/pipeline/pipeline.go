package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/couchcryptid/covid-map-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// DatasetSource fetches the per-country time series.
type DatasetSource interface {
	FetchDataset(ctx context.Context) (domain.Dataset, error)
}

// LocationSource fetches the marker coordinates.
type LocationSource interface {
	FetchLocations(ctx context.Context) ([]domain.CountryLocation, error)
}

// MarkerSink receives every successfully built snapshot.
type MarkerSink interface {
	LoadMarkers(ctx context.Context, snap domain.Snapshot) error
}

// Options tunes a Pipeline. Zero values fall back to defaults.
type Options struct {
	LookbackDays int
	DataLagDays  int
	Interval     time.Duration
	// Geocoder locates dataset countries missing from the coordinate source.
	// Nil disables the fallback.
	Geocoder domain.Geocoder
	Clock    clockwork.Clock
}

// Pipeline orchestrates the fetch-build-publish refresh loop.
type Pipeline struct {
	dataset   DatasetSource
	locations LocationSource
	sinks     []MarkerSink
	geocoder  domain.Geocoder
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool

	lookback int
	lag      int
	interval time.Duration
}

// New creates a Pipeline with the given sources, sinks and observability.
func New(dataset DatasetSource, locations LocationSource, sinks []MarkerSink, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = domain.DefaultLookbackDays
	}
	if opts.DataLagDays < 0 {
		opts.DataLagDays = 0
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		dataset:   dataset,
		locations: locations,
		sinks:     sinks,
		geocoder:  opts.Geocoder,
		clock:     opts.Clock,
		logger:    logger,
		metrics:   metrics,
		lookback:  opts.LookbackDays,
		lag:       opts.DataLagDays,
		interval:  opts.Interval,
	}
}

// CheckReadiness returns nil once a refresh has completed, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no refresh has completed yet")
	}
	return nil
}

// Run refreshes immediately and then every interval until the context is
// cancelled. Failed refreshes are retried with exponential backoff.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"interval", p.interval.String(),
		"lookback_days", p.lookback,
		"data_lag_days", p.lag,
		"sinks", len(p.sinks),
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for {
		wait := p.interval
		if err := p.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			p.logger.Error("refresh failed", "error", err, "retry_in", backoff.String())
			wait = backoff
			backoff = nextBackoff(backoff)
		} else {
			backoff = initialBackoff
		}

		if !p.sleep(ctx, wait) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// Refresh runs one fetch-build-publish cycle.
func (p *Pipeline) Refresh(ctx context.Context) error {
	start := p.clock.Now()

	dataset, locations, err := p.extract(ctx)
	if err != nil {
		p.metrics.RefreshFailures.WithLabelValues("extract").Inc()
		return err
	}

	snap := p.transform(ctx, dataset, locations)

	if err := p.load(ctx, snap); err != nil {
		p.metrics.RefreshFailures.WithLabelValues("load").Inc()
		return err
	}

	p.metrics.RefreshesTotal.Inc()
	p.metrics.RefreshDuration.Observe(p.clock.Since(start).Seconds())
	p.metrics.CountriesLoaded.Set(float64(len(dataset)))
	p.metrics.MarkersBuilt.Set(float64(len(snap.Markers)))
	p.metrics.MarkersWithoutData.Set(float64(snap.WithoutData()))
	p.ready.Store(true)

	p.logger.Info("refresh complete",
		"countries", len(dataset),
		"markers", len(snap.Markers),
		"reference_day", domain.DayOf(snap.Reference).String(),
	)
	return nil
}

// extract fetches the dataset and then the coordinates. Either failure aborts
// the cycle.
func (p *Pipeline) extract(ctx context.Context) (domain.Dataset, []domain.CountryLocation, error) {
	dataset, err := p.dataset.FetchDataset(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("extract dataset: %w", err)
	}
	locations, err := p.locations.FetchLocations(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("extract locations: %w", err)
	}
	return dataset, locations, nil
}

func (p *Pipeline) transform(ctx context.Context, dataset domain.Dataset, locations []domain.CountryLocation) domain.Snapshot {
	locations = domain.ResolveLocations(ctx, dataset, locations, p.geocoder, p.logger)
	ref := p.clock.Now().AddDate(0, 0, -p.lag)

	markers := domain.BuildMarkers(dataset, locations, ref, p.lookback)
	for _, m := range markers {
		if !m.HasData {
			p.logger.Warn("country has no data", "country", m.Country)
		}
	}

	return domain.Snapshot{
		Dataset:      dataset,
		Markers:      markers,
		Reference:    ref,
		LookbackDays: p.lookback,
	}
}

// load hands the snapshot to every sink. All sinks are attempted even when
// one fails.
func (p *Pipeline) load(ctx context.Context, snap domain.Snapshot) error {
	var errs []error
	for _, sink := range p.sinks {
		if err := sink.LoadMarkers(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("load markers: %w", errors.Join(errs...))
	}
	return nil
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-p.clock.After(d):
		return true
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
