package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/couchcryptid/covid-map-service/internal/observability"
	"github.com/couchcryptid/covid-map-service/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockDatasetSource struct {
	dataset domain.Dataset
	// failures is the number of leading calls that return err.
	failures int64
	err      error
	calls    atomic.Int64
}

func (m *mockDatasetSource) FetchDataset(_ context.Context) (domain.Dataset, error) {
	n := m.calls.Add(1)
	if n <= m.failures {
		return nil, m.err
	}
	return m.dataset, nil
}

type mockLocationSource struct {
	locations []domain.CountryLocation
	err       error
}

func (m *mockLocationSource) FetchLocations(_ context.Context) ([]domain.CountryLocation, error) {
	return m.locations, m.err
}

type mockSink struct {
	mu    sync.Mutex
	snaps []domain.Snapshot
	err   error
}

func (m *mockSink) LoadMarkers(_ context.Context, snap domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	return m.err
}

func (m *mockSink) loaded() []domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Snapshot(nil), m.snaps...)
}

type mockGeocoder struct {
	results map[string]domain.GeocodingResult
}

func (m *mockGeocoder) GeocodeCountry(_ context.Context, name string) (domain.GeocodingResult, error) {
	return m.results[name], nil
}

// --- helpers ---

var now = time.Date(2020, time.February, 9, 10, 0, 0, 0, time.UTC)

func testDataset() domain.Dataset {
	return domain.Dataset{
		"Italy": {
			{Date: "2020-2-1", Confirmed: 7, Deaths: 1, Recovered: 1},
			{Date: "2020-2-8", Confirmed: 35, Deaths: 2, Recovered: 3},
		},
		"Chile": {
			{Date: "2020-2-8", Confirmed: 4},
		},
	}
}

func testLocations() []domain.CountryLocation {
	return []domain.CountryLocation{
		{Name: "Italy", Lon: 12.5, Lat: 41.9},
		{Name: "Atlantis", Lon: -30, Lat: 30},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPipeline(ds pipeline.DatasetSource, ls pipeline.LocationSource, sinks []pipeline.MarkerSink, metrics *observability.Metrics, clock clockwork.Clock) *pipeline.Pipeline {
	return pipeline.New(ds, ls, sinks, discardLogger(), metrics, pipeline.Options{
		LookbackDays: 7,
		DataLagDays:  1,
		Interval:     time.Hour,
		Clock:        clock,
	})
}

// --- tests ---

func TestPipeline_Refresh_BuildsSnapshot(t *testing.T) {
	sink := &mockSink{}
	metrics := observability.NewMetricsForTesting()
	p := newPipeline(&mockDatasetSource{dataset: testDataset()}, &mockLocationSource{locations: testLocations()},
		[]pipeline.MarkerSink{sink}, metrics, clockwork.NewFakeClockAt(now))

	require.Error(t, p.CheckReadiness(context.Background()))
	require.NoError(t, p.Refresh(context.Background()))
	require.NoError(t, p.CheckReadiness(context.Background()))

	snaps := sink.loaded()
	require.Len(t, snaps, 1)

	wantRef := now.AddDate(0, 0, -1)
	want := domain.Snapshot{
		Dataset:      testDataset(),
		Markers:      domain.BuildMarkers(testDataset(), testLocations(), wantRef, 7),
		Reference:    wantRef,
		LookbackDays: 7,
	}
	if diff := cmp.Diff(want, snaps[0]); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	italy := snaps[0].Markers[0]
	require.NotNil(t, italy.Stats)
	assert.Equal(t, domain.NewPercent(7, 35), italy.Stats.CasesPct)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RefreshesTotal), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.CountriesLoaded), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.MarkersBuilt), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.MarkersWithoutData), 0)
}

func TestPipeline_Refresh_DatasetError(t *testing.T) {
	sink := &mockSink{}
	metrics := observability.NewMetricsForTesting()
	fetchErr := &domain.FetchError{Source: "timeseries.json", Err: errors.New("status 503")}
	p := newPipeline(&mockDatasetSource{failures: 1, err: fetchErr}, &mockLocationSource{locations: testLocations()},
		[]pipeline.MarkerSink{sink}, metrics, clockwork.NewFakeClockAt(now))

	err := p.Refresh(context.Background())

	var target *domain.FetchError
	require.True(t, errors.As(err, &target))
	assert.Empty(t, sink.loaded())
	assert.Error(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RefreshFailures.WithLabelValues("extract")), 0)
}

func TestPipeline_Refresh_LocationError(t *testing.T) {
	sink := &mockSink{}
	parseErr := &domain.ParseError{Source: "coords.json", Err: errors.New("unexpected EOF")}
	p := newPipeline(&mockDatasetSource{dataset: testDataset()}, &mockLocationSource{err: parseErr},
		[]pipeline.MarkerSink{sink}, observability.NewMetricsForTesting(), clockwork.NewFakeClockAt(now))

	err := p.Refresh(context.Background())

	var target *domain.ParseError
	require.True(t, errors.As(err, &target))
	assert.Empty(t, sink.loaded())
}

func TestPipeline_Refresh_LoadErrorStillFeedsOtherSinks(t *testing.T) {
	failing := &mockSink{err: errors.New("broker down")}
	healthy := &mockSink{}
	metrics := observability.NewMetricsForTesting()
	p := newPipeline(&mockDatasetSource{dataset: testDataset()}, &mockLocationSource{locations: testLocations()},
		[]pipeline.MarkerSink{failing, healthy}, metrics, clockwork.NewFakeClockAt(now))

	err := p.Refresh(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Len(t, healthy.loaded(), 1)
	assert.Error(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RefreshFailures.WithLabelValues("load")), 0)
}

func TestPipeline_Refresh_GeocodesMissingCountries(t *testing.T) {
	sink := &mockSink{}
	geocoder := &mockGeocoder{results: map[string]domain.GeocodingResult{
		"Chile": {Lat: -35.7, Lon: -71.5, FormattedAddress: "Chile"},
	}}
	p := pipeline.New(&mockDatasetSource{dataset: testDataset()}, &mockLocationSource{locations: testLocations()},
		[]pipeline.MarkerSink{sink}, discardLogger(), observability.NewMetricsForTesting(), pipeline.Options{
			Geocoder: geocoder,
			Clock:    clockwork.NewFakeClockAt(now),
		})

	require.NoError(t, p.Refresh(context.Background()))

	markers := sink.loaded()[0].Markers
	require.Len(t, markers, 3)
	assert.Equal(t, "Chile", markers[2].Country)
	assert.True(t, markers[2].HasData)
	assert.InDelta(t, -71.5, markers[2].Lon, 1e-9)
}

func TestPipeline_Run_RetriesWithBackoff(t *testing.T) {
	clock := clockwork.NewFakeClockAt(now)
	source := &mockDatasetSource{dataset: testDataset(), failures: 2, err: errors.New("timeout")}
	sink := &mockSink{}
	p := newPipeline(source, &mockLocationSource{locations: testLocations()},
		[]pipeline.MarkerSink{sink}, observability.NewMetricsForTesting(), clock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// First failure waits 200ms, the second 400ms.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(200 * time.Millisecond)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(400 * time.Millisecond)

	require.Eventually(t, func() bool { return len(sink.loaded()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(3), source.calls.Load())
	assert.NoError(t, p.CheckReadiness(ctx))

	cancel()
	require.NoError(t, <-done)
}

func TestPipeline_Run_RefreshesEveryInterval(t *testing.T) {
	clock := clockwork.NewFakeClockAt(now)
	sink := &mockSink{}
	metrics := observability.NewMetricsForTesting()
	p := newPipeline(&mockDatasetSource{dataset: testDataset()}, &mockLocationSource{locations: testLocations()},
		[]pipeline.MarkerSink{sink}, metrics, clock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Len(t, sink.loaded(), 1)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PipelineRunning), 0)

	clock.Advance(time.Hour)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	snaps := sink.loaded()
	require.Len(t, snaps, 2)
	assert.Equal(t, domain.Day{Year: 2020, Month: time.February, Day: 8}, domain.DayOf(snaps[0].Reference))
	assert.Equal(t, now.Add(time.Hour).AddDate(0, 0, -1), snaps[1].Reference)

	cancel()
	require.NoError(t, <-done)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PipelineRunning), 0)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	sink := &mockSink{}
	p := newPipeline(&mockDatasetSource{dataset: testDataset()}, &mockLocationSource{locations: testLocations()},
		[]pipeline.MarkerSink{sink}, observability.NewMetricsForTesting(), clockwork.NewFakeClockAt(now))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
}
