package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/covid-map-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestPublisher(w *fakeWriter) *Publisher {
	return &Publisher{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSerializeToMessage(t *testing.T) {
	marker := domain.Marker{Country: "Italy", Lon: 12.5, Lat: 41.9, Color: domain.SeverityColor(&domain.SeverityTriple{}), HasData: true}

	msg, err := serializeToMessage(marker, domain.Day{Year: 2020, Month: time.March, Day: 4})
	require.NoError(t, err)

	assert.Equal(t, []byte("Italy"), msg.Key)
	assert.JSONEq(t, `{"country":"Italy","lon":12.5,"lat":41.9,"color":"#7f7f7f","has_data":true}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "color", msg.Headers[0].Key)
	assert.Equal(t, []byte("#7f7f7f"), msg.Headers[0].Value)
	assert.Equal(t, "reference_day", msg.Headers[1].Key)
	assert.Equal(t, []byte("2020-3-4"), msg.Headers[1].Value)
}

func TestPublisher_LoadMarkers(t *testing.T) {
	w := &fakeWriter{}
	p := newTestPublisher(w)

	err := p.LoadMarkers(context.Background(), domain.Snapshot{
		Markers: []domain.Marker{
			{Country: "Italy", Color: domain.SeverityColor(&domain.SeverityTriple{}), HasData: true},
			{Country: "Atlantis", Color: domain.NeutralGray},
		},
		Reference: time.Date(2020, time.March, 4, 18, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, w.msgs, 2)
	assert.Equal(t, []byte("Atlantis"), w.msgs[1].Key)
	assert.Equal(t, []byte("#808080"), w.msgs[1].Headers[0].Value)
}

func TestPublisher_LoadMarkers_Empty(t *testing.T) {
	w := &fakeWriter{err: errors.New("must not be called")}

	require.NoError(t, newTestPublisher(w).LoadMarkers(context.Background(), domain.Snapshot{}))
}

func TestPublisher_LoadMarkers_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}

	err := newTestPublisher(w).LoadMarkers(context.Background(), domain.Snapshot{
		Markers: []domain.Marker{{Country: "Italy"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newTestPublisher(w).Close())
	assert.True(t, w.closed)
}
