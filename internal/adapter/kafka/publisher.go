package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/covid-map-service/internal/config"
	"github.com/couchcryptid/covid-map-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces one message per marker to the marker topic.
// It implements pipeline.MarkerSink.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured marker topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaMarkerTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// LoadMarkers publishes every marker of the snapshot in a single
// WriteMessages call. Keys are country names so a country's updates land on
// the same partition.
func (p *Publisher) LoadMarkers(ctx context.Context, snap domain.Snapshot) error {
	if len(snap.Markers) == 0 {
		return nil
	}
	refDay := domain.DayOf(snap.Reference)
	msgs := make([]kafkago.Message, len(snap.Markers))
	for i := range snap.Markers {
		msg, err := serializeToMessage(snap.Markers[i], refDay)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish markers: %w", err)
	}
	p.logger.Debug("markers published", "count", len(msgs), "reference_day", refDay.String())
	return nil
}

// Close flushes pending writes and closes the producer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func serializeToMessage(marker domain.Marker, refDay domain.Day) (kafkago.Message, error) {
	data, err := json.Marshal(marker)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize marker %s: %w", marker.Country, err)
	}
	return kafkago.Message{
		Key:   []byte(marker.Country),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "color", Value: []byte(marker.Color.String())},
			{Key: "reference_day", Value: []byte(refDay.String())},
		},
	}, nil
}
