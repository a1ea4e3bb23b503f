// Package kafka publishes normalized warning features to a fan-out topic for
// downstream consumers (alerting, archival). The fan-out is optional and
// best-effort; the API response never waits on a broker retry.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/datatales/dwd-warnings-service/internal/config"
	"github.com/datatales/dwd-warnings-service/internal/domain"
)

// Publisher produces normalized warning features to a Kafka topic.
// It implements pipeline.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured fan-out topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishWarnings serializes each normalized feature of an envelope and
// publishes them in a single WriteMessages call.
func (p *Publisher) PublishWarnings(ctx context.Context, typeName string, env domain.Envelope) error {
	if len(env.Features) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(env.Features))
	for i := range env.Features {
		msg, err := serializeToMessage(typeName, env.Meta.GeneratedAt, env.Features[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals one warning feature into a Kafka message.
func serializeToMessage(typeName, generatedAt string, f domain.WarningFeature) (kafkago.Message, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize warning feature: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey(f)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "type_name", Value: []byte(typeName)},
			{Key: "generated_at", Value: []byte(generatedAt)},
		},
	}, nil
}

// messageKey prefers the DWD warn cell id, then a generic id, so repeated
// fetches of the same cell land on one partition. An empty key lets Kafka
// balance the message freely.
func messageKey(f domain.WarningFeature) string {
	for _, k := range []string{"WARNCELLID", "warncellid", "ID", "id"} {
		switch v := f.Properties[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			// JSON numbers decode as float64; warn cell ids are integral.
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
