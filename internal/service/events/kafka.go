package events

import (
	"context"

	"aaiti/internal/domain/models"
	pkgkafka "aaiti/pkg/kafka"
	"aaiti/pkg/logger"
)

// KafkaSink publishes events to a Kafka topic, keyed by symbol so one
// symbol's events stay ordered within a partition.
type KafkaSink struct {
	producer *pkgkafka.Producer
	topic    string
	log      *logger.Logger
}

func NewKafkaSink(producer *pkgkafka.Producer, topic string, log *logger.Logger) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic, log: log}
}

// Emit publishes the event. Emission is best-effort: a publish failure is
// logged, never propagated to the trading path.
func (s *KafkaSink) Emit(ctx context.Context, ev models.Event) {
	key := []byte(ev.Symbol)
	if len(key) == 0 {
		key = []byte(ev.Kind)
	}
	if err := s.producer.Publish(ctx, s.topic, key, ev); err != nil {
		s.log.Warn("event publish failed",
			logger.String("kind", string(ev.Kind)),
			logger.String("symbol", ev.Symbol),
			logger.Error(err))
	}
}

func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
