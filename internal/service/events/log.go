package events

import (
	"context"
	"sync"

	"aaiti/internal/domain/models"
	"aaiti/pkg/logger"
)

// LogSink writes events to the structured log. Used when Kafka is disabled.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(_ context.Context, ev models.Event) {
	s.log.Info("event",
		logger.String("kind", string(ev.Kind)),
		logger.String("symbol", ev.Symbol),
		logger.Any("payload", ev.Payload))
}

func (s *LogSink) Close() error { return nil }

// MemorySink buffers events in memory. Test helper.
type MemorySink struct {
	mu     sync.Mutex
	events []models.Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(_ context.Context, ev models.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *MemorySink) Close() error { return nil }

// Events returns a copy of everything emitted so far.
func (s *MemorySink) Events() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}
