package repository

import (
	"context"
	"time"

	"aaiti/internal/domain/models"
)

// ProviderAdapter normalizes one external market-data source into the
// canonical quote/candle/sentiment representation. Adapters know their
// wire formats; the core only sees this contract.
type ProviderAdapter interface {
	ID() string
	FetchPrice(ctx context.Context, symbol, currency string) (*models.PriceQuote, error)
	FetchHistorical(ctx context.Context, symbol, currency string, days int) (*models.CandleSeries, error)
	Health(ctx context.Context) error
}

// SentimentProvider serves market-sentiment readings. Kept separate from
// ProviderAdapter since most price providers have no sentiment surface.
type SentimentProvider interface {
	ID() string
	FetchSentiment(ctx context.Context, symbol string) (*models.SentimentScore, error)
}

// ExchangeAdapter abstracts order submission away from exchange-specific
// REST/WebSocket protocols.
type ExchangeAdapter interface {
	ID() string
	SubmitOrder(ctx context.Context, symbol string, side models.Side, quantity, price float64) (*models.OrderResult, error)
}

// EventSink receives structured events for external logging/alerting.
type EventSink interface {
	Emit(ctx context.Context, ev models.Event)
	Close() error
}

// QuoteStore mirrors the latest fetched quotes for external consumers
// (dashboards, sibling processes). Best-effort; never on the hot path.
type QuoteStore interface {
	Put(ctx context.Context, q *models.PriceQuote, ttl time.Duration) error
	Get(ctx context.Context, symbol, currency string) (*models.PriceQuote, error)
	Close() error
}

// PositionArchive persists closed positions and fills for audit.
type PositionArchive interface {
	ArchiveClosed(ctx context.Context, p *models.ClosedPosition) error
	ArchiveFill(ctx context.Context, f *models.Fill) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics is the domain-facing recorder interface; the Prometheus
// implementation lives in pkg/metrics.
type Metrics interface {
	RecordProviderRequest(providerID string, success bool)
	RecordProviderLatency(providerID string, seconds float64)
	RecordCacheHit(kind string)
	RecordCacheMiss(kind string)
	RecordCircuitState(providerID string, state int)
	RecordRateLimitDrop(providerID string)
	RecordExecution(outcome string)
	RecordOpenPositions(n int)
	RecordLatency(op string, seconds float64)
}
