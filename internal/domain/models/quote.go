package models

import "time"

// PriceQuote is the normalized spot price returned by any provider.
// Immutable once constructed; Cached is set by the aggregation layer on hits.
type PriceQuote struct {
	Symbol     string    `json:"symbol"`
	Currency   string    `json:"currency"`
	Price      float64   `json:"price"`
	AsOf       time.Time `json:"as_of"`
	ProviderID string    `json:"provider_id"`
	Cached     bool      `json:"cached"`
}

// Candle represents one OHLCV bucket of historical data.
type Candle struct {
	Bucket time.Time `json:"bucket"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// CandleSeries is a historical window for one symbol/currency pair.
type CandleSeries struct {
	Symbol     string    `json:"symbol"`
	Currency   string    `json:"currency"`
	Days       int       `json:"days"`
	Candles    []Candle  `json:"candles"`
	ProviderID string    `json:"provider_id"`
	AsOf       time.Time `json:"as_of"`
	Cached     bool      `json:"cached"`
}

// SentimentScore is a normalized market-sentiment reading in [0,1].
type SentimentScore struct {
	Symbol     string    `json:"symbol"`
	Score      float64   `json:"score"`
	Label      string    `json:"label"`
	AsOf       time.Time `json:"as_of"`
	ProviderID string    `json:"provider_id"`
	Cached     bool      `json:"cached"`
}

// ProviderHealth is a point-in-time view of one provider's circuit state,
// maintained by the failover router and exposed for diagnostics.
type ProviderHealth struct {
	ProviderID          string    `json:"provider_id"`
	State               string    `json:"state"` // closed, open, half_open
	ConsecutiveFailures int       `json:"consecutive_failures"`
	OpenedAt            time.Time `json:"opened_at,omitempty"`
	RequestCount        int64     `json:"request_count"`
	ErrorCount          int64     `json:"error_count"`
	AvgLatencyMs        float64   `json:"avg_latency_ms"`
}
