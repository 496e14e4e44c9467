package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aaiti/internal/domain/models"
	drepo "aaiti/internal/domain/repository"
	"aaiti/internal/service/cache"
	"aaiti/pkg/logger"
)

// TTLs holds per-kind cache lifetimes.
type TTLs struct {
	Price      time.Duration
	Historical time.Duration
	Sentiment  time.Duration
}

// MarketData serves price, historical and sentiment lookups through the
// aggregation cache, delegating misses to the failover router. Fetched
// quotes are mirrored to the quote store for external consumers.
type MarketData struct {
	cache      *cache.AggregationCache
	router     *FailoverRouter
	sentiments []drepo.SentimentProvider
	quoteStore drepo.QuoteStore // optional
	ttls       TTLs
	metrics    drepo.Metrics
	log        *logger.Logger
}

func NewMarketData(
	c *cache.AggregationCache,
	router *FailoverRouter,
	sentiments []drepo.SentimentProvider,
	quoteStore drepo.QuoteStore,
	ttls TTLs,
	metrics drepo.Metrics,
	log *logger.Logger,
) *MarketData {
	return &MarketData{
		cache:      c,
		router:     router,
		sentiments: sentiments,
		quoteStore: quoteStore,
		ttls:       ttls,
		metrics:    metrics,
		log:        log,
	}
}

// PriceKey builds the cache key for a spot price lookup.
func PriceKey(symbol, currency string) string {
	return "price:" + strings.ToUpper(symbol) + ":" + strings.ToUpper(currency)
}

// GetPrice returns the current price, served from cache when live.
func (m *MarketData) GetPrice(ctx context.Context, symbol, currency string) (*models.PriceQuote, error) {
	key := PriceKey(symbol, currency)
	v, hit, err := m.cache.Get(ctx, key, m.ttls.Price, func(ctx context.Context) (interface{}, error) {
		q, err := m.router.FetchPrice(ctx, symbol, currency)
		if err != nil {
			return nil, err
		}
		m.mirror(ctx, q)
		return q, nil
	})
	if err != nil {
		m.metrics.RecordCacheMiss("price")
		return nil, err
	}

	q := *v.(*models.PriceQuote)
	if hit {
		m.metrics.RecordCacheHit("price")
		q.Cached = true
	} else {
		m.metrics.RecordCacheMiss("price")
	}
	return &q, nil
}

// GetHistorical returns a candle series for the requested window.
func (m *MarketData) GetHistorical(ctx context.Context, symbol, currency string, days int) (*models.CandleSeries, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", days)
	}
	key := fmt.Sprintf("hist:%s:%s:%d", strings.ToUpper(symbol), strings.ToUpper(currency), days)
	v, hit, err := m.cache.Get(ctx, key, m.ttls.Historical, func(ctx context.Context) (interface{}, error) {
		return m.router.FetchHistorical(ctx, symbol, currency, days)
	})
	if err != nil {
		m.metrics.RecordCacheMiss("historical")
		return nil, err
	}

	s := *v.(*models.CandleSeries)
	if hit {
		m.metrics.RecordCacheHit("historical")
		s.Cached = true
	} else {
		m.metrics.RecordCacheMiss("historical")
	}
	return &s, nil
}

// GetSentiment returns the latest sentiment reading. Sentiment providers
// form their own small chain, tried in order.
func (m *MarketData) GetSentiment(ctx context.Context, symbol string) (*models.SentimentScore, error) {
	key := "sent:" + strings.ToUpper(symbol)
	v, hit, err := m.cache.Get(ctx, key, m.ttls.Sentiment, func(ctx context.Context) (interface{}, error) {
		attempts := make([]models.ProviderAttempt, 0, len(m.sentiments))
		for _, p := range m.sentiments {
			s, err := p.FetchSentiment(ctx, symbol)
			if err == nil {
				return s, nil
			}
			attempts = append(attempts, models.ProviderAttempt{ProviderID: p.ID(), Reason: err.Error()})
		}
		return nil, &models.FetchFailed{Key: key, Attempts: attempts}
	})
	if err != nil {
		m.metrics.RecordCacheMiss("sentiment")
		return nil, err
	}

	s := *v.(*models.SentimentScore)
	if hit {
		m.metrics.RecordCacheHit("sentiment")
		s.Cached = true
	} else {
		m.metrics.RecordCacheMiss("sentiment")
	}
	return &s, nil
}

// WarmPrice inserts a live-stream quote directly into the cache.
func (m *MarketData) WarmPrice(q *models.PriceQuote) {
	m.cache.Put(PriceKey(q.Symbol, q.Currency), q, m.ttls.Price)
}

// ProviderHealth exposes the router's breaker snapshot.
func (m *MarketData) ProviderHealth() []models.ProviderHealth {
	return m.router.Health()
}

// mirror writes a fetched quote to the external quote store, best-effort.
func (m *MarketData) mirror(ctx context.Context, q *models.PriceQuote) {
	if m.quoteStore == nil {
		return
	}
	if err := m.quoteStore.Put(ctx, q, m.ttls.Price); err != nil {
		m.log.Debug("quote mirror failed",
			logger.String("symbol", q.Symbol),
			logger.Error(err))
	}
}
