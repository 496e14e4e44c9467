package usecase

import (
	"context"
	"errors"
	"time"

	"aaiti/internal/domain/models"
	drepo "aaiti/internal/domain/repository"
	"aaiti/internal/service/breaker"
	"aaiti/internal/service/ratelimit"
	"aaiti/pkg/logger"
)

// nopMetrics satisfies the metrics interface without a registry, so tests
// never collide on Prometheus collector registration.
type nopMetrics struct{}

func (nopMetrics) RecordProviderRequest(string, bool)    {}
func (nopMetrics) RecordProviderLatency(string, float64) {}
func (nopMetrics) RecordCacheHit(string)                 {}
func (nopMetrics) RecordCacheMiss(string)                {}
func (nopMetrics) RecordCircuitState(string, int)        {}
func (nopMetrics) RecordRateLimitDrop(string)            {}
func (nopMetrics) RecordExecution(string)                {}
func (nopMetrics) RecordOpenPositions(int)               {}
func (nopMetrics) RecordLatency(string, float64)         {}

type fakeAdapter struct {
	id    string
	fail  bool
	calls int
	price float64
}

func (a *fakeAdapter) ID() string { return a.id }

func (a *fakeAdapter) FetchPrice(ctx context.Context, symbol, currency string) (*models.PriceQuote, error) {
	a.calls++
	if a.fail {
		return nil, errors.New("upstream 500")
	}
	return &models.PriceQuote{
		Symbol:     symbol,
		Currency:   currency,
		Price:      a.price,
		AsOf:       time.Now().UTC(),
		ProviderID: a.id,
	}, nil
}

func (a *fakeAdapter) FetchHistorical(ctx context.Context, symbol, currency string, days int) (*models.CandleSeries, error) {
	a.calls++
	if a.fail {
		return nil, errors.New("upstream 500")
	}
	return &models.CandleSeries{Symbol: symbol, Currency: currency}, nil
}

func (a *fakeAdapter) Health(ctx context.Context) error {
	if a.fail {
		return errors.New("upstream 500")
	}
	return nil
}

// fakeExchange returns a scripted result or error for every submission.
type fakeExchange struct {
	result *models.OrderResult
	err    error
	calls  int
}

func (e *fakeExchange) ID() string { return "fake" }

func (e *fakeExchange) SubmitOrder(ctx context.Context, symbol string, side models.Side, quantity, price float64) (*models.OrderResult, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	r := *e.result
	if r.FillQty == 0 {
		r.FillQty = quantity
	}
	if r.FillPrice == 0 {
		r.FillPrice = price
	}
	return &r, nil
}

func newTestRouter(adapters ...*fakeAdapter) (*FailoverRouter, *breaker.Registry) {
	return newTestRouterWithLimiter(ratelimit.New(), adapters...)
}

func newTestRouterWithLimiter(limiter *ratelimit.Limiter, adapters ...*fakeAdapter) (*FailoverRouter, *breaker.Registry) {
	breakers := breaker.NewRegistry(3, time.Minute)
	order := make([]string, 0, len(adapters))
	amap := make(map[string]drepo.ProviderAdapter, len(adapters))
	timeouts := make(map[string]time.Duration, len(adapters))
	for _, a := range adapters {
		order = append(order, a.id)
		amap[a.id] = a
		timeouts[a.id] = time.Second
		breakers.Register(a.id)
	}
	return NewFailoverRouter(order, amap, timeouts, limiter, breakers, nopMetrics{}, logger.Nop()), breakers
}
