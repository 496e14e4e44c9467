package usecase

import (
	"context"
	"time"

	"aaiti/internal/domain/models"
	drepo "aaiti/internal/domain/repository"
	"aaiti/internal/service/breaker"
	"aaiti/internal/service/ratelimit"
	"aaiti/pkg/logger"
)

// providerCall runs one request kind against a single adapter.
type providerCall func(ctx context.Context, adapter drepo.ProviderAdapter) (interface{}, error)

// FailoverRouter tries providers in static priority order, applying
// circuit-breaking and rate-limit permits per provider. Priority order is
// configuration, never re-ranked by latency; latency is only recorded for
// visibility.
type FailoverRouter struct {
	order    []string // provider IDs, highest priority first
	adapters map[string]drepo.ProviderAdapter
	timeouts map[string]time.Duration
	limiter  *ratelimit.Limiter
	breakers *breaker.Registry
	metrics  drepo.Metrics
	log      *logger.Logger
}

func NewFailoverRouter(
	order []string,
	adapters map[string]drepo.ProviderAdapter,
	timeouts map[string]time.Duration,
	limiter *ratelimit.Limiter,
	breakers *breaker.Registry,
	metrics drepo.Metrics,
	log *logger.Logger,
) *FailoverRouter {
	return &FailoverRouter{
		order:    order,
		adapters: adapters,
		timeouts: timeouts,
		limiter:  limiter,
		breakers: breakers,
		metrics:  metrics,
		log:      log,
	}
}

// FetchPrice routes a spot-price request through the provider chain.
func (r *FailoverRouter) FetchPrice(ctx context.Context, symbol, currency string) (*models.PriceQuote, error) {
	v, err := r.fetch(ctx, "price:"+symbol+":"+currency, func(ctx context.Context, a drepo.ProviderAdapter) (interface{}, error) {
		return a.FetchPrice(ctx, symbol, currency)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.PriceQuote), nil
}

// FetchHistorical routes a candle-series request through the provider chain.
func (r *FailoverRouter) FetchHistorical(ctx context.Context, symbol, currency string, days int) (*models.CandleSeries, error) {
	v, err := r.fetch(ctx, "hist:"+symbol+":"+currency, func(ctx context.Context, a drepo.ProviderAdapter) (interface{}, error) {
		return a.FetchHistorical(ctx, symbol, currency, days)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.CandleSeries), nil
}

// Health returns the breaker snapshot for all providers.
func (r *FailoverRouter) Health() []models.ProviderHealth {
	return r.breakers.Snapshot()
}

// fetch walks the priority list. Open circuits are skipped; if that leaves
// nobody to ask, the first skipped-open provider is forced into a half-open
// probe so a total outage can still recover. Only when every provider has
// failed does the terminal FetchFailed surface.
func (r *FailoverRouter) fetch(ctx context.Context, key string, call providerCall) (interface{}, error) {
	attempts := make([]models.ProviderAttempt, 0, len(r.order))
	var skippedOpen []string

	for _, id := range r.order {
		state := r.breakers.State(id)
		if state == breaker.Open {
			skippedOpen = append(skippedOpen, id)
			attempts = append(attempts, models.ProviderAttempt{ProviderID: id, Reason: (&models.CircuitOpen{ProviderID: id}).Error()})
			continue
		}

		v, attempt, ok := r.try(ctx, id, call)
		if ok {
			return v, nil
		}
		attempts = append(attempts, attempt)
	}

	// Every closed/half-open provider failed. Probe the highest-priority
	// open circuit rather than returning a guaranteed failure.
	if len(skippedOpen) > 0 {
		id := skippedOpen[0]
		r.breakers.ForceProbe(id)
		v, attempt, ok := r.try(ctx, id, call)
		if ok {
			return v, nil
		}
		attempts = append(attempts, attempt)
	}

	return nil, &models.FetchFailed{Key: key, Attempts: attempts}
}

// try runs one provider attempt: permit, timeout, call, health bookkeeping.
func (r *FailoverRouter) try(ctx context.Context, id string, call providerCall) (interface{}, models.ProviderAttempt, bool) {
	adapter, ok := r.adapters[id]
	if !ok {
		return nil, models.ProviderAttempt{ProviderID: id, Reason: "provider not registered"}, false
	}

	if !r.limiter.TryAcquire(id) {
		r.metrics.RecordRateLimitDrop(id)
		return nil, models.ProviderAttempt{ProviderID: id, Reason: (&models.RateLimited{ProviderID: id}).Error()}, false
	}

	callCtx := ctx
	if timeout := r.timeouts[id]; timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	v, err := call(callCtx, adapter)
	elapsed := time.Since(start)

	r.metrics.RecordProviderLatency(id, elapsed.Seconds())
	if err != nil {
		r.breakers.RecordFailure(id, elapsed)
		r.metrics.RecordProviderRequest(id, false)
		r.log.Warn("provider attempt failed",
			logger.String("provider", id),
			logger.Error(err))
		return nil, models.ProviderAttempt{ProviderID: id, Reason: err.Error()}, false
	}

	r.breakers.RecordSuccess(id, elapsed)
	r.metrics.RecordProviderRequest(id, true)
	return v, models.ProviderAttempt{}, true
}
