package di

import (
	"context"
	"fmt"
	"sort"
	"time"

	models "aaiti/internal/domain/models"
	"aaiti/internal/domain/repository"
	"aaiti/internal/handler/api"
	internalrepo "aaiti/internal/repository"
	"aaiti/internal/service/breaker"
	icache "aaiti/internal/service/cache"
	"aaiti/internal/service/events"
	"aaiti/internal/service/exchange"
	binanceprov "aaiti/internal/service/provider/binance"
	"aaiti/internal/service/provider/coingecko"
	"aaiti/internal/service/provider/sentiment"
	"aaiti/internal/service/ratelimit"
	"aaiti/internal/service/stream"
	"aaiti/internal/usecase"
	pkgch "aaiti/pkg/clickhouse"
	"aaiti/pkg/config"
	xhttp "aaiti/pkg/http"
	pkgkafka "aaiti/pkg/kafka"
	applogger "aaiti/pkg/logger"
	"aaiti/pkg/metrics"
	"aaiti/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideLimiter creates the rate limiter with one bucket per provider.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	l := ratelimit.New()
	for _, p := range cfg.Providers {
		l.Register(p.ID, float64(p.BurstLimit), p.RateLimit)
	}
	return l
}

// ProvideBreakers creates the circuit breaker registry. State transitions
// are exported to metrics, the structured log and the event sink.
func ProvideBreakers(cfg *config.Config, m repository.Metrics, sink repository.EventSink, log *applogger.Logger) *breaker.Registry {
	r := breaker.NewRegistry(cfg.Breaker.FailureThreshold, cfg.Breaker.Cooldown)
	r.WithOnChange(func(providerID string, from, to breaker.State) {
		m.RecordCircuitState(providerID, int(to))
		log.Warn("circuit state change",
			applogger.String("provider", providerID),
			applogger.String("from", from.String()),
			applogger.String("to", to.String()))
		// The callback runs under the provider lock; emit off it.
		ev := models.NewEvent(models.EventBreakerChange, "", map[string]interface{}{
			"provider_id": providerID,
			"from":        from.String(),
			"to":          to.String(),
		})
		go sink.Emit(context.Background(), ev)
	})
	for _, p := range cfg.Providers {
		r.Register(p.ID)
	}
	return r
}

// ProvideCache creates the aggregation cache.
func ProvideCache(cfg *config.Config) *icache.AggregationCache {
	return icache.New(icache.WithSweep(cfg.Cache.SweepInterval, cfg.Cache.IdleEviction))
}

// ProvideFailoverRouter builds provider adapters from configuration and
// assembles the failover chain, highest priority first.
func ProvideFailoverRouter(
	cfg *config.Config,
	limiter *ratelimit.Limiter,
	breakers *breaker.Registry,
	m repository.Metrics,
	log *applogger.Logger,
) (*usecase.FailoverRouter, error) {
	providers := make([]config.Provider, len(cfg.Providers))
	copy(providers, cfg.Providers)
	sort.SliceStable(providers, func(i, j int) bool {
		return providers[i].Priority < providers[j].Priority
	})

	order := make([]string, 0, len(providers))
	adapters := make(map[string]repository.ProviderAdapter, len(providers))
	timeouts := make(map[string]time.Duration, len(providers))

	for _, p := range providers {
		var adapter repository.ProviderAdapter
		switch p.Kind {
		case "coingecko":
			adapter = coingecko.New(p.ID, p.BaseURL, p.APIKey, p.Timeout)
		case "binance":
			adapter = binanceprov.New(p.ID, p.APIKey, "", p.Timeout)
		default:
			return nil, fmt.Errorf("unknown provider kind '%s'", p.Kind)
		}
		order = append(order, p.ID)
		adapters[p.ID] = adapter
		timeouts[p.ID] = p.Timeout
	}

	return usecase.NewFailoverRouter(order, adapters, timeouts, limiter, breakers, m, log), nil
}

// ProvideSentiments creates the sentiment provider chain.
func ProvideSentiments(cfg *config.Config) []repository.SentimentProvider {
	timeout := 10 * time.Second
	return []repository.SentimentProvider{
		sentiment.New("alternative_me", "https://api.alternative.me", timeout),
	}
}

// ProvideQuoteStore creates the Redis quote mirror, or nil when disabled.
func ProvideQuoteStore(cfg *config.Config, log *applogger.Logger) (repository.QuoteStore, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	store, err := internalrepo.NewRedisQuoteStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("redis quote store: %w", err)
	}
	log.Info("redis quote mirror connected", applogger.String("addr", cfg.Redis.Addr))
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventSink routes lifecycle events to Kafka when enabled,
// otherwise to the structured log.
func ProvideEventSink(cfg *config.Config, producer *pkgkafka.Producer, log *applogger.Logger) repository.EventSink {
	if producer != nil {
		return events.NewKafkaSink(producer, cfg.Kafka.Topic, log)
	}
	return events.NewLogSink(log)
}

// ProvideClickHouseClient creates the ClickHouse client and initializes the
// archive schema, or returns nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.ArchiveSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideArchive creates the position archive, or nil when ClickHouse is
// disabled.
func ProvideArchive(client *pkgch.Client) repository.PositionArchive {
	if client == nil {
		return nil
	}
	return internalrepo.NewClickHouseArchive(client.DB())
}

// ProvideMarketData assembles the market-data usecase.
func ProvideMarketData(
	cfg *config.Config,
	c *icache.AggregationCache,
	router *usecase.FailoverRouter,
	sentiments []repository.SentimentProvider,
	quoteStore repository.QuoteStore,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.MarketData {
	return usecase.NewMarketData(c, router, sentiments, quoteStore, usecase.TTLs{
		Price:      cfg.Cache.PriceTTL,
		Historical: cfg.Cache.HistoricalTTL,
		Sentiment:  cfg.Cache.SentimentTTL,
	}, m, log)
}

// ProvideWarmer creates the live-stream cache warmer, or nil when the
// stream is disabled.
func ProvideWarmer(cfg *config.Config, market *usecase.MarketData, log *applogger.Logger) *stream.Warmer {
	if !cfg.Stream.Enabled {
		return nil
	}
	return stream.NewWarmer(
		cfg.Stream.URL,
		cfg.Stream.Symbols,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		market.WarmPrice,
		log,
	)
}

// ProvideRiskGate creates the risk gate from configured policy limits.
func ProvideRiskGate(cfg *config.Config) *usecase.RiskGate {
	return usecase.NewRiskGate(usecase.RiskPolicy{
		MinConfidence:         cfg.Risk.MinConfidence,
		MaxPositionsPerSymbol: cfg.Risk.MaxPositionsPerSymbol,
		MaxPortfolioExposure:  cfg.Risk.MaxPortfolioExposure,
		MaxDailyTrades:        cfg.Risk.MaxDailyTrades,
		MaxPositionSize:       cfg.Risk.MaxPositionSize,
		DefaultOrderNotional:  cfg.Risk.DefaultOrderNotional,
	})
}

// ProvideLedger creates the position ledger.
func ProvideLedger(archive repository.PositionArchive, m repository.Metrics, log *applogger.Logger) *usecase.PositionLedger {
	return usecase.NewPositionLedger(archive, m, log)
}

// ProvideExchange creates the configured exchange adapter.
func ProvideExchange(cfg *config.Config) (repository.ExchangeAdapter, error) {
	switch cfg.Exchange.Kind {
	case "paper":
		return exchange.NewPaper(), nil
	case "binance":
		return exchange.NewBinance(cfg.Exchange.APIKey, cfg.Exchange.APISecret), nil
	default:
		return nil, fmt.Errorf("unknown exchange kind '%s'", cfg.Exchange.Kind)
	}
}

// ProvidePipeline assembles the execution pipeline.
func ProvidePipeline(
	cfg *config.Config,
	gate *usecase.RiskGate,
	ledger *usecase.PositionLedger,
	ex repository.ExchangeAdapter,
	sink repository.EventSink,
	archive repository.PositionArchive,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.ExecutionPipeline {
	return usecase.NewExecutionPipeline(gate, ledger, ex, sink, archive, cfg.Exchange.SubmitTimeout, m, log)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(
	log *applogger.Logger,
	market *usecase.MarketData,
	pipeline *usecase.ExecutionPipeline,
	ledger *usecase.PositionLedger,
) xhttp.Handler {
	return api.NewHandler(log, market, pipeline, ledger)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	c *icache.AggregationCache,
	warmer *stream.Warmer,
	sink repository.EventSink,
	quoteStore repository.QuoteStore,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, log, handler, c, warmer, sink, quoteStore, chClient)
}
