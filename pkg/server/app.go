package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	drepo "aaiti/internal/domain/repository"
	icache "aaiti/internal/service/cache"
	"aaiti/internal/service/stream"
	pkgch "aaiti/pkg/clickhouse"
	"aaiti/pkg/config"
	xhttp "aaiti/pkg/http"
	applogger "aaiti/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	httpServer *xhttp.Server

	cache      *icache.AggregationCache
	warmer     *stream.Warmer // optional
	events     drepo.EventSink
	quoteStore drepo.QuoteStore // optional
	chClient   *pkgch.Client    // optional
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	cache *icache.AggregationCache,
	warmer *stream.Warmer,
	events drepo.EventSink,
	quoteStore drepo.QuoteStore,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		handler:    handler,
		cache:      cache,
		warmer:     warmer,
		events:     events,
		quoteStore: quoteStore,
		chClient:   chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler, a.log,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	a.cache.StartSweeper(ctx)

	if a.warmer != nil {
		go a.warmer.Run(ctx)
		a.log.Info("stream warmer started", applogger.Strings("symbols", a.cfg.Stream.Symbols))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	a.cache.Stop()

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.log.Warn("event sink close error", applogger.Error(err))
		}
	}
	if a.quoteStore != nil {
		if err := a.quoteStore.Close(); err != nil {
			a.log.Warn("quote store close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
