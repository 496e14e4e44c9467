//go:build wireinject
// +build wireinject

package di

import (
	"aaiti/pkg/config"
	"aaiti/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideClickHouseClient,
		ProvideQuoteStore,
		ProvideEventSink,
		ProvideArchive,

		// Market data chain
		ProvideLimiter,
		ProvideBreakers,
		ProvideCache,
		ProvideFailoverRouter,
		ProvideSentiments,
		ProvideMarketData,
		ProvideWarmer,

		// Execution chain
		ProvideRiskGate,
		ProvideLedger,
		ProvideExchange,
		ProvidePipeline,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
