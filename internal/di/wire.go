//go:build wireinject
// +build wireinject

package di

import (
	"FinBoard/internal/config"
	"FinBoard/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Data sources and caches
		ProvideQuoteSource,
		ProvideQuoteCache,
		ProvideMoverSource,
		ProvideMoversCache,
		ProvideCacheService,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideReportStore,
		ProvideReportHistory,
		ProvideReportPublisher,
		ProvideMarketHours,

		// Use cases
		ProvideOverview,
		ProvideReportBuilder,
		ProvideCoordinator,
		ProvidePriceCollector,

		// Transport
		ProvideKafkaConsumer,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
