//go:build wireinject
// +build wireinject

package di

import (
	"NatalChart/pkg/config"
	"NatalChart/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Engine
		ProvideCalculator,

		// Infrastructure clients
		ProvideChartCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideChartPublisher,

		// Use cases
		ProvideChartService,
		ProvideKafkaChartRequestsHandler,

		// HTTP
		ProvideRateLimiter,
		ProvideChartHandler,
		ProvideSkyHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
