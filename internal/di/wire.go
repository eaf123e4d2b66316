//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Core services
		ProvideCache,
		ProvideLimiter,
		ProvideMarketDataProvider,
		ProvideFetcher,
		ProvideStream,

		// Webhooks and alerting
		ProvideWebhookStore,
		ProvideWebhookService,
		ProvideKafkaProducer,
		ProvideAlertDispatcher,

		// Use cases and handlers
		ProvideSignalUsecase,
		ProvideSignalsHandler,
		ProvideWebhooksHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
