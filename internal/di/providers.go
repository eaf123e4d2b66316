package di

import (
	"fmt"

	"StockPulse/internal/domain/repository"
	"StockPulse/internal/handler/api"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/cache"
	"StockPulse/internal/service/indicators"
	"StockPulse/internal/service/marketdata"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/service/signal"
	"StockPulse/internal/service/webhook"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/config"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the signal report cache.
func ProvideCache(cfg *config.Config) *cache.Cache {
	return cache.New(cfg.Cache.MaxSize, cfg.Cache.TTL)
}

// ProvideLimiter creates the per-caller rate limiter.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
}

// ProvideMarketDataProvider creates the HTTP candle source.
func ProvideMarketDataProvider(cfg *config.Config) repository.MarketDataProvider {
	return marketdata.NewHTTPProvider(cfg.MarketData.BaseURL, cfg.MarketData.APIKey, cfg.MarketData.Timeout)
}

// ProvideFetcher creates the retrying historical data fetcher.
func ProvideFetcher(provider repository.MarketDataProvider, m repository.Metrics, l *applogger.Logger, cfg *config.Config) *marketdata.Fetcher {
	return marketdata.NewFetcher(provider,
		marketdata.WithRetryPolicy(cfg.MarketData.MaxRetries, cfg.MarketData.RetryDelay, cfg.MarketData.RetryBackoff),
		marketdata.WithProbeTicker(cfg.MarketData.ProbeTicker),
		marketdata.WithMetrics(m),
		marketdata.WithLogger(l),
	)
}

// ProvideStream creates the realtime price stream, or nil when disabled.
func ProvideStream(cfg *config.Config, m repository.Metrics, l *applogger.Logger) *marketdata.Stream {
	if !cfg.MarketData.Stream.Enabled {
		return nil
	}
	s := cfg.MarketData.Stream
	return marketdata.NewStream(cfg.MarketData.APIKey, s.WebSocketURL, s.Symbols, s.ReconnectDelay, s.PingInterval, m, l)
}

// ProvideWebhookStore selects the webhook store backend from config.
func ProvideWebhookStore(cfg *config.Config) repository.WebhookStore {
	if cfg.Webhook.Store == "redis" {
		return internalrepo.NewRedisWebhookStore(internalrepo.RedisConfig{
			Addr:     cfg.Webhook.Redis.Addr,
			Password: cfg.Webhook.Redis.Password,
			DB:       cfg.Webhook.Redis.DB,
		})
	}
	return internalrepo.NewMemoryWebhookStore()
}

// ProvideWebhookService creates the delivery service.
func ProvideWebhookService(store repository.WebhookStore, m repository.Metrics, l *applogger.Logger, cfg *config.Config) *webhook.Service {
	return webhook.NewService(store,
		webhook.WithMaxDeliveries(cfg.Webhook.MaxDeliveries),
		webhook.WithMetrics(m),
		webhook.WithLogger(l),
	)
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
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertDispatcher creates the alert fan-out use case.
func ProvideAlertDispatcher(ws *webhook.Service, producer *pkgkafka.Producer, cfg *config.Config, l *applogger.Logger) *usecase.AlertDispatcher {
	return usecase.NewAlertDispatcher(ws, producer, cfg.Kafka.Topic, l)
}

// ProvideSignalUsecase creates the analysis pipeline.
func ProvideSignalUsecase(
	c *cache.Cache,
	limiter *ratelimit.Limiter,
	fetcher *marketdata.Fetcher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SignalUsecase {
	return usecase.NewSignalUsecase(c, limiter, fetcher, indicators.New(), signal.New(), m, l)
}

// ProvideSignalsHandler creates the signal analysis HTTP handler.
func ProvideSignalsHandler(l *applogger.Logger, uc *usecase.SignalUsecase) *api.SignalsHandler {
	return api.NewSignalsHandler(l, uc)
}

// ProvideWebhooksHandler creates the webhook management HTTP handler.
func ProvideWebhooksHandler(l *applogger.Logger, ws *webhook.Service, dispatcher *usecase.AlertDispatcher) *api.WebhooksHandler {
	return api.NewWebhooksHandler(l, ws, dispatcher)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	signals *api.SignalsHandler,
	webhooks *api.WebhooksHandler,
	stream *marketdata.Stream,
	producer *pkgkafka.Producer,
) *server.App {
	return server.New(cfg, l, signals, webhooks, stream, producer)
}
