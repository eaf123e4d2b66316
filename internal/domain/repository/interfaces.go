package repository

import (
	"context"

	"StockPulse/internal/domain/models"
)

// MarketDataProvider is the upstream source of historical candles.
// Implementations return the full available daily history for a ticker,
// ascending by time. A nil error with an empty slice means the upstream
// confirmed it knows nothing about the ticker.
type MarketDataProvider interface {
	Candles(ctx context.Context, ticker string) (models.PriceSeries, error)
}

// WebhookStore is the keyed persistence port for webhook configuration and
// bounded delivery history. Implementations must prune history to maxKeep
// most-recent records inside AppendDelivery, oldest first.
type WebhookStore interface {
	GetConfig(ctx context.Context, userID string) (*models.WebhookConfig, error)
	PutConfig(ctx context.Context, userID string, cfg *models.WebhookConfig) error
	DeleteConfig(ctx context.Context, userID string) error
	AppendDelivery(ctx context.Context, userID string, d *models.WebhookDelivery, maxKeep int) error
	Deliveries(ctx context.Context, userID string) ([]models.WebhookDelivery, error)
}

// Metrics records operational metrics for the signal pipeline.
type Metrics interface {
	RecordSignal(ticker string, action string)
	RecordCache(result string)
	RecordRateLimited(key string)
	RecordFetchAttempt(ticker string, ok bool)
	RecordWebhookDelivery(status string, attempts int)
	RecordLastPrice(ticker string, price float64)
	RecordLatency(op string, seconds float64)
}
