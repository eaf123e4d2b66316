package usecase

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/service/webhook"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
)

// deliveryTimeout bounds one background delivery sequence: three attempts
// plus backoff pauses fit comfortably inside it.
const deliveryTimeout = time.Minute

// AlertDispatcher pushes triggered-alert results to the subscriber's
// webhook and, when configured, to a Kafka topic. Delivery runs after the
// triggering request has responded: fire and forget, log failures.
type AlertDispatcher struct {
	webhooks *webhook.Service
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

// NewAlertDispatcher creates a dispatcher. producer may be nil when Kafka
// fan-out is disabled.
func NewAlertDispatcher(webhooks *webhook.Service, producer *pkgkafka.Producer, topic string, l *applogger.Logger) *AlertDispatcher {
	return &AlertDispatcher{webhooks: webhooks, producer: producer, topic: topic, l: l}
}

// Dispatch filters the evaluated results and queues delivery for the
// subscriber. It returns whether a webhook delivery was queued; delivery
// outcomes are observable only through the delivery history.
func (d *AlertDispatcher) Dispatch(ctx context.Context, userID string, results []models.AlertResult, evaluatedAt time.Time) (bool, error) {
	payload := d.webhooks.BuildPayload(userID, results, evaluatedAt)
	if len(payload.Alerts) == 0 {
		return false, nil
	}

	d.publishEvent(ctx, userID, payload)

	cfg, err := d.webhooks.GetConfig(ctx, userID)
	if err != nil {
		return false, err
	}
	if cfg == nil || !cfg.IsActive {
		return false, nil
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		if _, err := d.webhooks.Deliver(bgCtx, userID, payload, cfg.URL, cfg.Secret); err != nil && d.l != nil {
			d.l.Error("webhook dispatch error", applogger.String("user", userID), applogger.Error(err))
		}
	}()
	return true, nil
}

// publishEvent mirrors the alert event to Kafka, keyed by user so one
// subscriber's events stay ordered.
func (d *AlertDispatcher) publishEvent(ctx context.Context, userID string, payload *models.WebhookPayload) {
	if d.producer == nil || d.topic == "" {
		return
	}
	if err := d.producer.Publish(ctx, d.topic, []byte(userID), payload); err != nil && d.l != nil {
		d.l.Warn("alert event publish failed", applogger.String("user", userID), applogger.Error(err))
	}
}
