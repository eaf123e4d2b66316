// Package webhook manages subscriber webhook configuration and delivers
// signed alert payloads with bounded retry and per-subscriber history.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/retry"

	"github.com/google/uuid"
)

const (
	// EventAlertsTriggered is the event name carried by alert payloads.
	EventAlertsTriggered = "alerts.triggered"

	userAgent      = "StockPulse-Webhook/1.0"
	attemptTimeout = 10 * time.Second
	maxAttempts    = 3
	baseBackoff    = time.Second
)

// ServiceOption configures Service.
type ServiceOption func(*Service)

// Service is the webhook delivery engine. Concurrent access to config and
// history is serialized by the injected store.
type Service struct {
	store         drepo.WebhookStore
	client        *http.Client
	metrics       drepo.Metrics
	l             *applogger.Logger
	maxDeliveries int

	now func() time.Time
}

// NewService creates a webhook service persisting through store.
func NewService(store drepo.WebhookStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:         store,
		client:        &http.Client{Timeout: attemptTimeout},
		maxDeliveries: 50,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithMaxDeliveries bounds the per-subscriber delivery history.
func WithMaxDeliveries(n int) ServiceOption {
	return func(s *Service) { s.maxDeliveries = n }
}

// WithMetrics injects a metrics recorder.
func WithMetrics(m drepo.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) ServiceOption {
	return func(s *Service) { s.l = l }
}

// WithHTTPClient overrides the delivery HTTP client.
func WithHTTPClient(c *http.Client) ServiceOption {
	return func(s *Service) { s.client = c }
}

// GetConfig returns the subscriber's webhook config, or nil when none is set.
func (s *Service) GetConfig(ctx context.Context, userID string) (*models.WebhookConfig, error) {
	return s.store.GetConfig(ctx, userID)
}

// SetConfig creates or replaces the subscriber's webhook endpoint. It
// reports whether the config is new. The URL must be http/https with a host.
func (s *Service) SetConfig(ctx context.Context, userID, rawURL, secret string) (*models.WebhookConfig, bool, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, false, err
	}

	existing, err := s.store.GetConfig(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("load webhook config: %w", err)
	}

	now := s.now()
	cfg := &models.WebhookConfig{
		URL:       rawURL,
		Secret:    secret,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	isNew := existing == nil
	if !isNew {
		cfg.CreatedAt = existing.CreatedAt
	}

	if err := s.store.PutConfig(ctx, userID, cfg); err != nil {
		return nil, false, fmt.Errorf("store webhook config: %w", err)
	}
	return cfg, isNew, nil
}

// DeleteConfig removes the subscriber's webhook, failing with
// ErrWebhookNotFound when none exists.
func (s *Service) DeleteConfig(ctx context.Context, userID string) error {
	existing, err := s.store.GetConfig(ctx, userID)
	if err != nil {
		return fmt.Errorf("load webhook config: %w", err)
	}
	if existing == nil {
		return ErrWebhookNotFound
	}
	return s.store.DeleteConfig(ctx, userID)
}

// BuildPayload assembles the delivery payload from evaluated alerts,
// keeping only the ones that actually triggered.
func (s *Service) BuildPayload(userID string, results []models.AlertResult, evaluatedAt time.Time) *models.WebhookPayload {
	triggered := make([]models.AlertResult, 0, len(results))
	for _, r := range results {
		if r.Triggered {
			triggered = append(triggered, r)
		}
	}
	return &models.WebhookPayload{
		Event:       EventAlertsTriggered,
		UserID:      userID,
		EvaluatedAt: evaluatedAt,
		Alerts:      triggered,
	}
}

// Deliver POSTs payload to rawURL, retrying on non-2xx and transport errors
// with fixed backoff. Exactly one delivery record is appended to the
// subscriber's history whether the sequence succeeds or exhausts its
// attempts; a failed delivery is recorded, not raised.
func (s *Service) Deliver(ctx context.Context, userID string, payload *models.WebhookPayload, rawURL, secret string) (*models.WebhookDelivery, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	delivery := &models.WebhookDelivery{
		ID:             uuid.NewString(),
		Event:          payload.Event,
		Status:         models.DeliveryPending,
		URL:            rawURL,
		PayloadSummary: summarize(payload.Alerts),
		CreatedAt:      s.now(),
	}

	signature := ""
	if secret != "" {
		signature = Sign(secret, body)
	}

	var lastStatus *int
	var lastErr error
	attempts := 0

	err = retry.Do(ctx, retry.Config{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseBackoff,
		Multiplier:  2.0,
	}, func(ctx context.Context, attempt int) error {
		attempts = attempt
		status, err := s.post(ctx, rawURL, body, delivery.ID, payload.Event, signature)
		if status != 0 {
			lastStatus = &status
		}
		if err != nil {
			lastErr = err
			return err
		}
		return nil
	})

	completed := s.now()
	delivery.Attempts = attempts
	delivery.HTTPStatus = lastStatus
	delivery.CompletedAt = &completed
	if err != nil {
		delivery.Status = models.DeliveryFailed
		delivery.FailureReason = fmt.Sprintf("delivery failed after %d attempt(s): %v", attempts, lastErr)
		if s.l != nil {
			s.l.Warn("webhook delivery failed",
				applogger.String("user", userID),
				applogger.Int("attempts", attempts),
				applogger.Error(lastErr))
		}
	} else {
		delivery.Status = models.DeliveryDelivered
	}
	if s.metrics != nil {
		s.metrics.RecordWebhookDelivery(string(delivery.Status), attempts)
	}

	if err := s.store.AppendDelivery(ctx, userID, delivery, s.maxDeliveries); err != nil && s.l != nil {
		s.l.Error("webhook history append failed", applogger.String("user", userID), applogger.Error(err))
	}
	return delivery, nil
}

// GetDeliveries returns the subscriber's bounded delivery history, oldest
// first.
func (s *Service) GetDeliveries(ctx context.Context, userID string) ([]models.WebhookDelivery, error) {
	return s.store.Deliveries(ctx, userID)
}

// post sends one delivery attempt and returns the HTTP status, 0 on pure
// transport failure.
func (s *Service) post(ctx context.Context, rawURL string, body []byte, deliveryID, event, signature string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Webhook-Event", event)
	req.Header.Set("X-Webhook-Delivery", deliveryID)
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// Sign computes the payload signature header value
// "sha256=" + hex(HMAC-SHA256(secret, body)).
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// summarize renders "N triggered alert(s) (t1 type1, t2 type2, t3 type3,
// +K more)" naming at most the first three alerts.
func summarize(alerts []models.AlertResult) string {
	if len(alerts) == 0 {
		return "0 triggered alert(s)"
	}
	parts := make([]string, 0, 4)
	for i, a := range alerts {
		if i == 3 {
			parts = append(parts, fmt.Sprintf("+%d more", len(alerts)-3))
			break
		}
		parts = append(parts, fmt.Sprintf("%s %s", a.Ticker, a.AlertType))
	}
	return fmt.Sprintf("%d triggered alert(s) (%s)", len(alerts), strings.Join(parts, ", "))
}

// validateURL accepts only absolute http/https URLs with a host.
func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &InvalidURLError{URL: rawURL}
	}
	return nil
}
