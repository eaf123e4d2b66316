package models

import "time"

// SetWebhookRequest is the body for creating or replacing a webhook.
type SetWebhookRequest struct {
	URL    string `json:"url" validate:"required"`
	Secret string `json:"secret"`
}

// DispatchAlertsRequest is the body handed over by the alert evaluator.
type DispatchAlertsRequest struct {
	EvaluatedAt time.Time     `json:"evaluated_at"`
	Results     []AlertResult `json:"results" validate:"required,dive"`
}

// TestWebhookRequest is the body for a manual test delivery.
type TestWebhookRequest struct {
	Ticker    string `json:"ticker" default:"AAPL" validate:"omitempty,alphanum,max=5"`
	AlertType string `json:"alert_type" default:"test"`
}
