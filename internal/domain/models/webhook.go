package models

import "time"

// WebhookConfig is one subscriber's webhook endpoint configuration.
type WebhookConfig struct {
	URL       string    `json:"url"`
	Secret    string    `json:"secret,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeliveryStatus is the lifecycle state of one webhook delivery.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// WebhookDelivery records the outcome of one delivery attempt sequence.
type WebhookDelivery struct {
	ID             string         `json:"id"`
	Event          string         `json:"event"`
	Status         DeliveryStatus `json:"status"`
	URL            string         `json:"url"`
	PayloadSummary string         `json:"payload_summary"`
	HTTPStatus     *int           `json:"http_status,omitempty"`
	Attempts       int            `json:"attempts"`
	FailureReason  string         `json:"failure_reason,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
}

// AlertResult is one evaluated alert handed over by the alert evaluator.
// The evaluator decides whether the alert fired; this core only consumes it.
type AlertResult struct {
	Triggered bool    `json:"triggered"`
	Ticker    string  `json:"ticker"`
	AlertType string  `json:"alert_type"`
	Message   string  `json:"message,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

// WebhookPayload is the JSON body POSTed to a subscriber's endpoint.
type WebhookPayload struct {
	Event       string        `json:"event"`
	UserID      string        `json:"user_id"`
	EvaluatedAt time.Time     `json:"evaluated_at"`
	Alerts      []AlertResult `json:"alerts"`
}
