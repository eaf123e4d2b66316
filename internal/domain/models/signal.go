package models

import "time"

// Action is the recommended trading action for a ticker.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// SignalResult is the scored outcome of one signal computation.
type SignalResult struct {
	Action     Action   `json:"action"`
	Score      int      `json:"score"`
	Confidence int      `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// SignalReport is the full response for a signal request, including the
// indicator set and data provenance.
type SignalReport struct {
	Ticker        string     `json:"ticker"`
	Action        Action     `json:"action"`
	Score         int        `json:"score"`
	Confidence    int        `json:"confidence"`
	Reasoning     string     `json:"reasoning"`
	CurrentPrice  float64    `json:"current_price"`
	Indicators    Indicators `json:"indicators"`
	DataFreshness time.Time  `json:"data_freshness"`
	DataDays      int        `json:"data_days"`
	ComputedAt    time.Time  `json:"computed_at"`
}
