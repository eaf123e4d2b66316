package models

import "time"

// Bar represents one OHLCV bar of historical price data.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// PriceSeries is an ascending-by-time sequence of bars for one ticker.
type PriceSeries []Bar

// Closes returns the closing prices in series order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Last returns the most recent bar. The caller must ensure the series is non-empty.
func (s PriceSeries) Last() Bar {
	return s[len(s)-1]
}
