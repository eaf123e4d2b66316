package models

// MACDValue holds the MACD line, its signal line, and the histogram.
type MACDValue struct {
	Line      *float64 `json:"line"`
	Signal    *float64 `json:"signal"`
	Histogram *float64 `json:"histogram"`
}

// SMAValue holds simple moving averages over the standard windows.
type SMAValue struct {
	P20  *float64 `json:"sma_20"`
	P50  *float64 `json:"sma_50"`
	P200 *float64 `json:"sma_200"`
}

// EMAValue holds exponential moving averages over the standard windows.
type EMAValue struct {
	P12 *float64 `json:"ema_12"`
	P26 *float64 `json:"ema_26"`
}

// Indicators is the full indicator set computed from one price series.
// Each field is nil exactly when the series is shorter than that
// indicator's minimum window; a nil field is degraded data, not an error.
type Indicators struct {
	RSI  *float64  `json:"rsi"`
	MACD MACDValue `json:"macd"`
	SMA  SMAValue  `json:"sma"`
	EMA  EMAValue  `json:"ema"`
}
