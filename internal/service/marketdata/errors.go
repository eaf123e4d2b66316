package marketdata

import (
	"fmt"
	"time"
)

// TickerNotFoundError means the upstream confirmed it has no data for the
// ticker. Confirmed-empty is not transient, so it is never retried.
type TickerNotFoundError struct {
	Ticker string
}

func (e *TickerNotFoundError) Error() string {
	return fmt.Sprintf("no historical data found for ticker %s", e.Ticker)
}

// SourceUnavailableError means every fetch attempt failed with a transport
// or provider error. LastErr carries the final underlying failure.
type SourceUnavailableError struct {
	Ticker     string
	RetryAfter time.Duration
	LastErr    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("market data source unavailable for %s (retry after %s): %v", e.Ticker, e.RetryAfter, e.LastErr)
}

func (e *SourceUnavailableError) Unwrap() error { return e.LastErr }
