// Package marketdata acquires historical price series from an upstream
// provider with bounded retry and an availability probe.
package marketdata

import (
	"context"
	"errors"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/retry"
)

// retryAfterHint is the guidance returned with SourceUnavailableError.
const retryAfterHint = 60 * time.Second

// FetcherOption configures Fetcher.
type FetcherOption func(*Fetcher)

// Fetcher wraps a MarketDataProvider with retry/backoff and availability
// state. The blocking provider call runs on the caller's goroutine; request
// handlers each run on their own goroutine, so concurrent requests are not
// stalled.
type Fetcher struct {
	provider     drepo.MarketDataProvider
	metrics      drepo.Metrics
	l            *applogger.Logger
	maxRetries   int
	retryDelay   time.Duration
	retryBackoff float64
	probeTicker  string

	mu          sync.Mutex
	isAvailable bool
	lastCheck   time.Time
}

// NewFetcher creates a fetcher with the default 3x1s exponential policy.
func NewFetcher(provider drepo.MarketDataProvider, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		provider:     provider,
		maxRetries:   3,
		retryDelay:   time.Second,
		retryBackoff: 2.0,
		probeTicker:  "AAPL",
		isAvailable:  true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithRetryPolicy sets attempt count, initial delay and backoff multiplier.
func WithRetryPolicy(maxRetries int, delay time.Duration, backoff float64) FetcherOption {
	return func(f *Fetcher) {
		f.maxRetries = maxRetries
		f.retryDelay = delay
		f.retryBackoff = backoff
	}
}

// WithProbeTicker sets the known-good ticker used by CheckAvailability.
func WithProbeTicker(ticker string) FetcherOption {
	return func(f *Fetcher) { f.probeTicker = ticker }
}

// WithMetrics injects a metrics recorder.
func WithMetrics(m drepo.Metrics) FetcherOption {
	return func(f *Fetcher) { f.metrics = m }
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) FetcherOption {
	return func(f *Fetcher) { f.l = l }
}

// FetchHistoricalData returns the ascending price series for ticker.
// A confirmed-empty result fails immediately with *TickerNotFoundError;
// transport failures are retried with exponential backoff and converted to
// *SourceUnavailableError once attempts are exhausted.
func (f *Fetcher) FetchHistoricalData(ctx context.Context, ticker string) (models.PriceSeries, error) {
	var series models.PriceSeries
	var lastErr error

	err := retry.Do(ctx, retry.Config{
		MaxAttempts: f.maxRetries,
		BaseDelay:   f.retryDelay,
		Multiplier:  f.retryBackoff,
	}, func(ctx context.Context, attempt int) error {
		s, err := f.provider.Candles(ctx, ticker)
		if err != nil {
			lastErr = err
			if f.metrics != nil {
				f.metrics.RecordFetchAttempt(ticker, false)
			}
			if f.l != nil {
				f.l.Warn("marketdata fetch attempt failed",
					applogger.String("ticker", ticker),
					applogger.Int("attempt", attempt),
					applogger.Error(err))
			}
			return err
		}
		if len(s) == 0 {
			return retry.Permanent(&TickerNotFoundError{Ticker: ticker})
		}
		series = s
		if f.metrics != nil {
			f.metrics.RecordFetchAttempt(ticker, true)
		}
		return nil
	})
	if err != nil {
		var notFound *TickerNotFoundError
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		f.setAvailable(false)
		return nil, &SourceUnavailableError{
			Ticker:     ticker,
			RetryAfter: retryAfterHint,
			LastErr:    lastErr,
		}
	}

	f.setAvailable(true)
	return series, nil
}

// CheckAvailability probes the known-good ticker with a single attempt and
// records the result for health reporting.
func (f *Fetcher) CheckAvailability(ctx context.Context) bool {
	s, err := f.provider.Candles(ctx, f.probeTicker)
	ok := err == nil && len(s) > 0

	f.mu.Lock()
	f.isAvailable = ok
	f.lastCheck = time.Now()
	f.mu.Unlock()
	return ok
}

// Availability returns the last observed availability state and when it was
// recorded.
func (f *Fetcher) Availability() (bool, time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isAvailable, f.lastCheck
}

func (f *Fetcher) setAvailable(ok bool) {
	f.mu.Lock()
	f.isAvailable = ok
	f.mu.Unlock()
}
