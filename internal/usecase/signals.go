package usecase

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/cache"
	"StockPulse/internal/service/indicators"
	"StockPulse/internal/service/marketdata"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/service/signal"
	applogger "StockPulse/pkg/logger"
)

// SignalUsecase runs the request pipeline: rate limit, cache lookup, fetch,
// indicator calculation, scoring, cache fill.
type SignalUsecase struct {
	cache   *cache.Cache
	limiter *ratelimit.Limiter
	fetcher *marketdata.Fetcher
	calc    *indicators.Calculator
	gen     *signal.Generator
	metrics drepo.Metrics
	l       *applogger.Logger
}

// NewSignalUsecase wires the pipeline components.
func NewSignalUsecase(
	c *cache.Cache,
	limiter *ratelimit.Limiter,
	fetcher *marketdata.Fetcher,
	calc *indicators.Calculator,
	gen *signal.Generator,
	metrics drepo.Metrics,
	l *applogger.Logger,
) *SignalUsecase {
	return &SignalUsecase{
		cache:   c,
		limiter: limiter,
		fetcher: fetcher,
		calc:    calc,
		gen:     gen,
		metrics: metrics,
		l:       l,
	}
}

// Analyze computes the signal report for ticker on behalf of callerKey.
// The ticker arrives already normalized (uppercase, 1-5 alphanumerics).
// A cache hit short-circuits everything after the rate limit check.
func (u *SignalUsecase) Analyze(ctx context.Context, ticker, callerKey string) (*models.SignalReport, *ratelimit.Result, error) {
	quota, err := u.limiter.Check(callerKey)
	if err != nil {
		if u.metrics != nil {
			u.metrics.RecordRateLimited(callerKey)
		}
		return nil, nil, err
	}

	start := time.Now()
	cacheKey := "signal:" + ticker
	if v, ok := u.cache.Get(cacheKey); ok {
		if u.metrics != nil {
			u.metrics.RecordCache("hit")
		}
		report := v.(models.SignalReport)
		return &report, &quota, nil
	}
	if u.metrics != nil {
		u.metrics.RecordCache("miss")
	}

	series, err := u.fetcher.FetchHistoricalData(ctx, ticker)
	if err != nil {
		return nil, &quota, err
	}

	ind := u.calc.Calculate(series)
	price := u.calc.CurrentPrice(series)
	result := u.gen.Generate(ind, price)
	reasoning := u.gen.BuildReasoning(result, ind, price, len(series))

	report := models.SignalReport{
		Ticker:        ticker,
		Action:        result.Action,
		Score:         result.Score,
		Confidence:    result.Confidence,
		Reasoning:     reasoning,
		CurrentPrice:  price,
		Indicators:    ind,
		DataFreshness: u.calc.DataFreshness(series),
		DataDays:      len(series),
		ComputedAt:    time.Now().UTC(),
	}
	u.cache.Set(cacheKey, report)

	if u.metrics != nil {
		u.metrics.RecordSignal(ticker, string(result.Action))
		u.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	}
	if u.l != nil {
		u.l.Debug("signal computed",
			applogger.String("ticker", ticker),
			applogger.String("action", string(result.Action)),
			applogger.Int("score", result.Score))
	}
	return &report, &quota, nil
}

// CacheStats exposes the response cache counters for health reporting.
func (u *SignalUsecase) CacheStats() cache.Stats {
	return u.cache.Stats()
}

// Availability reports the fetcher's last known upstream state, probing
// when it has never been checked.
func (u *SignalUsecase) Availability(ctx context.Context) (bool, time.Time) {
	ok, at := u.fetcher.Availability()
	if at.IsZero() {
		ok = u.fetcher.CheckAvailability(ctx)
		_, at = u.fetcher.Availability()
	}
	return ok, at
}
