package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/service/cache"
	"StockPulse/internal/service/indicators"
	"StockPulse/internal/service/marketdata"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/service/signal"
	"StockPulse/internal/usecase"
	xlogger "StockPulse/pkg/logger"
)

type stubProvider struct {
	series models.PriceSeries
	err    error
}

func (p *stubProvider) Candles(ctx context.Context, ticker string) (models.PriceSeries, error) {
	return p.series, p.err
}

func testSeries(n int) models.PriceSeries {
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	s := make(models.PriceSeries, n)
	for i := range s {
		c := 100 + float64(i)
		s[i] = models.Bar{Timestamp: base.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return s
}

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return l
}

func newSignalsEcho(t *testing.T, p *stubProvider, maxRequests int) *echo.Echo {
	t.Helper()
	uc := usecase.NewSignalUsecase(
		cache.New(100, time.Minute),
		ratelimit.New(maxRequests, time.Minute),
		marketdata.NewFetcher(p, marketdata.WithRetryPolicy(3, time.Millisecond, 2.0)),
		indicators.New(),
		signal.New(),
		nil, nil,
	)
	e := echo.New()
	NewSignalsHandler(testLogger(t), uc).RegisterRoutes(e)
	return e
}

func doGet(e *echo.Echo, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpointSuccess(t *testing.T) {
	e := newSignalsEcho(t, &stubProvider{series: testSeries(210)}, 10)

	rec := doGet(e, "/api/v1/signals/aapl", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, `"ticker":"AAPL"`)
	require.Contains(t, body, `"action":"BUY"`)
	require.Contains(t, body, `"reasoning"`)

	require.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "9", rec.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestAnalyzeEndpointInvalidTicker(t *testing.T) {
	e := newSignalsEcho(t, &stubProvider{series: testSeries(210)}, 10)

	for _, bad := range []string{"TOOLONG", "BR-K", "a%20b"} {
		rec := doGet(e, "/api/v1/signals/"+bad, nil)
		require.Equalf(t, http.StatusBadRequest, rec.Code, "ticker=%q body=%s", bad, rec.Body.String())
	}
}

func TestAnalyzeEndpointNotFound(t *testing.T) {
	e := newSignalsEcho(t, &stubProvider{series: nil}, 10)

	rec := doGet(e, "/api/v1/signals/ZZZZZ", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "ZZZZZ")
}

func TestAnalyzeEndpointRateLimited(t *testing.T) {
	e := newSignalsEcho(t, &stubProvider{series: testSeries(210)}, 1)

	first := doGet(e, "/api/v1/signals/AAPL", map[string]string{"X-API-Key": "caller-1"})
	require.Equal(t, http.StatusOK, first.Code)

	second := doGet(e, "/api/v1/signals/AAPL", map[string]string{"X-API-Key": "caller-1"})
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.NotEmpty(t, second.Header().Get("Retry-After"))
	require.NotEmpty(t, second.Header().Get("X-RateLimit-Reset"))

	// distinct API key, distinct quota
	other := doGet(e, "/api/v1/signals/AAPL", map[string]string{"X-API-Key": "caller-2"})
	require.Equal(t, http.StatusOK, other.Code)
}

func TestAnalyzeEndpointUpstreamDown(t *testing.T) {
	e := newSignalsEcho(t, &stubProvider{err: context.DeadlineExceeded}, 10)

	rec := doGet(e, "/api/v1/signals/AAPL", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestHealthEndpoint(t *testing.T) {
	e := newSignalsEcho(t, &stubProvider{series: testSeries(10)}, 10)

	rec := doGet(e, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `"status":"ok"`)
	require.Contains(t, body, `"available":true`)
	require.Contains(t, body, `"cache"`)

	down := newSignalsEcho(t, &stubProvider{err: context.DeadlineExceeded}, 10)
	rec = doGet(down, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestAnalyzeTickerUppercased(t *testing.T) {
	e := newSignalsEcho(t, &stubProvider{series: testSeries(60)}, 10)

	rec := doGet(e, "/api/v1/signals/msft", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `"ticker":"MSFT"`))
}
