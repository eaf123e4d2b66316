package api

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"StockPulse/internal/service/marketdata"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9]{1,5}$`)

// SignalsHandler serves the signal computation API over Echo.
type SignalsHandler struct {
	logger *xlogger.Logger
	uc     *usecase.SignalUsecase
}

func NewSignalsHandler(logger *xlogger.Logger, uc *usecase.SignalUsecase) *SignalsHandler {
	return &SignalsHandler{logger: logger, uc: uc}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/signals/:ticker", h.Analyze)
	g.GET("/health", h.Health)
	e.GET("/health", h.Health)
}

// Analyze computes (or serves from cache) the signal for one ticker.
func (h *SignalsHandler) Analyze(c echo.Context) error {
	ticker := strings.ToUpper(c.Param("ticker"))
	if !tickerPattern.MatchString(ticker) {
		return xhttp.BadRequestResponse(c, []*xhttp.AppError{
			xhttp.BadRequestErrorf("ticker must be 1-5 alphanumeric characters, got %q", c.Param("ticker")),
		})
	}

	report, quota, err := h.uc.Analyze(c.Request().Context(), ticker, callerKey(c))
	if quota != nil {
		setQuotaHeaders(c, quota)
	}
	if err != nil {
		return h.analyzeError(c, ticker, err)
	}
	return xhttp.SuccessResponse(c, report)
}

// Health reports upstream availability and cache effectiveness.
func (h *SignalsHandler) Health(c echo.Context) error {
	available, lastCheck := h.uc.Availability(c.Request().Context())
	status := "ok"
	if !available {
		status = "degraded"
	}
	return xhttp.SuccessResponse(c, map[string]any{
		"status": status,
		"data_source": map[string]any{
			"available":  available,
			"last_check": lastCheck,
		},
		"cache": h.uc.CacheStats(),
	})
}

func (h *SignalsHandler) analyzeError(c echo.Context, ticker string, err error) error {
	var limitErr *ratelimit.ExceededError
	if errors.As(err, &limitErr) {
		c.Response().Header().Set("Retry-After", strconv.Itoa(int(limitErr.RetryAfter.Seconds())))
		c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(limitErr.ResetAt.Unix(), 10))
		return xhttp.DataResponse(c, http.StatusTooManyRequests, []*xhttp.AppError{
			xhttp.NewAppError("ERR_RATE_LIMITED", "", limitErr.Error(), http.StatusTooManyRequests),
		})
	}

	var notFound *marketdata.TickerNotFoundError
	if errors.As(err, &notFound) {
		return xhttp.NotFoundResponse(c, []*xhttp.AppError{
			xhttp.NotFoundErrorf("ticker %s not found", ticker),
		})
	}

	var unavailable *marketdata.SourceUnavailableError
	if errors.As(err, &unavailable) {
		h.logger.Error("market data unavailable", xlogger.String("ticker", ticker), xlogger.Error(err))
		c.Response().Header().Set("Retry-After", strconv.Itoa(int(unavailable.RetryAfter.Seconds())))
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, []*xhttp.AppError{
			xhttp.NewAppError("ERR_UPSTREAM_UNAVAILABLE", "", "market data source unavailable", http.StatusServiceUnavailable),
		})
	}

	h.logger.Error("signal usecase error", xlogger.String("ticker", ticker), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}

// callerKey identifies the caller for rate accounting: API key when sent,
// remote address otherwise.
func callerKey(c echo.Context) string {
	if key := c.Request().Header.Get("X-API-Key"); key != "" {
		return key
	}
	return c.RealIP()
}

func setQuotaHeaders(c echo.Context, quota *ratelimit.Result) {
	h := c.Response().Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(quota.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(quota.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(quota.ResetAt.Unix(), 10))
}
