package api

import (
	"errors"
	"net/http"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/service/webhook"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// WebhooksHandler serves webhook configuration, manual tests, delivery
// history and the alert dispatch entry point.
type WebhooksHandler struct {
	logger     *xlogger.Logger
	webhooks   *webhook.Service
	dispatcher *usecase.AlertDispatcher
}

func NewWebhooksHandler(logger *xlogger.Logger, webhooks *webhook.Service, dispatcher *usecase.AlertDispatcher) *WebhooksHandler {
	return &WebhooksHandler{logger: logger, webhooks: webhooks, dispatcher: dispatcher}
}

func (h *WebhooksHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/users/:id")
	g.PUT("/webhook", h.Set)
	g.GET("/webhook", h.Get)
	g.DELETE("/webhook", h.Delete)
	g.GET("/webhook/deliveries", h.Deliveries)
	g.POST("/webhook/test", h.Test)
	g.POST("/alerts/dispatch", h.Dispatch)
}

// Set creates or replaces the subscriber's webhook endpoint.
func (h *WebhooksHandler) Set(c echo.Context) error {
	req := &models.SetWebhookRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cfg, isNew, err := h.webhooks.SetConfig(c.Request().Context(), c.Param("id"), req.URL, req.Secret)
	if err != nil {
		var invalid *webhook.InvalidURLError
		if errors.As(err, &invalid) {
			return xhttp.BadRequestResponse(c, []*xhttp.AppError{
				xhttp.BadRequestError(invalid.Error()),
			})
		}
		h.logger.Error("webhook set error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if isNew {
		return xhttp.CreatedResponse(c, cfg)
	}
	return xhttp.SuccessResponse(c, cfg)
}

// Get returns the subscriber's webhook configuration.
func (h *WebhooksHandler) Get(c echo.Context) error {
	cfg, err := h.webhooks.GetConfig(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("webhook get error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if cfg == nil {
		return xhttp.NotFoundResponse(c, []*xhttp.AppError{
			xhttp.NotFoundError("no webhook configured"),
		})
	}
	return xhttp.SuccessResponse(c, cfg)
}

// Delete removes the subscriber's webhook configuration.
func (h *WebhooksHandler) Delete(c echo.Context) error {
	err := h.webhooks.DeleteConfig(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, webhook.ErrWebhookNotFound) {
			return xhttp.NotFoundResponse(c, []*xhttp.AppError{
				xhttp.NotFoundError("no webhook configured"),
			})
		}
		h.logger.Error("webhook delete error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

// Deliveries returns the bounded delivery history, oldest first. The since
// query param (RFC3339 or unix seconds) drops records created before it,
// and limit keeps only the newest N of what remains.
func (h *WebhooksHandler) Deliveries(c echo.Context) error {
	deliveries, err := h.webhooks.GetDeliveries(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("webhook deliveries error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	if raw := c.QueryParam("since"); raw != "" {
		since, ok := xhttp.ParseTime(raw)
		if !ok {
			return xhttp.BadRequestResponse(c, []*xhttp.AppError{
				xhttp.BadRequestError("since must be RFC3339 or unix seconds"),
			})
		}
		kept := deliveries[:0:0]
		for _, d := range deliveries {
			if !d.CreatedAt.Before(since) {
				kept = append(kept, d)
			}
		}
		deliveries = kept
	}

	total := int64(len(deliveries))
	if limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 0); limit > 0 && limit < len(deliveries) {
		deliveries = deliveries[len(deliveries)-limit:]
	}
	return xhttp.ListResponse(c, deliveries, total)
}

// Test sends a synthetic triggered alert synchronously and returns the
// delivery record.
func (h *WebhooksHandler) Test(c echo.Context) error {
	req := &models.TestWebhookRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	userID := c.Param("id")
	cfg, err := h.webhooks.GetConfig(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("webhook test error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if cfg == nil {
		return xhttp.NotFoundResponse(c, []*xhttp.AppError{
			xhttp.NotFoundError("no webhook configured"),
		})
	}

	payload := h.webhooks.BuildPayload(userID, []models.AlertResult{{
		Triggered: true,
		Ticker:    req.Ticker,
		AlertType: req.AlertType,
		Message:   "manual test delivery",
	}}, time.Now().UTC())

	delivery, err := h.webhooks.Deliver(c.Request().Context(), userID, payload, cfg.URL, cfg.Secret)
	if err != nil {
		h.logger.Error("webhook test delivery error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, delivery)
}

// Dispatch accepts evaluated alert results and queues background delivery.
// Delivery outcomes are observable only through the history endpoint.
func (h *WebhooksHandler) Dispatch(c echo.Context) error {
	req := &models.DispatchAlertsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	evaluatedAt := req.EvaluatedAt
	if evaluatedAt.IsZero() {
		evaluatedAt = time.Now().UTC()
	}

	queued, err := h.dispatcher.Dispatch(c.Request().Context(), c.Param("id"), req.Results, evaluatedAt)
	if err != nil {
		h.logger.Error("alert dispatch error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.DataResponse(c, http.StatusAccepted, map[string]any{"queued": queued})
}
