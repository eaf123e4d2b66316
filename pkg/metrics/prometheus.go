package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsTotal       *prometheus.CounterVec
	cacheTotal         *prometheus.CounterVec
	rateLimitedTotal   *prometheus.CounterVec
	fetchAttemptsTotal *prometheus.CounterVec
	webhookDeliveries  *prometheus.CounterVec
	webhookAttempts    prometheus.Histogram
	lastPrice          *prometheus.GaugeVec
	latency            *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_signals_total",
				Help: "Total number of signals computed",
			},
			[]string{"ticker", "action"},
		),
		cacheTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_requests_total",
				Help: "Response cache lookups by result",
			},
			[]string{"result"},
		),
		rateLimitedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_rate_limited_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"caller"},
		),
		fetchAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_fetch_attempts_total",
				Help: "Historical data fetch attempts by outcome",
			},
			[]string{"ticker", "result"},
		),
		webhookDeliveries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_webhook_deliveries_total",
				Help: "Webhook delivery sequences by final status",
			},
			[]string{"status"},
		),
		webhookAttempts: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stockpulse_webhook_attempts_per_delivery",
				Help:    "HTTP attempts made per delivery sequence",
				Buckets: []float64{1, 2, 3},
			},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockpulse_last_price",
				Help: "Last observed price for a ticker",
			},
			[]string{"ticker"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSignal records one computed signal.
func (r *Recorder) RecordSignal(ticker, action string) {
	r.signalsTotal.WithLabelValues(ticker, action).Inc()
}

// RecordCache records a cache lookup result ("hit" or "miss").
func (r *Recorder) RecordCache(result string) {
	r.cacheTotal.WithLabelValues(result).Inc()
}

// RecordRateLimited records a rejected request.
func (r *Recorder) RecordRateLimited(caller string) {
	r.rateLimitedTotal.WithLabelValues(caller).Inc()
}

// RecordFetchAttempt records one upstream fetch attempt.
func (r *Recorder) RecordFetchAttempt(ticker string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.fetchAttemptsTotal.WithLabelValues(ticker, result).Inc()
}

// RecordWebhookDelivery records a finished delivery sequence.
func (r *Recorder) RecordWebhookDelivery(status string, attempts int) {
	r.webhookDeliveries.WithLabelValues(status).Inc()
	r.webhookAttempts.Observe(float64(attempts))
}

// RecordLastPrice records the last price for a ticker.
func (r *Recorder) RecordLastPrice(ticker string, price float64) {
	r.lastPrice.WithLabelValues(ticker).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
