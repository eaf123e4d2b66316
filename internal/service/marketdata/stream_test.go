package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type captureMetrics struct {
	mu     sync.Mutex
	prices map[string]float64
}

func (m *captureMetrics) RecordSignal(string, string)       {}
func (m *captureMetrics) RecordCache(string)                {}
func (m *captureMetrics) RecordRateLimited(string)          {}
func (m *captureMetrics) RecordFetchAttempt(string, bool)   {}
func (m *captureMetrics) RecordWebhookDelivery(string, int) {}
func (m *captureMetrics) RecordLatency(string, float64)     {}

func (m *captureMetrics) RecordLastPrice(ticker string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prices == nil {
		m.prices = map[string]float64{}
	}
	m.prices[ticker] = price
}

func (m *captureMetrics) lastPrice(ticker string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.prices[ticker]
	return v, ok
}

func TestStreamRecordsTradesAndStops(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		frame := `{"type":"trade","data":[{"s":"AAPL","p":191.5,"v":10,"t":1700000000000}]}`
		_ = conn.WriteMessage(websocket.TextMessage, []byte(frame))
		// hold the connection open long enough for ping frames to flow
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	metrics := &captureMetrics{}
	s := NewStream("key", wsURL, []string{"AAPL"}, 10*time.Millisecond, 5*time.Millisecond, metrics, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		if v, ok := metrics.lastPrice("AAPL"); ok {
			if v != 191.5 {
				t.Fatalf("unexpected price %v", v)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("trade was not recorded")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("unexpected run error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancel")
	}
}
