package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	drepo "StockPulse/internal/domain/repository"
	applogger "StockPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream keeps a live last-price feed for a fixed set of tickers over the
// provider's WebSocket API. It only warms metrics; signal computation always
// goes through the historical fetcher.
type Stream struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	metrics        drepo.Metrics
	l              *applogger.Logger
}

// NewStream creates a live price stream for the given symbols.
func NewStream(apiKey, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, metrics drepo.Metrics, l *applogger.Logger) *Stream {
	return &Stream{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		metrics:        metrics,
		l:              l,
	}
}

type wsTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsTrade `json:"data"`
}

// Run connects, subscribes and consumes trades until ctx is cancelled,
// reconnecting after reconnectDelay on read or dial failure.
func (s *Stream) Run(ctx context.Context) error {
	for {
		conn, err := s.connect(ctx)
		if err != nil {
			if s.l != nil {
				s.l.Warn("price stream connect failed", applogger.Error(err))
			}
		} else {
			s.consume(ctx, conn)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *Stream) connect(ctx context.Context) (*websocket.Conn, error) {
	u := fmt.Sprintf("%s?token=%s", s.websocketURL, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("stream dial: %w", err)
	}

	for _, sym := range s.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := conn.WriteJSON(msg); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	if s.l != nil {
		s.l.Info("price stream connected", applogger.Strings("symbols", s.symbols))
	}
	return conn, nil
}

// consume reads trade frames until the connection breaks or ctx is done.
// It owns conn: the ping goroutine is stopped before the conn is closed.
func (s *Stream) consume(ctx context.Context, conn *websocket.Conn) {
	pingCtx, stopPing := context.WithCancel(ctx)
	pingDone := make(chan struct{})
	go func() {
		defer close(pingDone)
		s.pingLoop(pingCtx, conn)
	}()
	defer func() {
		stopPing()
		<-pingDone
		_ = conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, b, err := conn.ReadMessage()
		if err != nil {
			if s.l != nil {
				s.l.Warn("price stream read error", applogger.Error(err))
			}
			return
		}

		var m wsMessage
		if err := json.Unmarshal(b, &m); err != nil || m.Type != "trade" {
			// ignore non-trade frames
			continue
		}
		for _, t := range m.Data {
			if s.metrics != nil {
				s.metrics.RecordLastPrice(t.S, t.P)
			}
		}
	}
}

func (s *Stream) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = conn.WriteMessage(websocket.PingMessage, nil)
		}
	}
}
