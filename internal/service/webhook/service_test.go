package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/repository"
)

func alerts(n int) []models.AlertResult {
	out := make([]models.AlertResult, n)
	for i := range out {
		out[i] = models.AlertResult{
			Triggered: true,
			Ticker:    []string{"AAPL", "MSFT", "TSLA", "NVDA", "AMZN"}[i%5],
			AlertType: "price_above",
			Value:     100 + float64(i),
		}
	}
	return out
}

func TestSetConfigValidatesURL(t *testing.T) {
	s := NewService(repository.NewMemoryWebhookStore())
	ctx := context.Background()

	for _, bad := range []string{"", "ftp://example.com/hook", "http://", "not a url at all", "example.com/hook"} {
		_, _, err := s.SetConfig(ctx, "u1", bad, "")
		var invalid *InvalidURLError
		require.ErrorAsf(t, err, &invalid, "url=%q", bad)
	}

	cfg, isNew, err := s.SetConfig(ctx, "u1", "https://example.com/hook", "shh")
	require.NoError(t, err)
	require.True(t, isNew)
	require.True(t, cfg.IsActive)
}

func TestSetConfigReplacePreservesCreatedAt(t *testing.T) {
	s := NewService(repository.NewMemoryWebhookStore())
	ctx := context.Background()

	t0 := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }
	first, isNew, err := s.SetConfig(ctx, "u1", "https://example.com/a", "")
	require.NoError(t, err)
	require.True(t, isNew)

	s.now = func() time.Time { return t0.Add(time.Hour) }
	second, isNew, err := s.SetConfig(ctx, "u1", "https://example.com/b", "")
	require.NoError(t, err)
	require.False(t, isNew)
	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.Equal(t, t0.Add(time.Hour), second.UpdatedAt)
	require.Equal(t, "https://example.com/b", second.URL)
}

func TestDeleteConfigMissing(t *testing.T) {
	s := NewService(repository.NewMemoryWebhookStore())
	err := s.DeleteConfig(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrWebhookNotFound)
}

func TestBuildPayloadKeepsOnlyTriggered(t *testing.T) {
	s := NewService(repository.NewMemoryWebhookStore())
	at := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	results := []models.AlertResult{
		{Triggered: true, Ticker: "AAPL", AlertType: "price_above"},
		{Triggered: false, Ticker: "MSFT", AlertType: "rsi_below"},
		{Triggered: true, Ticker: "TSLA", AlertType: "price_below"},
	}

	p := s.BuildPayload("u1", results, at)
	require.Equal(t, EventAlertsTriggered, p.Event)
	require.Equal(t, "u1", p.UserID)
	require.Equal(t, at, p.EvaluatedAt)
	require.Len(t, p.Alerts, 2)
	require.Equal(t, "AAPL", p.Alerts[0].Ticker)
	require.Equal(t, "TSLA", p.Alerts[1].Ticker)
}

func TestDeliverSuccessSingleAttempt(t *testing.T) {
	var gotSig, gotEvent, gotUA, gotCT, gotID string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Webhook-Signature")
		gotEvent = r.Header.Get("X-Webhook-Event")
		gotUA = r.Header.Get("User-Agent")
		gotCT = r.Header.Get("Content-Type")
		gotID = r.Header.Get("X-Webhook-Delivery")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := repository.NewMemoryWebhookStore()
	s := NewService(store)
	payload := s.BuildPayload("u1", alerts(1), time.Now())

	d, err := s.Deliver(context.Background(), "u1", payload, srv.URL, "topsecret")
	require.NoError(t, err)
	require.Equal(t, models.DeliveryDelivered, d.Status)
	require.Equal(t, 1, d.Attempts)
	require.NotNil(t, d.HTTPStatus)
	require.Equal(t, http.StatusOK, *d.HTTPStatus)
	require.NotNil(t, d.CompletedAt)

	require.Equal(t, "application/json", gotCT)
	require.Equal(t, "StockPulse-Webhook/1.0", gotUA)
	require.Equal(t, EventAlertsTriggered, gotEvent)
	require.Equal(t, d.ID, gotID)

	// signature over the exact body the server received
	mac := hmac.New(sha256.New, []byte("topsecret"))
	mac.Write(gotBody)
	require.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), gotSig)

	hist, err := s.GetDeliveries(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, hist, 1)
}

func TestDeliverNoSignatureWithoutSecret(t *testing.T) {
	var sigPresent bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sigPresent = r.Header["X-Webhook-Signature"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewService(repository.NewMemoryWebhookStore())
	payload := s.BuildPayload("u1", alerts(1), time.Now())

	d, err := s.Deliver(context.Background(), "u1", payload, srv.URL, "")
	require.NoError(t, err)
	require.Equal(t, models.DeliveryDelivered, d.Status)
	require.False(t, sigPresent)
}

func TestDeliverRetriesThenRecordsFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewService(repository.NewMemoryWebhookStore())
	payload := s.BuildPayload("u1", alerts(2), time.Now())

	start := time.Now()
	d, err := s.Deliver(context.Background(), "u1", payload, srv.URL, "")
	require.NoError(t, err, "a failed delivery is recorded, not raised")
	require.Equal(t, models.DeliveryFailed, d.Status)
	require.Equal(t, 3, d.Attempts)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
	require.NotNil(t, d.HTTPStatus)
	require.Equal(t, http.StatusInternalServerError, *d.HTTPStatus)
	require.Contains(t, d.FailureReason, "after 3 attempt(s)")
	// 1s + 2s of backoff between the three attempts
	require.GreaterOrEqual(t, time.Since(start), 3*time.Second)

	hist, err := s.GetDeliveries(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, hist, 1, "one record per delivery sequence")
}

func TestDeliverRecoversOnSecondAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewService(repository.NewMemoryWebhookStore())
	payload := s.BuildPayload("u1", alerts(1), time.Now())

	d, err := s.Deliver(context.Background(), "u1", payload, srv.URL, "")
	require.NoError(t, err)
	require.Equal(t, models.DeliveryDelivered, d.Status)
	require.Equal(t, 2, d.Attempts)
}

func TestDeliveryHistoryBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewService(repository.NewMemoryWebhookStore(), WithMaxDeliveries(3))
	payload := s.BuildPayload("u1", alerts(1), time.Now())

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		d, err := s.Deliver(context.Background(), "u1", payload, srv.URL, "")
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}

	hist, err := s.GetDeliveries(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, hist, 3)
	// oldest two dropped
	require.Equal(t, ids[2], hist[0].ID)
	require.Equal(t, ids[4], hist[2].ID)
}

func TestSignVector(t *testing.T) {
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	got := Sign("key", []byte("The quick brown fox jumps over the lazy dog"))
	want := "sha256=f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8"
	require.Equal(t, want, got)
}

func TestSummarize(t *testing.T) {
	require.Equal(t, "0 triggered alert(s)", summarize(nil))
	require.Equal(t, "1 triggered alert(s) (AAPL price_above)", summarize(alerts(1)))
	require.Equal(t,
		"5 triggered alert(s) (AAPL price_above, MSFT price_above, TSLA price_above, +2 more)",
		summarize(alerts(5)))
}

func TestDeliverTransportError(t *testing.T) {
	s := NewService(repository.NewMemoryWebhookStore())
	// nothing listens on this port; cancel mid-backoff to keep the test quick
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	payload := s.BuildPayload("u1", alerts(1), time.Now())
	d, err := s.Deliver(ctx, "u1", payload, "http://127.0.0.1:1/hook", "")
	require.NoError(t, err)
	require.Equal(t, models.DeliveryFailed, d.Status)
	require.Nil(t, d.HTTPStatus, "pure transport failure records no status")
}
