package marketdata

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	xhttp "StockPulse/pkg/http"
)

// HTTPProvider fetches daily candles from a finnhub-style REST API.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

// NewHTTPProvider creates a provider against baseURL with the given API key.
func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// candleResponse is the provider's column-oriented candle payload.
type candleResponse struct {
	Status string    `json:"s"`
	T      []int64   `json:"t"`
	O      []float64 `json:"o"`
	H      []float64 `json:"h"`
	L      []float64 `json:"l"`
	C      []float64 `json:"c"`
	V      []float64 `json:"v"`
}

// Candles requests the daily history for ticker. A "no_data" status maps to
// an empty series with no error, which the fetcher classifies as not-found.
func (p *HTTPProvider) Candles(ctx context.Context, ticker string) (models.PriceSeries, error) {
	var resp candleResponse
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.baseURL + "/stock/candle",
		QueryParams: map[string][]string{
			"symbol":     {ticker},
			"resolution": {"D"},
			"token":      {p.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("candles %s: %w", ticker, err)
	}

	if resp.Status == "no_data" {
		return models.PriceSeries{}, nil
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("candles %s: provider status %q", ticker, resp.Status)
	}
	n := len(resp.T)
	if len(resp.O) != n || len(resp.H) != n || len(resp.L) != n || len(resp.C) != n || len(resp.V) != n {
		return nil, fmt.Errorf("candles %s: misaligned columns", ticker)
	}

	series := make(models.PriceSeries, 0, len(resp.T))
	for i := range resp.T {
		series = append(series, models.Bar{
			Timestamp: time.Unix(resp.T[i], 0).UTC(),
			Open:      resp.O[i],
			High:      resp.H[i],
			Low:       resp.L[i],
			Close:     resp.C[i],
			Volume:    resp.V[i],
		})
	}
	return series, nil
}
