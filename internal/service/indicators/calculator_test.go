package indicators

import (
	"math"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func seriesFromCloses(closes []float64) models.PriceSeries {
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	s := make(models.PriceSeries, len(closes))
	for i, c := range closes {
		s[i] = models.Bar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		}
	}
	return s
}

func flatCloses(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func rampCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestCalculateBelowMinimumsStaysNil(t *testing.T) {
	calc := New()

	ind := calc.Calculate(seriesFromCloses(flatCloses(14, 100)))
	if ind.RSI != nil {
		t.Fatalf("RSI must be nil below 15 points")
	}
	if ind.EMA.P12 == nil {
		t.Fatalf("EMA-12 should be available at 14 points")
	}

	ind = calc.Calculate(seriesFromCloses(flatCloses(34, 100)))
	if ind.MACD.Line != nil || ind.MACD.Signal != nil || ind.MACD.Histogram != nil {
		t.Fatalf("MACD must be nil below 35 points")
	}
	if ind.RSI == nil || ind.SMA.P20 == nil || ind.EMA.P26 == nil {
		t.Fatalf("shorter-window indicators should populate at 34 points")
	}

	ind = calc.Calculate(seriesFromCloses(flatCloses(199, 100)))
	if ind.SMA.P200 != nil {
		t.Fatalf("SMA-200 must be nil below 200 points")
	}
	if ind.SMA.P50 == nil {
		t.Fatalf("SMA-50 should populate at 199 points")
	}

	ind = calc.Calculate(seriesFromCloses(flatCloses(200, 100)))
	if ind.SMA.P200 == nil {
		t.Fatalf("SMA-200 should populate at exactly 200 points")
	}
}

func TestCalculateFlatSeries(t *testing.T) {
	calc := New()
	ind := calc.Calculate(seriesFromCloses(flatCloses(210, 150)))

	// No losses on a flat series, Wilder's RSI saturates at 100.
	if ind.RSI == nil || *ind.RSI != 100 {
		t.Fatalf("RSI=%v", ind.RSI)
	}
	for name, v := range map[string]*float64{
		"sma20": ind.SMA.P20, "sma50": ind.SMA.P50, "sma200": ind.SMA.P200,
		"ema12": ind.EMA.P12, "ema26": ind.EMA.P26,
	} {
		if v == nil || *v != 150 {
			t.Fatalf("%s=%v want 150", name, v)
		}
	}
	for name, v := range map[string]*float64{
		"line": ind.MACD.Line, "signal": ind.MACD.Signal, "histogram": ind.MACD.Histogram,
	} {
		if v == nil || *v != 0 {
			t.Fatalf("macd %s=%v want 0", name, v)
		}
	}
}

func TestRSIExtremes(t *testing.T) {
	calc := New()

	up := calc.Calculate(seriesFromCloses(rampCloses(40, 100, 1)))
	if up.RSI == nil || *up.RSI != 100 {
		t.Fatalf("monotonic gains RSI=%v want 100", up.RSI)
	}

	down := calc.Calculate(seriesFromCloses(rampCloses(40, 100, -1)))
	if down.RSI == nil || *down.RSI != 0 {
		t.Fatalf("monotonic losses RSI=%v want 0", down.RSI)
	}
}

func TestSMATrailingWindow(t *testing.T) {
	calc := New()
	// closes 1..60: SMA-20 covers 41..60, SMA-50 covers 11..60.
	ind := calc.Calculate(seriesFromCloses(rampCloses(60, 1, 1)))
	if ind.SMA.P20 == nil || *ind.SMA.P20 != 50.5 {
		t.Fatalf("sma20=%v want 50.5", ind.SMA.P20)
	}
	if ind.SMA.P50 == nil || *ind.SMA.P50 != 35.5 {
		t.Fatalf("sma50=%v want 35.5", ind.SMA.P50)
	}
}

func TestMACDRisingTrendPositive(t *testing.T) {
	calc := New()
	ind := calc.Calculate(seriesFromCloses(rampCloses(60, 100, 1)))
	if ind.MACD.Line == nil || *ind.MACD.Line <= 0 {
		t.Fatalf("rising trend MACD line=%v want > 0", ind.MACD.Line)
	}
	if ind.MACD.Histogram == nil {
		t.Fatalf("missing histogram")
	}
	if got, want := *ind.MACD.Histogram, round2(*ind.MACD.Line-*ind.MACD.Signal); got != want {
		t.Fatalf("histogram=%v want %v", got, want)
	}
}

func TestValuesRoundedToTwoDecimals(t *testing.T) {
	calc := New()
	closes := rampCloses(20, 0.01, 0.013)
	ind := calc.Calculate(seriesFromCloses(closes))

	mean := 0.0
	for _, c := range closes {
		mean += c
	}
	mean /= float64(len(closes))
	if want := math.Round(mean*100) / 100; *ind.SMA.P20 != want {
		t.Fatalf("sma20=%v want rounded mean %v", *ind.SMA.P20, want)
	}
	if *ind.SMA.P20 == mean {
		t.Fatalf("sma20 must be rounded, raw mean %v", mean)
	}
}

func TestCurrentPriceAndFreshness(t *testing.T) {
	calc := New()
	series := seriesFromCloses([]float64{10, 20, 30.456})

	if got := calc.CurrentPrice(series); got != 30.46 {
		t.Fatalf("price=%v want 30.46", got)
	}
	want := series[2].Timestamp
	if got := calc.DataFreshness(series); !got.Equal(want) {
		t.Fatalf("freshness=%v want %v", got, want)
	}
}
