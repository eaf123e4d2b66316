// Package indicators computes technical indicators from a historical price
// series. Every indicator has a minimum window; below it the field stays
// nil rather than raising an error, so short histories degrade gracefully.
package indicators

import (
	"math"
	"time"

	"StockPulse/internal/domain/models"
)

// Minimum series lengths per indicator.
const (
	MinRSI    = 15 // 14 changes need 15 closes
	MinMACD   = 35 // slow EMA(26) + signal EMA(9)
	MinSMA20  = 20
	MinSMA50  = 50
	MinSMA200 = 200
	MinEMA12  = 12
	MinEMA26  = 26
)

// Calculator derives an indicator set from a price series. It is stateless
// and safe for concurrent use.
type Calculator struct{}

func New() *Calculator { return &Calculator{} }

// Calculate computes RSI(14), MACD(12,26,9), SMA-20/50/200 and EMA-12/26
// over the closing prices. Fields whose window exceeds the series length
// are left nil. All values are rounded to 2 decimals.
func (c *Calculator) Calculate(series models.PriceSeries) models.Indicators {
	closes := series.Closes()
	var ind models.Indicators

	if len(closes) >= MinRSI {
		ind.RSI = ptr(round2(rsi(closes, 14)))
	}
	if len(closes) >= MinMACD {
		line, signal := macd(closes, 12, 26, 9)
		ind.MACD.Line = ptr(round2(line))
		ind.MACD.Signal = ptr(round2(signal))
		ind.MACD.Histogram = ptr(round2(line - signal))
	}
	if len(closes) >= MinSMA20 {
		ind.SMA.P20 = ptr(round2(sma(closes, 20)))
	}
	if len(closes) >= MinSMA50 {
		ind.SMA.P50 = ptr(round2(sma(closes, 50)))
	}
	if len(closes) >= MinSMA200 {
		ind.SMA.P200 = ptr(round2(sma(closes, 200)))
	}
	if len(closes) >= MinEMA12 {
		ind.EMA.P12 = ptr(round2(last(emaSeries(closes, 12))))
	}
	if len(closes) >= MinEMA26 {
		ind.EMA.P26 = ptr(round2(last(emaSeries(closes, 26))))
	}
	return ind
}

// CurrentPrice returns the last closing price rounded to 2 decimals. The
// caller guarantees a non-empty series.
func (c *Calculator) CurrentPrice(series models.PriceSeries) float64 {
	return round2(series.Last().Close)
}

// DataFreshness returns the timestamp of the newest bar.
func (c *Calculator) DataFreshness(series models.PriceSeries) time.Time {
	return series.Last().Timestamp
}

// rsi computes Wilder's RSI: the first period changes seed the averages,
// later changes are smoothed with weight 1/period.
func rsi(closes []float64, period int) float64 {
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// macd returns the last MACD line value (EMA fast − EMA slow) and its
// signal line (EMA of the MACD line).
func macd(closes []float64, fast, slow, signalPeriod int) (line, signal float64) {
	fastEMA := emaSeries(closes, fast)
	slowEMA := emaSeries(closes, slow)

	// Both EMA series end at the last close; align them from the slow start.
	offset := len(fastEMA) - len(slowEMA)
	macdLine := make([]float64, len(slowEMA))
	for i := range slowEMA {
		macdLine[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalEMA := emaSeries(macdLine, signalPeriod)
	return last(macdLine), last(signalEMA)
}

// sma is the simple mean of the trailing period closes.
func sma(values []float64, period int) float64 {
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// emaSeries computes the exponential moving average, seeded with the SMA of
// the first period values. The result covers indices period-1..len-1.
func emaSeries(values []float64, period int) []float64 {
	if len(values) < period {
		return nil
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, 0, len(values)-period+1)

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)
	out = append(out, seed)

	prev := seed
	for _, v := range values[period:] {
		prev = v*k + prev*(1-k)
		out = append(out, prev)
	}
	return out
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr(v float64) *float64 { return &v }
