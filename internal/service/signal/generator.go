// Package signal scores an indicator set into a BUY/SELL/HOLD action with
// deterministic, human-readable reasoning.
package signal

import (
	"fmt"

	"StockPulse/internal/domain/models"
)

// Action thresholds: score >= +2 is a buy, score <= -2 is a sell.
const (
	buyThreshold  = 2
	sellThreshold = -2
)

// Generator turns indicators plus the current price into a scored signal.
// It is stateless and safe for concurrent use.
type Generator struct{}

func New() *Generator { return &Generator{} }

// Generate applies the additive scoring rules. Each indicator contributes
// independently; a nil indicator contributes 0 and no reason. Every
// contributing rule, neutral included, appends one reason string.
func (g *Generator) Generate(ind models.Indicators, currentPrice float64) models.SignalResult {
	score := 0
	reasons := make([]string, 0, 4)

	if ind.RSI != nil {
		rsi := *ind.RSI
		switch {
		case rsi < 30:
			score += 2
			reasons = append(reasons, fmt.Sprintf("RSI at %.2f indicates oversold conditions", rsi))
		case rsi < 40:
			score++
			reasons = append(reasons, fmt.Sprintf("RSI at %.2f is mildly oversold", rsi))
		case rsi > 70:
			score -= 2
			reasons = append(reasons, fmt.Sprintf("RSI at %.2f indicates overbought conditions", rsi))
		case rsi > 60:
			score--
			reasons = append(reasons, fmt.Sprintf("RSI at %.2f is mildly overbought", rsi))
		default:
			reasons = append(reasons, fmt.Sprintf("RSI at %.2f is neutral", rsi))
		}
	}

	if ind.MACD.Histogram != nil {
		hist := *ind.MACD.Histogram
		switch {
		case hist > 0:
			score += 2
			reasons = append(reasons, "MACD histogram positive showing bullish crossover")
		case hist < 0:
			score -= 2
			reasons = append(reasons, "MACD histogram negative showing bearish crossover")
		default:
			reasons = append(reasons, "MACD shows no clear trend")
		}
	}

	if ind.SMA.P50 != nil {
		switch {
		case currentPrice > *ind.SMA.P50:
			score++
			reasons = append(reasons, "price above 50-day SMA")
		case currentPrice < *ind.SMA.P50:
			score--
			reasons = append(reasons, "price below 50-day SMA")
		default:
			reasons = append(reasons, "price at 50-day SMA")
		}
	}

	if ind.SMA.P200 != nil {
		switch {
		case currentPrice > *ind.SMA.P200:
			score++
			reasons = append(reasons, "price above 200-day SMA")
		case currentPrice < *ind.SMA.P200:
			score--
			reasons = append(reasons, "price below 200-day SMA")
		default:
			reasons = append(reasons, "price at 200-day SMA")
		}
	}

	action := models.ActionHold
	if score >= buyThreshold {
		action = models.ActionBuy
	} else if score <= sellThreshold {
		action = models.ActionSell
	}

	confidence := abs(score) * 20
	if confidence > 100 {
		confidence = 100
	}

	return models.SignalResult{
		Action:     action,
		Score:      score,
		Confidence: confidence,
		Reasons:    reasons,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
