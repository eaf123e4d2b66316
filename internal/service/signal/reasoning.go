package signal

import (
	"fmt"
	"strings"

	"StockPulse/internal/domain/models"
)

// Reasoning text bounds. Shorter output gets a filler clause, longer output
// is truncated to 497 characters plus an ellipsis.
const (
	minReasoningLen = 20
	maxReasoningLen = 500
)

const fillerClause = "based on available technical indicators"

// indicator families that must be referenced at least twice, matched
// case-insensitively by substring
var families = []string{"rsi", "macd", "sma", "ema"}

// BuildReasoning assembles the human-readable explanation for a signal.
// dataDays is the number of calendar days of history backing the
// computation; pass 0 when unknown. Output is always within
// [minReasoningLen, maxReasoningLen] and names at least two indicator
// families.
func (g *Generator) BuildReasoning(result models.SignalResult, ind models.Indicators, currentPrice float64, dataDays int) string {
	clauses := make([]string, 0, len(result.Reasons)+3)
	clauses = append(clauses, result.Reasons...)

	// Guarantee the 2-family minimum with supplementary mentions, in the
	// fixed order RSI, MACD, SMA-20.
	for _, supp := range []struct {
		family string
		clause string
	}{
		{"rsi", supplementRSI(ind)},
		{"macd", supplementMACD(ind)},
		{"sma", supplementSMA20(ind)},
	} {
		if countFamilies(strings.Join(clauses, ", ")) >= 2 {
			break
		}
		if !referencesFamily(strings.Join(clauses, ", "), supp.family) {
			clauses = append(clauses, supp.clause)
		}
	}

	limited := dataDays > 0 && dataDays < 200
	if limited {
		pre := fmt.Sprintf("Limited data (only %d days available)", dataDays)
		clauses = append([]string{pre}, clauses...)
		if missing := missingSMAs(ind); missing != "" {
			clauses = append(clauses, missing)
		}
	}

	prefix := fmt.Sprintf("%s signal: ", result.Action)
	if result.Confidence >= 80 {
		prefix = fmt.Sprintf("Strong %s signal: ", result.Action)
	}

	var text string
	if result.Action == models.ActionHold && !limited {
		text = prefix + "Mixed indicators - " + strings.Join(clauses, ", ") + "."
	} else {
		text = prefix + strings.Join(clauses, ", ") + "."
	}

	if len(text) < minReasoningLen {
		text = strings.TrimSuffix(text, ".") + " " + fillerClause + "."
	}
	if len(text) > maxReasoningLen {
		text = text[:maxReasoningLen-3] + "..."
	}
	return text
}

func supplementRSI(ind models.Indicators) string {
	if ind.RSI != nil {
		return fmt.Sprintf("RSI at %.2f", *ind.RSI)
	}
	return "RSI unavailable with current history"
}

func supplementMACD(ind models.Indicators) string {
	if ind.MACD.Histogram != nil {
		return fmt.Sprintf("MACD histogram at %.2f", *ind.MACD.Histogram)
	}
	return "MACD unavailable with current history"
}

func supplementSMA20(ind models.Indicators) string {
	if ind.SMA.P20 != nil {
		return fmt.Sprintf("20-day SMA at %.2f", *ind.SMA.P20)
	}
	return "20-day SMA unavailable with current history"
}

// missingSMAs names the long SMAs that insufficient history ruled out.
func missingSMAs(ind models.Indicators) string {
	missing := make([]string, 0, 2)
	if ind.SMA.P200 == nil {
		missing = append(missing, "200-day SMA")
	}
	if ind.SMA.P50 == nil {
		missing = append(missing, "50-day SMA")
	}
	if len(missing) == 0 {
		return ""
	}
	return strings.Join(missing, " and ") + " unavailable due to insufficient history"
}

func countFamilies(text string) int {
	n := 0
	for _, f := range families {
		if referencesFamily(text, f) {
			n++
		}
	}
	return n
}

func referencesFamily(text, family string) bool {
	return strings.Contains(strings.ToLower(text), family)
}
