package pricing

import (
	"math"
	"strconv"
	"strings"
)

// AndUpPrice is charged for every "and up" descriptor, whatever number
// the text carries.
const AndUpPrice = 50.0

// DiagnosticKind classifies a degraded pricing input
type DiagnosticKind string

const (
	DiagUnparseablePrice DiagnosticKind = "unparseable_price"
	DiagAndUpConstant    DiagnosticKind = "and_up_constant"
	DiagUnknownAddOn     DiagnosticKind = "unknown_add_on"
)

// Diagnostic reports a pricing input that was priced by fallback
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Subject string         `json:"subject,omitempty"`
	Input   string         `json:"input"`
	Value   float64        `json:"value"`
}

// Reporter receives diagnostics. A nil Reporter drops them.
type Reporter func(Diagnostic)

func (r Reporter) report(d Diagnostic) {
	if r != nil {
		r(d)
	}
}

// ParsePriceRange derives a representative price from descriptors such
// as "$30-$50", "$50 and up" or "$30". Unparseable text prices at 0.
func ParsePriceRange(text string) float64 {
	v, _ := ParsePriceRangeDetailed(text)
	return v
}

// ParsePriceRangeDetailed is ParsePriceRange plus a diagnostic when the
// value came from a fallback rule.
func ParsePriceRangeDetailed(text string) (float64, *Diagnostic) {
	switch {
	case strings.Contains(text, "-"):
		var prices []float64
		for _, tok := range strings.Split(text, "-") {
			if v, ok := parseAmount(strings.Trim(tok, "$ ")); ok {
				prices = append(prices, v)
			}
		}
		if len(prices) == 2 {
			return (prices[0] + prices[1]) / 2, nil
		}
	case strings.Contains(text, "and up"):
		return AndUpPrice, &Diagnostic{Kind: DiagAndUpConstant, Input: text, Value: AndUpPrice}
	default:
		if v, ok := parseAmount(strings.ReplaceAll(text, "$", "")); ok {
			return v, nil
		}
	}
	return 0, &Diagnostic{Kind: DiagUnparseablePrice, Input: text}
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
