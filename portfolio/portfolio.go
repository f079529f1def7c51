// Package portfolio adapts portfolio inputs onto the single-symbol
// pipeline. Composite mode builds one synthetic request covering the whole
// portfolio; per-holding mode runs the pipeline once per holding and
// merges the textual outputs. Both validate allocations first.
package portfolio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stocksage-ai/stocksage/core"
)

// Holding is one portfolio position: a symbol and its allocation
// percentage in [0,100].
type Holding struct {
	Symbol     string  `json:"symbol"`
	Allocation float64 `json:"allocation"`
}

// Allocation totals outside this window are rejected before any stage runs.
const (
	minTotalAllocation = 98.0
	maxTotalAllocation = 102.0
)

// ValidateHoldings checks a portfolio input: at least one holding, symbols
// of 1-10 characters, per-holding allocations in [0,100], no duplicate
// symbols, and a total allocation within the tolerance window.
func ValidateHoldings(holdings []Holding) error {
	if len(holdings) == 0 {
		return fmt.Errorf("portfolio must have at least one holding")
	}

	seen := make(map[string]struct{}, len(holdings))
	var total float64
	for _, h := range holdings {
		symbol := strings.ToUpper(strings.TrimSpace(h.Symbol))
		if symbol == "" || len(symbol) > 10 {
			return fmt.Errorf("symbol must be 1-10 characters: %q", h.Symbol)
		}
		if h.Allocation < 0 || h.Allocation > 100 {
			return fmt.Errorf("allocation for %s must be between 0 and 100, got %v", symbol, h.Allocation)
		}
		if _, dup := seen[symbol]; dup {
			return fmt.Errorf("duplicate symbol %s not allowed", symbol)
		}
		seen[symbol] = struct{}{}
		total += h.Allocation
	}

	if total < minTotalAllocation || total > maxTotalAllocation {
		return fmt.Errorf("total allocation must be ~100%%, got %s%%", formatAllocation(total))
	}
	return nil
}

// CompositeLabel renders the synthetic identifier for a portfolio, one
// "SYMBOL(PCT%)" term per holding, comma separated.
func CompositeLabel(holdings []Holding) string {
	terms := make([]string, len(holdings))
	for i, h := range holdings {
		terms[i] = fmt.Sprintf("%s(%s%%)", strings.ToUpper(strings.TrimSpace(h.Symbol)), formatAllocation(h.Allocation))
	}
	return strings.Join(terms, ", ")
}

// CompositeRequest validates the holdings and builds the synthetic
// analysis request for composite mode. The request is marked composite so
// symbol-length validation does not apply to the rendered label.
func CompositeRequest(holdings []Holding, freq core.TimeFrequency) (core.AnalysisRequest, error) {
	if err := ValidateHoldings(holdings); err != nil {
		return core.AnalysisRequest{}, err
	}
	if !freq.Valid() {
		return core.AnalysisRequest{}, core.ErrInvalidTimeFrequency
	}

	label := CompositeLabel(holdings)
	var total float64
	for _, h := range holdings {
		total += h.Allocation
	}

	context := fmt.Sprintf(`Portfolio Analysis Context:
- Total Stocks: %d
- Portfolio Composition: %s
- Total Allocation: %s%%
- Analysis Timeframe: %s
- Analysis Type: Portfolio-level multi-asset analysis`,
		len(holdings), label, formatAllocation(total), freq)

	return core.AnalysisRequest{
		Symbol:        label,
		TimeFrequency: freq,
		UserContext:   context,
		Composite:     true,
	}, nil
}

// ResultSymbol is the relabeled symbol of a composite portfolio result.
func ResultSymbol(n int) string {
	return fmt.Sprintf("Portfolio_%d_stocks", n)
}

// formatAllocation renders an allocation percentage without trailing
// zeros, so 30.0 prints as "30" and 2.5 as "2.5".
func formatAllocation(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
