package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/stocksage-ai/stocksage/core"
	"github.com/stocksage-ai/stocksage/marketdata"
)

// ExpertCompletion renders the JSON payload an expert stage is expected to
// produce, with the given confidence.
func ExpertCompletion(analysis string, confidence float64, factors ...string) string {
	if len(factors) == 0 {
		factors = []string{"earnings", "valuation"}
	}
	payload := map[string]any{
		"analysis":    analysis,
		"confidence":  confidence,
		"key_factors": factors,
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

// FencedExpertCompletion wraps an expert payload in a markdown JSON fence,
// the way chat models often emit structured output.
func FencedExpertCompletion(analysis string, confidence float64, factors ...string) string {
	return fmt.Sprintf("Here is my analysis:\n```json\n%s\n```\n", ExpertCompletion(analysis, confidence, factors...))
}

// ConsolidationCompletion renders the JSON payload the consolidator stage
// is expected to produce, including a two-point prediction curve.
func ConsolidationCompletion(analysis string, confidence float64, freq core.TimeFrequency, points []core.PredictionPoint) string {
	if points == nil {
		points = []core.PredictionPoint{
			{Date: "2025-01-15", Price: 105.50},
			{Date: "2025-01-30", Price: 108.25},
		}
	}
	payload := map[string]any{
		"analysis":    analysis,
		"confidence":  confidence,
		"key_factors": []string{"consensus", "momentum"},
		"prediction": map[string]any{
			"time_frequency": string(freq),
			"predictions":    points,
		},
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

// SnapshotFixture returns a populated market data snapshot for a symbol.
func SnapshotFixture(symbol string) *marketdata.Snapshot {
	return &marketdata.Snapshot{
		Symbol:        symbol,
		CompanyName:   symbol + " Inc.",
		Sector:        "Technology",
		Industry:      "Consumer Electronics",
		CurrentPrice:  187.32,
		PriceChange:   1.24,
		ChangePercent: 0.67,
		Volume:        52_300_000,
		AvgVolume:     58_100_000,
		MarketCap:     2_900_000_000_000,
		PERatio:       29.4,
		WeekHigh52:    199.62,
		WeekLow52:     164.08,
		Beta:          1.29,
	}
}
