package stage

import (
	"encoding/json"
	"strings"

	"github.com/stocksage-ai/stocksage/core"
)

// Outcome is the structured payload recovered from a model completion.
type Outcome struct {
	Analysis   string
	Confidence float64
	KeyFactors []string
	// Fallback is true when no structured payload could be recovered and
	// the raw completion text was used instead.
	Fallback bool
}

// ConsolidationOutcome extends Outcome with the price prediction emitted
// by the consolidation stage.
type ConsolidationOutcome struct {
	Outcome
	Prediction core.Prediction
}

// extractJSON locates the most plausible JSON object inside a completion.
// Fenced ```json blocks win over bare brace spans.
func extractJSON(text string) (string, bool) {
	if idx := strings.Index(text, "```json"); idx >= 0 {
		rest := text[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end]), true
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1], true
	}

	return "", false
}

// Parse recovers an Outcome from a model completion. Unparseable
// completions never error; the raw text is kept as the analysis with
// confidence 0.5 so the pipeline can continue.
func Parse(text string) Outcome {
	candidate, ok := extractJSON(text)
	if ok {
		var payload struct {
			Analysis   string   `json:"analysis"`
			Confidence float64  `json:"confidence"`
			KeyFactors []string `json:"key_factors"`
		}
		if err := json.Unmarshal([]byte(candidate), &payload); err == nil && payload.Analysis != "" {
			return Outcome{
				Analysis:   payload.Analysis,
				Confidence: payload.Confidence,
				KeyFactors: payload.KeyFactors,
			}
		}
	}

	return Outcome{
		Analysis:   text,
		Confidence: 0.5,
		KeyFactors: []string{"parsing_error"},
		Fallback:   true,
	}
}

// ParseConsolidation recovers a ConsolidationOutcome from the final
// stage's completion. On fallback the prediction is empty and the caller
// decides how to degrade.
func ParseConsolidation(text string) ConsolidationOutcome {
	candidate, ok := extractJSON(text)
	if ok {
		var payload struct {
			Analysis   string   `json:"analysis"`
			Confidence float64  `json:"confidence"`
			KeyFactors []string `json:"key_factors"`
			Prediction struct {
				TimeFrequency string                 `json:"time_frequency"`
				Predictions   []core.PredictionPoint `json:"predictions"`
			} `json:"prediction"`
		}
		if err := json.Unmarshal([]byte(candidate), &payload); err == nil && payload.Analysis != "" {
			return ConsolidationOutcome{
				Outcome: Outcome{
					Analysis:   payload.Analysis,
					Confidence: payload.Confidence,
					KeyFactors: payload.KeyFactors,
				},
				Prediction: core.Prediction{
					TimeFrequency: core.TimeFrequency(payload.Prediction.TimeFrequency),
					Points:        payload.Prediction.Predictions,
				},
			}
		}
	}

	return ConsolidationOutcome{
		Outcome: Outcome{
			Analysis:   text,
			Confidence: 0.5,
			KeyFactors: []string{"parsing_error"},
			Fallback:   true,
		},
	}
}
