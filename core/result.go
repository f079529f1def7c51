package core

// PlaceholderAnalysis fills the result's per-agent map for any stage whose
// slot was never populated, so callers can always iterate five keys.
const PlaceholderAnalysis = "Analysis not available"

// PredictionPoint is one (date, price) sample of the forecast curve.
type PredictionPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// Prediction is the forecast payload produced by the consolidator.
type Prediction struct {
	TimeFrequency TimeFrequency     `json:"time_frequency"`
	Points        []PredictionPoint `json:"predictions"`
}

// AnalysisResult is the terminal output of a completed run. It is created
// once by the consolidator stage and never mutated.
type AnalysisResult struct {
	Symbol            string            `json:"symbol"`
	Prediction        Prediction        `json:"prediction"`
	AgentAnalyses     map[string]string `json:"agent_analyses"`
	ConfidenceScore   float64           `json:"confidence_score"`
	FactorsConsidered []string          `json:"factors_considered"`
}
