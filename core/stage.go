package core

import (
	"context"
	"time"
)

// StageKind identifies one of the five fixed pipeline stages.
type StageKind string

// The fixed stage kinds, named after the personas they run as.
const (
	KindFinance      StageKind = "finance_guru"
	KindGeopolitics  StageKind = "geopolitics_guru"
	KindLegal        StageKind = "legal_guru"
	KindQuant        StageKind = "quant_dev"
	KindConsolidator StageKind = "financial_analyst"
)

// PipelineOrder returns the fixed execution order of the stage kinds. The
// consolidator is always last because it reads every prior slot.
func PipelineOrder() []StageKind {
	return []StageKind{KindFinance, KindGeopolitics, KindLegal, KindQuant, KindConsolidator}
}

// Stage is one specialist step of the pipeline. Analyze mutates the record in
// place: on success it writes exactly one StageAnalysis into its reserved
// slot; on failure it appends a diagnostic to the record's errors and leaves
// the slot empty. The returned error is non-nil only for context
// cancellation, which stops the pipeline; ordinary stage failures are
// swallowed into the record so later stages still run.
type Stage interface {
	Kind() StageKind
	Name() string
	Analyze(ctx context.Context, rec *AnalysisRecord) error
}

// StageAnalysis is the output of one specialist stage. It is created exactly
// once per stage per run and never mutated afterwards.
type StageAnalysis struct {
	Kind           StageKind     `json:"agent_type"`
	Name           string        `json:"agent_name"`
	Analysis       string        `json:"analysis"`
	Confidence     float64       `json:"confidence"`
	KeyFactors     []string      `json:"key_factors"`
	ProcessingTime time.Duration `json:"processing_time_ms"`

	// Provider records which completion backend served the call, for
	// observability only.
	Provider string `json:"provider,omitempty"`
}
