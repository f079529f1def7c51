package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NewID generates a unique identifier for workflows and stream sessions.
func NewID() string { return uuid.NewString() }

// AnalysisRecord is the workflow state threaded through the stages of one
// run. It is created at run start, mutated in place stage by stage, and
// becomes effectively immutable once CompletedAt is set. Records are never
// reused across runs.
//
// The error and warning sequences behave as an append-only, order-preserving
// accumulator: stages append, nothing replaces, and concurrent appends merge
// by concatenation. The default pipeline runs stages sequentially, but the
// accumulator stays correct if stages ever run in parallel.
type AnalysisRecord struct {
	Request    AnalysisRequest
	WorkflowID string
	StartedAt  time.Time

	mu          sync.RWMutex
	slots       map[StageKind]StageAnalysis
	currentStep string
	errs        []string
	warnings    []string
	result      *AnalysisResult
	completedAt *time.Time
}

// NewAnalysisRecord creates the state for a fresh run with empty slots, a new
// workflow id, and StartedAt set to now.
func NewAnalysisRecord(req AnalysisRequest) *AnalysisRecord {
	return &AnalysisRecord{
		Request:     req,
		WorkflowID:  NewID(),
		StartedAt:   time.Now().UTC(),
		slots:       make(map[StageKind]StageAnalysis, 5),
		currentStep: "initialized",
	}
}

// SetStage writes a stage's analysis into its reserved slot. Each slot is
// written at most once per run.
func (r *AnalysisRecord) SetStage(kind StageKind, a StageAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.slots[kind]; exists {
		return fmt.Errorf("stage slot %s already written", kind)
	}
	r.slots[kind] = a
	return nil
}

// StageFor returns a stage's analysis and whether its slot was populated.
func (r *AnalysisRecord) StageFor(kind StageKind) (StageAnalysis, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.slots[kind]
	return a, ok
}

// SetCurrentStep records the label of the last stage to complete, used by
// external status queries.
func (r *AnalysisRecord) SetCurrentStep(step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentStep = step
}

// CurrentStep returns the label of the last completed transition.
func (r *AnalysisRecord) CurrentStep() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentStep
}

// AppendError appends a formatted diagnostic to the error accumulator.
func (r *AnalysisRecord) AppendError(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, fmt.Sprintf(format, args...))
}

// AppendWarning appends a formatted note to the warning accumulator.
func (r *AnalysisRecord) AppendWarning(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Errors returns a defensive copy of the accumulated error sequence.
func (r *AnalysisRecord) Errors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.errs))
	copy(out, r.errs)
	return out
}

// Warnings returns a defensive copy of the accumulated warning sequence.
func (r *AnalysisRecord) Warnings() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// ErrorCount reports the current error accumulator length.
func (r *AnalysisRecord) ErrorCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.errs)
}

// SetResult stores the terminal result. Set once by the consolidator.
func (r *AnalysisRecord) SetResult(res *AnalysisResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result != nil {
		return fmt.Errorf("result already set for workflow %s", r.WorkflowID)
	}
	r.result = res
	return nil
}

// Result returns the terminal result, or nil while the run is in flight or
// when the run failed. Callers distinguish "degraded but complete" from
// "failed" by checking Result, not by checking Errors emptiness.
func (r *AnalysisRecord) Result() *AnalysisResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.result
}

// Complete marks the run finished. The first call wins; later calls are
// no-ops so the terminal timestamp is set exactly once.
func (r *AnalysisRecord) Complete(at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.completedAt == nil {
		t := at.UTC()
		r.completedAt = &t
	}
}

// CompletedAt returns the terminal timestamp, or nil while in flight.
func (r *AnalysisRecord) CompletedAt() *time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.completedAt
}

// ProcessingSummary aggregates per-run stage statistics for callers that
// report on a finished run.
type ProcessingSummary struct {
	TotalStages         int           `json:"total_agents"`
	SuccessfulStages    int           `json:"successful_analyses"`
	TotalProcessingTime time.Duration `json:"total_processing_time_ms"`
	Errors              []string      `json:"errors"`
	Warnings            []string      `json:"warnings"`
}

// Summary computes the processing summary from the populated slots.
func (r *AnalysisRecord) Summary() ProcessingSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := ProcessingSummary{TotalStages: len(PipelineOrder())}
	for _, a := range r.slots {
		s.SuccessfulStages++
		s.TotalProcessingTime += a.ProcessingTime
	}
	s.Errors = append(s.Errors, r.errs...)
	s.Warnings = append(s.Warnings, r.warnings...)
	return s
}
