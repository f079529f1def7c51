package core

import "time"

// Session statuses persisted alongside a run.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Analysis types persisted with a session row.
const (
	AnalysisTypeStock     = "stock"
	AnalysisTypePortfolio = "portfolio"
)

// Store persists sessions, per-stage analysis text, prediction points, and
// chat-style log messages. The orchestrator calls it at the same transition
// points it updates the in-memory record, in the same order, so persisted
// state stays consistent with a resumed or queried view. Implementations need
// one session row per workflow id and no cross-run locking.
type Store interface {
	CreateSession(workflowID, symbol string, freq TimeFrequency, analysisType string) error
	UpdateSessionStatus(workflowID, status string, confidence *float64, completedAt *time.Time) error
	AppendStageAnalysis(workflowID string, kind StageKind, name, analysis string, processingTime time.Duration) error
	AppendPredictions(workflowID string, points []PredictionPoint) error
	AppendLogMessage(workflowID, kind, content, sender string, metadata map[string]string) error
}

// NoOpStore discards all persistence calls. Useful when callers only need
// the in-memory record.
type NoOpStore struct{}

// CreateSession implements Store.
func (NoOpStore) CreateSession(string, string, TimeFrequency, string) error { return nil }

// UpdateSessionStatus implements Store.
func (NoOpStore) UpdateSessionStatus(string, string, *float64, *time.Time) error { return nil }

// AppendStageAnalysis implements Store.
func (NoOpStore) AppendStageAnalysis(string, StageKind, string, string, time.Duration) error {
	return nil
}

// AppendPredictions implements Store.
func (NoOpStore) AppendPredictions(string, []PredictionPoint) error { return nil }

// AppendLogMessage implements Store.
func (NoOpStore) AppendLogMessage(string, string, string, string, map[string]string) error {
	return nil
}
