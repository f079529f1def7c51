// Package store provides persistence backends for analysis runs. The
// in-memory implementation is the default and keeps one session row per
// workflow id with its stage analyses, prediction points, and log messages.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/stocksage-ai/stocksage/core"
)

// SessionRow is the persisted header of one analysis run.
type SessionRow struct {
	WorkflowID    string
	Symbol        string
	TimeFrequency core.TimeFrequency
	AnalysisType  string
	Status        string
	Confidence    *float64
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// StageRow is one persisted stage analysis.
type StageRow struct {
	Kind           core.StageKind
	Name           string
	Analysis       string
	ProcessingTime time.Duration
	CreatedAt      time.Time
}

// LogMessage is one persisted chat-style message attached to a session.
type LogMessage struct {
	Kind      string
	Content   string
	Sender    string
	Metadata  map[string]string
	CreatedAt time.Time
}

// InMemoryStore implements core.Store with mutex-guarded maps. It is safe
// for concurrent use across runs.
type InMemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]*SessionRow
	stages      map[string][]StageRow
	predictions map[string][]core.PredictionPoint
	messages    map[string][]LogMessage
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions:    make(map[string]*SessionRow),
		stages:      make(map[string][]StageRow),
		predictions: make(map[string][]core.PredictionPoint),
		messages:    make(map[string][]LogMessage),
	}
}

// CreateSession implements core.Store.
func (s *InMemoryStore) CreateSession(workflowID, symbol string, freq core.TimeFrequency, analysisType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[workflowID]; exists {
		return fmt.Errorf("session %s already exists", workflowID)
	}
	s.sessions[workflowID] = &SessionRow{
		WorkflowID:    workflowID,
		Symbol:        symbol,
		TimeFrequency: freq,
		AnalysisType:  analysisType,
		Status:        core.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	return nil
}

// UpdateSessionStatus implements core.Store.
func (s *InMemoryStore) UpdateSessionStatus(workflowID, status string, confidence *float64, completedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.sessions[workflowID]
	if !ok {
		return fmt.Errorf("session %s not found", workflowID)
	}
	row.Status = status
	if confidence != nil {
		c := *confidence
		row.Confidence = &c
	}
	if completedAt != nil {
		t := completedAt.UTC()
		row.CompletedAt = &t
	}
	return nil
}

// AppendStageAnalysis implements core.Store.
func (s *InMemoryStore) AppendStageAnalysis(workflowID string, kind core.StageKind, name, analysis string, processingTime time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[workflowID]; !ok {
		return fmt.Errorf("session %s not found", workflowID)
	}
	s.stages[workflowID] = append(s.stages[workflowID], StageRow{
		Kind:           kind,
		Name:           name,
		Analysis:       analysis,
		ProcessingTime: processingTime,
		CreatedAt:      time.Now().UTC(),
	})
	return nil
}

// AppendPredictions implements core.Store.
func (s *InMemoryStore) AppendPredictions(workflowID string, points []core.PredictionPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[workflowID]; !ok {
		return fmt.Errorf("session %s not found", workflowID)
	}
	s.predictions[workflowID] = append(s.predictions[workflowID], points...)
	return nil
}

// AppendLogMessage implements core.Store.
func (s *InMemoryStore) AppendLogMessage(workflowID, kind, content, sender string, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[workflowID]; !ok {
		return fmt.Errorf("session %s not found", workflowID)
	}
	var meta map[string]string
	if metadata != nil {
		meta = make(map[string]string, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
	}
	s.messages[workflowID] = append(s.messages[workflowID], LogMessage{
		Kind:      kind,
		Content:   content,
		Sender:    sender,
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// Session returns the persisted session row for a workflow id.
func (s *InMemoryStore) Session(workflowID string) (*SessionRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.sessions[workflowID]
	if !ok {
		return nil, false
	}
	cp := *row
	return &cp, true
}

// Stages returns the persisted stage analyses for a workflow id in
// insertion order.
func (s *InMemoryStore) Stages(workflowID string) []StageRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StageRow, len(s.stages[workflowID]))
	copy(out, s.stages[workflowID])
	return out
}

// Predictions returns the persisted prediction points for a workflow id.
func (s *InMemoryStore) Predictions(workflowID string) []core.PredictionPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.PredictionPoint, len(s.predictions[workflowID]))
	copy(out, s.predictions[workflowID])
	return out
}

// Messages returns the persisted log messages for a workflow id in
// insertion order.
func (s *InMemoryStore) Messages(workflowID string) []LogMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LogMessage, len(s.messages[workflowID]))
	copy(out, s.messages[workflowID])
	return out
}

// SessionCount reports the number of persisted sessions.
func (s *InMemoryStore) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
