// Package stream emits ordered lifecycle events for one portfolio
// analysis run, suitable for transport over a long-lived server-initiated
// connection. Events form a totally ordered, append-only sequence; an
// error event terminates the sequence early.
package stream

import "time"

// EventKind tags one lifecycle event.
type EventKind string

// The event kinds, in their required per-run order. An Error event may
// replace any suffix of the sequence.
const (
	EventSessionStart    EventKind = "session_start"
	EventUserMessage     EventKind = "user_message"
	EventStatusUpdate    EventKind = "status_update"
	EventAgentStart      EventKind = "agent_start"
	EventAgentThinking   EventKind = "agent_thinking"
	EventAgentComplete   EventKind = "agent_complete"
	EventFinalResult     EventKind = "final_result"
	EventSessionComplete EventKind = "session_complete"
	EventError           EventKind = "error"
)

// Event is one wire record of the progress stream. Fields beyond Type and
// Timestamp are populated per kind; unset fields are omitted on the wire.
// Confidence and ProcessingTimeMS are pointers so a legitimate zero still
// serializes on the kinds that carry them.
type Event struct {
	Type      EventKind `json:"type"`
	Timestamp string    `json:"timestamp"`

	SessionID string   `json:"session_id,omitempty"`
	Content   string   `json:"content,omitempty"`
	Message   string   `json:"message,omitempty"`
	Portfolio []string `json:"portfolio,omitempty"`

	AgentID    string `json:"agent_id,omitempty"`
	AgentName  string `json:"agent_name,omitempty"`
	Step       int    `json:"step,omitempty"`
	TotalSteps int    `json:"total_steps,omitempty"`

	Analysis         string   `json:"analysis,omitempty"`
	Confidence       *float64 `json:"confidence,omitempty"`
	ProcessingTimeMS *int64   `json:"processing_time_ms,omitempty"`
}

// newEvent stamps an event with the current ISO-8601 timestamp.
func newEvent(kind EventKind) Event {
	return Event{Type: kind, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

// Sink receives the ordered event sequence. Send is called from the run's
// goroutine; a non-nil error stops the stream.
type Sink interface {
	Send(ev Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev Event) error

// Send implements Sink.
func (f SinkFunc) Send(ev Event) error { return f(ev) }
