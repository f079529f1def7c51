package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Request captures one completion call. Temperature and MaxTokens of zero
// defer to the provider's configured defaults.
type Request struct {
	Prompt      string  `json:"prompt"`
	System      string  `json:"system,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int64   `json:"max_tokens,omitempty"`
}

// Response is the provider's completion text plus serving metadata attached
// for observability.
type Response struct {
	Text     string `json:"text"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
}

// Info contains metadata about a completer implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Completer is the minimal interface stages use to drive generation. Calls
// block until the provider returns or ctx expires; timeouts surface as
// ordinary errors the calling stage records and survives.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the completer implementation.
	Info() Info
}

// MockCompleter is a lightweight in-memory Completer useful for tests.
// Responses are matched by prompt substring in registration order, falling
// back to a default response.
type MockCompleter struct {
	mu        sync.Mutex
	info      Info
	keys      []string
	responses map[string]string
	fallback  string
	err       error
	calls     []Request
}

// NewMockCompleter constructs a MockCompleter.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{
		info:      Info{Name: "mock-model", Provider: "mock"},
		responses: make(map[string]string),
		fallback:  "Mock completion",
	}
}

// AddResponse registers a canned completion for prompts containing substr.
func (m *MockCompleter) AddResponse(substr, response string) *MockCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.responses[substr]; !exists {
		m.keys = append(m.keys, substr)
	}
	m.responses[substr] = response
	return m
}

// SetDefault sets the response for prompts matching no registered substring.
func (m *MockCompleter) SetDefault(response string) *MockCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = response
	return m
}

// FailWith makes every Complete call return err.
func (m *MockCompleter) FailWith(err error) *MockCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Calls returns the requests seen so far, in order.
func (m *MockCompleter) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// Complete implements Completer.
func (m *MockCompleter) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, fmt.Errorf("mock completion error: %w", m.err)
	}
	text := m.fallback
	for _, k := range m.keys {
		if strings.Contains(req.Prompt, k) {
			text = m.responses[k]
			break
		}
	}
	return &Response{Text: text, Model: m.info.Name, Provider: m.info.Provider}, nil
}

// Info implements Completer.
func (m *MockCompleter) Info() Info { return m.info }
