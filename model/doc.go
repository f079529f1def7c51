// Package model defines the completion-service boundary used by the analysis
// stages, plus a deterministic mock for tests. Concrete providers live in the
// openai and anthropic subpackages.
package model
