// Package core defines the shared data model for the multi-agent stock
// analysis pipeline: the immutable AnalysisRequest, the mutable
// AnalysisRecord threaded through the stages of one run, the per-stage
// StageAnalysis outputs, the terminal AnalysisResult, and the Stage and
// Store contracts the orchestrator is built against.
package core
