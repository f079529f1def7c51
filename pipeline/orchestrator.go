// Package pipeline runs the five-stage analysis workflow: the four domain
// experts in fixed order, then the consolidator. Stage failures accumulate
// on the record and never stop the run by themselves; the run fails only
// when the consolidator produces no result, when the optional error budget
// is exhausted, or when the context is canceled.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/stocksage-ai/stocksage/core"
	"github.com/stocksage-ai/stocksage/logging"
	"github.com/stocksage-ai/stocksage/marketdata"
	"github.com/stocksage-ai/stocksage/model"
	"github.com/stocksage-ai/stocksage/stage"
)

// Observer receives stage lifecycle callbacks during a run. Callbacks fire
// on the run's goroutine, strictly in stage order.
type Observer interface {
	StageStarted(rec *core.AnalysisRecord, s core.Stage, index, total int)
	StageFinished(rec *core.AnalysisRecord, s core.Stage, index, total int)
}

// Options configure the orchestrator.
type Options struct {
	// Store persists sessions, stage analyses, predictions, and log
	// messages. Defaults to core.NoOpStore.
	Store core.Store
	// Logger receives run progress. Defaults to NoOpLogger.
	Logger logging.Logger
	// MaxErrorsBeforeAbort stops the pipeline once the record has
	// accumulated more than this many errors. Zero disables the budget.
	MaxErrorsBeforeAbort int
}

// Orchestrator drives analysis runs and keeps an in-memory registry of
// every record it has started, so callers can query workflow state by id.
type Orchestrator struct {
	stages []core.Stage
	opts   Options

	mu      sync.RWMutex
	records map[string]*core.AnalysisRecord
}

// New creates an orchestrator over the given stages. Stages run in slice
// order; use DefaultStages for the standard five-stage pipeline.
func New(stages []core.Stage, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Store:  core.NoOpStore{},
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Orchestrator{
		stages:  stages,
		opts:    opts,
		records: make(map[string]*core.AnalysisRecord),
	}
}

// DefaultStages builds the standard pipeline: finance, geopolitics, legal,
// quant, then the consolidator, all sharing the same fetcher and completer.
func DefaultStages(fetcher marketdata.Fetcher, completer model.Completer, optFns ...func(o *stage.Options)) []core.Stage {
	return []core.Stage{
		stage.NewFinance(fetcher, completer, optFns...),
		stage.NewGeopolitics(fetcher, completer, optFns...),
		stage.NewLegal(fetcher, completer, optFns...),
		stage.NewQuant(fetcher, completer, optFns...),
		stage.NewConsolidator(fetcher, completer, optFns...),
	}
}

// Run executes the pipeline for one request. Validation failures return an
// error before any record or session exists. After that point the run
// always returns a record: stage failures land in the record's error
// accumulator, and a missing result marks the run failed rather than
// erroring. The returned error is non-nil only for invalid requests and
// context cancellation.
func (o *Orchestrator) Run(ctx context.Context, req core.AnalysisRequest) (*core.AnalysisRecord, error) {
	return o.RunWithObserver(ctx, req, nil)
}

// RunWithObserver is Run with stage lifecycle callbacks, used by streaming
// frontends to emit ordered progress events.
func (o *Orchestrator) RunWithObserver(ctx context.Context, req core.AnalysisRequest, obs Observer) (*core.AnalysisRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rec := core.NewAnalysisRecord(req)
	o.register(rec)

	o.opts.Logger.Info("starting multi-agent stock analysis",
		"workflow_id", rec.WorkflowID, "symbol", req.Symbol, "time_frequency", string(req.TimeFrequency))

	analysisType := core.AnalysisTypeStock
	if req.Composite {
		analysisType = core.AnalysisTypePortfolio
	}
	o.persist(rec, func() error {
		return o.opts.Store.CreateSession(rec.WorkflowID, req.Symbol, req.TimeFrequency, analysisType)
	})
	o.persist(rec, func() error {
		return o.opts.Store.AppendLogMessage(rec.WorkflowID, "user_query",
			fmt.Sprintf("Analyze %s for %s timeframe", req.Symbol, req.TimeFrequency), "user",
			map[string]string{
				"symbol":         req.Symbol,
				"time_frequency": string(req.TimeFrequency),
				"user_context":   req.UserContext,
			})
	})
	o.persist(rec, func() error {
		return o.opts.Store.UpdateSessionStatus(rec.WorkflowID, core.StatusProcessing, nil, nil)
	})

	total := len(o.stages)
	for i, s := range o.stages {
		if o.opts.MaxErrorsBeforeAbort > 0 && rec.ErrorCount() > o.opts.MaxErrorsBeforeAbort {
			o.opts.Logger.Error("too many errors, stopping workflow",
				"workflow_id", rec.WorkflowID, "errors", rec.ErrorCount())
			break
		}

		if obs != nil {
			obs.StageStarted(rec, s, i, total)
		}

		if err := s.Analyze(ctx, rec); err != nil {
			rec.AppendError("Workflow execution failed: %v", err)
			rec.SetCurrentStep("workflow_failed")
			return o.finish(rec), err
		}

		if a, ok := rec.StageFor(s.Kind()); ok {
			o.persist(rec, func() error {
				return o.opts.Store.AppendStageAnalysis(rec.WorkflowID, a.Kind, a.Name, a.Analysis, a.ProcessingTime)
			})
		}

		if obs != nil {
			obs.StageFinished(rec, s, i, total)
		}
	}

	if result := rec.Result(); result != nil {
		if len(result.Prediction.Points) > 0 {
			o.persist(rec, func() error {
				return o.opts.Store.AppendPredictions(rec.WorkflowID, result.Prediction.Points)
			})
		}
		o.persist(rec, func() error {
			return o.opts.Store.AppendLogMessage(rec.WorkflowID, "prediction_result",
				"Stock analysis completed successfully", "ai_agent",
				map[string]string{
					"confidence_score":   fmt.Sprintf("%.2f", result.ConfidenceScore),
					"factors_considered": strings.Join(result.FactorsConsidered, ", "),
				})
		})
	}

	rec = o.finish(rec)
	o.opts.Logger.Info("stock analysis completed",
		"workflow_id", rec.WorkflowID, "current_step", rec.CurrentStep(), "errors", rec.ErrorCount())
	return rec, nil
}

// finish stamps the terminal state on the record and persists the final
// session status.
func (o *Orchestrator) finish(rec *core.AnalysisRecord) *core.AnalysisRecord {
	now := time.Now().UTC()
	rec.Complete(now)

	if result := rec.Result(); result != nil {
		confidence := result.ConfidenceScore
		o.persist(rec, func() error {
			return o.opts.Store.UpdateSessionStatus(rec.WorkflowID, core.StatusCompleted, &confidence, &now)
		})
	} else {
		o.persist(rec, func() error {
			return o.opts.Store.UpdateSessionStatus(rec.WorkflowID, core.StatusFailed, nil, &now)
		})
	}
	return rec
}

// persist runs one store call. Persistence failures never fail a run; they
// are logged and the run continues on the in-memory record.
func (o *Orchestrator) persist(rec *core.AnalysisRecord, fn func() error) {
	if err := fn(); err != nil {
		o.opts.Logger.Warn("store operation failed", "workflow_id", rec.WorkflowID, "error", err.Error())
	}
}

func (o *Orchestrator) register(rec *core.AnalysisRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records[rec.WorkflowID] = rec
}

// WorkflowState is a point-in-time view of one run, for status queries.
type WorkflowState struct {
	WorkflowID  string   `json:"workflow_id"`
	CurrentStep string   `json:"current_step"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	HasResult   bool     `json:"has_result"`
	Completed   bool     `json:"completed"`
}

// WorkflowState returns the current state of a run by workflow id. Records
// stay queryable after completion.
func (o *Orchestrator) WorkflowState(workflowID string) (*WorkflowState, error) {
	o.mu.RLock()
	rec, ok := o.records[workflowID]
	o.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("workflow %s not found", workflowID)
	}

	return &WorkflowState{
		WorkflowID:  rec.WorkflowID,
		CurrentStep: rec.CurrentStep(),
		Errors:      rec.Errors(),
		Warnings:    rec.Warnings(),
		HasResult:   rec.Result() != nil,
		Completed:   rec.CompletedAt() != nil,
	}, nil
}
