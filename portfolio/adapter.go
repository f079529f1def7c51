package portfolio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stocksage-ai/stocksage/core"
	"github.com/stocksage-ai/stocksage/logging"
	"github.com/stocksage-ai/stocksage/pipeline"
)

// Runner is the slice of the orchestrator the adapter needs.
type Runner interface {
	Run(ctx context.Context, req core.AnalysisRequest) (*core.AnalysisRecord, error)
	RunWithObserver(ctx context.Context, req core.AnalysisRequest, obs pipeline.Observer) (*core.AnalysisRecord, error)
}

// Fixed factor labels used by per-holding mode instead of model-derived
// factors, which do not aggregate meaningfully across holdings.
var perHoldingFactors = []string{
	"portfolio_diversification",
	"position_sizing",
	"sector_balance",
	"allocation_discipline",
}

// AdapterOptions configure the portfolio adapter.
type AdapterOptions struct {
	Logger logging.Logger
}

// Adapter runs portfolio analyses through a single-symbol pipeline. The
// composite strategy is the preferred mode; the per-holding strategy is
// kept for callers that need per-symbol analysis text.
type Adapter struct {
	runner Runner
	opts   AdapterOptions
}

// NewAdapter creates a portfolio adapter over a pipeline runner.
func NewAdapter(runner Runner, optFns ...func(o *AdapterOptions)) *Adapter {
	opts := AdapterOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Adapter{runner: runner, opts: opts}
}

// AnalyzeComposite runs the pipeline once over a synthetic request
// covering the whole portfolio and relabels the result symbol.
func (a *Adapter) AnalyzeComposite(ctx context.Context, holdings []Holding, freq core.TimeFrequency) (*core.AnalysisRecord, error) {
	return a.AnalyzeCompositeWithObserver(ctx, holdings, freq, nil)
}

// AnalyzeCompositeWithObserver is AnalyzeComposite with stage lifecycle
// callbacks for streaming frontends.
func (a *Adapter) AnalyzeCompositeWithObserver(ctx context.Context, holdings []Holding, freq core.TimeFrequency, obs pipeline.Observer) (*core.AnalysisRecord, error) {
	req, err := CompositeRequest(holdings, freq)
	if err != nil {
		return nil, err
	}

	a.opts.Logger.Info("starting composite portfolio analysis",
		"holdings", len(holdings), "time_frequency", string(freq))

	rec, err := a.runner.RunWithObserver(ctx, req, obs)
	if err != nil {
		return rec, err
	}

	if result := rec.Result(); result != nil {
		result.Symbol = ResultSymbol(len(holdings))
	}
	return rec, nil
}

// AnalyzePerHolding runs the full pipeline once per holding and merges the
// stage outputs into one portfolio-level record. Failed holdings become
// warnings and are excluded from the merge; confidences are averaged
// across the holdings that succeeded.
func (a *Adapter) AnalyzePerHolding(ctx context.Context, holdings []Holding, freq core.TimeFrequency) (*core.AnalysisRecord, error) {
	if err := ValidateHoldings(holdings); err != nil {
		return nil, err
	}
	if !freq.Valid() {
		return nil, core.ErrInvalidTimeFrequency
	}

	merged := core.NewAnalysisRecord(core.AnalysisRequest{
		Symbol:        CompositeLabel(holdings),
		TimeFrequency: freq,
		Composite:     true,
	})

	type holdingRun struct {
		holding Holding
		rec     *core.AnalysisRecord
	}
	var succeeded []holdingRun

	for _, h := range holdings {
		req := core.NewAnalysisRequest(h.Symbol, freq, "")

		rec, err := a.runner.Run(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return merged, err
			}
			merged.AppendWarning("analysis for %s failed: %v", req.Symbol, err)
			continue
		}
		if rec.Result() == nil {
			merged.AppendWarning("analysis for %s failed: %s", req.Symbol, strings.Join(rec.Errors(), "; "))
			continue
		}
		succeeded = append(succeeded, holdingRun{holding: h, rec: rec})
	}

	if len(succeeded) == 0 {
		merged.AppendError("Portfolio analysis failed: no holdings analyzed successfully")
		merged.SetCurrentStep("workflow_failed")
		merged.Complete(time.Now())
		return merged, nil
	}

	for _, kind := range core.PipelineOrder() {
		var (
			parts      []string
			confidence float64
			duration   time.Duration
			count      int
			name       string
		)
		for _, run := range succeeded {
			sa, ok := run.rec.StageFor(kind)
			if !ok {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s (%s%%): %s",
				run.rec.Request.Symbol, formatAllocation(run.holding.Allocation), sa.Analysis))
			confidence += sa.Confidence
			duration += sa.ProcessingTime
			name = sa.Name
			count++
		}
		if count == 0 {
			continue
		}
		if err := merged.SetStage(kind, core.StageAnalysis{
			Kind:           kind,
			Name:           name,
			Analysis:       strings.Join(parts, "\n\n"),
			Confidence:     confidence / float64(count),
			KeyFactors:     perHoldingFactors,
			ProcessingTime: duration,
		}); err != nil {
			merged.AppendWarning("merge for %s skipped: %v", kind, err)
		}
	}

	var overall float64
	for _, run := range succeeded {
		overall += run.rec.Result().ConfidenceScore
	}
	overall /= float64(len(succeeded))

	agentAnalyses := make(map[string]string, len(core.PipelineOrder()))
	for _, kind := range core.PipelineOrder() {
		if sa, ok := merged.StageFor(kind); ok {
			agentAnalyses[string(kind)] = sa.Analysis
		} else {
			agentAnalyses[string(kind)] = core.PlaceholderAnalysis
		}
	}

	if err := merged.SetResult(&core.AnalysisResult{
		Symbol:            ResultSymbol(len(holdings)),
		Prediction:        core.Prediction{TimeFrequency: freq},
		AgentAnalyses:     agentAnalyses,
		ConfidenceScore:   overall,
		FactorsConsidered: perHoldingFactors,
	}); err != nil {
		return merged, err
	}

	merged.SetCurrentStep("analysis_complete")
	merged.Complete(time.Now())

	a.opts.Logger.Info("per-holding portfolio analysis merged",
		"holdings", len(holdings), "succeeded", len(succeeded), "confidence", overall)
	return merged, nil
}
