package stage

import (
	"context"
	"strconv"
	"time"

	"github.com/stocksage-ai/stocksage/core"
	"github.com/stocksage-ai/stocksage/internal/util"
	"github.com/stocksage-ai/stocksage/logging"
	"github.com/stocksage-ai/stocksage/marketdata"
	"github.com/stocksage-ai/stocksage/model"
)

// Options configure an expert stage.
type Options struct {
	// Logger receives per-stage progress and model-call diagnostics.
	Logger logging.Logger
	// Timeout bounds the model call for this stage. Zero means no
	// stage-level bound beyond the run context.
	Timeout time.Duration
}

// Expert is the shared machinery behind the four domain stages. Each
// concrete constructor fixes the persona, prompt template, and step label.
type Expert struct {
	kind   core.StageKind
	name   string
	label  string
	step   string
	system string
	prompt string

	fetcher   marketdata.Fetcher
	completer model.Completer
	opts      Options
}

func newExpert(kind core.StageKind, name, label, step, system, prompt string, fetcher marketdata.Fetcher, completer model.Completer, optFns ...func(o *Options)) *Expert {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Expert{
		kind:      kind,
		name:      name,
		label:     label,
		step:      step,
		system:    system,
		prompt:    prompt,
		fetcher:   fetcher,
		completer: completer,
		opts:      opts,
	}
}

// Kind implements core.Stage.
func (e *Expert) Kind() core.StageKind { return e.kind }

// Name implements core.Stage.
func (e *Expert) Name() string { return e.name }

// Analyze runs the expert against the record's request. Fetch failures
// downgrade to warnings and the stage proceeds with an empty snapshot.
// Completion failures append to the record's errors and leave the slot
// empty. Only context cancellation returns a non-nil error.
func (e *Expert) Analyze(ctx context.Context, rec *core.AnalysisRecord) error {
	start := time.Now()
	symbol := rec.Request.Symbol

	e.opts.Logger.Info("agent analyzing", "agent", e.name, "symbol", symbol, "workflow_id", rec.WorkflowID)

	snap, err := e.fetcher.Fetch(ctx, symbol)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rec.AppendWarning("market data unavailable for %s: %v", symbol, err)
		snap = &marketdata.Snapshot{Symbol: symbol}
	}

	prompt, err := util.RenderTemplate(e.prompt, promptState(rec, snap))
	if err != nil {
		rec.AppendError("%s analysis failed: %v", e.label, err)
		return nil
	}

	callCtx := ctx
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	resp, err := e.completer.Complete(callCtx, model.Request{
		Prompt: prompt,
		System: e.system,
	})
	info := e.completer.Info()
	logging.LogModelCall(e.opts.Logger, info.Provider, info.Name, time.Since(start), err)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rec.AppendError("%s analysis failed: %v", e.label, err)
		return nil
	}

	outcome := Parse(resp.Text)
	if outcome.Fallback {
		e.opts.Logger.Warn("structured parse failed, using raw completion", "agent", e.name, "symbol", symbol)
	}

	if err := rec.SetStage(e.kind, core.StageAnalysis{
		Kind:           e.kind,
		Name:           e.name,
		Analysis:       outcome.Analysis,
		Confidence:     outcome.Confidence,
		KeyFactors:     outcome.KeyFactors,
		ProcessingTime: time.Since(start),
		Provider:       resp.Provider,
	}); err != nil {
		rec.AppendError("%s analysis failed: %v", e.label, err)
		return nil
	}

	rec.SetCurrentStep(e.step)
	return nil
}

// promptState builds the template state shared by every expert prompt.
// Numeric fields render as empty strings when unknown so the "default"
// template helper can substitute N/A.
func promptState(rec *core.AnalysisRecord, snap *marketdata.Snapshot) map[string]any {
	return map[string]any{
		"Symbol":        rec.Request.Symbol,
		"TimeFrequency": string(rec.Request.TimeFrequency),
		"UserContext":   rec.Request.UserContext,
		"StockData":     snap.JSON(),
		"CompanyName":   snap.CompanyName,
		"Sector":        snap.Sector,
		"Industry":      snap.Industry,
		"MarketCap":     formatInt(snap.MarketCap),
		"CurrentPrice":  formatFloat(snap.CurrentPrice),
		"Beta":          formatFloat(snap.Beta),
		"WeekHigh52":    formatFloat(snap.WeekHigh52),
		"WeekLow52":     formatFloat(snap.WeekLow52),
		"AvgVolume":     formatInt(snap.AvgVolume),
	}
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatInt(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}
