package stage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stocksage-ai/stocksage/core"
	"github.com/stocksage-ai/stocksage/internal/util"
	"github.com/stocksage-ai/stocksage/logging"
	"github.com/stocksage-ai/stocksage/marketdata"
	"github.com/stocksage-ai/stocksage/model"
)

const consolidatorSystem = "You are a senior financial analyst responsible for creating final investment recommendations by synthesizing input from multiple domain experts."

const consolidatorPrompt = `As a Senior Financial Analyst, consolidate the following expert analyses to create a comprehensive stock forecast for {{.Symbol}}.

Current Price: ${{default "N/A" .CurrentPrice}}
Time Frame: {{.TimeFrequency}}

Expert Analyses:
{{.Analyses}}

Create a consolidated forecast that:
1. Weighs all expert opinions appropriately
2. Identifies consensus views and conflicts
3. Provides specific price predictions for the requested time frame
4. Assigns overall confidence score
5. Lists key factors driving the prediction

For time frequency "{{.TimeFrequency}}", generate realistic price points showing progression over time.

Respond in JSON format:
{
    "analysis": "comprehensive consolidation of all expert views",
    "confidence": 0.82,
    "key_factors": ["consolidated key factors"],
    "prediction": {
        "time_frequency": "{{.TimeFrequency}}",
        "predictions": [
            {"date": "2024-01-15", "price": 105.50},
            {"date": "2024-01-30", "price": 108.25}
        ]
    },
    "recommendation": "buy/hold/sell",
    "risk_assessment": "detailed risk analysis"
}`

// Consolidator is the terminal pipeline stage. It synthesizes every
// populated expert slot into the run's final analysis result. Missing
// expert slots are tolerated; their analyses are replaced by a
// placeholder so the result shape stays stable.
type Consolidator struct {
	fetcher   marketdata.Fetcher
	completer model.Completer
	opts      Options
}

// NewConsolidator creates the consolidation stage.
func NewConsolidator(fetcher marketdata.Fetcher, completer model.Completer, optFns ...func(o *Options)) *Consolidator {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Consolidator{fetcher: fetcher, completer: completer, opts: opts}
}

// Kind implements core.Stage.
func (c *Consolidator) Kind() core.StageKind { return core.KindConsolidator }

// Name implements core.Stage.
func (c *Consolidator) Name() string { return "Financial Analyst" }

// expertKinds maps the prompt section labels to the expert slots they read.
var expertKinds = []struct {
	label string
	kind  core.StageKind
}{
	{"finance", core.KindFinance},
	{"geopolitics", core.KindGeopolitics},
	{"legal", core.KindLegal},
	{"quant", core.KindQuant},
}

// Analyze implements core.Stage. It reads whatever expert slots are
// populated, asks the model for a consolidated forecast, and stores the
// final result on the record. A failure here is appended to the record's
// errors and leaves the result unset, which the orchestrator treats as a
// failed run.
func (c *Consolidator) Analyze(ctx context.Context, rec *core.AnalysisRecord) error {
	start := time.Now()
	symbol := rec.Request.Symbol

	c.opts.Logger.Info("consolidating analysis", "agent", c.Name(), "symbol", symbol, "workflow_id", rec.WorkflowID)

	analyses := make(map[string]string)
	for _, e := range expertKinds {
		if a, ok := rec.StageFor(e.kind); ok {
			analyses[e.label] = a.Analysis
		}
	}
	analysesJSON, err := json.MarshalIndent(analyses, "", "  ")
	if err != nil {
		rec.AppendError("Final analysis failed: %v", err)
		return nil
	}

	var currentPrice float64
	if snap, err := c.fetcher.Fetch(ctx, symbol); err == nil {
		currentPrice = snap.CurrentPrice
	} else if ctx.Err() != nil {
		return ctx.Err()
	} else {
		rec.AppendWarning("market data unavailable for %s: %v", symbol, err)
	}

	prompt, err := util.RenderTemplate(consolidatorPrompt, map[string]any{
		"Symbol":        symbol,
		"TimeFrequency": string(rec.Request.TimeFrequency),
		"CurrentPrice":  formatFloat(currentPrice),
		"Analyses":      string(analysesJSON),
	})
	if err != nil {
		rec.AppendError("Final analysis failed: %v", err)
		return nil
	}

	callCtx := ctx
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	resp, err := c.completer.Complete(callCtx, model.Request{
		Prompt: prompt,
		System: consolidatorSystem,
	})
	info := c.completer.Info()
	logging.LogModelCall(c.opts.Logger, info.Provider, info.Name, time.Since(start), err)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rec.AppendError("Final analysis failed: %v", err)
		return nil
	}

	outcome := ParseConsolidation(resp.Text)
	if outcome.Fallback {
		rec.AppendWarning("consolidated forecast unparseable, prediction unavailable")
	}
	prediction := outcome.Prediction
	if prediction.TimeFrequency == "" {
		prediction.TimeFrequency = rec.Request.TimeFrequency
	}

	if err := rec.SetStage(core.KindConsolidator, core.StageAnalysis{
		Kind:           core.KindConsolidator,
		Name:           c.Name(),
		Analysis:       outcome.Analysis,
		Confidence:     outcome.Confidence,
		KeyFactors:     outcome.KeyFactors,
		ProcessingTime: time.Since(start),
		Provider:       resp.Provider,
	}); err != nil {
		rec.AppendError("Final analysis failed: %v", err)
		return nil
	}

	agentAnalyses := make(map[string]string, len(expertKinds)+1)
	for _, e := range expertKinds {
		if a, ok := rec.StageFor(e.kind); ok {
			agentAnalyses[string(e.kind)] = a.Analysis
		} else {
			agentAnalyses[string(e.kind)] = core.PlaceholderAnalysis
		}
	}
	agentAnalyses[string(core.KindConsolidator)] = outcome.Analysis

	if err := rec.SetResult(&core.AnalysisResult{
		Symbol:            symbol,
		Prediction:        prediction,
		AgentAnalyses:     agentAnalyses,
		ConfidenceScore:   outcome.Confidence,
		FactorsConsidered: outcome.KeyFactors,
	}); err != nil {
		rec.AppendError("Final analysis failed: %v", err)
		return nil
	}

	rec.SetCurrentStep("analysis_complete")
	return nil
}
