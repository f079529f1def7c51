// Package stocksage provides a high-level façade over the analysis
// pipeline and its services (market data, completion backends, persistence
// & logging) for running multi-agent stock and portfolio analyses. Most
// applications interact with this package by:
//  1. Creating a StockSage via New() (optionally overriding default services)
//  2. Running analyses synchronously (AnalyzeStock, AnalyzePortfolio)
//  3. Or streaming portfolio progress events (StreamPortfolio)
//
// The façade delegates orchestration to pipeline.Orchestrator while keeping
// setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a real
// completion backend, a durable store, and a structured logger.
package stocksage

import (
	"context"
	"fmt"
	"os"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/stocksage-ai/stocksage/config"
	"github.com/stocksage-ai/stocksage/core"
	"github.com/stocksage-ai/stocksage/logging"
	"github.com/stocksage-ai/stocksage/marketdata"
	"github.com/stocksage-ai/stocksage/model"
	"github.com/stocksage-ai/stocksage/model/anthropic"
	"github.com/stocksage-ai/stocksage/model/openai"
	"github.com/stocksage-ai/stocksage/pipeline"
	"github.com/stocksage-ai/stocksage/portfolio"
	"github.com/stocksage-ai/stocksage/stage"
	"github.com/stocksage-ai/stocksage/store"
	"github.com/stocksage-ai/stocksage/stream"
)

// Options configures the StockSage instance.
type Options struct {
	// Fetcher retrieves market data snapshots for symbols. Defaults to the
	// REST client against the public quote endpoint.
	Fetcher marketdata.Fetcher

	// Completer is the completion backend shared by all stages. Required
	// unless constructed via FromConfig; there is no implicit provider
	// fallback.
	Completer model.Completer

	// Store persists sessions, stage analyses, predictions, and log
	// messages. Defaults to an in-memory store.
	Store core.Store

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// MaxErrorsBeforeAbort stops a run once its record has accumulated more
	// than this many errors. Zero disables the budget.
	MaxErrorsBeforeAbort int

	// StageTimeout bounds each stage's model call. Zero means unbounded.
	StageTimeout time.Duration
}

// StockSage is the high-level façade aggregating the pipeline and its
// portfolio and streaming frontends.
type StockSage struct {
	opts         Options
	orchestrator *pipeline.Orchestrator
	adapter      *portfolio.Adapter
	streamer     *stream.Streamer
}

// New creates a new StockSage instance with optional overrides. Any unset
// service is initialized with a sensible default; the completer has no
// default and must be supplied.
func New(optFns ...func(o *Options)) (*StockSage, error) {
	opts := Options{
		Fetcher: marketdata.NewRestClient(),
		Store:   store.NewInMemoryStore(),
		Logger:  logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Completer == nil {
		return nil, fmt.Errorf("completer is required")
	}

	stages := pipeline.DefaultStages(opts.Fetcher, opts.Completer, func(o *stage.Options) {
		o.Logger = opts.Logger
		o.Timeout = opts.StageTimeout
	})

	orch := pipeline.New(stages, func(o *pipeline.Options) {
		o.Store = opts.Store
		o.Logger = opts.Logger
		o.MaxErrorsBeforeAbort = opts.MaxErrorsBeforeAbort
	})

	adapter := portfolio.NewAdapter(orch, func(o *portfolio.AdapterOptions) {
		o.Logger = opts.Logger
	})

	streamer := stream.NewStreamer(adapter, func(o *stream.Options) {
		o.Logger = opts.Logger
	})

	return &StockSage{
		opts:         opts,
		orchestrator: orch,
		adapter:      adapter,
		streamer:     streamer,
	}, nil
}

// FromConfig creates a StockSage whose completion backend is selected by
// configuration. Provider selection happens here, at composition time, not
// inside the pipeline.
func FromConfig(cfg *config.Config, optFns ...func(o *Options)) (*StockSage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var completer model.Completer
	switch cfg.Provider {
	case config.ProviderOpenAI:
		completer = openai.New(func(o *openai.Options) {
			if cfg.OpenAIModel != "" {
				o.Model = cfg.OpenAIModel
			}
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = cfg.MaxTokens
		})
	case config.ProviderAnthropic:
		completer = anthropic.New(func(o *anthropic.Options) {
			if cfg.AnthropicModel != "" {
				o.Model = anthropicsdk.Model(cfg.AnthropicModel)
			}
			o.Temperature = cfg.Temperature
			o.MaxTokens = cfg.MaxTokens
		})
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}

	fns := append([]func(o *Options){func(o *Options) {
		o.Completer = completer
		o.Logger = logging.NewJSONLogger(cfg.SlogLevel(), os.Stderr)
		o.StageTimeout = cfg.StageTimeout
		o.MaxErrorsBeforeAbort = cfg.MaxErrorsBeforeAbort
		if cfg.MarketDataBaseURL != "" {
			o.Fetcher = marketdata.NewRestClient(func(ro *marketdata.RestClientOptions) {
				ro.BaseURL = cfg.MarketDataBaseURL
			})
		}
	}}, optFns...)

	return New(fns...)
}

// AnalyzeStock runs the five-stage pipeline for one symbol and returns the
// completed analysis record. Stage failures accumulate on the record; the
// returned error is non-nil only for invalid input or cancellation.
func (s *StockSage) AnalyzeStock(ctx context.Context, symbol string, freq core.TimeFrequency, userContext string) (*core.AnalysisRecord, error) {
	req := core.NewAnalysisRequest(symbol, freq, userContext)
	return s.orchestrator.Run(ctx, req)
}

// AnalyzePortfolio runs a composite portfolio analysis: one pipeline run
// over a synthetic request covering every holding.
func (s *StockSage) AnalyzePortfolio(ctx context.Context, holdings []portfolio.Holding, freq core.TimeFrequency) (*core.AnalysisRecord, error) {
	return s.adapter.AnalyzeComposite(ctx, holdings, freq)
}

// AnalyzePortfolioPerHolding runs the legacy per-holding strategy: one full
// pipeline run per holding, merged into a portfolio-level record.
func (s *StockSage) AnalyzePortfolioPerHolding(ctx context.Context, holdings []portfolio.Holding, freq core.TimeFrequency) (*core.AnalysisRecord, error) {
	return s.adapter.AnalyzePerHolding(ctx, holdings, freq)
}

// StreamPortfolio runs a composite portfolio analysis while emitting
// ordered progress events to the sink.
func (s *StockSage) StreamPortfolio(ctx context.Context, holdings []portfolio.Holding, freq core.TimeFrequency, sink stream.Sink) (*core.AnalysisRecord, error) {
	session, err := s.streamer.NewSession(holdings, freq)
	if err != nil {
		return nil, err
	}
	return s.streamer.Stream(ctx, session, sink)
}

// WorkflowState returns the current state of a run by workflow id.
func (s *StockSage) WorkflowState(workflowID string) (*pipeline.WorkflowState, error) {
	return s.orchestrator.WorkflowState(workflowID)
}
