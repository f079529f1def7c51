package stream

import (
	"context"
	"fmt"
	"strings"

	"github.com/stocksage-ai/stocksage/core"
	"github.com/stocksage-ai/stocksage/logging"
	"github.com/stocksage-ai/stocksage/portfolio"
	"github.com/stocksage-ai/stocksage/stage"
)

// Options configure the streamer.
type Options struct {
	Logger logging.Logger
}

// Streamer runs composite portfolio analyses and re-emits each pipeline
// transition as a discrete wire event, in order.
type Streamer struct {
	adapter *portfolio.Adapter
	opts    Options
}

// NewStreamer creates a streamer over a portfolio adapter.
func NewStreamer(adapter *portfolio.Adapter, optFns ...func(o *Options)) *Streamer {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Streamer{adapter: adapter, opts: opts}
}

// Session is the handle for one streamed run. It is created by NewSession,
// owned by the streamer, and never shared across runs.
type Session struct {
	ID            string
	Holdings      []portfolio.Holding
	TimeFrequency core.TimeFrequency
}

// NewSession validates the portfolio input and creates a stream session.
func (s *Streamer) NewSession(holdings []portfolio.Holding, freq core.TimeFrequency) (*Session, error) {
	if err := portfolio.ValidateHoldings(holdings); err != nil {
		return nil, err
	}
	if !freq.Valid() {
		return nil, core.ErrInvalidTimeFrequency
	}

	hs := make([]portfolio.Holding, len(holdings))
	copy(hs, holdings)

	return &Session{
		ID:            core.NewID(),
		Holdings:      hs,
		TimeFrequency: freq,
	}, nil
}

// observer bridges pipeline stage callbacks into wire events. It stops
// emitting after the first send failure or stage failure so the error
// event, when one fires, is the last event of the stream.
type observer struct {
	sink    Sink
	catalog map[core.StageKind]stage.AgentInfo
	failed  bool
	sendErr error
}

func (o *observer) send(ev Event) {
	if o.failed {
		return
	}
	if err := o.sink.Send(ev); err != nil {
		o.failed = true
		o.sendErr = err
	}
}

// StageStarted implements pipeline.Observer.
func (o *observer) StageStarted(rec *core.AnalysisRecord, s core.Stage, index, total int) {
	info := o.catalog[s.Kind()]

	ev := newEvent(EventAgentStart)
	ev.AgentID = string(s.Kind())
	ev.AgentName = s.Name()
	ev.Content = fmt.Sprintf("%s: %s", s.Name(), info.Description)
	ev.Step = index + 1
	ev.TotalSteps = total
	o.send(ev)

	thinking := newEvent(EventAgentThinking)
	thinking.AgentID = string(s.Kind())
	thinking.Content = fmt.Sprintf("Analyzing portfolio from %s perspective...", strings.ToLower(s.Name()))
	o.send(thinking)
}

// StageFinished implements pipeline.Observer. A stage that left its slot
// empty failed; the stream terminates with an error event instead of an
// agent_complete.
func (o *observer) StageFinished(rec *core.AnalysisRecord, s core.Stage, index, total int) {
	if o.failed {
		return
	}

	sa, ok := rec.StageFor(s.Kind())
	if !ok {
		ev := newEvent(EventError)
		errs := rec.Errors()
		if len(errs) > 0 {
			ev.Message = errs[len(errs)-1]
		} else {
			ev.Message = fmt.Sprintf("%s analysis failed", s.Name())
		}
		o.send(ev)
		o.failed = true
		return
	}

	ev := newEvent(EventAgentComplete)
	ev.AgentID = string(s.Kind())
	ev.AgentName = s.Name()
	ev.Content = fmt.Sprintf("%s analysis complete", s.Name())
	ev.Analysis = sa.Analysis
	ev.Confidence = &sa.Confidence
	ms := sa.ProcessingTime.Milliseconds()
	ev.ProcessingTimeMS = &ms
	o.send(ev)
}

// Stream runs the session's composite analysis, sending each lifecycle
// event to the sink as it happens. For a successful run the sequence ends
// with final_result then session_complete; any failure ends the sequence
// with a single error event instead.
func (s *Streamer) Stream(ctx context.Context, session *Session, sink Sink) (*core.AnalysisRecord, error) {
	catalog := make(map[core.StageKind]stage.AgentInfo)
	for _, info := range stage.Catalog() {
		catalog[info.Kind] = info
	}
	obs := &observer{sink: sink, catalog: catalog}

	start := newEvent(EventSessionStart)
	start.SessionID = session.ID
	start.Portfolio = portfolioSymbols(session.Holdings)
	obs.send(start)

	user := newEvent(EventUserMessage)
	user.Content = fmt.Sprintf("Analyze portfolio with %d stocks for %s timeframe",
		len(session.Holdings), session.TimeFrequency)
	obs.send(user)

	status := newEvent(EventStatusUpdate)
	status.Content = "processing"
	obs.send(status)

	rec, err := s.adapter.AnalyzeCompositeWithObserver(ctx, session.Holdings, session.TimeFrequency, obs)
	if err != nil {
		if !obs.failed {
			ev := newEvent(EventError)
			ev.Message = fmt.Sprintf("Streaming analysis failed: %v", err)
			obs.send(ev)
		}
		return rec, err
	}
	if obs.sendErr != nil {
		return rec, obs.sendErr
	}
	if obs.failed {
		return rec, nil
	}

	result := rec.Result()
	if result == nil {
		ev := newEvent(EventError)
		ev.Message = fmt.Sprintf("Streaming analysis failed: %s", strings.Join(rec.Errors(), "; "))
		obs.send(ev)
		return rec, nil
	}

	final := newEvent(EventFinalResult)
	final.Content = fmt.Sprintf("Portfolio analysis complete! All %d experts have analyzed your %d-stock portfolio.",
		len(stage.Catalog()), len(session.Holdings))
	final.Confidence = &result.ConfidenceScore
	obs.send(final)

	complete := newEvent(EventSessionComplete)
	complete.SessionID = session.ID
	complete.Message = "Portfolio analysis completed successfully"
	obs.send(complete)

	s.opts.Logger.Info("stream session finished",
		"session_id", session.ID, "workflow_id", rec.WorkflowID, "confidence", result.ConfidenceScore)
	return rec, obs.sendErr
}

func portfolioSymbols(holdings []portfolio.Holding) []string {
	out := make([]string, len(holdings))
	for i, h := range holdings {
		out[i] = strings.ToUpper(h.Symbol)
	}
	return out
}
