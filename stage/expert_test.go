package stage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksage-ai/stocksage/core"
	"github.com/stocksage-ai/stocksage/internal/testutil"
	"github.com/stocksage-ai/stocksage/marketdata"
	"github.com/stocksage-ai/stocksage/model"
)

func newExpertFixture(t *testing.T) (*marketdata.StaticFetcher, *model.MockCompleter, *core.AnalysisRecord) {
	t.Helper()
	fetcher := marketdata.NewStaticFetcher().Add(testutil.SnapshotFixture("AAPL"))
	completer := model.NewMockCompleter()
	rec := core.NewAnalysisRecord(core.AnalysisRequest{Symbol: "AAPL", TimeFrequency: core.Freq1M})
	return fetcher, completer, rec
}

func TestExpert_AnalyzeSuccess(t *testing.T) {
	fetcher, completer, rec := newExpertFixture(t)
	completer.SetDefault(testutil.ExpertCompletion("healthy balance sheet", 0.85, "earnings"))

	expert := NewFinance(fetcher, completer)
	require.NoError(t, expert.Analyze(context.Background(), rec))

	a, ok := rec.StageFor(core.KindFinance)
	require.True(t, ok)
	assert.Equal(t, "Finance Guru", a.Name)
	assert.Equal(t, "healthy balance sheet", a.Analysis)
	assert.Equal(t, 0.85, a.Confidence)
	assert.Equal(t, []string{"earnings"}, a.KeyFactors)
	assert.Equal(t, "mock", a.Provider)
	assert.Equal(t, "finance_complete", rec.CurrentStep())
	assert.Empty(t, rec.Errors())
}

func TestExpert_PromptCarriesSymbolAndTimeframe(t *testing.T) {
	fetcher, completer, rec := newExpertFixture(t)
	completer.SetDefault(testutil.ExpertCompletion("ok", 0.7))

	expert := NewQuant(fetcher, completer)
	require.NoError(t, expert.Analyze(context.Background(), rec))

	calls := completer.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "AAPL")
	assert.Contains(t, calls[0].Prompt, "1M")
	assert.Equal(t, quantSystem, calls[0].System)
}

func TestExpert_FetchFailureDowngradesToWarning(t *testing.T) {
	fetcher := marketdata.NewStaticFetcher().FailWith(errors.New("upstream down"))
	completer := model.NewMockCompleter().SetDefault(testutil.ExpertCompletion("limited data view", 0.6))
	rec := core.NewAnalysisRecord(core.AnalysisRequest{Symbol: "AAPL", TimeFrequency: core.Freq1W})

	expert := NewGeopolitics(fetcher, completer)
	require.NoError(t, expert.Analyze(context.Background(), rec))

	_, ok := rec.StageFor(core.KindGeopolitics)
	assert.True(t, ok)
	assert.Empty(t, rec.Errors())
	require.Len(t, rec.Warnings(), 1)
	assert.Contains(t, rec.Warnings()[0], "market data unavailable")
}

func TestExpert_CompleterFailureAppendsErrorAndLeavesSlotEmpty(t *testing.T) {
	fetcher, completer, rec := newExpertFixture(t)
	completer.FailWith(errors.New("rate limited"))

	expert := NewLegal(fetcher, completer)
	require.NoError(t, expert.Analyze(context.Background(), rec))

	_, ok := rec.StageFor(core.KindLegal)
	assert.False(t, ok)
	require.Len(t, rec.Errors(), 1)
	assert.Contains(t, rec.Errors()[0], "Legal analysis failed")
	assert.Equal(t, "initialized", rec.CurrentStep())
}

func TestExpert_CanceledContextPropagates(t *testing.T) {
	fetcher, completer, rec := newExpertFixture(t)
	completer.SetDefault(testutil.ExpertCompletion("ok", 0.7))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	expert := NewFinance(fetcher, completer)
	err := expert.Analyze(ctx, rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpert_UnparseableCompletionUsesFallback(t *testing.T) {
	fetcher, completer, rec := newExpertFixture(t)
	completer.SetDefault("free text with no structure at all")

	expert := NewFinance(fetcher, completer)
	require.NoError(t, expert.Analyze(context.Background(), rec))

	a, ok := rec.StageFor(core.KindFinance)
	require.True(t, ok)
	assert.Equal(t, 0.5, a.Confidence)
	assert.Equal(t, []string{"parsing_error"}, a.KeyFactors)
	assert.Equal(t, "free text with no structure at all", a.Analysis)
}
