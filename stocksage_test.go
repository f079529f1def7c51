package stocksage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksage-ai/stocksage/core"
	"github.com/stocksage-ai/stocksage/internal/testutil"
	"github.com/stocksage-ai/stocksage/marketdata"
	"github.com/stocksage-ai/stocksage/model"
	"github.com/stocksage-ai/stocksage/portfolio"
	"github.com/stocksage-ai/stocksage/stream"
)

func newTestSage(t *testing.T) *StockSage {
	t.Helper()
	completer := model.NewMockCompleter().
		AddResponse("consolidate the following expert analyses",
			testutil.ConsolidationCompletion("consolidated view", 0.8, core.Freq1M, nil)).
		SetDefault(testutil.ExpertCompletion("expert view", 0.8))

	sage, err := New(func(o *Options) {
		o.Completer = completer
		o.Fetcher = marketdata.NewStaticFetcher().Add(testutil.SnapshotFixture("AAPL"))
	})
	require.NoError(t, err)
	return sage
}

func TestNew_RequiresCompleter(t *testing.T) {
	_, err := New()
	require.Error(t, err)
}

func TestStockSage_AnalyzeStock(t *testing.T) {
	sage := newTestSage(t)

	rec, err := sage.AnalyzeStock(context.Background(), "aapl", core.Freq1M, "")
	require.NoError(t, err)

	result := rec.Result()
	require.NotNil(t, result)
	assert.Equal(t, "AAPL", result.Symbol)
	assert.Equal(t, 0.8, result.ConfidenceScore)

	state, err := sage.WorkflowState(rec.WorkflowID)
	require.NoError(t, err)
	assert.True(t, state.HasResult)
}

func TestStockSage_AnalyzePortfolio(t *testing.T) {
	sage := newTestSage(t)

	holdings := []portfolio.Holding{
		{Symbol: "AAPL", Allocation: 60},
		{Symbol: "MSFT", Allocation: 40},
	}

	rec, err := sage.AnalyzePortfolio(context.Background(), holdings, core.Freq1M)
	require.NoError(t, err)

	result := rec.Result()
	require.NotNil(t, result)
	assert.Equal(t, "Portfolio_2_stocks", result.Symbol)
}

func TestStockSage_StreamPortfolio(t *testing.T) {
	sage := newTestSage(t)

	holdings := []portfolio.Holding{
		{Symbol: "AAPL", Allocation: 60},
		{Symbol: "MSFT", Allocation: 40},
	}

	var kinds []stream.EventKind
	sink := stream.SinkFunc(func(ev stream.Event) error {
		kinds = append(kinds, ev.Type)
		return nil
	})

	rec, err := sage.StreamPortfolio(context.Background(), holdings, core.Freq1M, sink)
	require.NoError(t, err)
	require.NotNil(t, rec.Result())

	require.NotEmpty(t, kinds)
	assert.Equal(t, stream.EventSessionStart, kinds[0])
	assert.Equal(t, stream.EventSessionComplete, kinds[len(kinds)-1])
}

func TestStockSage_StreamPortfolioRejectsBadInput(t *testing.T) {
	sage := newTestSage(t)

	_, err := sage.StreamPortfolio(context.Background(), []portfolio.Holding{
		{Symbol: "AAPL", Allocation: 10},
	}, core.Freq1M, stream.SinkFunc(func(stream.Event) error { return nil }))
	require.Error(t, err)
}
