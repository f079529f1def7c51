package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksage-ai/stocksage/core"
)

// Interface compliance (compile-time assertion)
var _ core.Store = (*InMemoryStore)(nil)
var _ core.Store = core.NoOpStore{}

func TestInMemoryStore_SessionLifecycle(t *testing.T) {
	s := NewInMemoryStore()

	require.NoError(t, s.CreateSession("wf-1", "AAPL", core.Freq1M, core.AnalysisTypeStock))
	require.Error(t, s.CreateSession("wf-1", "AAPL", core.Freq1M, core.AnalysisTypeStock))

	row, ok := s.Session("wf-1")
	require.True(t, ok)
	assert.Equal(t, core.StatusPending, row.Status)
	assert.Equal(t, "AAPL", row.Symbol)
	assert.Equal(t, core.AnalysisTypeStock, row.AnalysisType)

	require.NoError(t, s.UpdateSessionStatus("wf-1", core.StatusProcessing, nil, nil))

	confidence := 0.8
	now := time.Now().UTC()
	require.NoError(t, s.UpdateSessionStatus("wf-1", core.StatusCompleted, &confidence, &now))

	row, ok = s.Session("wf-1")
	require.True(t, ok)
	assert.Equal(t, core.StatusCompleted, row.Status)
	require.NotNil(t, row.Confidence)
	assert.Equal(t, 0.8, *row.Confidence)
	require.NotNil(t, row.CompletedAt)

	assert.Equal(t, 1, s.SessionCount())
}

func TestInMemoryStore_UnknownSessionErrors(t *testing.T) {
	s := NewInMemoryStore()

	assert.Error(t, s.UpdateSessionStatus("missing", core.StatusProcessing, nil, nil))
	assert.Error(t, s.AppendStageAnalysis("missing", core.KindFinance, "Finance Guru", "text", time.Second))
	assert.Error(t, s.AppendPredictions("missing", nil))
	assert.Error(t, s.AppendLogMessage("missing", "user_query", "hi", "user", nil))

	_, ok := s.Session("missing")
	assert.False(t, ok)
}

func TestInMemoryStore_AppendsPreserveOrder(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.CreateSession("wf-1", "AAPL", core.Freq1M, core.AnalysisTypeStock))

	require.NoError(t, s.AppendStageAnalysis("wf-1", core.KindFinance, "Finance Guru", "finance text", time.Second))
	require.NoError(t, s.AppendStageAnalysis("wf-1", core.KindQuant, "Quant Dev", "quant text", 2*time.Second))

	stages := s.Stages("wf-1")
	require.Len(t, stages, 2)
	assert.Equal(t, core.KindFinance, stages[0].Kind)
	assert.Equal(t, core.KindQuant, stages[1].Kind)

	require.NoError(t, s.AppendPredictions("wf-1", []core.PredictionPoint{
		{Date: "2025-01-15", Price: 105.5},
		{Date: "2025-01-30", Price: 108.25},
	}))
	assert.Len(t, s.Predictions("wf-1"), 2)

	require.NoError(t, s.AppendLogMessage("wf-1", "user_query", "Analyze AAPL for 1M timeframe", "user",
		map[string]string{"symbol": "AAPL"}))
	require.NoError(t, s.AppendLogMessage("wf-1", "prediction_result", "Stock analysis completed successfully", "ai_agent", nil))

	msgs := s.Messages("wf-1")
	require.Len(t, msgs, 2)
	assert.Equal(t, "user_query", msgs[0].Kind)
	assert.Equal(t, "AAPL", msgs[0].Metadata["symbol"])
	assert.Equal(t, "prediction_result", msgs[1].Kind)
}

func TestInMemoryStore_MetadataIsCopied(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.CreateSession("wf-1", "AAPL", core.Freq1M, core.AnalysisTypeStock))

	meta := map[string]string{"symbol": "AAPL"}
	require.NoError(t, s.AppendLogMessage("wf-1", "user_query", "hi", "user", meta))
	meta["symbol"] = "mutated"

	msgs := s.Messages("wf-1")
	require.Len(t, msgs, 1)
	assert.Equal(t, "AAPL", msgs[0].Metadata["symbol"])
}
