package core

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecord(t *testing.T) *AnalysisRecord {
	t.Helper()
	return NewAnalysisRecord(AnalysisRequest{Symbol: "AAPL", TimeFrequency: Freq1M})
}

func TestNewAnalysisRecord_Defaults(t *testing.T) {
	rec := newTestRecord(t)

	assert.NotEmpty(t, rec.WorkflowID)
	assert.Equal(t, "initialized", rec.CurrentStep())
	assert.Empty(t, rec.Errors())
	assert.Empty(t, rec.Warnings())
	assert.Nil(t, rec.Result())
	assert.Nil(t, rec.CompletedAt())
	assert.False(t, rec.StartedAt.IsZero())
}

func TestAnalysisRecord_UniqueWorkflowIDs(t *testing.T) {
	a := newTestRecord(t)
	b := newTestRecord(t)
	assert.NotEqual(t, a.WorkflowID, b.WorkflowID)
}

func TestAnalysisRecord_SetStageOncePerSlot(t *testing.T) {
	rec := newTestRecord(t)

	require.NoError(t, rec.SetStage(KindFinance, StageAnalysis{Kind: KindFinance, Analysis: "first"}))
	err := rec.SetStage(KindFinance, StageAnalysis{Kind: KindFinance, Analysis: "second"})
	require.Error(t, err)

	a, ok := rec.StageFor(KindFinance)
	require.True(t, ok)
	assert.Equal(t, "first", a.Analysis)
}

func TestAnalysisRecord_ConcurrentAppendsMerge(t *testing.T) {
	rec := newTestRecord(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			rec.AppendError("stage failure")
		}()
		go func() {
			defer wg.Done()
			rec.AppendWarning("degraded input")
		}()
	}
	wg.Wait()

	assert.Len(t, rec.Errors(), 10)
	assert.Len(t, rec.Warnings(), 10)
	assert.Equal(t, 10, rec.ErrorCount())
}

func TestAnalysisRecord_ErrorsReturnsCopy(t *testing.T) {
	rec := newTestRecord(t)
	rec.AppendError("original")

	errs := rec.Errors()
	errs[0] = "mutated"

	assert.Equal(t, []string{"original"}, rec.Errors())
}

func TestAnalysisRecord_SetResultOnce(t *testing.T) {
	rec := newTestRecord(t)

	require.NoError(t, rec.SetResult(&AnalysisResult{Symbol: "AAPL", ConfidenceScore: 0.8}))
	err := rec.SetResult(&AnalysisResult{Symbol: "AAPL", ConfidenceScore: 0.2})
	require.Error(t, err)

	assert.Equal(t, 0.8, rec.Result().ConfidenceScore)
}

func TestAnalysisRecord_CompleteFirstCallWins(t *testing.T) {
	rec := newTestRecord(t)

	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec.Complete(first)
	rec.Complete(first.Add(time.Hour))

	require.NotNil(t, rec.CompletedAt())
	assert.Equal(t, first, *rec.CompletedAt())
}

func TestAnalysisRecord_Summary(t *testing.T) {
	rec := newTestRecord(t)

	require.NoError(t, rec.SetStage(KindFinance, StageAnalysis{Kind: KindFinance, ProcessingTime: 2 * time.Second}))
	require.NoError(t, rec.SetStage(KindQuant, StageAnalysis{Kind: KindQuant, ProcessingTime: 3 * time.Second}))
	rec.AppendError("Legal analysis failed: timeout")
	rec.AppendWarning("market data unavailable")

	s := rec.Summary()
	assert.Equal(t, 5, s.TotalStages)
	assert.Equal(t, 2, s.SuccessfulStages)
	assert.Equal(t, 5*time.Second, s.TotalProcessingTime)
	assert.Len(t, s.Errors, 1)
	assert.Len(t, s.Warnings, 1)
}

func TestPipelineOrder_ConsolidatorLast(t *testing.T) {
	order := PipelineOrder()
	require.Len(t, order, 5)
	assert.Equal(t, KindConsolidator, order[len(order)-1])
}
