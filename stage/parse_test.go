package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FencedJSON(t *testing.T) {
	text := "Here is my take:\n```json\n{\"analysis\": \"strong buy\", \"confidence\": 0.85, \"key_factors\": [\"earnings\", \"momentum\"]}\n```\nLet me know."

	out := Parse(text)

	assert.False(t, out.Fallback)
	assert.Equal(t, "strong buy", out.Analysis)
	assert.Equal(t, 0.85, out.Confidence)
	assert.Equal(t, []string{"earnings", "momentum"}, out.KeyFactors)
}

func TestParse_BareJSONObject(t *testing.T) {
	text := "Sure. {\"analysis\": \"hold\", \"confidence\": 0.6, \"key_factors\": [\"volatility\"]} Anything else?"

	out := Parse(text)

	assert.False(t, out.Fallback)
	assert.Equal(t, "hold", out.Analysis)
	assert.Equal(t, 0.6, out.Confidence)
}

func TestParse_FreeTextFallback(t *testing.T) {
	text := "The stock looks broadly positive over the next month."

	out := Parse(text)

	assert.True(t, out.Fallback)
	assert.Equal(t, text, out.Analysis)
	assert.Equal(t, 0.5, out.Confidence)
	assert.Equal(t, []string{"parsing_error"}, out.KeyFactors)
}

func TestParse_MalformedJSONFallsBack(t *testing.T) {
	text := "{\"analysis\": \"broken\", \"confidence\": }"

	out := Parse(text)

	assert.True(t, out.Fallback)
	assert.Equal(t, text, out.Analysis)
	assert.Equal(t, 0.5, out.Confidence)
}

func TestParse_JSONWithoutAnalysisFallsBack(t *testing.T) {
	text := "{\"confidence\": 0.9}"

	out := Parse(text)

	assert.True(t, out.Fallback)
	assert.Equal(t, 0.5, out.Confidence)
}

func TestParseConsolidation_WithPrediction(t *testing.T) {
	text := `{"analysis": "consensus bullish", "confidence": 0.82, "key_factors": ["consensus"], "prediction": {"time_frequency": "1M", "predictions": [{"date": "2025-01-15", "price": 105.5}, {"date": "2025-01-30", "price": 108.25}]}}`

	out := ParseConsolidation(text)

	require.False(t, out.Fallback)
	assert.Equal(t, "consensus bullish", out.Analysis)
	assert.Equal(t, 0.82, out.Confidence)
	assert.Equal(t, "1M", string(out.Prediction.TimeFrequency))
	require.Len(t, out.Prediction.Points, 2)
	assert.Equal(t, "2025-01-15", out.Prediction.Points[0].Date)
	assert.Equal(t, 105.5, out.Prediction.Points[0].Price)
}

func TestParseConsolidation_Fallback(t *testing.T) {
	out := ParseConsolidation("the model rambled without structure")

	assert.True(t, out.Fallback)
	assert.Equal(t, 0.5, out.Confidence)
	assert.Empty(t, out.Prediction.Points)
}
