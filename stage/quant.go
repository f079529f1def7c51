package stage

import (
	"github.com/stocksage-ai/stocksage/core"
	"github.com/stocksage-ai/stocksage/marketdata"
	"github.com/stocksage-ai/stocksage/model"
)

const quantSystem = "You are a quantitative analyst and technical analyst with expertise in statistical modeling, technical indicators, and algorithmic trading strategies."

const quantPrompt = `As a Quantitative Developer and Technical Analyst, analyze {{.Symbol}} using technical indicators and quantitative methods.

Current Stock Data:
- Current Price: ${{default "N/A" .CurrentPrice}}
- Beta: {{default "N/A" .Beta}}
- 52W High: ${{default "N/A" .WeekHigh52}}
- 52W Low: ${{default "N/A" .WeekLow52}}
- Average Volume: {{default "N/A" .AvgVolume}}

Time Frame: {{.TimeFrequency}}
{{if .UserContext}}
Additional Context:
{{.UserContext}}
{{end}}
Perform technical analysis covering:
1. Trend analysis (short, medium, long-term trends)
2. Support and resistance levels
3. Technical indicators (RSI, MACD, moving averages)
4. Volume analysis and patterns
5. Volatility analysis
6. Price momentum and oscillators
7. Chart patterns and their implications
8. Risk metrics and statistical measures

Provide quantitative insights and technical price targets.

Respond in JSON format:
{
    "analysis": "detailed technical and quantitative analysis",
    "confidence": 0.78,
    "key_factors": ["factor1", "factor2", "factor3"],
    "technical_outlook": "bullish/neutral/bearish",
    "support_resistance": {"support": price, "resistance": price},
    "volatility_assessment": "low/medium/high"
}`

// NewQuant creates the quant expert stage. It performs technical analysis
// and statistical assessment of the stock's price behavior.
func NewQuant(fetcher marketdata.Fetcher, completer model.Completer, optFns ...func(o *Options)) *Expert {
	return newExpert(core.KindQuant, "Quant Dev", "Quant", "quant_complete",
		quantSystem, quantPrompt, fetcher, completer, optFns...)
}
