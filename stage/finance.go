package stage

import (
	"github.com/stocksage-ai/stocksage/core"
	"github.com/stocksage-ai/stocksage/marketdata"
	"github.com/stocksage-ai/stocksage/model"
)

const financeSystem = "You are a senior financial analyst with 20+ years of experience in equity research and valuation."

const financePrompt = `Analyze the stock {{.Symbol}} for investment potential.

Stock Data:
{{.StockData}}

Time Frame: {{.TimeFrequency}}
{{if .UserContext}}
Additional Context:
{{.UserContext}}
{{end}}
Provide a comprehensive financial analysis covering:
1. Financial health and key metrics
2. Valuation assessment (overvalued/undervalued)
3. Revenue and earnings trends
4. Competitive position
5. Investment recommendation with reasoning

Focus on fundamental analysis and financial performance indicators.
Be specific about numbers and provide clear reasoning.

Respond in JSON format:
{
    "analysis": "detailed financial analysis",
    "confidence": 0.85,
    "key_factors": ["factor1", "factor2", "factor3"],
    "recommendation": "buy/hold/sell",
    "price_target_reasoning": "explanation of price movement expectations"
}`

// NewFinance creates the finance expert stage. It analyzes financial
// metrics, valuation, and market fundamentals.
func NewFinance(fetcher marketdata.Fetcher, completer model.Completer, optFns ...func(o *Options)) *Expert {
	return newExpert(core.KindFinance, "Finance Guru", "Finance", "finance_complete",
		financeSystem, financePrompt, fetcher, completer, optFns...)
}
