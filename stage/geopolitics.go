package stage

import (
	"github.com/stocksage-ai/stocksage/core"
	"github.com/stocksage-ai/stocksage/marketdata"
	"github.com/stocksage-ai/stocksage/model"
)

const geopoliticsSystem = "You are a geopolitical risk analyst specializing in how global events impact financial markets and individual stocks."

const geopoliticsPrompt = `As a Geopolitics Guru, analyze how global events and geopolitical factors
might impact the stock {{.Symbol}} ({{default "N/A" .CompanyName}}).

Company Details:
- Sector: {{default "N/A" .Sector}}
- Industry: {{default "N/A" .Industry}}
- Market Cap: {{default "N/A" .MarketCap}}

Time Frame: {{.TimeFrequency}}
{{if .UserContext}}
Additional Context:
{{.UserContext}}
{{end}}
Analyze the impact of:
1. Current geopolitical tensions and conflicts
2. Trade policies and international relations
3. Regulatory changes in key markets
4. Currency fluctuations and their effects
5. Supply chain disruptions from global events
6. International market access and expansion risks

Consider recent global events and their potential impact on this specific company and sector.

Respond in JSON format:
{
    "analysis": "detailed geopolitical analysis",
    "confidence": 0.75,
    "key_factors": ["factor1", "factor2", "factor3"],
    "risk_level": "low/medium/high",
    "global_events_impact": "explanation of how current events affect the stock"
}`

// NewGeopolitics creates the geopolitics expert stage. It evaluates the
// impact of global events and geopolitical risk on the stock.
func NewGeopolitics(fetcher marketdata.Fetcher, completer model.Completer, optFns ...func(o *Options)) *Expert {
	return newExpert(core.KindGeopolitics, "Geopolitics Guru", "Geopolitics", "geopolitics_complete",
		geopoliticsSystem, geopoliticsPrompt, fetcher, completer, optFns...)
}
