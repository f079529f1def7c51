package stage

import (
	"github.com/stocksage-ai/stocksage/core"
	"github.com/stocksage-ai/stocksage/marketdata"
	"github.com/stocksage-ai/stocksage/model"
)

const legalSystem = "You are a corporate lawyer and regulatory specialist with expertise in securities law and corporate compliance."

const legalPrompt = `As a Legal Guru specializing in corporate law and regulatory compliance,
analyze the legal and regulatory factors affecting {{.Symbol}} ({{default "N/A" .CompanyName}}).

Company Details:
- Sector: {{default "N/A" .Sector}}
- Industry: {{default "N/A" .Industry}}

Time Frame: {{.TimeFrequency}}
{{if .UserContext}}
Additional Context:
{{.UserContext}}
{{end}}
Analyze:
1. Regulatory compliance status and upcoming changes
2. Industry-specific legal requirements
3. Pending or recent litigation risks
4. Regulatory approval processes (if applicable)
5. Intellectual property and patent considerations
6. ESG (Environmental, Social, Governance) compliance
7. Data privacy and cybersecurity regulations
8. Antitrust and competition law implications

Focus on legal risks and opportunities that could materially impact stock performance.

Respond in JSON format:
{
    "analysis": "detailed legal and regulatory analysis",
    "confidence": 0.80,
    "key_factors": ["factor1", "factor2", "factor3"],
    "legal_risk_level": "low/medium/high",
    "regulatory_outlook": "positive/neutral/negative"
}`

// NewLegal creates the legal expert stage. It assesses regulatory
// compliance and legal risk factors.
func NewLegal(fetcher marketdata.Fetcher, completer model.Completer, optFns ...func(o *Options)) *Expert {
	return newExpert(core.KindLegal, "Legal Guru", "Legal", "legal_complete",
		legalSystem, legalPrompt, fetcher, completer, optFns...)
}
