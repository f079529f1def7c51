package stage

import "github.com/stocksage-ai/stocksage/core"

// AgentInfo describes one pipeline agent for discovery surfaces.
type AgentInfo struct {
	Name        string         `json:"name"`
	Kind        core.StageKind `json:"type"`
	Description string         `json:"description"`
}

// Catalog returns static metadata for the five pipeline agents in
// execution order.
func Catalog() []AgentInfo {
	return []AgentInfo{
		{
			Name:        "Finance Guru",
			Kind:        core.KindFinance,
			Description: "Analyzes financial metrics, valuation, and market fundamentals",
		},
		{
			Name:        "Geopolitics Guru",
			Kind:        core.KindGeopolitics,
			Description: "Evaluates global events and geopolitical risks impact",
		},
		{
			Name:        "Legal Guru",
			Kind:        core.KindLegal,
			Description: "Assesses regulatory compliance and legal risk factors",
		},
		{
			Name:        "Quant Dev",
			Kind:        core.KindQuant,
			Description: "Performs technical analysis and statistical modeling",
		},
		{
			Name:        "Financial Analyst",
			Kind:        core.KindConsolidator,
			Description: "Consolidates expert insights into final predictions",
		},
	}
}
