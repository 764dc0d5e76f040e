package planner

import (
	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

// toolProfile is a static capability entry. Relevance is 1.0 when the
// tool's matching intent is active, otherwise 0; Confidence is the
// confidence a tool-call action inherits when the tool is chosen.
type toolProfile struct {
	Name       string
	Available  bool
	Intent     contract.Intent
	Confidence float64
	// BaseRelevance applies when the intent does not match.
	BaseRelevance float64
}

// toolTable is ordered; arg-max ties resolve to the earliest entry.
var toolTable = []toolProfile{
	{Name: "calculator", Available: true, Intent: contract.IntentCalculation, Confidence: 0.95},
	{Name: "outlet_api", Available: true, Intent: contract.IntentOutletInquiry, Confidence: 0.9},
	{Name: "restaurant_api", Available: true, Intent: contract.IntentRestaurantSearch, Confidence: 0.85},
	{Name: "product_api", Available: true, Intent: contract.IntentProductSearch, Confidence: 0.85},
	{Name: "rag_system", Available: false, Intent: "", Confidence: 0, BaseRelevance: 0.3},
}

var toolActions = map[string]contract.ActionType{
	"calculator":     contract.ActionCallCalculator,
	"outlet_api":     contract.ActionCallOutletAPI,
	"restaurant_api": contract.ActionCallRestaurantAPI,
	"product_api":    contract.ActionCallProductAPI,
	"rag_system":     contract.ActionCallRAGSystem,
}

type toolAnalysis struct {
	Best           toolProfile
	BestRelevance  float64
	AvailableCount int
}

func analyzeTools(intent contract.Intent) toolAnalysis {
	analysis := toolAnalysis{BestRelevance: -1}
	for _, profile := range toolTable {
		relevance := profile.BaseRelevance
		if profile.Intent != "" && profile.Intent == intent {
			relevance = 1.0
		}
		if profile.Available {
			analysis.AvailableCount++
		}
		if relevance > analysis.BestRelevance {
			analysis.Best = profile
			analysis.BestRelevance = relevance
		}
	}
	return analysis
}
