// Package slots analyzes required-slot completeness per intent.
package slots

import (
	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

// requiredSlots is the per-intent schema. Every required slot is
// critical: its absence blocks servicing the intent.
var requiredSlots = map[contract.Intent][]string{
	contract.IntentOutletInquiry:    {"location"},
	contract.IntentRestaurantSearch: {"cuisine"},
	contract.IntentProductSearch:    {"category"},
	contract.IntentCalculation:      {"expression"},
}

// Analyzer determines which required slots are present, missing, or
// blocking for an intent.
type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) Analyze(intent contract.Intent, entities map[string]any) contract.SlotAnalysis {
	required := requiredSlots[intent]
	if len(required) == 0 {
		return contract.SlotAnalysis{Completeness: 1.0}
	}

	analysis := contract.SlotAnalysis{}
	filled := 0
	for _, slot := range required {
		if _, ok := entities[slot]; ok {
			filled++
			continue
		}
		analysis.Missing = append(analysis.Missing, slot)
		analysis.Critical = append(analysis.Critical, slot)
	}
	analysis.Completeness = float64(filled) / float64(len(required))
	return analysis
}

// Required exposes the schema for an intent, nil when it has none.
func Required(intent contract.Intent) []string {
	return requiredSlots[intent]
}
