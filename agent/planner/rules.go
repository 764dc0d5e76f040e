package planner

import (
	"fmt"
	"strings"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

// friendlyNames translates slot names into user-facing wording.
var friendlyNames = map[string]string{
	"location":   "location or outlet",
	"cuisine":    "cuisine type",
	"category":   "product category",
	"expression": "calculation",
	"query_type": "specific information needed",
}

// turnSignals bundles the per-turn analyses consumed by the rules.
type turnSignals struct {
	Tools toolAnalysis
	Flow  flowAnalysis
}

// rule is one (predicate, builder) pair. Rules are evaluated top-down;
// the first match wins.
type rule struct {
	Name  string
	When  func(pc contract.PlanningContext, sig turnSignals) bool
	Build func(pc contract.PlanningContext, sig turnSignals) contract.Decision
}

var rules = []rule{
	{
		Name: "low_confidence",
		When: func(pc contract.PlanningContext, _ turnSignals) bool {
			return pc.Confidence < 0.5
		},
		Build: buildClarification,
	},
	{
		Name: "critical_slot_missing",
		When: func(pc contract.PlanningContext, _ turnSignals) bool {
			return len(pc.Slots.Critical) > 0
		},
		Build: buildMissingInfo,
	},
	{
		Name: "tool_execution",
		When: func(pc contract.PlanningContext, sig turnSignals) bool {
			return pc.Slots.Completeness >= 0.8 && sig.Tools.BestRelevance > 0.8
		},
		Build: buildToolExecution,
	},
	{
		Name: "urgent_response",
		When: func(_ contract.PlanningContext, sig turnSignals) bool {
			return sig.Flow.UrgencyScore > 0.7
		},
		Build: buildUrgentResponse,
	},
	{
		Name: "low_completeness",
		When: func(pc contract.PlanningContext, _ turnSignals) bool {
			return pc.Slots.Completeness < 0.5
		},
		Build: buildInformationRequest,
	},
	{
		Name: "default_response",
		When: func(contract.PlanningContext, turnSignals) bool {
			return true
		},
		Build: buildDefaultResponse,
	},
}

func buildClarification(pc contract.PlanningContext, _ turnSignals) contract.Decision {
	primary := contract.PlannerAction{
		Type: contract.ActionAskClarification,
		Parameters: map[string]any{
			"clarification_type": "intent",
			"context":            pc.Utterance,
			"suggested_intents": []contract.Intent{
				contract.IntentOutletInquiry,
				contract.IntentRestaurantSearch,
			},
		},
		Confidence: 0.8,
		Reasoning:  "Asking for clarification due to: Low intent confidence",
		Priority:   1,
	}

	fallback := contract.PlannerAction{
		Type:       contract.ActionProvideResponse,
		Parameters: map[string]any{"response_type": "generic_help"},
		Confidence: 0.5,
		Reasoning:  "Fallback to generic help response",
		Priority:   2,
	}

	return contract.Decision{
		Primary:    primary,
		Fallbacks:  []contract.PlannerAction{fallback},
		Reasoning:  fmt.Sprintf("Intent confidence too low (%.2f). Low intent confidence", pc.Confidence),
		Confidence: 0.8,
	}
}

func buildMissingInfo(pc contract.PlanningContext, _ turnSignals) contract.Decision {
	critical := pc.Slots.Critical
	primary := contract.PlannerAction{
		Type: contract.ActionRequestMissingInfo,
		Parameters: map[string]any{
			"missing_slots":       critical,
			"context":             pc.Intent,
			"user_friendly_names": friendlyNamesFor(critical),
		},
		Confidence: 0.9,
		Reasoning:  fmt.Sprintf("Missing critical information: %v", critical),
		Priority:   1,
	}

	return contract.Decision{
		Primary:    primary,
		Reasoning:  "Cannot proceed without: " + strings.Join(critical, ", "),
		Confidence: 0.9,
	}
}

func buildToolExecution(pc contract.PlanningContext, sig turnSignals) contract.Decision {
	best := sig.Tools.Best
	primary := contract.PlannerAction{
		Type: toolActions[best.Name],
		Parameters: map[string]any{
			"tool_name":  best.Name,
			"input_data": pc.Entities,
			"context":    pc.Utterance,
		},
		Confidence: best.Confidence,
		Reasoning:  "High confidence tool match: " + best.Name,
		Priority:   1,
	}

	fallback := contract.PlannerAction{
		Type:       contract.ActionProvideResponse,
		Parameters: map[string]any{"response_type": "partial_information", "available_info": pc.Entities},
		Confidence: 0.6,
		Reasoning:  "Fallback if tool execution fails",
		Priority:   2,
	}

	return contract.Decision{
		Primary:    primary,
		Fallbacks:  []contract.PlannerAction{fallback},
		Reasoning:  fmt.Sprintf("Executing %s with %.2f relevance", best.Name, sig.Tools.BestRelevance),
		Confidence: primary.Confidence,
	}
}

func buildUrgentResponse(pc contract.PlanningContext, sig turnSignals) contract.Decision {
	primary := contract.PlannerAction{
		Type: contract.ActionProvideResponse,
		Parameters: map[string]any{
			"response_type":  "urgent",
			"available_info": pc.Entities,
			"urgency_level":  sig.Flow.UrgencyScore,
		},
		Confidence: 0.7,
		Reasoning:  fmt.Sprintf("High urgency detected: %.2f", sig.Flow.UrgencyScore),
		Priority:   1,
	}

	return contract.Decision{
		Primary:    primary,
		Reasoning:  fmt.Sprintf("Urgent response required due to: %v", sig.Flow.UrgencySignals),
		Confidence: 0.7,
	}
}

func buildInformationRequest(pc contract.PlanningContext, _ turnSignals) contract.Decision {
	primary := contract.PlannerAction{
		Type: contract.ActionRequestMissingInfo,
		Parameters: map[string]any{
			"missing_slots":       pc.Slots.Missing,
			"context":             pc.Intent,
			"user_friendly_names": friendlyNamesFor(pc.Slots.Missing),
			"suggestion_type":     "optional_enhancement",
		},
		Confidence: 0.7,
		Reasoning:  "Requesting additional information to improve response",
		Priority:   1,
	}

	return contract.Decision{
		Primary:    primary,
		Reasoning:  fmt.Sprintf("Could benefit from additional info: %v", pc.Slots.Missing),
		Confidence: 0.7,
	}
}

func buildDefaultResponse(pc contract.PlanningContext, _ turnSignals) contract.Decision {
	primary := contract.PlannerAction{
		Type: contract.ActionProvideResponse,
		Parameters: map[string]any{
			"response_type":  "default",
			"available_info": pc.Entities,
			"intent":         pc.Intent,
		},
		Confidence: 0.6,
		Reasoning:  "Default response with available information",
		Priority:   1,
	}

	return contract.Decision{
		Primary:    primary,
		Reasoning:  "Providing response with available information",
		Confidence: 0.6,
	}
}

func friendlyNamesFor(slotNames []string) map[string]string {
	names := make(map[string]string, len(slotNames))
	for _, slot := range slotNames {
		if friendly, ok := friendlyNames[slot]; ok {
			names[slot] = friendly
		} else {
			names[slot] = slot
		}
	}
	return names
}
