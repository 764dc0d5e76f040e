package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
	"github.com/tanpawarit/agentic-dialogue/agent/tool"
)

func (e *Executor) handleAskClarification(_ context.Context, action contract.PlannerAction, _ contract.ExecutionContext) contract.ActionResult {
	clarificationType, _ := action.Parameters["clarification_type"].(string)
	if clarificationType == "" {
		clarificationType = "general"
	}

	var response string
	if clarificationType == "intent" {
		response = "I'm not entirely sure what you're looking for. Could you clarify if you're asking about:\n" +
			"• Outlet locations and information\n" +
			"• Restaurant recommendations\n" +
			"• Product searches\n" +
			"• Mathematical calculations\n" +
			"Please let me know which one matches your request!"
	} else {
		response = "I'd like to help you better. Could you provide more details about what you're looking for? " +
			"For example, are you asking about locations, products, restaurants, or something else?"
	}

	return contract.ActionResult{
		Success:  true,
		Response: response,
		Data:     map[string]any{"clarification_type": clarificationType},
	}
}

func (e *Executor) handleCalculator(ctx context.Context, action contract.PlannerAction, _ contract.ExecutionContext) contract.ActionResult {
	input := inputData(action)
	expression, _ := input["expression"].(string)
	if expression == "" {
		expression, _ = action.Parameters["context"].(string)
	}
	return e.invokeTool(ctx, tool.NameCalculator, map[string]any{"expression": expression})
}

func (e *Executor) handleOutletLookup(ctx context.Context, action contract.PlannerAction, _ contract.ExecutionContext) contract.ActionResult {
	input := inputData(action)
	return e.invokeTool(ctx, tool.NameOutletDirectory, map[string]any{
		"location":   input["location"],
		"query_type": input["query_type"],
	})
}

func (e *Executor) handleRestaurantSearch(ctx context.Context, action contract.PlannerAction, _ contract.ExecutionContext) contract.ActionResult {
	return e.invokeTool(ctx, tool.NameRestaurantSearch, inputData(action))
}

func (e *Executor) handleProductSearch(ctx context.Context, action contract.PlannerAction, _ contract.ExecutionContext) contract.ActionResult {
	return e.invokeTool(ctx, tool.NameProductSearch, inputData(action))
}

func (e *Executor) handleRetrieval(ctx context.Context, action contract.PlannerAction, _ contract.ExecutionContext) contract.ActionResult {
	input := inputData(action)
	payload := map[string]any{"query": input["query"]}
	if kind, ok := input["rag_type"]; ok {
		payload["kind"] = kind
	} else if kind, ok := input["kind"]; ok {
		payload["kind"] = kind
	}
	return e.invokeTool(ctx, tool.NameRetrieval, payload)
}

func (e *Executor) handleProvideResponse(_ context.Context, action contract.PlannerAction, _ contract.ExecutionContext) contract.ActionResult {
	responseType, _ := action.Parameters["response_type"].(string)
	if responseType == "" {
		responseType = "default"
	}
	availableInfo, _ := action.Parameters["available_info"].(map[string]any)

	var response string
	switch responseType {
	case "urgent":
		urgencyLevel, _ := action.Parameters["urgency_level"].(float64)
		response = fmt.Sprintf(
			"I understand this seems urgent (urgency level: %.1f). Based on what I have: %s. How can I help you further?",
			urgencyLevel, formatAvailableInfo(availableInfo),
		)
	case "partial_information":
		response = fmt.Sprintf(
			"Here's what I can tell you based on the information available: %s. Would you like me to look up more specific details?",
			formatAvailableInfo(availableInfo),
		)
	case "generic_help":
		response = "I'm here to help you with:\n" +
			"• Outlet locations and information\n" +
			"• Restaurant recommendations\n" +
			"• Product searches\n" +
			"• Mathematical calculations\n\n" +
			"What would you like to know more about?"
	default:
		response = "I'm here to help you with outlet information, restaurant recommendations, " +
			"and product searches. How can I assist you today?"
	}

	return contract.ActionResult{
		Success:  true,
		Response: response,
		Data:     map[string]any{"response_type": responseType, "available_info": availableInfo},
	}
}

func (e *Executor) handleRequestMissingInfo(_ context.Context, action contract.PlannerAction, _ contract.ExecutionContext) contract.ActionResult {
	missing := stringSlice(action.Parameters["missing_slots"])
	friendly, _ := action.Parameters["user_friendly_names"].(map[string]string)
	contextIntent, _ := action.Parameters["context"].(contract.Intent)

	if len(missing) == 0 {
		return contract.ActionResult{
			Success:  true,
			Response: "I have all the information I need. How else can I help you?",
			Data:     map[string]any{"missing_slots": missing},
		}
	}

	names := make([]string, 0, len(missing))
	for _, slot := range missing {
		if f, ok := friendly[slot]; ok {
			names = append(names, f)
		} else {
			names = append(names, slot)
		}
	}

	var response string
	if len(names) == 1 {
		response = fmt.Sprintf("To help you better, could you please specify the %s?", names[0])
	} else {
		response = fmt.Sprintf(
			"To help you better, could you please provide: %s and %s?",
			strings.Join(names[:len(names)-1], ", "), names[len(names)-1],
		)
	}

	switch contextIntent {
	case contract.IntentOutletInquiry:
		response += " For example, you can ask about SS2, Mid Valley, or 1 Utama outlets."
	case contract.IntentRestaurantSearch:
		response += " For example, 'Japanese restaurants in Petaling Jaya' or 'Italian food in Mid Valley'."
	case contract.IntentProductSearch:
		response += " For example, 'electronics' or 'health and fitness products'."
	}

	return contract.ActionResult{
		Success:  true,
		Response: response,
		Data:     map[string]any{"missing_slots": missing, "context": contextIntent},
	}
}

func (e *Executor) handleFinish(_ context.Context, _ contract.PlannerAction, _ contract.ExecutionContext) contract.ActionResult {
	return contract.ActionResult{
		Success:  true,
		Response: "Is there anything else I can help you with today?",
		Data:     map[string]any{"action": "finish"},
	}
}

func inputData(action contract.PlannerAction) map[string]any {
	if data, ok := action.Parameters["input_data"].(map[string]any); ok {
		return data
	}
	return map[string]any{}
}

func stringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// formatAvailableInfo renders extracted entities for user display,
// sorted for stable output.
func formatAvailableInfo(info map[string]any) string {
	if len(info) == 0 {
		return "limited information"
	}

	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, info[k]))
	}
	return strings.Join(parts, ", ")
}
