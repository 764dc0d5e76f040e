package contract

import (
	"time"

	memoryx "github.com/tanpawarit/agentic-dialogue/agent/memory"
)

// Intent is the classified purpose of a user utterance.
type Intent string

const (
	IntentOutletInquiry    Intent = "outlet_inquiry"
	IntentRestaurantSearch Intent = "restaurant_search"
	IntentProductSearch    Intent = "product_search"
	IntentCalculation      Intent = "calculation"
	IntentGeneralQuery     Intent = "general_query"
	IntentUnknown          Intent = "unknown"
)

// ActionType is the closed set of actions the planner can choose.
type ActionType string

const (
	ActionAskClarification   ActionType = "ask_clarification"
	ActionCallCalculator     ActionType = "call_calculator"
	ActionCallOutletAPI      ActionType = "call_outlet_api"
	ActionCallRestaurantAPI  ActionType = "call_restaurant_api"
	ActionCallProductAPI     ActionType = "call_product_api"
	ActionCallRAGSystem      ActionType = "call_rag_system"
	ActionProvideResponse    ActionType = "provide_response"
	ActionRequestMissingInfo ActionType = "request_missing_info"
	ActionFinish             ActionType = "finish"
)

// Extraction is the output of the intent & slot extractor for one utterance.
type Extraction struct {
	Intent     Intent         `json:"intent"`
	Entities   map[string]any `json:"entities"`
	Confidence float64        `json:"confidence"`
}

// SlotAnalysis reports which required slots are filled for an intent.
// Critical is always a subset of Missing; Completeness is
// filled-required / total-required and 1.0 when nothing is required.
type SlotAnalysis struct {
	Missing      []string `json:"missing"`
	Critical     []string `json:"critical"`
	Completeness float64  `json:"completeness"`
}

// PlanningContext carries everything the planner needs for one turn.
// It is built fresh per turn and never persisted.
type PlanningContext struct {
	Intent     Intent
	Entities   map[string]any
	Confidence float64
	Memory     *memoryx.ConversationMemory
	Utterance  string
	Slots      SlotAnalysis
}

// PlannerAction is one candidate action with its own reasoning.
// Priority orders actions inside a fallback list, lower first.
type PlannerAction struct {
	Type       ActionType     `json:"type"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
	Priority   int            `json:"priority"`
}

// Decision is the planner output: one primary action plus an ordered
// fallback chain tried strictly in list order after a failure.
type Decision struct {
	Primary    PlannerAction   `json:"primary"`
	Fallbacks  []PlannerAction `json:"fallbacks,omitempty"`
	Reasoning  string          `json:"reasoning"`
	Confidence float64         `json:"confidence"`
}

// ActionResult is the outcome of executing a decision. FallbackUsed
// is set by the executor whenever the result was not produced by the
// primary action alone.
type ActionResult struct {
	Success      bool            `json:"success"`
	Response     string          `json:"response"`
	Data         map[string]any  `json:"data,omitempty"`
	Err          string          `json:"error,omitempty"`
	Duration     time.Duration   `json:"duration"`
	FallbackUsed bool            `json:"fallback_used,omitempty"`
	FollowUps    []PlannerAction `json:"follow_ups,omitempty"`
}

// ExecutionContext is the ambient state handed to action handlers.
type ExecutionContext struct {
	Memory    *memoryx.ConversationMemory
	Utterance string
	Entities  map[string]any
	Intent    Intent
}

// DecisionTrace is the caller-visible summary of one turn's planning.
type DecisionTrace struct {
	Intent           Intent        `json:"intent"`
	Confidence       float64       `json:"confidence"`
	PlannedAction    ActionType    `json:"planned_action"`
	ActionReasoning  string        `json:"action_reasoning"`
	ExecutionSuccess bool          `json:"execution_success"`
	FallbackUsed     bool          `json:"fallback_used"`
	Duration         time.Duration `json:"duration"`
}

// ToolOutput is what every tool capability returns from Invoke.
type ToolOutput struct {
	Success bool           `json:"success"`
	Text    string         `json:"text"`
	Data    map[string]any `json:"data,omitempty"`
	Err     string         `json:"error,omitempty"`
}
