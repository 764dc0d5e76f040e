package contract

import (
	"context"

	memoryx "github.com/tanpawarit/agentic-dialogue/agent/memory"
)

// Extractor classifies an utterance against the current conversation.
// It reads memory but never mutates it.
type Extractor interface {
	Extract(utterance string, mem *memoryx.ConversationMemory) Extraction
}

// SlotAnalyzer reports missing and critical slots for an intent.
type SlotAnalyzer interface {
	Analyze(intent Intent, entities map[string]any) SlotAnalysis
}

// Planner turns conversational state into an ordered action plan.
type Planner interface {
	Plan(ctx context.Context, pc PlanningContext) Decision
}

// Executor runs a decision's action chain against registered tools.
// It never returns an error: every failure mode is absorbed into a
// failed ActionResult.
type Executor interface {
	Execute(ctx context.Context, decision Decision, ec ExecutionContext) ActionResult
}

// Tool is one external capability invoked by the executor.
type Tool interface {
	Name() string
	Invoke(ctx context.Context, input map[string]any) (ToolOutput, error)
}
