// Package executor runs planner decisions: it dispatches each action
// to a handler, walks the fallback chain on failure, and keeps a
// bounded execution history for diagnostics.
package executor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/agentic-dialogue/agent/contract"
	"github.com/tanpawarit/agentic-dialogue/agent/tool"
)

const historyCap = 100

const exhaustedResponse = "I apologize, but I'm having trouble processing your request right now. Please try again."

type handler func(ctx context.Context, action contract.PlannerAction, ec contract.ExecutionContext) contract.ActionResult

// Executor maps action types to handlers over a tool registry.
type Executor struct {
	tools    tool.Registry
	handlers map[contract.ActionType]handler

	mu      sync.Mutex
	history []historyEntry
}

type historyEntry struct {
	Action     contract.ActionType
	Status     string
	Confidence float64
	Reasoning  string
	Success    bool
	Duration   time.Duration
	Timestamp  time.Time
}

func New(tools tool.Registry) *Executor {
	e := &Executor{tools: tools}
	e.handlers = map[contract.ActionType]handler{
		contract.ActionAskClarification:   e.handleAskClarification,
		contract.ActionCallCalculator:     e.handleCalculator,
		contract.ActionCallOutletAPI:      e.handleOutletLookup,
		contract.ActionCallRestaurantAPI:  e.handleRestaurantSearch,
		contract.ActionCallProductAPI:     e.handleProductSearch,
		contract.ActionCallRAGSystem:      e.handleRetrieval,
		contract.ActionProvideResponse:    e.handleProvideResponse,
		contract.ActionRequestMissingInfo: e.handleRequestMissingInfo,
		contract.ActionFinish:             e.handleFinish,
	}
	return e
}

// Execute runs the primary action, then each fallback in order until
// one succeeds. Every failure mode is absorbed into the result.
func (e *Executor) Execute(ctx context.Context, decision contract.Decision, ec contract.ExecutionContext) contract.ActionResult {
	start := time.Now()

	result := e.executeAction(ctx, decision.Primary, ec)
	if result.Success {
		result.Duration = time.Since(start)
		e.record(decision.Primary, &result, "success")
		return result
	}
	e.record(decision.Primary, &result, "error")
	log.Warn().
		Str("action", string(decision.Primary.Type)).
		Str("error", result.Err).
		Msg("primary action failed")

	for _, fallback := range decision.Fallbacks {
		result = e.executeAction(ctx, fallback, ec)
		if result.Success {
			result.Duration = time.Since(start)
			result.FallbackUsed = true
			result.Response += " (Note: Used fallback action due to primary action failure)"
			e.record(fallback, &result, "fallback_success")
			return result
		}
		e.record(fallback, &result, "fallback_error")
		log.Warn().
			Str("action", string(fallback.Type)).
			Str("error", result.Err).
			Msg("fallback action failed")
	}

	return contract.ActionResult{
		Success:      false,
		Response:     exhaustedResponse,
		Err:          "all planned actions failed",
		Duration:     time.Since(start),
		FallbackUsed: len(decision.Fallbacks) > 0,
	}
}

func (e *Executor) executeAction(ctx context.Context, action contract.PlannerAction, ec contract.ExecutionContext) contract.ActionResult {
	h, ok := e.handlers[action.Type]
	if !ok {
		return contract.ActionResult{
			Success:  false,
			Response: "Unknown action type",
			Err:      contract.ErrUnknownAction.Error() + ": " + string(action.Type),
		}
	}
	return h(ctx, action, ec)
}

// invokeTool bridges a handler to a registered tool, converting the
// tool output into an action result.
func (e *Executor) invokeTool(ctx context.Context, name string, input map[string]any) contract.ActionResult {
	t, ok := e.tools.Lookup(name)
	if !ok {
		return contract.ActionResult{
			Success: false,
			Err:     contract.ErrToolFailure.Error() + ": tool not registered: " + name,
		}
	}

	out, err := t.Invoke(ctx, input)
	if err != nil {
		return contract.ActionResult{
			Success: false,
			Err:     contract.ErrToolFailure.Error() + ": " + err.Error(),
		}
	}
	return contract.ActionResult{
		Success:  out.Success,
		Response: out.Text,
		Data:     out.Data,
		Err:      out.Err,
	}
}

func (e *Executor) record(action contract.PlannerAction, result *contract.ActionResult, status string) {
	entry := historyEntry{
		Action:     action.Type,
		Status:     status,
		Confidence: action.Confidence,
		Reasoning:  action.Reasoning,
		Timestamp:  time.Now(),
	}
	if result != nil {
		entry.Success = result.Success
		entry.Duration = result.Duration
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, entry)
	if len(e.history) > historyCap {
		e.history = e.history[len(e.history)-historyCap:]
	}
}

// Stats aggregates the bounded execution history.
type Stats struct {
	TotalExecutions    int                         `json:"total_executions"`
	SuccessRate        float64                     `json:"success_rate"`
	ActionDistribution map[contract.ActionType]int `json:"action_distribution,omitempty"`
	AverageDuration    time.Duration               `json:"average_duration"`
}

func (e *Executor) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.history) == 0 {
		return Stats{}
	}

	successful := 0
	dist := make(map[contract.ActionType]int)
	var total time.Duration
	for _, entry := range e.history {
		if entry.Success {
			successful++
		}
		dist[entry.Action]++
		total += entry.Duration
	}

	return Stats{
		TotalExecutions:    len(e.history),
		SuccessRate:        float64(successful) / float64(len(e.history)),
		ActionDistribution: dist,
		AverageDuration:    total / time.Duration(len(e.history)),
	}
}
