// Package orchestrator wires the full turn pipeline: extraction, slot
// analysis, planning, execution, and memory persistence.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/tanpawarit/agentic-dialogue/agent/contract"
	memoryx "github.com/tanpawarit/agentic-dialogue/agent/memory"
	nodex "github.com/tanpawarit/agentic-dialogue/agent/nodes"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidUser    = nodex.ErrInvalidUser
)

const decisionLogCap = 100

// Orchestrator drives one conversation turn end to end. Safe for
// concurrent use; racing turns on the same conversation id resolve
// last-writer-wins in the store.
type Orchestrator struct {
	store     memoryx.Store
	extractor contract.Extractor
	analyzer  contract.SlotAnalyzer
	planner   contract.Planner
	executor  contract.Executor

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	mu        sync.Mutex
	decisions []decisionEntry

	now func() time.Time
}

type decisionEntry struct {
	Timestamp        time.Time
	UserMessage      string
	Intent           contract.Intent
	Confidence       float64
	PlannedAction    contract.ActionType
	ExecutionSuccess bool
	Duration         time.Duration
}

func New(
	store memoryx.Store,
	extractor contract.Extractor,
	analyzer contract.SlotAnalyzer,
	planner contract.Planner,
	executor contract.Executor,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("memory store is required")
	}
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if analyzer == nil {
		return nil, errors.New("slot analyzer is required")
	}
	if planner == nil {
		return nil, errors.New("planner is required")
	}
	if executor == nil {
		return nil, errors.New("executor is required")
	}

	o := &Orchestrator{
		store:     store,
		extractor: extractor,
		analyzer:  analyzer,
		planner:   planner,
		executor:  executor,
		now:       time.Now,
	}

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn processes one utterance. A blank conversationID starts a
// new conversation; the returned id addresses subsequent turns.
func (o *Orchestrator) HandleTurn(ctx context.Context, userID, text, conversationID string) (string, string, contract.DecisionTrace, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		UserID:         userID,
		ConversationID: conversationID,
		Text:           text,
	})
	if err != nil {
		return "", "", contract.DecisionTrace{}, err
	}

	o.logDecision(text, out.Trace)
	return out.Reply, out.ConversationID, out.Trace, nil
}

// Reset discards a conversation entirely.
func (o *Orchestrator) Reset(ctx context.Context, conversationID string) error {
	return o.store.Delete(ctx, conversationID)
}

func (o *Orchestrator) logDecision(text string, trace contract.DecisionTrace) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decisions = append(o.decisions, decisionEntry{
		Timestamp:        o.now().UTC(),
		UserMessage:      text,
		Intent:           trace.Intent,
		Confidence:       trace.Confidence,
		PlannedAction:    trace.PlannedAction,
		ExecutionSuccess: trace.ExecutionSuccess,
		Duration:         trace.Duration,
	})
	if len(o.decisions) > decisionLogCap {
		o.decisions = o.decisions[len(o.decisions)-decisionLogCap:]
	}
}

// Analytics summarizes recent decisions.
type Analytics struct {
	TotalDecisions     int                         `json:"total_decisions"`
	SuccessRate        float64                     `json:"success_rate"`
	ActionDistribution map[contract.ActionType]int `json:"action_distribution,omitempty"`
	IntentDistribution map[contract.Intent]int     `json:"intent_distribution,omitempty"`
	AverageConfidence  float64                     `json:"average_confidence"`
	AverageDuration    time.Duration               `json:"average_duration"`
}

func (o *Orchestrator) Analytics() Analytics {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.decisions) == 0 {
		return Analytics{}
	}

	actions := make(map[contract.ActionType]int)
	intents := make(map[contract.Intent]int)
	successful := 0
	var confidence float64
	var duration time.Duration
	for _, d := range o.decisions {
		actions[d.PlannedAction]++
		intents[d.Intent]++
		if d.ExecutionSuccess {
			successful++
		}
		confidence += d.Confidence
		duration += d.Duration
	}

	n := len(o.decisions)
	return Analytics{
		TotalDecisions:     n,
		SuccessRate:        float64(successful) / float64(n),
		ActionDistribution: actions,
		IntentDistribution: intents,
		AverageConfidence:  confidence / float64(n),
		AverageDuration:    duration / time.Duration(n),
	}
}
