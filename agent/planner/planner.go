// Package planner implements the deterministic decision policy: an
// ordered rule table evaluated once per turn, first match wins.
package planner

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

const decisionLogCap = 100

// Planner evaluates the rule table against a PlanningContext and keeps
// a bounded log of produced decisions for analytics.
type Planner struct {
	mu     sync.Mutex
	logged []contract.Decision
}

func New() *Planner {
	return &Planner{}
}

func (p *Planner) Plan(ctx context.Context, pc contract.PlanningContext) contract.Decision {
	sig := turnSignals{
		Tools: analyzeTools(pc.Intent),
		Flow:  analyzeFlow(pc),
	}

	for _, r := range rules {
		if !r.When(pc, sig) {
			continue
		}
		decision := r.Build(pc, sig)
		log.Debug().
			Str("rule", r.Name).
			Str("intent", string(pc.Intent)).
			Str("action", string(decision.Primary.Type)).
			Float64("confidence", decision.Confidence).
			Msg("planner decision")
		p.record(decision)
		return decision
	}

	// The default rule always matches, so this is unreachable.
	decision := buildDefaultResponse(pc, sig)
	p.record(decision)
	return decision
}

func (p *Planner) record(decision contract.Decision) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logged = append(p.logged, decision)
	if len(p.logged) > decisionLogCap {
		p.logged = p.logged[len(p.logged)-decisionLogCap:]
	}
}

// Summary aggregates the bounded decision log.
type Summary struct {
	TotalDecisions     int                        `json:"total_decisions"`
	ActionDistribution map[contract.ActionType]int `json:"action_distribution,omitempty"`
	AverageConfidence  float64                    `json:"average_confidence"`
	RecentReasonings   []string                   `json:"recent_reasonings,omitempty"`
}

func (p *Planner) Summary() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.logged) == 0 {
		return Summary{}
	}

	dist := make(map[contract.ActionType]int)
	total := 0.0
	for _, d := range p.logged {
		dist[d.Primary.Type]++
		total += d.Confidence
	}

	recentStart := len(p.logged) - 5
	if recentStart < 0 {
		recentStart = 0
	}
	recent := make([]string, 0, len(p.logged)-recentStart)
	for _, d := range p.logged[recentStart:] {
		recent = append(recent, d.Reasoning)
	}

	return Summary{
		TotalDecisions:     len(p.logged),
		ActionDistribution: dist,
		AverageConfidence:  total / float64(len(p.logged)),
		RecentReasonings:   recent,
	}
}
