package planner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
	memoryx "github.com/tanpawarit/agentic-dialogue/agent/memory"
)

func planningContext(intent contract.Intent, confidence float64, slots contract.SlotAnalysis, utterance string) contract.PlanningContext {
	return contract.PlanningContext{
		Intent:     intent,
		Entities:   map[string]any{},
		Confidence: confidence,
		Memory:     memoryx.NewConversationMemory("conv-1", "user-1", time.Now()),
		Utterance:  utterance,
		Slots:      slots,
	}
}

func TestPlanLowConfidenceAsksClarification(t *testing.T) {
	t.Parallel()

	pc := planningContext(contract.IntentGeneralQuery, 0.4, contract.SlotAnalysis{Completeness: 1.0}, "hello there")
	decision := New().Plan(context.Background(), pc)

	if decision.Primary.Type != contract.ActionAskClarification {
		t.Fatalf("unexpected action: %s", decision.Primary.Type)
	}
	if decision.Confidence != 0.8 {
		t.Fatalf("unexpected confidence: %v", decision.Confidence)
	}
	if len(decision.Fallbacks) != 1 || decision.Fallbacks[0].Type != contract.ActionProvideResponse {
		t.Fatalf("expected generic help fallback: %+v", decision.Fallbacks)
	}
	if decision.Fallbacks[0].Parameters["response_type"] != "generic_help" {
		t.Fatalf("unexpected fallback parameters: %+v", decision.Fallbacks[0].Parameters)
	}
}

func TestPlanCriticalSlotMissingRequestsInfo(t *testing.T) {
	t.Parallel()

	pc := planningContext(contract.IntentRestaurantSearch, 0.8, contract.SlotAnalysis{
		Missing:      []string{"cuisine"},
		Critical:     []string{"cuisine"},
		Completeness: 0,
	}, "I want food")
	decision := New().Plan(context.Background(), pc)

	if decision.Primary.Type != contract.ActionRequestMissingInfo {
		t.Fatalf("unexpected action: %s", decision.Primary.Type)
	}
	if decision.Confidence != 0.9 {
		t.Fatalf("unexpected confidence: %v", decision.Confidence)
	}
	if len(decision.Fallbacks) != 0 {
		t.Fatalf("no fallbacks expected: %+v", decision.Fallbacks)
	}
	if !strings.Contains(decision.Reasoning, "cuisine") {
		t.Fatalf("reasoning should name the slot: %s", decision.Reasoning)
	}
}

func TestPlanToolExecutionPerIntent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		intent     contract.Intent
		action     contract.ActionType
		confidence float64
	}{
		{contract.IntentCalculation, contract.ActionCallCalculator, 0.95},
		{contract.IntentOutletInquiry, contract.ActionCallOutletAPI, 0.9},
		{contract.IntentRestaurantSearch, contract.ActionCallRestaurantAPI, 0.85},
		{contract.IntentProductSearch, contract.ActionCallProductAPI, 0.85},
	}

	for _, tc := range cases {
		pc := planningContext(tc.intent, 0.9, contract.SlotAnalysis{Completeness: 1.0}, "do it")
		decision := New().Plan(context.Background(), pc)

		if decision.Primary.Type != tc.action {
			t.Fatalf("%s: unexpected action %s", tc.intent, decision.Primary.Type)
		}
		if decision.Primary.Confidence != tc.confidence {
			t.Fatalf("%s: unexpected confidence %v", tc.intent, decision.Primary.Confidence)
		}
		if len(decision.Fallbacks) != 1 || decision.Fallbacks[0].Parameters["response_type"] != "partial_information" {
			t.Fatalf("%s: expected partial_information fallback: %+v", tc.intent, decision.Fallbacks)
		}
	}
}

func TestPlanUrgentResponse(t *testing.T) {
	t.Parallel()

	// Three urgency keywords and an exclamation mark push the score
	// past the 0.7 threshold. Completeness sits between the tool and
	// low-completeness bands so neither rule fires first.
	pc := planningContext(contract.IntentGeneralQuery, 0.9, contract.SlotAnalysis{Completeness: 0.6}, "I need this urgent asap, hurry!")
	decision := New().Plan(context.Background(), pc)

	if decision.Primary.Type != contract.ActionProvideResponse {
		t.Fatalf("unexpected action: %s", decision.Primary.Type)
	}
	if decision.Primary.Parameters["response_type"] != "urgent" {
		t.Fatalf("unexpected response type: %v", decision.Primary.Parameters["response_type"])
	}
	if decision.Confidence != 0.7 {
		t.Fatalf("unexpected confidence: %v", decision.Confidence)
	}
}

func TestPlanLowCompletenessRequestsAllMissing(t *testing.T) {
	t.Parallel()

	pc := planningContext(contract.IntentGeneralQuery, 0.9, contract.SlotAnalysis{
		Missing:      []string{"location", "query_type"},
		Completeness: 0.4,
	}, "tell me more")
	decision := New().Plan(context.Background(), pc)

	if decision.Primary.Type != contract.ActionRequestMissingInfo {
		t.Fatalf("unexpected action: %s", decision.Primary.Type)
	}
	if decision.Confidence != 0.7 {
		t.Fatalf("unexpected confidence: %v", decision.Confidence)
	}
	missing, _ := decision.Primary.Parameters["missing_slots"].([]string)
	if len(missing) != 2 {
		t.Fatalf("expected all missing slots: %v", missing)
	}
}

func TestPlanDefaultResponse(t *testing.T) {
	t.Parallel()

	pc := planningContext(contract.IntentGeneralQuery, 0.9, contract.SlotAnalysis{Completeness: 0.6}, "tell me something")
	decision := New().Plan(context.Background(), pc)

	if decision.Primary.Type != contract.ActionProvideResponse {
		t.Fatalf("unexpected action: %s", decision.Primary.Type)
	}
	if decision.Primary.Parameters["response_type"] != "default" {
		t.Fatalf("unexpected response type: %v", decision.Primary.Parameters["response_type"])
	}
	if decision.Confidence != 0.6 {
		t.Fatalf("unexpected confidence: %v", decision.Confidence)
	}
}

func TestDetectUrgency(t *testing.T) {
	t.Parallel()

	cases := []struct {
		utterance string
		score     float64
	}{
		{"hello", 0},
		{"this is urgent", 0.3},
		{"urgent!! now", 0.8},
		{"urgent asap immediately now quickly hurry", 1.0},
		{"what? really? how?", 0.2},
	}

	for _, tc := range cases {
		score, _ := detectUrgency(tc.utterance)
		if diff := score - tc.score; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("%q: expected %v, got %v", tc.utterance, tc.score, score)
		}
	}
}

func TestAnalyzeToolsRelevance(t *testing.T) {
	t.Parallel()

	got := analyzeTools(contract.IntentCalculation)
	if got.Best.Name != "calculator" {
		t.Fatalf("unexpected best tool: %s", got.Best.Name)
	}
	if got.BestRelevance != 1.0 {
		t.Fatalf("unexpected relevance: %v", got.BestRelevance)
	}
	if got.AvailableCount != 4 {
		t.Fatalf("unexpected available count: %d", got.AvailableCount)
	}

	got = analyzeTools(contract.IntentGeneralQuery)
	if got.BestRelevance > 0.8 {
		t.Fatalf("no tool should be relevant for general queries: %+v", got)
	}
}

func TestSummaryAggregatesDecisions(t *testing.T) {
	t.Parallel()

	p := New()
	for i := 0; i < 3; i++ {
		pc := planningContext(contract.IntentCalculation, 0.9, contract.SlotAnalysis{Completeness: 1.0}, "calculate")
		p.Plan(context.Background(), pc)
	}

	summary := p.Summary()
	if summary.TotalDecisions != 3 {
		t.Fatalf("unexpected total: %d", summary.TotalDecisions)
	}
	if summary.ActionDistribution[contract.ActionCallCalculator] != 3 {
		t.Fatalf("unexpected distribution: %+v", summary.ActionDistribution)
	}
	if summary.AverageConfidence != 0.95 {
		t.Fatalf("unexpected average confidence: %v", summary.AverageConfidence)
	}
	if len(summary.RecentReasonings) != 3 {
		t.Fatalf("unexpected reasonings: %v", summary.RecentReasonings)
	}
}
