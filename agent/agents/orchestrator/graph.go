package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/agentic-dialogue/agent/nodes"
)

func (o *Orchestrator) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_or_create_memory",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadOrCreateMemory(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_or_create_memory: %w", err)
	}

	if err := graph.AddLambdaNode("extract_intent",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExtractIntent(in, o.extractor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_intent: %w", err)
	}

	if err := graph.AddLambdaNode("analyze_slots",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AnalyzeSlots(in, o.analyzer)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node analyze_slots: %w", err)
	}

	if err := graph.AddLambdaNode("plan_action",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.PlanAction(ctx, in, o.planner)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node plan_action: %w", err)
	}

	if err := graph.AddLambdaNode("execute_action",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExecuteAction(ctx, in, o.executor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_action: %w", err)
	}

	if err := graph.AddLambdaNode("record_turn",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RecordTurn(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_turn: %w", err)
	}

	if err := graph.AddLambdaNode("save_memory",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SaveMemory(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_memory: %w", err)
	}

	if err := graph.AddLambdaNode("finalize",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.Finalize(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_or_create_memory"},
		{"load_or_create_memory", "extract_intent"},
		{"extract_intent", "analyze_slots"},
		{"analyze_slots", "plan_action"},
		{"plan_action", "execute_action"},
		{"execute_action", "record_turn"},
		{"record_turn", "save_memory"},
		{"save_memory", "finalize"},
		{"finalize", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
