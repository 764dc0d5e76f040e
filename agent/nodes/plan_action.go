package nodes

import (
	"context"
	"fmt"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

func PlanAction(ctx context.Context, in *GraphState, planner contract.Planner) (*GraphState, error) {
	if in == nil || in.Memory == nil {
		return nil, fmt.Errorf("%w: graph memory is nil", contract.ErrValidation)
	}

	in.Decision = planner.Plan(ctx, contract.PlanningContext{
		Intent:     in.Extraction.Intent,
		Entities:   in.Extraction.Entities,
		Confidence: in.Extraction.Confidence,
		Memory:     in.Memory,
		Utterance:  in.Text,
		Slots:      in.Slots,
	})
	return in, nil
}
