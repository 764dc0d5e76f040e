package nodes

import (
	"context"
	"fmt"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

func ExecuteAction(ctx context.Context, in *GraphState, exec contract.Executor) (*GraphState, error) {
	if in == nil || in.Memory == nil {
		return nil, fmt.Errorf("%w: graph memory is nil", contract.ErrValidation)
	}

	in.Result = exec.Execute(ctx, in.Decision, contract.ExecutionContext{
		Memory:    in.Memory,
		Utterance: in.Text,
		Entities:  in.Extraction.Entities,
		Intent:    in.Extraction.Intent,
	})
	return in, nil
}
