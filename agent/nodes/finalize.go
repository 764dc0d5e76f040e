package nodes

import (
	"fmt"
	"time"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

// Finalize shapes the graph output. The reply is whatever the executor
// produced, including the apology when every planned action failed.
func Finalize(in *GraphState, nowFn func() time.Time) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contract.ErrValidation)
	}

	return GraphOutput{
		Reply:          in.Result.Response,
		ConversationID: in.ConversationID,
		Trace: contract.DecisionTrace{
			Intent:           in.Extraction.Intent,
			Confidence:       in.Extraction.Confidence,
			PlannedAction:    in.Decision.Primary.Type,
			ActionReasoning:  in.Decision.Primary.Reasoning,
			ExecutionSuccess: in.Result.Success,
			FallbackUsed:     in.Result.FallbackUsed,
			Duration:         nowFn().UTC().Sub(in.Started),
		},
	}, nil
}
