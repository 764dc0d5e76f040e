package nodes

import (
	"fmt"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

func AnalyzeSlots(in *GraphState, analyzer contract.SlotAnalyzer) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contract.ErrValidation)
	}

	in.Slots = analyzer.Analyze(in.Extraction.Intent, in.Extraction.Entities)
	return in, nil
}
