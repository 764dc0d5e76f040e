package nodes

import (
	"fmt"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

func ExtractIntent(in *GraphState, extractor contract.Extractor) (*GraphState, error) {
	if in == nil || in.Memory == nil {
		return nil, fmt.Errorf("%w: graph memory is nil", contract.ErrValidation)
	}

	in.Extraction = extractor.Extract(in.Text, in.Memory)
	return in, nil
}
