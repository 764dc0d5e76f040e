package nodes

import (
	"context"
	"fmt"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
	memoryx "github.com/tanpawarit/agentic-dialogue/agent/memory"
)

func SaveMemory(ctx context.Context, in *GraphState, store memoryx.Store) (*GraphState, error) {
	if in == nil || in.Memory == nil {
		return nil, fmt.Errorf("%w: graph memory is nil", contract.ErrValidation)
	}

	if err := in.Memory.Validate(); err != nil {
		return nil, err
	}
	if err := store.Save(ctx, in.Memory); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}
	return in, nil
}
