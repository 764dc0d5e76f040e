package nodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tanpawarit/agentic-dialogue/agent/contract"
	memoryx "github.com/tanpawarit/agentic-dialogue/agent/memory"
)

// LoadOrCreateMemory resolves the conversation for this turn. A blank
// conversation id mints a fresh one; an unknown id is recreated under
// the same id so a caller can resume with any identifier.
func LoadOrCreateMemory(ctx context.Context, in *GraphState, store memoryx.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contract.ErrValidation)
	}

	if in.ConversationID == "" {
		in.ConversationID = uuid.NewString()
		mem, err := store.Create(ctx, in.UserID, in.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("create conversation: %w", err)
		}
		in.Memory = mem
		return in, nil
	}

	mem, err := store.Get(ctx, in.ConversationID)
	if err == nil {
		in.Memory = mem
		return in, nil
	}
	if !errors.Is(err, memoryx.ErrConversationNotFound) {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	mem, err = store.Create(ctx, in.UserID, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	in.Memory = mem
	return in, nil
}
