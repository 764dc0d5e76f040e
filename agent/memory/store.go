package memory

import (
	"context"
	"errors"
	"time"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNilMemory            = errors.New("conversation memory is nil")
	ErrInvalidConversation  = errors.New("conversation id is empty")
)

// Store is the persistence contract for conversation memory. All
// operations are keyed by conversation id.
//
// Two turns racing on the same conversation id resolve last-writer-wins;
// implementations serialize writers in-process but provide no
// cross-process versioning.
type Store interface {
	Create(ctx context.Context, userID, conversationID string) (*ConversationMemory, error)
	Get(ctx context.Context, conversationID string) (*ConversationMemory, error)
	Save(ctx context.Context, mem *ConversationMemory) error
	AddTurn(ctx context.Context, conversationID string, turn Turn) error
	UpdateSlot(ctx context.Context, conversationID, name string, value any, confidence float64) error
	Delete(ctx context.Context, conversationID string) error
	ListByUser(ctx context.Context, userID string) ([]*ConversationMemory, error)
	Cleanup(ctx context.Context, olderThan time.Duration) (int, error)
}

// createThrough is the shared create path: build a fresh memory and
// persist it through the implementation's Save.
func createThrough(ctx context.Context, s Store, userID, conversationID string, now time.Time) (*ConversationMemory, error) {
	mem := NewConversationMemory(conversationID, userID, now)
	if err := mem.Validate(); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, mem); err != nil {
		return nil, err
	}
	return mem, nil
}

// addTurnThrough implements the load-modify-save AddTurn used by every
// backend.
func addTurnThrough(ctx context.Context, s Store, conversationID string, turn Turn, now time.Time) error {
	mem, err := s.Get(ctx, conversationID)
	if err != nil {
		return err
	}
	mem.AddTurn(turn, now)
	return s.Save(ctx, mem)
}

func updateSlotThrough(ctx context.Context, s Store, conversationID, name string, value any, confidence float64, now time.Time) error {
	mem, err := s.Get(ctx, conversationID)
	if err != nil {
		return err
	}
	mem.UpdateSlot(name, value, confidence, now)
	return s.Save(ctx, mem)
}
