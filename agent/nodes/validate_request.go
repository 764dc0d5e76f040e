// Package nodes holds the per-step functions of the turn pipeline.
// Each node takes the shared GraphState, does one thing, and passes
// the state on.
package nodes

import (
	"errors"
	"strings"
	"time"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
	memoryx "github.com/tanpawarit/agentic-dialogue/agent/memory"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidUser    = errors.New("user id is empty")
)

type GraphInput struct {
	UserID         string
	ConversationID string
	Text           string
}

type GraphOutput struct {
	Reply          string
	ConversationID string
	Trace          contract.DecisionTrace
}

type GraphState struct {
	UserID         string
	ConversationID string
	Text           string
	Now            time.Time
	Started        time.Time

	Memory     *memoryx.ConversationMemory
	Extraction contract.Extraction
	Slots      contract.SlotAnalysis
	Decision   contract.Decision
	Result     contract.ActionResult
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidUser
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	now := nowFn().UTC()
	return &GraphState{
		UserID:         userID,
		ConversationID: strings.TrimSpace(in.ConversationID),
		Text:           text,
		Now:            now,
		Started:        now,
	}, nil
}
