package memory

import (
	"fmt"
	"strings"
	"time"
)

// State is the lifecycle state of a conversation.
type State string

const (
	StateActive          State = "active"
	StateWaitingForInput State = "waiting_for_input"
	StateCompleted       State = "completed"
	StateError           State = "error"
)

// Slot is a named piece of information persisted across turns.
// Updates overwrite the slot wholesale; there is no partial merge.
type Slot struct {
	Name        string    `json:"name"`
	Value       any       `json:"value,omitempty"`
	Confidence  float64   `json:"confidence"`
	LastUpdated time.Time `json:"last_updated"`
}

// Turn is one user-utterance/bot-response pair. Turns are immutable
// once appended and never reordered.
type Turn struct {
	ID          string         `json:"turn_id"`
	UserMessage string         `json:"user_message"`
	BotResponse string         `json:"bot_response"`
	Intent      string         `json:"intent"`
	Entities    map[string]any `json:"entities,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Confidence  float64        `json:"confidence"`
}

// ConversationMemory is the durable per-conversation state consumed
// and mutated by the turn pipeline.
type ConversationMemory struct {
	ConversationID string           `json:"conversation_id"`
	UserID         string           `json:"user_id"`
	Turns          []Turn           `json:"turns,omitempty"`
	Slots          map[string]*Slot `json:"slots,omitempty"`
	State          State            `json:"state"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func NewConversationMemory(conversationID, userID string, now time.Time) *ConversationMemory {
	return &ConversationMemory{
		ConversationID: conversationID,
		UserID:         userID,
		Slots:          make(map[string]*Slot, 8),
		State:          StateActive,
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}
}

// EnsureSlotsMap makes sure m.Slots is initialized after decoding.
func (m *ConversationMemory) EnsureSlotsMap() {
	if m.Slots == nil {
		m.Slots = make(map[string]*Slot, 8)
	}
}

// AddTurn appends a turn and touches UpdatedAt. Turns are append-only.
func (m *ConversationMemory) AddTurn(turn Turn, now time.Time) {
	m.Turns = append(m.Turns, turn)
	m.UpdatedAt = now.UTC()
}

// UpdateSlot overwrites the named slot with a fresh value, confidence
// and timestamp. The slot map key count only grows on new names.
func (m *ConversationMemory) UpdateSlot(name string, value any, confidence float64, now time.Time) {
	m.EnsureSlotsMap()
	m.Slots[name] = &Slot{
		Name:        name,
		Value:       value,
		Confidence:  confidence,
		LastUpdated: now.UTC(),
	}
	m.UpdatedAt = now.UTC()
}

// SlotValue returns the stored value for a slot name, nil if absent.
func (m *ConversationMemory) SlotValue(name string) any {
	if m == nil || m.Slots == nil {
		return nil
	}
	slot, ok := m.Slots[name]
	if !ok || slot == nil {
		return nil
	}
	return slot.Value
}

// LatestTurn returns the most recent turn, nil when the conversation
// has no turns yet.
func (m *ConversationMemory) LatestTurn() *Turn {
	if m == nil || len(m.Turns) == 0 {
		return nil
	}
	return &m.Turns[len(m.Turns)-1]
}

// Context renders the recent turns and current slots as plain text for
// diagnostics and prompting.
func (m *ConversationMemory) Context() string {
	var parts []string

	if len(m.Turns) > 0 {
		parts = append(parts, "Recent conversation:")
		start := len(m.Turns) - 3
		if start < 0 {
			start = 0
		}
		for _, turn := range m.Turns[start:] {
			parts = append(parts, "User: "+turn.UserMessage)
			parts = append(parts, "Bot: "+turn.BotResponse)
		}
	}

	if len(m.Slots) > 0 {
		parts = append(parts, "\nCurrent slots:")
		for name, slot := range m.Slots {
			parts = append(parts, fmt.Sprintf("- %s: %v", name, slot.Value))
		}
	}

	return strings.Join(parts, "\n")
}

func (m *ConversationMemory) Validate() error {
	if strings.TrimSpace(m.ConversationID) == "" {
		return ErrInvalidConversation
	}
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("conversation %s has empty user id", m.ConversationID)
	}
	return nil
}
