package memory

import (
	"strings"
	"testing"
	"time"
)

func TestAddTurnIsAppendOnly(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	mem := NewConversationMemory("conv-1", "user-1", now)

	mem.AddTurn(Turn{ID: "t1", UserMessage: "hello", BotResponse: "hi"}, now)
	mem.AddTurn(Turn{ID: "t2", UserMessage: "bye", BotResponse: "bye"}, now.Add(time.Minute))

	if len(mem.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(mem.Turns))
	}
	if mem.Turns[0].ID != "t1" || mem.Turns[1].ID != "t2" {
		t.Fatalf("turn order changed: %s, %s", mem.Turns[0].ID, mem.Turns[1].ID)
	}
	if !mem.UpdatedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("UpdatedAt not touched: %v", mem.UpdatedAt)
	}
}

func TestUpdateSlotOverwritesWithoutGrowingKeyCount(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	mem := NewConversationMemory("conv-1", "user-1", now)

	mem.UpdateSlot("location", "ss2", 0.9, now)
	mem.UpdateSlot("location", "mid_valley", 0.8, now.Add(time.Second))

	if len(mem.Slots) != 1 {
		t.Fatalf("expected 1 slot key, got %d", len(mem.Slots))
	}
	if got := mem.SlotValue("location"); got != "mid_valley" {
		t.Fatalf("unexpected slot value: %v", got)
	}
	if mem.Slots["location"].Confidence != 0.8 {
		t.Fatalf("confidence not overwritten: %v", mem.Slots["location"].Confidence)
	}
}

func TestSlotValueAbsent(t *testing.T) {
	t.Parallel()

	mem := NewConversationMemory("conv-1", "user-1", time.Now())
	if got := mem.SlotValue("missing"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestLatestTurn(t *testing.T) {
	t.Parallel()

	now := time.Now()
	mem := NewConversationMemory("conv-1", "user-1", now)
	if mem.LatestTurn() != nil {
		t.Fatal("expected nil latest turn for empty conversation")
	}

	mem.AddTurn(Turn{ID: "t1"}, now)
	mem.AddTurn(Turn{ID: "t2"}, now)
	if got := mem.LatestTurn(); got == nil || got.ID != "t2" {
		t.Fatalf("unexpected latest turn: %+v", got)
	}
}

func TestContextShowsRecentTurnsAndSlots(t *testing.T) {
	t.Parallel()

	now := time.Now()
	mem := NewConversationMemory("conv-1", "user-1", now)
	for _, id := range []string{"t1", "t2", "t3", "t4"} {
		mem.AddTurn(Turn{ID: id, UserMessage: "msg-" + id, BotResponse: "reply-" + id}, now)
	}
	mem.UpdateSlot("location", "ss2", 0.9, now)

	ctx := mem.Context()
	if strings.Contains(ctx, "msg-t1") {
		t.Fatal("context should only show the last three turns")
	}
	for _, id := range []string{"t2", "t3", "t4"} {
		if !strings.Contains(ctx, "msg-"+id) {
			t.Fatalf("context missing turn %s: %q", id, ctx)
		}
	}
	if !strings.Contains(ctx, "location: ss2") {
		t.Fatalf("context missing slot: %q", ctx)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	if err := NewConversationMemory("conv-1", "user-1", now).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := NewConversationMemory("", "user-1", now).Validate(); err == nil {
		t.Fatal("expected error for empty conversation id")
	}
	if err := NewConversationMemory("conv-1", "", now).Validate(); err == nil {
		t.Fatal("expected error for empty user id")
	}
}
