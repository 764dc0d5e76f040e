package memory

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "conversations.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteCreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.Create(ctx, "user-1", "conv-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.State != StateActive {
		t.Fatalf("unexpected initial state: %s", created.State)
	}

	got, err := store.Get(ctx, "conv-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "user-1" || got.ConversationID != "conv-1" {
		t.Fatalf("unexpected memory: %+v", got)
	}
}

func TestSQLiteGetUnknownReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestSQLiteTurnAndSlotRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Create(ctx, "user-1", "conv-1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	turn := Turn{
		ID:          "t1",
		UserMessage: "Is there an outlet in SS2?",
		BotResponse: "Yes!",
		Intent:      "outlet_inquiry",
		Entities:    map[string]any{"location": "ss2"},
		Timestamp:   time.Now().UTC(),
		Confidence:  0.9,
	}
	if err := store.AddTurn(ctx, "conv-1", turn); err != nil {
		t.Fatalf("add turn: %v", err)
	}
	if err := store.UpdateSlot(ctx, "conv-1", "location", "ss2", 0.9); err != nil {
		t.Fatalf("update slot: %v", err)
	}

	got, err := store.Get(ctx, "conv-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(got.Turns))
	}
	if got.Turns[0].Entities["location"] != "ss2" {
		t.Fatalf("turn entities lost: %+v", got.Turns[0].Entities)
	}
	if got.SlotValue("location") != "ss2" {
		t.Fatalf("slot lost: %v", got.SlotValue("location"))
	}
}

func TestSQLiteRepeatedGetReturnsEqualSnapshots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Create(ctx, "user-1", "conv-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	turn := Turn{
		ID:          "t1",
		UserMessage: "Is there an outlet in SS2?",
		BotResponse: "Yes!",
		Intent:      "outlet_inquiry",
		Entities:    map[string]any{"location": "ss2"},
		Timestamp:   time.Now().UTC(),
		Confidence:  0.9,
	}
	if err := store.AddTurn(ctx, "conv-1", turn); err != nil {
		t.Fatalf("add turn: %v", err)
	}
	if err := store.UpdateSlot(ctx, "conv-1", "location", "ss2", 0.9); err != nil {
		t.Fatalf("update slot: %v", err)
	}

	// A read never mutates stored state, so back-to-back reads must
	// see the same conversation.
	first, err := store.Get(ctx, "conv-1")
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	second, err := store.Get(ctx, "conv-1")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("snapshots diverged:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestSQLiteSlotOverwrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Create(ctx, "user-1", "conv-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.UpdateSlot(ctx, "conv-1", "location", "ss2", 0.9); err != nil {
		t.Fatalf("update slot: %v", err)
	}
	if err := store.UpdateSlot(ctx, "conv-1", "location", "mid_valley", 0.8); err != nil {
		t.Fatalf("update slot: %v", err)
	}

	got, err := store.Get(ctx, "conv-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Slots) != 1 {
		t.Fatalf("expected 1 slot key, got %d", len(got.Slots))
	}
	if got.SlotValue("location") != "mid_valley" {
		t.Fatalf("slot not overwritten: %v", got.SlotValue("location"))
	}
}

func TestSQLiteDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Create(ctx, "user-1", "conv-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Delete(ctx, "conv-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "conv-1"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound after delete, got %v", err)
	}
}

func TestSQLiteListByUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	for _, id := range []string{"conv-1", "conv-2"} {
		if _, err := store.Create(ctx, "user-1", id); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if _, err := store.Create(ctx, "user-2", "conv-3"); err != nil {
		t.Fatalf("create: %v", err)
	}

	memories, err := store.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(memories) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(memories))
	}
}

func TestSQLiteCleanup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	old := time.Now().Add(-48 * time.Hour)
	store.now = func() time.Time { return old }
	if _, err := store.Create(ctx, "user-1", "conv-old"); err != nil {
		t.Fatalf("create: %v", err)
	}

	store.now = time.Now
	if _, err := store.Create(ctx, "user-1", "conv-new"); err != nil {
		t.Fatalf("create: %v", err)
	}

	deleted, err := store.Cleanup(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted conversation, got %d", deleted)
	}
	if _, err := store.Get(ctx, "conv-old"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("old conversation should be gone, got %v", err)
	}
	if _, err := store.Get(ctx, "conv-new"); err != nil {
		t.Fatalf("new conversation should survive: %v", err)
	}
}
