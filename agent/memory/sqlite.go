package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists conversations in a local SQLite database. It is
// the default backend and mirrors the conversations / turns / slots
// table split of the original service.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex

	now func() time.Time
}

// NewSQLiteStore opens or creates the database at dbPath and runs the
// schema migration.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		conversation_id TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		state           TEXT NOT NULL,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS conversation_turns (
		turn_id         TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		user_message    TEXT NOT NULL,
		bot_response    TEXT NOT NULL,
		intent          TEXT NOT NULL,
		entities        TEXT,
		timestamp       TEXT NOT NULL,
		confidence      REAL NOT NULL DEFAULT 0,
		FOREIGN KEY (conversation_id) REFERENCES conversations(conversation_id)
	);
	CREATE INDEX IF NOT EXISTS idx_turns_conversation ON conversation_turns(conversation_id, timestamp);
	CREATE TABLE IF NOT EXISTS conversation_slots (
		conversation_id TEXT NOT NULL,
		slot_name       TEXT NOT NULL,
		slot_value      TEXT,
		confidence      REAL NOT NULL DEFAULT 0,
		last_updated    TEXT NOT NULL,
		PRIMARY KEY (conversation_id, slot_name),
		FOREIGN KEY (conversation_id) REFERENCES conversations(conversation_id)
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, updated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Create(ctx context.Context, userID, conversationID string) (*ConversationMemory, error) {
	return createThrough(ctx, s, userID, conversationID, s.now())
}

func (s *SQLiteStore) Save(ctx context.Context, mem *ConversationMemory) error {
	if mem == nil {
		return ErrNilMemory
	}
	if err := mem.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO conversations (conversation_id, user_id, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		mem.ConversationID, mem.UserID, string(mem.State),
		mem.CreatedAt.UTC().Format(time.RFC3339Nano),
		mem.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}

	for _, turn := range mem.Turns {
		entities, err := json.Marshal(turn.Entities)
		if err != nil {
			return fmt.Errorf("marshal turn entities: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO conversation_turns
			(turn_id, conversation_id, user_message, bot_response, intent, entities, timestamp, confidence)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			turn.ID, mem.ConversationID, turn.UserMessage, turn.BotResponse,
			turn.Intent, string(entities),
			turn.Timestamp.UTC().Format(time.RFC3339Nano), turn.Confidence,
		)
		if err != nil {
			return fmt.Errorf("save turn %s: %w", turn.ID, err)
		}
	}

	for name, slot := range mem.Slots {
		value, err := json.Marshal(slot.Value)
		if err != nil {
			return fmt.Errorf("marshal slot %s: %w", name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO conversation_slots
			(conversation_id, slot_name, slot_value, confidence, last_updated)
			VALUES (?, ?, ?, ?, ?)`,
			mem.ConversationID, name, string(value), slot.Confidence,
			slot.LastUpdated.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("save slot %s: %w", name, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Get(ctx context.Context, conversationID string) (*ConversationMemory, error) {
	var (
		mem       ConversationMemory
		state     string
		createdAt string
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT conversation_id, user_id, state, created_at, updated_at
		FROM conversations WHERE conversation_id = ?`, conversationID,
	).Scan(&mem.ConversationID, &mem.UserID, &state, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	mem.State = State(state)
	if mem.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if mem.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	mem.EnsureSlotsMap()

	if err := s.loadTurns(ctx, &mem); err != nil {
		return nil, err
	}
	if err := s.loadSlots(ctx, &mem); err != nil {
		return nil, err
	}
	return &mem, nil
}

func (s *SQLiteStore) loadTurns(ctx context.Context, mem *ConversationMemory) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT turn_id, user_message, bot_response, intent, entities, timestamp, confidence
		FROM conversation_turns WHERE conversation_id = ?
		ORDER BY timestamp ASC`, mem.ConversationID)
	if err != nil {
		return fmt.Errorf("load turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			turn     Turn
			entities sql.NullString
			ts       string
		)
		if err := rows.Scan(&turn.ID, &turn.UserMessage, &turn.BotResponse, &turn.Intent, &entities, &ts, &turn.Confidence); err != nil {
			return fmt.Errorf("scan turn: %w", err)
		}
		if entities.Valid && entities.String != "" {
			if err := json.Unmarshal([]byte(entities.String), &turn.Entities); err != nil {
				return fmt.Errorf("decode turn entities: %w", err)
			}
		}
		if turn.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return fmt.Errorf("parse turn timestamp: %w", err)
		}
		mem.Turns = append(mem.Turns, turn)
	}
	return rows.Err()
}

func (s *SQLiteStore) loadSlots(ctx context.Context, mem *ConversationMemory) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slot_name, slot_value, confidence, last_updated
		FROM conversation_slots WHERE conversation_id = ?`, mem.ConversationID)
	if err != nil {
		return fmt.Errorf("load slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			slot    Slot
			rawVal  sql.NullString
			updated string
		)
		if err := rows.Scan(&slot.Name, &rawVal, &slot.Confidence, &updated); err != nil {
			return fmt.Errorf("scan slot: %w", err)
		}
		if rawVal.Valid && rawVal.String != "" {
			if err := json.Unmarshal([]byte(rawVal.String), &slot.Value); err != nil {
				return fmt.Errorf("decode slot value: %w", err)
			}
		}
		if slot.LastUpdated, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return fmt.Errorf("parse slot last_updated: %w", err)
		}
		mem.Slots[slot.Name] = &slot
	}
	return rows.Err()
}

func (s *SQLiteStore) AddTurn(ctx context.Context, conversationID string, turn Turn) error {
	return addTurnThrough(ctx, s, conversationID, turn, s.now())
}

func (s *SQLiteStore) UpdateSlot(ctx context.Context, conversationID, name string, value any, confidence float64) error {
	return updateSlotThrough(ctx, s, conversationID, name, value, confidence, s.now())
}

func (s *SQLiteStore) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM conversation_slots WHERE conversation_id = ?`,
		`DELETE FROM conversation_turns WHERE conversation_id = ?`,
		`DELETE FROM conversations WHERE conversation_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, conversationID); err != nil {
			return fmt.Errorf("delete conversation: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]*ConversationMemory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT conversation_id FROM conversations
		WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan conversation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	memories := make([]*ConversationMemory, 0, len(ids))
	for _, id := range ids {
		mem, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		memories = append(memories, mem)
	}
	return memories, nil
}

// Cleanup removes conversations not updated within olderThan and
// returns how many were deleted.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan).UTC().Format(time.RFC3339Nano)

	rows, err := s.db.QueryContext(ctx, `
		SELECT conversation_id FROM conversations WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("select stale conversations: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan stale id: %w", err)
		}
		stale = append(stale, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range stale {
		if err := s.Delete(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
