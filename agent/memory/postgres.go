package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// PostgresConfig configures the bun-backed conversation store.
type PostgresConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

type conversationRow struct {
	bun.BaseModel `bun:"table:conversations"`

	ConversationID string    `bun:"conversation_id,pk"`
	UserID         string    `bun:"user_id,notnull"`
	State          string    `bun:"state,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
	UpdatedAt      time.Time `bun:"updated_at,notnull"`
}

type turnRow struct {
	bun.BaseModel `bun:"table:conversation_turns"`

	TurnID         string    `bun:"turn_id,pk"`
	ConversationID string    `bun:"conversation_id,notnull"`
	UserMessage    string    `bun:"user_message,notnull"`
	BotResponse    string    `bun:"bot_response,notnull"`
	Intent         string    `bun:"intent,notnull"`
	Entities       string    `bun:"entities"`
	Timestamp      time.Time `bun:"timestamp,notnull"`
	Confidence     float64   `bun:"confidence,notnull"`
}

type slotRow struct {
	bun.BaseModel `bun:"table:conversation_slots"`

	ConversationID string    `bun:"conversation_id,pk"`
	SlotName       string    `bun:"slot_name,pk"`
	SlotValue      string    `bun:"slot_value"`
	Confidence     float64   `bun:"confidence,notnull"`
	LastUpdated    time.Time `bun:"last_updated,notnull"`
}

// PostgresStore persists conversations in Postgres through bun, with
// the same three-table layout as the sqlite backend.
type PostgresStore struct {
	db *bun.DB

	now func() time.Time
}

func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	s := &PostgresStore{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	for _, model := range []any{
		(*conversationRow)(nil),
		(*turnRow)(nil),
		(*slotRow)(nil),
	} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, userID, conversationID string) (*ConversationMemory, error) {
	return createThrough(ctx, s, userID, conversationID, s.now())
}

func (s *PostgresStore) Save(ctx context.Context, mem *ConversationMemory) error {
	if mem == nil {
		return ErrNilMemory
	}
	if err := mem.Validate(); err != nil {
		return err
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		conv := conversationRow{
			ConversationID: mem.ConversationID,
			UserID:         mem.UserID,
			State:          string(mem.State),
			CreatedAt:      mem.CreatedAt.UTC(),
			UpdatedAt:      mem.UpdatedAt.UTC(),
		}
		_, err := tx.NewInsert().Model(&conv).
			On("CONFLICT (conversation_id) DO UPDATE").
			Set("state = EXCLUDED.state").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("save conversation: %w", err)
		}

		for _, turn := range mem.Turns {
			entities, err := json.Marshal(turn.Entities)
			if err != nil {
				return fmt.Errorf("marshal turn entities: %w", err)
			}
			row := turnRow{
				TurnID:         turn.ID,
				ConversationID: mem.ConversationID,
				UserMessage:    turn.UserMessage,
				BotResponse:    turn.BotResponse,
				Intent:         turn.Intent,
				Entities:       string(entities),
				Timestamp:      turn.Timestamp.UTC(),
				Confidence:     turn.Confidence,
			}
			if _, err := tx.NewInsert().Model(&row).
				On("CONFLICT (turn_id) DO NOTHING").
				Exec(ctx); err != nil {
				return fmt.Errorf("save turn %s: %w", turn.ID, err)
			}
		}

		for name, slot := range mem.Slots {
			value, err := json.Marshal(slot.Value)
			if err != nil {
				return fmt.Errorf("marshal slot %s: %w", name, err)
			}
			row := slotRow{
				ConversationID: mem.ConversationID,
				SlotName:       name,
				SlotValue:      string(value),
				Confidence:     slot.Confidence,
				LastUpdated:    slot.LastUpdated.UTC(),
			}
			if _, err := tx.NewInsert().Model(&row).
				On("CONFLICT (conversation_id, slot_name) DO UPDATE").
				Set("slot_value = EXCLUDED.slot_value").
				Set("confidence = EXCLUDED.confidence").
				Set("last_updated = EXCLUDED.last_updated").
				Exec(ctx); err != nil {
				return fmt.Errorf("save slot %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) Get(ctx context.Context, conversationID string) (*ConversationMemory, error) {
	var conv conversationRow
	err := s.db.NewSelect().Model(&conv).
		Where("conversation_id = ?", conversationID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	mem := ConversationMemory{
		ConversationID: conv.ConversationID,
		UserID:         conv.UserID,
		State:          State(conv.State),
		CreatedAt:      conv.CreatedAt,
		UpdatedAt:      conv.UpdatedAt,
	}
	mem.EnsureSlotsMap()

	var turns []turnRow
	err = s.db.NewSelect().Model(&turns).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}
	for _, row := range turns {
		turn := Turn{
			ID:          row.TurnID,
			UserMessage: row.UserMessage,
			BotResponse: row.BotResponse,
			Intent:      row.Intent,
			Timestamp:   row.Timestamp,
			Confidence:  row.Confidence,
		}
		if row.Entities != "" {
			if err := json.Unmarshal([]byte(row.Entities), &turn.Entities); err != nil {
				return nil, fmt.Errorf("decode turn entities: %w", err)
			}
		}
		mem.Turns = append(mem.Turns, turn)
	}

	var slots []slotRow
	err = s.db.NewSelect().Model(&slots).
		Where("conversation_id = ?", conversationID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	for _, row := range slots {
		slot := Slot{
			Name:        row.SlotName,
			Confidence:  row.Confidence,
			LastUpdated: row.LastUpdated,
		}
		if row.SlotValue != "" {
			if err := json.Unmarshal([]byte(row.SlotValue), &slot.Value); err != nil {
				return nil, fmt.Errorf("decode slot value: %w", err)
			}
		}
		mem.Slots[row.SlotName] = &slot
	}

	return &mem, nil
}

func (s *PostgresStore) AddTurn(ctx context.Context, conversationID string, turn Turn) error {
	return addTurnThrough(ctx, s, conversationID, turn, s.now())
}

func (s *PostgresStore) UpdateSlot(ctx context.Context, conversationID, name string, value any, confidence float64) error {
	return updateSlotThrough(ctx, s, conversationID, name, value, confidence, s.now())
}

func (s *PostgresStore) Delete(ctx context.Context, conversationID string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*slotRow)(nil)).
			Where("conversation_id = ?", conversationID).Exec(ctx); err != nil {
			return fmt.Errorf("delete slots: %w", err)
		}
		if _, err := tx.NewDelete().Model((*turnRow)(nil)).
			Where("conversation_id = ?", conversationID).Exec(ctx); err != nil {
			return fmt.Errorf("delete turns: %w", err)
		}
		if _, err := tx.NewDelete().Model((*conversationRow)(nil)).
			Where("conversation_id = ?", conversationID).Exec(ctx); err != nil {
			return fmt.Errorf("delete conversation: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*ConversationMemory, error) {
	var rows []conversationRow
	err := s.db.NewSelect().Model(&rows).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	memories := make([]*ConversationMemory, 0, len(rows))
	for _, row := range rows {
		mem, err := s.Get(ctx, row.ConversationID)
		if err != nil {
			return nil, err
		}
		memories = append(memories, mem)
	}
	return memories, nil
}

func (s *PostgresStore) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan).UTC()

	var stale []conversationRow
	err := s.db.NewSelect().Model(&stale).
		Column("conversation_id").
		Where("updated_at < ?", cutoff).
		Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("select stale conversations: %w", err)
	}

	for _, row := range stale {
		if err := s.Delete(ctx, row.ConversationID); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
