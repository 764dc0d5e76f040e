package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisKeyPrefix = "conversation:"
	defaultRedisTTL       = 24 * time.Hour
)

// RedisConfig configures the redis-backed conversation store.
type RedisConfig struct {
	URL       string        `envconfig:"URL" split_words:"true" required:"true"`
	KeyPrefix string        `envconfig:"KEY_PREFIX" split_words:"true" default:"conversation:"`
	TTL       time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
}

// RedisStore keeps each ConversationMemory as a single TTL'd JSON
// document. Suited to session-style retention; the TTL is the external
// retention policy for this backend.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration

	now func() time.Time
}

func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		prefix = defaultRedisKeyPrefix
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}

	return &RedisStore{
		client:    client,
		keyPrefix: prefix,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

func (s *RedisStore) key(conversationID string) string {
	return s.keyPrefix + conversationID
}

func (s *RedisStore) userKey(userID string) string {
	return s.keyPrefix + "user:" + userID
}

func (s *RedisStore) Create(ctx context.Context, userID, conversationID string) (*ConversationMemory, error) {
	return createThrough(ctx, s, userID, conversationID, s.now())
}

func (s *RedisStore) Save(ctx context.Context, mem *ConversationMemory) error {
	if mem == nil {
		return ErrNilMemory
	}
	if err := mem.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(mem)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	if err := s.client.Set(ctx, s.key(mem.ConversationID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	// Index membership shares the document TTL so the index ages out with it.
	if err := s.client.SAdd(ctx, s.userKey(mem.UserID), mem.ConversationID).Err(); err != nil {
		return fmt.Errorf("index conversation: %w", err)
	}
	if err := s.client.Expire(ctx, s.userKey(mem.UserID), s.ttl).Err(); err != nil {
		return fmt.Errorf("touch user index: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, conversationID string) (*ConversationMemory, error) {
	raw, err := s.client.Get(ctx, s.key(conversationID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	var mem ConversationMemory
	if err := json.Unmarshal([]byte(raw), &mem); err != nil {
		return nil, fmt.Errorf("unmarshal conversation: %w", err)
	}
	mem.EnsureSlotsMap()
	return &mem, nil
}

func (s *RedisStore) AddTurn(ctx context.Context, conversationID string, turn Turn) error {
	return addTurnThrough(ctx, s, conversationID, turn, s.now())
}

func (s *RedisStore) UpdateSlot(ctx context.Context, conversationID, name string, value any, confidence float64) error {
	return updateSlotThrough(ctx, s, conversationID, name, value, confidence, s.now())
}

func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	mem, err := s.Get(ctx, conversationID)
	if err != nil && !errors.Is(err, ErrConversationNotFound) {
		return err
	}
	if err := s.client.Del(ctx, s.key(conversationID)).Err(); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if mem != nil {
		if err := s.client.SRem(ctx, s.userKey(mem.UserID), conversationID).Err(); err != nil {
			return fmt.Errorf("unindex conversation: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) ListByUser(ctx context.Context, userID string) ([]*ConversationMemory, error) {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	memories := make([]*ConversationMemory, 0, len(ids))
	for _, id := range ids {
		mem, err := s.Get(ctx, id)
		if errors.Is(err, ErrConversationNotFound) {
			// Document expired out from under the index.
			continue
		}
		if err != nil {
			return nil, err
		}
		memories = append(memories, mem)
	}
	return memories, nil
}

// Cleanup is a no-op for redis: documents expire via TTL.
func (s *RedisStore) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	return 0, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
