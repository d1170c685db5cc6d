package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"character-chat/models"

	"github.com/go-redis/redis/v8"
)

const (
	charactersIndexKey = "characters"
	maxWatchRetries    = 5
)

func characterKey(id string) string             { return "character:" + id }
func conversationKey(characterID string) string { return "conversation:" + characterID }
func conversationIDKey(id string) string        { return "conversation-id:" + id }

// RedisStore keeps characters and conversations as JSON documents in Redis. A sorted set
// scored by creation time orders the characters.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, opts *redis.Options) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}
	return NewRedisStore(client), nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getJSON[T any](ctx context.Context, c getter, key string) (*T, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &v, nil
}

// watch retries fn while other clients modify the watched keys.
func (s *RedisStore) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	var err error
	for i := 0; i < maxWatchRetries; i++ {
		err = s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (s *RedisStore) GetCharacter(ctx context.Context, id string) (*models.Character, error) {
	c, err := getJSON[models.Character](ctx, s.client, characterKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	if c == nil {
		return nil, nil
	}
	out := c.Clone()
	return &out, nil
}

func (s *RedisStore) ListCharacters(ctx context.Context) ([]models.Character, error) {
	ids, err := s.client.ZRevRange(ctx, charactersIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	characters := []models.Character{}
	if len(ids) == 0 {
		return characters, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = characterKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load characters: %w", err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry without a document; skip it
			continue
		}
		var c models.Character
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", keys[i], err)
		}
		characters = append(characters, c.Clone())
	}
	return characters, nil
}

func (s *RedisStore) CreateCharacter(ctx context.Context, in models.NewCharacter) (models.Character, error) {
	c, err := buildCharacter(in)
	if err != nil {
		return models.Character{}, err
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return models.Character{}, err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, characterKey(c.ID), raw, 0)
		pipe.ZAdd(ctx, charactersIndexKey, &redis.Z{Score: float64(c.CreatedAt.UnixMicro()), Member: c.ID})
		return nil
	})
	if err != nil {
		return models.Character{}, fmt.Errorf("failed to store character: %w", err)
	}
	return c, nil
}

func (s *RedisStore) UpdateCharacter(ctx context.Context, id string, update models.CharacterUpdate) (*models.Character, error) {
	key := characterKey(id)
	var updated *models.Character
	err := s.watch(ctx, func(tx *redis.Tx) error {
		c, err := getJSON[models.Character](ctx, tx, key)
		if err != nil || c == nil {
			updated = nil
			return err
		}
		next := update.Apply(*c)
		raw, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			return nil
		})
		if err == nil {
			updated = &next
		}
		return err
	}, key)
	if err != nil {
		return nil, fmt.Errorf("failed to update character: %w", err)
	}
	return updated, nil
}

func (s *RedisStore) DeleteCharacter(ctx context.Context, id string) (bool, error) {
	convKey := conversationKey(id)
	var deleted *redis.IntCmd
	err := s.watch(ctx, func(tx *redis.Tx) error {
		conv, err := getJSON[models.Conversation](ctx, tx, convKey)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			deleted = pipe.Del(ctx, characterKey(id))
			pipe.ZRem(ctx, charactersIndexKey, id)
			pipe.Del(ctx, convKey)
			if conv != nil {
				pipe.Del(ctx, conversationIDKey(conv.ID))
			}
			return nil
		})
		return err
	}, convKey)
	if err != nil {
		return false, fmt.Errorf("failed to delete character: %w", err)
	}
	return deleted.Val() > 0, nil
}

func (s *RedisStore) GetConversation(ctx context.Context, characterID string) (*models.Conversation, error) {
	conv, err := getJSON[models.Conversation](ctx, s.client, conversationKey(characterID))
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if conv == nil {
		return nil, nil
	}
	out := conv.Clone()
	return &out, nil
}

func (s *RedisStore) CreateConversation(ctx context.Context, in models.NewConversation) (models.Conversation, error) {
	conv := buildConversation(in)
	raw, err := json.Marshal(conv)
	if err != nil {
		return models.Conversation{}, err
	}

	key := conversationKey(conv.CharacterID)
	var out models.Conversation
	err = s.watch(ctx, func(tx *redis.Tx) error {
		existing, err := getJSON[models.Conversation](ctx, tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			out = existing.Clone()
			return nil
		}
		// the document and its id index are written together
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			pipe.Set(ctx, conversationIDKey(conv.ID), conv.CharacterID, 0)
			return nil
		})
		if err == nil {
			out = conv
		}
		return err
	}, key)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("failed to store conversation: %w", err)
	}
	return out, nil
}

// conversationOwner resolves a conversation id to its character id. Unknown ids return "".
func (s *RedisStore) conversationOwner(ctx context.Context, id string) (string, error) {
	characterID, err := s.client.Get(ctx, conversationIDKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve conversation: %w", err)
	}
	return characterID, nil
}

// modifyConversation rewrites conversation id under WATCH. A missing conversation yields nil.
func (s *RedisStore) modifyConversation(ctx context.Context, id string, change func(*models.Conversation)) (*models.Conversation, error) {
	characterID, err := s.conversationOwner(ctx, id)
	if err != nil || characterID == "" {
		return nil, err
	}

	key := conversationKey(characterID)
	var updated *models.Conversation
	err = s.watch(ctx, func(tx *redis.Tx) error {
		updated = nil
		conv, err := getJSON[models.Conversation](ctx, tx, key)
		if err != nil || conv == nil || conv.ID != id {
			return err
		}
		next := conv.Clone()
		change(&next)
		raw, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			return nil
		})
		if err == nil {
			updated = &next
		}
		return err
	}, key)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *RedisStore) UpdateConversation(ctx context.Context, id string, update models.ConversationUpdate) (*models.Conversation, error) {
	conv, err := s.modifyConversation(ctx, id, func(c *models.Conversation) {
		if update.Messages != nil {
			c.Messages = models.NormalizeMessages(update.Messages)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}
	return conv, nil
}

func (s *RedisStore) AppendMessage(ctx context.Context, id string, next MessageBuilder) (*models.Conversation, error) {
	conv, err := s.modifyConversation(ctx, id, func(c *models.Conversation) {
		c.Messages = models.NormalizeMessages(append(c.Messages, next(c.Messages)))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return conv, nil
}

// Close closes the redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
