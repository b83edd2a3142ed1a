package conversation

import (
	"context"
	"fmt"

	domconv "github.com/kailas-cloud/convsearch/internal/domain/conversation"
)

// listStore is the consumer interface for the Redis driver (ISP).
type listStore interface {
	Ping(ctx context.Context) error
	RPush(ctx context.Context, key string, values ...[]byte) error
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// RedisRepo keeps each conversation as a Redis list; list order is insertion order.
type RedisRepo struct {
	store     listStore
	keyPrefix string
}

// NewRedis creates a Redis-backed conversation repository.
func NewRedis(s listStore, keyPrefix string) *RedisRepo {
	return &RedisRepo{store: s, keyPrefix: keyPrefix}
}

// Name implements usecase/conversation.Store.
func (r *RedisRepo) Name() string { return "Redis" }

// Ping checks connectivity.
func (r *RedisRepo) Ping(ctx context.Context) error {
	return r.store.Ping(ctx) //nolint:wrapcheck // driver errors carry op context
}

// Append pushes the turn onto the conversation list.
func (r *RedisRepo) Append(ctx context.Context, turn domconv.Turn) error {
	data, err := marshalTurn(turn)
	if err != nil {
		return err
	}
	key := r.key(turn.ConversationID())
	if err := r.store.RPush(ctx, key, data); err != nil {
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	return nil
}

// History returns all turns of a conversation in insertion order.
func (r *RedisRepo) History(ctx context.Context, conversationID string) ([]domconv.Turn, error) {
	key := r.key(conversationID)
	items, err := r.store.LRange(ctx, key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	turns := make([]domconv.Turn, 0, len(items))
	for _, it := range items {
		t, err := unmarshalTurn(it)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (r *RedisRepo) key(conversationID string) string {
	return r.keyPrefix + "conversation:" + conversationID
}
