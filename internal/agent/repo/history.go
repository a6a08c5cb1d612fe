package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockpilot-poc/server/internal/agent/model"
	errx "github.com/stockpilot-poc/server/internal/core/error"
	logx "github.com/stockpilot-poc/server/pkg/logger"
)

// maxStoredTurns caps the list length per conversation; reads only ever need
// the recent window, so older turns are trimmed on write.
const maxStoredTurns = 50

// RedisHistoryRepository stores chat turns as a Redis list per conversation,
// with a TTL refreshed on every write.
type RedisHistoryRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisHistoryRepository(rdb redis.Cmdable, ttl time.Duration) *RedisHistoryRepository {
	return &RedisHistoryRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisHistoryRepository) historyKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:turns", conversationID)
}

func (r *RedisHistoryRepository) AppendTurn(ctx context.Context, conversationID string, turn model.ChatTurn) error {
	b, err := json.Marshal(turn)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to marshal chat turn")
		return fmt.Errorf("marshal chat turn: %w", err)
	}
	key := r.historyKey(conversationID)

	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push chat turn to redis")
		return errx.WrapRedis(err)
	}
	if err := r.rdb.LTrim(ctx, key, -maxStoredTurns, -1).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to trim conversation history")
		return errx.WrapRedis(err)
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on conversation key")
		}
	}
	return nil
}

func (r *RedisHistoryRepository) RecentTurns(ctx context.Context, conversationID string, n int) ([]model.ChatTurn, error) {
	if n <= 0 {
		return []model.ChatTurn{}, nil
	}
	key := r.historyKey(conversationID)

	rows, err := r.rdb.LRange(ctx, key, int64(-n), -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.ChatTurn{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation history from redis")
		return nil, errx.WrapRedis(err)
	}

	turns := make([]model.ChatTurn, 0, len(rows))
	for i, s := range rows {
		var t model.ChatTurn
		if err := json.Unmarshal([]byte(s), &t); err != nil {
			logx.Error().Err(err).Str("conversation_id", conversationID).Int("index", i).Msg("failed to unmarshal chat turn")
			return nil, fmt.Errorf("unmarshal chat turn at index %d: %w", i, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (r *RedisHistoryRepository) ClearHistory(ctx context.Context, conversationID string) error {
	key := r.historyKey(conversationID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete conversation history from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisHistoryRepository) TurnCount(ctx context.Context, conversationID string) (int, error) {
	key := r.historyKey(conversationID)
	n, err := r.rdb.LLen(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to get turn count from redis")
		return 0, errx.WrapRedis(err)
	}
	return int(n), nil
}

var _ model.HistoryRepository = (*RedisHistoryRepository)(nil)
