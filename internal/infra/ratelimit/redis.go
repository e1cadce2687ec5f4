package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript атомарно чистит окно, проверяет лимит и регистрирует попытку.
// Возвращает {allowed, count}.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local window_ms = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now_ms - window_ms)
	local count = redis.call('ZCARD', key)
	if count >= limit then
		return {0, count}
	end

	redis.call('ZADD', key, now_ms, member)
	redis.call('PEXPIRE', key, window_ms)
	return {1, count + 1}
`)

// RedisStore скользящее окно в sorted set Redis, общее для всех экземпляров сервиса
type RedisStore struct {
	client redis.Scripter
	prefix string
}

// NewRedisStore создает хранилище поверх клиента Redis
func NewRedisStore(client redis.Scripter, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Hit выполняет проверку и регистрацию попытки одним Lua скриптом
func (s *RedisStore) Hit(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int, error) {
	vals, err := slidingWindowScript.Run(ctx, s.client, []string{s.prefix + ":" + key},
		now.UnixMilli(),
		window.Milliseconds(),
		limit,
		fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: redis script: %w", err)
	}
	if len(vals) != 2 {
		return false, 0, fmt.Errorf("ratelimit: unexpected script result %v", vals)
	}

	return vals[0] == 1, int(vals[1]), nil
}
