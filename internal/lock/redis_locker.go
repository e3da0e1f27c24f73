package lock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker 基于 Redis SET NX PX 的锁
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLocker 创建 Redis 锁
func NewRedisLocker(client *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, prefix: strings.TrimSpace(prefix), ttl: normalizeTTL(ttl)}
}

// Acquire 获取锁，被占用时返回 ErrLocked
func (l *RedisLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	if l == nil || l.client == nil {
		return nil, fmt.Errorf("redis locker not initialized")
	}
	fullKey := key
	if l.prefix != "" {
		fullKey = l.prefix + ":lock:" + key
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire redis lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() error {
		// 释放使用独立 context，避免请求取消导致锁残留
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err()
	}, nil
}
