package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultViewThrottleTTL 同一访客重复计数的间隔
const DefaultViewThrottleTTL = 30 * time.Minute

// ViewThrottle 文章阅读数防刷标记
type ViewThrottle interface {
	// Mark 写入标记，已存在（仍在节流期内）时返回 false
	Mark(ctx context.Context, slug, ident string) (bool, error)
}

// ViewThrottleKey 阅读防刷 key
func ViewThrottleKey(slug, ident string) string {
	return fmt.Sprintf("post-view-throttle:%s:%s", strings.TrimSpace(slug), strings.TrimSpace(ident))
}

// NewViewThrottle Redis 启用时使用 SET NX，否则使用进程内标记
func NewViewThrottle(ttl time.Duration) ViewThrottle {
	if ttl <= 0 {
		ttl = DefaultViewThrottleTTL
	}
	if Enabled() {
		return &redisViewThrottle{ttl: ttl}
	}
	return NewMemoryViewThrottle(ttl)
}

type redisViewThrottle struct {
	ttl time.Duration
}

func (t *redisViewThrottle) Mark(ctx context.Context, slug, ident string) (bool, error) {
	return SetNX(ctx, ViewThrottleKey(slug, ident), 1, t.ttl)
}

// MemoryViewThrottle 进程内节流标记，过期项在写入时顺带清理
type MemoryViewThrottle struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	expires map[string]time.Time
}

// NewMemoryViewThrottle 创建进程内节流标记
func NewMemoryViewThrottle(ttl time.Duration) *MemoryViewThrottle {
	if ttl <= 0 {
		ttl = DefaultViewThrottleTTL
	}
	return &MemoryViewThrottle{
		ttl:     ttl,
		now:     time.Now,
		expires: make(map[string]time.Time),
	}
}

// Mark 写入标记
func (t *MemoryViewThrottle) Mark(_ context.Context, slug, ident string) (bool, error) {
	key := ViewThrottleKey(slug, ident)
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()
	if expireAt, ok := t.expires[key]; ok && now.Before(expireAt) {
		return false, nil
	}
	for k, expireAt := range t.expires {
		if !now.Before(expireAt) {
			delete(t.expires, k)
		}
	}
	t.expires[key] = now.Add(t.ttl)
	return true, nil
}
