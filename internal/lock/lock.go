package lock

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"
)

// ErrLocked 锁已被其他进程持有
var ErrLocked = errors.New("lock is held by another process")

// DefaultTTL 锁默认有效期
const DefaultTTL = 15 * time.Minute

// ReleaseFunc 释放锁
type ReleaseFunc func() error

// Locker 互斥锁接口
type Locker interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

// VaultKey 笔记库锁 key：obsidian-vault:{sha1(绝对路径)[:12]}
func VaultKey(absPath string) string {
	sum := sha1.Sum([]byte(absPath))
	return "obsidian-vault:" + hex.EncodeToString(sum[:])[:12]
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
