package lock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileLocker 基于 O_EXCL 锁文件的本机锁，超过 TTL 的锁文件视为过期
type FileLocker struct {
	dir string
	ttl time.Duration
}

// NewFileLocker 创建文件锁，dir 为空时使用系统临时目录
func NewFileLocker(dir string, ttl time.Duration) *FileLocker {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "openingclouds-locks")
	}
	return &FileLocker{dir: dir, ttl: normalizeTTL(ttl)}
}

// Acquire 获取锁，被占用时返回 ErrLocked
func (l *FileLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	path := filepath.Join(l.dir, sanitizeKey(key)+".lock")

	for attempt := 0; attempt < 2; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, writeErr := fmt.Fprintf(file, "pid=%d\nacquired_at=%s\n", os.Getpid(), time.Now().Format(time.RFC3339))
			closeErr := file.Close()
			if writeErr != nil || closeErr != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("write lock file: %w", errors.Join(writeErr, closeErr))
			}
			return func() error {
				if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return err
				}
				return nil
			}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		if !l.isStale(path) {
			return nil, ErrLocked
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove stale lock: %w", err)
		}
	}
	return nil, ErrLocked
}

func (l *FileLocker) isStale(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Is(err, fs.ErrNotExist)
	}
	return time.Since(info.ModTime()) > l.ttl
}

func sanitizeKey(key string) string {
	replacer := strings.NewReplacer(":", "_", "/", "_", `\`, "_", " ", "_")
	return replacer.Replace(strings.TrimSpace(key))
}
