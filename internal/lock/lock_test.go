package lock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestVaultKey(t *testing.T) {
	key := VaultKey("/data/vault")
	if !strings.HasPrefix(key, "obsidian-vault:") || len(key) != len("obsidian-vault:")+12 {
		t.Fatalf("unexpected vault key: %s", key)
	}
	if key != VaultKey("/data/vault") {
		t.Fatalf("vault key must be deterministic")
	}
	if key == VaultKey("/data/other") {
		t.Fatalf("different vaults should not share a key")
	}
}

func TestFileLockerExclusive(t *testing.T) {
	locker := NewFileLocker(t.TempDir(), time.Minute)
	ctx := context.Background()
	key := VaultKey("/vault")

	release, err := locker.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	if _, err := locker.Acquire(ctx, key); !errors.Is(err, ErrLocked) {
		t.Fatalf("second acquire want ErrLocked got %v", err)
	}
	if err := release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	release, err = locker.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	_ = release()
}

func TestFileLockerStaleLockIsReclaimed(t *testing.T) {
	dir := t.TempDir()
	locker := NewFileLocker(dir, time.Minute)
	key := VaultKey("/vault")
	path := filepath.Join(dir, sanitizeKey(key)+".lock")
	if err := os.WriteFile(path, []byte("pid=1\n"), 0o644); err != nil {
		t.Fatalf("write stale lock failed: %v", err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}

	release, err := locker.Acquire(context.Background(), key)
	if err != nil {
		t.Fatalf("stale lock should be reclaimed: %v", err)
	}
	_ = release()
}
