package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/lock"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/obsidian"
)

const publishedNote = `---
title: Redis 持久化
slug: redis-persistence
tags: [publish, redis]
---
RDB 与 AOF 的取舍。
`

func TestVaultSyncEndToEnd(t *testing.T) {
	db := setupServiceTestDB(t)
	vault := t.TempDir()
	notePath := writeNote(t, vault, "技术/redis.md", publishedNote)
	writeNote(t, vault, "技术/draft.md", "---\ntitle: Not Yet\ntags: [redis]\n---\nbody\n")
	writeNote(t, vault, ".obsidian/workspace.md", "---\ntags: [publish]\n---\nignored\n")

	svc := newTestVaultSyncService(db, vault)
	ctx := context.Background()

	stats, err := svc.Run(ctx, VaultSyncInput{})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if stats.Files != 2 || stats.Created != 1 || stats.SkippedUnpublished != 1 {
		t.Fatalf("first run stats mismatch: %+v", stats)
	}
	post := mustPostBySlug(t, db, "redis-persistence")
	if post.Category != constants.PostCategoryTech || post.Draft {
		t.Fatalf("synced post mismatch: category=%s draft=%v", post.Category, post.Draft)
	}
	if post.ObsidianPath != "技术/redis.md" {
		t.Fatalf("obsidian path mismatch: %s", post.ObsidianPath)
	}

	stats, err = svc.Run(ctx, VaultSyncInput{})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if stats.SkippedUnchanged != 1 || stats.Created != 0 || stats.Updated != 0 || stats.Drafted != 0 {
		t.Fatalf("unchanged run stats mismatch: %+v", stats)
	}

	writeNote(t, vault, "技术/redis.md", "---\ntitle: Redis 持久化\nslug: redis-persistence\ntags: [redis]\n---\nuntagged\n")
	touchNote(t, notePath)
	stats, err = svc.Run(ctx, VaultSyncInput{})
	if err != nil {
		t.Fatalf("untag run failed: %v", err)
	}
	if stats.SkippedUnpublished != 2 || stats.Drafted != 1 {
		t.Fatalf("untag run stats mismatch: %+v", stats)
	}
	if got := countRows(t, db, &models.Post{}); got != 1 {
		t.Fatalf("post count want 1 got %d", got)
	}
	if post := mustPostBySlug(t, db, "redis-persistence"); !post.Draft {
		t.Fatalf("untagged note should leave the post as draft")
	}
}

func TestVaultSyncDryRunWritesNoPosts(t *testing.T) {
	db := setupServiceTestDB(t)
	vault := t.TempDir()
	writeNote(t, vault, "redis.md", publishedNote)

	stats, err := newTestVaultSyncService(db, vault).Run(context.Background(), VaultSyncInput{DryRun: true})
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if !stats.DryRun || stats.Created != 1 {
		t.Fatalf("dry run stats mismatch: %+v", stats)
	}
	if got := countRows(t, db, &models.Post{}); got != 0 {
		t.Fatalf("dry run created %d posts", got)
	}
}

func TestVaultSyncForceResyncsUnchangedNotes(t *testing.T) {
	db := setupServiceTestDB(t)
	vault := t.TempDir()
	writeNote(t, vault, "redis.md", publishedNote)
	svc := newTestVaultSyncService(db, vault)
	ctx := context.Background()

	if _, err := svc.Run(ctx, VaultSyncInput{}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	stats, err := svc.Run(ctx, VaultSyncInput{Force: true})
	if err != nil {
		t.Fatalf("forced run failed: %v", err)
	}
	if stats.Updated != 1 || stats.SkippedUnchanged != 0 {
		t.Fatalf("forced run stats mismatch: %+v", stats)
	}
}

func TestVaultSyncCountsInvalidFrontMatter(t *testing.T) {
	db := setupServiceTestDB(t)
	vault := t.TempDir()
	writeNote(t, vault, "broken.md", "---\ntitle: [unclosed\n---\nbody\n")
	writeNote(t, vault, "redis.md", publishedNote)

	stats, err := newTestVaultSyncService(db, vault).Run(context.Background(), VaultSyncInput{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.SkippedInvalid != 1 || stats.Created != 1 {
		t.Fatalf("invalid note should be counted and skipped: %+v", stats)
	}
}

func TestVaultSyncRejectsMissingVault(t *testing.T) {
	db := setupServiceTestDB(t)
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := newTestVaultSyncService(db, missing).Run(context.Background(), VaultSyncInput{})
	if !errors.Is(err, ErrInvalidSourceDir) {
		t.Fatalf("want ErrInvalidSourceDir got %v", err)
	}
}

func TestVaultSyncHonoursVaultLock(t *testing.T) {
	db := setupServiceTestDB(t)
	vault := t.TempDir()
	writeNote(t, vault, "redis.md", publishedNote)

	locker := lock.NewFileLocker(t.TempDir(), time.Minute)
	root, err := ResolveVaultRoot(vault)
	if err != nil {
		t.Fatalf("resolve vault failed: %v", err)
	}
	release, err := locker.Acquire(context.Background(), lock.VaultKey(root))
	if err != nil {
		t.Fatalf("acquire lock failed: %v", err)
	}
	defer func() {
		if err := release(); err != nil && !os.IsNotExist(err) {
			t.Fatalf("release lock failed: %v", err)
		}
	}()

	svc := newTestVaultSyncService(db, vault)
	svc.locker = locker
	if _, err := svc.Run(context.Background(), VaultSyncInput{}); !errors.Is(err, ErrVaultLocked) {
		t.Fatalf("want ErrVaultLocked got %v", err)
	}
}

func TestVaultSyncSameTitleNotesGetDistinctPosts(t *testing.T) {
	db := setupServiceTestDB(t)
	vault := t.TempDir()
	const note = "---\ntitle: ThreadLocal\ntags: [publish]\n---\nbody\n"
	writeNote(t, vault, "A/ThreadLocal.md", note)
	writeNote(t, vault, "B/ThreadLocal.md", note)

	svc := newTestVaultSyncService(db, vault)
	ctx := context.Background()
	stats, err := svc.Run(ctx, VaultSyncInput{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Created != 2 || stats.SkippedUnchanged != 0 {
		t.Fatalf("both notes should be created: %+v", stats)
	}
	if got := countRows(t, db, &models.Post{}); got != 2 {
		t.Fatalf("post count want 2 got %d", got)
	}
	if post := mustPostBySlug(t, db, "threadlocal"); post.ObsidianPath != "A/ThreadLocal.md" {
		t.Fatalf("first note should own the plain slug, got %s", post.ObsidianPath)
	}
	second := mustPostBySlug(t, db, "threadlocal-"+obsidian.PathDigest("B/ThreadLocal.md"))
	if second.ObsidianPath != "B/ThreadLocal.md" {
		t.Fatalf("digest slug should belong to B, got %s", second.ObsidianPath)
	}

	stats, err = svc.Run(ctx, VaultSyncInput{})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if stats.SkippedUnchanged != 2 || stats.Created != 0 || stats.Updated != 0 {
		t.Fatalf("second run should skip both notes: %+v", stats)
	}
	if got := countRows(t, db, &models.Post{}); got != 2 {
		t.Fatalf("post count want 2 after rerun got %d", got)
	}
}
