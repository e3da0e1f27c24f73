package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openingclouds/internal/config"
	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Admin{},
		&models.Post{},
		&models.PostView{},
		&models.SyncLog{},
		&models.ObsidianDocument{},
		&models.ObsidianSyncRun{},
		&models.TimelineNode{},
		&models.TravelPlace{},
		&models.SocialFriend{},
		&models.HighlightStage{},
		&models.HighlightItem{},
	); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	return db
}

func newTestSyncService(db *gorm.DB) *ObsidianSyncService {
	return NewObsidianSyncService(
		repository.NewPostRepository(db),
		repository.NewSyncLogRepository(db),
		nil,
		constants.DefaultPublishTag,
		constants.DefaultPostCategory,
	)
}

func newTestVaultSyncService(db *gorm.DB, vault string) *VaultSyncService {
	cfg := config.ObsidianConfig{
		VaultPath:         vault,
		PublishTag:        constants.DefaultPublishTag,
		DefaultCategory:   constants.DefaultPostCategory,
		Mode:              constants.SyncModeOverwrite,
		ReconcileBehavior: constants.ReconcileBehaviorDraft,
	}
	return NewVaultSyncService(cfg, newTestSyncService(db), repository.NewPostRepository(db), nil)
}

func writeNote(t *testing.T, root, relative, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relative))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write note failed: %v", err)
	}
	return path
}

// touchNote 推后文件修改时间，保证晚于上一次同步时间
func touchNote(t *testing.T, path string) {
	t.Helper()
	future := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count rows failed: %v", err)
	}
	return count
}

func mustPostBySlug(t *testing.T, db *gorm.DB, slug string) *models.Post {
	t.Helper()
	post, err := repository.NewPostRepository(db).GetBySlug(slug, false)
	if err != nil {
		t.Fatalf("get post %s failed: %v", slug, err)
	}
	if post == nil {
		t.Fatalf("post %s not found", slug)
	}
	return post
}
