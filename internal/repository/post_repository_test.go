package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
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

func createTestPost(t *testing.T, db *gorm.DB, post *models.Post) *models.Post {
	t.Helper()
	if post.Category == "" {
		post.Category = constants.PostCategoryTech
	}
	if post.SyncSource == "" {
		post.SyncSource = constants.PostSyncSourceManual
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post %s failed: %v", post.Slug, err)
	}
	return post
}

func TestPostListOrderingAndFilters(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewPostRepository(db)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	older := createTestPost(t, db, &models.Post{Title: "Older", Slug: "older", Tags: models.StringArray{"Go", "notes"}})
	newer := createTestPost(t, db, &models.Post{Title: "Newer", Slug: "newer", Tags: models.StringArray{"life"}, Category: constants.PostCategoryLife})
	createTestPost(t, db, &models.Post{Title: "Hidden", Slug: "hidden", Draft: true, Tags: models.StringArray{"go"}})

	if err := db.Model(older).UpdateColumn("updated_at", base).Error; err != nil {
		t.Fatalf("set updated_at failed: %v", err)
	}
	if err := db.Model(newer).UpdateColumn("updated_at", base.Add(time.Hour)).Error; err != nil {
		t.Fatalf("set updated_at failed: %v", err)
	}

	rows, total, err := repo.List(PostListFilter{Page: 1, PageSize: 10, OnlyPublished: true})
	if err != nil {
		t.Fatalf("list posts failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("published posts want 2 got total=%d len=%d", total, len(rows))
	}
	if rows[0].Slug != "newer" || rows[1].Slug != "older" {
		t.Fatalf("latest ordering mismatch: %s, %s", rows[0].Slug, rows[1].Slug)
	}

	rows, total, err = repo.List(PostListFilter{Page: 1, PageSize: 10, OnlyPublished: true, Tag: "  GO "})
	if err != nil {
		t.Fatalf("list by tag failed: %v", err)
	}
	if total != 1 || rows[0].Slug != "older" {
		t.Fatalf("tag filter want [older] got total=%d rows=%v", total, rows)
	}

	rows, _, err = repo.List(PostListFilter{Page: 1, PageSize: 10, OnlyPublished: true, Tag: "no"})
	if err != nil {
		t.Fatalf("list by partial tag failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("tag filter must be exact, got %d rows", len(rows))
	}

	rows, _, err = repo.List(PostListFilter{Page: 1, PageSize: 10, OnlyPublished: true, Category: constants.PostCategoryLife})
	if err != nil {
		t.Fatalf("list by category failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Slug != "newer" {
		t.Fatalf("category filter mismatch: %v", rows)
	}
}

func TestPostListSortByViews(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewPostRepository(db)
	viewRepo := NewPostViewRepository(db)

	first := createTestPost(t, db, &models.Post{Title: "A", Slug: "a"})
	second := createTestPost(t, db, &models.Post{Title: "B", Slug: "b"})
	for i := 0; i < 3; i++ {
		if _, err := viewRepo.Increment(first.ID); err != nil {
			t.Fatalf("increment failed: %v", err)
		}
	}
	views, err := viewRepo.Increment(second.ID)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if views != 1 {
		t.Fatalf("views want 1 got %d", views)
	}

	rows, _, err := repo.List(PostListFilter{Page: 1, PageSize: 10, OnlyPublished: true, SortByViews: true})
	if err != nil {
		t.Fatalf("list by views failed: %v", err)
	}
	if len(rows) != 2 || rows[0].Slug != "a" || rows[0].Views != 3 || rows[1].Views != 1 {
		t.Fatalf("views ordering mismatch: %+v", rows)
	}

	total, err := viewRepo.Sum()
	if err != nil {
		t.Fatalf("sum views failed: %v", err)
	}
	if total != 4 {
		t.Fatalf("sum views want 4 got %d", total)
	}
}

func TestPostObsidianLookupsAndDelete(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewPostRepository(db)

	manual := createTestPost(t, db, &models.Post{Title: "Manual", Slug: "manual", ObsidianPath: "notes/a.md"})
	synced := createTestPost(t, db, &models.Post{
		Title:        "Synced",
		Slug:         "synced",
		ObsidianPath: "notes/a.md",
		SyncSource:   constants.PostSyncSourceObsidian,
	})
	createTestPost(t, db, &models.Post{
		Title:        "Other",
		Slug:         "other",
		ObsidianPath: "journal/b.md",
		SyncSource:   constants.PostSyncSourceObsidian,
	})

	got, err := repo.GetObsidianByPath("notes/a.md")
	if err != nil {
		t.Fatalf("get by path failed: %v", err)
	}
	if got == nil || got.ID != synced.ID {
		t.Fatalf("obsidian lookup should ignore manual post, got %+v", got)
	}
	if got, _ := repo.GetObsidianByPath(""); got != nil {
		t.Fatalf("empty path should not match")
	}

	scoped, err := repo.ListObsidianSynced([]string{"notes/"})
	if err != nil {
		t.Fatalf("list synced failed: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Slug != "synced" {
		t.Fatalf("prefix scope mismatch: %+v", scoped)
	}

	doc := &models.ObsidianDocument{VaultPath: "notes/a.md", Title: "A", LinkedPostID: &synced.ID, SourceExists: true}
	if err := db.Create(doc).Error; err != nil {
		t.Fatalf("create doc failed: %v", err)
	}
	if _, err := NewPostViewRepository(db).Increment(synced.ID); err != nil {
		t.Fatalf("increment failed: %v", err)
	}

	if err := repo.Delete(synced.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got, _ := repo.GetByID(synced.ID); got != nil {
		t.Fatalf("post should be hard deleted")
	}
	var refreshed models.ObsidianDocument
	if err := db.First(&refreshed, doc.ID).Error; err != nil {
		t.Fatalf("reload doc failed: %v", err)
	}
	if refreshed.LinkedPostID != nil {
		t.Fatalf("document link should be cleared")
	}
	var viewCount int64
	db.Model(&models.PostView{}).Where("post_id = ?", synced.ID).Count(&viewCount)
	if viewCount != 0 {
		t.Fatalf("post views should be deleted with post")
	}
	if got, _ := repo.GetByID(manual.ID); got == nil {
		t.Fatalf("manual post should remain")
	}
}

func TestSyncLogListOrder(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewSyncLogRepository(db)
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, slug := range []string{"first", "second", "third"} {
		log := &models.SyncLog{
			Source:    constants.SyncLogSourceAPI,
			Slug:      slug,
			Mode:      constants.SyncModeOverwrite,
			Action:    constants.SyncActionCreated,
			Status:    constants.SyncStatusSuccess,
			StartedAt: started.Add(time.Duration(i%2) * time.Minute),
		}
		if err := repo.Create(log); err != nil {
			t.Fatalf("create log failed: %v", err)
		}
	}

	logs, total, err := repo.List(SyncLogListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list logs failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("total want 3 got %d", total)
	}
	order := []string{logs[0].Slug, logs[1].Slug, logs[2].Slug}
	want := []string{"second", "third", "first"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("log order want %v got %v", want, order)
		}
	}
}

func TestHighlightStagesPreloadOrderedItems(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewHighlightRepository(db)

	stage := &models.HighlightStage{Title: "大学", SortOrder: 1}
	if err := repo.CreateStage(stage); err != nil {
		t.Fatalf("create stage failed: %v", err)
	}
	for _, item := range []*models.HighlightItem{
		{StageID: stage.ID, Title: "second", SortOrder: 2},
		{StageID: stage.ID, Title: "first", SortOrder: 1},
	} {
		if err := repo.CreateItem(item); err != nil {
			t.Fatalf("create item failed: %v", err)
		}
	}

	stages, err := repo.ListStages()
	if err != nil {
		t.Fatalf("list stages failed: %v", err)
	}
	if len(stages) != 1 || len(stages[0].Items) != 2 || stages[0].Items[0].Title != "first" {
		t.Fatalf("stage items order mismatch: %+v", stages)
	}

	if err := repo.DeleteStage(stage.ID); err != nil {
		t.Fatalf("delete stage failed: %v", err)
	}
	count, err := repo.CountItems()
	if err != nil {
		t.Fatalf("count items failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("items should be deleted with stage, got %d", count)
	}
}
