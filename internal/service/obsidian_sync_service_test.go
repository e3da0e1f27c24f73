package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/obsidian"
)

func TestSyncPayloadIsIdempotent(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestSyncService(db)
	ctx := context.Background()
	input := SyncPayloadInput{
		Payload: SyncPayload{
			Title:        "Go Memory Model",
			Content:      "# Go Memory Model\n\nhappens-before",
			Tags:         []string{"publish", "Go"},
			ObsidianPath: "Tech/go-memory.md",
		},
	}

	first, err := svc.SyncPayload(ctx, input)
	if err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	if first.Action != constants.SyncActionCreated || first.Slug != "go-memory-model" {
		t.Fatalf("first sync want created/go-memory-model, got %s/%s", first.Action, first.Slug)
	}
	second, err := svc.SyncPayload(ctx, input)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if second.Action != constants.SyncActionUpdated || second.Post.ID != first.Post.ID {
		t.Fatalf("second sync want update of same post, got action=%s id=%d", second.Action, second.Post.ID)
	}
	if got := countRows(t, db, &models.Post{}); got != 1 {
		t.Fatalf("post count want 1 got %d", got)
	}
	if got := countRows(t, db, &models.SyncLog{}); got != 2 {
		t.Fatalf("sync log count want 2 got %d", got)
	}

	post := mustPostBySlug(t, db, "go-memory-model")
	if post.Draft || post.SyncSource != constants.PostSyncSourceObsidian || post.LastSyncedAt == nil {
		t.Fatalf("synced post metadata mismatch: %+v", post)
	}
	if len(post.Tags) != 1 || post.Tags[0] != "Go" {
		t.Fatalf("publish tag should be stripped, got %v", post.Tags)
	}
	if post.Category != constants.DefaultPostCategory {
		t.Fatalf("category want default %s got %s", constants.DefaultPostCategory, post.Category)
	}
}

func TestSyncPayloadSlugCollisionIsDeterministic(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestSyncService(db)
	ctx := context.Background()

	sync := func(path string) *SyncResult {
		t.Helper()
		result, err := svc.SyncPayload(ctx, SyncPayloadInput{
			Payload: SyncPayload{Title: "ThreadLocal", Content: "body of " + path, ObsidianPath: path},
		})
		if err != nil {
			t.Fatalf("sync %s failed: %v", path, err)
		}
		return result
	}

	first := sync("Java/ThreadLocal.md")
	second := sync("Notes/ThreadLocal.md")
	if first.Slug != "threadlocal" {
		t.Fatalf("first slug want threadlocal got %s", first.Slug)
	}
	want := "threadlocal-" + obsidian.PathDigest("Notes/ThreadLocal.md")
	if second.Slug != want {
		t.Fatalf("second slug want %s got %s", want, second.Slug)
	}

	again := sync("Notes/ThreadLocal.md")
	if again.Slug != want || again.Action != constants.SyncActionUpdated {
		t.Fatalf("resync want %s/updated got %s/%s", want, again.Slug, again.Action)
	}
	if got := countRows(t, db, &models.Post{}); got != 2 {
		t.Fatalf("post count want 2 got %d", got)
	}
	if post := mustPostBySlug(t, db, "threadlocal"); post.ObsidianPath != "Java/ThreadLocal.md" {
		t.Fatalf("original owner changed: %s", post.ObsidianPath)
	}
}

func TestSyncPayloadSkipModeKeepsExistingPost(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestSyncService(db)
	ctx := context.Background()

	if _, err := svc.SyncPayload(ctx, SyncPayloadInput{
		Payload: SyncPayload{Title: "Skip Me", Content: "original", ObsidianPath: "a.md"},
	}); err != nil {
		t.Fatalf("seed sync failed: %v", err)
	}
	result, err := svc.SyncPayload(ctx, SyncPayloadInput{
		Payload: SyncPayload{Title: "Skip Me", Content: "changed", ObsidianPath: "a.md"},
		Mode:    constants.SyncModeSkip,
	})
	if err != nil {
		t.Fatalf("skip sync failed: %v", err)
	}
	if result.Action != constants.SyncActionSkipped || result.Status != constants.SyncStatusSuccess {
		t.Fatalf("want skipped/success got %s/%s", result.Action, result.Status)
	}
	if post := mustPostBySlug(t, db, "skip-me"); post.Content != "original" {
		t.Fatalf("skip mode changed content: %q", post.Content)
	}
	if got := countRows(t, db, &models.SyncLog{}); got != 2 {
		t.Fatalf("skip should still write a log, got %d logs", got)
	}
}

func TestSyncPayloadMergeFillsOnlyEmptyFields(t *testing.T) {
	db := setupServiceTestDB(t)
	manual := &models.Post{
		Title:      "Handwritten",
		Slug:       "handwritten",
		Content:    "written by hand",
		Category:   constants.PostCategoryLife,
		Draft:      true,
		SyncSource: constants.PostSyncSourceManual,
	}
	if err := db.Create(manual).Error; err != nil {
		t.Fatalf("create manual post failed: %v", err)
	}

	svc := newTestSyncService(db)
	result, err := svc.SyncPayload(context.Background(), SyncPayloadInput{
		Payload: SyncPayload{
			Title:        "Replaced Title",
			Slug:         "handwritten",
			Content:      "from vault",
			Excerpt:      "vault excerpt",
			Category:     constants.PostCategoryTech,
			Tags:         []string{"vault"},
			ObsidianPath: "Tech/handwritten.md",
		},
		Mode: constants.SyncModeMerge,
	})
	if err != nil {
		t.Fatalf("merge sync failed: %v", err)
	}
	if result.Action != constants.SyncActionUpdated || result.Post.ID != manual.ID {
		t.Fatalf("merge should update manual post, got %s id=%d", result.Action, result.Post.ID)
	}

	post := mustPostBySlug(t, db, "handwritten")
	if post.Title != "Handwritten" || post.Content != "written by hand" {
		t.Fatalf("merge overwrote non-empty fields: %+v", post)
	}
	if post.Excerpt != "vault excerpt" || len(post.Tags) != 1 {
		t.Fatalf("merge should fill empty fields: excerpt=%q tags=%v", post.Excerpt, post.Tags)
	}
	if post.Category != constants.PostCategoryTech || post.Draft || post.SyncSource != constants.PostSyncSourceObsidian {
		t.Fatalf("merge should refresh sync metadata: %+v", post)
	}
	if post.ObsidianPath != "Tech/handwritten.md" {
		t.Fatalf("obsidian path want Tech/handwritten.md got %s", post.ObsidianPath)
	}
}

func TestSyncPayloadDryRunOnlyWritesLog(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestSyncService(db)

	result, err := svc.SyncPayload(context.Background(), SyncPayloadInput{
		Payload: SyncPayload{Title: "Preview", Content: "body", ObsidianPath: "preview.md"},
		DryRun:  true,
	})
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if result.Status != constants.SyncStatusDryRun || result.Action != constants.SyncActionCreated {
		t.Fatalf("want created/dry_run got %s/%s", result.Action, result.Status)
	}
	if got := countRows(t, db, &models.Post{}); got != 0 {
		t.Fatalf("dry run created %d posts", got)
	}

	var row models.SyncLog
	if err := db.First(&row, result.LogID).Error; err != nil {
		t.Fatalf("load sync log failed: %v", err)
	}
	if row.Status != constants.SyncStatusDryRun || string(row.Result) != "{}" {
		t.Fatalf("dry run log mismatch: status=%s result=%s", row.Status, string(row.Result))
	}
}

func TestSyncPayloadRequiresSlugOrTitle(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestSyncService(db)

	result, err := svc.SyncPayload(context.Background(), SyncPayloadInput{
		Payload: SyncPayload{Title: "  ", Content: "body"},
	})
	if !errors.Is(err, ErrSyncSlugRequired) {
		t.Fatalf("want ErrSyncSlugRequired got %v", err)
	}
	if !IsSyncClientError(err) {
		t.Fatalf("slug required should be a client error")
	}
	if result == nil || result.Status != constants.SyncStatusFailed || result.LogID == 0 {
		t.Fatalf("failure should be logged, got %+v", result)
	}
}

func TestSyncPayloadKeepsRawPayloadInLog(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestSyncService(db)
	raw := []byte(`{"title":"Raw","content":"x","obsidianPath":"raw.md","tags":"publish"}`)

	var payload SyncPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal payload failed: %v", err)
	}
	if payload.ObsidianPath != "raw.md" || len(payload.Tags) != 1 || payload.Tags[0] != "publish" {
		t.Fatalf("payload aliases not applied: %+v", payload)
	}

	result, err := svc.SyncPayload(context.Background(), SyncPayloadInput{Payload: payload, RawPayload: raw})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	var row models.SyncLog
	if err := db.First(&row, result.LogID).Error; err != nil {
		t.Fatalf("load sync log failed: %v", err)
	}
	if string(row.Payload) != string(raw) {
		t.Fatalf("log payload want raw input, got %s", string(row.Payload))
	}
	if row.Source != constants.SyncLogSourceAPI {
		t.Fatalf("default source want api got %s", row.Source)
	}
}

func TestReconcileRespectsScopePrefixes(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestSyncService(db)
	ctx := context.Background()

	for _, path := range []string{"Tech/kept.md", "Tech/gone.md", "Life/outside.md"} {
		if _, err := svc.SyncPayload(ctx, SyncPayloadInput{
			Payload: SyncPayload{Title: path, Content: "body", ObsidianPath: path},
		}); err != nil {
			t.Fatalf("seed %s failed: %v", path, err)
		}
	}

	preview, err := svc.Reconcile(ctx, ReconcileInput{
		PublishedPaths: []string{"Tech/kept.md"},
		ScopePrefixes:  []string{"Tech/"},
		DryRun:         true,
	})
	if err != nil {
		t.Fatalf("dry run reconcile failed: %v", err)
	}
	if preview.Matched != 1 || preview.Drafted != 1 || preview.Status != constants.SyncStatusDryRun {
		t.Fatalf("dry run reconcile mismatch: %+v", preview)
	}
	var drafts int64
	db.Model(&models.Post{}).Where("draft = ?", true).Count(&drafts)
	if drafts != 0 {
		t.Fatalf("dry run reconcile drafted %d posts", drafts)
	}

	result, err := svc.Reconcile(ctx, ReconcileInput{
		PublishedPaths: []string{"Tech/kept.md"},
		ScopePrefixes:  []string{"Tech/"},
	})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if result.Matched != 1 || result.Drafted != 1 || result.Action != constants.SyncActionUpdated {
		t.Fatalf("reconcile mismatch: %+v", result)
	}

	var gone, outside models.Post
	db.Where("obsidian_path = ?", "Tech/gone.md").First(&gone)
	db.Where("obsidian_path = ?", "Life/outside.md").First(&outside)
	if !gone.Draft {
		t.Fatalf("in-scope unpublished post should be drafted")
	}
	if outside.Draft {
		t.Fatalf("out-of-scope post must not be touched")
	}

	var row models.SyncLog
	if err := db.First(&row, result.LogID).Error; err != nil {
		t.Fatalf("load reconcile log failed: %v", err)
	}
	if row.Slug != constants.ReconcileSlugSentinel {
		t.Fatalf("reconcile log slug want %s got %s", constants.ReconcileSlugSentinel, row.Slug)
	}
	wantMessage := "reconcile behavior=draft, matched=1, drafted=1, deleted=0, dry_run=false"
	if row.Message != wantMessage {
		t.Fatalf("reconcile message want %q got %q", wantMessage, row.Message)
	}
}

func TestReconcileDeleteAndNone(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestSyncService(db)
	ctx := context.Background()
	if _, err := svc.SyncPayload(ctx, SyncPayloadInput{
		Payload: SyncPayload{Title: "Orphan", Content: "body", ObsidianPath: "orphan.md"},
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	none, err := svc.Reconcile(ctx, ReconcileInput{Behavior: constants.ReconcileBehaviorNone})
	if err != nil {
		t.Fatalf("reconcile none failed: %v", err)
	}
	if none.Matched != 1 || none.Action != constants.SyncActionSkipped {
		t.Fatalf("none behavior mismatch: %+v", none)
	}

	deleted, err := svc.Reconcile(ctx, ReconcileInput{Behavior: constants.ReconcileBehaviorDelete})
	if err != nil {
		t.Fatalf("reconcile delete failed: %v", err)
	}
	if deleted.Deleted != 1 {
		t.Fatalf("delete behavior want 1 deleted got %+v", deleted)
	}
	if got := countRows(t, db, &models.Post{}); got != 0 {
		t.Fatalf("post should be deleted, %d left", got)
	}
}

func TestNormalizeSyncOptions(t *testing.T) {
	if got := NormalizeSyncMode("MERGE"); got != constants.SyncModeMerge {
		t.Fatalf("mode want merge got %s", got)
	}
	if got := NormalizeSyncMode("bogus"); got != constants.SyncModeOverwrite {
		t.Fatalf("unknown mode want overwrite got %s", got)
	}
	if got := NormalizeReconcileBehavior(""); got != constants.ReconcileBehaviorDraft {
		t.Fatalf("empty behavior want draft got %s", got)
	}
	paths := NormalizePaths([]string{" ", `Tech\a.md`, "./b.md"})
	if len(paths) != 2 || paths[0] != "Tech/a.md" || paths[1] != "b.md" {
		t.Fatalf("normalize paths mismatch: %v", paths)
	}
}

func TestSyncPayloadKeepsSlugOfManualOrPathlessOwner(t *testing.T) {
	db := setupServiceTestDB(t)
	owners := []*models.Post{
		{Title: "Manual", Slug: "manual", Content: "hand", Category: constants.PostCategoryLife, SyncSource: constants.PostSyncSourceManual},
		{Title: "Pathless", Slug: "pathless", Content: "old", Category: constants.PostCategoryLife, SyncSource: constants.PostSyncSourceObsidian},
	}
	for _, owner := range owners {
		if err := db.Create(owner).Error; err != nil {
			t.Fatalf("create owner %s failed: %v", owner.Slug, err)
		}
	}

	svc := newTestSyncService(db)
	for _, owner := range owners {
		path := "Notes/" + owner.Slug + ".md"
		result, err := svc.SyncPayload(context.Background(), SyncPayloadInput{
			Payload: SyncPayload{Title: "From Vault", Slug: owner.Slug, Content: "vault body", ObsidianPath: path},
		})
		if err != nil {
			t.Fatalf("sync %s failed: %v", owner.Slug, err)
		}
		if result.Slug != owner.Slug || result.Action != constants.SyncActionUpdated || result.Post.ID != owner.ID {
			t.Fatalf("%s: owner should keep its slug and be updated, got %s/%s id=%d", owner.Slug, result.Slug, result.Action, result.Post.ID)
		}
		post := mustPostBySlug(t, db, owner.Slug)
		if post.ObsidianPath != path || post.SyncSource != constants.PostSyncSourceObsidian || post.Content != "vault body" {
			t.Fatalf("%s: owner not taken over: %+v", owner.Slug, post)
		}
	}
	if got := countRows(t, db, &models.Post{}); got != 2 {
		t.Fatalf("post count want 2 got %d", got)
	}
}

func TestSyncPayloadSlugBudgetExhausted(t *testing.T) {
	db := setupServiceTestDB(t)
	const path = "Notes/ThreadLocal.md"
	seed := []*models.Post{{
		Title: "ThreadLocal", Slug: "threadlocal", Content: "owner", Category: constants.PostCategoryTech,
		SyncSource: constants.PostSyncSourceObsidian, ObsidianPath: "Java/ThreadLocal.md",
	}}
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		seed = append(seed, &models.Post{
			Title:      "Taken",
			Slug:       obsidian.SlugWithPathDigest("threadlocal", path, attempt),
			Category:   constants.PostCategoryTech,
			SyncSource: constants.PostSyncSourceManual,
		})
	}
	if err := db.CreateInBatches(seed, 50).Error; err != nil {
		t.Fatalf("seed posts failed: %v", err)
	}

	svc := newTestSyncService(db)
	result, err := svc.SyncPayload(context.Background(), SyncPayloadInput{
		Payload: SyncPayload{Title: "ThreadLocal", Content: "second", ObsidianPath: path},
	})
	if !errors.Is(err, ErrSyncSlugExhausted) {
		t.Fatalf("want ErrSyncSlugExhausted got %v", err)
	}
	if result == nil || result.Action != constants.SyncActionFailed || result.Post != nil {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := countRows(t, db, &models.Post{}); got != int64(len(seed)) {
		t.Fatalf("no post should be created, count=%d", got)
	}

	var logs []models.SyncLog
	if err := db.Find(&logs).Error; err != nil {
		t.Fatalf("load sync logs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("want exactly one sync log got %d", len(logs))
	}
	row := logs[0]
	if row.Status != constants.SyncStatusFailed || row.Action != constants.SyncActionFailed || string(row.Result) != "{}" {
		t.Fatalf("failed log mismatch: status=%s action=%s result=%s", row.Status, row.Action, string(row.Result))
	}
}
