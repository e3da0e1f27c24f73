package search

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/openingclouds/internal/models"
)

func openMemIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open("")
	if err != nil {
		t.Fatalf("open memory index failed: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestIndexSearchAndDelete(t *testing.T) {
	idx := openMemIndex(t)
	docs := []PostDocument{
		{Slug: "threadlocal", Title: "ThreadLocal 原理", Content: "线程本地变量的实现细节", Category: "tech", Tags: []string{"java"}, UpdatedAt: time.Now()},
		{Slug: "travel-hangzhou", Title: "杭州旅行", Content: "西湖边散步", Category: "life", Tags: []string{"travel"}, UpdatedAt: time.Now()},
	}
	for _, doc := range docs {
		if err := idx.IndexPost(doc); err != nil {
			t.Fatalf("index %s failed: %v", doc.Slug, err)
		}
	}

	hits, total, err := idx.Search("threadlocal", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 || hits[0].Slug != "threadlocal" || hits[0].Title != "ThreadLocal 原理" {
		t.Fatalf("unexpected hits: total=%d hits=%+v", total, hits)
	}

	hits, _, err = idx.Search("西湖", 10)
	if err != nil {
		t.Fatalf("cjk search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Slug != "travel-hangzhou" {
		t.Fatalf("cjk search mismatch: %+v", hits)
	}

	if err := idx.Delete("threadlocal"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	count, err := idx.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("count want 1 got %d", count)
	}

	hits, total, err = idx.Search("  ", 10)
	if err != nil || total != 0 || len(hits) != 0 {
		t.Fatalf("blank keyword should return empty result")
	}
}

func TestIndexRebuildDropsStaleDocuments(t *testing.T) {
	idx := openMemIndex(t)
	if err := idx.IndexPost(PostDocument{Slug: "stale", Title: "stale post"}); err != nil {
		t.Fatalf("index failed: %v", err)
	}
	post := &models.Post{Slug: "fresh", Title: "fresh post", Tags: models.StringArray{"go"}}
	if err := idx.Rebuild([]PostDocument{DocumentFromPost(post)}); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	count, _ := idx.Count()
	if count != 1 {
		t.Fatalf("count after rebuild want 1 got %d", count)
	}
	hits, _, _ := idx.Search("go", 10)
	if len(hits) != 1 || hits[0].Slug != "fresh" {
		t.Fatalf("tag search after rebuild mismatch: %+v", hits)
	}
}

func TestOpenPersistentIndexReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "posts.bleve")
	idx, err := Open(path)
	if err != nil {
		t.Fatalf("create index failed: %v", err)
	}
	if err := idx.IndexPost(PostDocument{Slug: "kept", Title: "kept"}); err != nil {
		t.Fatalf("index failed: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	count, err := reopened.Count()
	if err != nil || count != 1 {
		t.Fatalf("reopened count want 1 got %d err=%v", count, err)
	}
}
