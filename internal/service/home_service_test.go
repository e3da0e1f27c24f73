package service

import (
	"testing"
	"time"

	"github.com/openingclouds/internal/config"
	"github.com/openingclouds/internal/repository"

	"gorm.io/gorm"
)

func newTestHomeService(db *gorm.DB, site config.SiteConfig) *HomeService {
	return NewHomeService(
		site,
		repository.NewStatsRepository(db),
		NewTimelineService(repository.NewTimelineRepository(db)),
		NewHighlightService(repository.NewHighlightRepository(db)),
		NewTravelService(repository.NewTravelRepository(db)),
		NewSocialService(repository.NewSocialFriendRepository(db)),
	)
}

func TestCountWords(t *testing.T) {
	cases := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"hello world", 10},
		{"你好，\n世界\t!\r\n", 6},
		{"   ", 0},
	}
	for _, tc := range cases {
		if got := CountWords(tc.content); got != tc.want {
			t.Fatalf("CountWords(%q) want %d got %d", tc.content, tc.want, got)
		}
	}
}

func TestSiteDays(t *testing.T) {
	launch := time.Date(2024, 1, 1, 23, 59, 0, 0, time.Local)
	if got := SiteDays(launch, time.Date(2024, 1, 1, 0, 1, 0, 0, time.Local)); got != 1 {
		t.Fatalf("same day want 1 got %d", got)
	}
	if got := SiteDays(launch, time.Date(2024, 1, 31, 8, 0, 0, 0, time.Local)); got != 31 {
		t.Fatalf("january want 31 got %d", got)
	}
	if got := SiteDays(launch, time.Date(2023, 12, 1, 0, 0, 0, 0, time.Local)); got != 1 {
		t.Fatalf("future launch should clamp to 1, got %d", got)
	}
}

func TestHomeStatsAggregatesPublishedContent(t *testing.T) {
	db := setupServiceTestDB(t)
	posts := newTestPostService(t, db, false)
	published := false
	if _, err := posts.Create(PostInput{Title: "One", Content: "abc def", Tags: []string{"go", "redis"}, Draft: &published}); err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if _, err := posts.Create(PostInput{Title: "Two", Content: "中文", Tags: []string{"Go", "redis"}, Draft: &published}); err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	if _, err := posts.Create(PostInput{Title: "Draft", Content: "not counted", Tags: []string{"secret"}}); err != nil {
		t.Fatalf("create draft failed: %v", err)
	}

	svc := newTestHomeService(db, config.SiteConfig{LaunchDate: "2024-01-01"})
	svc.now = func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local) }
	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PostsTotal != 3 || stats.PublishedPostsTotal != 2 {
		t.Fatalf("post totals mismatch: %+v", stats)
	}
	if stats.TotalWords != 8 {
		t.Fatalf("total words want 8 got %d", stats.TotalWords)
	}
	if stats.TagsTotal != 3 {
		t.Fatalf("tags are distinct case-sensitively, want 3 got %d", stats.TagsTotal)
	}
	if stats.SiteDays != 10 {
		t.Fatalf("site days want 10 got %d", stats.SiteDays)
	}
}

func TestHomeFallsBackToDefaults(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newTestHomeService(db, config.SiteConfig{})
	home, err := svc.Home()
	if err != nil {
		t.Fatalf("home failed: %v", err)
	}
	if home.Hero.Title != defaultHeroTitle || home.Contact.Email != defaultContactEmail {
		t.Fatalf("home defaults mismatch: %+v", home)
	}
	if len(home.Hero.Slogans) != len(heroSlogans) {
		t.Fatalf("slogans missing")
	}
	if home.Stats.SiteDays != 1 {
		t.Fatalf("empty site should count today only, got %d", home.Stats.SiteDays)
	}
	if home.SocialGraph == nil || len(home.SocialGraph.Links) != 0 {
		t.Fatalf("empty graph should still carry stage nodes: %+v", home.SocialGraph)
	}
}
