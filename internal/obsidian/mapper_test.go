package obsidian

import (
	"testing"

	"github.com/openingclouds/internal/constants"
)

func TestResolveCategoryPriority(t *testing.T) {
	cases := []struct {
		name string
		meta Metadata
		path string
		want string
	}{
		{
			name: "explicit category wins",
			meta: Metadata{Category: " Life ", CLC: "TP311"},
			path: "技术/go.md",
			want: constants.PostCategoryLife,
		},
		{
			name: "invalid explicit falls through to path",
			meta: Metadata{Category: "misc"},
			path: "技术/go.md",
			want: constants.PostCategoryTech,
		},
		{
			name: "path life before tech",
			meta: Metadata{},
			path: "Daily Notes/dev/2026-01-01.md",
			want: constants.PostCategoryLife,
		},
		{
			name: "chinese segment contains keyword",
			meta: Metadata{},
			path: "03-读书笔记/book.md",
			want: constants.PostCategoryLearning,
		},
		{
			name: "ascii keyword needs whole word",
			meta: Metadata{},
			path: "devotion/a.md",
			want: constants.DefaultPostCategory,
		},
		{
			name: "file name is not a path segment",
			meta: Metadata{},
			path: "life.md",
			want: constants.DefaultPostCategory,
		},
		{
			name: "clc tech",
			meta: Metadata{CLC: "tp311.1"},
			path: "inbox/a.md",
			want: constants.PostCategoryTech,
		},
		{
			name: "clc life",
			meta: Metadata{CLC: "I247"},
			path: "a.md",
			want: constants.PostCategoryLife,
		},
		{
			name: "unknown clc continues to tags",
			meta: Metadata{CLC: "L1", Tags: TagList{"#Travel"}},
			path: "a.md",
			want: constants.PostCategoryLife,
		},
		{
			name: "learning tag",
			meta: Metadata{Tags: TagList{"Productivity"}},
			path: "a.md",
			want: constants.PostCategoryLearning,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveCategory(tc.meta, tc.path, ""); got != tc.want {
				t.Fatalf("category want %s got %s", tc.want, got)
			}
		})
	}
}

func TestResolveCategoryConfiguredDefault(t *testing.T) {
	if got := ResolveCategory(Metadata{}, "a.md", constants.PostCategoryTech); got != constants.PostCategoryTech {
		t.Fatalf("configured default want tech got %s", got)
	}
	if got := ResolveCategory(Metadata{}, "a.md", "bogus"); got != constants.DefaultPostCategory {
		t.Fatalf("invalid configured default should fall back, got %s", got)
	}
}

func TestMapCLC(t *testing.T) {
	if _, ok := MapCLC(""); ok {
		t.Fatalf("empty clc should not map")
	}
	if _, ok := MapCLC("W1"); ok {
		t.Fatalf("unknown letter should not map")
	}
	if got, ok := MapCLC(" b84 "); !ok || got != constants.PostCategoryLearning {
		t.Fatalf("b84 want learning got %s", got)
	}
}

func TestResolveSlug(t *testing.T) {
	if got := ResolveSlug(Metadata{Slug: "Custom Slug"}, "notes/a.md", "Title", ""); got != "custom-slug" {
		t.Fatalf("explicit slug mismatch: %s", got)
	}
	if got := ResolveSlug(Metadata{}, "notes/a.md", "Thread Local", ""); got != "thread-local" {
		t.Fatalf("title slug mismatch: %s", got)
	}
	if got := ResolveSlug(Metadata{}, "notes/file-name.md", "", ""); got != "file-name" {
		t.Fatalf("stem slug mismatch: %s", got)
	}
	want := FallbackSlug("日记/今天.md")
	if got := ResolveSlug(Metadata{}, "/vault/日记/今天.md", "今天", "日记/今天.md"); got != want {
		t.Fatalf("fallback slug want %s got %s", want, got)
	}
}
