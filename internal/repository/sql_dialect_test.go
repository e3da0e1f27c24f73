package repository

import (
	"strings"
	"testing"
)

func TestTagMatchConditionByDialectSQLite(t *testing.T) {
	got := tagMatchConditionByDialect("sqlite", "posts", "tags")
	if !strings.Contains(got, "json_each(posts.tags)") {
		t.Fatalf("sqlite tag condition should use json_each, got %s", got)
	}
	if !strings.Contains(got, "lower(trim(?))") {
		t.Fatalf("tag condition should normalize argument, got %s", got)
	}
}

func TestTagMatchConditionByDialectPostgres(t *testing.T) {
	got := tagMatchConditionByDialect("postgres", "posts", "tags")
	if !strings.Contains(got, "jsonb_array_elements_text(COALESCE(posts.tags::jsonb") {
		t.Fatalf("postgres tag condition mismatch, got %s", got)
	}
}

func TestBuildLikeCondition(t *testing.T) {
	condition, argCount := buildLikeCondition(nil, []string{"slug", " ", "title"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if condition != "slug LIKE ? OR title LIKE ?" {
		t.Fatalf("unexpected condition: %s", condition)
	}
	condition, _ = buildLikeConditionByDialect("postgres", []string{"slug"})
	if condition != "slug ILIKE ?" {
		t.Fatalf("postgres should use ILIKE, got %s", condition)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}

func TestEscapeLikePrefix(t *testing.T) {
	got := escapeLikePrefix(`notes/100%_done\`)
	want := `notes/100\%\_done\\%`
	if got != want {
		t.Fatalf("escape like prefix want %s got %s", want, got)
	}
}

func TestPageOffset(t *testing.T) {
	cases := []struct{ page, size, want int }{
		{0, 20, 0},
		{1, 20, 0},
		{3, 20, 40},
		{-2, 10, 0},
	}
	for _, tc := range cases {
		if got := pageOffset(tc.page, tc.size); got != tc.want {
			t.Fatalf("pageOffset(%d,%d) want %d got %d", tc.page, tc.size, tc.want, got)
		}
	}
}
