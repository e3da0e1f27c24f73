package obsidian

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/openingclouds/internal/constants"
)

func TestParseNoteFrontMatter(t *testing.T) {
	raw := strings.Join([]string{
		"---",
		"title: ThreadLocal 原理",
		"tags: [java, \"#Publish\", \" \"]",
		"description: 一篇关于线程本地变量的笔记",
		"中图法: TP312",
		"draft: no",
		"---",
		"# Heading",
		"",
		"Body text.",
	}, "\n")

	note, err := ParseNote(raw, "/vault/notes/threadlocal.md", ParseOptions{Root: "/vault"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if note.Title != "ThreadLocal 原理" {
		t.Fatalf("title mismatch: %s", note.Title)
	}
	if note.RelativePath != "notes/threadlocal.md" {
		t.Fatalf("relative path mismatch: %s", note.RelativePath)
	}
	if len(note.Tags) != 2 || note.Tags[0] != "java" || note.Tags[1] != "#Publish" {
		t.Fatalf("tags mismatch: %v", note.Tags)
	}
	if !note.HasPublishTag || !note.Publishable() {
		t.Fatalf("publish tag should be detected")
	}
	if note.Metadata.CLC != "TP312" || note.Category != constants.PostCategoryTech {
		t.Fatalf("clc mapping mismatch: clc=%s category=%s", note.Metadata.CLC, note.Category)
	}
	if note.Excerpt != "一篇关于线程本地变量的笔记" {
		t.Fatalf("excerpt should come from description: %s", note.Excerpt)
	}
	if note.Metadata.Draft == nil || note.Metadata.Draft.Bool() {
		t.Fatalf("draft: no should decode to false")
	}
	if note.SlugHint != "threadlocal" {
		t.Fatalf("slug hint mismatch: %s", note.SlugHint)
	}
	if note.RawHash != HashText(raw) || len(note.RawHash) != 40 {
		t.Fatalf("raw hash mismatch: %s", note.RawHash)
	}
}

func TestParseNoteScalarTagAndPublishFalse(t *testing.T) {
	raw := "---\ntags: publish\npublish: false\n---\nbody"
	note, err := ParseNote(raw, "a.md", ParseOptions{})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(note.Tags) != 1 || note.Tags[0] != "publish" {
		t.Fatalf("scalar tag mismatch: %v", note.Tags)
	}
	if !note.HasPublishTag {
		t.Fatalf("scalar publish tag should be detected")
	}
	if note.Publishable() {
		t.Fatalf("publish: false must unpublish")
	}
}

func TestParseNoteUnknownFlagIsUnset(t *testing.T) {
	raw := "---\ntitle: Later\ntags: [publish]\npublish: later\ndraft: [x]\n---\nbody"
	note, err := ParseNote(raw, "later.md", ParseOptions{})
	if err != nil {
		t.Fatalf("unknown flag should not fail the note: %v", err)
	}
	if note.Metadata.Publish != nil || note.Metadata.Draft != nil {
		t.Fatalf("unknown flags should decode as unset: publish=%v draft=%v", note.Metadata.Publish, note.Metadata.Draft)
	}
	if len(note.Metadata.InvalidFlags) != 2 || note.Metadata.InvalidFlags[0] != "publish: later" {
		t.Fatalf("invalid flags not recorded: %v", note.Metadata.InvalidFlags)
	}
	if !note.Publishable() || note.Title != "Later" {
		t.Fatalf("note should stay publishable: %+v", note)
	}

	on, err := ParseNote("---\ntags: [publish]\npublish: ON\n---\nbody", "on.md", ParseOptions{})
	if err != nil || on.Metadata.Publish == nil || !on.Metadata.Publish.Bool() || len(on.Metadata.InvalidFlags) != 0 {
		t.Fatalf("publish: ON should decode as true, got %+v err=%v", on.Metadata, err)
	}
}

func TestParseNoteWithoutFrontMatter(t *testing.T) {
	raw := "```go\n# not a heading\n```\n\n# Real Heading\ntext"
	note, err := ParseNote(raw, "/vault/x.md", ParseOptions{Root: "/vault"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if note.Content != raw {
		t.Fatalf("whole file should be the body")
	}
	if note.Title != "Real Heading" {
		t.Fatalf("heading outside fence expected, got %s", note.Title)
	}
	if note.HasPublishTag {
		t.Fatalf("no tags means no publish tag")
	}
}

func TestParseNoteMalformedFrontMatter(t *testing.T) {
	raw := "---\ntitle: [unclosed\n---\nbody"
	_, err := ParseNote(raw, "bad.md", ParseOptions{})
	if !errors.Is(err, ErrFrontMatter) {
		t.Fatalf("want ErrFrontMatter got %v", err)
	}
}

func TestResolveTitleFallbacks(t *testing.T) {
	if got := ResolveTitle(Metadata{}, "no heading", "stem"); got != "stem" {
		t.Fatalf("stem fallback mismatch: %s", got)
	}
	if got := ResolveTitle(Metadata{}, "", " "); got != "untitled" {
		t.Fatalf("untitled fallback mismatch: %s", got)
	}
	if got := ResolveTitle(Metadata{}, "## sub\n#  Main ##  \n", "stem"); got != "Main" {
		t.Fatalf("heading trim mismatch: %s", got)
	}
}

func TestBuildExcerptStripsMarkdown(t *testing.T) {
	body := "# Title\n\nSee [the docs](https://example.com) and [[Other Note|alias]].\n\n```go\nfmt.Println(1)\n```\n\n![img](a.png) **bold** `code` done"
	got := BuildExcerpt(Metadata{}, body)
	want := "Title See the docs and alias. bold done"
	if got != want {
		t.Fatalf("excerpt want %q got %q", want, got)
	}

	long := strings.Repeat("字", 200)
	if got := BuildExcerpt(Metadata{}, long); utf8.RuneCountInString(got) != ExcerptMaxRunes {
		t.Fatalf("excerpt should be truncated to %d runes, got %d", ExcerptMaxRunes, utf8.RuneCountInString(got))
	}
	if got := BuildExcerpt(Metadata{Excerpt: " explicit "}, body); got != "explicit" {
		t.Fatalf("explicit excerpt mismatch: %s", got)
	}
}

func TestContainsPublishTagCustomName(t *testing.T) {
	tags := []string{"Blog", "#share"}
	if ContainsPublishTag(tags, "") {
		t.Fatalf("default publish tag should not match")
	}
	if !ContainsPublishTag(tags, "#Share") {
		t.Fatalf("custom publish tag should match")
	}
	if got := WithoutPublishTag([]string{"publish", " go ", "#PUBLISH"}, ""); len(got) != 1 || got[0] != "go" {
		t.Fatalf("publish tag removal mismatch: %v", got)
	}
}

func TestParseFileInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.md")
	if err := os.WriteFile(path, []byte("# Ti\xfftle\nbody"), 0o644); err != nil {
		t.Fatalf("write file failed: %v", err)
	}
	note, err := ParseFile(path, ParseOptions{Root: dir})
	if err != nil {
		t.Fatalf("parse file failed: %v", err)
	}
	if note.Title != "Title" {
		t.Fatalf("invalid bytes should be dropped, got %q", note.Title)
	}
	if note.ModTime.IsZero() {
		t.Fatalf("mod time should be set")
	}
}
