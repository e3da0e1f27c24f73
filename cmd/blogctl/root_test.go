package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCommandTree(t *testing.T) {
	want := map[string][]string{
		"sync":           {"mode", "dry-run", "force", "include", "exclude", "publish-tag", "reconcile", "scope"},
		"reconcile":      {"path", "scope", "behavior", "dry-run"},
		"index":          {"trigger", "missing", "auto-update", "repo-url", "repo-branch", "repo-commit"},
		"push":           {"remote", "token"},
		"search-rebuild": nil,
	}
	for name, flags := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("command %s not registered: %v", name, err)
		}
		for _, flag := range flags {
			if cmd.Flags().Lookup(flag) == nil {
				t.Fatalf("command %s missing flag --%s", name, flag)
			}
		}
	}
}

func TestPushCommand(t *testing.T) {
	vault := t.TempDir()
	path := filepath.Join(vault, "技术", "go.md")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("---\ntitle: Go\nslug: go-notes\ntags: [publish]\n---\nbody\n"), 0o644); err != nil {
		t.Fatalf("write note failed: %v", err)
	}

	var tokens []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.Header.Get("X-Sync-Token"))
		data := map[string]interface{}{"action": "created", "slug": "go-notes"}
		if strings.HasSuffix(r.URL.Path, "/reconcile") {
			data = map[string]interface{}{"behavior": "draft", "drafted": 0}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"status_code": 0, "msg": "success", "data": data})
	}))
	defer server.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"push", vault, "--remote", server.URL, "--token", "cli-token"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("push command failed: %v", err)
	}
	if !strings.Contains(out.String(), "files=1 created=1") {
		t.Fatalf("unexpected output: %s", out.String())
	}
	if len(tokens) != 2 || tokens[0] != "cli-token" || tokens[1] != "cli-token" {
		t.Fatalf("sync token header mismatch: %v", tokens)
	}
}
