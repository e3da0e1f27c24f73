package router

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openingclouds/internal/config"
	"github.com/openingclouds/internal/logger"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/provider"

	"github.com/gin-gonic/gin"
)

const testSyncToken = "sync-token-for-tests"

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func setupRouterTest(t *testing.T) (*gin.Engine, *provider.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.InitConsole("release", io.Discard)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	if err := models.InitDB("sqlite", dsn, models.DBPoolConfig{MaxIdleConns: 4}); err != nil {
		t.Fatalf("init db failed: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Mode = "release"
	cfg.JWT.SecretKey = "router-test-secret"
	cfg.JWT.ExpireHours = 1
	cfg.Obsidian.SyncToken = testSyncToken
	cfg.Obsidian.LockDir = t.TempDir()
	cfg.Obsidian.LockTTLSeconds = 60
	cfg.Security.ViewThrottle = 1800

	container := provider.NewContainer(cfg)
	t.Cleanup(container.Close)
	return SetupRouter(cfg, container), container
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, headers map[string]string) envelope {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s http status want 200 got %d", method, path, w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s unmarshal failed: %v body=%s", method, path, err, w.Body.String())
	}
	return resp
}

func TestRouterHealth(t *testing.T) {
	r, _ := setupRouterTest(t)
	resp := doJSON(t, r, http.MethodGet, "/api/v1/health", "", nil)
	if resp.StatusCode != 0 || !strings.Contains(string(resp.Data), `"status":"ok"`) {
		t.Fatalf("unexpected health response: %+v", resp)
	}
}

func TestRouterSyncTokenFlow(t *testing.T) {
	r, _ := setupRouterTest(t)
	tokenHeader := map[string]string{"X-Sync-Token": testSyncToken}

	payload := `{"title":"ThreadLocal 原理","slug":"threadlocal","content":"线程本地变量","category":"tech","tags":["java","publish"],"obsidianPath":"Tech/threadlocal.md"}`
	resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/obsidian-sync", payload, tokenHeader)
	if resp.StatusCode != 0 {
		t.Fatalf("sync failed: %+v", resp)
	}
	var result struct {
		Action    string `json:"action"`
		Slug      string `json:"slug"`
		SyncLogID uint   `json:"sync_log_id"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		t.Fatalf("decode sync result failed: %v", err)
	}
	if result.Action != "created" || result.Slug != "threadlocal" || result.SyncLogID == 0 {
		t.Fatalf("unexpected sync result: %+v", result)
	}

	rejected := doJSON(t, r, http.MethodPost, "/api/v1/admin/obsidian-sync", payload, map[string]string{"X-Sync-Token": "wrong"})
	if rejected.StatusCode != 401 {
		t.Fatalf("wrong token should be rejected, got %d", rejected.StatusCode)
	}

	list := doJSON(t, r, http.MethodGet, "/api/v1/public/posts?tag=JAVA", "", nil)
	if list.StatusCode != 0 || list.Pagination.Total != 1 {
		t.Fatalf("public list want 1 post got %+v", list)
	}

	first := doJSON(t, r, http.MethodPost, "/api/v1/public/posts/threadlocal/view", "", nil)
	second := doJSON(t, r, http.MethodPost, "/api/v1/public/posts/threadlocal/view", "", nil)
	if !strings.Contains(string(first.Data), `"views":1`) || !strings.Contains(string(second.Data), `"throttled":true`) {
		t.Fatalf("view throttling mismatch: first=%s second=%s", first.Data, second.Data)
	}

	reconcile := doJSON(t, r, http.MethodPost, "/api/v1/admin/obsidian-sync/reconcile", `{"published_paths":[],"behavior":"draft"}`, tokenHeader)
	if reconcile.StatusCode != 0 || !strings.Contains(string(reconcile.Data), `"drafted":1`) {
		t.Fatalf("reconcile mismatch: %+v data=%s", reconcile, reconcile.Data)
	}

	detail := doJSON(t, r, http.MethodGet, "/api/v1/public/posts/threadlocal", "", nil)
	if detail.StatusCode != 404 {
		t.Fatalf("drafted post should be hidden, got %d", detail.StatusCode)
	}
}

func TestRouterSyncRejectsPayloadWithoutSlug(t *testing.T) {
	r, _ := setupRouterTest(t)
	resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/obsidian-sync", `{"content":"no title"}`, map[string]string{"X-Sync-Token": testSyncToken})
	if resp.StatusCode != 400 {
		t.Fatalf("status_code want 400 got %d", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Data), `"action":"failed"`) {
		t.Fatalf("failed result should be returned: %s", resp.Data)
	}
}

func TestRouterAdminLoginAndRBAC(t *testing.T) {
	r, container := setupRouterTest(t)
	if _, err := container.AuthService.CreateAdmin("root", "Passw0rd!", true); err != nil {
		t.Fatalf("create super admin failed: %v", err)
	}
	if _, err := container.AuthService.CreateAdmin("writer", "Passw0rd!", false); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	login := func(username string) string {
		resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/login", fmt.Sprintf(`{"username":%q,"password":"Passw0rd!"}`, username), nil)
		if resp.StatusCode != 0 {
			t.Fatalf("login %s failed: %+v", username, resp)
		}
		var data struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(resp.Data, &data); err != nil || data.Token == "" {
			t.Fatalf("login %s returned no token: %s", username, resp.Data)
		}
		return data.Token
	}

	bad := doJSON(t, r, http.MethodPost, "/api/v1/admin/login", `{"username":"root","password":"nope"}`, nil)
	if bad.StatusCode != 401 {
		t.Fatalf("bad password want 401 got %d", bad.StatusCode)
	}

	rootAuth := map[string]string{"Authorization": "Bearer " + login("root")}
	writerAuth := map[string]string{"Authorization": "Bearer " + login("writer")}

	if resp := doJSON(t, r, http.MethodGet, "/api/v1/admin/me", "", rootAuth); resp.StatusCode != 0 {
		t.Fatalf("me failed: %+v", resp)
	}
	if resp := doJSON(t, r, http.MethodGet, "/api/v1/admin/posts", "", writerAuth); resp.StatusCode != 403 {
		t.Fatalf("admin without roles want 403 got %d", resp.StatusCode)
	}

	writerID := uint(0)
	admins, _ := container.AuthService.ListAdmins()
	for _, admin := range admins {
		if admin.Username == "writer" {
			writerID = admin.ID
		}
	}
	roles := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/admin/admins/%d/roles", writerID), `{"roles":["editor"]}`, rootAuth)
	if roles.StatusCode != 0 {
		t.Fatalf("set roles failed: %+v", roles)
	}

	created := doJSON(t, r, http.MethodPost, "/api/v1/admin/posts", `{"title":"Hello World","content":"hi"}`, writerAuth)
	if created.StatusCode != 0 || !strings.Contains(string(created.Data), `"slug":"hello-world"`) {
		t.Fatalf("editor create post failed: %+v data=%s", created, created.Data)
	}
	if resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/obsidian-sync/vault", `{}`, writerAuth); resp.StatusCode != 403 {
		t.Fatalf("editor vault sync want 403 got %d", resp.StatusCode)
	}

	audit := doJSON(t, r, http.MethodGet, "/api/v1/admin/authz/audit-logs", "", rootAuth)
	if audit.StatusCode != 0 || audit.Pagination.Total != 1 {
		t.Fatalf("role assignment should be audited: %+v", audit)
	}

	payload := `{"title":"Notes","slug":"notes","content":"body","tags":["publish"],"obsidianPath":"Tech/notes.md"}`
	if resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/obsidian-sync", payload, rootAuth); resp.StatusCode != 0 {
		t.Fatalf("super admin sync failed: %+v", resp)
	}
	logs := doJSON(t, r, http.MethodGet, "/api/v1/admin/sync-logs", "", rootAuth)
	if logs.StatusCode != 0 || logs.Pagination.Total != 1 {
		t.Fatalf("sync log list want 1 got %+v", logs)
	}
	if resp := doJSON(t, r, http.MethodGet, "/api/v1/admin/sync-logs/9999", "", rootAuth); resp.StatusCode != 404 {
		t.Fatalf("missing sync log want 404 got %d", resp.StatusCode)
	}
	docs := doJSON(t, r, http.MethodGet, "/api/v1/admin/obsidian-documents", "", rootAuth)
	if docs.StatusCode != 0 || docs.Pagination.Total != 0 {
		t.Fatalf("document pool should be empty: %+v", docs)
	}
}
