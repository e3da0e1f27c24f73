package public

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openingclouds/internal/provider"
	"github.com/openingclouds/internal/service"

	"github.com/gin-gonic/gin"
)

func serve(t *testing.T, h *Handler, method, route, target string, handler func(*gin.Context)) map[string]interface{} {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Handle(method, route, handler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp
}

func TestSearchPostsWithoutIndex(t *testing.T) {
	h := New(&provider.Container{PostService: service.NewPostService(nil, nil, nil, nil)})

	resp := serve(t, h, http.MethodGet, "/posts/search", "/posts/search?q=go", h.SearchPosts)
	if code := resp["status_code"].(float64); code != 400 {
		t.Fatalf("status_code want 400 got %v", code)
	}

	resp = serve(t, h, http.MethodGet, "/posts/search", "/posts/search?q=%20", h.SearchPosts)
	if code := resp["status_code"].(float64); code != 0 {
		t.Fatalf("blank keyword should succeed, got %v", code)
	}
	data := resp["data"].(map[string]interface{})
	if hits := data["hits"].([]interface{}); len(hits) != 0 {
		t.Fatalf("blank keyword should return no hits: %v", hits)
	}
}

func TestHealth(t *testing.T) {
	h := New(&provider.Container{})
	resp := serve(t, h, http.MethodGet, "/health", "/health", h.Health)
	data := resp["data"].(map[string]interface{})
	if data["status"] != "ok" {
		t.Fatalf("health status mismatch: %v", resp)
	}
}
