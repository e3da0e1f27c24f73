package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openingclouds/internal/service"
)

// SyncTokenHeader 同步令牌请求头
const SyncTokenHeader = "X-Sync-Token"

const (
	syncPath      = "/api/v1/admin/obsidian-sync"
	reconcilePath = "/api/v1/admin/obsidian-sync/reconcile"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

var (
	ErrConfigInvalid   = errors.New("remote config invalid")
	ErrRequestFailed   = errors.New("remote request failed")
	ErrResponseInvalid = errors.New("remote response invalid")
)

// StatusError 远端返回非 2xx 状态码
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote status %d: %s", e.StatusCode, e.Body)
}

// APIError 远端业务错误（HTTP 200 但 status_code 非 0）
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote api error %d: %s", e.Code, e.Msg)
}

// SyncRequest 单篇同步请求
type SyncRequest struct {
	service.SyncPayload
	Mode       string `json:"mode,omitempty"`
	DryRun     bool   `json:"dry_run,omitempty"`
	PublishTag string `json:"publish_tag,omitempty"`
}

// ReconcileRequest 对账请求
type ReconcileRequest struct {
	PublishedPaths []string `json:"published_paths"`
	ScopePrefixes  []string `json:"scope_prefixes,omitempty"`
	Behavior       string   `json:"behavior,omitempty"`
	DryRun         bool     `json:"dry_run,omitempty"`
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

// tokenTransport 为每个请求注入同步令牌
type tokenTransport struct {
	token   string
	wrapped http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set(SyncTokenHeader, t.token)
	return t.wrapped.RoundTrip(clone)
}

// Client 远端博客实例的同步客户端，失败不重试
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建远端同步客户端，timeout 非正时使用默认值
func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	token = strings.TrimSpace(token)
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base url is empty", ErrConfigInvalid)
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("%w: base url must start with http:// or https://", ErrConfigInvalid)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: sync token is empty", ErrConfigInvalid)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &tokenTransport{token: token, wrapped: http.DefaultTransport},
		},
	}, nil
}

// Sync 推送单篇笔记
func (c *Client) Sync(ctx context.Context, req SyncRequest) (*service.SyncResult, error) {
	var result service.SyncResult
	if err := c.post(ctx, syncPath, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reconcile 推送对账请求
func (c *Client) Reconcile(ctx context.Context, req ReconcileRequest) (*service.ReconcileResult, error) {
	if req.PublishedPaths == nil {
		req.PublishedPaths = []string{}
	}
	var result service.ReconcileResult
	if err := c.post(ctx, reconcilePath, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrResponseInvalid, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := strings.TrimSpace(string(raw))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: text}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if env.StatusCode != 0 {
		return &APIError{Code: env.StatusCode, Msg: env.Msg}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return nil
}
