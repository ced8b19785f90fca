// Package api is the single gateway to the backend. Every call goes through
// one request core that attaches the bearer token, refreshes it exactly once
// on a 401, and normalizes failures into typed errors so nothing upstream
// ever sees a raw transport error.
package api

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

	"inboxpilot/internal/session"
)

var (
	// ErrConnectivity wraps network-level failures. The UI maps it to one
	// generic "cannot reach server" line.
	ErrConnectivity = errors.New("cannot reach server")

	// ErrAuthExpired is returned after a failed token refresh. By the time
	// a caller sees it, OnAuthExpired has already run.
	ErrAuthExpired = errors.New("authentication expired")
)

// APIError carries a non-2xx response the backend produced deliberately.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Detail)
}

// rawPayload carries a prebuilt request body with its own content type.
// The dataset upload uses it so multipart requests still flow through the
// refresh-once core instead of bypassing it.
type rawPayload struct {
	data        []byte
	contentType string
}

// SessionStore is the slice of the session store the gateway needs.
type SessionStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

type Client struct {
	baseURL string
	http    *http.Client
	sess    SessionStore

	// OnAuthExpired runs when a 401 cannot be recovered by a refresh.
	// The UI uses it to force a logout.
	OnAuthExpired func()
}

func NewClient(baseURL string, sess SessionStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		sess:    sess,
	}
}

// do performs one authenticated request. A 401 triggers exactly one token
// refresh followed by one retry; a second 401 or a failed refresh forces
// logout. 204 returns a nil body.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	out, status, err := c.send(ctx, method, path, body, true)
	if err != nil {
		return nil, err
	}
	if status != http.StatusUnauthorized {
		return c.finish(out, status)
	}

	if err := c.refreshAccessToken(ctx); err != nil {
		c.authExpired()
		return nil, err
	}

	out, status, err = c.send(ctx, method, path, body, true)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		c.authExpired()
		return nil, ErrAuthExpired
	}
	return c.finish(out, status)
}

// doUnauthenticated is the path for register, login and refresh, which
// never carry a bearer token.
func (c *Client) doUnauthenticated(ctx context.Context, method, path string, body any) ([]byte, error) {
	out, status, err := c.send(ctx, method, path, body, false)
	if err != nil {
		return nil, err
	}
	return c.finish(out, status)
}

func (c *Client) send(ctx context.Context, method, path string, body any, withToken bool) ([]byte, int, error) {
	var reader io.Reader
	contentType := ""
	switch payload := body.(type) {
	case nil:
	case rawPayload:
		reader = bytes.NewReader(payload.data)
		contentType = payload.contentType
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if withToken {
		if token, ok := c.sess.Get(session.KeyAccessToken); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	return out, resp.StatusCode, nil
}

func (c *Client) finish(body []byte, status int) ([]byte, error) {
	if status == http.StatusNoContent {
		return nil, nil
	}
	if status >= 200 && status < 300 {
		return body, nil
	}
	return nil, &APIError{Status: status, Detail: errorDetail(body)}
}

// refreshAccessToken is the only code path that writes a new access token.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	refresh, ok := c.sess.Get(session.KeyRefreshToken)
	if !ok || refresh == "" {
		return ErrAuthExpired
	}

	body, status, err := c.send(ctx, http.MethodPost, "/api/token/refresh/",
		map[string]string{"refresh": refresh}, false)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return ErrAuthExpired
	}

	var payload struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Access == "" {
		return ErrAuthExpired
	}
	return c.sess.Set(session.KeyAccessToken, payload.Access)
}

func (c *Client) authExpired() {
	if c.OnAuthExpired != nil {
		c.OnAuthExpired()
	}
}

// errorDetail extracts a human-readable message from a backend error body.
// Unparseable bodies collapse to a generic line rather than failing the
// caller a second time.
func errorDetail(body []byte) string {
	if len(body) == 0 {
		return "request failed"
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return "request failed"
	}
	for _, key := range []string{"detail", "error", "message"} {
		if raw, ok := obj[key]; ok {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				return s
			}
		}
	}
	for _, raw := range obj {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
			return list[0]
		}
	}
	return "request failed"
}

func decode[T any](body []byte, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if len(body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		// Unexpected shape is treated as "no data", not a crash.
		return out, nil
	}
	return out, nil
}
