package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"inboxpilot/internal/domain"
	"inboxpilot/internal/session"
)

// Register creates an account and stores the returned session fields.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (domain.AuthResponse, error) {
	auth, err := decode[domain.AuthResponse](c.doUnauthenticated(ctx, http.MethodPost, "/api/register/", reg))
	if err != nil {
		return auth, err
	}
	return auth, c.storeAuth(auth)
}

// Login authenticates and stores the returned session fields.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.AuthResponse, error) {
	auth, err := decode[domain.AuthResponse](c.doUnauthenticated(ctx, http.MethodPost, "/api/login/", creds))
	if err != nil {
		return auth, err
	}
	return auth, c.storeAuth(auth)
}

func (c *Client) storeAuth(auth domain.AuthResponse) error {
	if auth.Access == "" {
		return nil
	}
	if err := c.sess.Set(session.KeyAccessToken, auth.Access); err != nil {
		return err
	}
	if err := c.sess.Set(session.KeyRefreshToken, auth.Refresh); err != nil {
		return err
	}
	if err := c.sess.Set(session.KeyUsername, auth.Username); err != nil {
		return err
	}
	if auth.UserID != 0 {
		if err := c.sess.Set(session.KeyUserID, strconv.FormatInt(auth.UserID, 10)); err != nil {
			return err
		}
	}
	onboarded := "false"
	if auth.IsOnboarded {
		onboarded = "true"
	}
	return c.sess.Set(session.KeyOnboarded, onboarded)
}

// LinkTelegram begins connecting a Telegram account.
func (c *Client) LinkTelegram(ctx context.Context, link domain.TelegramLink) (domain.AgentSettings, error) {
	return decode[domain.AgentSettings](c.do(ctx, http.MethodPost, "/api/telegram/", link))
}

// SubmitPin sends the one-time PIN for an in-flight connection.
func (c *Client) SubmitPin(ctx context.Context, pin string) error {
	_, err := c.do(ctx, http.MethodPatch, "/api/telegram/", domain.TelegramLink{Pin: pin})
	return err
}

func (c *Client) Profile(ctx context.Context) (domain.Profile, error) {
	return decode[domain.Profile](c.do(ctx, http.MethodGet, "/api/profile/", nil))
}

func (c *Client) UpdateProfile(ctx context.Context, fields map[string]string) (domain.Profile, error) {
	return decode[domain.Profile](c.do(ctx, http.MethodPatch, "/api/profile/", fields))
}

func userbotPath(username string) string {
	return "/api/userbot/?username=" + url.QueryEscape(username)
}

// AgentStatus asks whether the background agent is running.
func (c *Client) AgentStatus(ctx context.Context, username string) (domain.AgentStatus, error) {
	return decode[domain.AgentStatus](c.do(ctx, http.MethodGet, userbotPath(username), nil))
}

// StartAgent issues the start command with the chosen model.
func (c *Client) StartAgent(ctx context.Context, username, model string) error {
	_, err := c.do(ctx, http.MethodPost, userbotPath(username),
		map[string]string{"model_choice": model})
	return err
}

// StopAgent issues the stop command. A 409 means the agent is already
// shutting down, which callers treat the same as a clean stop.
func (c *Client) StopAgent(ctx context.Context, username string) error {
	_, err := c.do(ctx, http.MethodDelete, userbotPath(username), nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		return nil
	}
	return err
}

func (c *Client) AgentSettings(ctx context.Context) (domain.AgentSettings, error) {
	return decode[domain.AgentSettings](c.do(ctx, http.MethodGet, "/api/agent_status/", nil))
}

func (c *Client) UpdateAgentSettings(ctx context.Context, fields map[string]any) (domain.AgentSettings, error) {
	return decode[domain.AgentSettings](c.do(ctx, http.MethodPatch, "/api/agent_status/", fields))
}

// Messages fetches the message set filtered by reply state: false is the
// live inbox, true is history.
func (c *Client) Messages(ctx context.Context, replySent bool) ([]domain.Message, error) {
	path := "/api/messages/?reply_sent=" + strconv.FormatBool(replySent)
	return decode[[]domain.Message](c.do(ctx, http.MethodGet, path, nil))
}

// PatchMessage approves and sends a reply.
func (c *Client) PatchMessage(ctx context.Context, id int64, patch domain.MessagePatch) error {
	_, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/messages/%d/", id), patch)
	return err
}

func (c *Client) Notifications(ctx context.Context) ([]domain.Notification, error) {
	return decode[[]domain.Notification](c.do(ctx, http.MethodGet, "/api/notifications/", nil))
}

func (c *Client) CreateNotification(ctx context.Context, title, body string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/notifications/",
		map[string]string{"title": title, "body": body})
	return err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/notifications/%d/", id),
		map[string]bool{"read": true})
	return err
}

func (c *Client) DeleteNotification(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/notifications/%d/", id), nil)
	return err
}

func (c *Client) ClearNotifications(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/notifications/", nil)
	return err
}

func datasetPath(username string) string {
	return "/api/dataset/?username=" + url.QueryEscape(username)
}

// UploadDataset posts a training dataset file as multipart form data. The
// body is buffered up front so the request core can replay it after a
// token refresh.
func (c *Client) UploadDataset(ctx context.Context, username, filename string, r io.Reader) (domain.DatasetResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return domain.DatasetResult{}, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return domain.DatasetResult{}, fmt.Errorf("read dataset file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return domain.DatasetResult{}, fmt.Errorf("finish multipart body: %w", err)
	}

	return decode[domain.DatasetResult](c.do(ctx, http.MethodPost, datasetPath(username),
		rawPayload{data: buf.Bytes(), contentType: mw.FormDataContentType()}))
}

// DownloadDataset fetches the raw dataset export.
func (c *Client) DownloadDataset(ctx context.Context, username string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, datasetPath(username), nil)
}
