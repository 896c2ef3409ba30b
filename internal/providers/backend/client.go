package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sandevgo/policyadvisor/internal/config"
	"github.com/sandevgo/policyadvisor/internal/core"
	"github.com/sandevgo/policyadvisor/pkg/retry"
)

var ErrSessionNotFound = errors.New("session not found")

// Client is a thin wrapper over the PolicyAI HTTP API. Reads go through a
// short retrier (transport failures and 5xx only); mutating calls are sent
// exactly once.
type Client struct {
	client  *http.Client
	baseURL string
	retrier *retry.Retrier
}

func NewClient(cfg *config.BackendConfig) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		retrier: retry.NewShortRetrier(),
	}
}

func (c *Client) CreateSession(ctx context.Context) (core.Session, error) {
	var result struct {
		SessionID string `json:"session_id"`
		CreatedAt string `json:"created_at"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/sessions", map[string]any{}, &result); err != nil {
		return core.Session{}, fmt.Errorf("create session: %w", err)
	}
	return core.Session{ID: result.SessionID}, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]core.SessionSummary, error) {
	var result struct {
		Sessions []core.SessionSummary `json:"sessions"`
	}
	if err := c.getJSON(ctx, "/api/chat/sessions", &result); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return result.Sessions, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (core.Session, []core.StoredRecord, error) {
	var result struct {
		Session  core.Session        `json:"session"`
		Messages []core.StoredRecord `json:"messages"`
	}
	if err := c.getJSON(ctx, "/api/chat/sessions/"+id, &result); err != nil {
		return core.Session{}, nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return result.Session, result.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, sessionID, content string) (core.ChatResponse, error) {
	payload := map[string]any{"content": content}

	var result core.ChatResponse
	path := "/api/chat/sessions/" + sessionID + "/messages"
	if err := c.doJSON(ctx, http.MethodPost, path, payload, &result); err != nil {
		return core.ChatResponse{}, fmt.Errorf("send message: %w", err)
	}
	return result, nil
}

func (c *Client) DiscoverChat(ctx context.Context, transcript []core.TranscriptEntry, policyIDs []string) (core.ChatResponse, error) {
	if policyIDs == nil {
		policyIDs = []string{}
	}
	payload := map[string]any{
		"messages":           transcript,
		"session_policy_ids": policyIDs,
	}

	var result core.ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/discover/chat", payload, &result); err != nil {
		return core.ChatResponse{}, fmt.Errorf("discover chat: %w", err)
	}
	return result, nil
}

func (c *Client) ComparePolicies(ctx context.Context, policyIDs []string) (core.Comparison, error) {
	payload := map[string]any{"policy_ids": policyIDs}

	var result core.Comparison
	if err := c.doJSON(ctx, http.MethodPost, "/api/compare", payload, &result); err != nil {
		return core.Comparison{}, fmt.Errorf("compare policies: %w", err)
	}
	return result, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/api/chat/sessions/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// getJSON wraps idempotent reads in the retrier. A response with a 4xx
// status is a terminal answer and breaks out of the retry loop immediately.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	var terminal error
	err := c.retrier.Do(ctx, func() error {
		err := c.doJSON(ctx, http.MethodGet, path, nil, out)
		if err != nil && !retryable(err) {
			terminal = err
			return nil
		}
		return err
	})
	if terminal != nil {
		return terminal
	}
	return err
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= http.StatusInternalServerError
	}
	// Transport-level failure, worth another attempt.
	return !errors.Is(err, ErrSessionNotFound)
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.code, e.body)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.AppUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrSessionNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode, body: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
