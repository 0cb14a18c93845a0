// Package remote implements the task engine's gateway against the
// backend HTTP API, converting between the wire representation and the
// internal task model.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mfraser/taskdeck/internal/engine"
	"github.com/mfraser/taskdeck/internal/model"
)

// DefaultClientTimeout is the default timeout for API requests.
// Expiry surfaces to the engine as an ordinary remote failure.
const DefaultClientTimeout = 10 * time.Second

// TokenSource supplies the bearer credential for each request.
// Implementations return engine.ErrAuthRequired when no credential is
// cached.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource wrapping a fixed credential.
type StaticToken string

func (t StaticToken) Token() (string, error) {
	if t == "" {
		return "", engine.ErrAuthRequired
	}
	return string(t), nil
}

// APIError reports a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
}

// Client wraps HTTP calls to the backend task API. It implements
// engine.Gateway.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a new API client with timeout.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: DefaultClientTimeout,
		},
	}
}

// ListTasks fetches the full task listing, newest-first.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	body, err := c.do(ctx, http.MethodGet, "/todos", nil)
	if err != nil {
		return nil, err
	}

	var records []wireTask
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode task listing: %w", err)
	}

	tasks := make([]model.Task, 0, len(records))
	for _, r := range records {
		t, err := r.toModel()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// CreateTask creates a task and returns the server-assigned record.
func (c *Client) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	req := wireCreate{
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Category:    t.Category,
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC().Format(time.RFC3339)
		req.DueDate = &due
	}

	body, err := c.do(ctx, http.MethodPost, "/todos", req)
	if err != nil {
		return model.Task{}, err
	}

	var record wireTask
	if err := json.Unmarshal(body, &record); err != nil {
		return model.Task{}, fmt.Errorf("decode created task: %w", err)
	}
	return record.toModel()
}

// UpdateTask sends a partial patch and returns the merged record.
func (c *Client) UpdateTask(ctx context.Context, id string, p model.Patch) (model.Task, error) {
	body, err := c.do(ctx, http.MethodPut, "/todos/"+id, patchToWire(p))
	if err != nil {
		return model.Task{}, err
	}

	var record wireTask
	if err := json.Unmarshal(body, &record); err != nil {
		return model.Task{}, fmt.Errorf("decode updated task: %w", err)
	}
	return record.toModel()
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/todos/"+id, nil)
	return err
}

// Profile fetches the authenticated user, for display only.
func (c *Client) Profile(ctx context.Context) (model.User, error) {
	body, err := c.do(ctx, http.MethodGet, "/profile", nil)
	if err != nil {
		return model.User{}, err
	}

	var resp struct {
		User struct {
			ID    wireID `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.User{}, fmt.Errorf("decode profile: %w", err)
	}
	return model.User{ID: string(resp.User.ID), Name: resp.User.Name, Email: resp.User.Email}, nil
}

// do performs an authenticated request. A 401 surfaces as
// engine.ErrAuthRequired; other failures as *APIError.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%s %s: %w", method, path, engine.ErrAuthRequired)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	return body, nil
}

// errorMessage extracts the backend's {"error": ...} payload, falling
// back to the raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(body)
}
