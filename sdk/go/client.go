package taskboardsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Taskboard HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Task represents the API task model.
type Task struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// Pagination accompanies paginated listings.
type Pagination struct {
	TotalCount  *int64 `json:"total_count"`
	TotalPages  *int   `json:"total_pages"`
	CurrentPage *int   `json:"current_page"`
	PageSize    *int   `json:"page_size"`
}

// TasksPage wraps a task listing response.
type TasksPage struct {
	Collections []Task     `json:"collections"`
	Pagination  Pagination `json:"pagination"`
}

// Configuration represents a runtime configuration entry.
type Configuration struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Value      string `json:"value"`
	Hidden     bool   `json:"hidden"`
	IsEditable bool   `json:"is_editable"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// Event represents an audit log entry.
type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

type taskEnvelope struct {
	Task Task `json:"task"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// ListTasksOptions filter and page a task listing. Zero values are omitted.
type ListTasksOptions struct {
	Page     int
	PageSize int
	GetAll   bool
	Name     string
	Sort     string
}

// ListTasks returns a page of tasks.
func (c *Client) ListTasks(ctx context.Context, opts ListTasksOptions) (TasksPage, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", fmt.Sprint(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", fmt.Sprint(opts.PageSize))
	}
	if opts.GetAll {
		q.Set("get_all", "true")
	}
	if opts.Name != "" {
		q.Set("name", opts.Name)
	}
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}
	endpoint := "v1/tasks"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp TasksPage
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// GetTask fetches a task by id.
func (c *Client) GetTask(ctx context.Context, id int64) (Task, error) {
	var resp taskEnvelope
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("v1/tasks/%d", id), nil, &resp)
	return resp.Task, err
}

// CreateTask creates a task. dueDate is RFC 3339 or empty.
func (c *Client) CreateTask(ctx context.Context, name, description, dueDate string) (Task, error) {
	body := map[string]any{"name": name}
	if description != "" {
		body["description"] = description
	}
	if dueDate != "" {
		body["due_date"] = dueDate
	}
	var resp taskEnvelope
	err := c.do(ctx, http.MethodPost, "v1/tasks/new", body, &resp)
	return resp.Task, err
}

// UpdateTask patches a task; nil fields stay unchanged.
func (c *Client) UpdateTask(ctx context.Context, id int64, name, description, dueDate *string) (Task, error) {
	body := map[string]any{}
	if name != nil {
		body["name"] = *name
	}
	if description != nil {
		body["description"] = *description
	}
	if dueDate != nil {
		body["due_date"] = *dueDate
	}
	var resp taskEnvelope
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("v1/tasks/%d", id), body, &resp)
	return resp.Task, err
}

// DeleteTask soft-deletes a task and returns it.
func (c *Client) DeleteTask(ctx context.Context, id int64) (Task, error) {
	var resp taskEnvelope
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("v1/tasks/%d", id), nil, &resp)
	return resp.Task, err
}

// ListConfigurations returns the visible configurations.
func (c *Client) ListConfigurations(ctx context.Context) ([]Configuration, error) {
	var resp []Configuration
	err := c.do(ctx, http.MethodGet, "v1/configurations", nil, &resp)
	return resp, err
}

// UpdateConfiguration sets the value of an editable configuration.
func (c *Client) UpdateConfiguration(ctx context.Context, id int64, value string) (Configuration, error) {
	var resp Configuration
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("v1/configurations/%d", id), map[string]any{"value": value}, &resp)
	return resp, err
}

// Events returns recent audit events.
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	endpoint := "v1/events"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var resp []Event
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
