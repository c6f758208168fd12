package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/fortify/retry"
)

// Client is a typed Go client for the taskd HTTP API.
type Client struct {
	baseURL  string
	http     *http.Client
	retryCfg retry.Config
}

// NewClient creates a client for the server at baseURL, e.g.
// "http://127.0.0.1:8420".
func NewClient(baseURL string, opts ...Option) *Client {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: o.timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		retryCfg: retry.Config{
			MaxAttempts:   o.maxAttempts,
			InitialDelay:  o.initialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// get issues a GET with retry and decodes the response into out.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	r := retry.New[[]byte](c.retryCfg)
	body, err := r.Do(ctx, func(ctx context.Context) ([]byte, error) {
		u := c.baseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return c.do(op, req)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: unmarshal: %w", op, err)
	}
	return nil
}

// post issues a POST with retry and decodes the response into out when
// out is non-nil.
func (c *Client) post(ctx context.Context, op, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	r := retry.New[[]byte](c.retryCfg)
	body, err := r.Do(ctx, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return c.do(op, req)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%s: unmarshal: %w", op, err)
		}
	}
	return nil
}

func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Operation: op, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// ListProjects returns the id and name of every project.
func (c *Client) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	var out []ProjectSummary
	if err := c.get(ctx, "list projects", "/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProject returns the full view of one project. An unknown id
// yields a default-valued project, mirroring the server's contract.
func (c *Client) GetProject(ctx context.Context, projectID int) (*Project, error) {
	var out Project
	q := url.Values{"project_id": {strconv.Itoa(projectID)}}
	if err := c.get(ctx, "get project", "/project", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTask returns the full view of one task.
func (c *Client) GetTask(ctx context.Context, projectID, taskID int) (*Task, error) {
	var out Task
	q := url.Values{
		"project_id": {strconv.Itoa(projectID)},
		"task_id":    {strconv.Itoa(taskID)},
	}
	if err := c.get(ctx, "get task", "/task", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProject creates a project and returns its id.
func (c *Client) CreateProject(ctx context.Context, name, description string) (int, error) {
	payload := map[string]string{"name": name, "description": description}
	var out struct {
		ProjectID int `json:"project_id"`
	}
	if err := c.post(ctx, "create project", "/project/create", payload, &out); err != nil {
		return 0, err
	}
	return out.ProjectID, nil
}

// RenameProject sets a project's name.
func (c *Client) RenameProject(ctx context.Context, projectID int, name string) error {
	payload := map[string]any{"project_id": projectID, "name": name}
	return c.post(ctx, "rename project", "/project/name", payload, nil)
}

// DescribeProject sets a project's description.
func (c *Client) DescribeProject(ctx context.Context, projectID int, description string) error {
	payload := map[string]any{"project_id": projectID, "description": description}
	return c.post(ctx, "describe project", "/project/description", payload, nil)
}

// CreateTask creates a task within a project and returns its id. The
// id is scoped to the project.
func (c *Client) CreateTask(ctx context.Context, projectID int, title, description string) (int, error) {
	payload := map[string]any{"project_id": projectID, "title": title, "description": description}
	var out struct {
		TaskID int `json:"task_id"`
	}
	if err := c.post(ctx, "create task", "/task/create", payload, &out); err != nil {
		return 0, err
	}
	return out.TaskID, nil
}

// SetTaskTitle sets a task's title.
func (c *Client) SetTaskTitle(ctx context.Context, projectID, taskID int, title string) error {
	payload := map[string]any{"project_id": projectID, "task_id": taskID, "title": title}
	return c.post(ctx, "set task title", "/task/title", payload, nil)
}

// SetTaskDescription sets a task's description.
func (c *Client) SetTaskDescription(ctx context.Context, projectID, taskID int, description string) error {
	payload := map[string]any{"project_id": projectID, "task_id": taskID, "description": description}
	return c.post(ctx, "set task description", "/task/description", payload, nil)
}

// SetTaskState moves a task to newState ("Todo", "InProgress",
// "Blocked" or "Done") and records the change in the activity log. An
// unrecognized state is absorbed by the server without effect.
func (c *Client) SetTaskState(ctx context.Context, projectID, taskID int, newState string) error {
	payload := map[string]any{"project_id": projectID, "task_id": taskID, "new_state": newState}
	return c.post(ctx, "set task state", "/task/state", payload, nil)
}

// AddDependency records that the task depends on another task of the
// same project. Adding an existing dependency is a no-op.
func (c *Client) AddDependency(ctx context.Context, projectID, taskID, dependency int) error {
	return c.changeDependency(ctx, projectID, taskID, "Add", dependency)
}

// RemoveDependency removes a dependency; removing one that is not
// present is a no-op.
func (c *Client) RemoveDependency(ctx context.Context, projectID, taskID, dependency int) error {
	return c.changeDependency(ctx, projectID, taskID, "Remove", dependency)
}

func (c *Client) changeDependency(ctx context.Context, projectID, taskID int, action string, dependency int) error {
	payload := map[string]any{
		"project_id": projectID,
		"task_id":    taskID,
		"action":     action,
		"dependency": dependency,
	}
	return c.post(ctx, "change dependency", "/task/dependency", payload, nil)
}

// CommentTask appends a comment to the task's activity log.
func (c *Client) CommentTask(ctx context.Context, projectID, taskID int, comment string) error {
	payload := map[string]any{"project_id": projectID, "task_id": taskID, "comment": comment}
	return c.post(ctx, "comment task", "/task/comment", payload, nil)
}
