// Package restapi implements the service.Service interface over the task REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"taskdash/internal/config"
	"taskdash/internal/pipeline"
	"taskdash/internal/service"
	"taskdash/internal/session"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = 10 * time.Second

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Client implements service.Service over HTTP.
// Login and register go through a public pipeline with no auth stage;
// everything else goes through the authenticated pipeline.
type Client struct {
	base    string
	public  *http.Client
	authed  *http.Client
	store   session.Store
	timeout time.Duration
}

// Options configures a Client.
type Options struct {
	// BaseURL is the service root, e.g. http://localhost:7071/api.
	BaseURL string

	// Store holds the session token.
	Store session.Store

	// Navigator is invoked when an authenticated call fails with 401.
	Navigator pipeline.Navigator

	// Transport is the innermost transport. nil means http.DefaultTransport.
	Transport http.RoundTripper

	// LogHTTP enables the request logging stage.
	LogHTTP bool
	Logger  *slog.Logger

	// Timeout bounds each call. Zero means APITimeout.
	Timeout time.Duration
}

// New creates a client from configuration.
func New(cfg *config.Config, store session.Store, nav pipeline.Navigator, logger *slog.Logger) (*Client, error) {
	return NewWithOptions(Options{
		BaseURL:   cfg.APIBase,
		Store:     store,
		Navigator: nav,
		LogHTTP:   cfg.HTTPLog,
		Logger:    logger,
		Timeout:   cfg.Timeout,
	})
}

// NewWithOptions creates a client with explicit options (for testing).
func NewWithOptions(opts Options) (*Client, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		return nil, errors.New("base URL required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL: %s", opts.BaseURL)
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	if opts.Store == nil {
		return nil, errors.New("session store required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = APITimeout
	}

	return &Client{
		base: base,
		public: &http.Client{Transport: pipeline.New(pipeline.Options{
			Base:    opts.Transport,
			LogHTTP: opts.LogHTTP,
			Logger:  opts.Logger,
		})},
		authed: &http.Client{Transport: pipeline.New(pipeline.Options{
			Base:      opts.Transport,
			Store:     opts.Store,
			Navigator: opts.Navigator,
			LogHTTP:   opts.LogHTTP,
			Logger:    opts.Logger,
		})},
		store:   opts.Store,
		timeout: timeout,
	}, nil
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "login", c.public, http.MethodPost, "user/login", nil, body, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return &service.ServerError{Status: http.StatusBadGateway, Message: "login response carried no token"}
	}
	return c.store.Set(resp.Token)
}

// Register creates an account without logging in.
func (c *Client) Register(ctx context.Context, email, password, name string) error {
	body := map[string]string{"email": email, "password": password, "name": name}
	return c.do(ctx, "register", c.public, http.MethodPost, "user/register", nil, body, nil)
}

// Logout discards the stored token.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// Profile returns the current user's profile.
func (c *Client) Profile(ctx context.Context) (service.Profile, error) {
	var resp struct {
		User service.Profile `json:"user"`
	}
	if err := c.do(ctx, "get profile", c.authed, http.MethodGet, "user/profile", nil, nil, &resp); err != nil {
		return service.Profile{}, err
	}
	return resp.User, nil
}

// UpdateProfile changes the display name. Email is never sent.
func (c *Client) UpdateProfile(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &service.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	body := map[string]string{"name": name}
	return c.do(ctx, "update profile", c.authed, http.MethodPut, "user/profile", nil, body, nil)
}

// ListTasks returns all tasks in server order.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, "list tasks", c.authed, http.MethodGet, "tasks", nil, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// CreateTask creates a task. Empty titles are rejected without a round trip.
func (c *Client) CreateTask(ctx context.Context, title string, status service.Status) (service.Task, error) {
	title, err := service.RequireTitle(title)
	if err != nil {
		return service.Task{}, err
	}
	if status == "" {
		status = service.DefaultStatus
	}

	var task service.Task
	body := service.Payload{Title: title, Status: status}
	if err := c.do(ctx, "create task", c.authed, http.MethodPost, "tasks", nil, body, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask replaces a task's title and status.
func (c *Client) UpdateTask(ctx context.Context, id, title string, status service.Status) (service.Task, error) {
	if id == "" {
		return service.Task{}, &service.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	title, err := service.RequireTitle(title)
	if err != nil {
		return service.Task{}, err
	}
	if status == "" {
		status = service.DefaultStatus
	}

	var task service.Task
	body := service.Payload{Title: title, Status: status}
	params := map[string]string{"id": id}
	if err := c.do(ctx, "update task", c.authed, http.MethodPut, "tasks/{id}", params, body, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return &service.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	params := map[string]string{"id": id}
	return c.do(ctx, "delete task", c.authed, http.MethodDelete, "tasks/{id}", params, nil, nil)
}

// do issues a single request. The path is resolved against the base URL and
// {name} segments are expanded from params.
func (c *Client) do(ctx context.Context, op string, hc *http.Client, method, path string, params map[string]string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	urls := googleapi.ResolveRelative(c.base, path)
	req, err := http.NewRequestWithContext(ctx, method, urls, reqBody)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if params != nil {
		googleapi.Expand(req.URL, params)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return &service.NetworkError{Op: op, Err: err}
	}
	defer googleapi.CloseBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp, hc == c.authed)
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &service.NetworkError{Op: op, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// decodeError builds a ServerError from a non-2xx response.
// The service reports failures as {"error": "..."}.
func decodeError(resp *http.Response, authenticated bool) error {
	serr := &service.ServerError{Status: resp.StatusCode, Authenticated: authenticated}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return serr
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		serr.Message = payload.Error
	}
	return serr
}
