// Package storefront calls the storefront HTTP API around a chat session.
package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("storefront: %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
	}
	return fmt.Sprintf("storefront: %s %s: status %d", e.Method, e.Path, e.Code)
}

// Session is a chat session created by the backend.
type Session struct {
	ID       string `json:"session_id"`
	Greeting string `json:"message"`
}

// Client talks to the storefront API rooted at a base URL.
type Client struct {
	base *url.URL
	http *http.Client
}

// New returns a client for baseURL. A nil httpClient uses one with a
// default timeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse base url: unsupported scheme %q", u.Scheme)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{base: u, http: httpClient}, nil
}

// StartSession asks the backend for a new chat session.
func (c *Client) StartSession(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/api/chat/start", &s); err != nil {
		return nil, err
	}
	if s.ID == "" {
		return nil, fmt.Errorf("storefront: start session: empty session id")
	}
	return &s, nil
}

// ClearHistory deletes the server-side chat history.
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/chat/clear", nil)
}

// ClearSession deletes one server-side chat session.
func (c *Client) ClearSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return c.ClearHistory(ctx)
	}
	return c.do(ctx, http.MethodDelete, "/api/chat/session/"+sessionID, nil)
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	u := c.base.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return fmt.Errorf("storefront: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("storefront: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("storefront: decode %s: %w", path, err)
	}
	return nil
}
