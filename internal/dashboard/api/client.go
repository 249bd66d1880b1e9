// Package api is a thin wrapper over the standard HTTP client used by the
// dashboard. Every transport or server failure is normalized into a single
// *Error value carrying a human-readable message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// All paths are resolved under this prefix.
const basePath = "/api"

// DefaultTimeout bounds every outgoing request.
const DefaultTimeout = 10 * time.Second

// Error is the single error shape of the wrapper.
type Error struct {
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// serverError is the payload shape the API server reports failures with.
type serverError struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}

type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithAuthToken sets a bearer token sent with every request.
// The dashboard does not use it yet.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = token
	}
}

// Client performs JSON requests against the API server.
type Client struct {
	http      *http.Client
	baseURL   string
	authToken string
}

// New creates a client for the API server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get performs a GET request and decodes the response body into out,
// unless out is nil.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

// Post performs a POST request with an optional JSON body and decodes the
// response body into out, unless out is nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	endpoint := c.baseURL + basePath + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: err.Error()}
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		// The request could not even be constructed.
		return &Error{Message: err.Error()}
	}

	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	res, err := c.http.Do(req)
	if err != nil {
		// Sent, but no response: network failure or timeout.
		return &Error{Message: "could not reach server"}
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		var srvErr serverError
		_ = json.NewDecoder(res.Body).Decode(&srvErr)

		msg := srvErr.Err
		if msg == "" {
			msg = srvErr.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("server returned %s", res.Status)
		}
		return &Error{Message: msg}
	}

	if out != nil {
		if err = json.NewDecoder(res.Body).Decode(out); err != nil {
			return &Error{Message: fmt.Sprintf("decode response: %s", err)}
		}
	}

	return nil
}
