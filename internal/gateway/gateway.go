// Package gateway is the single HTTP client every upstream call goes
// through. Requests pass an explicit, ordered middleware pipeline (bearer
// injection, local expiry short-circuit, auth-failure interception, logging,
// metrics) so ordering and error behaviour are testable in isolation.
package gateway

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

const defaultTimeout = 15 * time.Second

// Doer executes one HTTP request.
type Doer func(*http.Request) (*http.Response, error)

// Middleware wraps a Doer. Middlewares run in the order they are listed.
type Middleware func(next Doer) Doer

// SessionState is what the pipeline needs to know about the session. The
// session store satisfies it.
type SessionState interface {
	Token() (string, bool)
	TokenExpired() bool
	ForceLogout(ctx context.Context, reason string) bool
}

// Client dispatches JSON requests against the upstream base endpoint.
type Client struct {
	base     *url.URL
	pipeline Doer
	raw      Doer
}

// Option customises a Client.
type Option func(*config)

type config struct {
	httpClient  *http.Client
	middlewares []Middleware
}

// WithHTTPClient overrides the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.httpClient = hc }
}

// WithMiddleware appends pipeline stages, preserving order.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *config) { c.middlewares = append(c.middlewares, mw...) }
}

// New creates a Client for the given base endpoint.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	cfg := config{httpClient: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(&cfg)
	}

	pipeline := cfg.httpClient.Do
	for i := len(cfg.middlewares) - 1; i >= 0; i-- {
		pipeline = cfg.middlewares[i](pipeline)
	}

	return &Client{base: base, pipeline: pipeline, raw: cfg.httpClient.Do}, nil
}

// Do sends a request through the pipeline.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.pipeline(req)
}

// Resolve joins a path (with optional query) onto the base endpoint.
func (c *Client) Resolve(path string, query url.Values) string {
	ref := *c.base
	ref.Path = strings.TrimSuffix(ref.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return ref.String()
}

// StatusError is a non-2xx upstream response with its decoded message.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned %d", e.Code)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Code, e.Message)
}

// errorEnvelope covers the message shapes the upstream uses.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GetJSON issues a GET and decodes the response body into out (skipped when
// out is nil).
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.roundTrip(ctx, http.MethodGet, path, query, nil, out)
}

// PostJSON issues a POST with a JSON body.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.roundTrip(ctx, http.MethodPost, path, nil, in, out)
}

// PutJSON issues a PUT with a JSON body.
func (c *Client) PutJSON(ctx context.Context, path string, in, out any) error {
	return c.roundTrip(ctx, http.MethodPut, path, nil, in, out)
}

// DeleteJSON issues a DELETE.
func (c *Client) DeleteJSON(ctx context.Context, path string) error {
	return c.roundTrip(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Ping reports whether the upstream endpoint is reachable. Any HTTP response
// counts; only transport failures mean the upstream is down. The pipeline is
// bypassed so an expired session cannot fail a readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.base.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.raw(req)
	if err != nil {
		return fmt.Errorf("upstream ping: %w", err)
	}
	drain(resp)
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Resolve(path, query), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.pipeline(req)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError builds a StatusError from a non-2xx response body.
func statusError(resp *http.Response) *StatusError {
	var envelope errorEnvelope
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &envelope)

	message := envelope.Error
	if message == "" {
		message = envelope.Message
	}
	return &StatusError{Code: resp.StatusCode, Message: message}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
