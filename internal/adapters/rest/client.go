// Package rest is the JSON-over-HTTP plumbing shared by the outbound API clients.
package rest

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
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/topcoder-platform/playoff-processor/pkg/logger"
	"github.com/topcoder-platform/playoff-processor/pkg/metrics"
	"github.com/topcoder-platform/playoff-processor/pkg/tracing"
)

const (
	defaultTimeout  = 30 * time.Second
	maxErrorBodyLen = 512
)

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Client sends authenticated JSON requests below a base URL.
type Client struct {
	name       string
	base       string
	tokens     TokenSource
	httpClient *http.Client
	timeout    time.Duration
	logger     logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// New creates a Client. name labels logs, metrics and spans.
func New(name, base string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		name:       name,
		base:       strings.TrimRight(base, "/"),
		tokens:     tokens,
		httpClient: http.DefaultClient,
		timeout:    defaultTimeout,
		logger:     logger.Get().Named(name),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokens returns a copy of c that authenticates with ts.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// Name identifies the client.
func (c *Client) Name() string { return c.name }

// Do sends one request and reads the whole response. Any status is returned
// as a Response; only transport and token failures produce an error.
func (c *Client) Do(ctx context.Context, op, method, path string, query url.Values, payload any) (resp *Response, err error) {
	ctx, span := tracing.Start(ctx, c.name+"."+op,
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)
	defer func() { tracing.End(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", c.name, op, err)
	}

	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode body: %w", c.name, op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", c.name, op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordExternalRequest(c.name, op, "error", latency)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, c.name, op, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		metrics.RecordExternalRequest(c.name, op, "error", latency)
		return nil, fmt.Errorf("%w: %s %s: read body: %w", ErrTransport, c.name, op, err)
	}
	metrics.RecordExternalRequest(c.name, op, strconv.Itoa(res.StatusCode), latency)
	span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
	c.logger.Debug(ctx, "api call",
		logger.String("operation", op),
		logger.String("method", method),
		logger.String("url", target),
		logger.Int("status", res.StatusCode),
		logger.Float64("latencyMs", latency),
	)
	return &Response{Status: res.StatusCode, Body: raw}, nil
}

// DoOK is Do that turns any non-2xx response into a *StatusError.
func (c *Client) DoOK(ctx context.Context, op, method, path string, query url.Values, payload any) (*Response, error) {
	resp, err := c.Do(ctx, op, method, path, query, payload)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, c.StatusError(op, resp)
	}
	return resp, nil
}

// StatusError builds the error describing resp.
func (c *Client) StatusError(op string, resp *Response) *StatusError {
	body := string(resp.Body)
	if len(body) > maxErrorBodyLen {
		body = body[:maxErrorBodyLen] + "..."
	}
	return &StatusError{Client: c.name, Operation: op, Status: resp.Status, Body: body}
}

// DecodeJSON unmarshals a response body into v.
func DecodeJSON(op string, resp *Response, v any) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
