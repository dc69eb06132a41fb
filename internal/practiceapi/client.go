package practiceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Client talks to the practice service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// GenerateProblem calls POST /generate-problem.
func (c *Client) GenerateProblem(ctx context.Context, req GenerateProblemRequest) (*ProblemPayload, error) {
	var out ProblemPayload
	if err := c.do(ctx, http.MethodPost, PathGenerateProblem, req, SchemaProblem, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Grade calls POST /grade.
func (c *Client) Grade(ctx context.Context, req GradeRequest) (*GradeResponse, error) {
	var out GradeResponse
	if err := c.do(ctx, http.MethodPost, PathGrade, req, SchemaGradeResponse, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, PathHealth, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Primitives calls GET /primitives.
func (c *Client) Primitives(ctx context.Context) (map[string][]string, error) {
	var out map[string][]string
	if err := c.do(ctx, http.MethodGet, PathPrimitives, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, schema string, out any) error {
	start := time.Now()
	err := c.roundTrip(ctx, method, path, body, schema, out)

	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		c.log.Debug("practice api request failed", append(fields, zap.Error(err))...)
		return err
	}
	c.log.Debug("practice api request", fields...)
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any, schema string, out any) error {
	fail := func(status int, err error) error {
		return &TransportError{Op: path, StatusCode: status, Err: err}
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fail(0, fmt.Errorf("marshal request: %w", err))
		}
		reader = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fail(0, fmt.Errorf("create request: %w", err))
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return fail(resp.StatusCode, errors.New(errorDetail(raw)))
	}

	if schema != "" {
		if err := Validate(schema, raw); err != nil {
			return fail(resp.StatusCode, err)
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("decode body: %w", err))
	}
	return nil
}

// errorDetail extracts the service's {"detail": ...} message, falling back
// to the raw body.
func errorDetail(raw []byte) string {
	var e ErrorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return "empty response"
	}
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
