// Package gti provides a client for the Google Threat Intelligence v3 API
// and the report-aggregation helpers the MCP tools are built on.
//
// The client covers the subset of the API this server uses: single-object
// GETs, raw data endpoints, cursor-paginated collection iteration, and file
// submission. All operations take a context and forward caller-supplied
// query parameters verbatim.
package gti

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/gti-mcp-go/internal/ratelimit"
)

// DefaultHost is the production API endpoint.
const DefaultHost = "https://www.virustotal.com/api/v3"

const (
	defaultTimeout = 80 * time.Second
	userAgent      = "gti-mcp-go/1.0"
)

// Client talks to the Google Threat Intelligence v3 API with a single API
// key. It is safe for concurrent use and holds no per-request state.
type Client struct {
	apiKey     string
	host       string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHost overrides the API endpoint (used by tests).
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = strings.TrimSuffix(host, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout on the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLimiter applies a client-side rate limiter to all outbound calls.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		host:       DefaultHost,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse is the envelope every v3 endpoint responds with. Data holds
// either a single object or a list of objects depending on the endpoint.
type apiResponse struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		Cursor string `json:"cursor"`
	} `json:"meta"`
	Error *APIError `json:"error"`
}

// get performs an authenticated GET and decodes the response envelope.
// API-reported errors are returned in the envelope, not as Go errors.
func (c *Client) get(ctx context.Context, path string, params map[string]string) (*apiResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := c.host + "/" + strings.TrimPrefix(path, "/")
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	c.logger.DebugContext(ctx, "API request", "method", http.MethodGet, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, path)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("x-apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

func decodeResponse(resp *http.Response, path string) (*apiResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", path, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response from %s (status %d): %w", path, resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 && parsed.Error == nil {
		return nil, fmt.Errorf("request %s: unexpected status %d", path, resp.StatusCode)
	}

	return &parsed, nil
}

// GetObject fetches a single object. An API-reported error (not found,
// permission denied) is returned on the Object's Error field with a nil Go
// error; transport and decoding failures are returned as errors.
func (c *Client) GetObject(ctx context.Context, path string, params map[string]string) (*Object, error) {
	resp, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return &Object{Error: resp.Error}, nil
	}

	var obj Object
	if err := json.Unmarshal(resp.Data, &obj); err != nil {
		return nil, fmt.Errorf("decode object from %s: %w", path, err)
	}
	return &obj, nil
}

// GetData fetches an endpoint whose payload is not an object envelope
// (behaviour summaries, timelines, MITRE trees) and returns the raw "data"
// member. API-reported errors are returned as errors here: there is no
// object to attach them to.
func (c *Client) GetData(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	resp, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Data, nil
}
