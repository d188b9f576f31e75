// Package restclient is the JSON transport to the storefront backend.
//
// Every call carries the caller's Scope explicitly: the bearer token for
// /user endpoints and the delivery pincode for catalog scoping. Responses are
// classified into NetworkError, HTTPError and AppError.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Header names understood by the backend.
const (
	HeaderPincode   = "x-user-pincode"
	HeaderRequestID = "X-Request-ID"
)

// Scope is the per-call session context.
type Scope struct {
	Token   string
	Pincode string
}

// Config configures a Client. BaseURL and Version are joined to form the API
// root, e.g. "http://localhost:3005" + "/api/v1".
type Config struct {
	BaseURL    string
	Version    string
	Timeout    time.Duration
	Retry      RetryConfig
	HTTPClient *http.Client
}

// Client talks JSON to the backend.
type Client struct {
	root  string
	http  *http.Client
	retry RetryConfig
}

// New creates a Client.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	retryCfg := cfg.Retry
	if retryCfg.MaxAttempts == 0 {
		retryCfg = DefaultRetryConfig()
	}
	return &Client{
		root:  JoinURL(cfg.BaseURL, cfg.Version),
		http:  httpClient,
		retry: retryCfg,
	}
}

// JoinURL joins host and version prefix with exactly one slash between them.
func JoinURL(host, version string) string {
	host = strings.TrimRight(host, "/")
	version = strings.Trim(version, "/")
	if version == "" {
		return host
	}
	return host + "/" + version
}

// Root returns the API root URL.
func (c *Client) Root() string {
	return c.root
}

type requestIDKey struct{}

// WithRequestID stores a request id that outgoing calls will propagate.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// envelope is the subset of the backend's response wrapper needed to detect
// application-level failures.
type envelope struct {
	Success *bool           `json:"success"`
	Status  json.RawMessage `json:"status"`
	Message string          `json:"message"`
}

func (e envelope) failed() bool {
	if e.Success != nil {
		return !*e.Success
	}
	return bytes.Equal(bytes.TrimSpace(e.Status), []byte("false"))
}

// Get issues a GET, retrying transport failures and 5xx responses according
// to the client's RetryConfig.
func (c *Client) Get(ctx context.Context, path string, scope Scope, out interface{}) error {
	return retry(ctx, c.retry, func() error {
		return c.Do(ctx, http.MethodGet, path, scope, nil, out)
	})
}

// Post issues a POST.
func (c *Client) Post(ctx context.Context, path string, scope Scope, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, scope, body, out)
}

// Put issues a PUT.
func (c *Client) Put(ctx context.Context, path string, scope Scope, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, scope, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, scope Scope, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, scope, nil, out)
}

// Do sends one request. body, when non-nil, is encoded as JSON; out, when
// non-nil, receives the decoded 2xx response body.
func (c *Client) Do(ctx context.Context, method, path string, scope Scope, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.root+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if scope.Token != "" {
		req.Header.Set("Authorization", "Bearer "+scope.Token)
	}
	if scope.Pincode != "" {
		req.Header.Set(HeaderPincode, scope.Pincode)
	}
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	req.Header.Set(HeaderRequestID, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return &HTTPError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: env.Message}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.failed() {
		return &AppError{Method: method, Path: path, Message: env.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
