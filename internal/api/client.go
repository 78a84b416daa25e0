package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/models"
)

// maxBodySize caps how much of a response body is read
const maxBodySize = 8 << 20

// Doer is the part of tls_client.HttpClient the backend client relies on
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ChatOptions are optional generation parameters forwarded with /chat
type ChatOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Client talks to the chat backend
type Client struct {
	httpClient Doer
	baseURL    string
	timeout    time.Duration
	chatOpts   ChatOptions
	logger     *zap.Logger
	mu         sync.RWMutex
	closed     bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithBaseURL sets the backend base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying transport
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithChatOptions sets the generation parameters sent with every chat request
func WithChatOptions(opts ChatOptions) ClientOption {
	return func(c *Client) {
		c.chatOpts = opts
	}
}

// NewClient creates a new backend client
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		baseURL: models.DefaultBaseURL,
		timeout: 120 * time.Second,
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close marks the client closed; later calls fail fast
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// response is a fully read backend reply
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// detail extracts the backend's error detail, if any
func (r response) detail() string {
	if !gjson.ValidBytes(r.body) {
		return ""
	}
	d := gjson.GetBytes(r.body, PathDetail)
	if d.IsArray() {
		return gjson.GetBytes(r.body, PathDetailFirstMsg).String()
	}
	return d.String()
}

// do sends a JSON request and reads the whole reply.
// Only transport failures are returned as errors; status handling is left to callers.
func (c *Client) do(ctx context.Context, operation, method, path string, payload any) (response, error) {
	if c.IsClosed() {
		return response{}, fmt.Errorf("client is closed")
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("failed to encode %s request: %w", operation, err)
		}
		body = bytes.NewReader(data)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return response{}, fmt.Errorf("failed to create %s request: %w", operation, err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed",
			zap.String("operation", operation),
			zap.String("request_id", requestID),
			zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return response{}, apierrors.NewTimeoutError(operation)
		}
		return response{}, apierrors.NewNetworkError(operation, path, c.baseURL, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return response{}, apierrors.NewNetworkError(operation, path, c.baseURL, err)
	}

	c.logger.Debug("backend request",
		zap.String("operation", operation),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)))

	return response{status: resp.StatusCode, body: data}, nil
}

// apiError builds the error for a non-2xx reply outside of authentication
func apiError(resp response, endpoint, message string) error {
	return apierrors.NewAPIError(resp.status, endpoint, message).WithDetail(resp.detail())
}
