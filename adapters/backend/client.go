package backend

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"prithvipulse/domain/core"
	"prithvipulse/internal"
	"prithvipulse/internal/config"
	"prithvipulse/internal/errors"
	"prithvipulse/models"
	"prithvipulse/ports"
)

// Client talks to the AI backend over HTTP. Every call is a single attempt.
type Client struct {
	baseURL     string
	timeout     time.Duration
	httpClient  *http.Client
	rateLimiter *RateLimiter
	logger      *internal.Logger
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger
func WithLogger(l *internal.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a backend client from the resolved backend configuration
func NewClient(cfg config.BackendConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		timeout:     cfg.Timeout,
		httpClient:  &http.Client{},
		rateLimiter: NewRateLimiter(cfg.RateLimit),
		logger:      internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ ports.BackendClient = (*Client)(nil)

// BaseURL returns the backend root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases the rate limiter timer
func (c *Client) Close() {
	c.rateLimiter.Stop()
}

// PostJSON sends payload as a JSON body
func (c *Client) PostJSON(ctx context.Context, requestID core.RequestID, path string, payload any) (*ports.BackendResponse, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "marshal request")
	}
	return c.do(ctx, requestID, http.MethodPost, path, "application/json", bytes.NewReader(raw))
}

// PostFile sends the upload as multipart/form-data. The language, when set,
// travels as an extra form field.
func (c *Client) PostFile(ctx context.Context, requestID core.RequestID, path, field string, upload models.ImageUpload) (*ports.BackendResponse, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	filename := upload.Filename
	if filename == "" {
		filename = defaultUploadFilename
	}
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, errors.Wrap(err, "create form file")
	}
	if _, err := part.Write(upload.Content); err != nil {
		return nil, errors.Wrap(err, "write form file")
	}
	if upload.Language != "" {
		if err := w.WriteField(FieldLanguage, upload.Language); err != nil {
			return nil, errors.Wrap(err, "write language field")
		}
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "close multipart body")
	}

	return c.do(ctx, requestID, http.MethodPost, path, w.FormDataContentType(), &body)
}

// Get issues a bodiless GET
func (c *Client) Get(ctx context.Context, requestID core.RequestID, path string) (*ports.BackendResponse, error) {
	return c.do(ctx, requestID, http.MethodGet, path, "", nil)
}

func (c *Client) do(ctx context.Context, requestID core.RequestID, method, path, contentType string, body io.Reader) (*ports.BackendResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrap(errors.Transport(err), "build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set(HeaderRequestID, requestID.String())
	}

	c.logger.Trace("[BackendClient] %s %s request_id=%s", method, url, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("[BackendClient] %s %s returned %d: %s", method, path, resp.StatusCode, truncate(raw, 200))
		return nil, errors.Protocol(resp.StatusCode)
	}

	return &ports.BackendResponse{StatusCode: resp.StatusCode, Body: raw}, nil
}

// classifyTransportError separates deadline expiry from other failures to reach
// the backend. Caller cancellation counts as transport.
func classifyTransportError(ctx context.Context, err error) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout(err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Timeout(err)
	}
	return errors.Transport(err)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return fmt.Sprintf("%s...(%d bytes)", b[:n], len(b))
}
