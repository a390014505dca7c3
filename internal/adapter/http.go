package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/logger"
)

// HTTPClient defines an interface for HTTP client operations to enable mocking
//
//go:generate mockgen -source=http.go -destination=../mocks/http.go -package=mocks -mock_names=HTTPClient=MockHTTPClient
type HTTPClient interface {
	// Get performs a GET request and returns the response body
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, error)

	// PostForm performs a form-encoded POST request and returns the response body
	PostForm(ctx context.Context, url string, headers map[string]string, form url.Values) ([]byte, error)

	// PostJSON performs a JSON POST request and returns the response body
	PostJSON(ctx context.Context, url string, headers map[string]string, payload interface{}) ([]byte, error)

	// Post performs a POST request with a raw body and returns the response body
	Post(ctx context.Context, url string, headers map[string]string, contentType string, body []byte) ([]byte, error)
}

// HTTPStatusError is returned for non-2xx responses
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// IsUnauthorized reports whether err carries a 401 response
func IsUnauthorized(err error) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized
}

// HTTPRetryConfig bounds the retry loop of each request
type HTTPRetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultHTTPRetryConfig doubles from one second and gives up after three retries
var DefaultHTTPRetryConfig = HTTPRetryConfig{
	MaxRetries:      3,
	InitialInterval: 1 * time.Second,
	MaxInterval:     8 * time.Second,
}

// RealHTTPClient implements HTTPClient using the standard http package
type RealHTTPClient struct {
	client *http.Client
	retry  HTTPRetryConfig
}

// NewHTTPClient creates a new real HTTP client. timeout applies to every attempt.
func NewHTTPClient(timeout time.Duration, retry HTTPRetryConfig) HTTPClient {
	return &RealHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		retry: retry,
	}
}

// doRequestWithRetry executes a request built by newReq with bounded exponential backoff.
// Network errors, 429 and 5xx are retried; other statuses are permanent.
func (c *RealHTTPClient) doRequestWithRetry(ctx context.Context, newReq func() (*http.Request, error)) ([]byte, error) {
	var respBody []byte

	operation := func() error {
		req, err := newReq()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to perform request: %w", err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				logger.Warn("failed to close response body", zap.Error(err), zap.String("url", req.URL.String()))
			}
		}()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			statusErr := &HTTPStatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				logger.Warn("retryable status, backing off",
					zap.Int("status", resp.StatusCode),
					zap.String("url", req.URL.String()))
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}

		respBody = body
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.InitialInterval
	b.MaxInterval = c.retry.MaxInterval
	b.MaxElapsedTime = 0
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.2

	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.retry.MaxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("request failed after retries: %w", err)
	}

	return respBody, nil
}

func (c *RealHTTPClient) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	return c.doRequestWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		setHeaders(req, headers)
		return req, nil
	})
}

func (c *RealHTTPClient) PostForm(ctx context.Context, url string, headers map[string]string, form url.Values) ([]byte, error) {
	return c.Post(ctx, url, headers, "application/x-www-form-urlencoded", []byte(form.Encode()))
}

func (c *RealHTTPClient) PostJSON(ctx context.Context, url string, headers map[string]string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return c.Post(ctx, url, headers, "application/json", body)
}

func (c *RealHTTPClient) Post(ctx context.Context, url string, headers map[string]string, contentType string, body []byte) ([]byte, error) {
	return c.doRequestWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		setHeaders(req, headers)
		return req, nil
	})
}

func setHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
