package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/logger"
)

// Config holds the per-host request rate
type Config struct {
	RequestsPerSecond float64
	Burst             int
	// MaxQueueTime bounds how long a request waits for a token
	MaxQueueTime time.Duration
}

// client throttles an HTTPClient with one token bucket per host, so every
// account on the same marketplace shares one rate
type client struct {
	inner  adapter.HTTPClient
	config Config

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPClient wraps inner with per-host rate limiting.
// A non-positive RequestsPerSecond disables limiting.
func NewHTTPClient(inner adapter.HTTPClient, config Config) adapter.HTTPClient {
	if config.RequestsPerSecond <= 0 {
		return inner
	}
	if config.Burst < 1 {
		config.Burst = 1
	}
	return &client{
		inner:    inner,
		config:   config,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (c *client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.config.RequestsPerSecond), c.config.Burst)
		c.limiters[host] = l
		logger.Debug("Created rate limiter",
			zap.String("host", host),
			zap.Float64("requests_per_second", c.config.RequestsPerSecond),
			zap.Int("burst", c.config.Burst),
		)
	}
	return l
}

func (c *client) wait(ctx context.Context, rawURL string) error {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	if c.config.MaxQueueTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.MaxQueueTime)
		defer cancel()
	}

	if err := c.limiter(host).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", host, err)
	}
	return nil
}

func (c *client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if err := c.wait(ctx, url); err != nil {
		return nil, err
	}
	return c.inner.Get(ctx, url, headers)
}

func (c *client) PostForm(ctx context.Context, url string, headers map[string]string, form url.Values) ([]byte, error) {
	if err := c.wait(ctx, url); err != nil {
		return nil, err
	}
	return c.inner.PostForm(ctx, url, headers, form)
}

func (c *client) PostJSON(ctx context.Context, url string, headers map[string]string, payload interface{}) ([]byte, error) {
	if err := c.wait(ctx, url); err != nil {
		return nil, err
	}
	return c.inner.PostJSON(ctx, url, headers, payload)
}

func (c *client) Post(ctx context.Context, url string, headers map[string]string, contentType string, body []byte) ([]byte, error) {
	if err := c.wait(ctx, url); err != nil {
		return nil, err
	}
	return c.inner.Post(ctx, url, headers, contentType, body)
}
