package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/logger"
)

// authorized runs call with a bearer token. A 401 invalidates the cached
// token and the call is retried once with a fresh one.
func (c *client) authorized(ctx context.Context, account domain.Account, call func(headers map[string]string) ([]byte, error)) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.token(ctx, account)
		if err != nil {
			return nil, err
		}

		body, err := call(map[string]string{"Authorization": "Bearer " + token})
		if err == nil {
			return body, nil
		}
		if !adapter.IsUnauthorized(err) {
			return nil, err
		}

		logger.WarnCtx(ctx, "Marketplace rejected token, refreshing",
			zap.String("account", account.Name),
			zap.Int("attempt", attempt+1))
		c.tokens.Invalidate(account.Name)
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, lastErr)
}

// token returns the cached token for the account or fetches a new one
func (c *client) token(ctx context.Context, account domain.Account) (string, error) {
	if token, ok := c.tokens.Get(account.Name); ok {
		return token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {account.ClientID},
		"client_secret": {account.ClientSecret},
	}
	body, err := c.httpClient.PostForm(ctx, account.TokenURL, nil, form)
	if err != nil {
		var statusErr *adapter.HTTPStatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == 400 || statusErr.StatusCode == 401) {
			return "", fmt.Errorf("%w: token request rejected: %v", domain.ErrUnauthorized, err)
		}
		return "", fmt.Errorf("failed to fetch token: %w", err)
	}

	var resp tokenResponse
	if err := c.json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to decode token response: %v", domain.ErrUnexpectedResponse, err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", domain.ErrUnauthorized)
	}

	ttl, cacheable := c.tokenTTL(resp)
	if !cacheable {
		logger.WarnCtx(ctx, "Marketplace token expires within the safety margin, not caching",
			zap.String("account", account.Name))
		return resp.AccessToken, nil
	}
	c.tokens.Set(account.Name, resp.AccessToken, ttl)
	logger.DebugCtx(ctx, "Fetched marketplace token", zap.String("account", account.Name), zap.Duration("ttl", ttl))
	return resp.AccessToken, nil
}

// tokenTTL caps the configured TTL by the token's own expiry minus the safety margin.
// The expiry comes from the JWT exp claim, or expires_in for opaque tokens.
// It returns false when the token is already inside the safety margin.
func (c *client) tokenTTL(resp tokenResponse) (time.Duration, bool) {
	ttl := c.config.TokenTTL

	var expiresAt time.Time
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.AccessToken, &claims); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	} else if resp.ExpiresIn > 0 {
		expiresAt = c.clock.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	if !expiresAt.IsZero() {
		remaining := expiresAt.Sub(c.clock.Now()) - c.config.SafetyMargin
		if remaining <= 0 {
			return 0, false
		}
		if ttl <= 0 || remaining < ttl {
			ttl = remaining
		}
	}
	return ttl, true
}
