package ratelimit_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinjernot/wg-sub000/internal/logger"
	"github.com/jinjernot/wg-sub000/internal/mocks"
	"github.com/jinjernot/wg-sub000/internal/ratelimit"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestNewHTTPClient_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inner := mocks.NewMockHTTPClient(ctrl)
	c := ratelimit.NewHTTPClient(inner, ratelimit.Config{})
	assert.Same(t, inner, c)
}

func TestHTTPClient_ThrottlesPerHost(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inner := mocks.NewMockHTTPClient(ctrl)
	c := ratelimit.NewHTTPClient(inner, ratelimit.Config{
		RequestsPerSecond: 0.01,
		Burst:             1,
		MaxQueueTime:      20 * time.Millisecond,
	})
	ctx := context.Background()

	inner.EXPECT().Get(ctx, "https://api.noones.com/trade/list", nil).Return([]byte("ok"), nil)
	body, err := c.Get(ctx, "https://api.noones.com/trade/list", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), body)

	// the host has no tokens left, the request is not sent
	_, err = c.Post(ctx, "https://api.noones.com/trade-chat/post", nil, "application/json", []byte("{}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.noones.com")

	inner.EXPECT().PostJSON(ctx, "https://api.paxful.com/trade/list", nil, gomock.Any()).Return([]byte("ok"), nil)
	_, err = c.PostJSON(ctx, "https://api.paxful.com/trade/list", nil, map[string]int{"page": 1})
	require.NoError(t, err)
}

func TestHTTPClient_CanceledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inner := mocks.NewMockHTTPClient(ctrl)
	c := ratelimit.NewHTTPClient(inner, ratelimit.Config{RequestsPerSecond: 1, Burst: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.PostForm(ctx, "https://auth.noones.com/oauth2/token", nil, nil)
	assert.Error(t, err)
}
