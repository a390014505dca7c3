package adapter_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var fastRetry = adapter.HTTPRetryConfig{
	MaxRetries:      2,
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
}

func TestHTTPClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	c := adapter.NewHTTPClient(5*time.Second, fastRetry)
	body, err := c.Get(context.Background(), srv.URL, map[string]string{"Authorization": "Bearer abc"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success"}`, string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClient_UnauthorizedIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("token expired"))
	}))
	defer srv.Close()

	c := adapter.NewHTTPClient(5*time.Second, fastRetry)
	_, err := c.PostJSON(context.Background(), srv.URL, nil, map[string]string{"hash": "abc"})

	require.Error(t, err)
	assert.True(t, adapter.IsUnauthorized(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPClient_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := adapter.NewHTTPClient(5*time.Second, fastRetry)
	_, err := c.Get(context.Background(), srv.URL, nil)

	require.Error(t, err)
	assert.False(t, adapter.IsUnauthorized(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClient_PostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		values, err := url.ParseQuery(string(raw))
		assert.NoError(t, err)
		assert.Equal(t, "client_credentials", values.Get("grant_type"))
		_, _ = w.Write([]byte(`{"access_token":"t"}`))
	}))
	defer srv.Close()

	c := adapter.NewHTTPClient(5*time.Second, fastRetry)
	body, err := c.PostForm(context.Background(), srv.URL, nil, url.Values{"grant_type": {"client_credentials"}})

	require.NoError(t, err)
	assert.Contains(t, string(body), "access_token")
}
