package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awardrobe/pricetracker/internal/apperr"
	"github.com/awardrobe/pricetracker/internal/config"
	"github.com/awardrobe/pricetracker/internal/fetch"
)

func newFetcher(t *testing.T, cfg config.Fetch) *fetch.HTTPFetcher {
	t.Helper()
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	f, err := fetch.New(cfg)
	require.NoError(t, err)
	return f
}

func TestFetch(t *testing.T) {
	t.Run("Should return the raw body on success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			w.WriteHeader(http.StatusOK)
			//nolint:errcheck
			w.Write([]byte(`{"status":"ok"}`))
		}))
		defer server.Close()

		f := newFetcher(t, config.Fetch{UserAgent: "test-agent"})
		res, err := f.Fetch(context.Background(), server.URL, fetch.Options{})

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.JSONEq(t, `{"status":"ok"}`, string(res.Body))
	})

	t.Run("Should not fail on malformed bodies", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			//nolint:errcheck
			w.Write([]byte(`{not json`))
		}))
		defer server.Close()

		f := newFetcher(t, config.Fetch{})
		res, err := f.Fetch(context.Background(), server.URL, fetch.Options{})

		require.NoError(t, err)
		assert.Equal(t, `{not json`, string(res.Body))
	})

	t.Run("Should treat non-2xx as a network error with status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		f := newFetcher(t, config.Fetch{})
		_, err := f.Fetch(context.Background(), server.URL, fetch.Options{})

		var netErr *apperr.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, http.StatusTooManyRequests, netErr.StatusCode)
		assert.Equal(t, server.URL, netErr.URL)
		assert.True(t, apperr.IsRetryable(err))
	})

	t.Run("Should time out slow upstreams", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		f := newFetcher(t, config.Fetch{})
		_, err := f.Fetch(context.Background(), server.URL, fetch.Options{Timeout: 50 * time.Millisecond})

		var netErr *apperr.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Zero(t, netErr.StatusCode)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestFetchWithProxy(t *testing.T) {
	t.Run("Should fail closed without a proxy pool", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))
		defer server.Close()

		f := newFetcher(t, config.Fetch{})
		_, err := f.Fetch(context.Background(), server.URL+"/secret-path", fetch.Options{UseProxy: true})

		var netErr *apperr.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.ErrorIs(t, err, fetch.ErrNoProxy)
		assert.Empty(t, netErr.URL)
		assert.NotContains(t, err.Error(), "secret-path")
		assert.Zero(t, hits.Load(), "request must not fall back to a direct connection")
	})

	t.Run("Should rotate across configured proxies", func(t *testing.T) {
		var hitsA, hitsB atomic.Int32
		proxyA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "store.invalid", r.URL.Host)
			hitsA.Add(1)
		}))
		defer proxyA.Close()
		proxyB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hitsB.Add(1)
		}))
		defer proxyB.Close()

		f := newFetcher(t, config.Fetch{ProxyURLs: []string{proxyA.URL, proxyB.URL}})
		for range 4 {
			_, err := f.Fetch(context.Background(), "http://store.invalid/api/products", fetch.Options{UseProxy: true})
			require.NoError(t, err)
		}

		assert.Equal(t, int32(2), hitsA.Load())
		assert.Equal(t, int32(2), hitsB.Load())
	})

	t.Run("Should reject proxy urls without host", func(t *testing.T) {
		_, err := fetch.New(config.Fetch{ProxyURLs: []string{"not-a-url"}})
		assert.Error(t, err)
	})
}
