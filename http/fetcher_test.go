package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	xhttp "github.com/ochanuco/x-clipper/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("fetches page HTML", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html><body>hello</body></html>"))
		}))
		defer srv.Close()

		f := xhttp.NewFetcher()
		defer f.Close()

		html, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>hello</body></html>", html)
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		f := xhttp.NewFetcher()
		defer f.Close()

		_, err := f.Fetch(context.Background(), srv.URL)
		require.Error(t, err)
		assert.Equal(t, int32(1), requests.Load())
	})

	t.Run("retries server errors until success", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requests.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte("recovered"))
		}))
		defer srv.Close()

		f := xhttp.NewFetcher()
		defer f.Close()

		html, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "recovered", html)
		assert.Equal(t, int32(2), requests.Load())
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		f := xhttp.NewFetcher(xhttp.WithAttempts(2))
		defer f.Close()

		_, err := f.Fetch(context.Background(), srv.URL)
		require.Error(t, err)
		assert.Equal(t, int32(2), requests.Load())
	})
}
