package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poi-server/utils/errors"
)

// newFastOverpass removes the retry delays so failure paths run quickly.
func newFastOverpass(endpoints ...string) *OverpassService {
	s := NewOverpassService(endpoints)
	s.backoff = []time.Duration{0, 0, 0}
	return s
}

func overpassOK(t *testing.T, hits *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		require.NoError(t, r.ParseForm())
		assert.NotEmpty(t, r.PostForm.Get("data"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"elements":[{"type":"node","id":7,"lat":1.5,"lon":2.5,"tags":{"name":"Spot"}}]}`))
	}))
}

func TestFetchElementsSuccess(t *testing.T) {
	var hits int32
	server := overpassOK(t, &hits)
	defer server.Close()

	s := newFastOverpass(server.URL)
	elements, err := s.FetchElements(context.Background(), "[out:json];")

	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, int64(7), elements[0].ID)
	assert.Equal(t, "Spot", elements[0].Tags["name"])
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetchElementsFallsOverToSecondary(t *testing.T) {
	var primaryHits, secondaryHits int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&primaryHits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer primary.Close()
	secondary := overpassOK(t, &secondaryHits)
	defer secondary.Close()

	s := newFastOverpass(primary.URL, secondary.URL)
	elements, err := s.FetchElements(context.Background(), "[out:json];")

	require.NoError(t, err)
	assert.Len(t, elements, 1)
	// Primary exhausts its whole retry budget before fallover.
	assert.Equal(t, int32(3), atomic.LoadInt32(&primaryHits))
	assert.Equal(t, int32(1), atomic.LoadInt32(&secondaryHits))
}

func TestFetchElementsRetriesTransientStatus(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"elements":[]}`))
	}))
	defer server.Close()

	s := newFastOverpass(server.URL)
	elements, err := s.FetchElements(context.Background(), "[out:json];")

	require.NoError(t, err)
	assert.Empty(t, elements)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestFetchElementsFatalStatusAbortsImmediately(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("parse error: unexpected token"))
	}))
	defer server.Close()

	s := newFastOverpass(server.URL)
	_, err := s.FetchElements(context.Background(), "bogus")

	require.Error(t, err)
	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok)
	assert.Equal(t, "UPSTREAM_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Details, "parse error")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "fatal status must not be retried")
}

func TestFetchElementsAllEndpointsExhausted(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	s := newFastOverpass(down.URL, down.URL)
	_, err := s.FetchElements(context.Background(), "[out:json];")

	assert.Equal(t, errors.ErrUpstreamExhausted, err)
}

func TestFetchElementsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newFastOverpass("http://127.0.0.1:0")
	_, err := s.FetchElements(ctx, "[out:json];")
	require.Error(t, err)
}

func TestRetryableStatus(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504, 599} {
		assert.True(t, retryableStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 204, 301, 400, 401, 403, 404} {
		assert.False(t, retryableStatus(code), "status %d", code)
	}
}
