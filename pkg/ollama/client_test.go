package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, srv *httptest.Server) (*Client, *[]time.Duration) {
	t.Helper()

	c, err := NewClient(Config{BaseURL: srv.URL, Model: "test-model", HTTPClient: srv.Client()})
	require.NoError(t, err)

	var waits []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return c, &waits
}

func TestGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "hello", req.Prompt)
		assert.False(t, req.Stream)

		_ = json.NewEncoder(w).Encode(generateResponse{Response: "world"})
	}))
	defer srv.Close()

	c, waits := newTestClient(t, srv)

	out, err := c.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "world", out)
	assert.Empty(t, *waits)
}

func TestGenerateRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "{}"})
	}))
	defer srv.Close()

	c, waits := newTestClient(t, srv)

	out, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{defaultRetryDelay, defaultRetryDelay}, *waits)
}

func TestGenerateExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c, waits := newTestClient(t, srv)

	_, err := c.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attempt 3/3")
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, *waits, 2)
}

func TestNewClientAcceptsEndpointURL(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://localhost:11434/api/generate"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", c.baseURL)
	assert.Equal(t, defaultModel, c.Model())

	_, err = NewClient(Config{BaseURL: "localhost:11434"})
	assert.Error(t, err)
}
