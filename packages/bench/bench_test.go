package bench

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curlkit/curlkit/packages/client"
)

func benchClient(t *testing.T, base string) *client.Client {
	t.Helper()
	c, err := client.New(client.WithDefaults(&client.Options{Base: base}))
	require.NoError(t, err)
	return c
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, (&Config{Method: "GET", Requests: 1}).Validate())
	assert.Error(t, (&Config{Requests: 1}).Validate())
	assert.Error(t, (&Config{Method: "GET", Requests: 0}).Validate())
	assert.Error(t, (&Config{Method: "GET", Requests: 1, Concurrency: -1}).Validate())
}

func TestRunner_Run(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	runner, err := NewRunner(benchClient(t, server.URL), Config{
		Method:      "GET",
		Path:        "/",
		Requests:    20,
		Concurrency: 4,
	})
	require.NoError(t, err)

	result, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(20), hits.Load())
	assert.Equal(t, int64(20), result.Requests)
	assert.Equal(t, int64(20), result.Success)
	assert.Equal(t, int64(0), result.Errors)
	assert.Greater(t, result.RPS, float64(0))
	assert.LessOrEqual(t, result.P50, result.P99)
	assert.LessOrEqual(t, result.Min, result.Max)
}

func TestRunner_HTTPErrorsCounted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	runner, err := NewRunner(benchClient(t, server.URL), Config{
		Method:   "GET",
		Path:     "/",
		Requests: 5,
	})
	require.NoError(t, err)

	result, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Requests)
	assert.Equal(t, int64(5), result.Errors)
	assert.Equal(t, float64(1), result.ErrorRate())
}

func TestRunner_Cancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	runner, err := NewRunner(benchClient(t, server.URL), Config{
		Method:      "GET",
		Path:        "/",
		Requests:    1000,
		Concurrency: 2,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := runner.Run(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, result.Requests, int64(1000))
}

func TestRunner_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	runner, err := NewRunner(benchClient(t, server.URL), Config{
		Method:   "GET",
		Path:     "/",
		Requests: 5,
		RPS:      100,
	})
	require.NoError(t, err)

	start := time.Now()
	result, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Requests)
	// 5 requests at 100 rps needs at least ~40ms of pacing.
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}
