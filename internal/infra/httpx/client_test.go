package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testClient() *http.Client {
	return NewClient(Config{Timeout: 2 * time.Second, RetryMax: 0, RetryWaitMax: 10 * time.Millisecond},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}

func TestDoReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	body, err := Do(testClient(), NewBreaker("test", BreakerConfig{}), newRequest(t, server.URL))
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))
}

func TestDoClassifiesClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	cb := NewBreaker("test", BreakerConfig{})
	for i := 0; i < 10; i++ {
		_, err := Do(testClient(), cb, newRequest(t, server.URL))
		require.Error(t, err)
		require.True(t, IsStatus(err, http.StatusNotFound))
	}
}

func TestDoOpensBreakerOnServerErrors(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cb := NewBreaker("flaky", BreakerConfig{})
	client := testClient()
	for i := 0; i < 6; i++ {
		_, err := Do(client, cb, newRequest(t, server.URL))
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrCircuitOpen)
	}

	_, err := Do(client, cb, newRequest(t, server.URL))
	require.ErrorIs(t, err, ErrCircuitOpen)
	require.Equal(t, 6, hits)
}
