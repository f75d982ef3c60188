package jsonplaceholder

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bissquit/incident-feed/internal/domain"
	"github.com/bissquit/incident-feed/internal/incidents"
	"github.com/bissquit/incident-feed/internal/pkg/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestSource(url string) *Source {
	return &Source{
		config:     Config{URL: url, Timeout: 5 * time.Second},
		httpClient: &http.Client{Timeout: 5 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

func TestNewSource_Defaults(t *testing.T) {
	source := NewSource(Config{})

	assert.Equal(t, DefaultURL, source.config.URL)
	assert.Equal(t, defaultTimeout, source.config.Timeout)
	assert.Equal(t, defaultRateLimit, source.config.RateLimit)
	assert.Equal(t, defaultBurst, source.config.Burst)
	assert.NotNil(t, source.httpClient)
	assert.NotNil(t, source.limiter)
}

func TestSource_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"userId": 1, "id": 1, "title": "Brute force on admin portal", "body": "Over 1000 failed logins", "tags": ["x"]},
			{"userId": 2, "id": 2, "title": "Malware in attachment", "body": "Quarantined", "assignee": "Unassigned"}
		]`))
	}))
	defer server.Close()

	raws, err := newTestSource(server.URL).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.RawIncident{
		{ID: 1, AuthorID: 1, Title: "Brute force on admin portal", Body: "Over 1000 failed logins"},
		{ID: 2, AuthorID: 2, Title: "Malware in attachment", Body: "Quarantined"},
	}, raws)
}

func TestSource_Fetch_EmptyArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	raws, err := newTestSource(server.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, raws)
	assert.NotNil(t, raws)
}

func TestSource_Fetch_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		name string
		code int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte("upstream says no"))
			}))
			defer server.Close()

			raws, err := newTestSource(server.URL).Fetch(context.Background())
			require.Error(t, err)
			assert.Nil(t, raws)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.code, statusErr.Code)
			assert.Equal(t, "upstream says no", statusErr.Body)
			assert.True(t, errors.Is(err, incidents.ErrFetchFailed))
		})
	}
}

func TestSource_Fetch_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"}`))
	}))
	defer server.Close()

	_, err := newTestSource(server.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, incidents.ErrFetchFailed)
	assert.Contains(t, err.Error(), "decode response")
}

func TestSource_Fetch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestSource(url).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, incidents.ErrFetchFailed)
}

func TestSource_Fetch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSource(server.URL).Fetch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, incidents.ErrFetchFailed)
}

func TestSource_Fetch_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	source := newTestSource(server.URL)
	source.limiter = rate.NewLimiter(0.001, 1) // Very slow rate

	_, err := source.Fetch(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = source.Fetch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, incidents.ErrFetchFailed)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestSource_Fetch_MalformedURL(t *testing.T) {
	_, err := newTestSource("http://[::1]:namedport/posts").Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, incidents.ErrFetchFailed)
	assert.Contains(t, err.Error(), "create request")
}

func TestSource_Fetch_LogsThroughContextLogger(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"userId": 1, "id": 1, "title": "t", "body": "b"}]`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)
	ctx = ctxlog.With(ctx, "request_id", "req-1")

	_, err := newTestSource(server.URL).Fetch(ctx)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "incidents fetched from source")
	assert.Contains(t, buf.String(), "request_id=req-1")
	assert.Contains(t, buf.String(), "count=1")
}
