package client

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

	"github.com/turtacn/simheat/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithRetryWait(time.Millisecond, 2*time.Millisecond)}, opts...)
	c, err := NewClient(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"http", "http://localhost:8080", false},
		{"https with slash", "https://heatmaps.example.com/", false},
		{"empty", "", true},
		{"bad scheme", "ftp://example.com", true},
		{"unparseable", "http://[::1", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := NewClient(tt.baseURL)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
				return
			}
			require.NoError(t, err)
			assert.NotContains(t, c.baseURL[len(c.baseURL)-1:], "/")
		})
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()
	hc := &http.Client{Timeout: time.Second}
	c, err := NewClient("http://localhost",
		WithAPIKey("k1"),
		WithHTTPClient(hc),
		WithRetryMax(7),
		WithRetryWait(time.Second, 2*time.Second),
		WithUserAgent("custom/1"),
		WithLogger(nil),
	)
	require.NoError(t, err)
	assert.Equal(t, "k1", c.apiKey)
	assert.Same(t, hc, c.httpClient)
	assert.Equal(t, 7, c.retryMax)
	assert.Equal(t, time.Second, c.retryWaitMin)
	assert.Equal(t, 2*time.Second, c.retryWaitMax)
	assert.Equal(t, "custom/1", c.userAgent)
	assert.NotNil(t, c.logger)

	c, err = NewClient("http://localhost", WithRetryMax(-1), WithRetryWait(time.Second, time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 3, c.retryMax)
	assert.Equal(t, 5*time.Second, c.retryWaitMax)
}

func TestClient_Headers(t *testing.T) {
	t.Parallel()
	headers := make(chan http.Header, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"datasets":[],"total":0}`))
	}, WithAPIKey("secret"))

	_, err := c.Heatmaps().ListDatasets(context.Background())
	require.NoError(t, err)
	got := <-headers
	assert.Equal(t, "secret", got.Get("X-API-Key"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Contains(t, got.Get("User-Agent"), "simheat-go-client/")
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestClient_APIError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":       "PLT_008",
			"message":    "dataset \"nope\" is not configured",
			"request_id": "req-1",
		})
	})

	_, err := c.Heatmaps().RenderDataset(context.Background(), "nope")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.False(t, apiErr.IsServerError())
	assert.Equal(t, "PLT_008", apiErr.Code)
	assert.Equal(t, "req-1", apiErr.RequestID)
	assert.Contains(t, apiErr.Error(), "HTTP 404")
}

func TestClient_NonJSONError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("nope"))
	})

	_, err := c.Heatmaps().ListDatasets(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())
	assert.Equal(t, "nope", apiErr.Message)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"datasets":[{"name":"rh111"}],"total":1}`))
	})

	resp, err := c.Heatmaps().ListDatasets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterRetryMax(t *testing.T) {
	t.Parallel()
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, WithRetryMax(1))

	_, err := c.Heatmaps().ListDatasets(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.Heatmaps().ListDatasets(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_ContextCancelled(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithRetryWait(time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Heatmaps().ListDatasets(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCalculateBackoff(t *testing.T) {
	t.Parallel()
	c, err := NewClient("http://localhost", WithRetryWait(100*time.Millisecond, 300*time.Millisecond))
	require.NoError(t, err)

	b1 := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, b1, 100*time.Millisecond)
	assert.Less(t, b1, 125*time.Millisecond)

	b5 := c.calculateBackoff(5)
	assert.GreaterOrEqual(t, b5, 300*time.Millisecond)
	assert.Less(t, b5, 375*time.Millisecond)
}

//Personal.AI order the ending
