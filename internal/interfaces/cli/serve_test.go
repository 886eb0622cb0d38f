package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simheat/internal/config"
	"github.com/turtacn/simheat/internal/interfaces/http/handlers"
	"github.com/turtacn/simheat/internal/testutil"
	"github.com/turtacn/simheat/pkg/client"
)

// serveConfig returns a config with one renderable dataset in dir.
func serveConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	ds := newWatchDataset(t, dir, "rh111")
	cfg := config.Default()
	cfg.Server.Mode = "test"
	cfg.Metrics.Namespace = "serve_test"
	cfg.Datasets = []config.DatasetConfig{{
		Name:       ds.Name,
		Similarity: ds.SimilarityPath,
		Pattern:    ds.PatternPath,
		FigureSize: ds.FigureSize,
		DPI:        ds.DPI,
		Output:     ds.Output,
	}}
	return cfg
}

func newTestHandler(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	rt, err := newRuntime(context.Background(), cfg, testutil.NewMockLogger(), runtimeOptions{metrics: true})
	require.NoError(t, err)
	t.Cleanup(rt.Close)

	h, cleanup, err := newAPIHandler(cfg, rt, testutil.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return h
}

func request(h http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewAPIHandler_Routes(t *testing.T) {
	h := newTestHandler(t, serveConfig(t, t.TempDir()))

	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/readyz").Code)

	w := request(h, http.MethodGet, "/api/v1/datasets")
	require.Equal(t, http.StatusOK, w.Code)
	var list handlers.ListDatasetsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "rh111", list.Datasets[0].Name)

	w = request(h, http.MethodPost, "/api/v1/datasets/rh111/render")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "serve_test_heatmaps_rendered_total")
}

func TestNewAPIHandler_MetricsDisabled(t *testing.T) {
	cfg := serveConfig(t, t.TempDir())
	cfg.Metrics.Enabled = false
	h := newTestHandler(t, cfg)

	assert.Equal(t, http.StatusNotFound, request(h, http.MethodGet, "/metrics").Code)
}

func TestNewAPIHandler_RenderRateLimit(t *testing.T) {
	cfg := serveConfig(t, t.TempDir())
	cfg.Server.RenderRate = 0.01
	cfg.Server.RenderBurst = 1
	h := newTestHandler(t, cfg)

	assert.Equal(t, http.StatusOK, request(h, http.MethodPost, "/api/v1/datasets/rh111/render").Code)
	assert.Equal(t, http.StatusTooManyRequests, request(h, http.MethodPost, "/api/v1/datasets/rh111/render").Code)
	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/api/v1/datasets").Code)
}

func TestNewAPIHandler_GoClient(t *testing.T) {
	cfg := serveConfig(t, t.TempDir())
	cfg.Server.APIKeys = []string{"k-123"}
	srv := httptest.NewServer(newTestHandler(t, cfg))
	defer srv.Close()

	c, err := client.NewClient(srv.URL, client.WithAPIKey("k-123"), client.WithRetryMax(0))
	require.NoError(t, err)
	ctx := context.Background()

	list, err := c.Heatmaps().ListDatasets(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)

	res, err := c.Heatmaps().RenderDataset(ctx, "rh111")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Atoms)
	assert.FileExists(t, res.Output)

	sim, err := os.ReadFile(cfg.Datasets[0].Similarity)
	require.NoError(t, err)
	pat, err := os.ReadFile(cfg.Datasets[0].Pattern)
	require.NoError(t, err)
	img, err := c.Heatmaps().Render(ctx, sim, pat, client.RenderOptions{Format: "svg", Size: 3, DPI: 50})
	require.NoError(t, err)
	assert.Contains(t, img.ContentType, "image/svg+xml")
	assert.Contains(t, string(img.Data), "<svg")

	_, err = c.Heatmaps().RenderDataset(ctx, "missing")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "PLT_008", apiErr.Code)

	anon, err := client.NewClient(srv.URL, client.WithRetryMax(0))
	require.NoError(t, err)
	_, err = anon.Heatmaps().ListDatasets(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())
}

func TestRunServe_StopsOnCancel(t *testing.T) {
	cfg := serveConfig(t, t.TempDir())
	cfg.Server.Port = 0
	cfg.Metrics.Enabled = false
	logger := testutil.NewMockLogger()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, &CLIContext{Config: cfg, Logger: logger}) }()

	require.Eventually(t, func() bool { return logger.HasMessage("info", "HTTP server listening") }, 5*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, logger.HasMessage("info", "HTTP server stopped"))
}

//Personal.AI order the ending
