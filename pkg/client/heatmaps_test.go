package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simheat/pkg/errors"
)

func TestHeatmapsClient_ListDatasets(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/datasets", r.URL.Path)
		_, _ = w.Write([]byte(`{"datasets":[{"name":"rh111","similarity":"s.txt","pattern":"p.txt","figure_size":20,"dpi":100,"output":"rh111.png"}],"total":1}`))
	})

	resp, err := c.Heatmaps().ListDatasets(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Datasets, 1)
	assert.Equal(t, Dataset{
		Name:       "rh111",
		Similarity: "s.txt",
		Pattern:    "p.txt",
		FigureSize: 20,
		DPI:        100,
		Output:     "rh111.png",
	}, resp.Datasets[0])
}

func TestHeatmapsClient_RenderDataset(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/datasets/rh%20111/render", r.URL.EscapedPath())
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"dataset":   "rh 111",
			"output":    "out/rh111.png",
			"format":    "png",
			"atoms":     42,
			"bytes":     1024,
			"symmetric": true,
		})
	})

	res, err := c.Heatmaps().RenderDataset(context.Background(), "rh 111")
	require.NoError(t, err)
	assert.Equal(t, "rh 111", res.Dataset)
	assert.Equal(t, 42, res.Atoms)
	assert.Equal(t, "png", res.Format)
	assert.True(t, res.Symmetric)

	_, err = c.Heatmaps().RenderDataset(context.Background(), "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestHeatmapsClient_Render(t *testing.T) {
	t.Parallel()
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/api/v1/heatmaps", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "svg", q.Get("format"))
		assert.Equal(t, "2.5", q.Get("size"))
		assert.Equal(t, "0", q.Get("rotation"))
		assert.Equal(t, "RH111", q.Get("title"))
		assert.Empty(t, q.Get("dpi"))

		for field, want := range map[string]string{"similarity": "sim-data", "pattern": "pat-data"} {
			f, _, err := r.FormFile(field)
			if !assert.NoError(t, err) {
				continue
			}
			data, _ := io.ReadAll(f)
			assert.Equal(t, want, string(data))
		}
		// First attempt fails to check that the multipart body survives a retry.
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte("<svg/>"))
	})

	rot := 0.0
	img, err := c.Heatmaps().Render(context.Background(), []byte("sim-data"), []byte("pat-data"), RenderOptions{
		Format:   "svg",
		Size:     2.5,
		Rotation: &rot,
		Title:    "RH111",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "image/svg+xml", img.ContentType)
	assert.Equal(t, "<svg/>", string(img.Data))
}

func TestHeatmapsClient_RenderRequiresReports(t *testing.T) {
	t.Parallel()
	c, err := NewClient("http://localhost")
	require.NoError(t, err)
	_, err = c.Heatmaps().Render(context.Background(), nil, []byte("p"), RenderOptions{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestRenderOptions_Query(t *testing.T) {
	t.Parallel()
	assert.Empty(t, RenderOptions{}.query())

	q := RenderOptions{Name: "adhoc", DPI: 72}.query()
	assert.Equal(t, "adhoc", q.Get("name"))
	assert.Equal(t, "72", q.Get("dpi"))
}

//Personal.AI order the ending
