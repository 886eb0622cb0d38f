package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HeatmapsClient calls the render endpoints.
type HeatmapsClient struct {
	client *Client
}

// Dataset is a report pair configured on the server.
type Dataset struct {
	Name       string  `json:"name"`
	Similarity string  `json:"similarity"`
	Pattern    string  `json:"pattern"`
	FigureSize float64 `json:"figure_size"`
	DPI        float64 `json:"dpi"`
	Output     string  `json:"output"`
	Title      string  `json:"title,omitempty"`
}

// ListDatasetsResponse is the body of GET /api/v1/datasets.
type ListDatasetsResponse struct {
	Datasets []Dataset `json:"datasets"`
	Total    int       `json:"total"`
}

// RenderResult describes a heatmap the server rendered for a dataset.
type RenderResult struct {
	Dataset   string        `json:"dataset"`
	Output    string        `json:"output"`
	Format    string        `json:"format"`
	Atoms     int           `json:"atoms"`
	Bytes     int           `json:"bytes"`
	Missing   int           `json:"missing"`
	Symmetric bool          `json:"symmetric"`
	ObjectKey string        `json:"object_key,omitempty"`
	URL       string        `json:"url,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// RenderOptions tune an upload render. Zero values take the server defaults.
type RenderOptions struct {
	Name     string
	Format   string
	Size     float64
	DPI      float64
	Rotation *float64
	Title    string
}

// Image is a rendered heatmap.
type Image struct {
	ContentType string
	Data        []byte
}

// ListDatasets returns the datasets the server renders by name.
func (h *HeatmapsClient) ListDatasets(ctx context.Context) (*ListDatasetsResponse, error) {
	var resp ListDatasetsResponse
	if err := h.client.get(ctx, "/api/v1/datasets", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RenderDataset asks the server to render a configured dataset to its
// configured output.
func (h *HeatmapsClient) RenderDataset(ctx context.Context, name string) (*RenderResult, error) {
	if name == "" {
		return nil, errInvalidArgument("dataset name is required")
	}
	var res RenderResult
	path := "/api/v1/datasets/" + url.PathEscape(name) + "/render"
	if err := h.client.post(ctx, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Render uploads a similarity report and a pattern report and returns the
// rendered image.
func (h *HeatmapsClient) Render(ctx context.Context, similarity, pattern []byte, opts RenderOptions) (*Image, error) {
	if len(similarity) == 0 || len(pattern) == 0 {
		return nil, errInvalidArgument("similarity and pattern reports are required")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, part := range []struct {
		field string
		data  []byte
	}{
		{"similarity", similarity},
		{"pattern", pattern},
	} {
		fw, err := w.CreateFormFile(part.field, part.field+".txt")
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(part.data); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	payload := buf.Bytes()

	path := "/api/v1/heatmaps"
	if q := opts.query(); len(q) > 0 {
		path += "?" + q.Encode()
	}
	data, header, err := h.client.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		contentType: w.FormDataContentType(),
		accept:      "image/png, image/svg+xml",
		body:        func() (io.Reader, error) { return bytes.NewReader(payload), nil },
	})
	if err != nil {
		return nil, err
	}
	return &Image{ContentType: header.Get("Content-Type"), Data: data}, nil
}

func (o RenderOptions) query() url.Values {
	q := url.Values{}
	if o.Name != "" {
		q.Set("name", o.Name)
	}
	if o.Format != "" {
		q.Set("format", o.Format)
	}
	if o.Size > 0 {
		q.Set("size", strconv.FormatFloat(o.Size, 'g', -1, 64))
	}
	if o.DPI > 0 {
		q.Set("dpi", strconv.FormatFloat(o.DPI, 'g', -1, 64))
	}
	if o.Rotation != nil {
		q.Set("rotation", strconv.FormatFloat(*o.Rotation, 'g', -1, 64))
	}
	if o.Title != "" {
		q.Set("title", o.Title)
	}
	return q
}

//Personal.AI order the ending
