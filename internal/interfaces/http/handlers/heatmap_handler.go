package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/simheat/internal/application/plotting"
	"github.com/turtacn/simheat/internal/domain/heatmap"
	"github.com/turtacn/simheat/pkg/errors"
)

// DefaultUploadSize is the figure size, in inches, of uploaded renders that
// do not name one.
const DefaultUploadSize = 5.0

// HeatmapHandlerConfig tunes the upload endpoint.
type HeatmapHandlerConfig struct {
	DefaultFormat heatmap.Format
	// MaxReportBytes bounds each uploaded report.
	MaxReportBytes int64
}

// HeatmapHandler serves the dataset and upload render endpoints.
type HeatmapHandler struct {
	svc      plotting.Service
	datasets []plotting.Dataset
	cfg      HeatmapHandlerConfig
}

// NewHeatmapHandler creates a handler rendering with svc. datasets are the
// configured report pairs, addressable by name.
func NewHeatmapHandler(svc plotting.Service, datasets []plotting.Dataset, cfg HeatmapHandlerConfig) *HeatmapHandler {
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = heatmap.FormatPNG
	}
	if cfg.MaxReportBytes <= 0 {
		cfg.MaxReportBytes = 16 << 20
	}
	return &HeatmapHandler{svc: svc, datasets: datasets, cfg: cfg}
}

// ListDatasetsResponse is the body of GET /api/v1/datasets.
type ListDatasetsResponse struct {
	Datasets []plotting.Dataset `json:"datasets"`
	Total    int                `json:"total"`
}

// ListDatasets handles GET /api/v1/datasets.
func (h *HeatmapHandler) ListDatasets(c *gin.Context) {
	c.JSON(http.StatusOK, ListDatasetsResponse{Datasets: h.datasets, Total: len(h.datasets)})
}

// RenderDataset handles POST /api/v1/datasets/:name/render. The image is
// written where the dataset configuration says; the response describes it.
func (h *HeatmapHandler) RenderDataset(c *gin.Context) {
	name := c.Param("name")
	for _, ds := range h.datasets {
		if ds.Name != name {
			continue
		}
		res, err := h.svc.RenderDataset(c.Request.Context(), ds)
		if err != nil {
			writeAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}
	writeAppError(c, errors.Newf(errors.ErrCodeDatasetNotFound, "dataset %q is not configured", name))
}

// RenderUpload handles POST /api/v1/heatmaps: multipart "similarity" and
// "pattern" files in, image bytes out. Query parameters: format (png|svg),
// size (inches), dpi, rotation (degrees) and title.
func (h *HeatmapHandler) RenderUpload(c *gin.Context) {
	req, err := h.parseUpload(c)
	if err != nil {
		writeAppError(c, err)
		return
	}
	data, err := h.svc.RenderReports(c.Request.Context(), req)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.Data(http.StatusOK, req.Format.ContentType(), data)
}

func (h *HeatmapHandler) parseUpload(c *gin.Context) (*plotting.RenderRequest, error) {
	req := &plotting.RenderRequest{
		Name:       c.Query("name"),
		Format:     h.cfg.DefaultFormat,
		FigureSize: DefaultUploadSize,
		Title:      c.Query("title"),
	}
	if v := c.Query("format"); v != "" {
		f, err := heatmap.ParseFormat(v)
		if err != nil {
			return nil, err
		}
		req.Format = f
	}
	var err error
	if req.FigureSize, err = queryFloat(c, "size", req.FigureSize); err != nil {
		return nil, err
	}
	if req.DPI, err = queryFloat(c, "dpi", 0); err != nil {
		return nil, err
	}
	if _, ok := c.GetQuery("rotation"); ok {
		rot, err := queryFloat(c, "rotation", 0)
		if err != nil {
			return nil, err
		}
		req.Rotation = &rot
	}

	if req.Similarity, err = h.readPart(c, "similarity"); err != nil {
		return nil, err
	}
	if req.Pattern, err = h.readPart(c, "pattern"); err != nil {
		return nil, err
	}
	return req, nil
}

func (h *HeatmapHandler) readPart(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeBadRequest, "multipart file %q is required", field)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeReportReadFailed, "open %s upload", field)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.cfg.MaxReportBytes+1))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeReportReadFailed, "read %s upload", field)
	}
	if int64(len(data)) > h.cfg.MaxReportBytes {
		return nil, errors.Newf(errors.ErrCodeBadRequest, "%s report exceeds %d bytes", field, h.cfg.MaxReportBytes)
	}
	return data, nil
}

func queryFloat(c *gin.Context, key string, def float64) (float64, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Newf(errors.ErrCodeBadRequest, "query parameter %s=%q is not a number", key, v)
	}
	return f, nil
}

//Personal.AI order the ending
