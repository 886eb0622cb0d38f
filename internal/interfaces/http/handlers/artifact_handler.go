package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simheat/internal/infrastructure/storage/minio"
)

// ArtifactLister reads back the heatmaps kept in object storage.
type ArtifactLister interface {
	List(ctx context.Context, dataset string) ([]*minio.ObjectMetadata, error)
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// ArtifactHandler serves the stored renders of a dataset.
type ArtifactHandler struct {
	store  ArtifactLister
	logger logging.Logger
}

func NewArtifactHandler(store ArtifactLister, logger logging.Logger) *ArtifactHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ArtifactHandler{store: store, logger: logger}
}

// ArtifactResponse describes one stored heatmap.
type ArtifactResponse struct {
	ObjectKey    string    `json:"object_key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url,omitempty"`
}

// ListArtifactsResponse is the body of GET /api/v1/datasets/:name/artifacts.
type ListArtifactsResponse struct {
	Dataset   string             `json:"dataset"`
	Artifacts []ArtifactResponse `json:"artifacts"`
	Total     int                `json:"total"`
}

// ListArtifacts handles GET /api/v1/datasets/:name/artifacts, newest first.
// Each entry carries a presigned download URL when one can be issued.
func (h *ArtifactHandler) ListArtifacts(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")
	objs, err := h.store.List(ctx, name)
	if err != nil {
		writeAppError(c, err)
		return
	}

	resp := ListArtifactsResponse{Dataset: name, Artifacts: make([]ArtifactResponse, 0, len(objs))}
	for _, o := range objs {
		a := ArtifactResponse{
			ObjectKey:    o.ObjectKey,
			Size:         o.Size,
			ContentType:  o.ContentType,
			LastModified: o.LastModified,
		}
		if u, err := h.store.PresignedURL(ctx, o.ObjectKey, 0); err == nil {
			a.URL = u
		} else {
			h.logger.Warn("Presign failed", logging.String("key", o.ObjectKey), logging.Err(err))
		}
		resp.Artifacts = append(resp.Artifacts, a)
	}
	resp.Total = len(resp.Artifacts)
	c.JSON(http.StatusOK, resp)
}

//Personal.AI order the ending
