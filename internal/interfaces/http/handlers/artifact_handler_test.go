package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simheat/internal/infrastructure/storage/minio"
	"github.com/turtacn/simheat/internal/testutil"
	pkgerrors "github.com/turtacn/simheat/pkg/errors"
)

type mockArtifacts struct {
	mock.Mock
}

func (m *mockArtifacts) List(ctx context.Context, dataset string) ([]*minio.ObjectMetadata, error) {
	args := m.Called(ctx, dataset)
	if r := args.Get(0); r != nil {
		return r.([]*minio.ObjectMetadata), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockArtifacts) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

func newArtifactEngine(h *ArtifactHandler) *gin.Engine {
	r := gin.New()
	r.GET("/api/v1/datasets/:name/artifacts", h.ListArtifacts)
	return r
}

func TestArtifactHandler_ListArtifacts(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &mockArtifacts{}
	store.On("List", mock.Anything, "rh111").Return([]*minio.ObjectMetadata{
		{ObjectKey: "heatmaps/rh111/2026/03/01/b.png", Size: 20, ContentType: "image/png", LastModified: at},
		{ObjectKey: "heatmaps/rh111/2026/02/28/a.png", Size: 10, ContentType: "image/png", LastModified: at.Add(-time.Hour)},
	}, nil)
	store.On("PresignedURL", mock.Anything, "heatmaps/rh111/2026/03/01/b.png", time.Duration(0)).Return("http://minio/b", nil)
	store.On("PresignedURL", mock.Anything, "heatmaps/rh111/2026/02/28/a.png", time.Duration(0)).Return("", errors.New("no creds"))
	logger := testutil.NewMockLogger()

	w := httptest.NewRecorder()
	newArtifactEngine(NewArtifactHandler(store, logger)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/datasets/rh111/artifacts", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp ListArtifactsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rh111", resp.Dataset)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "http://minio/b", resp.Artifacts[0].URL)
	assert.Equal(t, int64(20), resp.Artifacts[0].Size)
	assert.True(t, at.Equal(resp.Artifacts[0].LastModified))
	assert.Empty(t, resp.Artifacts[1].URL)
	assert.True(t, logger.HasMessage("warn", "Presign failed"))
	store.AssertExpectations(t)
}

func TestArtifactHandler_EmptyAndErrors(t *testing.T) {
	t.Parallel()
	store := &mockArtifacts{}
	store.On("List", mock.Anything, "co1121").Return([]*minio.ObjectMetadata{}, nil)
	store.On("List", mock.Anything, "down").Return(nil,
		pkgerrors.Wrap(errors.New("dial tcp: refused"), pkgerrors.ErrCodeServiceUnavailable, "list failed"))
	r := newArtifactEngine(NewArtifactHandler(store, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/datasets/co1121/artifacts", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"dataset":"co1121","artifacts":[],"total":0}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/datasets/down/artifacts", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, string(pkgerrors.ErrCodeServiceUnavailable), resp.Code)
	assert.NotContains(t, resp.Message, "dial tcp")
}

//Personal.AI order the ending
