package minio

import (
	"bytes"
	"context"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simheat/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeStorageObjectNotFound, "object not found")
	ErrInvalidRequest = errors.New(errors.ErrCodeStorageInvalidInput, "invalid artifact")
)

// ArtifactRepository stores rendered heatmaps.
type ArtifactRepository interface {
	Upload(ctx context.Context, a *Artifact) (*UploadResult, error)
	Stat(ctx context.Context, objectKey string) (*ObjectMetadata, error)
	List(ctx context.Context, dataset string) ([]*ObjectMetadata, error)
	Delete(ctx context.Context, objectKey string) error
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// Artifact is one encoded heatmap.
type Artifact struct {
	Dataset     string
	Format      string
	ContentType string
	Data        []byte
	Metadata    map[string]string
}

type UploadResult struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	VersionID  string
	URL        string
	UploadedAt time.Time
}

type ObjectMetadata struct {
	ObjectKey    string            `json:"object_key"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type minioRepository struct {
	client *MinIOClient
	logger logging.Logger
	now    func() time.Time
	newID  func() string
}

func NewArtifactRepository(client *MinIOClient, log logging.Logger) ArtifactRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &minioRepository{
		client: client,
		logger: log.Named("artifacts"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// objectKey lays artifacts out as <prefix><dataset>/<yyyy>/<mm>/<dd>/<uuid>.<format>.
func (r *minioRepository) objectKey(dataset, format string, at time.Time) string {
	return r.client.config.Prefix + path.Join(
		dataset,
		at.UTC().Format("2006/01/02"),
		r.newID()+"."+format,
	)
}

func (r *minioRepository) Upload(ctx context.Context, a *Artifact) (*UploadResult, error) {
	if a == nil || a.Dataset == "" || a.Format == "" || len(a.Data) == 0 {
		return nil, ErrInvalidRequest
	}
	now := r.now()
	key := r.objectKey(a.Dataset, a.Format, now)

	meta := map[string]string{"dataset": a.Dataset, "format": a.Format}
	for k, v := range a.Metadata {
		meta[k] = v
	}

	bucket := r.client.Bucket()
	info, err := r.client.GetClient().PutObject(ctx, bucket, key,
		bytes.NewReader(a.Data), int64(len(a.Data)),
		minio.PutObjectOptions{ContentType: a.ContentType, UserMetadata: meta})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUploadFailed, "upload failed").
			WithDetailf("bucket=%s key=%s", bucket, key)
	}

	result := &UploadResult{
		Bucket:     bucket,
		ObjectKey:  key,
		ETag:       info.ETag,
		Size:       info.Size,
		VersionID:  info.VersionID,
		UploadedAt: now,
	}
	if u, err := r.PresignedURL(ctx, key, 0); err == nil {
		result.URL = u
	} else {
		r.logger.Warn("Presign failed", logging.String("key", key), logging.Err(err))
	}

	r.logger.Info("Artifact uploaded",
		logging.String("dataset", a.Dataset),
		logging.String("key", key),
		logging.Int64("size", info.Size))
	return result, nil
}

func (r *minioRepository) Stat(ctx context.Context, objectKey string) (*ObjectMetadata, error) {
	if objectKey == "" {
		return nil, ErrInvalidRequest
	}
	info, err := r.client.GetClient().StatObject(ctx, r.client.Bucket(), objectKey, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "stat failed")
	}
	return toMetadata(info), nil
}

// List returns the artifacts stored for dataset, newest first.
func (r *minioRepository) List(ctx context.Context, dataset string) ([]*ObjectMetadata, error) {
	prefix := r.client.config.Prefix
	if dataset != "" {
		prefix += strings.TrimSuffix(dataset, "/") + "/"
	}
	var out []*ObjectMetadata
	for obj := range r.client.GetClient().ListObjects(ctx, r.client.Bucket(), minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeServiceUnavailable, "list failed")
		}
		out = append(out, toMetadata(obj))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastModified.After(out[j].LastModified)
	})
	return out, nil
}

func (r *minioRepository) Delete(ctx context.Context, objectKey string) error {
	if objectKey == "" {
		return ErrInvalidRequest
	}
	if err := r.client.GetClient().RemoveObject(ctx, r.client.Bucket(), objectKey, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "delete failed")
	}
	return nil
}

func (r *minioRepository) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if expiry == 0 {
		expiry = r.client.config.PresignExpiry
	}
	u, err := r.client.GetClient().PresignedGetObject(ctx, r.client.Bucket(), objectKey, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeServiceUnavailable, "presign failed")
	}
	return u.String(), nil
}

func toMetadata(info minio.ObjectInfo) *ObjectMetadata {
	return &ObjectMetadata{
		ObjectKey:    info.Key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
		Metadata:     info.UserMetadata,
	}
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

//Personal.AI order the ending
