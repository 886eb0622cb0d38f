package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simheat/pkg/errors"
)

// MinIOAPI is the subset of *minio.Client the artifact store uses.
type MinIOAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

type MinIOConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key"`
	SecretAccessKey string        `mapstructure:"secret_key"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	Region          string        `mapstructure:"region"`
	Bucket          string        `mapstructure:"bucket"`
	Prefix          string        `mapstructure:"prefix"`
	RetentionDays   int           `mapstructure:"retention_days"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

// MinIOClient owns the connection and the artifact bucket.
type MinIOClient struct {
	client MinIOAPI
	config *MinIOConfig
	logger logging.Logger
}

// NewMinIOClient connects, verifies reachability and makes sure the artifact
// bucket exists with its retention rule.
func NewMinIOClient(ctx context.Context, cfg *MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, errors.New(errors.ErrCodeStorageInvalidInput, "minio endpoint is required")
	}
	applyDefaults(cfg)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := client.ListBuckets(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to minio")
	}

	c, err := newClientWithAPI(ctx, client, cfg, log)
	if err != nil {
		return nil, err
	}
	c.logger.Info("MinIO client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

func newClientWithAPI(ctx context.Context, api MinIOAPI, cfg *MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	applyDefaults(cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &MinIOClient{client: api, config: cfg, logger: log.Named("minio")}
	if err := c.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	c.SetupLifecycleRules(ctx)
	return c, nil
}

func applyDefaults(cfg *MinIOConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "simheat-artifacts"
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = time.Hour
	}
}

func (c *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to check bucket existence")
	}
	if exists {
		return nil
	}
	if err := c.client.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageBucketMissing, fmt.Sprintf("failed to create bucket %s", c.config.Bucket))
	}
	c.logger.Info("Created bucket", logging.String("bucket", c.config.Bucket))
	return nil
}

// SetupLifecycleRules expires artifacts under the configured prefix after
// RetentionDays. A zero retention keeps artifacts forever. Failures are
// logged only; some S3 gateways reject lifecycle configuration.
func (c *MinIOClient) SetupLifecycleRules(ctx context.Context) {
	if c.config.RetentionDays <= 0 {
		return
	}
	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{
		{
			ID:         "simheat-artifact-retention",
			Status:     "Enabled",
			RuleFilter: lifecycle.Filter{Prefix: c.config.Prefix},
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(c.config.RetentionDays),
			},
		},
	}
	if err := c.client.SetBucketLifecycle(ctx, c.config.Bucket, cfg); err != nil {
		c.logger.Warn("Failed to set bucket lifecycle",
			logging.String("bucket", c.config.Bucket), logging.Err(err))
	}
}

func (c *MinIOClient) GetClient() MinIOAPI {
	return c.client
}

func (c *MinIOClient) Bucket() string {
	return c.config.Bucket
}

type HealthStatus struct {
	Healthy bool
	Latency time.Duration
	Error   string
}

// HealthCheck reports whether the endpoint answers and the bucket exists.
func (c *MinIOClient) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()
	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	status := &HealthStatus{Healthy: err == nil && exists, Latency: time.Since(start)}
	switch {
	case err != nil:
		status.Error = err.Error()
		return status, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "minio unreachable")
	case !exists:
		status.Error = fmt.Sprintf("bucket %s missing", c.config.Bucket)
		return status, ErrBucketNotFound
	}
	return status, nil
}

var ErrBucketNotFound = errors.New(errors.ErrCodeStorageBucketMissing, "bucket not found")

//Personal.AI order the ending
