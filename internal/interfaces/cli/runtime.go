package cli

import (
	"context"
	"io"

	"github.com/turtacn/simheat/internal/application/plotting"
	"github.com/turtacn/simheat/internal/config"
	"github.com/turtacn/simheat/internal/infrastructure/database/redis"
	"github.com/turtacn/simheat/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simheat/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/simheat/internal/infrastructure/storage/minio"
	"github.com/turtacn/simheat/internal/interfaces/http/handlers"
)

// eventSource identifies this program in published event envelopes.
const eventSource = "simheat"

// runtime holds the plotting service and the optional backends it was built
// over. Close releases the backends in reverse order of creation.
type runtime struct {
	Service   plotting.Service
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector
	Checkers  []handlers.HealthChecker
	// Reports and Artifacts are nil unless the cache or storage is enabled.
	Reports   *redis.ReportCache
	Artifacts minio.ArtifactRepository

	deps    plotting.Dependencies
	closers []io.Closer
	logger  logging.Logger
}

type runtimeOptions struct {
	// metrics registers a collector even when nothing scrapes it.
	metrics bool
}

// newRuntime connects the backends enabled in cfg and builds the service. A
// backend that fails to connect aborts startup.
func newRuntime(ctx context.Context, cfg *config.Config, logger logging.Logger, opts runtimeOptions) (*runtime, error) {
	rt := &runtime{logger: logger}
	deps := plotting.Dependencies{Logger: logger}

	if opts.metrics && cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			Subsystem:            cfg.Metrics.Subsystem,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, err
		}
		rt.Collector = collector
		rt.Metrics = prometheus.NewAppMetrics(collector)
		deps.Metrics = rt.Metrics
	}

	if cfg.Cache.Enabled {
		client, err := redis.NewClient(ctx, &redis.RedisConfig{
			Addr:        cfg.Cache.Addr,
			Password:    cfg.Cache.Password,
			DB:          cfg.Cache.DB,
			DialTimeout: cfg.Cache.DialTimeout,
		}, logger)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, client)
		cache := redis.NewRedisCache(client, logger,
			redis.WithPrefix(cfg.Cache.KeyPrefix),
			redis.WithDefaultTTL(cfg.Cache.TTL))
		reports := redis.NewReportCache(cache, plotting.LayoutFromConfig(cfg.Report))
		deps.Cache = reports
		rt.Reports = reports
		rt.Checkers = append(rt.Checkers, handlers.NewChecker("redis", reports.Ping))
	}

	if cfg.Storage.Enabled {
		client, err := minio.NewMinIOClient(ctx, &minio.MinIOConfig{
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKey,
			SecretAccessKey: cfg.Storage.SecretKey,
			UseSSL:          cfg.Storage.UseSSL,
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			Prefix:          cfg.Storage.Prefix,
			RetentionDays:   cfg.Storage.RetentionDays,
			PresignExpiry:   cfg.Storage.PresignExpiry,
		}, logger)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Artifacts = minio.NewArtifactRepository(client, logger)
		deps.Store = rt.Artifacts
		rt.Checkers = append(rt.Checkers, handlers.NewChecker("minio", func(ctx context.Context) error {
			_, err := client.HealthCheck(ctx)
			return err
		}))
	}

	if cfg.Events.Enabled {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Events.Brokers,
			BatchTimeout: cfg.Events.BatchTimeout,
		}, logger)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, producer)
		deps.Events = kafka.NewRenderEventPublisher(producer, cfg.Events.Topic, eventSource)
	}

	svc, err := plotting.NewService(cfg, deps)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Service = svc
	rt.deps = deps
	return rt, nil
}

// Rebuild returns a service for cfg over the already connected backends.
// Backend settings in cfg are ignored until restart.
func (rt *runtime) Rebuild(cfg *config.Config) (plotting.Service, error) {
	return plotting.NewService(cfg, rt.deps)
}

// Close releases the backends. Errors are logged, not returned.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			rt.logger.Warn("Backend close failed", logging.Err(err))
		}
	}
	rt.closers = nil
}

//Personal.AI order the ending
