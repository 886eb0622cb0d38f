package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/turtacn/simheat/internal/application/plotting"
	"github.com/turtacn/simheat/internal/config"
	"github.com/turtacn/simheat/internal/domain/heatmap"
	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/simheat/internal/interfaces/http"
	"github.com/turtacn/simheat/internal/interfaces/http/handlers"
	"github.com/turtacn/simheat/internal/interfaces/http/middleware"
)

// limiterCleanup is how often idle rate limit buckets are dropped.
const limiterCleanup = 5 * time.Minute

// NewServeCmd creates the serve command, which exposes rendering over HTTP.
func NewServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API, health checks and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if port != 0 {
				cliCtx.Config.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cliCtx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (0 uses server.port)")
	return cmd
}

func runServe(ctx context.Context, cliCtx *CLIContext) error {
	cfg := cliCtx.Config
	logger := cliCtx.Logger

	rt, err := newRuntime(ctx, cfg, logger, runtimeOptions{metrics: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	handler, cleanup, err := newAPIHandler(cfg, rt, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := httpapi.NewServer(cfg.Server, handler, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("Shutdown signal received")
	if err := server.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

// newAPIHandler assembles the gin engine over rt. cleanup stops the rate
// limiter.
func newAPIHandler(cfg *config.Config, rt *runtime, logger logging.Logger) (http.Handler, func(), error) {
	gin.SetMode(cfg.Server.Mode)

	format, err := heatmap.ParseFormat(cfg.Render.Format)
	if err != nil {
		return nil, nil, err
	}
	heatmaps := handlers.NewHeatmapHandler(rt.Service, plotting.DatasetsFromConfig(cfg), handlers.HeatmapHandlerConfig{
		DefaultFormat: format,
	})
	routerCfg := httpapi.RouterConfig{
		HealthHandler:    handlers.NewHealthHandler(Version, rt.Checkers...),
		HeatmapHandler:   heatmaps,
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		APIKeys:          cfg.Server.APIKeys,
		MaxBodySize:      cfg.Server.MaxBodySize,
		Logger:           logger,
		Metrics:          rt.Metrics,
		MetricsCollector: rt.Collector,
		MetricsPath:      cfg.Metrics.Path,
	}

	if rt.Artifacts != nil {
		routerCfg.ArtifactHandler = handlers.NewArtifactHandler(rt.Artifacts, logger)
	}

	cleanup := func() {}
	if cfg.Server.RenderRate > 0 {
		limiter := middleware.NewTokenBucketLimiter(cfg.Server.RenderRate, cfg.Server.RenderBurst, limiterCleanup)
		routerCfg.RenderLimiter = limiter
		cleanup = limiter.Stop
	}
	return httpapi.NewRouter(routerCfg), cleanup, nil
}

//Personal.AI order the ending
