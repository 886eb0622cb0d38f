package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/simheat/internal/application/plotting"
	"github.com/turtacn/simheat/internal/config"
	"github.com/turtacn/simheat/internal/infrastructure/filewatch"
	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simheat/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/simheat/pkg/errors"
)

type watchOptions struct {
	Debounce  time.Duration
	NoInitial bool
}

// NewWatchCmd creates the watch command, which re-renders a dataset whenever
// one of its report files changes.
func NewWatchCmd() *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch [dataset...]",
		Short: "Re-render datasets when their reports change",
		Long: "Watch the report files of the named datasets (all when none are named)\n" +
			"and re-render a dataset after its files have been quiet for the debounce\n" +
			"period. Render failures are reported and watching continues. When a\n" +
			"config file is in use, changes to its render settings re-render every\n" +
			"watched dataset.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 0, "quiet period before re-rendering (0 uses watch.debounce)")
	cmd.Flags().BoolVar(&opts.NoInitial, "no-initial", false, "skip the initial render")
	return cmd
}

func runWatch(cmd *cobra.Command, names []string, opts *watchOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	datasets, err := plotting.SelectDatasets(cliCtx.Config, names)
	if err != nil {
		return err
	}
	if len(datasets) == 0 {
		return errors.New(errors.ErrCodeBadRequest, "no datasets configured")
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = cliCtx.Config.Watch.Debounce
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cliCtx.Config, cliCtx.Logger, runtimeOptions{metrics: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	dw := newDatasetWatcher(rt.Service, datasets, rt.Metrics, cliCtx.Logger, cmd.OutOrStdout())
	if cliCtx.ConfigPath != "" {
		err := config.Watch(cliCtx.ConfigPath, func(cfg *config.Config) {
			svc, err := rt.Rebuild(cfg)
			if err != nil {
				cliCtx.Logger.Warn("Config reload rejected", logging.Err(err))
				return
			}
			cliCtx.Logger.Info("Config reloaded", logging.String("path", cliCtx.ConfigPath))
			dw.Reload(ctx, svc)
		}, func(err error) {
			cliCtx.Logger.Warn("Config reload rejected", logging.Err(err))
		})
		if err != nil {
			return err
		}
	}

	return dw.Run(ctx, debounce, !opts.NoInitial)
}

// datasetWatcher re-renders datasets on file changes. Renders are
// serialised by mu, which also guards svc.
type datasetWatcher struct {
	mu       sync.Mutex
	svc      plotting.Service
	datasets map[string]plotting.Dataset
	order    []string
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
	out      io.Writer
}

func newDatasetWatcher(svc plotting.Service, datasets []plotting.Dataset, metrics *prometheus.AppMetrics, logger logging.Logger, out io.Writer) *datasetWatcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	dw := &datasetWatcher{
		svc:      svc,
		datasets: make(map[string]plotting.Dataset, len(datasets)),
		metrics:  metrics,
		logger:   logger.Named("watch"),
		out:      out,
	}
	for _, ds := range datasets {
		dw.datasets[ds.Name] = ds
		dw.order = append(dw.order, ds.Name)
	}
	return dw
}

// Run watches until ctx is done. Cancellation is a clean exit.
func (dw *datasetWatcher) Run(ctx context.Context, debounce time.Duration, initial bool) error {
	fw, err := filewatch.New(debounce, dw.logger)
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, name := range dw.order {
		ds := dw.datasets[name]
		if err := fw.Add(name, ds.SimilarityPath, ds.PatternPath); err != nil {
			return err
		}
	}
	if initial {
		dw.render(ctx, dw.order)
	}

	dw.logger.Info("Watching reports", logging.Strings("datasets", dw.order), logging.Duration("debounce", debounce))
	err = fw.Run(ctx, func(keys []string) {
		for _, k := range keys {
			prometheus.RecordWatchTrigger(dw.metrics, k)
		}
		dw.render(ctx, keys)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Reload swaps the service and re-renders every dataset with it.
func (dw *datasetWatcher) Reload(ctx context.Context, svc plotting.Service) {
	dw.mu.Lock()
	dw.svc = svc
	dw.mu.Unlock()
	dw.render(ctx, dw.order)
}

func (dw *datasetWatcher) render(ctx context.Context, names []string) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	for _, name := range names {
		ds, ok := dw.datasets[name]
		if !ok {
			continue
		}
		res, err := dw.svc.RenderDataset(ctx, ds)
		if err != nil {
			fmt.Fprintf(dw.out, "%s %s: %v\n", color.RedString("FAIL"), name, err)
			continue
		}
		fmt.Fprintf(dw.out, "%s %s -> %s (%s)\n", color.GreenString("OK"), name, res.Output,
			res.Duration.Truncate(time.Millisecond))
	}
}

//Personal.AI order the ending
