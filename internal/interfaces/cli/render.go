package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/simheat/internal/application/plotting"
	"github.com/turtacn/simheat/internal/config"
	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simheat/pkg/errors"
)

// renderOptions holds the flags of "simheat render".
type renderOptions struct {
	Dataset    string
	Similarity string
	Pattern    string
	Output     string
	Size       float64
	DPI        float64
	Title      string
}

// NewRenderCmd creates the render command: one heatmap from either a
// configured dataset or an explicit report pair.
func NewRenderCmd() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one similarity/pattern report pair",
		Long: "Render a single heatmap. Name a configured dataset with --dataset, or\n" +
			"give --similarity, --pattern and --output directly. Explicit flags\n" +
			"override the dataset's settings. The output extension (.png or .svg)\n" +
			"selects the image format.",
		Example: "  simheat render --dataset rh111\n" +
			"  simheat render --similarity sa.txt --pattern pa.txt --output out/pair.svg --size 8",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Dataset, "dataset", "d", "", "configured dataset name")
	f.StringVar(&opts.Similarity, "similarity", "", "similarity report path")
	f.StringVar(&opts.Pattern, "pattern", "", "pattern report path")
	f.StringVar(&opts.Output, "output-file", "", "image path (.png or .svg)")
	f.Float64Var(&opts.Size, "size", 0, "figure width and height in inches")
	f.Float64Var(&opts.DPI, "dpi", 0, "dots per inch (0 uses render.dpi)")
	f.StringVar(&opts.Title, "title", "", "figure title")
	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ds, err := opts.dataset(cliCtx.Config)
	if err != nil {
		return err
	}

	ctx, cancel := operationContext(cmd, cliCtx)
	defer cancel()
	rt, err := newRuntime(ctx, cliCtx.Config, cliCtx.Logger, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.Service.RenderDataset(ctx, ds)
	if err != nil {
		return err
	}
	return PrintResult(cmd, renderResults{res})
}

// dataset resolves the flags into a Dataset.
func (o *renderOptions) dataset(cfg *config.Config) (plotting.Dataset, error) {
	var ds plotting.Dataset
	if o.Dataset != "" {
		dc, ok := cfg.Dataset(o.Dataset)
		if !ok {
			return ds, errors.Newf(errors.ErrCodeDatasetNotFound, "dataset %q is not configured", o.Dataset)
		}
		ds = plotting.DatasetFromConfig(dc, cfg.Render)
	} else {
		if o.Similarity == "" || o.Pattern == "" || o.Output == "" {
			return ds, errors.New(errors.ErrCodeBadRequest,
				"either --dataset or all of --similarity, --pattern and --output-file are required")
		}
		ds = plotting.Dataset{Name: "adhoc", DPI: cfg.Render.DPI}
	}

	if o.Similarity != "" {
		ds.SimilarityPath = o.Similarity
	}
	if o.Pattern != "" {
		ds.PatternPath = o.Pattern
	}
	if o.Output != "" {
		ds.Output = o.Output
	}
	if o.Size != 0 {
		ds.FigureSize = o.Size
	}
	if o.DPI != 0 {
		ds.DPI = o.DPI
	}
	if o.Title != "" {
		ds.Title = o.Title
	}
	if ds.FigureSize == 0 {
		ds.FigureSize = defaultFigureSize
	}
	return ds, nil
}

// defaultFigureSize is used for ad hoc pairs rendered without --size.
const defaultFigureSize = 5.0

// renderResults prints as one table row per rendered dataset.
type renderResults []*plotting.Result

func (r renderResults) TableHeaders() []string {
	return []string{"Dataset", "Output", "Atoms", "Missing", "Symmetric", "Bytes", "Duration"}
}

func (r renderResults) TableRows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, res := range r {
		if res == nil {
			continue
		}
		out := res.Output
		if res.URL != "" {
			out += "\n" + res.URL
		}
		rows = append(rows, []string{
			res.Dataset,
			out,
			fmt.Sprintf("%d", res.Atoms),
			fmt.Sprintf("%d", res.Missing),
			fmt.Sprintf("%t", res.Symmetric),
			fmt.Sprintf("%d", res.Bytes),
			res.Duration.Truncate(time.Millisecond).String(),
		})
	}
	return rows
}

// ─────────────────────────────────────────────────────────────────────────────
// batch
// ─────────────────────────────────────────────────────────────────────────────

// NewBatchCmd creates the batch command, which renders configured datasets
// in order and stops at the first failure.
func NewBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [dataset...]",
		Short: "Render configured datasets (all when none are named)",
		Long: "Render the datasets listed in the configuration, in order. The run\n" +
			"stops at the first failure; datasets rendered before it are reported.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args)
		},
	}
}

func runBatch(cmd *cobra.Command, names []string) error {
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

	ctx, cancel := operationContext(cmd, cliCtx)
	defer cancel()
	rt, err := newRuntime(ctx, cliCtx.Config, cliCtx.Logger, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	cliCtx.Logger.Debug("Batch started", logging.Strings("datasets", datasetNames(datasets)))
	results, renderErr := rt.Service.RenderAll(ctx, datasets)
	if len(results) > 0 {
		if err := PrintResult(cmd, renderResults(results)); err != nil {
			return err
		}
	}
	if renderErr != nil {
		return renderErr
	}
	if cliCtx.OutputFormat != "json" {
		PrintSuccess(cmd, fmt.Sprintf("rendered %d dataset(s): %s", len(results), strings.Join(datasetNames(datasets), ", ")))
	}
	return nil
}

func datasetNames(datasets []plotting.Dataset) []string {
	names := make([]string, len(datasets))
	for i, ds := range datasets {
		names[i] = ds.Name
	}
	return names
}

//Personal.AI order the ending
