package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/simheat/internal/config"
	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simheat/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
}

// CLIContext carries the loaded configuration and logger through the command
// tree.
type CLIContext struct {
	Config       *config.Config
	ConfigPath   string
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
}

// NewRootCommand creates the root command with the global flags and every
// subcommand. Run without a subcommand it renders all configured datasets.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "simheat",
		Short: "Render atom-pair similarity reports as annotated heatmaps",
		Long: "simheat reads a pairwise similarity report and its matching pattern\n" +
			"report, then draws the similarity matrix as a labelled, annotated heatmap.\n" +
			"Without a subcommand it renders every configured dataset.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, nil)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./simheat.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides log.level")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "table", "output format (table, json)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "timeout for render and inspect commands (0 disables)")

	cmd.AddCommand(
		NewRenderCmd(),
		NewBatchCmd(),
		NewInspectCmd(),
		NewWatchCmd(),
		NewServeCmd(),
		NewArtifactsCmd(),
		NewCacheCmd(),
	)
	return cmd
}

// persistentPreRun loads configuration and the logger, then stores the
// CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "table", "json":
	default:
		return errors.Newf(errors.ErrCodeBadRequest, "unknown output format %q (table|json)", opts.OutputFormat)
	}

	cfg, path, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(cfg, opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	logging.SetDefault(logger)

	if opts.NoColor {
		color.NoColor = true
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		ConfigPath:   path,
		Logger:       logger,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Verbose:      opts.Verbose,
		NoColor:      opts.NoColor,
		Timeout:      opts.Timeout,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads the file named by --config, else the first file found on
// the search path, else SIMHEAT_* variables and defaults only. It returns the
// path it read, empty when none.
func initConfig(opts *RootOptions) (*config.Config, string, error) {
	if opts.ConfigPath != "" {
		cfg, err := config.Load(opts.ConfigPath)
		return cfg, opts.ConfigPath, err
	}

	searchPaths := []string{"./simheat.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".simheat", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/simheat/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			cfg, err := config.Load(p)
			return cfg, p, err
		}
	}

	cfg, err := config.LoadFromEnv()
	return cfg, "", err
}

// initLogger creates the logger from the log section. CLI flags win over
// the file.
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	if opts.Verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// operationContext bounds one-shot commands by --timeout.
func operationContext(cmd *cobra.Command, cliCtx *CLIContext) (context.Context, context.CancelFunc) {
	if cliCtx.Timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), cliCtx.Timeout)
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Output helpers
// ─────────────────────────────────────────────────────────────────────────────

// tableProvider is implemented by results that can print as a table.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult outputs data as JSON or, when data supports it, as a table.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil || cliCtx.OutputFormat == "json" {
		return printJSON(cmd, data)
	}
	if tp, ok := data.(tableProvider); ok {
		fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
		return nil
	}
	return printJSON(cmd, data)
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("OK:"), msg)
}

// FormatTable renders headers and rows with tablewriter.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	var sb strings.Builder
	table := tablewriter.NewWriter(&sb)
	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
	return sb.String()
}

//Personal.AI order the ending
