package config

import (
	"path/filepath"
	"time"

	"github.com/turtacn/simheat/internal/domain/report"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultDPI            = 144.0
	DefaultPalette        = "RdPu"
	DefaultThreshold      = 10.0
	DefaultValueFormat    = "%.1f"
	DefaultAnnotationSize = 5.0
	DefaultTickSize       = 7.0
	DefaultLabelRotation  = 90.0
	DefaultFormat         = "png"
	DefaultGridColor      = "#000000"
	DefaultGridWidth      = 1.0

	DefaultHeaderLines    = 8
	DefaultSimilaritySkip = 1
	DefaultPatternSkip    = 3
	DefaultScoreOffset    = 3
	DefaultMissingMarker  = "N/A"
	DefaultNameStart      = 6
	DefaultMaxAtoms       = report.DefaultMaxAtoms

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultServerPort = 8080
	DefaultServerMode = "release"
	DefaultMaxBody    = 32 << 20

	DefaultMetricsNamespace = "simheat"
	DefaultMetricsPath      = "/metrics"

	DefaultStorageBucket = "simheat-artifacts"
	DefaultCacheAddr     = "localhost:6379"
	DefaultCachePrefix   = "simheat:"
	DefaultEventsTopic   = "simheat.heatmap.rendered"
)

// DefaultGridDashes is the on/off pattern of the separators, in multiples of
// the line width.
var DefaultGridDashes = []float64{3.7, 1.6}

// DefaultDatasets are the two reference structures rendered by "simheat batch"
// when the configuration names none.
func DefaultDatasets() []DatasetConfig {
	return []DatasetConfig{
		{
			Name:       "co1121",
			Similarity: filepath.Join("output", "sa_co1121.txt"),
			Pattern:    filepath.Join("output", "pa_co1121.txt"),
			FigureSize: 12,
			Output:     filepath.Join("output", "co1121.png"),
		},
		{
			Name:       "rh111",
			Similarity: filepath.Join("output", "sa_rh111.txt"),
			Pattern:    filepath.Join("output", "pa_rh111.txt"),
			FigureSize: 5,
			Output:     filepath.Join("output", "rh111.png"),
		},
	}
}

// Default returns a complete configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Render: RenderConfig{
			Threshold:     DefaultThreshold,
			LabelRotation: DefaultLabelRotation,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-value fields in cfg. Explicit values win.
// Threshold, VMin and LabelRotation accept zero and are therefore defaulted
// through viper (see registerDefaults) or Default, not here.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Render ────────────────────────────────────────────────────────────────
	if cfg.Render.DPI == 0 {
		cfg.Render.DPI = DefaultDPI
	}
	if cfg.Render.Palette == "" {
		cfg.Render.Palette = DefaultPalette
	}
	if cfg.Render.ValueFormat == "" {
		cfg.Render.ValueFormat = DefaultValueFormat
	}
	if cfg.Render.AnnotationSize == 0 {
		cfg.Render.AnnotationSize = DefaultAnnotationSize
	}
	if cfg.Render.TickSize == 0 {
		cfg.Render.TickSize = DefaultTickSize
	}
	if cfg.Render.Format == "" {
		cfg.Render.Format = DefaultFormat
	}
	if cfg.Render.GridLine.Color == "" {
		cfg.Render.GridLine.Color = DefaultGridColor
	}
	if cfg.Render.GridLine.Width == 0 {
		cfg.Render.GridLine.Width = DefaultGridWidth
	}
	if cfg.Render.GridLine.Dashes == nil {
		cfg.Render.GridLine.Dashes = append([]float64(nil), DefaultGridDashes...)
	}

	// ── Report layout ─────────────────────────────────────────────────────────
	if cfg.Report.HeaderLines == 0 {
		cfg.Report.HeaderLines = DefaultHeaderLines
	}
	if cfg.Report.SimilaritySkip == 0 {
		cfg.Report.SimilaritySkip = DefaultSimilaritySkip
	}
	if cfg.Report.PatternSkip == 0 {
		cfg.Report.PatternSkip = DefaultPatternSkip
	}
	if cfg.Report.ScoreOffset == 0 {
		cfg.Report.ScoreOffset = DefaultScoreOffset
	}
	if cfg.Report.MissingMarker == "" {
		cfg.Report.MissingMarker = DefaultMissingMarker
	}
	if cfg.Report.NameStart == 0 {
		cfg.Report.NameStart = DefaultNameStart
	}
	if cfg.Report.MaxAtoms == 0 {
		cfg.Report.MaxAtoms = DefaultMaxAtoms
	}

	// ── Datasets ──────────────────────────────────────────────────────────────
	if len(cfg.Datasets) == 0 {
		cfg.Datasets = DefaultDatasets()
	}
	for i := range cfg.Datasets {
		ds := &cfg.Datasets[i]
		if ds.Output == "" && ds.Name != "" {
			ds.Output = filepath.Join("output", ds.Name+"."+cfg.Render.Format)
		}
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stderr"}
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBody
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.RenderRate > 0 && cfg.Server.RenderBurst == 0 {
		cfg.Server.RenderBurst = int(cfg.Server.RenderRate) + 1
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Backends ──────────────────────────────────────────────────────────────
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = DefaultStorageBucket
	}
	if cfg.Storage.PresignExpiry == 0 {
		cfg.Storage.PresignExpiry = time.Hour
	}
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = DefaultCacheAddr
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 24 * time.Hour
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultCachePrefix
	}
	if cfg.Cache.DialTimeout == 0 {
		cfg.Cache.DialTimeout = 5 * time.Second
	}
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = DefaultEventsTopic
	}
	if cfg.Events.BatchTimeout == 0 {
		cfg.Events.BatchTimeout = 50 * time.Millisecond
	}

	// ── Watch ─────────────────────────────────────────────────────────────────
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
}

//Personal.AI order the ending
