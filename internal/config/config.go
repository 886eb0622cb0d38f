// Package config defines the configuration structures for simheat. No I/O
// lives here, only plain data types and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/simheat/internal/domain/heatmap"
	"github.com/turtacn/simheat/internal/domain/report"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// RenderConfig holds the heatmap look shared by every dataset.
type RenderConfig struct {
	DPI            float64        `mapstructure:"dpi"`
	Palette        string         `mapstructure:"palette"`
	VMin           float64        `mapstructure:"vmin"`
	Threshold      float64        `mapstructure:"threshold"`
	ValueFormat    string         `mapstructure:"value_format"`
	AnnotationSize float64        `mapstructure:"annotation_size"`
	TickSize       float64        `mapstructure:"tick_size"`
	LabelRotation  float64        `mapstructure:"label_rotation"`
	Format         string         `mapstructure:"format"` // "png" | "svg"
	GridLine       GridLineConfig `mapstructure:"grid_line"`
}

// GridLineConfig styles the dashed row/column separators.
type GridLineConfig struct {
	Color  string    `mapstructure:"color"`
	Width  float64   `mapstructure:"width"`
	Dashes []float64 `mapstructure:"dashes"`
}

// ReportConfig describes the fixed layout of the input reports.
type ReportConfig struct {
	HeaderLines    int    `mapstructure:"header_lines"`
	SimilaritySkip int    `mapstructure:"similarity_skip"`
	PatternSkip    int    `mapstructure:"pattern_skip"`
	ScoreOffset    int    `mapstructure:"score_offset"`
	MissingMarker  string `mapstructure:"missing_marker"`
	NameStart      int    `mapstructure:"name_start"`
	MaxAtoms       int    `mapstructure:"max_atoms"`
}

// DatasetConfig names one similarity/pattern report pair and its output.
type DatasetConfig struct {
	Name       string  `mapstructure:"name"`
	Similarity string  `mapstructure:"similarity"`
	Pattern    string  `mapstructure:"pattern"`
	FigureSize float64 `mapstructure:"figure_size"` // inches, square
	DPI        float64 `mapstructure:"dpi"`         // 0 uses render.dpi
	Output     string  `mapstructure:"output"`
	Title      string  `mapstructure:"title"`
}

// LogConfig holds logger parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	// APIKeys, when set, are required on every /api/v1 request.
	APIKeys []string `mapstructure:"api_keys"`
	// RenderRate limits render requests per client and second; 0 disables it.
	RenderRate  float64 `mapstructure:"render_rate"`
	RenderBurst int     `mapstructure:"render_burst"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
	Path      string `mapstructure:"path"`
}

// StorageConfig holds MinIO artifact storage parameters.
type StorageConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	Region        string        `mapstructure:"region"`
	Bucket        string        `mapstructure:"bucket"`
	Prefix        string        `mapstructure:"prefix"`
	RetentionDays int           `mapstructure:"retention_days"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// CacheConfig holds the Redis parsed-report cache parameters.
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	TTL         time.Duration `mapstructure:"ttl"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// EventsConfig holds the Kafka "heatmap rendered" publisher parameters.
type EventsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// WatchConfig tunes the file watcher used by "simheat watch".
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration.
type Config struct {
	Render   RenderConfig    `mapstructure:"render"`
	Report   ReportConfig    `mapstructure:"report"`
	Datasets []DatasetConfig `mapstructure:"datasets"`
	Log      LogConfig       `mapstructure:"log"`
	Server   ServerConfig    `mapstructure:"server"`
	Metrics  MetricsConfig   `mapstructure:"metrics"`
	Storage  StorageConfig   `mapstructure:"storage"`
	Cache    CacheConfig     `mapstructure:"cache"`
	Events   EventsConfig    `mapstructure:"events"`
	Watch    WatchConfig     `mapstructure:"watch"`
}

// Dataset returns the dataset with the given name.
func (c *Config) Dataset(name string) (DatasetConfig, bool) {
	for _, ds := range c.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return DatasetConfig{}, false
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	// Render
	if c.Render.DPI <= 0 {
		return fmt.Errorf("config: render.dpi must be > 0, got %g", c.Render.DPI)
	}
	if !contains(heatmap.PaletteNames(), c.Render.Palette) {
		return fmt.Errorf("config: render.palette %q is invalid; expected %s",
			c.Render.Palette, strings.Join(heatmap.PaletteNames(), "|"))
	}
	if c.Render.AnnotationSize <= 0 || c.Render.TickSize <= 0 {
		return fmt.Errorf("config: render font sizes must be > 0")
	}
	if _, err := heatmap.ParseFormat(c.Render.Format); err != nil {
		return fmt.Errorf("config: render.format %q is invalid; expected png|svg", c.Render.Format)
	}
	if _, err := heatmap.ParseHexColor(c.Render.GridLine.Color); err != nil {
		return fmt.Errorf("config: render.grid_line.color %q is invalid", c.Render.GridLine.Color)
	}

	// Report
	if c.Report.ScoreOffset < 1 {
		return fmt.Errorf("config: report.score_offset must be ≥ 1, got %d", c.Report.ScoreOffset)
	}
	if c.Report.HeaderLines < 0 || c.Report.SimilaritySkip < 0 || c.Report.PatternSkip < 0 || c.Report.NameStart < 0 {
		return fmt.Errorf("config: report line counts must be ≥ 0")
	}
	if c.Report.MaxAtoms < 1 || c.Report.MaxAtoms > report.MaxMatrixSize {
		return fmt.Errorf("config: report.max_atoms must be in 1..%d, got %d", report.MaxMatrixSize, c.Report.MaxAtoms)
	}

	// Datasets
	seen := make(map[string]bool, len(c.Datasets))
	for i, ds := range c.Datasets {
		if ds.Name == "" {
			return fmt.Errorf("config: datasets[%d].name is required", i)
		}
		if seen[ds.Name] {
			return fmt.Errorf("config: dataset %q is defined twice", ds.Name)
		}
		seen[ds.Name] = true
		if ds.Similarity == "" || ds.Pattern == "" {
			return fmt.Errorf("config: dataset %q needs both similarity and pattern paths", ds.Name)
		}
		if ds.FigureSize <= 0 {
			return fmt.Errorf("config: dataset %q figure_size must be > 0", ds.Name)
		}
		if ds.DPI < 0 {
			return fmt.Errorf("config: dataset %q dpi must be ≥ 0", ds.Name)
		}
		if _, err := heatmap.FormatFromPath(ds.Output); err != nil {
			return fmt.Errorf("config: dataset %q output %q must end in .png or .svg", ds.Name, ds.Output)
		}
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.RenderRate < 0 || c.Server.RenderBurst < 0 {
		return fmt.Errorf("config: server.render_rate and server.render_burst must be ≥ 0")
	}

	// Optional backends
	if c.Storage.Enabled {
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("config: storage.endpoint is required when storage is enabled")
		}
		if c.Storage.Bucket == "" {
			return fmt.Errorf("config: storage.bucket is required when storage is enabled")
		}
	}
	if c.Cache.Enabled && c.Cache.Addr == "" {
		return fmt.Errorf("config: cache.addr is required when the cache is enabled")
	}
	if c.Cache.DB < 0 {
		return fmt.Errorf("config: cache.db must be ≥ 0, got %d", c.Cache.DB)
	}
	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("config: events.brokers must contain at least one broker address")
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("config: events.topic is required when events are enabled")
		}
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
