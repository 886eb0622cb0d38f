// Package config provides configuration loading, defaults, and validation for
// simheat.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix of every setting.
const envPrefix = "SIMHEAT"

// newViper builds a Viper with YAML files, SIMHEAT_ env overrides ("." → "_",
// so render.dpi resolves to SIMHEAT_RENDER_DPI) and the zero-sensitive
// defaults registered.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerDefaults(v)
	return v
}

// registerDefaults declares keys whose zero value is meaningful, plus the
// keys that should be reachable from the environment without a file.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("render.dpi", DefaultDPI)
	v.SetDefault("render.palette", DefaultPalette)
	v.SetDefault("render.vmin", 0.0)
	v.SetDefault("render.threshold", DefaultThreshold)
	v.SetDefault("render.label_rotation", DefaultLabelRotation)
	v.SetDefault("render.format", DefaultFormat)
	v.SetDefault("report.score_offset", DefaultScoreOffset)
	v.SetDefault("report.max_atoms", DefaultMaxAtoms)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.mode", DefaultServerMode)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", DefaultCacheAddr)
	v.SetDefault("events.enabled", false)
	v.SetDefault("events.brokers", []string{})
}

// Load reads the YAML file at configPath, merges SIMHEAT_* overrides, applies
// defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from SIMHEAT_* variables and defaults only.
//
//	SIMHEAT_<SECTION>_<FIELD>   e.g.  SIMHEAT_RENDER_DPI, SIMHEAT_CACHE_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch re-reads configPath whenever it changes on disk and passes the new
// Config to onChange. Invalid revisions go to onError (if non-nil) and
// onChange is skipped. Watch does not block; viper owns the goroutine.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

//Personal.AI order the ending
