// Package config provides configuration types and defaults for elementbind.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override configuration,
// e.g. ELEMENTBIND_RESOLVER_ORDER.
const EnvPrefix = "ELEMENTBIND"

// Config holds all configuration options for elementbind.
type Config struct {
	ResolverOrder string        `mapstructure:"resolver_order"` // "registry-last" (default) or "registry-first"
	Attribute     string        `mapstructure:"attribute"`      // markup attribute read by the default provider
	LogLevel      string        `mapstructure:"log_level"`      // debug, info, warn or error
	Output        string        `mapstructure:"output"`         // "yaml" (default) or "json"
	Watch         bool          `mapstructure:"watch"`
	Debounce      time.Duration `mapstructure:"debounce"` // delay before re-resolving after a file change
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		ResolverOrder: "registry-last",
		Attribute:     "data-bind",
		LogLevel:      "info",
		Output:        "yaml",
		Watch:         false,
		Debounce:      300 * time.Millisecond,
	}
}

// SetDefaults registers the default configuration with v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("resolver_order", d.ResolverOrder)
	v.SetDefault("attribute", d.Attribute)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("output", d.Output)
	v.SetDefault("watch", d.Watch)
	v.SetDefault("debounce", d.Debounce)
}

// New returns a viper instance with defaults and environment overrides
// configured. If path is set, the config file is read from it.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for unsupported values.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.ResolverOrder) {
	case "registry-last", "registry-first":
	default:
		errs = append(errs, fmt.Errorf("resolver_order: must be registry-last or registry-first, got %q", c.ResolverOrder))
	}
	if strings.TrimSpace(c.Attribute) == "" {
		errs = append(errs, errors.New("attribute: must not be empty"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	switch strings.ToLower(c.Output) {
	case "yaml", "json":
	default:
		errs = append(errs, fmt.Errorf("output: must be yaml or json, got %q", c.Output))
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce: must not be negative, got %s", c.Debounce))
	}
	return errors.Join(errs...)
}

// Level returns the configured slog level, falling back to info.
func (c Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel parses debug, info, warn or error (case-insensitive).
// The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
