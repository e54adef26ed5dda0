package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment override, e.g.
// SURFACECTL_MESH_CELLS.
const envPrefix = "SURFACECTL"

// Config holds the settings shared by every command. Values come from
// flags, then SURFACECTL_* environment variables, then the config file,
// then DefaultConfig.
type Config struct {
	LogLevel     string  `mapstructure:"log-level"`
	LogFormat    string  `mapstructure:"log-format"`
	MeshCells    int     `mapstructure:"mesh-cells"`
	MeshSegments int     `mapstructure:"mesh-segments"`
	PlaneSize    float64 `mapstructure:"plane-size"`
	Concurrency  int     `mapstructure:"concurrency"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		LogLevel:     "info",
		LogFormat:    "text",
		MeshCells:    64,
		MeshSegments: 48,
		PlaneSize:    1.0,
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q (valid: text, json)", c.LogFormat))
	}
	if c.MeshCells < 4 {
		errs = append(errs, fmt.Errorf("mesh-cells must be at least 4, got %d", c.MeshCells))
	}
	if c.MeshSegments < 3 {
		errs = append(errs, fmt.Errorf("mesh-segments must be at least 3, got %d", c.MeshSegments))
	}
	if c.PlaneSize <= 0 {
		errs = append(errs, fmt.Errorf("plane-size must be positive, got %g", c.PlaneSize))
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}
	return errors.Join(errs...)
}

// newViper returns a viper instance reading SURFACECTL_* overrides and, if
// path is set, the given config file.
func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("mesh-cells", d.MeshCells)
	v.SetDefault("mesh-segments", d.MeshSegments)
	v.SetDefault("plane-size", d.PlaneSize)
	v.SetDefault("concurrency", d.Concurrency)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// loadConfig decodes and validates the settings held by v.
func loadConfig(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
