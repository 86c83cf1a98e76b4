// Package config loads the service configuration from the environment.
//
// Values are resolved from the OS environment first, then from a .env file
// in the working directory. The core packages never read the environment:
// they receive domain.Options built by Config.Options.
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"go.ngs.io/regrid/internal/adapter/interp"
	"go.ngs.io/regrid/internal/domain"
)

// Config is the process configuration.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// DataDir holds input NetCDF fields and <name>_points.csv lists.
	DataDir string `envconfig:"DATA_DIR" default:"./data" validate:"required"`

	// LSMDir enables the land-sea mask store when set.
	LSMDir      string `envconfig:"LSM_DIR"`
	LSMFile     string `envconfig:"LSM_FILE" default:"lsm.nc" validate:"required"`
	LSMVariable string `envconfig:"LSM_VARIABLE" default:"lsm" validate:"required"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// Workers bounds the goroutines of a regrid pass; 0 uses GOMAXPROCS.
	Workers       int    `envconfig:"REGRID_WORKERS" default:"0" validate:"min=0,max=1024"`
	DefaultMethod string `envconfig:"REGRID_DEFAULT_METHOD" default:"bilinear" validate:"required"`

	LinearPoleDerivative bool `envconfig:"REGRID_LINEAR_POLE_DERIVATIVE" default:"false"`
	CheckConservation    bool `envconfig:"REGRID_CHECK_CONSERVATION" default:"false"`
	EmosPrecision        bool `envconfig:"REGRID_EMOS_PRECISION" default:"false"`
	Trace                bool `envconfig:"REGRID_TRACE" default:"false"`
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	// godotenv does not override variables already set in the environment.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags and the default method name.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if _, err := interp.ParseKind(c.DefaultMethod); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// Options returns the switches handed to the regridding core.
func (c *Config) Options() domain.Options {
	return domain.Options{
		LinearPoleDerivative: c.LinearPoleDerivative,
		CheckConservation:    c.CheckConservation,
		EmosPrecisionCompat:  c.EmosPrecision,
		Trace:                c.Trace,
	}
}

// Method returns the parsed default interpolation method.
func (c *Config) Method() interp.Kind {
	k, err := interp.ParseKind(c.DefaultMethod)
	if err != nil {
		return interp.KindBiLinear
	}
	return k
}

// LSMPath returns the master land-sea mask file, or "" when masks are
// disabled.
func (c *Config) LSMPath() string {
	if c.LSMDir == "" {
		return ""
	}
	return filepath.Join(c.LSMDir, c.LSMFile)
}

// Origins returns the trimmed CORS origins.
func (c *Config) Origins() []string {
	out := make([]string, 0, len(c.CORSAllowedOrigins))
	for _, o := range c.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
