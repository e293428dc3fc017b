package app

import (
	"errors"
	"fmt"

	"github.com/vk/predictgen/internal/compiler"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SchemaPath string // hcl file or directory
	OutputPath string // empty writes to the app's output writer
	Format     string

	Env       string
	StackName string
	Bucket    string
	Evaluate  bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy with defaults applied.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.SchemaPath == "" {
		return nil, errors.New("SchemaPath is a required configuration field and cannot be empty")
	}
	if cfg.Format == "" {
		cfg.Format = compiler.FormatYAML
	}
	if cfg.Format != compiler.FormatYAML && cfg.Format != compiler.FormatJSON {
		return nil, fmt.Errorf("invalid format %q: must be '%s' or '%s'", cfg.Format, compiler.FormatYAML, compiler.FormatJSON)
	}
	if cfg.Evaluate && cfg.StackName == "" {
		return nil, errors.New("StackName is required when Evaluate is set")
	}
	return &cfg, nil
}
