package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/predictgen/internal/catalog"
	"github.com/vk/predictgen/internal/compiler"
	"github.com/vk/predictgen/internal/config"
	"github.com/vk/predictgen/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	model    *config.Model
	compiler *compiler.Compiler
}

// NewApp loads the manifests named by cfg and returns an App ready to run.
// The output document goes to outW, logs go to logW.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		model:    model,
		compiler: compiler.New(catalog.Default()),
	}, nil
}

// Model returns the loaded model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
