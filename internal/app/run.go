package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/predictgen/internal/compiler"
	"github.com/vk/predictgen/internal/ctxlog"
)

// Run compiles the loaded model and writes the output document.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	doc, err := a.compiler.Compile(ctx, a.model, compiler.Options{
		Env:       a.config.Env,
		StackName: a.config.StackName,
		Bucket:    a.config.Bucket,
		Evaluate:  a.config.Evaluate,
	})
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}

	out, err := doc.Marshal(a.config.Format)
	if err != nil {
		return err
	}

	if a.config.OutputPath != "" {
		if err := os.WriteFile(a.config.OutputPath, out, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		a.logger.Info("Output written.", "path", a.config.OutputPath, "bytes", len(out))
	} else if _, err := a.outW.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
