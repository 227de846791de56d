package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/restobridge/internal/bridge"
	"github.com/vk/restobridge/internal/ctxlog"
	"github.com/vk/restobridge/internal/restore"
)

// Run executes the selected mode and blocks until it finishes.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.settings.Pipeline.Root == "" {
		return errors.New("pipeline root is not configured; set -root or the pipeline block in restobridge.hcl")
	}

	if a.config.Serve {
		return bridge.New(a.settings, a.logger).Run(ctx)
	}
	return a.runOnce(ctx)
}

// runOnce executes a single restoration, streaming progress through the
// logger, and prints the final artifact path.
func (a *App) runOnce(ctx context.Context) error {
	sink := func(ev restore.Event) {
		attrs := []any{"run_id", ev.RunID}
		if ev.Stage != nil {
			attrs = append(attrs, "stage", *ev.Stage)
		}
		if ev.IsError {
			a.logger.Warn(ev.Message, attrs...)
		} else {
			a.logger.Info(ev.Message, attrs...)
		}
	}

	p := restore.NewPipeline(a.settings.Pipeline.Root, a.settings.Pipeline.Script, sink)
	a.logger.Info("🚀 Starting restoration...", "input", a.config.InputPath)

	res, err := p.Modify(ctx, restore.Request{
		InputPath:    a.config.InputPath,
		OutputFolder: a.settings.Pipeline.OutputFolder,
		GPU:          a.settings.Pipeline.GPU,
		WithScratch:  a.settings.Pipeline.WithScratch,
		HR:           a.settings.Pipeline.HR,
		Python:       a.settings.Pipeline.Python,
	})
	if err != nil {
		return fmt.Errorf("restoration failed: %w", err)
	}

	a.logger.Info("🏁 Restoration finished.")
	fmt.Fprintln(a.outW, res.OutputPath)
	return nil
}
