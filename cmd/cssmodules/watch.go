package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/cobra"

	cssmodules "github.com/berlysia/cssmodules-in-js"
	"github.com/berlysia/cssmodules-in-js/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [ENTRY...]",
	Short: "Rebuild on change and report updated CSS modules",
	Long: `Bundle entry points with esbuild and rebuild whenever a component file
changes. For every changed file the CSS modules that need a hot update are
logged.`,
	PreRunE: preRun,
	RunE:    runWatch,
}

func init() {
	addBuildFlags(watchCmd)
	f := watchCmd.Flags()
	f.String("root", ".", "Directory to watch")
	f.Duration("debounce", 100*time.Millisecond, "Quiet period before rebuilding")
}

func runWatch(cmd *cobra.Command, args []string) error {
	config := buildPluginConfig()
	plugin := cssmodules.New(config, cssmodules.WithLogger(logger))

	bctx, cerr := api.Context(buildOptions(plugin, args))
	if cerr != nil {
		for _, msg := range api.FormatMessages(cerr.Errors, api.FormatMessagesOptions{Kind: api.ErrorMessage}) {
			fmt.Fprint(cmd.ErrOrStderr(), msg)
		}
		return fmt.Errorf("create build context: %d invalid options", len(cerr.Errors))
	}
	defer bctx.Dispose()

	// Initial build; failures are reported and watching continues
	if err := printBuildResult(cmd, bctx.Rebuild()); err != nil {
		logger.Error("initial build failed", "error", err)
	}

	root, err := filepath.Abs(getStringWithFallback("root", "watch.root", "."))
	if err != nil {
		return fmt.Errorf("resolve watch root: %w", err)
	}

	cfg := watcher.DefaultConfig(root)
	cfg.DebounceDur = getDurationWithFallback("debounce", "watch.debounce", cfg.DebounceDur)
	cfg.Match = config.Matches

	w, err := watcher.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return err
	}
	logger.Info("watching for changes", "root", root)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors():
			logger.Warn("watch error", "error", err)
		case change := <-changes:
			rebuild(ctx, cmd, bctx, plugin, change)
		}
	}
}

// rebuild reruns the build for a batch of changes and logs the CSS modules
// the host has to reload.
func rebuild(ctx context.Context, cmd *cobra.Command, bctx api.BuildContext, plugin *cssmodules.Plugin, change watcher.Change) {
	for _, file := range change.Removed {
		plugin.Forget(file)
	}
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	if err := printBuildResult(cmd, bctx.Rebuild()); err != nil {
		logger.Error("rebuild failed", "error", err)
		return
	}
	logger.Info("rebuilt", "files", len(change.Changed)+len(change.Removed), "duration", time.Since(start).Round(time.Millisecond))

	for _, file := range change.Changed {
		modules, ok := plugin.HandleHotUpdate(file, plugin.BuildGraph())
		if !ok {
			continue
		}
		ids := make([]string, len(modules))
		for i, m := range modules {
			ids[i] = m.ID()
		}
		logger.Info("css modules updated", "file", file, "modules", ids)
	}
}
