package main

import (
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/cobra"

	cssmodules "github.com/berlysia/cssmodules-in-js"
)

var buildCmd = &cobra.Command{
	Use:   "build [ENTRY...]",
	Short: "Bundle entry points with esbuild",
	Long: `Bundle entry points with esbuild. Component files are transformed on load
and the generated CSS modules are compiled by esbuild's local-css loader.`,
	PreRunE: preRun,
	RunE:    runBuild,
}

func init() {
	addBuildFlags(buildCmd)
}

// addBuildFlags registers the bundling flags shared by build and watch.
func addBuildFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("entry", nil, "Entry points to bundle (default src/main.tsx)")
	f.String("outdir", "dist", "Output directory")
	f.Bool("minify", false, "Minify JavaScript and CSS output")
	f.Bool("sourcemap", false, "Write linked source maps")
}

// buildOptions constructs the esbuild options from koanf state. Positional
// entries replace the configured ones.
func buildOptions(plugin *cssmodules.Plugin, args []string) api.BuildOptions {
	entries := args
	if len(entries) == 0 {
		entries = getStringsWithFallback("entry", "build.entry", []string{"src/main.tsx"})
	}
	minify := getBoolWithFallback("minify", "build.minify", false)

	opts := api.BuildOptions{
		EntryPoints:       entries,
		Bundle:            true,
		Write:             true,
		Outdir:            getStringWithFallback("outdir", "build.outdir", "dist"),
		Format:            api.FormatESModule,
		MinifyWhitespace:  minify,
		MinifyIdentifiers: minify,
		MinifySyntax:      minify,
		LogLevel:          api.LogLevelSilent,
		Plugins:           []api.Plugin{plugin.ESBuild()},
	}
	if getBoolWithFallback("sourcemap", "build.sourcemap", false) {
		opts.Sourcemap = api.SourceMapLinked
	}
	return opts
}

func runBuild(cmd *cobra.Command, args []string) error {
	plugin := cssmodules.New(buildPluginConfig(), cssmodules.WithLogger(logger))

	result := api.Build(buildOptions(plugin, args))
	if err := printBuildResult(cmd, result); err != nil {
		return err
	}

	logger.Debug("build finished", "modules", len(plugin.BuildGraph().IDs()))
	return nil
}

// printBuildResult prints esbuild messages and the written files. It returns
// an error when the build failed.
func printBuildResult(cmd *cobra.Command, result api.BuildResult) error {
	useColors := getBoolWithFallback("color", "color", false)
	stderr := cmd.ErrOrStderr()

	for _, msg := range api.FormatMessages(result.Warnings, api.FormatMessagesOptions{Kind: api.WarningMessage, Color: useColors}) {
		fmt.Fprint(stderr, msg)
	}
	for _, msg := range api.FormatMessages(result.Errors, api.FormatMessagesOptions{Kind: api.ErrorMessage, Color: useColors}) {
		fmt.Fprint(stderr, msg)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("build failed with %d %s", len(result.Errors), pluralize(len(result.Errors), "error", "errors"))
	}

	if getBoolWithFallback("quiet", "quiet", false) {
		return nil
	}

	out := cmd.OutOrStdout()
	for _, f := range result.OutputFiles {
		fmt.Fprintf(out, "  %s  %s\n", cssmodules.GetRelativePath(f.Path), formatSize(len(f.Contents)))
	}
	return nil
}

func formatSize(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%db", n)
	}
	return fmt.Sprintf("%.1fkb", float64(n)/1024)
}

func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
