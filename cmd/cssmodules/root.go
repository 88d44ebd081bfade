package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// logger is configured from --verbose / --quiet before each command runs.
var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

var rootCmd = &cobra.Command{
	Use:   "cssmodules",
	Short: "Extract css tagged templates into CSS modules",
	Long: `Rewrites css tagged template literals in JavaScript and TypeScript
components into imports of virtual CSS modules, so class names are scoped
by the bundler's CSS modules support.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags (inherited by all subcommands)
	pf := rootCmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable verbose logging")
	pf.Bool("quiet", false, "Suppress all output (exit code only)")
	pf.Bool("color", false, "Force color output")
	pf.String("config", ".cssmodules.yaml", "Config file path")

	// Transform settings shared by transform, check, build and watch
	pf.String("tag", "css", "Tag identifier recognized as CSS")
	pf.StringSlice("extensions", nil, "Component file suffixes (default .js,.jsx,.ts,.tsx)")
	pf.StringSlice("include", nil, "Glob patterns a file must match to be transformed")
	pf.StringSlice("exclude", nil, "Glob patterns of files never transformed (default **/node_modules/**)")
	pf.String("jsx", "automatic", "JSX lowering: automatic|transform")
	pf.String("jsx-import-source", "react", "Module providing the automatic JSX runtime")

	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogger builds the command logger from the loaded configuration.
func setupLogger(cmd *cobra.Command) {
	level := slog.LevelInfo
	switch {
	case getBoolWithFallback("quiet", "quiet", false):
		level = slog.LevelError
	case getBoolWithFallback("verbose", "verbose", false):
		level = slog.LevelDebug
	}

	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// preRun loads configuration and the logger; shared by all working commands.
func preRun(cmd *cobra.Command, _ []string) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}
	setupLogger(cmd)
	return nil
}
