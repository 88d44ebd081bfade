package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cssmodules "github.com/berlysia/cssmodules-in-js"
	"github.com/berlysia/cssmodules-in-js/internal/report"
	"github.com/berlysia/cssmodules-in-js/internal/syntax"
)

var k = koanf.New(".")

// defaultCheckPaths are scanned by check when no paths are configured.
var defaultCheckPaths = []string{"**/*.{js,jsx,ts,tsx}"}

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	k = koanf.New(".")

	// Resolve config file path from flag
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = ".cssmodules.yaml"
	}

	// Load config file and env vars
	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// 3. CLI flags (highest precedence, only flags that were explicitly set)
	flags := cmd.Flags()
	if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		return f.Name, posflag.FlagVal(flags, f)
	}), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (CSSMODULES_* prefix)
	if err := k.Load(env.Provider("CSSMODULES_", ".", func(s string) string {
		// CSSMODULES_TAG -> tag
		// CSSMODULES_CHECK_STRICT -> check.strict
		// CSSMODULES_BUILD_OUTDIR -> build.outdir
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "CSSMODULES_")),
			"_", ".",
		)
	}), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// buildPluginConfig constructs the library's Config struct from koanf state.
func buildPluginConfig() cssmodules.Config {
	defaults := cssmodules.DefaultConfig()

	return cssmodules.Config{
		Tag:             getStringWithFallback("tag", "tag", defaults.Tag),
		Extensions:      getStringsWithFallback("extensions", "extensions", defaults.Extensions),
		Includes:        getStringsWithFallback("include", "include", nil),
		Excludes:        getStringsWithFallback("exclude", "exclude", defaults.Excludes),
		JSX:             syntax.JSXMode(getStringWithFallback("jsx", "jsx", string(defaults.JSX))),
		JSXImportSource: getStringWithFallback("jsx-import-source", "jsx-import-source", defaults.JSXImportSource),
	}
}

// buildCheckConfig constructs the library's CheckConfig from koanf state.
// Positional paths replace the configured ones.
func buildCheckConfig(args []string) cssmodules.CheckConfig {
	paths := args
	if len(paths) == 0 {
		paths = getStringsWithFallback("paths", "check.paths", defaultCheckPaths)
	}

	return cssmodules.CheckConfig{
		Config: buildPluginConfig(),
		Dir:    ".",
		Paths:  paths,
		Strict: getBoolWithFallback("strict", "check.strict", false),
		Report: buildReportConfig(),
	}
}

// buildReportConfig constructs the printing options for check.
func buildReportConfig() report.Config {
	return report.Config{
		MaxIssuesPerLinter: getIntWithFallback("max-issues-per-linter", "check.max-issues-per-linter", 0),
		MaxSameIssues:      getIntWithFallback("max-same-issues", "check.max-same-issues", 0),
		PrintIssuedLines:   getBoolWithFallback("print-lines", "check.print-lines", true),
		PrintLinterName:    getBoolWithFallback("print-linter-name", "check.print-linter-name", true),
		UseColors:          getBoolWithFallback("color", "color", false),
	}
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getStringsWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringsWithFallback(flagKey, configKey string, defaultVal []string) []string {
	if v := k.Strings(flagKey); len(v) > 0 {
		return v
	}
	if v := k.Strings(configKey); len(v) > 0 {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getIntWithFallback checks the flag key first, then the config file key, then returns the default.
func getIntWithFallback(flagKey, configKey string, defaultVal int) int {
	if k.Exists(flagKey) {
		return k.Int(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int(configKey)
	}
	return defaultVal
}

// getDurationWithFallback checks the flag key first, then the config file key, then returns the default.
func getDurationWithFallback(flagKey, configKey string, defaultVal time.Duration) time.Duration {
	if k.Exists(flagKey) {
		return k.Duration(flagKey)
	}
	if k.Exists(configKey) {
		return k.Duration(configKey)
	}
	return defaultVal
}
