package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cssmodules "github.com/berlysia/cssmodules-in-js"
	"github.com/berlysia/cssmodules-in-js/internal/report"
	"github.com/berlysia/cssmodules-in-js/internal/syntax"
)

// resetKoanf creates a fresh koanf instance for each test.
func resetKoanf() {
	k = koanf.New(".")
}

func TestConfigFileLoading(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssmodules.yaml")
	configContent := `
tag: styled
verbose: true
jsx: transform

check:
  strict: true
  paths:
    - "app/**/*.tsx"

build:
  outdir: public
  minify: true

watch:
  debounce: 250ms
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	require.NoError(t, loadConfigFromPath(configPath))

	assert.Equal(t, "styled", k.String("tag"))
	assert.True(t, k.Bool("verbose"))
	assert.Equal(t, "transform", k.String("jsx"))
	assert.True(t, k.Bool("check.strict"))
	assert.Equal(t, []string{"app/**/*.tsx"}, k.Strings("check.paths"))
	assert.Equal(t, "public", k.String("build.outdir"))
	assert.True(t, k.Bool("build.minify"))
	assert.Equal(t, 250*time.Millisecond, getDurationWithFallback("debounce", "watch.debounce", time.Second))
}

func TestConfigFileNotFound_UsesDefaults(t *testing.T) {
	resetKoanf()

	// Point to non-existent config; should not error
	require.NoError(t, loadConfigFromPath("/nonexistent/.cssmodules.yaml"))

	assert.Equal(t, cssmodules.DefaultConfig(), buildPluginConfig())
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssmodules.yaml")
	configContent := `
tag: from-file
check:
  strict: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	// Set env vars that should override config file
	t.Setenv("CSSMODULES_TAG", "fromEnv")
	t.Setenv("CSSMODULES_CHECK_STRICT", "true")

	require.NoError(t, loadConfigFromPath(configPath))

	assert.Equal(t, "fromEnv", k.String("tag"))
	assert.True(t, k.Bool("check.strict"))
	assert.Equal(t, "fromEnv", buildPluginConfig().Tag)
}

func TestBuildPluginConfig_FromConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssmodules.yaml")
	configContent := `
tag: styled
extensions: [".tsx"]
include:
  - "src/**"
exclude:
  - "**/*.test.tsx"
jsx: transform
jsx-import-source: preact
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	require.NoError(t, loadConfigFromPath(configPath))

	assert.Equal(t, cssmodules.Config{
		Tag:             "styled",
		Extensions:      []string{".tsx"},
		Includes:        []string{"src/**"},
		Excludes:        []string{"**/*.test.tsx"},
		JSX:             syntax.JSXTransform,
		JSXImportSource: "preact",
	}, buildPluginConfig())
}

func TestBuildCheckConfig_Defaults(t *testing.T) {
	resetKoanf()

	config := buildCheckConfig(nil)
	assert.Equal(t, ".", config.Dir)
	assert.Equal(t, defaultCheckPaths, config.Paths)
	assert.False(t, config.Strict)
	assert.Equal(t, report.Config{PrintIssuedLines: true, PrintLinterName: true}, config.Report)
}

func TestBuildCheckConfig_FromConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssmodules.yaml")
	configContent := `
check:
  strict: true
  paths:
    - "src/**/*.tsx"
  max-issues-per-linter: 10
  print-lines: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	require.NoError(t, loadConfigFromPath(configPath))

	config := buildCheckConfig(nil)
	assert.True(t, config.Strict)
	assert.Equal(t, []string{"src/**/*.tsx"}, config.Paths)
	assert.Equal(t, 10, config.Report.MaxIssuesPerLinter)
	assert.False(t, config.Report.PrintIssuedLines)

	// positional patterns win
	assert.Equal(t, []string{"lib/**/*.js"}, buildCheckConfig([]string{"lib/**/*.js"}).Paths)
}

func TestGetStringWithFallback(t *testing.T) {
	resetKoanf()

	// No keys set - should return default
	assert.Equal(t, "default", getStringWithFallback("flag-key", "config.key", "default"))
}

func TestGetStringsWithFallback(t *testing.T) {
	resetKoanf()

	assert.Equal(t, []string{"a"}, getStringsWithFallback("flag-key", "config.key", []string{"a"}))
	assert.Nil(t, getStringsWithFallback("flag-key", "config.key", nil))
}

func TestGetBoolWithFallback(t *testing.T) {
	resetKoanf()

	// No keys set - should return default
	assert.False(t, getBoolWithFallback("flag-key", "config.key", false))
	assert.True(t, getBoolWithFallback("flag-key", "config.key", true))
}

func TestGetIntWithFallback(t *testing.T) {
	resetKoanf()

	// No keys set - should return default
	assert.Equal(t, 42, getIntWithFallback("flag-key", "config.key", 42))
}

func TestGetDurationWithFallback(t *testing.T) {
	resetKoanf()

	assert.Equal(t, time.Second, getDurationWithFallback("flag-key", "config.key", time.Second))
}
