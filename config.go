package cssmodules

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/berlysia/cssmodules-in-js/internal/extract"
	"github.com/berlysia/cssmodules-in-js/internal/syntax"
)

// Config holds transform configuration
type Config struct {
	Tag             string         // Tag identifier recognized as CSS ("css")
	Extensions      []string       // Component suffixes handled by Transform
	Includes        []string       // Optional globs; when set, ids must match one
	Excludes        []string       // Globs of ids never transformed
	JSX             syntax.JSXMode // "automatic" (default) or "transform"
	JSXImportSource string         // Module providing the automatic JSX runtime ("react")
}

// DefaultExtensions are the component suffixes transformed when
// Config.Extensions is empty.
var DefaultExtensions = []string{".js", ".jsx", ".ts", ".tsx"}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Tag:             extract.DefaultTag,
		Extensions:      append([]string(nil), DefaultExtensions...),
		Excludes:        []string{"**/node_modules/**"},
		JSX:             syntax.JSXAutomatic,
		JSXImportSource: "react",
	}
}

func (c Config) tag() string {
	if c.Tag == "" {
		return extract.DefaultTag
	}
	return c.Tag
}

func (c Config) extensions() []string {
	if len(c.Extensions) == 0 {
		return DefaultExtensions
	}
	return c.Extensions
}

func (c Config) syntaxOptions() syntax.Options {
	return syntax.Options{JSX: c.JSX, JSXImportSource: c.JSXImportSource}
}

// Matches reports whether the file id is transformed: its suffix must be one
// of the configured extensions, it must match an include glob when includes
// are set, and it must not match any exclude glob.
func (c Config) Matches(id string) bool {
	if !c.hasExtension(id) {
		return false
	}
	if len(c.Includes) > 0 && !matchAny(c.Includes, id) {
		return false
	}
	return !matchAny(c.Excludes, id)
}

func (c Config) hasExtension(id string) bool {
	for _, ext := range c.extensions() {
		if strings.HasSuffix(id, ext) {
			return true
		}
	}
	return false
}

// matchAny matches id against doublestar globs. Absolute ids are also tried
// without their leading slash so relative patterns like src/** apply.
func matchAny(patterns []string, id string) bool {
	id = filepath.ToSlash(id)
	candidates := []string{id}
	if trimmed := strings.TrimPrefix(id, "/"); trimmed != id {
		candidates = append(candidates, trimmed)
	}

	for _, pattern := range patterns {
		for _, candidate := range candidates {
			if ok, err := doublestar.Match(pattern, candidate); err == nil && ok {
				return true
			}
		}
	}
	return false
}
