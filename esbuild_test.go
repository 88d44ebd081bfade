package cssmodules

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berlysia/cssmodules-in-js/internal/extract"
	"github.com/berlysia/cssmodules-in-js/internal/syntax"
)

func buildProject(t *testing.T, p *Plugin, dir, entry string) api.BuildResult {
	t.Helper()
	return api.Build(api.BuildOptions{
		EntryPoints: []string{filepath.Join(dir, entry)},
		Bundle:      true,
		Write:       false,
		Outdir:      filepath.Join(dir, "dist"),
		Format:      api.FormatESModule,
		LogLevel:    api.LogLevelSilent,
		Plugins:     []api.Plugin{p.ESBuild()},
	})
}

func outputFile(t *testing.T, result api.BuildResult, suffix string) string {
	t.Helper()
	for _, f := range result.OutputFiles {
		if strings.HasSuffix(f.Path, suffix) {
			return string(f.Contents)
		}
	}
	t.Fatalf("no output file with suffix %s", suffix)
	return ""
}

func TestESBuild_BundlesCSSModules(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"src/main.ts": `import { buttonClass } from "./button";
console.log(buttonClass);
`,
		"src/button.ts": "export function buttonClass(primary: boolean): string {\n" +
			"  const styles = css`\n    .button { padding: 8px 16px; }\n    .primary { color: white; }\n  `;\n" +
			"  return primary ? styles.primary : styles.button;\n" +
			"}\n",
	})

	p := New(DefaultConfig())
	result := buildProject(t, p, dir, "src/main.ts")
	require.Empty(t, result.Errors)

	js := outputFile(t, result, ".js")
	assert.NotContains(t, js, "css`")

	styles := outputFile(t, result, ".css")
	assert.Contains(t, styles, "padding: 8px 16px")
	assert.Contains(t, styles, "color: white")

	button := filepath.Join(dir, "src", "button.ts")
	id := "virtual:css-modules$" + strings.TrimSuffix(button, ".ts") + "-0.module.css"
	assert.Equal(t, []string{"\x00" + id}, p.BuildGraph().IDs())

	updates, ok := p.HandleHotUpdate(button, p.BuildGraph())
	require.True(t, ok)
	require.Len(t, updates, 1)
	assert.Equal(t, "\x00"+id, updates[0].ID())
}

func TestESBuild_ReportsTransformErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"src/main.js": "for (const n of [1, 2]) {\n  const s = css`.a { order: 1; }`;\n  console.log(s.a);\n}\n",
	})

	p := New(DefaultConfig())
	result := buildProject(t, p, dir, "src/main.js")
	require.Len(t, result.Errors, 1)

	msg := result.Errors[0]
	assert.Equal(t, "css tag cannot be used inside a loop", msg.Text)
	require.NotNil(t, msg.Location)
	assert.Equal(t, 2, msg.Location.Line)
	assert.Equal(t, 12, msg.Location.Column)
}

func TestESBuild_LeavesPlainFilesAlone(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"src/main.ts": "const answer: number = 42;\nconsole.log(answer);\n",
	})

	p := New(DefaultConfig())
	result := buildProject(t, p, dir, "src/main.ts")
	require.Empty(t, result.Errors)
	assert.Contains(t, outputFile(t, result, ".js"), "42")
	assert.Empty(t, p.BuildGraph().IDs())
}

func TestBuildGraph(t *testing.T) {
	g := NewBuildGraph()

	_, ok := g.ModuleByID("\x00virtual:css-modules$/a-0.module.css")
	assert.False(t, ok)

	g.Add("\x00virtual:css-modules$/b-0.module.css")
	g.Add("\x00virtual:css-modules$/a-0.module.css")
	assert.Equal(t, []string{"\x00virtual:css-modules$/a-0.module.css", "\x00virtual:css-modules$/b-0.module.css"}, g.IDs())

	m, ok := g.ModuleByID("\x00virtual:css-modules$/a-0.module.css")
	require.True(t, ok)
	assert.Equal(t, "\x00virtual:css-modules$/a-0.module.css", m.ID())

	g.Reset()
	assert.Empty(t, g.IDs())
}

func TestMessage(t *testing.T) {
	t.Run("extraction error", func(t *testing.T) {
		err := &TransformError{
			File: "/src/a.js",
			Err:  &extract.Error{Kind: extract.KindInvalidScope, Location: syntax.Position{Line: 3, Column: 7}},
		}
		msg := Message(err)
		assert.Equal(t, "css tagged template literals must be assigned to a variable", msg.Text)
		assert.Equal(t, "INVALID_SCOPE", msg.ID)
		require.NotNil(t, msg.Location)
		assert.Equal(t, api.Location{File: "/src/a.js", Line: 3, Column: 6}, *msg.Location)
	})

	t.Run("parse error", func(t *testing.T) {
		err := &TransformError{
			File: "/src/a.ts",
			Err:  &syntax.ParseError{File: "/src/a.ts", Message: "Unexpected \";\"", Line: 1, Column: 16},
		}
		msg := Message(err)
		assert.Equal(t, "Unexpected \";\"", msg.Text)
		require.NotNil(t, msg.Location)
		assert.Equal(t, 15, msg.Location.Column)
	})

	t.Run("other error", func(t *testing.T) {
		msg := Message(errors.New("boom"))
		assert.Equal(t, "boom", msg.Text)
		assert.Nil(t, msg.Location)
	})
}

func TestExtensionFilter(t *testing.T) {
	assert.Equal(t, `(\.js|\.tsx)$`, extensionFilter([]string{".js", ".tsx"}))
}
