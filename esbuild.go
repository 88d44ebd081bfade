package cssmodules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/berlysia/cssmodules-in-js/internal/extract"
	"github.com/berlysia/cssmodules-in-js/internal/syntax"
)

// Namespace is the esbuild namespace of virtual CSS modules.
const Namespace = "cssmodules-in-js"

// BuildGraph records the virtual modules loaded by the current esbuild build.
// It implements ModuleGraph for HandleHotUpdate.
type BuildGraph struct {
	mu      sync.RWMutex
	modules map[string]struct{}
}

type buildModule string

func (m buildModule) ID() string { return string(m) }

// NewBuildGraph creates an empty graph.
func NewBuildGraph() *BuildGraph {
	return &BuildGraph{modules: make(map[string]struct{})}
}

// Add records a resolved module id.
func (g *BuildGraph) Add(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.modules[id] = struct{}{}
}

// Reset forgets every module; called when a build starts.
func (g *BuildGraph) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.modules = make(map[string]struct{})
}

// ModuleByID implements ModuleGraph.
func (g *BuildGraph) ModuleByID(id string) (Module, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.modules[id]; !ok {
		return nil, false
	}
	return buildModule(id), true
}

// IDs returns the recorded ids, sorted.
func (g *BuildGraph) IDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]string, 0, len(g.modules))
	for id := range g.modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BuildGraph returns the graph the esbuild plugin records loaded modules in.
func (p *Plugin) BuildGraph() *BuildGraph {
	return p.graph
}

// ESBuild returns an esbuild plugin that transforms component files and
// serves their virtual CSS modules through the local-css loader, so class
// names are scoped by esbuild.
func (p *Plugin) ESBuild() api.Plugin {
	return api.Plugin{
		Name: Name,
		Setup: func(build api.PluginBuild) {
			build.OnStart(func() (api.OnStartResult, error) {
				p.graph.Reset()
				return api.OnStartResult{}, nil
			})

			build.OnResolve(api.OnResolveOptions{Filter: "^" + regexp.QuoteMeta(extract.VirtualPrefix)},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{Path: args.Path, Namespace: Namespace}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: Namespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					resolved, _ := p.ResolveID(args.Path)
					content, _, err := p.Load(resolved)
					if err != nil {
						return api.OnLoadResult{}, err
					}
					p.graph.Add(resolved)
					return api.OnLoadResult{
						Contents:   &content,
						Loader:     api.LoaderLocalCSS,
						ResolveDir: filepath.Dir(strings.TrimPrefix(args.Path, extract.VirtualPrefix)),
					}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: extensionFilter(p.config.extensions()), Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					return p.loadComponent(args.Path)
				})
		},
	}
}

// loadComponent transforms a component file for esbuild. Files the plugin
// does not handle, and files without css blocks, are left to esbuild's own
// loaders.
func (p *Plugin) loadComponent(path string) (api.OnLoadResult, error) {
	if !p.config.Matches(path) {
		return api.OnLoadResult{}, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return api.OnLoadResult{}, fmt.Errorf("read %s: %w", path, err)
	}

	result, err := p.Transform(string(src), path)
	if err != nil {
		return api.OnLoadResult{Errors: []api.Message{Message(err)}}, nil
	}
	if result == nil || len(result.Artifacts) == 0 {
		return api.OnLoadResult{}, nil
	}

	return api.OnLoadResult{
		Contents:   &result.Code,
		Loader:     api.LoaderJS,
		ResolveDir: filepath.Dir(path),
		WatchFiles: []string{path},
	}, nil
}

// Message converts a transform failure into an esbuild message with location.
func Message(err error) api.Message {
	msg := api.Message{Text: err.Error()}

	var te *TransformError
	file := ""
	if errors.As(err, &te) {
		file = te.File
	}

	var xe *extract.Error
	var pe *syntax.ParseError
	switch {
	case errors.As(err, &xe):
		msg.Text = xe.Message()
		msg.ID = string(xe.Kind)
		if xe.Location.IsValid() {
			msg.Location = &api.Location{
				File:   file,
				Line:   xe.Location.Line,
				Column: xe.Location.Column - 1,
			}
		}
	case errors.As(err, &pe):
		msg.Text = pe.Message
		if pe.Line > 0 {
			msg.Location = &api.Location{
				File:   pe.File,
				Line:   pe.Line,
				Column: max(pe.Column-1, 0),
			}
		}
	}

	return msg
}

// extensionFilter builds the esbuild filter regexp for component suffixes.
func extensionFilter(exts []string) string {
	quoted := make([]string, len(exts))
	for i, ext := range exts {
		quoted[i] = regexp.QuoteMeta(ext)
	}
	return "(" + strings.Join(quoted, "|") + ")$"
}
