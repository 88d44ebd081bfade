package cssmodules

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/berlysia/cssmodules-in-js/internal/cssmod"
	"github.com/berlysia/cssmodules-in-js/internal/extract"
	"github.com/berlysia/cssmodules-in-js/internal/registry"
	"github.com/berlysia/cssmodules-in-js/internal/syntax"
)

// Name identifies the plugin to hosts.
const Name = "cssmodules-in-js"

// resolvedPrefix marks a virtual id as resolved so hosts leave it alone.
const resolvedPrefix = "\x00"

// Position is a 1-based line/column location in the source a file was
// transformed from.
type Position = syntax.Position

// ErrArtifactNotFound is wrapped by every *ArtifactNotFoundError.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactNotFoundError is returned by Load for a virtual id with no content.
type ArtifactNotFoundError struct {
	ID string
}

func (e *ArtifactNotFoundError) Error() string {
	return "virtual module not found: " + e.ID
}

func (e *ArtifactNotFoundError) Unwrap() error {
	return ErrArtifactNotFound
}

// TransformError wraps a parse or extraction failure with the file it came from.
type TransformError struct {
	File string
	Err  error
}

func (e *TransformError) Error() string {
	var pe *syntax.ParseError
	if errors.As(e.Err, &pe) {
		return pe.Error()
	}
	var xe *extract.Error
	if errors.As(e.Err, &xe) && xe.Location.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s (%s)", e.File, xe.Location.Line, xe.Location.Column, xe.Message(), xe.Kind)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// Artifact is one generated CSS module of a transformed file.
type Artifact struct {
	ID           string
	Content      string
	VariableName string
	MangledName  string
	Location     Position
	Classes      []string // class selectors defined by Content
	CSSError     error    // first grammar error in Content, nil when well-formed
}

// TransformResult is the output of a successful transform.
type TransformResult struct {
	Code      string
	Map       string // always empty
	Artifacts []Artifact
}

// Module is a host module graph entry.
type Module interface {
	ID() string
}

// ModuleGraph looks up host modules by resolved id.
type ModuleGraph interface {
	ModuleByID(id string) (Module, bool)
}

// Plugin adapts the extraction engine to a bundler's resolve/load/transform
// hooks. A Plugin is safe for concurrent use; transforms of one file must not
// run concurrently with each other.
type Plugin struct {
	config   Config
	registry *registry.Registry
	logger   *slog.Logger
	graph    *BuildGraph

	mu   sync.RWMutex
	tags map[string][]Artifact // per-file artifacts of the last successful transform
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithRegistry makes the plugin store artifacts in r instead of a fresh registry.
func WithRegistry(r *registry.Registry) Option {
	return func(p *Plugin) {
		p.registry = r
	}
}

// WithLogger sets the logger for transform failures and hot updates.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// New creates a plugin.
func New(config Config, opts ...Option) *Plugin {
	p := &Plugin{
		config: config,
		graph:  NewBuildGraph(),
		tags:   make(map[string][]Artifact),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = registry.New()
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

// Registry returns the registry the plugin writes to.
func (p *Plugin) Registry() *registry.Registry {
	return p.registry
}

// Config returns the plugin configuration.
func (p *Plugin) Config() Config {
	return p.config
}

// Transform rewrites code, identified by id, hoisting every css block into a
// virtual CSS module. It returns nil, nil for ids the plugin does not handle.
// On success the file's registry entries are replaced; on failure they are
// left as they were.
func (p *Plugin) Transform(code, id string) (*TransformResult, error) {
	if !p.config.Matches(id) {
		return nil, nil
	}

	tree, err := syntax.Parse([]byte(code), id, p.config.syntaxOptions())
	if err != nil {
		return nil, p.fail(id, err)
	}

	result, err := extract.Extract(tree, id, extract.Options{Tag: p.config.tag()})
	if err != nil {
		return nil, p.fail(id, err)
	}

	artifacts := make([]Artifact, len(result.Artifacts))
	modules := make([]registry.Module, len(result.Artifacts))
	for i, a := range result.Artifacts {
		info := cssmod.Inspect(a.Content)
		artifacts[i] = Artifact{
			ID:           a.ID,
			Content:      a.Content,
			VariableName: a.VariableName,
			MangledName:  a.MangledName,
			Location:     a.Location,
			Classes:      info.Classes,
			CSSError:     info.Err,
		}
		modules[i] = registry.Module{ID: a.ID, Content: a.Content}
	}

	p.mu.Lock()
	p.registry.Put(id, modules)
	p.tags[id] = artifacts
	p.mu.Unlock()

	if len(artifacts) > 0 {
		p.logger.Debug("transformed", "file", id, "modules", len(artifacts))
	}

	return &TransformResult{
		Code:      syntax.Print(tree),
		Artifacts: artifacts,
	}, nil
}

func (p *Plugin) fail(id string, err error) error {
	p.logger.Warn("transform failed", "file", id, "error", err)
	return &TransformError{File: id, Err: err}
}

// Artifacts returns the artifacts recorded for file by its last successful transform.
func (p *Plugin) Artifacts(file string) ([]Artifact, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	artifacts, ok := p.tags[file]
	return artifacts, ok
}

// Forget drops everything recorded for file, for example after it was deleted.
func (p *Plugin) Forget(file string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registry.Clear(file)
	delete(p.tags, file)
}

// ResolveID claims virtual module ids and returns their opaque resolved form.
func (p *Plugin) ResolveID(id string) (string, bool) {
	if !strings.HasPrefix(id, extract.VirtualPrefix) {
		return "", false
	}
	return resolvedPrefix + id, true
}

// Load returns the CSS text of a resolved virtual id. handled is false for ids
// the plugin did not resolve.
func (p *Plugin) Load(id string) (content string, handled bool, err error) {
	if !strings.HasPrefix(id, resolvedPrefix+extract.VirtualPrefix) {
		return "", false, nil
	}

	virtualID := strings.TrimPrefix(id, resolvedPrefix)
	content, ok := p.registry.Get(virtualID)
	if !ok {
		return "", true, &ArtifactNotFoundError{ID: virtualID}
	}
	return content, true, nil
}

// HandleHotUpdate returns the host modules to reload after file changed.
// ok is false when there is nothing to do: the file was never transformed,
// owns no modules, or the host graph tracks none of them.
func (p *Plugin) HandleHotUpdate(file string, graph ModuleGraph) (updates []Module, ok bool) {
	if graph == nil {
		return nil, false
	}

	p.mu.RLock()
	_, known := p.tags[file]
	ids := p.registry.IDsFor(file)
	p.mu.RUnlock()
	if !known || len(ids) == 0 {
		return nil, false
	}

	for _, id := range ids {
		if m, found := graph.ModuleByID(resolvedPrefix + id); found {
			updates = append(updates, m)
		}
	}
	if len(updates) == 0 {
		return nil, false
	}

	p.logger.Debug("hot update", "file", file, "modules", len(updates))
	return updates, true
}
