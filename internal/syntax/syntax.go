// Package syntax turns component source text into a JavaScript syntax tree and back.
//
// JavaScript is parsed directly with tdewolff's parser, which also resolves
// lexical scopes: every reference to a binding shares one *js.Var. Dialects the
// parser does not understand (TypeScript, JSX) are first lowered to plain ES
// modules with esbuild's transform API.
package syntax

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// JSXMode selects how JSX is lowered before parsing.
type JSXMode string

const (
	// JSXAutomatic emits react/jsx-runtime imports (React 17+ style).
	JSXAutomatic JSXMode = "automatic"
	// JSXTransform emits React.createElement calls.
	JSXTransform JSXMode = "transform"
)

// Options controls dialect lowering.
type Options struct {
	JSX             JSXMode // default: automatic
	JSXImportSource string  // default: react
}

// Tree is a parsed source file.
type Tree struct {
	ID      string
	AST     *js.AST
	Source  []byte // text the parser saw (lowered output for TS/JSX)
	Lowered bool

	smap     *sourceMap // nil when lowering produced no usable map
	original *lineIndex
	parsed   *lineIndex
}

// ParseError reports malformed source.
type ParseError struct {
	File    string
	Message string
	Line    int // 1-based, 0 when unknown
	Column  int // 1-based, 0 when unknown
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// loaders maps the suffixes that need lowering to esbuild loaders.
var loaders = map[string]api.Loader{
	".jsx": api.LoaderJSX,
	".ts":  api.LoaderTS,
	".tsx": api.LoaderTSX,
	".mts": api.LoaderTS,
	".cts": api.LoaderTS,
}

// NeedsLowering reports whether files with this id are lowered by esbuild before parsing.
func NeedsLowering(id string) bool {
	_, ok := loaders[strings.ToLower(filepath.Ext(id))]
	return ok
}

// Parse parses src, identified by id, into a Tree.
func Parse(src []byte, id string, opts Options) (*Tree, error) {
	tree := &Tree{ID: id, Source: src}

	if loader, ok := loaders[strings.ToLower(filepath.Ext(id))]; ok {
		lowered, smap, err := lower(src, id, loader, opts)
		if err != nil {
			return nil, err
		}
		tree.Source = lowered
		tree.Lowered = true
		tree.smap = smap
		tree.original = newLineIndex(src)
		tree.parsed = newLineIndex(lowered)
	}

	ast, err := js.Parse(parse.NewInputBytes(tree.Source), js.Options{})
	if err != nil {
		pe := &ParseError{File: id, Message: err.Error()}
		if perr, ok := err.(*parse.Error); ok {
			pe.Message = perr.Message
			if pos, ok := tree.OriginalPosition(Position{Line: perr.Line, Column: perr.Column}); ok {
				pe.Line = pos.Line
				pe.Column = pos.Column
			}
		}
		return nil, pe
	}
	tree.AST = ast

	return tree, nil
}

// OriginalPosition translates a position in Source to the text given to
// Parse. For lowered trees only positions with an exact source mapping
// translate; ok is false for the rest.
func (t *Tree) OriginalPosition(p Position) (Position, bool) {
	if !p.IsValid() {
		return Position{}, false
	}
	if !t.Lowered {
		return p, true
	}
	if t.smap == nil {
		return Position{}, false
	}

	genLine, ok := t.parsed.line(p.Line - 1)
	if !ok {
		return Position{}, false
	}
	line, col, ok := t.smap.lookup(p.Line-1, utf16Col(genLine, p.Column-1))
	if !ok {
		return Position{}, false
	}
	srcLine, ok := t.original.line(line)
	if !ok {
		return Position{}, false
	}
	col = byteCol(srcLine, col)
	return Position{
		Offset: t.original.starts[line] + col,
		Line:   line + 1,
		Column: col + 1,
	}, true
}

// lower strips types and compiles JSX so the result is plain ESM JavaScript.
func lower(src []byte, id string, loader api.Loader, opts Options) ([]byte, *sourceMap, error) {
	jsx := api.JSXAutomatic
	if opts.JSX == JSXTransform {
		jsx = api.JSXTransform
	}
	importSource := opts.JSXImportSource
	if importSource == "" {
		importSource = "react"
	}

	result := api.Transform(string(src), api.TransformOptions{
		Loader:          loader,
		Format:          api.FormatESModule,
		Target:          api.ESNext,
		JSX:             jsx,
		JSXImportSource: importSource,
		Charset:         api.CharsetUTF8,
		Sourcefile:      id,
		Sourcemap:       api.SourceMapExternal,
		SourcesContent:  api.SourcesContentExclude,
		LogLevel:        api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		msg := result.Errors[0]
		pe := &ParseError{File: id, Message: msg.Text}
		if msg.Location != nil {
			pe.Line = msg.Location.Line
			pe.Column = msg.Location.Column + 1
		}
		return nil, nil, pe
	}

	// a missing map only costs locations
	smap, _ := parseSourceMap(result.Map)
	return result.Code, smap, nil
}

// Print renders the tree back to JavaScript source.
func Print(tree *Tree) string {
	return tree.AST.JSString()
}
