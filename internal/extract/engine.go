// Package extract finds css tagged templates in a syntax tree, hoists each
// into a CSS module and rewrites the tree to import it back.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tdewolff/parse/v2/js"

	"github.com/berlysia/cssmodules-in-js/internal/syntax"
)

const (
	// DefaultTag is the tag identifier recognized when Options.Tag is empty.
	DefaultTag = "css"
	// VirtualPrefix marks generated module ids.
	VirtualPrefix = "virtual:css-modules$"
	// VirtualSuffix is appended to every generated module id.
	VirtualSuffix = ".module.css"
)

var componentExt = regexp.MustCompile(`\.[jt]sx?$`)

// Options configures extraction.
type Options struct {
	Tag string
}

// Artifact is one hoisted CSS block.
type Artifact struct {
	ID           string
	Content      string
	VariableName string
	MangledName  string
	Location     syntax.Position
}

// Result is the outcome of one extraction.
type Result struct {
	Artifacts []Artifact
	Hoisted   []Hoisted
	Plan      Plan
}

// ModuleID builds the id of the index-th artifact of fileID.
func ModuleID(fileID string, index int) string {
	return fmt.Sprintf("%s%s-%d%s", VirtualPrefix, componentExt.ReplaceAllString(fileID, ""), index, VirtualSuffix)
}

// Extract analyzes tree and applies the resulting plan. On error the tree is
// left as parsed.
func Extract(tree *syntax.Tree, fileID string, opts Options) (*Result, error) {
	result, err := Analyze(tree, fileID, opts)
	if err != nil {
		return nil, err
	}
	if err := Apply(tree, result.Plan); err != nil {
		return nil, err
	}
	return result, nil
}

// Analyze walks tree once and computes artifacts and the edit plan without
// modifying the tree.
func Analyze(tree *syntax.Tree, fileID string, opts Options) (*Result, error) {
	tag := opts.Tag
	if tag == "" {
		tag = DefaultTag
	}

	x := &extractor{
		tag:     tag,
		fileID:  fileID,
		ledger:  NewLedger(declaredNames(tree)),
		sites:   originalSites(tree, tag),
		renamed: make(map[*js.Var]string),
		program: &tree.AST.BlockStmt,
	}
	js.Walk(x, &tree.AST.BlockStmt)
	if x.err != nil {
		return nil, x.err
	}

	hoisted := x.ledger.Hoisted()
	plan := x.plan
	for _, h := range hoisted {
		plan = append(plan, InsertImport{Local: h.MangledName, Source: h.ModuleID})
	}

	return &Result{
		Artifacts: x.artifacts,
		Hoisted:   hoisted,
		Plan:      plan,
	}, nil
}

// originalSites locates tag sites in the text the tree was parsed from. Sites
// of lowered files that cannot be mapped back stay unresolved.
func originalSites(tree *syntax.Tree, tag string) []syntax.Position {
	sites := syntax.TagSites(tree.Source, tag)
	for i, site := range sites {
		sites[i], _ = tree.OriginalPosition(site)
	}
	return sites
}

// extractor is the traversal state of one Analyze call.
type extractor struct {
	tag     string
	fileID  string
	ledger  *Ledger
	sites   []syntax.Position
	visited int
	program *js.BlockStmt

	stack     []js.INode
	renamed   map[*js.Var]string
	plan      Plan
	artifacts []Artifact
	err       error
}

func (x *extractor) Enter(n js.INode) js.IVisitor {
	if x.err != nil {
		return nil
	}
	x.stack = append(x.stack, n)

	if tmpl, ok := n.(*js.TemplateExpr); ok && x.isTag(tmpl) {
		loc := x.nextSite()
		if err := x.extract(tmpl, loc); err != nil {
			x.err = err
			x.stack = x.stack[:len(x.stack)-1]
			return nil
		}
	}
	return x
}

func (x *extractor) Exit(js.INode) {
	x.stack = x.stack[:len(x.stack)-1]
}

func (x *extractor) isTag(tmpl *js.TemplateExpr) bool {
	v, ok := tmpl.Tag.(*js.Var)
	return ok && string(v.Name()) == x.tag
}

// nextSite pairs tagged templates with lexer sites; both are in source order.
func (x *extractor) nextSite() syntax.Position {
	var loc syntax.Position
	if x.visited < len(x.sites) {
		loc = x.sites[x.visited]
	}
	x.visited++
	return loc
}

// ancestor returns the node depth levels above the current one.
func (x *extractor) ancestor(depth int) (js.INode, int) {
	i := len(x.stack) - 1 - depth
	if i < 0 {
		return nil, -1
	}
	return x.stack[i], i
}

func (x *extractor) extract(tmpl *js.TemplateExpr, loc syntax.Position) error {
	// Loop check stops at the nearest function boundary
	if err := x.checkLoop(loc); err != nil {
		return err
	}

	decl, declIdx, binding, err := x.declarator(tmpl, loc)
	if err != nil {
		return err
	}
	block, err := x.container(decl, declIdx, binding, loc)
	if err != nil {
		return err
	}

	content, bad := templateContent(tmpl)
	if bad != nil {
		return newError(KindDynamicContent, loc, "%s", nodeJS(bad))
	}

	owner := root(binding)
	if prev, ok := x.renamed[owner]; ok {
		return newError(KindDuplicateName, loc, "%s is extracted twice (already renamed to %s)", binding.Name(), prev)
	}

	original := string(binding.Name())
	mangled, err := x.ledger.Mangle(original)
	if err != nil {
		return newError(KindDuplicateName, loc, "%v", err)
	}
	x.renamed[owner] = mangled

	id := ModuleID(x.fileID, x.ledger.Len())
	x.ledger.Hoist(Hoisted{
		OriginalName: original,
		MangledName:  mangled,
		Content:      content,
		ModuleID:     id,
	})

	x.plan = append(x.plan,
		RenameBinding{Binding: binding, From: original, To: mangled},
		RemoveDeclarator{Block: block, Decl: decl, Binding: binding, Name: original},
	)
	if block == x.program {
		x.plan = append(x.plan, x.exportRenames(original, mangled)...)
	}
	x.artifacts = append(x.artifacts, Artifact{
		ID:           id,
		Content:      content,
		VariableName: original,
		MangledName:  mangled,
		Location:     loc,
	})

	return nil
}

// exportRenames plans edits for `export { name }` lists naming a top-level
// binding. Export specifiers hold raw names, not scope variables.
func (x *extractor) exportRenames(original, mangled string) Plan {
	var plan Plan
	for _, stmt := range x.program.List {
		exp, ok := stmt.(*js.ExportStmt)
		if !ok || exp.Decl != nil || exp.Module != nil {
			continue
		}
		for i, alias := range exp.List {
			if string(localName(alias)) == original {
				plan = append(plan, RenameExport{Stmt: exp, Index: i, From: original, To: mangled})
			}
		}
	}
	return plan
}

func (x *extractor) checkLoop(loc syntax.Position) error {
	for i := len(x.stack) - 2; i >= 0; i-- {
		switch x.stack[i].(type) {
		case *js.ForStmt, *js.ForInStmt, *js.ForOfStmt, *js.WhileStmt, *js.DoWhileStmt:
			return newError(KindLoopUsage, loc, "")
		case *js.FuncDecl, *js.ArrowFunc, *js.MethodDecl:
			return nil
		}
	}
	return nil
}

// declarator finds the `name = css` declarator that directly holds tmpl.
func (x *extractor) declarator(tmpl *js.TemplateExpr, loc syntax.Position) (*js.VarDecl, int, *js.Var, error) {
	var (
		decl    *js.VarDecl
		declIdx int
		elem    *js.BindingElement
	)

	parent, _ := x.ancestor(1)
	switch p := parent.(type) {
	case *js.BindingElement:
		// the walker visits declarators as nodes of their own
		if d, i := x.ancestor(2); d != nil {
			if vd, ok := d.(*js.VarDecl); ok {
				decl, declIdx, elem = vd, i, p
			}
		}
	case *js.VarDecl:
		_, declIdx = x.ancestor(1)
		decl = p
		for i := range p.List {
			if p.List[i].Default == js.IExpr(tmpl) {
				elem = &p.List[i]
				break
			}
		}
	}

	if decl == nil || elem == nil || elem.Default != js.IExpr(tmpl) {
		return nil, 0, nil, newError(KindInvalidScope, loc, "")
	}
	binding, ok := elem.Binding.(*js.Var)
	if !ok {
		return nil, 0, nil, newError(KindInvalidScope, loc, "the target must be a plain identifier, not a destructuring pattern")
	}
	return decl, declIdx, binding, nil
}

// container returns the statement list that holds decl.
func (x *extractor) container(decl *js.VarDecl, declIdx int, binding *js.Var, loc syntax.Position) (*js.BlockStmt, error) {
	if declIdx < 1 {
		return nil, newError(KindInternalInvariant, loc, "failed to find parent variable declaration of %s", binding.Name())
	}

	switch p := x.stack[declIdx-1].(type) {
	case *js.BlockStmt:
		for _, stmt := range p.List {
			if stmt == js.IStmt(decl) {
				return p, nil
			}
		}
		return nil, newError(KindInternalInvariant, loc, "failed to find parent variable declaration of %s", binding.Name())
	case *js.ExportStmt:
		return nil, newError(KindInvalidScope, loc, "exported declarations cannot be hoisted")
	default:
		return nil, newError(KindInvalidScope, loc, "the declaration must be a statement of its own block")
	}
}

// declaredNames collects every identifier the tree mentions, so mangled
// names never capture or shadow an existing binding.
func declaredNames(tree *syntax.Tree) []string {
	c := &nameCollector{seen: make(map[string]struct{})}
	js.Walk(c, &tree.AST.BlockStmt)
	return c.names
}

type nameCollector struct {
	seen  map[string]struct{}
	names []string
}

func (c *nameCollector) add(name []byte) {
	if len(name) == 0 {
		return
	}
	if _, ok := c.seen[string(name)]; ok {
		return
	}
	c.seen[string(name)] = struct{}{}
	c.names = append(c.names, string(name))
}

func (c *nameCollector) Enter(n js.INode) js.IVisitor {
	switch n := n.(type) {
	case *js.Var:
		c.add(n.Name())
	case *js.ImportStmt:
		c.add(n.Default)
		for _, alias := range n.List {
			c.add(alias.Binding)
		}
	}
	return c
}

func (c *nameCollector) Exit(js.INode) {}

func nodeJS(n js.INode) string {
	var sb strings.Builder
	n.JS(&sb)
	return sb.String()
}
