package extract

import (
	"fmt"
	"strconv"

	"github.com/tdewolff/parse/v2/js"

	"github.com/berlysia/cssmodules-in-js/internal/syntax"
)

// Edit is one declarative change to a syntax tree. Edits are computed by a
// read-only traversal and executed by Apply.
type Edit interface {
	fmt.Stringer
	edit()
}

// Plan is an ordered list of edits.
type Plan []Edit

// RenameBinding renames a binding and, through the shared scope variable,
// every reference resolved to it.
type RenameBinding struct {
	Binding *js.Var
	From    string
	To      string
}

// RemoveDeclarator drops the declarator of Binding from Decl. The whole
// statement is dropped from Block when it has no declarators left.
type RemoveDeclarator struct {
	Block   *js.BlockStmt
	Decl    *js.VarDecl
	Binding *js.Var
	Name    string
}

// RenameExport points the Index-th specifier of a local export list at the
// renamed binding, keeping the exported name.
type RenameExport struct {
	Stmt  *js.ExportStmt
	Index int
	From  string
	To    string
}

// InsertImport adds `import Local from "Source"` at the top of the program.
type InsertImport struct {
	Local  string
	Source string
}

func (RenameBinding) edit()    {}
func (RemoveDeclarator) edit() {}
func (RenameExport) edit()     {}
func (InsertImport) edit()     {}

func (e RenameBinding) String() string {
	return fmt.Sprintf("rename %s -> %s", e.From, e.To)
}

func (e RemoveDeclarator) String() string {
	return fmt.Sprintf("remove %s", e.Name)
}

func (e RenameExport) String() string {
	return fmt.Sprintf("export %s as %s", e.To, exportedName(e.Stmt.List[e.Index]))
}

func (e InsertImport) String() string {
	return fmt.Sprintf("import %s from %s", e.Local, strconv.Quote(e.Source))
}

// Strings renders the plan, one edit per entry.
func (p Plan) Strings() []string {
	out := make([]string, len(p))
	for i, e := range p {
		out[i] = e.String()
	}
	return out
}

// Apply executes plan against tree. Renames run first, then removals, then
// all imports are prepended in plan order. Statement lists are replaced with
// fresh slices rather than shifted in place.
func Apply(tree *syntax.Tree, plan Plan) error {
	var imports []js.IStmt

	for _, e := range plan {
		switch e := e.(type) {
		case RenameBinding:
			root(e.Binding).Data = []byte(e.To)
		case RenameExport:
			alias := &e.Stmt.List[e.Index]
			alias.Name, alias.Binding = []byte(e.To), exportedName(*alias)
		case RemoveDeclarator:
			// removals are applied below, after every rename resolved
		case InsertImport:
			imports = append(imports, &js.ImportStmt{
				Default: []byte(e.Local),
				Module:  []byte(strconv.Quote(e.Source)),
			})
		default:
			return newError(KindInternalInvariant, syntax.Position{}, "unknown edit %T", e)
		}
	}

	for _, e := range plan {
		if rm, ok := e.(RemoveDeclarator); ok {
			if err := removeDeclarator(rm); err != nil {
				return err
			}
		}
	}

	if len(imports) > 0 {
		body := make([]js.IStmt, 0, len(imports)+len(tree.AST.List))
		body = append(body, imports...)
		body = append(body, tree.AST.List...)
		tree.AST.List = body
	}

	return nil
}

func removeDeclarator(rm RemoveDeclarator) error {
	stmtIdx := -1
	for i, stmt := range rm.Block.List {
		if stmt == js.IStmt(rm.Decl) {
			stmtIdx = i
			break
		}
	}
	if stmtIdx < 0 {
		return newError(KindInternalInvariant, syntax.Position{},
			"failed to find parent variable declaration of %s", rm.Name)
	}

	kept := make([]js.BindingElement, 0, len(rm.Decl.List))
	found := false
	for _, elem := range rm.Decl.List {
		if v, ok := elem.Binding.(*js.Var); ok && v == rm.Binding {
			found = true
			continue
		}
		kept = append(kept, elem)
	}
	if !found {
		return newError(KindInternalInvariant, syntax.Position{},
			"declarator %s is not part of its declaration", rm.Name)
	}

	if len(kept) > 0 {
		rm.Decl.List = kept
		return nil
	}

	list := make([]js.IStmt, 0, len(rm.Block.List)-1)
	list = append(list, rm.Block.List[:stmtIdx]...)
	list = append(list, rm.Block.List[stmtIdx+1:]...)
	rm.Block.List = list
	return nil
}

// localName is the binding an export specifier refers to.
func localName(alias js.Alias) []byte {
	if alias.Name != nil {
		return alias.Name
	}
	return alias.Binding
}

// exportedName is the name a specifier is visible as to importers.
func exportedName(alias js.Alias) []byte {
	return alias.Binding
}

// root follows scope links to the variable that owns the name.
func root(v *js.Var) *js.Var {
	for v.Link != nil {
		v = v.Link
	}
	return v
}
