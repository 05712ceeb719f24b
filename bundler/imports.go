package bundler

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/rubiojr/templated/ast"
)

// DefaultIgnore lists require targets provided by the host environment.
var DefaultIgnore = []string{"@antiraid"}

// DefaultExtensions are the source extensions dropped from require paths
// and collected from input directories.
var DefaultExtensions = []string{".luau", ".lua"}

// PrefixIndex maps namespace prefixes to the module paths that own them.
// It is built once per run and only read afterwards.
type PrefixIndex struct {
	prefixes map[string]string
	exts     []string
}

// NewPrefixIndex indexes every module of set. exts lists the extensions
// stripped from require paths before they are converted to a prefix.
func NewPrefixIndex(set *ModuleSet, exts []string) *PrefixIndex {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	idx := &PrefixIndex{prefixes: make(map[string]string, set.Len()), exts: exts}
	for _, m := range set.Modules {
		idx.prefixes[m.Prefix()] = m.Path
	}
	return idx
}

// Resolve maps the argument of a require call made from the module at
// path from to the prefix of a bundled module.
func (idx *PrefixIndex) Resolve(from, target string) (string, bool) {
	if _, ok := idx.prefixes[target]; ok {
		return target, true
	}
	p := target
	relative := false
	if rest, ok := strings.CutPrefix(p, "@self/"); ok {
		p, relative = "./"+rest, true
	}
	if strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") {
		relative = true
	}
	if relative {
		p = path.Join(path.Dir(from), p)
	} else {
		p = path.Clean(strings.TrimPrefix(p, "/"))
	}
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", false
	}
	if ext := path.Ext(p); ext != "" && slices.Contains(idx.exts, ext) {
		p = strings.TrimSuffix(p, ext)
	}
	// Prefix drops the last dot segment, so append a placeholder extension.
	for _, candidate := range []string{p + ".x", p + "/init.x"} {
		prefix := Prefix(candidate)
		if _, ok := idx.prefixes[prefix]; ok {
			return prefix, true
		}
	}
	return "", false
}

// ignored reports whether target equals an entry or lies below it.
func ignored(ignore []string, target string) bool {
	for _, entry := range ignore {
		if target == entry || strings.HasPrefix(target, entry+"/") {
			return true
		}
	}
	return false
}

// requireCall reports whether e is a call of the bare global require.
func requireCall(e ast.Expr) (*ast.CallExpr, bool) {
	call, ok := e.(*ast.CallExpr)
	if !ok || call.Method != "" {
		return nil, false
	}
	name, ok := call.Func.(*ast.Name)
	if !ok || name.Name != "require" {
		return nil, false
	}
	return call, true
}

// ImportInliner validates every require call and replaces the ones that
// resolve to a bundled module with a reference to that module's namespace
// table. Calls whose target is on the ignore list are kept as written.
func ImportInliner(index *PrefixIndex, ignore []string) Rule {
	return Rule{
		name: "imports",
		expr: func(w *scopeWalker, e ast.Expr, depth int) (ast.Expr, error) {
			call, ok := requireCall(e)
			if !ok {
				return e, nil
			}
			if len(call.Args) != 1 {
				d := w.module.diagnostic(ArityError, call, "require() must have exactly one argument")
				d.Hint = fmt.Sprintf("found %d arguments", len(call.Args))
				return e, w.report(d)
			}
			lit, ok := call.Args[0].(*ast.String)
			if !ok {
				d := w.module.diagnostic(UnresolvedImport, call, "require() argument must be a string literal")
				return e, w.report(d)
			}
			if ignored(ignore, lit.Value) {
				return e, nil
			}
			prefix, ok := index.Resolve(w.module.Path, lit.Value)
			if !ok {
				d := w.module.diagnostic(UnresolvedImport, call, fmt.Sprintf("no bundled module matches %q", lit.Value))
				return e, w.report(d)
			}
			return &ast.Name{BaseExpr: ast.BaseExpr{Span: call.Span}, Name: prefix}, nil
		},
	}
}
