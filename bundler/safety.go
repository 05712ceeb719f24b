package bundler

import (
	"fmt"

	"github.com/rubiojr/templated/ast"
)

func sideEffects(kind string) string {
	return fmt.Sprintf("%s may have side-effects and are as such not allowed at root level", kind)
}

func notYet(kind string) string {
	return fmt.Sprintf("%s at root level is not yet supported", kind)
}

func never(kind string) string {
	return fmt.Sprintf("%s at root level is not supported and will likely never be supported!", kind)
}

// rootHints maps every statement kind rejected at depth 0 to its hint.
// Kinds absent from the map are tolerated at the top level.
var rootHints = map[string]string{
	"Assignment":         "Assignment at root level would mutate state shared by every bundled module",
	"CompoundAssignment": "CompoundAssignment at root level would mutate state shared by every bundled module",
	"Do":                 "Do end may have side-effects and are as such not allowed at root level",
	"GenericFor":         sideEffects("GenericFor"),
	"If":                 sideEffects("If"),
	"While":              sideEffects("While"),
	"Repeat":             sideEffects("Repeat"),
	"LocalAssignment":    notYet("LocalAssignment"),
	"LocalFunction":      notYet("LocalFunction"),
	"MethodCall":         never("MethodCall"),
	"NumericFor":         never("NumericFor"),
	"Return":             never("Return"),
	"Break":              "Break outside of a loop is not valid once modules are merged",
	"Continue":           "Continue outside of a loop is not valid once modules are merged",
}

// RootScopeSafety rejects statements at the top level of a module that
// would not be safe once every module shares one top-level scope. It
// never changes the tree.
func RootScopeSafety() Rule {
	return Rule{
		name: "safety",
		stmt: func(w *scopeWalker, s ast.Stmt, depth int) (ast.Stmt, error) {
			if depth != 0 {
				return s, nil
			}
			kind := ast.StmtName(s)
			hint, banned := rootHints[kind]
			if !banned {
				return s, nil
			}
			d := w.module.diagnostic(SafetyViolation, s, kind+" at root level")
			d.Hint = hint
			return s, w.report(d)
		},
	}
}
