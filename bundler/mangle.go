package bundler

import (
	"log/slog"

	"github.com/rubiojr/templated/ast"
)

// TopLevelMangler moves every function declared at the top level of a
// module into the module's namespace table:
//
//	function foo.bar:baz()  ->  function dir__file.foo.bar:baz()
//
// Declarations at depth >= 1 are left as written.
func TopLevelMangler() Rule {
	return Rule{
		name: "mangle",
		stmt: func(w *scopeWalker, s ast.Stmt, depth int) (ast.Stmt, error) {
			fd, ok := s.(*ast.FunctionDecl)
			if !ok || depth != 0 {
				return s, nil
			}
			prefix := w.module.Prefix()
			name := fd.Name
			name.Parts = append([]string{prefix}, fd.Name.Parts...)

			slog.Debug("adding function to bundle", "module", w.module.Path, "function", fd.Name.String(), "mangled", name.String())
			w.exports = append(w.exports, Export{Name: fd.Name.String(), Mangled: name.String()})

			cp := *fd
			cp.Name = name
			return &cp, nil
		},
	}
}
