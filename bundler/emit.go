package bundler

import (
	"fmt"
	"strings"

	"github.com/rubiojr/templated/ast"
	"github.com/rubiojr/templated/parser"
)

// EmitOptions configures the combined output.
type EmitOptions struct {
	Tool    string // defaults to "templated"
	Version string
	// Entry is the path or prefix of the module whose namespace table the
	// bundle returns. Empty means the bundle returns nothing.
	Entry string
}

const bundleName = "<bundle>"

// maxModules is the number of namespace tables one bundle can declare:
// Luau allows at most 200 locals in a function, the main chunk included.
const maxModules = 200

// Emit serializes set as one Luau module: a header, one namespace table
// per module, then every module body in set order.
func Emit(set *ModuleSet, opts EmitOptions) (string, error) {
	tool := opts.Tool
	if tool == "" {
		tool = "templated"
	}
	if set.Len() > maxModules {
		return "", fmt.Errorf("bundle has %d modules, Luau allows at most %d locals in one scope", set.Len(), maxModules)
	}
	entry := ""
	if opts.Entry != "" {
		m, ok := findEntry(set, opts.Entry)
		if !ok {
			return "", fmt.Errorf("entry module %q is not part of the bundle", opts.Entry)
		}
		entry = m.Prefix()
	}

	var sb strings.Builder
	sb.WriteString("-- Bundled by " + tool)
	if opts.Version != "" {
		sb.WriteString(" " + opts.Version)
	}
	sb.WriteString("\n")
	for _, m := range set.Modules {
		fmt.Fprintf(&sb, "local %s = {}\n", m.Prefix())
	}
	for _, m := range set.Modules {
		fmt.Fprintf(&sb, "\n-- %s\n", m.Path)
		sb.WriteString(ast.Print(m.Chunk))
	}
	if entry != "" {
		fmt.Fprintf(&sb, "\nreturn %s\n", entry)
	}

	out := sb.String()
	if _, err := parser.Parse(bundleName, out); err != nil {
		return "", &InternalError{Path: bundleName, Pass: "emit", Msg: "combined output does not parse", Err: err}
	}
	return out, nil
}

func findEntry(set *ModuleSet, entry string) (*SourceModule, bool) {
	if m, ok := set.Lookup(entry); ok {
		return m, true
	}
	for _, m := range set.Modules {
		if m.Prefix() == entry {
			return m, true
		}
	}
	return nil, false
}
