package bundler

import (
	"fmt"

	"github.com/rubiojr/templated/ast"
)

// Export records a top-level function renamed into the module namespace.
type Export struct {
	Name    string `yaml:"name"`    // name as declared, e.g. "hello" or "Class:new"
	Mangled string `yaml:"mangled"` // name after mangling, e.g. "dir__b.hello"
}

// SourceModule is one input file and its syntax tree. Passes never mutate
// a module; they return a new value holding the rewritten tree.
type SourceModule struct {
	// Path identifies the module: slash-separated, relative to the bundle root.
	Path string
	// Source is the text the spans of Chunk refer to.
	Source  string
	Chunk   *ast.Chunk
	Exports []Export
}

// Prefix returns the namespace identifier of the module.
func (m *SourceModule) Prefix() string { return Prefix(m.Path) }

// withChunk returns a copy of m holding chunk.
func (m *SourceModule) withChunk(chunk *ast.Chunk) *SourceModule {
	cp := *m
	cp.Chunk = chunk
	return &cp
}

func (m *SourceModule) diagnostic(kind Kind, node ast.Node, msg string) *Diagnostic {
	d := &Diagnostic{Kind: kind, Path: m.Path, Message: msg}
	if node != nil {
		d.Span = node.NodeSpan()
		if s, ok := node.(ast.Stmt); ok {
			d.Construct = ast.StmtName(s)
			d.Text = renderText(m.Source, d.Span, s)
		} else {
			d.Text = renderText(m.Source, d.Span, nil)
		}
	}
	return d
}

// ModuleSet is the ordered collection of modules being bundled. Order is
// the order in which modules were added.
type ModuleSet struct {
	Modules []*SourceModule
	byPath  map[string]int
}

// NewModuleSet creates an empty set.
func NewModuleSet() *ModuleSet {
	return &ModuleSet{byPath: make(map[string]int)}
}

// Add appends a module. Adding a second module with the same path fails
// with a DuplicatePath diagnostic.
func (s *ModuleSet) Add(m *SourceModule) error {
	if s.byPath == nil {
		s.byPath = make(map[string]int)
	}
	if _, ok := s.byPath[m.Path]; ok {
		return &Diagnostic{Kind: DuplicatePath, Path: m.Path, Message: "module added twice"}
	}
	s.byPath[m.Path] = len(s.Modules)
	s.Modules = append(s.Modules, m)
	return nil
}

// Lookup returns the module with the given path.
func (s *ModuleSet) Lookup(path string) (*SourceModule, bool) {
	i, ok := s.byPath[path]
	if !ok {
		return nil, false
	}
	return s.Modules[i], true
}

// Len returns the number of modules.
func (s *ModuleSet) Len() int { return len(s.Modules) }

// Validate reports modules whose prefix is not a valid identifier and
// pairs of modules whose paths map to the same prefix.
func (s *ModuleSet) Validate() error {
	seen := make(map[string]string, len(s.Modules))
	for _, m := range s.Modules {
		prefix := m.Prefix()
		if !validPrefix(prefix) {
			return &Diagnostic{
				Kind:    InvalidPrefix,
				Path:    m.Path,
				Message: fmt.Sprintf("namespace prefix %q is not a valid identifier", prefix),
				Hint:    "rename the file or directory so its path only contains letters, digits and underscores",
			}
		}
		if other, ok := seen[prefix]; ok {
			return &Diagnostic{
				Kind:    PrefixCollision,
				Path:    m.Path,
				Message: fmt.Sprintf("namespace prefix %q is also used by %s", prefix, other),
			}
		}
		seen[prefix] = m.Path
	}
	return nil
}

// replace returns a new set with the same order holding mods.
func (s *ModuleSet) replace(mods []*SourceModule) *ModuleSet {
	out := &ModuleSet{Modules: mods, byPath: make(map[string]int, len(mods))}
	for i, m := range mods {
		out.byPath[m.Path] = i
	}
	return out
}
