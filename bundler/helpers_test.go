package bundler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rubiojr/templated/ast"
	"github.com/rubiojr/templated/parser"
)

func newModule(t *testing.T, path, src string) *SourceModule {
	t.Helper()
	chunk, err := parser.Parse(path, src)
	require.NoError(t, err)
	return &SourceModule{Path: path, Source: src, Chunk: chunk}
}

func newSet(t *testing.T, files map[string]string, order ...string) *ModuleSet {
	t.Helper()
	set := NewModuleSet()
	for _, path := range order {
		require.NoError(t, set.Add(newModule(t, path, files[path])))
	}
	return set
}

func asDiagnostic(t *testing.T, err error) *Diagnostic {
	t.Helper()
	var d *Diagnostic
	require.True(t, errors.As(err, &d), "expected a *Diagnostic, got %T: %v", err, err)
	return d
}

func printed(m *SourceModule) string { return ast.Print(m.Chunk) }
