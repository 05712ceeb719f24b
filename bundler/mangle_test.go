package bundler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/templated/ast"
)

func TestTopLevelMangler(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"function foo() end", "function dir__file.foo()\nend\n"},
		{"function foo.bar.baz() end", "function dir__file.foo.bar.baz()\nend\n"},
		{"function foo:bar() end", "function dir__file.foo:bar()\nend\n"},
		{"function m.foo() end", "function dir__file.m.foo()\nend\n"},
		{"@native function foo() end", "@native function dir__file.foo()\nend\n"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			m := newModule(t, "dir/file.luau", tt.src)
			out, err := Walk(m, false, TopLevelMangler())
			require.NoError(t, err)
			assert.Equal(t, tt.want, printed(out))
		})
	}
}

func TestTopLevelManglerLeavesNestedDeclarations(t *testing.T) {
	src := "function outer()\n\tfunction inner() end\nend"
	out, err := Walk(newModule(t, "a.luau", src), false, TopLevelMangler())
	require.NoError(t, err)

	outer := out.Chunk.Block.Stmts[0].(*ast.FunctionDecl)
	assert.Equal(t, "a.outer", outer.Name.String())
	inner := outer.Func.Body.Stmts[0].(*ast.FunctionDecl)
	assert.Equal(t, "inner", inner.Name.String())
}

func TestTopLevelManglerRecordsExports(t *testing.T) {
	src := "function hello() end\nfunction Class:new() end\nprint(1)"
	out, err := Walk(newModule(t, "lib/util.luau", src), false, TopLevelMangler())
	require.NoError(t, err)
	assert.Equal(t, []Export{
		{Name: "hello", Mangled: "lib__util.hello"},
		{Name: "Class:new", Mangled: "lib__util.Class:new"},
	}, out.Exports)
}

func TestSafetyAndManglerInOneWalk(t *testing.T) {
	m := newModule(t, "a.luau", "function hello() local x = 1 return x end")
	out, err := Walk(m, false, RootScopeSafety(), TopLevelMangler())
	require.NoError(t, err)
	assert.Equal(t, "function a.hello()\n\tlocal x = 1\n\treturn x\nend\n", printed(out))
}
