package bundler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootScopeSafetyRejects(t *testing.T) {
	tests := []struct {
		src       string
		construct string
	}{
		{"local x = 1", "LocalAssignment"},
		{"local function f() end", "LocalFunction"},
		{"x = 1", "Assignment"},
		{"x += 1", "CompoundAssignment"},
		{"do end", "Do"},
		{"if true then return end", "If"},
		{"for i = 1, 2 do end", "NumericFor"},
		{"for k, v in pairs(t) do end", "GenericFor"},
		{"while true do end", "While"},
		{"repeat until true", "Repeat"},
		{"obj:method()", "MethodCall"},
		{"return 1", "Return"},
		{"break", "Break"},
		{"continue", "Continue"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			m := newModule(t, "m.luau", tt.src)
			_, err := Walk(m, false, RootScopeSafety())
			require.Error(t, err)

			d := asDiagnostic(t, err)
			assert.Equal(t, SafetyViolation, d.Kind)
			assert.Equal(t, tt.construct, d.Construct)
			assert.Equal(t, "m.luau", d.Path)
			assert.Equal(t, tt.src, d.Text)
			assert.NotEmpty(t, d.Hint)
		})
	}
}

func TestRootScopeSafetyAllows(t *testing.T) {
	tests := []string{
		"print('hi')",
		"function f() end",
		"function f() local x = 1 end",
		"function f() if true then return end end",
		"function f() for i = 1, 2 do x = i end end",
		"function f() obj:method() end",
		"type T = number",
		"export type T = { x: number }",
		"setup(function() local inner = 1 end)",
		"register { handler = function() local y = 2 return y end }",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			m := newModule(t, "m.luau", src)
			out, err := Walk(m, false, RootScopeSafety())
			require.NoError(t, err)
			assert.Same(t, m, out, "safety never changes the tree")
		})
	}
}

func TestRootScopeSafetyMessage(t *testing.T) {
	m := newModule(t, "dir/m.luau", "function ok() end\n\ndo\n\tprint(1)\nend")
	_, err := Walk(m, false, RootScopeSafety())
	require.Error(t, err)

	want := "dir/m.luau:3:1: bundling safety error: Do at root level: do\n\tprint(1)\nend\n\n" +
		"Do end may have side-effects and are as such not allowed at root level"
	assert.Equal(t, want, err.Error())
}

func TestRootScopeSafetyCollect(t *testing.T) {
	src := "local a = 1\nfunction f() end\nlocal b = 2\nreturn a"
	m := newModule(t, "m.luau", src)

	_, err := Walk(m, false, RootScopeSafety())
	d := asDiagnostic(t, err)
	assert.Equal(t, 1, d.Span.Start.Line, "fail-fast stops at the first violation")

	_, err = Walk(m, true, RootScopeSafety())
	var list DiagnosticList
	require.ErrorAs(t, err, &list)
	require.Len(t, list, 3)
	assert.Equal(t, "LocalAssignment", list[0].Construct)
	assert.Equal(t, "LocalAssignment", list[1].Construct)
	assert.Equal(t, "Return", list[2].Construct)
	assert.Equal(t, 4, list[2].Span.Start.Line)
}

func TestRenderTextTruncates(t *testing.T) {
	src := "do\n" + "\tprint(1)\n\tprint(2)\n\tprint(3)\n\tprint(4)\n\tprint(5)\n\tprint(6)\n" + "end"
	m := newModule(t, "m.luau", src)
	_, err := Walk(m, false, RootScopeSafety())
	d := asDiagnostic(t, err)
	assert.Equal(t, "do\n\tprint(1)\n\tprint(2)\n\tprint(3)\n\tprint(4)\n\tprint(5)\n...", d.Text)
}
