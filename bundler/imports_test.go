package bundler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex(t *testing.T) *PrefixIndex {
	t.Helper()
	files := map[string]string{
		"a.luau":          "",
		"dir/b.luau":      "",
		"dir/init.luau":   "",
		"dir/sub/c.lua":   "",
		"lib/init.luau":   "",
		"lib/strings.lua": "",
	}
	set := newSet(t, files, "a.luau", "dir/b.luau", "dir/init.luau", "dir/sub/c.lua", "lib/init.luau", "lib/strings.lua")
	return NewPrefixIndex(set, nil)
}

func TestPrefixIndexResolve(t *testing.T) {
	idx := testIndex(t)
	tests := []struct {
		from   string
		target string
		want   string
		ok     bool
	}{
		{"main.luau", "a", "a", true},
		{"main.luau", "a.luau", "a", true},
		{"main.luau", "dir/b", "dir__b", true},
		{"main.luau", "dir__b", "dir__b", true},
		{"main.luau", "./dir/b.luau", "dir__b", true},
		{"dir/b.luau", "./sub/c", "dir__sub__c", true},
		{"dir/sub/c.lua", "../b", "dir__b", true},
		{"dir/sub/c.lua", "../../a", "a", true},
		{"dir/b.luau", "@self/sub/c", "dir__sub__c", true},
		{"main.luau", "lib", "lib__init", true},
		{"dir/b.luau", "../lib/strings", "lib__strings", true},
		{"main.luau", "/a", "a", true},
		{"main.luau", "missing", "", false},
		{"main.luau", "../a", "", false},
		{"dir/b.luau", "../../a", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.target, func(t *testing.T) {
			got, ok := idx.Resolve(tt.from, tt.target)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImportInlinerArity(t *testing.T) {
	idx := testIndex(t)
	tests := []struct {
		src string
		ok  bool
	}{
		{`function f() return require() end`, false},
		{`function f() return require("a", "b") end`, false},
		{`function f() return require("a") end`, true},
		{`function f() return require "a" end`, true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Walk(newModule(t, "m.luau", tt.src), false, ImportInliner(idx, DefaultIgnore))
			if tt.ok {
				require.NoError(t, err)
				return
			}
			d := asDiagnostic(t, err)
			assert.Equal(t, ArityError, d.Kind)
			assert.Equal(t, "require() must have exactly one argument", d.Message)
		})
	}
}

func TestImportInlinerRewrites(t *testing.T) {
	idx := testIndex(t)
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"plain", `function f() return require("a") end`, "function f()\n\treturn a\nend\n"},
		{"suffix kept", `function f() return require("a").x end`, "function f()\n\treturn a.x\nend\n"},
		{"call suffix kept", `function f() return require("./b")(1) end`, "function f()\n\treturn dir__b(1)\nend\n"},
		{"nested", `function f() g(require("lib")) end`, "function f()\n\tg(lib__init)\nend\n"},
		{"statement dropped", "require(\"a\")\nfunction f() end", "function f()\nend\n"},
		{"ignored", `function f() return require("@antiraid/interop") end`, "function f()\n\treturn require(\"@antiraid/interop\")\nend\n"},
		{"ignored exact", `function f() return require("@antiraid") end`, "function f()\n\treturn require(\"@antiraid\")\nend\n"},
		{"method not require", `function f() return require:x("a", "b") end`, "function f()\n\treturn require:x(\"a\", \"b\")\nend\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Walk(newModule(t, "dir/m.luau", tt.src), false, ImportInliner(idx, DefaultIgnore))
			require.NoError(t, err)
			assert.Equal(t, tt.want, printed(out))
		})
	}
}

func TestImportInlinerUnresolved(t *testing.T) {
	idx := testIndex(t)
	tests := []struct {
		src string
		msg string
	}{
		{"\n\nfunction f() return require(name) end", "require() argument must be a string literal"},
		{"\n\nfunction f() return require(\"nope\") end", `no bundled module matches "nope"`},
		{"\n\nfunction f() return require(\"@antiraidx\") end", `no bundled module matches "@antiraidx"`},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			_, err := Walk(newModule(t, "m.luau", tt.src), false, ImportInliner(idx, DefaultIgnore))
			d := asDiagnostic(t, err)
			assert.Equal(t, UnresolvedImport, d.Kind)
			assert.Equal(t, tt.msg, d.Message)
			assert.Equal(t, 3, d.Span.Start.Line, "position points into the original source")
		})
	}
}

func TestImportInlinerCustomIgnore(t *testing.T) {
	idx := testIndex(t)
	src := `function f() return require("@game/players"), require("a") end`
	out, err := Walk(newModule(t, "m.luau", src), false, ImportInliner(idx, []string{"@game"}))
	require.NoError(t, err)
	assert.Equal(t, "function f()\n\treturn require(\"@game/players\"), a\nend\n", printed(out))
}

func TestImportInlinerCollect(t *testing.T) {
	idx := testIndex(t)
	src := "function f()\n\treturn require(), require(\"nope\"), require(\"a\")\nend"
	_, err := Walk(newModule(t, "m.luau", src), true, ImportInliner(idx, DefaultIgnore))
	var list DiagnosticList
	require.ErrorAs(t, err, &list)
	require.Len(t, list, 2)
	assert.Equal(t, ArityError, list[0].Kind)
	assert.Equal(t, UnresolvedImport, list[1].Kind)
}
