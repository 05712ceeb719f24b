package bundler

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rubiojr/templated/parser"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func endToEndInputs() []Input {
	return []Input{
		{Path: "a.luau", Source: "function hello()\n\treturn \"a\"\nend\n"},
		{Path: "dir/b.luau", Source: "function hello()\n\treturn require(\"../a\").hello()\nend\n"},
	}
}

func TestBundleEndToEnd(t *testing.T) {
	b := New(Options{Emit: EmitOptions{Version: "v1.2.3", Entry: "dir/b.luau"}})
	res, err := b.Bundle(context.Background(), endToEndInputs())
	require.NoError(t, err)

	want := `-- Bundled by templated v1.2.3
local a = {}
local dir__b = {}

-- a.luau
function a.hello()
	return "a"
end

-- dir/b.luau
function dir__b.hello()
	return a.hello()
end

return dir__b
`
	assert.Equal(t, want, res.Output)
	assert.Equal(t, 2, res.Set.Len())

	_, err = parser.Parse("bundle.luau", res.Output)
	assert.NoError(t, err)
}

func TestLoadParseError(t *testing.T) {
	b := New(Options{})
	_, err := b.Load(context.Background(), []Input{
		{Path: "ok.luau", Source: "function f() end"},
		{Path: "bad.luau", Source: "local = 1\nx +"},
	})
	d := asDiagnostic(t, err)
	assert.Equal(t, ParseError, d.Kind)
	assert.Equal(t, "bad.luau", d.Path)

	var list parser.ErrList
	require.ErrorAs(t, err, &list)
	assert.GreaterOrEqual(t, len(list), 1)
}

func TestLoadRejectsDuplicates(t *testing.T) {
	b := New(Options{})
	_, err := b.Load(context.Background(), []Input{
		{Path: "a.luau", Source: ""},
		{Path: "a.luau", Source: ""},
	})
	assert.Equal(t, DuplicatePath, asDiagnostic(t, err).Kind)
}

func TestLoadRejectsPrefixCollision(t *testing.T) {
	b := New(Options{})
	_, err := b.Load(context.Background(), []Input{
		{Path: "a/b.luau", Source: ""},
		{Path: "a__b.lua", Source: ""},
	})
	d := asDiagnostic(t, err)
	assert.Equal(t, PrefixCollision, d.Kind)
	assert.Equal(t, "a__b.lua", d.Path)
	assert.Contains(t, d.Message, "a/b.luau")
}

func TestLoadRejectsInvalidPrefix(t *testing.T) {
	for _, path := range []string{"1st.luau", "end.luau", "my-mod.luau", "noext"} {
		t.Run(path, func(t *testing.T) {
			_, err := New(Options{}).Load(context.Background(), []Input{{Path: path, Source: ""}})
			assert.Equal(t, InvalidPrefix, asDiagnostic(t, err).Kind)
		})
	}
}

func TestRewriteFailFastAndCollect(t *testing.T) {
	inputs := []Input{
		{Path: "a.luau", Source: "local x = 1\nlocal y = 2\nfunction f() return require(\"nope\") end"},
	}
	ctx := context.Background()

	b := New(Options{})
	set, err := b.Load(ctx, inputs)
	require.NoError(t, err)
	_, err = b.Rewrite(ctx, set)
	assert.Equal(t, SafetyViolation, asDiagnostic(t, err).Kind)

	b = New(Options{CollectAll: true})
	_, err = b.Rewrite(ctx, set)
	var list DiagnosticList
	require.ErrorAs(t, err, &list)
	assert.Len(t, list, 2, "imports are only resolved once the safety pass is clean")
}

func TestRewriteDoesNotModifyInputSet(t *testing.T) {
	ctx := context.Background()
	b := New(Options{})
	set, err := b.Load(ctx, endToEndInputs())
	require.NoError(t, err)
	before := printed(set.Modules[1])

	out, err := b.Rewrite(ctx, set)
	require.NoError(t, err)
	assert.Equal(t, before, printed(set.Modules[1]))
	assert.Empty(t, set.Modules[0].Exports)

	m, ok := out.Lookup("dir/b.luau")
	require.True(t, ok)
	assert.Equal(t, []Export{{Name: "hello", Mangled: "dir__b.hello"}}, m.Exports)
	assert.Equal(t, printed(m), m.Source, "rewritten source matches the tree")
	assert.Equal(t, 1, m.Chunk.Block.Stmts[0].NodeSpan().Start.Line)
}

func manyInputs(n int) []Input {
	inputs := make([]Input, n)
	for i := range inputs {
		src := fmt.Sprintf("function f%d(x)\n\treturn require(\"m%d\").f%d(x) + %d\nend\n", i, (i+1)%n, (i+1)%n, i)
		inputs[i] = Input{Path: fmt.Sprintf("m%d.luau", i), Source: src}
	}
	return inputs
}

func TestRewriteParallelMatchesSequential(t *testing.T) {
	ctx := context.Background()
	inputs := manyInputs(32)

	seq, err := New(Options{}).Bundle(ctx, inputs)
	require.NoError(t, err)
	par, err := New(Options{Jobs: 8}).Bundle(ctx, inputs)
	require.NoError(t, err)

	assert.Equal(t, seq.Output, par.Output)
	assert.Equal(t, Manifest(seq.Set), Manifest(par.Set))
}

func TestRewriteParallelError(t *testing.T) {
	ctx := context.Background()
	inputs := manyInputs(16)
	inputs[7].Source = "local broken = true"

	_, err := New(Options{Jobs: 4}).Bundle(ctx, inputs)
	d := asDiagnostic(t, err)
	assert.Equal(t, SafetyViolation, d.Kind)
	assert.Equal(t, "m7.luau", d.Path)
}

func TestRewriteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := New(Options{})
	set, err := b.Load(ctx, manyInputs(4))
	require.NoError(t, err)

	cancel()
	_, err = b.Rewrite(ctx, set)
	assert.ErrorIs(t, err, context.Canceled)
}
