package source

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/templated/bundler"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"z.luau":            "",
		"a.lua":             "",
		"lib/util.luau":     "",
		"lib/readme.md":     "",
		".git/hooks/x.luau": "",
		"lib/.cache/c.luau": "",
		"b/c/d.luau":        "",
	})

	files, err := Collect(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.lua", "b/c/d.luau", "lib/util.luau", "z.luau"}, files)

	files, err = Collect(dir, []string{".lua"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.lua"}, files)
}

func TestCollectErrors(t *testing.T) {
	_, err := Collect(filepath.Join(t.TempDir(), "missing"), nil)
	assert.ErrorContains(t, err, "reading input directory")

	file := filepath.Join(t.TempDir(), "f.luau")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = Collect(file, nil)
	assert.ErrorContains(t, err, "is not a directory")
}

func TestInputs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.luau":     "function b() end",
		"dir/a.luau": "function a() end",
	})
	inputs, err := Inputs(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []bundler.Input{
		{Path: "b.luau", Source: "function b() end"},
		{Path: "dir/a.luau", Source: "function a() end"},
	}, inputs)
}

func TestReadInput(t *testing.T) {
	for _, loc := range []string{"-", "stdin"} {
		got, err := ReadInput(loc, strings.NewReader("\n  print(1)\n\n"))
		require.NoError(t, err)
		assert.Equal(t, "print(1)", got)
	}

	file := filepath.Join(t.TempDir(), "s.luau")
	require.NoError(t, os.WriteFile(file, []byte("print(2)\n"), 0o644))
	got, err := ReadInput(file, nil)
	require.NoError(t, err)
	assert.Equal(t, "print(2)\n", got, "files are read verbatim")

	_, err = ReadInput(filepath.Join(t.TempDir(), "nope"), nil)
	assert.ErrorContains(t, err, "reading input")
}

func TestWriteOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOutput("-", "print(1)", &buf))
	require.NoError(t, WriteOutput("stdout", "print(2)\n", &buf))
	assert.Equal(t, "print(1)\nprint(2)\n", buf.String())

	file := filepath.Join(t.TempDir(), "out.luau")
	require.NoError(t, WriteOutput(file, "print(3)", nil))
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "print(3)", string(data))

	err = WriteOutput(filepath.Join(t.TempDir(), "no", "such", "dir.luau"), "", nil)
	assert.ErrorContains(t, err, "writing output")
}

func TestIsStdio(t *testing.T) {
	assert.True(t, IsStdio("-"))
	assert.True(t, IsStdio("stdin"))
	assert.True(t, IsStdio("stdout"))
	assert.False(t, IsStdio("file.luau"))
}
