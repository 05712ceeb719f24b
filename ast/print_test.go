package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/templated/ast"
	"github.com/rubiojr/templated/parser"
)

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"local", "local   x,y=1,2", "local x, y = 1, 2\n"},
		{"function", "function m.f(a,...) return a end", "function m.f(a, ...)\n\treturn a\nend\n"},
		{"method decl", "function C:new() end", "function C:new()\nend\n"},
		{"nested blocks", "if a then while b do f() end end",
			"if a then\n\twhile b do\n\t\tf()\n\tend\nend\n"},
		{"else chain", "if a then elseif b then else end", "if a then\nelseif b then\nelse\nend\n"},
		{"repeat", "repeat x() until y", "repeat\n\tx()\nuntil y\n"},
		{"string call", "require 'x'", "require 'x'\n"},
		{"table call", "f{1}", "f { 1 }\n"},
		{"table", "local t = {1, a=2, [k]=3}", "local t = { 1, a = 2, [k] = 3 }\n"},
		{"empty table", "local t = {}", "local t = {}\n"},
		{"paren statement", "a = 1\n;(f)()", "a = 1\n;(f)()\n"},
		{"double negation", "local x = - -y", "local x = - -y\n"},
		{"not", "local x = not y", "local x = not y\n"},
		{"interpolation", "local s = `a{b}c`", "local s = `a{b}c`\n"},
		{"types", "local x: number? = nil :: any", "local x: number? = nil :: any\n"},
		{"type alias", "export type P<T> = {x: T}", "export type P<T> = {x: T}\n"},
		{"long string key", "local t = {[ [[k]] ] = 1}", "local t = { [ [[k]] ] = 1 }\n"},
		{"if expression", "local v = if a then 1 else 2", "local v = if a then 1 else 2\n"},
		{"compound", "x ..= 'y'", "x ..= 'y'\n"},
		{"attribute", "@native function f() end", "@native function f()\nend\n"},
		{"local attributes", "@native @checked local function f() end", "@native @checked local function f()\nend\n"},
		{"attribute expression", "local f = @native function() end", "local f = @native function()\nend\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk, err := parser.Parse("p.luau", tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ast.Print(chunk))
		})
	}
}

func TestPrintStmt(t *testing.T) {
	chunk, err := parser.Parse("p.luau", "do\n  local x = 1\nend")
	require.NoError(t, err)
	assert.Equal(t, "do\n\tlocal x = 1\nend", ast.PrintStmt(chunk.Block.Stmts[0]))
}

func TestPrintSynthesizedTree(t *testing.T) {
	chunk := &ast.Chunk{Block: &ast.Block{Stmts: []ast.Stmt{
		&ast.FunctionDecl{
			Name: ast.FuncName{Parts: []string{"dir__file", "hello"}},
			Func: &ast.FuncBody{Body: &ast.Block{Stmts: []ast.Stmt{
				&ast.Return{Values: []ast.Expr{&ast.Name{Name: "a__b"}}},
			}}},
		},
	}}}
	assert.Equal(t, "function dir__file.hello()\n\treturn a__b\nend\n", ast.Print(chunk))
	assert.Equal(t, "a__b", ast.PrintExpr(&ast.Name{Name: "a__b"}))
}
