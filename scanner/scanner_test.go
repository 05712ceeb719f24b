package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func texts(toks []Token) []string {
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if t.Kind != EOF {
			out = append(out, t.Text)
		}
	}
	return out
}

func TestTokenizeBasic(t *testing.T) {
	toks, errs := Tokenize("local x = 1 + y.z")
	require.Empty(t, errs)
	assert.Equal(t, []string{"local", "x", "=", "1", "+", "y", ".", "z"}, texts(toks))
	assert.Equal(t, []Kind{Keyword, Name, Symbol, Number, Symbol, Name, Symbol, Name, EOF}, kinds(toks))
}

func TestTokenizeLongestSymbol(t *testing.T) {
	toks, errs := Tokenize("a ..= b // c ... :: -> ~=")
	require.Empty(t, errs)
	assert.Equal(t, []string{"a", "..=", "b", "//", "c", "...", "::", "->", "~="}, texts(toks))
}

func TestTokenizePositions(t *testing.T) {
	toks, errs := Tokenize("a\n  bb = 1")
	require.Empty(t, errs)
	assert.Equal(t, Position{Offset: 0, Line: 1, Column: 1}, toks[0].Pos)
	assert.Equal(t, Position{Offset: 4, Line: 2, Column: 3}, toks[1].Pos)
	assert.Equal(t, Position{Offset: 6, Line: 2, Column: 5}, toks[1].End)
}

func TestTokenizeComments(t *testing.T) {
	src := "-- line\nx --[[ long\ncomment ]] y --[==[ ]] ]==]\nz"
	toks, errs := Tokenize(src)
	require.Empty(t, errs)
	assert.Equal(t, []string{"x", "y", "z"}, texts(toks))
	assert.Equal(t, 4, toks[2].Pos.Line)
}

func TestTokenizeStrings(t *testing.T) {
	tests := []struct {
		src   string
		value string
	}{
		{`"hello"`, "hello"},
		{`'it\'s'`, "it's"},
		{`"a\nb"`, "a\nb"},
		{`"\x41\65\u{1F600}"`, "AA\U0001F600"},
		{"\"a\\z   \n  b\"", "ab"},
		{"[[\nraw ]] text]]", "raw "},
		{"[==[a]]b]==]", "a]]b"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, errs := Tokenize(tt.src)
			require.Empty(t, errs)
			require.Equal(t, String, toks[0].Kind)
			assert.Equal(t, tt.value, toks[0].Value)
		})
	}
}

func TestTokenizeNumbers(t *testing.T) {
	for _, src := range []string{"1", "1.5", ".5", "1e10", "1E-3", "0xFF", "0b1010", "1_000_000", "0x_ff"} {
		t.Run(src, func(t *testing.T) {
			toks, errs := Tokenize(src)
			require.Empty(t, errs)
			assert.Equal(t, Number, toks[0].Kind)
			assert.Equal(t, src, toks[0].Text)
		})
	}
}

func TestTokenizeRangeIsNotNumber(t *testing.T) {
	toks, errs := Tokenize("1..2")
	require.Empty(t, errs)
	assert.Equal(t, []string{"1", "..", "2"}, texts(toks))
}

func TestTokenizeInterpolation(t *testing.T) {
	toks, errs := Tokenize("`a{x}b{ {1} }c`")
	require.Empty(t, errs)
	assert.Equal(t, []Kind{InterpBegin, Name, InterpMid, Symbol, Number, Symbol, InterpEnd, EOF}, kinds(toks))
	assert.Equal(t, "`a{", toks[0].Text)
	assert.Equal(t, "}b{", toks[2].Text)
	assert.Equal(t, "}c`", toks[6].Text)
}

func TestTokenizeSimpleInterpolation(t *testing.T) {
	toks, errs := Tokenize("`plain`")
	require.Empty(t, errs)
	assert.Equal(t, InterpSimple, toks[0].Kind)
	assert.Equal(t, "plain", toks[0].Value)
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unfinished string", `"abc`, "unfinished string"},
		{"unfinished long string", "[[abc", "unfinished long string"},
		{"bad escape", `"\q"`, "invalid escape sequence '\\q'"},
		{"bad number", "12abc", `malformed number "12abc"`},
		{"bad char", "a $ b", "unexpected character '$'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := Tokenize(tt.src)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.msg, errs[0].Msg)
		})
	}
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("a__b"))
	assert.True(t, IsName("_x1"))
	assert.False(t, IsName(""))
	assert.False(t, IsName("1a"))
	assert.False(t, IsName("end"))
	assert.False(t, IsName("a-b"))
	assert.True(t, IsKeyword("function"))
	assert.False(t, IsKeyword("continue"))
}
