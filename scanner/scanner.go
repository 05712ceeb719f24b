// Package scanner tokenizes Luau source text. It tracks string literal
// boundaries (quoted, long-bracket and backtick interpolated strings),
// escape sequences and comments, and records the byte offset, line and
// column of every token so later passes can point back into the source.
package scanner

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Name
	Keyword
	Symbol
	Number
	String
	InterpSimple // `text` without any {expression}
	InterpBegin  // `text{
	InterpMid    // }text{
	InterpEnd    // }text`
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of file"
	case Name:
		return "name"
	case Keyword:
		return "keyword"
	case Symbol:
		return "symbol"
	case Number:
		return "number"
	case String:
		return "string"
	case InterpSimple, InterpBegin, InterpMid, InterpEnd:
		return "interpolated string"
	}
	return "token(" + strconv.Itoa(int(k)) + ")"
}

// Position is a location in source text. Line and Column are 1-based,
// Offset is a 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Token is a single lexical element.
type Token struct {
	Kind  Kind
	Text  string // raw source text, delimiters included
	Value string // decoded value for String tokens
	Pos   Position
	End   Position // position just past the last byte
}

// Is reports whether the token is the keyword or symbol s.
func (t Token) Is(s string) bool {
	return (t.Kind == Keyword || t.Kind == Symbol) && t.Text == s
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "<eof>"
	}
	return t.Text
}

// Error is a lexical error at a source position.
type Error struct {
	Pos Position
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg) }

var keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "if": true,
	"in": true, "local": true, "nil": true, "not": true, "or": true,
	"repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool { return keywords[s] }

// IsName reports whether s is a valid identifier that is not reserved.
func IsName(s string) bool {
	if s == "" || keywords[s] {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isNameChar(c) || (i == 0 && isDigit(c)) {
			return false
		}
	}
	return true
}

// symbols is ordered longest first so the scanner can take the first match.
var symbols = []string{
	"...", "..=", "//=",
	"..", "//", "==", "~=", "<=", ">=", "->", "::",
	"+=", "-=", "*=", "/=", "%=", "^=",
	"+", "-", "*", "/", "%", "^", "#", "&", "|", "?", "<", ">", "=",
	"(", ")", "{", "}", "[", "]", ";", ":", ",", ".", "@",
}

// CodeScanner walks source text byte by byte and produces tokens.
// The zero value is not usable; call New.
type CodeScanner struct {
	src    string
	offset int
	line   int
	col    int
	// braces records, for every open '{', whether it was opened by an
	// interpolated string segment (true) or by a table constructor (false).
	braces []bool
	errs   []*Error
}

// New creates a CodeScanner for the given source text.
func New(src string) *CodeScanner {
	return &CodeScanner{src: src, line: 1, col: 1}
}

// Tokenize scans the entire source. The returned slice always ends with
// an EOF token; errors are collected and scanning continues past them.
func Tokenize(src string) ([]Token, []*Error) {
	s := New(src)
	var toks []Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return toks, s.errs
}

// Errors returns the lexical errors seen so far.
func (s *CodeScanner) Errors() []*Error { return s.errs }

func (s *CodeScanner) pos() Position { return Position{Offset: s.offset, Line: s.line, Column: s.col} }

func (s *CodeScanner) errorf(p Position, format string, args ...any) {
	s.errs = append(s.errs, &Error{Pos: p, Msg: fmt.Sprintf(format, args...)})
}

func (s *CodeScanner) peek(n int) byte {
	if s.offset+n >= len(s.src) {
		return 0
	}
	return s.src[s.offset+n]
}

func (s *CodeScanner) atEnd() bool { return s.offset >= len(s.src) }

func (s *CodeScanner) advance() byte {
	c := s.src[s.offset]
	s.offset++
	if c == '\n' {
		s.line++
		s.col = 1
	} else if c < utf8.RuneSelf || c >= 0xC0 {
		// continuation bytes of a multi-byte rune do not move the column
		s.col++
	}
	return c
}

func (s *CodeScanner) lookingAt(prefix string) bool {
	return strings.HasPrefix(s.src[s.offset:], prefix)
}

func (s *CodeScanner) token(kind Kind, start Position) Token {
	return Token{Kind: kind, Text: s.src[start.Offset:s.offset], Pos: start, End: s.pos()}
}

// Next returns the next token, skipping whitespace and comments.
func (s *CodeScanner) Next() Token {
	for {
		s.skipSpace()
		if s.atEnd() {
			p := s.pos()
			return Token{Kind: EOF, Pos: p, End: p}
		}
		start := s.pos()
		c := s.peek(0)
		switch {
		case c == '-' && s.peek(1) == '-':
			s.skipComment()
			continue
		case isDigit(c) || (c == '.' && isDigit(s.peek(1))):
			return s.number(start)
		case isNameChar(c):
			for !s.atEnd() && isNameChar(s.peek(0)) {
				s.advance()
			}
			tok := s.token(Name, start)
			if keywords[tok.Text] {
				tok.Kind = Keyword
			}
			return tok
		case c == '"' || c == '\'':
			return s.quoted(start, c)
		case c == '[' && s.longBracketLevel() >= 0:
			level := s.longBracketLevel()
			value, ok := s.longBracket(level)
			if !ok {
				s.errorf(start, "unfinished long string")
			}
			tok := s.token(String, start)
			tok.Value = value
			return tok
		case c == '`':
			s.advance()
			return s.interpSegment(start, true)
		case c == '}' && len(s.braces) > 0 && s.braces[len(s.braces)-1]:
			s.braces = s.braces[:len(s.braces)-1]
			s.advance()
			return s.interpSegment(start, false)
		}
		for _, sym := range symbols {
			if s.lookingAt(sym) {
				for range len(sym) {
					s.advance()
				}
				switch sym {
				case "{":
					s.braces = append(s.braces, false)
				case "}":
					if len(s.braces) > 0 {
						s.braces = s.braces[:len(s.braces)-1]
					}
				}
				return s.token(Symbol, start)
			}
		}
		r, size := utf8.DecodeRuneInString(s.src[s.offset:])
		for range size {
			s.advance()
		}
		s.errorf(start, "unexpected character %q", r)
	}
}

func (s *CodeScanner) skipSpace() {
	for !s.atEnd() {
		switch s.peek(0) {
		case ' ', '\t', '\r', '\n', '\f', '\v':
			s.advance()
		default:
			return
		}
	}
}

func (s *CodeScanner) skipComment() {
	start := s.pos()
	s.advance()
	s.advance()
	if s.peek(0) == '[' {
		if level := s.longBracketLevel(); level >= 0 {
			if _, ok := s.longBracket(level); !ok {
				s.errorf(start, "unfinished long comment")
			}
			return
		}
	}
	for !s.atEnd() && s.peek(0) != '\n' {
		s.advance()
	}
}

// longBracketLevel returns the number of '=' in a long bracket opener at
// the current position, or -1 when there is none.
func (s *CodeScanner) longBracketLevel() int {
	if s.peek(0) != '[' {
		return -1
	}
	n := 1
	for s.peek(n) == '=' {
		n++
	}
	if s.peek(n) != '[' {
		return -1
	}
	return n - 1
}

// longBracket consumes a long bracket of the given level and returns its
// content. A newline directly after the opener is dropped.
func (s *CodeScanner) longBracket(level int) (string, bool) {
	for range level + 2 {
		s.advance()
	}
	if s.peek(0) == '\r' {
		s.advance()
	}
	if s.peek(0) == '\n' {
		s.advance()
	}
	closer := "]" + strings.Repeat("=", level) + "]"
	from := s.offset
	for !s.atEnd() {
		if s.lookingAt(closer) {
			value := s.src[from:s.offset]
			for range len(closer) {
				s.advance()
			}
			return value, true
		}
		s.advance()
	}
	return s.src[from:], false
}

func (s *CodeScanner) number(start Position) Token {
	if s.peek(0) == '0' && (s.peek(1) == 'x' || s.peek(1) == 'X') {
		s.advance()
		s.advance()
		digits := 0
		for isHex(s.peek(0)) || s.peek(0) == '_' {
			s.advance()
			digits++
		}
		if digits == 0 {
			s.errorf(start, "malformed number")
		}
	} else if s.peek(0) == '0' && (s.peek(1) == 'b' || s.peek(1) == 'B') {
		s.advance()
		s.advance()
		digits := 0
		for s.peek(0) == '0' || s.peek(0) == '1' || s.peek(0) == '_' {
			s.advance()
			digits++
		}
		if digits == 0 {
			s.errorf(start, "malformed number")
		}
	} else {
		for isDigit(s.peek(0)) || s.peek(0) == '_' {
			s.advance()
		}
		if s.peek(0) == '.' && s.peek(1) != '.' {
			s.advance()
			for isDigit(s.peek(0)) || s.peek(0) == '_' {
				s.advance()
			}
		}
		if s.peek(0) == 'e' || s.peek(0) == 'E' {
			s.advance()
			if s.peek(0) == '+' || s.peek(0) == '-' {
				s.advance()
			}
			if !isDigit(s.peek(0)) {
				s.errorf(start, "malformed number")
			}
			for isDigit(s.peek(0)) || s.peek(0) == '_' {
				s.advance()
			}
		}
	}
	if isNameChar(s.peek(0)) {
		for isNameChar(s.peek(0)) {
			s.advance()
		}
		s.errorf(start, "malformed number %q", s.src[start.Offset:s.offset])
	}
	return s.token(Number, start)
}

func (s *CodeScanner) quoted(start Position, quote byte) Token {
	s.advance()
	var sb strings.Builder
	for {
		if s.atEnd() || s.peek(0) == '\n' {
			s.errorf(start, "unfinished string")
			break
		}
		c := s.advance()
		if c == quote {
			break
		}
		if c == '\\' {
			s.escape(&sb)
			continue
		}
		sb.WriteByte(c)
	}
	tok := s.token(String, start)
	tok.Value = sb.String()
	return tok
}

// escape decodes the escape sequence following a backslash.
func (s *CodeScanner) escape(sb *strings.Builder) {
	p := s.pos()
	if s.atEnd() {
		s.errorf(p, "unfinished escape sequence")
		return
	}
	c := s.advance()
	switch c {
	case 'a':
		sb.WriteByte('\a')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'v':
		sb.WriteByte('\v')
	case '\\', '"', '\'', '`', '{', '}':
		sb.WriteByte(c)
	case '\n':
		sb.WriteByte('\n')
	case '\r':
		if s.peek(0) == '\n' {
			s.advance()
		}
		sb.WriteByte('\n')
	case 'z':
		s.skipSpace()
	case 'x':
		if !isHex(s.peek(0)) || !isHex(s.peek(1)) {
			s.errorf(p, "invalid hexadecimal escape")
			return
		}
		n, _ := strconv.ParseUint(s.src[s.offset:s.offset+2], 16, 8)
		s.advance()
		s.advance()
		sb.WriteByte(byte(n))
	case 'u':
		if s.peek(0) != '{' {
			s.errorf(p, "invalid unicode escape")
			return
		}
		s.advance()
		from := s.offset
		for isHex(s.peek(0)) {
			s.advance()
		}
		digits := s.src[from:s.offset]
		if digits == "" || s.peek(0) != '}' {
			s.errorf(p, "invalid unicode escape")
			return
		}
		s.advance()
		n, err := strconv.ParseUint(digits, 16, 32)
		if err != nil || n > 0x10FFFF {
			s.errorf(p, "unicode escape out of range")
			return
		}
		sb.WriteRune(rune(n))
	default:
		if !isDigit(c) {
			s.errorf(p, "invalid escape sequence '\\%c'", c)
			return
		}
		n := int(c - '0')
		for i := 0; i < 2 && isDigit(s.peek(0)); i++ {
			n = n*10 + int(s.advance()-'0')
		}
		if n > 255 {
			s.errorf(p, "decimal escape too large")
			return
		}
		sb.WriteByte(byte(n))
	}
}

// interpSegment scans an interpolated string segment up to the next '{'
// or the closing backtick. first reports whether the segment opened the
// string (the backtick was consumed) or resumed after a '}'.
func (s *CodeScanner) interpSegment(start Position, first bool) Token {
	var sb strings.Builder
	for {
		if s.atEnd() || s.peek(0) == '\n' {
			s.errorf(start, "unfinished interpolated string")
			tok := s.token(InterpEnd, start)
			if first {
				tok.Kind = InterpSimple
			}
			tok.Value = sb.String()
			return tok
		}
		c := s.advance()
		switch c {
		case '`':
			tok := s.token(InterpEnd, start)
			if first {
				tok.Kind = InterpSimple
			}
			tok.Value = sb.String()
			return tok
		case '{':
			s.braces = append(s.braces, true)
			tok := s.token(InterpMid, start)
			if first {
				tok.Kind = InterpBegin
			}
			tok.Value = sb.String()
			return tok
		case '\\':
			s.escape(&sb)
		default:
			sb.WriteByte(c)
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isNameChar(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
