// Package parser implements a strict recursive-descent parser for Luau.
//
// Every syntax error of a file is collected: after an error the parser
// skips to the next likely statement start and keeps going, so callers
// receive the whole list in one ErrList.
package parser

import (
	"fmt"
	"strings"

	"github.com/rubiojr/templated/ast"
	"github.com/rubiojr/templated/scanner"
)

// maxErrors bounds the error list of a single file.
const maxErrors = 20

// Error is a syntax error at a position in a named source.
type Error struct {
	File string
	Pos  scanner.Position
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Pos.Line, e.Pos.Column, e.Msg)
}

// ErrList is the list of syntax errors of one source.
type ErrList []*Error

func (el ErrList) Error() string {
	msgs := make([]string, len(el))
	for i, e := range el {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// bailout unwinds the current statement after an error was recorded.
type bailout struct{}

// tooMany unwinds the whole parse once maxErrors is reached.
type tooMany struct{}

// Parser holds the state of a single parse.
type Parser struct {
	name string
	src  string
	toks []scanner.Token
	pos  int
	errs ErrList
}

// Parse parses a Luau chunk. The name is used in error messages and
// recorded on the chunk.
func Parse(name, src string) (*ast.Chunk, error) {
	toks, lexErrs := scanner.Tokenize(src)
	p := &Parser{name: name, src: src, toks: toks}
	for _, le := range lexErrs {
		p.errs = append(p.errs, &Error{File: name, Pos: le.Pos, Msg: le.Msg})
	}
	chunk := p.parseChunk()
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return chunk, nil
}

// Reparse prints a chunk and parses the result, producing a fresh tree
// whose spans describe the printed text. It fails when the printed form is
// not valid Luau.
func Reparse(chunk *ast.Chunk) (*ast.Chunk, error) {
	return Parse(chunk.Name, ast.Print(chunk))
}

func (p *Parser) parseChunk() (chunk *ast.Chunk) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(tooMany); !ok {
				panic(r)
			}
			chunk = nil
		}
	}()
	block := p.block()
	if p.tok().Kind != scanner.EOF {
		p.record(p.tok().Pos, fmt.Sprintf("expected <eof> near '%s'", p.tok()))
	}
	return &ast.Chunk{Name: p.name, Block: block}
}

// --- token helpers ---

func (p *Parser) tok() scanner.Token { return p.toks[p.pos] }

func (p *Parser) peekTok(n int) scanner.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) next() scanner.Token {
	t := p.toks[p.pos]
	if t.Kind != scanner.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) is(s string) bool { return p.tok().Is(s) }

func (p *Parser) isName(s string) bool {
	t := p.tok()
	return t.Kind == scanner.Name && t.Text == s
}

func (p *Parser) accept(s string) bool {
	if p.is(s) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) prevEnd() scanner.Position {
	if p.pos == 0 {
		return p.toks[0].Pos
	}
	return p.toks[p.pos-1].End
}

func (p *Parser) span(start scanner.Position) ast.Span {
	return ast.Span{Start: start, End: p.prevEnd()}
}

func (p *Parser) record(pos scanner.Position, msg string) {
	p.errs = append(p.errs, &Error{File: p.name, Pos: pos, Msg: msg})
	if len(p.errs) >= maxErrors {
		panic(tooMany{})
	}
}

func (p *Parser) errorf(format string, args ...any) {
	p.record(p.tok().Pos, fmt.Sprintf(format, args...))
	panic(bailout{})
}

func (p *Parser) expect(s, context string) scanner.Token {
	if !p.is(s) {
		if context != "" {
			p.errorf("expected '%s' %s near '%s'", s, context, p.tok())
		}
		p.errorf("expected '%s' near '%s'", s, p.tok())
	}
	return p.next()
}

func (p *Parser) expectName() string {
	t := p.tok()
	if t.Kind != scanner.Name {
		p.errorf("expected identifier near '%s'", t)
	}
	p.next()
	return t.Text
}

// --- blocks and statements ---

func (p *Parser) blockEnd() bool {
	t := p.tok()
	if t.Kind == scanner.EOF {
		return true
	}
	return t.Is("end") || t.Is("else") || t.Is("elseif") || t.Is("until")
}

func (p *Parser) block() *ast.Block {
	start := p.tok().Pos
	b := &ast.Block{}
	for {
		for p.accept(";") {
		}
		if p.blockEnd() {
			break
		}
		s, ok := p.safeStatement()
		if !ok {
			continue
		}
		b.Stmts = append(b.Stmts, s)
		if _, isReturn := s.(*ast.Return); isReturn {
			p.accept(";")
			if !p.blockEnd() {
				p.record(p.tok().Pos, fmt.Sprintf("expected end of block after 'return' near '%s'", p.tok()))
				p.sync(p.pos)
			}
			break
		}
	}
	b.Span = ast.Span{Start: start, End: p.prevEnd()}
	if len(b.Stmts) == 0 {
		b.Span.End = start
	}
	return b
}

// safeStatement parses one statement, recovering from a bailout by
// skipping to the next statement start.
func (p *Parser) safeStatement() (s ast.Stmt, ok bool) {
	from := p.pos
	defer func() {
		if r := recover(); r != nil {
			if _, isBailout := r.(bailout); !isBailout {
				panic(r)
			}
			p.sync(from)
			s, ok = nil, false
		}
	}()
	return p.statement(), true
}

var syncKeywords = map[string]bool{
	"local": true, "function": true, "if": true, "while": true, "for": true,
	"repeat": true, "do": true, "return": true, "break": true,
	"end": true, "else": true, "elseif": true, "until": true,
}

// sync advances past at least one token and then to the next keyword
// that can begin or close a statement.
func (p *Parser) sync(from int) {
	if p.pos == from {
		p.next()
	}
	for {
		t := p.tok()
		if t.Kind == scanner.EOF || (t.Kind == scanner.Keyword && syncKeywords[t.Text]) {
			return
		}
		p.next()
	}
}

func (p *Parser) statement() ast.Stmt {
	start := p.tok().Pos
	t := p.tok()
	if t.Is("@") {
		return p.attributedFunction(start)
	}
	if t.Kind == scanner.Keyword {
		switch t.Text {
		case "if":
			return p.ifStmt()
		case "while":
			p.next()
			cond := p.expr()
			p.expect("do", "after 'while' condition")
			body := p.block()
			p.expect("end", "to close 'while'")
			return &ast.While{BaseStmt: ast.BaseStmt{Span: p.span(start)}, Cond: cond, Body: body}
		case "do":
			p.next()
			body := p.block()
			p.expect("end", "to close 'do'")
			return &ast.Do{BaseStmt: ast.BaseStmt{Span: p.span(start)}, Body: body}
		case "for":
			return p.forStmt()
		case "repeat":
			p.next()
			body := p.block()
			p.expect("until", "to close 'repeat'")
			cond := p.expr()
			return &ast.Repeat{BaseStmt: ast.BaseStmt{Span: p.span(start)}, Body: body, Cond: cond}
		case "function":
			p.next()
			name := p.funcName()
			fn := p.funcBody(start)
			return &ast.FunctionDecl{BaseStmt: ast.BaseStmt{Span: p.span(start)}, Name: name, Func: fn}
		case "local":
			p.next()
			if p.accept("function") {
				name := p.expectName()
				fn := p.funcBody(start)
				return &ast.LocalFunction{BaseStmt: ast.BaseStmt{Span: p.span(start)}, Name: name, Func: fn}
			}
			names := []ast.Binding{p.binding()}
			for p.accept(",") {
				names = append(names, p.binding())
			}
			var values []ast.Expr
			if p.accept("=") {
				values = p.exprList()
			}
			return &ast.LocalAssign{BaseStmt: ast.BaseStmt{Span: p.span(start)}, Names: names, Values: values}
		case "return":
			p.next()
			var values []ast.Expr
			if !p.blockEnd() && !p.is(";") {
				values = p.exprList()
			}
			return &ast.Return{BaseStmt: ast.BaseStmt{Span: p.span(start)}, Values: values}
		case "break":
			p.next()
			return &ast.Break{BaseStmt: ast.BaseStmt{Span: p.span(start)}}
		}
	}
	if t.Kind == scanner.Name {
		switch {
		case t.Text == "continue" && !continuesExpr(p.peekTok(1)):
			p.next()
			return &ast.Continue{BaseStmt: ast.BaseStmt{Span: p.span(start)}}
		case t.Text == "type" && p.peekTok(1).Kind == scanner.Name:
			return p.typeAlias(start, false)
		case t.Text == "export" && p.peekTok(1).Kind == scanner.Name && p.peekTok(1).Text == "type":
			p.next()
			return p.typeAlias(start, true)
		}
	}
	return p.exprStmt()
}

// attributes parses the attributes in front of a function, such as
// "@native @checked".
func (p *Parser) attributes() []string {
	var attrs []string
	for p.accept("@") {
		attrs = append(attrs, p.expectName())
	}
	return attrs
}

func (p *Parser) attributedFunction(start scanner.Position) ast.Stmt {
	attrs := p.attributes()
	switch {
	case p.accept("function"):
		name := p.funcName()
		fn := p.funcBody(start)
		fn.Attributes = attrs
		return &ast.FunctionDecl{BaseStmt: ast.BaseStmt{Span: p.span(start)}, Name: name, Func: fn}
	case p.is("local") && p.peekTok(1).Is("function"):
		p.next()
		p.next()
		name := p.expectName()
		fn := p.funcBody(start)
		fn.Attributes = attrs
		return &ast.LocalFunction{BaseStmt: ast.BaseStmt{Span: p.span(start)}, Name: name, Func: fn}
	}
	p.errorf("expected 'function' after attributes near '%s'", p.tok())
	return nil
}

// continuesExpr reports whether t can follow an identifier inside an
// expression statement, which makes "continue" an ordinary name.
func continuesExpr(t scanner.Token) bool {
	switch t.Kind {
	case scanner.String, scanner.InterpSimple, scanner.InterpBegin:
		return true
	case scanner.Symbol:
		switch t.Text {
		case "(", ".", "[", ":", "=", ",", "{", "+=", "-=", "*=", "/=", "//=", "%=", "^=", "..=":
			return true
		}
	}
	return false
}

var compoundOps = map[string]bool{
	"+=": true, "-=": true, "*=": true, "/=": true, "//=": true,
	"%=": true, "^=": true, "..=": true,
}

func (p *Parser) exprStmt() ast.Stmt {
	start := p.tok().Pos
	e := p.suffixedExpr()
	if p.is("=") || p.is(",") {
		targets := []ast.Expr{p.assignable(e)}
		for p.accept(",") {
			targets = append(targets, p.assignable(p.suffixedExpr()))
		}
		p.expect("=", "in assignment")
		values := p.exprList()
		return &ast.Assign{BaseStmt: ast.BaseStmt{Span: p.span(start)}, Targets: targets, Values: values}
	}
	if t := p.tok(); t.Kind == scanner.Symbol && compoundOps[t.Text] {
		p.next()
		target := p.assignable(e)
		value := p.expr()
		return &ast.CompoundAssign{BaseStmt: ast.BaseStmt{Span: p.span(start)}, Target: target, Op: t.Text, Value: value}
	}
	call, ok := e.(*ast.CallExpr)
	if !ok {
		p.errorf("incomplete statement: expected assignment or a function call")
	}
	return &ast.CallStmt{BaseStmt: ast.BaseStmt{Span: p.span(start)}, Call: call}
}

func (p *Parser) assignable(e ast.Expr) ast.Expr {
	switch e.(type) {
	case *ast.Name, *ast.Member, *ast.Index:
		return e
	}
	p.errorf("assigned expression must be a variable or a field")
	return nil
}

func (p *Parser) ifStmt() ast.Stmt {
	start := p.tok().Pos
	p.next()
	s := &ast.If{}
	s.Cond = p.expr()
	p.expect("then", "after 'if' condition")
	s.Then = p.block()
	for p.is("elseif") {
		p.next()
		cond := p.expr()
		p.expect("then", "after 'elseif' condition")
		s.ElseIfs = append(s.ElseIfs, ast.ElseIf{Cond: cond, Body: p.block()})
	}
	if p.accept("else") {
		s.Else = p.block()
	}
	p.expect("end", "to close 'if'")
	s.Span = p.span(start)
	return s
}

func (p *Parser) forStmt() ast.Stmt {
	start := p.tok().Pos
	p.next()
	first := p.binding()
	if p.accept("=") {
		s := &ast.NumericFor{Var: first}
		s.Start = p.expr()
		p.expect(",", "in numeric 'for'")
		s.Limit = p.expr()
		if p.accept(",") {
			s.Step = p.expr()
		}
		p.expect("do", "in numeric 'for'")
		s.Body = p.block()
		p.expect("end", "to close 'for'")
		s.Span = p.span(start)
		return s
	}
	s := &ast.GenericFor{Vars: []ast.Binding{first}}
	for p.accept(",") {
		s.Vars = append(s.Vars, p.binding())
	}
	p.expect("in", "in 'for' loop")
	s.Exprs = p.exprList()
	p.expect("do", "in 'for' loop")
	s.Body = p.block()
	p.expect("end", "to close 'for'")
	s.Span = p.span(start)
	return s
}

func (p *Parser) funcName() ast.FuncName {
	start := p.tok().Pos
	name := ast.FuncName{Parts: []string{p.expectName()}}
	for p.accept(".") {
		name.Parts = append(name.Parts, p.expectName())
	}
	if p.accept(":") {
		name.Method = p.expectName()
	}
	name.Span = p.span(start)
	return name
}

func (p *Parser) binding() ast.Binding {
	b := ast.Binding{Name: p.expectName()}
	if p.accept(":") {
		b.Type = p.typeAnnotation()
	}
	return b
}

// funcBody parses [generics] ( params ) [: type] block end.
func (p *Parser) funcBody(start scanner.Position) *ast.FuncBody {
	fn := &ast.FuncBody{}
	if p.is("<") {
		fn.Generics = p.genericList()
	}
	p.expect("(", "to open the parameter list")
	if !p.is(")") {
		for {
			if p.accept("...") {
				fn.Vararg = true
				if p.accept(":") {
					fn.VarargType = p.typePack()
				}
				break
			}
			fn.Params = append(fn.Params, p.binding())
			if !p.accept(",") {
				break
			}
		}
	}
	p.expect(")", "to close the parameter list")
	if p.accept(":") {
		fn.Return = p.typePack()
	}
	fn.Body = p.block()
	p.expect("end", "to close 'function'")
	fn.Span = p.span(start)
	return fn
}

func (p *Parser) typeAlias(start scanner.Position, export bool) ast.Stmt {
	p.next() // "type"
	s := &ast.TypeAlias{Export: export, Name: p.expectName()}
	if p.is("<") {
		s.Generics = p.genericList()
	}
	p.expect("=", "in type alias")
	s.Type = p.typeAnnotation()
	s.Span = p.span(start)
	return s
}

// --- expressions ---

func (p *Parser) exprList() []ast.Expr {
	list := []ast.Expr{p.expr()}
	for p.accept(",") {
		list = append(list, p.expr())
	}
	return list
}

func (p *Parser) expr() ast.Expr { return p.subExpr(0) }

type priority struct{ left, right int }

var binaryPriority = map[string]priority{
	"+": {6, 6}, "-": {6, 6},
	"*": {7, 7}, "/": {7, 7}, "//": {7, 7}, "%": {7, 7},
	"^":  {10, 9},
	"..": {5, 4},
	"==": {3, 3}, "~=": {3, 3}, "<": {3, 3}, "<=": {3, 3}, ">": {3, 3}, ">=": {3, 3},
	"and": {2, 2},
	"or":  {1, 1},
}

const unaryPriority = 8

func (p *Parser) binaryOp() (string, priority, bool) {
	t := p.tok()
	if t.Kind != scanner.Symbol && t.Kind != scanner.Keyword {
		return "", priority{}, false
	}
	pr, ok := binaryPriority[t.Text]
	return t.Text, pr, ok
}

// subExpr parses a binary expression whose operators bind tighter than
// limit.
func (p *Parser) subExpr(limit int) ast.Expr {
	start := p.tok().Pos
	var left ast.Expr
	if t := p.tok(); t.Is("not") || t.Is("-") || t.Is("#") {
		p.next()
		operand := p.subExpr(unaryPriority)
		left = &ast.Unary{BaseExpr: ast.BaseExpr{Span: p.span(start)}, Op: t.Text, Operand: operand}
	} else {
		left = p.simpleExpr()
	}
	for {
		op, pr, ok := p.binaryOp()
		if !ok || pr.left <= limit {
			break
		}
		p.next()
		right := p.subExpr(pr.right)
		left = &ast.Binary{BaseExpr: ast.BaseExpr{Span: p.span(start)}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) simpleExpr() ast.Expr {
	start := p.tok().Pos
	t := p.tok()
	var e ast.Expr
	switch {
	case t.Kind == scanner.Number:
		p.next()
		e = &ast.Number{BaseExpr: ast.BaseExpr{Span: p.span(start)}, Raw: t.Text}
	case t.Kind == scanner.String:
		p.next()
		e = &ast.String{BaseExpr: ast.BaseExpr{Span: p.span(start)}, Raw: t.Text, Value: t.Value}
	case t.Kind == scanner.InterpSimple || t.Kind == scanner.InterpBegin:
		e = p.interpString()
	case t.Is("nil"):
		p.next()
		e = &ast.Nil{BaseExpr: ast.BaseExpr{Span: p.span(start)}}
	case t.Is("true"), t.Is("false"):
		p.next()
		e = &ast.Bool{BaseExpr: ast.BaseExpr{Span: p.span(start)}, Value: t.Text == "true"}
	case t.Is("..."):
		p.next()
		e = &ast.Vararg{BaseExpr: ast.BaseExpr{Span: p.span(start)}}
	case t.Is("{"):
		e = p.table()
	case t.Is("function"), t.Is("@"):
		attrs := p.attributes()
		p.expect("function", "after attributes")
		fn := p.funcBody(start)
		fn.Attributes = attrs
		e = &ast.FunctionExpr{BaseExpr: ast.BaseExpr{Span: p.span(start)}, Func: fn}
	case t.Is("if"):
		e = p.ifExpr()
	default:
		e = p.suffixedExpr()
	}
	for p.accept("::") {
		typ := p.typeAnnotation()
		e = &ast.TypeAssert{BaseExpr: ast.BaseExpr{Span: p.span(start)}, Inner: e, Type: typ}
	}
	return e
}

func (p *Parser) interpString() ast.Expr {
	start := p.tok().Pos
	t := p.next()
	s := &ast.InterpString{Segments: []string{segmentText(t.Text)}}
	if t.Kind == scanner.InterpBegin {
		for {
			s.Exprs = append(s.Exprs, p.expr())
			seg := p.tok()
			if seg.Kind != scanner.InterpMid && seg.Kind != scanner.InterpEnd {
				p.errorf("expected '}' in interpolated string near '%s'", seg)
			}
			p.next()
			s.Segments = append(s.Segments, segmentText(seg.Text))
			if seg.Kind == scanner.InterpEnd {
				break
			}
		}
	}
	s.Span = p.span(start)
	return s
}

// segmentText strips the delimiters from an interpolated string segment.
func segmentText(raw string) string {
	if len(raw) < 2 {
		return ""
	}
	return raw[1 : len(raw)-1]
}

func (p *Parser) ifExpr() ast.Expr {
	start := p.tok().Pos
	p.next()
	e := &ast.IfExpr{}
	e.Cond = p.expr()
	p.expect("then", "in if-expression")
	e.Then = p.expr()
	for p.accept("elseif") {
		cond := p.expr()
		p.expect("then", "in if-expression")
		e.ElseIfs = append(e.ElseIfs, ast.ElseIfExpr{Cond: cond, Then: p.expr()})
	}
	p.expect("else", "in if-expression")
	e.Else = p.expr()
	e.Span = p.span(start)
	return e
}

func (p *Parser) primaryExpr() ast.Expr {
	start := p.tok().Pos
	t := p.tok()
	if t.Kind == scanner.Name {
		p.next()
		return &ast.Name{BaseExpr: ast.BaseExpr{Span: p.span(start)}, Name: t.Text}
	}
	if p.accept("(") {
		inner := p.expr()
		p.expect(")", "to close '('")
		return &ast.Paren{BaseExpr: ast.BaseExpr{Span: p.span(start)}, Inner: inner}
	}
	p.errorf("unexpected symbol near '%s'", t)
	return nil
}

func (p *Parser) suffixedExpr() ast.Expr {
	start := p.tok().Pos
	e := p.primaryExpr()
	for {
		t := p.tok()
		switch {
		case t.Is("."):
			p.next()
			name := p.expectName()
			e = &ast.Member{BaseExpr: ast.BaseExpr{Span: p.span(start)}, Object: e, Name: name}
		case t.Is("["):
			p.next()
			key := p.expr()
			p.expect("]", "to close '['")
			e = &ast.Index{BaseExpr: ast.BaseExpr{Span: p.span(start)}, Object: e, Key: key}
		case t.Is(":"):
			p.next()
			method := p.expectName()
			call := p.callArgs(e)
			call.Method = method
			call.Span = p.span(start)
			e = call
		case t.Is("("), t.Is("{"), t.Kind == scanner.String:
			call := p.callArgs(e)
			call.Span = p.span(start)
			e = call
		default:
			return e
		}
	}
}

func (p *Parser) callArgs(fn ast.Expr) *ast.CallExpr {
	call := &ast.CallExpr{Func: fn}
	t := p.tok()
	switch {
	case t.Kind == scanner.String:
		p.next()
		call.Style = ast.ArgsString
		call.Args = []ast.Expr{&ast.String{BaseExpr: ast.BaseExpr{Span: ast.Span{Start: t.Pos, End: t.End}}, Raw: t.Text, Value: t.Value}}
	case t.Is("{"):
		call.Style = ast.ArgsTable
		call.Args = []ast.Expr{p.table()}
	case t.Is("("):
		p.next()
		if !p.is(")") {
			call.Args = p.exprList()
		}
		p.expect(")", "to close the argument list")
	default:
		p.errorf("expected function arguments near '%s'", t)
	}
	return call
}

func (p *Parser) table() ast.Expr {
	start := p.tok().Pos
	p.expect("{", "")
	t := &ast.Table{}
	for !p.is("}") {
		var f ast.Field
		switch {
		case p.is("["):
			p.next()
			f.Kind = ast.FieldKeyed
			f.Key = p.expr()
			p.expect("]", "to close table key")
			p.expect("=", "after table key")
			f.Value = p.expr()
		case p.tok().Kind == scanner.Name && p.peekTok(1).Is("="):
			f.Kind = ast.FieldNamed
			f.Name = p.next().Text
			p.next()
			f.Value = p.expr()
		default:
			f.Value = p.expr()
		}
		t.Fields = append(t.Fields, f)
		if !p.accept(",") && !p.accept(";") {
			break
		}
	}
	p.expect("}", "to close table constructor")
	t.Span = p.span(start)
	return t
}
