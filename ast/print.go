package ast

import (
	"strings"
)

// Print serializes a chunk to Luau source. Comments and original layout
// are not preserved; the output parses back to an equivalent tree.
func Print(chunk *Chunk) string {
	p := &printer{}
	p.stmts(chunk.Block.Stmts)
	return p.sb.String()
}

// PrintStmt renders a single statement at indentation level zero,
// without the trailing newline.
func PrintStmt(s Stmt) string {
	p := &printer{}
	p.stmt(s)
	return strings.TrimSuffix(p.sb.String(), "\n")
}

// PrintExpr renders a single expression.
func PrintExpr(e Expr) string {
	p := &printer{}
	p.expr(e)
	return p.sb.String()
}

type printer struct {
	sb     strings.Builder
	indent int
}

func (p *printer) raw(s string) {
	p.sb.WriteString(s)
}

func (p *printer) writeIndent() {
	for range p.indent {
		p.sb.WriteByte('\t')
	}
}

func (p *printer) block(b *Block) {
	p.indent++
	p.stmts(b.Stmts)
	p.indent--
}

func (p *printer) stmts(stmts []Stmt) {
	for _, s := range stmts {
		p.stmt(s)
	}
}

// end closes a block opened on a previous line.
func (p *printer) end(keyword string) {
	p.writeIndent()
	p.raw(keyword)
}

func (p *printer) stmt(s Stmt) {
	p.writeIndent()
	switch st := s.(type) {
	case *LocalAssign:
		p.raw("local ")
		p.bindings(st.Names)
		if len(st.Values) > 0 {
			p.raw(" = ")
			p.exprList(st.Values)
		}
	case *LocalFunction:
		p.attributes(st.Func)
		p.raw("local function " + st.Name)
		p.funcBody(st.Func)
	case *FunctionDecl:
		p.attributes(st.Func)
		p.raw("function " + st.Name.String())
		p.funcBody(st.Func)
	case *Assign:
		if startsWithParen(st.Targets[0]) {
			p.raw(";")
		}
		p.exprList(st.Targets)
		p.raw(" = ")
		p.exprList(st.Values)
	case *CompoundAssign:
		if startsWithParen(st.Target) {
			p.raw(";")
		}
		p.expr(st.Target)
		p.raw(" " + st.Op + " ")
		p.expr(st.Value)
	case *CallStmt:
		if startsWithParen(st.Call) {
			p.raw(";")
		}
		p.expr(st.Call)
	case *Do:
		p.raw("do\n")
		p.block(st.Body)
		p.end("end")
	case *While:
		p.raw("while ")
		p.expr(st.Cond)
		p.raw(" do\n")
		p.block(st.Body)
		p.end("end")
	case *Repeat:
		p.raw("repeat\n")
		p.block(st.Body)
		p.end("until ")
		p.expr(st.Cond)
	case *If:
		p.raw("if ")
		p.expr(st.Cond)
		p.raw(" then\n")
		p.block(st.Then)
		for _, ei := range st.ElseIfs {
			p.end("elseif ")
			p.expr(ei.Cond)
			p.raw(" then\n")
			p.block(ei.Body)
		}
		if st.Else != nil {
			p.end("else\n")
			p.block(st.Else)
		}
		p.end("end")
	case *NumericFor:
		p.raw("for ")
		p.binding(st.Var)
		p.raw(" = ")
		p.expr(st.Start)
		p.raw(", ")
		p.expr(st.Limit)
		if st.Step != nil {
			p.raw(", ")
			p.expr(st.Step)
		}
		p.raw(" do\n")
		p.block(st.Body)
		p.end("end")
	case *GenericFor:
		p.raw("for ")
		p.bindings(st.Vars)
		p.raw(" in ")
		p.exprList(st.Exprs)
		p.raw(" do\n")
		p.block(st.Body)
		p.end("end")
	case *Return:
		p.raw("return")
		if len(st.Values) > 0 {
			p.raw(" ")
			p.exprList(st.Values)
		}
	case *Break:
		p.raw("break")
	case *Continue:
		p.raw("continue")
	case *TypeAlias:
		if st.Export {
			p.raw("export ")
		}
		p.raw("type " + st.Name)
		if st.Generics != nil {
			p.raw(st.Generics.Text)
		}
		p.raw(" = " + st.Type.Text)
	}
	p.raw("\n")
}

func (p *printer) binding(b Binding) {
	p.raw(b.Name)
	if b.Type != nil {
		p.raw(": " + b.Type.Text)
	}
}

func (p *printer) bindings(bs []Binding) {
	for i, b := range bs {
		if i > 0 {
			p.raw(", ")
		}
		p.binding(b)
	}
}

func (p *printer) attributes(f *FuncBody) {
	for _, a := range f.Attributes {
		p.raw("@" + a + " ")
	}
}

func (p *printer) funcBody(f *FuncBody) {
	if f.Generics != nil {
		p.raw(f.Generics.Text)
	}
	p.raw("(")
	p.bindings(f.Params)
	if f.Vararg {
		if len(f.Params) > 0 {
			p.raw(", ")
		}
		p.raw("...")
		if f.VarargType != nil {
			p.raw(": " + f.VarargType.Text)
		}
	}
	p.raw(")")
	if f.Return != nil {
		p.raw(": " + f.Return.Text)
	}
	p.raw("\n")
	p.block(f.Body)
	p.end("end")
}

func (p *printer) exprList(es []Expr) {
	for i, e := range es {
		if i > 0 {
			p.raw(", ")
		}
		p.expr(e)
	}
}

// bracketed writes [e], padding with spaces when e is a long string so
// the brackets do not merge into a long-bracket opener or closer.
func (p *printer) bracketed(e Expr) {
	if s, ok := e.(*String); ok && strings.HasPrefix(s.Raw, "[") {
		p.raw("[ " + s.Raw + " ]")
		return
	}
	p.raw("[")
	p.expr(e)
	p.raw("]")
}

func (p *printer) expr(e Expr) {
	switch ex := e.(type) {
	case *Nil:
		p.raw("nil")
	case *Bool:
		if ex.Value {
			p.raw("true")
		} else {
			p.raw("false")
		}
	case *Number:
		p.raw(ex.Raw)
	case *String:
		p.raw(ex.Raw)
	case *InterpString:
		p.raw("`")
		for i, seg := range ex.Segments {
			p.raw(seg)
			if i < len(ex.Exprs) {
				p.raw("{")
				if _, ok := ex.Exprs[i].(*Table); ok {
					p.raw(" ")
				}
				p.expr(ex.Exprs[i])
				p.raw("}")
			}
		}
		p.raw("`")
	case *Vararg:
		p.raw("...")
	case *FunctionExpr:
		p.attributes(ex.Func)
		p.raw("function")
		p.funcBody(ex.Func)
	case *Table:
		p.table(ex)
	case *Binary:
		p.expr(ex.Left)
		p.raw(" " + ex.Op + " ")
		p.expr(ex.Right)
	case *Unary:
		p.raw(ex.Op)
		if ex.Op == "not" {
			p.raw(" ")
		} else if u, ok := ex.Operand.(*Unary); ok && ex.Op == "-" && u.Op == "-" {
			p.raw(" ")
		}
		p.expr(ex.Operand)
	case *Paren:
		p.raw("(")
		p.expr(ex.Inner)
		p.raw(")")
	case *Name:
		p.raw(ex.Name)
	case *Member:
		p.expr(ex.Object)
		p.raw("." + ex.Name)
	case *Index:
		p.expr(ex.Object)
		p.bracketed(ex.Key)
	case *CallExpr:
		p.expr(ex.Func)
		if ex.Method != "" {
			p.raw(":" + ex.Method)
		}
		switch ex.Style {
		case ArgsString, ArgsTable:
			p.raw(" ")
			p.expr(ex.Args[0])
		default:
			p.raw("(")
			p.exprList(ex.Args)
			p.raw(")")
		}
	case *IfExpr:
		p.raw("if ")
		p.expr(ex.Cond)
		p.raw(" then ")
		p.expr(ex.Then)
		for _, ei := range ex.ElseIfs {
			p.raw(" elseif ")
			p.expr(ei.Cond)
			p.raw(" then ")
			p.expr(ei.Then)
		}
		p.raw(" else ")
		p.expr(ex.Else)
	case *TypeAssert:
		p.expr(ex.Inner)
		p.raw(" :: " + ex.Type.Text)
	}
}

func (p *printer) table(t *Table) {
	if len(t.Fields) == 0 {
		p.raw("{}")
		return
	}
	p.raw("{ ")
	for i, f := range t.Fields {
		if i > 0 {
			p.raw(", ")
		}
		switch f.Kind {
		case FieldNamed:
			p.raw(f.Name + " = ")
		case FieldKeyed:
			p.bracketed(f.Key)
			p.raw(" = ")
		}
		p.expr(f.Value)
	}
	p.raw(" }")
}

// startsWithParen reports whether e prints with a leading '(', which
// would otherwise continue the previous statement as a call.
func startsWithParen(e Expr) bool {
	for {
		switch ex := e.(type) {
		case *Paren:
			return true
		case *Member:
			e = ex.Object
		case *Index:
			e = ex.Object
		case *CallExpr:
			e = ex.Func
		default:
			return false
		}
	}
}
