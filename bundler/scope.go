package bundler

import (
	"fmt"

	"github.com/rubiojr/templated/ast"
)

// Rule is one concern applied during a depth-aware walk. A statement hook
// runs before the walker descends into the statement; an expression hook
// runs after the expression's children were rewritten. Either may return
// a replacement node.
type Rule struct {
	name string
	stmt func(w *scopeWalker, s ast.Stmt, depth int) (ast.Stmt, error)
	expr func(w *scopeWalker, e ast.Expr, depth int) (ast.Expr, error)
}

// Name returns the rule name used in logs and internal errors.
func (r Rule) Name() string { return r.name }

// scopeWalker rewrites a module tree, threading the scope depth through
// every call. Depth 0 is the module's top-level block; every construct
// that can hold nested statements or expressions is walked at depth+1.
//
// open counts scopes entered and not yet left. A complete walk must end
// with open == 0.
type scopeWalker struct {
	module  *SourceModule
	rules   []Rule
	collect bool
	diags   DiagnosticList
	exports []Export
	open    int
}

// Walk applies rules to m in a single traversal and returns the rewritten
// module. With collect set, diagnostics are gathered and returned together
// as a DiagnosticList once the walk is complete; otherwise the first one
// aborts the walk.
func Walk(m *SourceModule, collect bool, rules ...Rule) (*SourceModule, error) {
	w := &scopeWalker{module: m, rules: rules, collect: collect}
	block, err := w.block(m.Chunk.Block, 0)
	if err != nil {
		return nil, err
	}
	if w.open != 0 {
		return nil, &InternalError{
			Path: m.Path,
			Pass: ruleNames(rules),
			Msg:  fmt.Sprintf("scope walk ended with %d open scope(s)", w.open),
		}
	}
	if len(w.diags) > 0 {
		return nil, w.diags
	}
	out := m
	if block != m.Chunk.Block {
		out = m.withChunk(&ast.Chunk{Name: m.Chunk.Name, Block: block})
	}
	if len(w.exports) > 0 {
		if out == m {
			cp := *m
			out = &cp
		}
		out.Exports = append(append([]Export(nil), m.Exports...), w.exports...)
	}
	return out, nil
}

func ruleNames(rules []Rule) string {
	s := ""
	for i, r := range rules {
		if i > 0 {
			s += "+"
		}
		s += r.name
	}
	return s
}

// report records d in collect mode, or returns it to abort the walk.
func (w *scopeWalker) report(d *Diagnostic) error {
	if w.collect {
		w.diags = append(w.diags, d)
		return nil
	}
	return d
}

func (w *scopeWalker) enter(depth int) int {
	w.open++
	return depth + 1
}

func (w *scopeWalker) exit() {
	w.open--
}

func (w *scopeWalker) block(b *ast.Block, depth int) (*ast.Block, error) {
	stmts, changed, err := ast.MapSlice(b.Stmts, func(s ast.Stmt) (ast.Stmt, error) {
		return w.stmt(s, depth)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return b, nil
	}
	// a nil statement was removed by a rule
	kept := stmts[:0:0]
	for _, s := range stmts {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &ast.Block{Span: b.Span, Stmts: kept}, nil
}

func (w *scopeWalker) exprs(es []ast.Expr, depth int) ([]ast.Expr, bool, error) {
	return ast.MapSlice(es, func(e ast.Expr) (ast.Expr, error) {
		return w.expr(e, depth)
	})
}

func (w *scopeWalker) funcBody(f *ast.FuncBody, depth int) (*ast.FuncBody, error) {
	d := w.enter(depth)
	body, err := w.block(f.Body, d)
	if err != nil {
		return nil, err
	}
	w.exit()
	if body == f.Body {
		return f, nil
	}
	cp := *f
	cp.Body = body
	return &cp, nil
}

func (w *scopeWalker) stmt(s ast.Stmt, depth int) (ast.Stmt, error) {
	for _, r := range w.rules {
		if r.stmt == nil {
			continue
		}
		var err error
		if s, err = r.stmt(w, s, depth); err != nil {
			return nil, err
		}
	}
	d := w.enter(depth)
	out, err := w.stmtChildren(s, d)
	if err != nil {
		return nil, err
	}
	w.exit()
	return out, nil
}

// stmtChildren rewrites the children of s at depth d.
func (w *scopeWalker) stmtChildren(s ast.Stmt, d int) (ast.Stmt, error) {
	switch st := s.(type) {
	case *ast.LocalAssign:
		values, changed, err := w.exprs(st.Values, d)
		if err != nil || !changed {
			return s, err
		}
		cp := *st
		cp.Values = values
		return &cp, nil

	case *ast.LocalFunction:
		fn, err := w.funcBody(st.Func, d)
		if err != nil || fn == st.Func {
			return s, err
		}
		cp := *st
		cp.Func = fn
		return &cp, nil

	case *ast.FunctionDecl:
		fn, err := w.funcBody(st.Func, d)
		if err != nil || fn == st.Func {
			return s, err
		}
		cp := *st
		cp.Func = fn
		return &cp, nil

	case *ast.Assign:
		targets, tc, err := w.exprs(st.Targets, d)
		if err != nil {
			return nil, err
		}
		values, vc, err := w.exprs(st.Values, d)
		if err != nil || (!tc && !vc) {
			return s, err
		}
		cp := *st
		cp.Targets, cp.Values = targets, values
		return &cp, nil

	case *ast.CompoundAssign:
		target, err := w.expr(st.Target, d)
		if err != nil {
			return nil, err
		}
		value, err := w.expr(st.Value, d)
		if err != nil || (target == st.Target && value == st.Value) {
			return s, err
		}
		cp := *st
		cp.Target, cp.Value = target, value
		return &cp, nil

	case *ast.CallStmt:
		e, err := w.expr(st.Call, d)
		if err != nil || e == ast.Expr(st.Call) {
			return s, err
		}
		call, ok := e.(*ast.CallExpr)
		if !ok {
			// the call was replaced by a plain reference, which has no
			// effect as a statement
			return nil, nil
		}
		cp := *st
		cp.Call = call
		return &cp, nil

	case *ast.Do:
		body, err := w.block(st.Body, d)
		if err != nil || body == st.Body {
			return s, err
		}
		cp := *st
		cp.Body = body
		return &cp, nil

	case *ast.While:
		cond, err := w.expr(st.Cond, d)
		if err != nil {
			return nil, err
		}
		body, err := w.block(st.Body, d)
		if err != nil || (cond == st.Cond && body == st.Body) {
			return s, err
		}
		cp := *st
		cp.Cond, cp.Body = cond, body
		return &cp, nil

	case *ast.Repeat:
		body, err := w.block(st.Body, d)
		if err != nil {
			return nil, err
		}
		cond, err := w.expr(st.Cond, d)
		if err != nil || (cond == st.Cond && body == st.Body) {
			return s, err
		}
		cp := *st
		cp.Cond, cp.Body = cond, body
		return &cp, nil

	case *ast.If:
		return w.ifStmt(st, d)

	case *ast.NumericFor:
		start, err := w.expr(st.Start, d)
		if err != nil {
			return nil, err
		}
		limit, err := w.expr(st.Limit, d)
		if err != nil {
			return nil, err
		}
		step, err := w.expr(st.Step, d)
		if err != nil {
			return nil, err
		}
		body, err := w.block(st.Body, d)
		if err != nil {
			return nil, err
		}
		if start == st.Start && limit == st.Limit && step == st.Step && body == st.Body {
			return s, nil
		}
		cp := *st
		cp.Start, cp.Limit, cp.Step, cp.Body = start, limit, step, body
		return &cp, nil

	case *ast.GenericFor:
		exprs, changed, err := w.exprs(st.Exprs, d)
		if err != nil {
			return nil, err
		}
		body, err := w.block(st.Body, d)
		if err != nil || (!changed && body == st.Body) {
			return s, err
		}
		cp := *st
		cp.Exprs, cp.Body = exprs, body
		return &cp, nil

	case *ast.Return:
		values, changed, err := w.exprs(st.Values, d)
		if err != nil || !changed {
			return s, err
		}
		cp := *st
		cp.Values = values
		return &cp, nil
	}
	return s, nil
}

func (w *scopeWalker) ifStmt(st *ast.If, d int) (ast.Stmt, error) {
	cond, err := w.expr(st.Cond, d)
	if err != nil {
		return nil, err
	}
	then, err := w.block(st.Then, d)
	if err != nil {
		return nil, err
	}
	changed := cond != st.Cond || then != st.Then
	elseIfs := st.ElseIfs
	copied := false
	for i, ei := range st.ElseIfs {
		c, err := w.expr(ei.Cond, d)
		if err != nil {
			return nil, err
		}
		b, err := w.block(ei.Body, d)
		if err != nil {
			return nil, err
		}
		if c != ei.Cond || b != ei.Body {
			if !copied {
				elseIfs = append([]ast.ElseIf(nil), st.ElseIfs...)
				copied = true
			}
			elseIfs[i] = ast.ElseIf{Cond: c, Body: b}
			changed = true
		}
	}
	elseBlock := st.Else
	if st.Else != nil {
		if elseBlock, err = w.block(st.Else, d); err != nil {
			return nil, err
		}
		changed = changed || elseBlock != st.Else
	}
	if !changed {
		return st, nil
	}
	cp := *st
	cp.Cond, cp.Then, cp.ElseIfs, cp.Else = cond, then, elseIfs, elseBlock
	return &cp, nil
}

func (w *scopeWalker) expr(e ast.Expr, depth int) (ast.Expr, error) {
	if e == nil {
		return nil, nil
	}
	out, err := w.exprChildren(e, depth)
	if err != nil {
		return nil, err
	}
	for _, r := range w.rules {
		if r.expr == nil {
			continue
		}
		if out, err = r.expr(w, out, depth); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (w *scopeWalker) exprChildren(e ast.Expr, depth int) (ast.Expr, error) {
	switch ex := e.(type) {
	case *ast.Binary:
		left, err := w.expr(ex.Left, depth)
		if err != nil {
			return nil, err
		}
		right, err := w.expr(ex.Right, depth)
		if err != nil || (left == ex.Left && right == ex.Right) {
			return e, err
		}
		cp := *ex
		cp.Left, cp.Right = left, right
		return &cp, nil

	case *ast.Unary:
		operand, err := w.expr(ex.Operand, depth)
		if err != nil || operand == ex.Operand {
			return e, err
		}
		cp := *ex
		cp.Operand = operand
		return &cp, nil

	case *ast.Paren:
		inner, err := w.expr(ex.Inner, depth)
		if err != nil || inner == ex.Inner {
			return e, err
		}
		cp := *ex
		cp.Inner = inner
		return &cp, nil

	case *ast.TypeAssert:
		inner, err := w.expr(ex.Inner, depth)
		if err != nil || inner == ex.Inner {
			return e, err
		}
		cp := *ex
		cp.Inner = inner
		return &cp, nil

	case *ast.Member:
		obj, err := w.expr(ex.Object, depth)
		if err != nil || obj == ex.Object {
			return e, err
		}
		cp := *ex
		cp.Object = obj
		return &cp, nil

	case *ast.Index:
		obj, err := w.expr(ex.Object, depth)
		if err != nil {
			return nil, err
		}
		key, err := w.expr(ex.Key, depth)
		if err != nil || (obj == ex.Object && key == ex.Key) {
			return e, err
		}
		cp := *ex
		cp.Object, cp.Key = obj, key
		return &cp, nil

	case *ast.CallExpr:
		fn, err := w.expr(ex.Func, depth)
		if err != nil {
			return nil, err
		}
		d := w.enter(depth)
		args, changed, err := w.exprs(ex.Args, d)
		if err != nil {
			return nil, err
		}
		w.exit()
		if fn == ex.Func && !changed {
			return e, nil
		}
		cp := *ex
		cp.Func, cp.Args = fn, args
		return &cp, nil

	case *ast.FunctionExpr:
		fn, err := w.funcBody(ex.Func, depth)
		if err != nil || fn == ex.Func {
			return e, err
		}
		cp := *ex
		cp.Func = fn
		return &cp, nil

	case *ast.Table:
		d := w.enter(depth)
		var fields []ast.Field
		for i, f := range ex.Fields {
			key, err := w.expr(f.Key, d)
			if err != nil {
				return nil, err
			}
			value, err := w.expr(f.Value, d)
			if err != nil {
				return nil, err
			}
			if (key != f.Key || value != f.Value) && fields == nil {
				fields = append([]ast.Field(nil), ex.Fields...)
			}
			if fields != nil {
				fields[i] = ast.Field{Kind: f.Kind, Name: f.Name, Key: key, Value: value}
			}
		}
		w.exit()
		if fields == nil {
			return e, nil
		}
		cp := *ex
		cp.Fields = fields
		return &cp, nil

	case *ast.IfExpr:
		d := w.enter(depth)
		cond, err := w.expr(ex.Cond, d)
		if err != nil {
			return nil, err
		}
		then, err := w.expr(ex.Then, d)
		if err != nil {
			return nil, err
		}
		changed := cond != ex.Cond || then != ex.Then
		elseIfs := ex.ElseIfs
		copied := false
		for i, ei := range ex.ElseIfs {
			c, err := w.expr(ei.Cond, d)
			if err != nil {
				return nil, err
			}
			t, err := w.expr(ei.Then, d)
			if err != nil {
				return nil, err
			}
			if c != ei.Cond || t != ei.Then {
				if !copied {
					elseIfs = append([]ast.ElseIfExpr(nil), ex.ElseIfs...)
					copied = true
				}
				elseIfs[i] = ast.ElseIfExpr{Cond: c, Then: t}
				changed = true
			}
		}
		elseExpr, err := w.expr(ex.Else, d)
		if err != nil {
			return nil, err
		}
		w.exit()
		if !changed && elseExpr == ex.Else {
			return e, nil
		}
		cp := *ex
		cp.Cond, cp.Then, cp.ElseIfs, cp.Else = cond, then, elseIfs, elseExpr
		return &cp, nil

	case *ast.InterpString:
		exprs, changed, err := w.exprs(ex.Exprs, depth)
		if err != nil || !changed {
			return e, err
		}
		cp := *ex
		cp.Exprs = exprs
		return &cp, nil
	}
	return e, nil
}
