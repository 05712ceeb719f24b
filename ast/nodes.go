// Package ast defines the Luau syntax tree produced by the parser and
// consumed by the bundler passes, together with a printer that turns a
// tree back into source text.
package ast

import "github.com/rubiojr/templated/scanner"

// Span is the source range covered by a node.
type Span struct {
	Start scanner.Position
	End   scanner.Position
}

// Node is the interface for all AST nodes.
type Node interface {
	node()
	NodeSpan() Span
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt()
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr()
}

// BaseStmt provides common fields for all statements.
type BaseStmt struct {
	Span Span
}

func (b BaseStmt) NodeSpan() Span { return b.Span }

// BaseExpr provides common fields for all expressions.
type BaseExpr struct {
	Span Span
}

func (b BaseExpr) NodeSpan() Span { return b.Span }

// Chunk is the root node: one parsed source file.
type Chunk struct {
	Name  string // display path of the source file
	Block *Block
}

func (c *Chunk) node()          {}
func (c *Chunk) NodeSpan() Span { return c.Block.Span }

// Block is a sequence of statements.
type Block struct {
	Span  Span
	Stmts []Stmt
}

func (b *Block) node()          {}
func (b *Block) NodeSpan() Span { return b.Span }

// Type is a type annotation. Types have no runtime meaning for the
// bundler, so they are kept as their source text.
type Type struct {
	Span Span
	Text string
}

// Binding is a name introduced by local, for or a parameter list.
type Binding struct {
	Name string
	Type *Type // nil if unannotated
}

// FuncBody is the shared part of function declarations and literals.
type FuncBody struct {
	Span       Span
	Attributes []string // names of leading attributes, "native" for @native
	Generics   *Type // raw "<T, U...>" text, nil if none
	Params     []Binding
	Vararg     bool
	VarargType *Type
	Return     *Type
	Body       *Block
}

// --- Statements ---

// LocalAssign represents local a, b = x, y.
type LocalAssign struct {
	BaseStmt
	Names  []Binding
	Values []Expr
}

func (s *LocalAssign) node() {}
func (s *LocalAssign) stmt() {}

// LocalFunction represents local function name() ... end.
type LocalFunction struct {
	BaseStmt
	Name string
	Func *FuncBody
}

func (s *LocalFunction) node() {}
func (s *LocalFunction) stmt() {}

// FuncName is the dotted name of a function declaration, e.g. a.b.c or
// a.b:c. Method is empty when there is no ':' segment.
type FuncName struct {
	Span   Span
	Parts  []string
	Method string
}

// String renders the name as it appears in source.
func (n FuncName) String() string {
	s := ""
	for i, p := range n.Parts {
		if i > 0 {
			s += "."
		}
		s += p
	}
	if n.Method != "" {
		s += ":" + n.Method
	}
	return s
}

// FunctionDecl represents function name() ... end.
type FunctionDecl struct {
	BaseStmt
	Name FuncName
	Func *FuncBody
}

func (s *FunctionDecl) node() {}
func (s *FunctionDecl) stmt() {}

// Assign represents a, b.c = x, y.
type Assign struct {
	BaseStmt
	Targets []Expr
	Values  []Expr
}

func (s *Assign) node() {}
func (s *Assign) stmt() {}

// CompoundAssign represents target op= value.
type CompoundAssign struct {
	BaseStmt
	Target Expr
	Op     string // "+=", "..=", ...
	Value  Expr
}

func (s *CompoundAssign) node() {}
func (s *CompoundAssign) stmt() {}

// CallStmt is a function or method call used as a statement.
type CallStmt struct {
	BaseStmt
	Call *CallExpr
}

func (s *CallStmt) node() {}
func (s *CallStmt) stmt() {}

// Do represents do ... end.
type Do struct {
	BaseStmt
	Body *Block
}

func (s *Do) node() {}
func (s *Do) stmt() {}

// While represents while cond do ... end.
type While struct {
	BaseStmt
	Cond Expr
	Body *Block
}

func (s *While) node() {}
func (s *While) stmt() {}

// Repeat represents repeat ... until cond.
type Repeat struct {
	BaseStmt
	Body *Block
	Cond Expr
}

func (s *Repeat) node() {}
func (s *Repeat) stmt() {}

// ElseIf is one elseif branch of an If statement.
type ElseIf struct {
	Cond Expr
	Body *Block
}

// If represents if/elseif/else/end.
type If struct {
	BaseStmt
	Cond    Expr
	Then    *Block
	ElseIfs []ElseIf
	Else    *Block // nil when there is no else branch
}

func (s *If) node() {}
func (s *If) stmt() {}

// NumericFor represents for i = start, limit[, step] do ... end.
type NumericFor struct {
	BaseStmt
	Var   Binding
	Start Expr
	Limit Expr
	Step  Expr // nil if omitted
	Body  *Block
}

func (s *NumericFor) node() {}
func (s *NumericFor) stmt() {}

// GenericFor represents for k, v in exprs do ... end.
type GenericFor struct {
	BaseStmt
	Vars  []Binding
	Exprs []Expr
	Body  *Block
}

func (s *GenericFor) node() {}
func (s *GenericFor) stmt() {}

// Return represents return [values].
type Return struct {
	BaseStmt
	Values []Expr
}

func (s *Return) node() {}
func (s *Return) stmt() {}

// Break represents break.
type Break struct{ BaseStmt }

func (s *Break) node() {}
func (s *Break) stmt() {}

// Continue represents continue.
type Continue struct{ BaseStmt }

func (s *Continue) node() {}
func (s *Continue) stmt() {}

// TypeAlias represents [export] type Name<T> = Type.
type TypeAlias struct {
	BaseStmt
	Export   bool
	Name     string
	Generics *Type
	Type     *Type
}

func (s *TypeAlias) node() {}
func (s *TypeAlias) stmt() {}

// --- Expressions ---

// Nil represents nil.
type Nil struct{ BaseExpr }

func (e *Nil) node() {}
func (e *Nil) expr() {}

// Bool represents true or false.
type Bool struct {
	BaseExpr
	Value bool
}

func (e *Bool) node() {}
func (e *Bool) expr() {}

// Number is a numeric literal kept in its source form.
type Number struct {
	BaseExpr
	Raw string
}

func (e *Number) node() {}
func (e *Number) expr() {}

// String is a string literal. Raw is the quoted source form.
type String struct {
	BaseExpr
	Raw   string
	Value string
}

func (e *String) node() {}
func (e *String) expr() {}

// InterpString represents `a{x}b{y}c`. Segments holds the raw text between
// delimiters and has exactly len(Exprs)+1 elements.
type InterpString struct {
	BaseExpr
	Segments []string
	Exprs    []Expr
}

func (e *InterpString) node() {}
func (e *InterpString) expr() {}

// Vararg represents "...".
type Vararg struct{ BaseExpr }

func (e *Vararg) node() {}
func (e *Vararg) expr() {}

// FunctionExpr is an anonymous function literal.
type FunctionExpr struct {
	BaseExpr
	Func *FuncBody
}

func (e *FunctionExpr) node() {}
func (e *FunctionExpr) expr() {}

// FieldKind distinguishes table constructor entries.
type FieldKind int

const (
	FieldPositional FieldKind = iota // value
	FieldNamed                       // name = value
	FieldKeyed                       // [key] = value
)

// Field is one entry of a table constructor.
type Field struct {
	Kind  FieldKind
	Name  string // FieldNamed
	Key   Expr   // FieldKeyed
	Value Expr
}

// Table represents a table constructor {...}.
type Table struct {
	BaseExpr
	Fields []Field
}

func (e *Table) node() {}
func (e *Table) expr() {}

// Binary represents left op right.
type Binary struct {
	BaseExpr
	Op    string
	Left  Expr
	Right Expr
}

func (e *Binary) node() {}
func (e *Binary) expr() {}

// Unary represents op operand (not, -, #).
type Unary struct {
	BaseExpr
	Op      string
	Operand Expr
}

func (e *Unary) node() {}
func (e *Unary) expr() {}

// Paren represents (expr). Kept explicit so printing preserves grouping
// and the truncation of multiple results.
type Paren struct {
	BaseExpr
	Inner Expr
}

func (e *Paren) node() {}
func (e *Paren) expr() {}

// Name is an identifier reference.
type Name struct {
	BaseExpr
	Name string
}

func (e *Name) node() {}
func (e *Name) expr() {}

// Member represents object.name.
type Member struct {
	BaseExpr
	Object Expr
	Name   string
}

func (e *Member) node() {}
func (e *Member) expr() {}

// Index represents object[key].
type Index struct {
	BaseExpr
	Object Expr
	Key    Expr
}

func (e *Index) node() {}
func (e *Index) expr() {}

// ArgStyle records how call arguments were written.
type ArgStyle int

const (
	ArgsParen  ArgStyle = iota // f(a, b)
	ArgsString                 // f "s"
	ArgsTable                  // f {...}
)

// CallExpr represents func(args) or object:method(args).
type CallExpr struct {
	BaseExpr
	Func   Expr
	Method string // non-empty for object:method(...)
	Args   []Expr
	Style  ArgStyle
}

func (e *CallExpr) node() {}
func (e *CallExpr) expr() {}

// ElseIfExpr is one elseif branch of an if-expression.
type ElseIfExpr struct {
	Cond Expr
	Then Expr
}

// IfExpr represents if c then a elseif d then b else e.
type IfExpr struct {
	BaseExpr
	Cond    Expr
	Then    Expr
	ElseIfs []ElseIfExpr
	Else    Expr
}

func (e *IfExpr) node() {}
func (e *IfExpr) expr() {}

// TypeAssert represents expr :: Type.
type TypeAssert struct {
	BaseExpr
	Inner Expr
	Type  *Type
}

func (e *TypeAssert) node() {}
func (e *TypeAssert) expr() {}

// StmtName returns a human-readable name for the statement kind.
func StmtName(s Stmt) string {
	switch st := s.(type) {
	case *LocalAssign:
		return "LocalAssignment"
	case *LocalFunction:
		return "LocalFunction"
	case *FunctionDecl:
		return "FunctionDeclaration"
	case *Assign:
		return "Assignment"
	case *CompoundAssign:
		return "CompoundAssignment"
	case *CallStmt:
		if st.Call.Method != "" {
			return "MethodCall"
		}
		return "FunctionCall"
	case *Do:
		return "Do"
	case *While:
		return "While"
	case *Repeat:
		return "Repeat"
	case *If:
		return "If"
	case *NumericFor:
		return "NumericFor"
	case *GenericFor:
		return "GenericFor"
	case *Return:
		return "Return"
	case *Break:
		return "Break"
	case *Continue:
		return "Continue"
	case *TypeAlias:
		return "TypeAlias"
	}
	return "Statement"
}
