package bundler

import (
	"fmt"
	"strings"

	"github.com/rubiojr/templated/ast"
)

// Kind classifies a Diagnostic.
type Kind int

const (
	ParseError Kind = iota + 1
	SafetyViolation
	ArityError
	UnresolvedImport
	PrefixCollision
	InvalidPrefix
	DuplicatePath
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "parse error"
	case SafetyViolation:
		return "bundling safety error"
	case ArityError:
		return "arity error"
	case UnresolvedImport:
		return "unresolved import"
	case PrefixCollision:
		return "prefix collision"
	case InvalidPrefix:
		return "invalid prefix"
	case DuplicatePath:
		return "duplicate path"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Diagnostic is a user-facing bundling error. Every Diagnostic is fatal
// for the run that produced it.
type Diagnostic struct {
	Kind      Kind
	Path      string   // module path
	Span      ast.Span // zero when the diagnostic concerns the whole module
	Construct string   // statement kind, e.g. "LocalAssignment"
	Text      string   // source text of the offending construct
	Message   string
	Hint      string
	Err       error // underlying error, e.g. a parser.ErrList
}

func (d *Diagnostic) Error() string {
	var sb strings.Builder
	sb.WriteString(d.Path)
	if d.Span.Start.Line > 0 {
		fmt.Fprintf(&sb, ":%d:%d", d.Span.Start.Line, d.Span.Start.Column)
	}
	sb.WriteString(": ")
	sb.WriteString(d.Kind.String())
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	if d.Text != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Text)
	}
	if d.Err != nil {
		sb.WriteString("\n")
		sb.WriteString(d.Err.Error())
	}
	if d.Hint != "" {
		sb.WriteString("\n\n")
		sb.WriteString(d.Hint)
	}
	return sb.String()
}

func (d *Diagnostic) Unwrap() error { return d.Err }

// DiagnosticList holds every Diagnostic collected for a module when
// Options.CollectAll is set.
type DiagnosticList []*Diagnostic

func (dl DiagnosticList) Error() string {
	msgs := make([]string, len(dl))
	for i, d := range dl {
		msgs[i] = d.Error()
	}
	return strings.Join(msgs, "\n\n")
}

// InternalError reports a defect in the bundler itself, such as an
// unbalanced scope walk or a rewritten tree that no longer parses. It is
// never caused by user input alone.
type InternalError struct {
	Path string
	Pass string
	Msg  string
	Err  error
}

func (e *InternalError) Error() string {
	msg := fmt.Sprintf("internal error in %s pass for %s: %s", e.Pass, e.Path, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InternalError) Unwrap() error { return e.Err }

// maxTextLines bounds the construct text rendered into a Diagnostic.
const maxTextLines = 6

// renderText returns the source text covered by span, falling back to the
// printed statement when the module has no source attached.
func renderText(source string, span ast.Span, s ast.Stmt) string {
	text := ""
	if source != "" && span.End.Offset > span.Start.Offset && span.End.Offset <= len(source) {
		text = source[span.Start.Offset:span.End.Offset]
	} else if s != nil {
		text = ast.PrintStmt(s)
	}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > maxTextLines {
		lines = append(lines[:maxTextLines], "...")
	}
	return strings.Join(lines, "\n")
}
