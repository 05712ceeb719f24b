package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/rubiojr/templated/bundler"
)

const (
	colorRed   = "\033[31m"
	colorBold  = "\033[1m"
	colorDim   = "\033[2m"
	colorReset = "\033[0m"
)

// colorEnabled reports whether w is a terminal that should get ANSI color.
func colorEnabled(w io.Writer, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// formatError renders err for the terminal. Diagnostics get their hint
// dimmed and the construct text indented.
func formatError(err error, color bool) string {
	red, bold, dim, reset := colorRed, colorBold, colorDim, colorReset
	if !color {
		red, bold, dim, reset = "", "", "", ""
	}

	var list bundler.DiagnosticList
	if errors.As(err, &list) {
		parts := make([]string, len(list))
		for i, d := range list {
			parts[i] = formatDiagnostic(d, red, bold, dim, reset)
		}
		return strings.Join(parts, "\n")
	}
	var d *bundler.Diagnostic
	if errors.As(err, &d) {
		return formatDiagnostic(d, red, bold, dim, reset)
	}
	return fmt.Sprintf("%serror:%s %v\n", red, reset, err)
}

func formatDiagnostic(d *bundler.Diagnostic, red, bold, dim, reset string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%serror:%s %s%s", red, reset, bold, d.Path)
	if d.Span.Start.Line > 0 {
		fmt.Fprintf(&sb, ":%d:%d", d.Span.Start.Line, d.Span.Start.Column)
	}
	fmt.Fprintf(&sb, "%s: %s: %s\n", reset, d.Kind, d.Message)
	if d.Text != "" {
		for _, line := range strings.Split(d.Text, "\n") {
			sb.WriteString("    " + line + "\n")
		}
	}
	if d.Err != nil {
		for _, line := range strings.Split(d.Err.Error(), "\n") {
			sb.WriteString("  " + line + "\n")
		}
	}
	if d.Hint != "" {
		fmt.Fprintf(&sb, "%s  hint: %s%s\n", dim, d.Hint, reset)
	}
	return sb.String()
}
