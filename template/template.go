// Package template wraps a single script in the Luau entrypoint used by
// the host runtime.
package template

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed entrypoint.luau
var entrypoint string

var entrypointTmpl = template.Must(template.New("entrypoint.luau").Parse(entrypoint))

// Data is the set of values available to the entrypoint template.
type Data struct {
	Body        string
	ProjName    string
	ProjVersion string
}

// Wrap renders body inside the entrypoint template.
func Wrap(body, name, version string) (string, error) {
	var sb strings.Builder
	err := entrypointTmpl.Execute(&sb, Data{Body: body, ProjName: name, ProjVersion: version})
	if err != nil {
		return "", fmt.Errorf("rendering entrypoint: %w", err)
	}
	return sb.String(), nil
}
