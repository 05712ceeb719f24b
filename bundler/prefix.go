// Package bundler merges parsed Luau modules into one module. Top-level
// functions of every file move into a per-file namespace table, and
// require calls between bundled files become references to those tables.
package bundler

import (
	"strings"

	"github.com/rubiojr/templated/scanner"
)

// prefixJoiner replaces path separators and extension dots in a prefix.
const prefixJoiner = "__"

// Prefix derives a module's namespace identifier from its path: path
// separators become "__" and the final extension segment is dropped.
//
//	Prefix("a/b.luau")     == "a__b"
//	Prefix("a/b.spec.lua") == "a__b__spec"
//
// Distinct paths can map to the same prefix; ModuleSet.Validate reports
// such collisions.
func Prefix(path string) string {
	path = strings.ReplaceAll(path, "\\", prefixJoiner)
	path = strings.ReplaceAll(path, "/", prefixJoiner)
	parts := strings.Split(path, ".")
	return strings.Join(parts[:len(parts)-1], prefixJoiner)
}

// validPrefix reports whether prefix can be emitted as a Luau identifier.
func validPrefix(prefix string) bool {
	return scanner.IsName(prefix)
}
