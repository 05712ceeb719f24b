// Package source reads bundler inputs from disk or stdin and writes the
// results back out.
package source

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/rubiojr/templated/bundler"
)

// Collect walks root and returns every regular file whose extension is in
// exts, as slash-separated paths relative to root in lexical order.
// Directories whose name starts with a dot are skipped.
func Collect(root string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = bundler.DefaultExtensions
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input %s is not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !slices.Contains(exts, filepath.Ext(path)) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Inputs collects the files below root and reads them.
func Inputs(root string, exts []string) ([]bundler.Input, error) {
	files, err := Collect(root, exts)
	if err != nil {
		return nil, err
	}
	inputs := make([]bundler.Input, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		inputs = append(inputs, bundler.Input{Path: f, Source: string(data)})
	}
	return inputs, nil
}

// IsStdio reports whether loc names stdin or stdout.
func IsStdio(loc string) bool {
	return loc == "-" || loc == "stdin" || loc == "stdout"
}

// ReadInput reads the file at loc, or stdin when loc is "-" or "stdin".
// Input read from stdin is trimmed of surrounding whitespace.
func ReadInput(loc string, stdin io.Reader) (string, error) {
	if loc == "-" || loc == "stdin" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	data, err := os.ReadFile(loc)
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

// WriteOutput writes content to the file at loc, or to stdout when loc is
// "-" or "stdout".
func WriteOutput(loc, content string, stdout io.Writer) error {
	if loc == "-" || loc == "stdout" {
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		if _, err := io.WriteString(stdout, content); err != nil {
			return fmt.Errorf("writing stdout: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(loc, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
