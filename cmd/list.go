package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/urfave/cli/v3"

	"github.com/rubiojr/templated/ast"
	"github.com/rubiojr/templated/bundler"
)

func (a *app) listAction(ctx context.Context, cmd *cli.Command) error {
	b, set, err := a.load(ctx, cmd, false)
	if err != nil {
		return err
	}
	set, err = b.Rewrite(ctx, set)
	if err != nil {
		return err
	}

	if cmd.Bool("yaml") {
		data, err := bundler.MarshalManifest(set)
		if err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}
		_, err = a.stdout.Write(data)
		return err
	}

	table := tablewriter.NewWriter(a.stdout)
	table.SetHeader([]string{"Path", "Prefix", "Functions"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	functions := 0
	for _, entry := range bundler.Manifest(set) {
		names := make([]string, len(entry.Exports))
		for i, e := range entry.Exports {
			names[i] = e.Name
		}
		functions += len(names)
		table.Append([]string{entry.Path, entry.Prefix, strings.Join(names, ", ")})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d modules", set.Len()),
		"",
		fmt.Sprintf("%d functions", functions),
	})
	table.Render()
	return nil
}

// diffAction prints a unified diff between each module as parsed and as
// rewritten. Both sides go through the printer so only rewrites show up.
func (a *app) diffAction(ctx context.Context, cmd *cli.Command) error {
	b, set, err := a.load(ctx, cmd, false)
	if err != nil {
		return err
	}
	rewritten, err := b.Rewrite(ctx, set)
	if err != nil {
		return err
	}

	only := ""
	if cmd.String("input") != "" {
		only = cmd.Args().First()
	} else if cmd.NArg() > 1 {
		only = cmd.Args().Get(1)
	}
	if only != "" {
		if _, ok := set.Lookup(only); !ok {
			return fmt.Errorf("module %s is not part of the bundle", only)
		}
	}

	for _, m := range set.Modules {
		if only != "" && m.Path != only {
			continue
		}
		after, _ := rewritten.Lookup(m.Path)
		text, err := moduleDiff(m.Path, ast.Print(m.Chunk), after.Source)
		if err != nil {
			return err
		}
		fmt.Fprint(a.stdout, text)
	}
	return nil
}

func moduleDiff(path, before, after string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diffing %s: %w", path, err)
	}
	return text, nil
}
