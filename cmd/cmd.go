package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/templated/bundler"
	"github.com/rubiojr/templated/external"
	"github.com/rubiojr/templated/source"
	"github.com/rubiojr/templated/template"
)

// app holds the streams the commands read from and write to.
type app struct {
	version string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// Execute runs the templated CLI with the given version string.
func Execute(version string) {
	a := &app{version: version, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := a.command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprint(os.Stderr, formatError(err, colorEnabled(os.Stderr, noColorFlag(os.Args))))
		os.Exit(1)
	}
}

// noColorFlag reports whether args carry --no-color or its -C alias,
// including combined short options such as -Cq.
func noColorFlag(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "--no-color" {
			return true
		}
		if len(a) > 1 && a[0] == '-' && a[1] != '-' && strings.ContainsRune(a[1:], 'C') {
			return true
		}
	}
	return false
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:                   "templated",
		Usage:                  "Bundle and wrap Luau templates",
		Version:                a.version,
		UseShortOptionHandling: true,
		Writer:                 a.stdout,
		ErrWriter:              a.stderr,
		Commands: []*cli.Command{
			{
				Name:      "bundle",
				Usage:     "Bundle every module below a directory into one module",
				ArgsUsage: "<dir>",
				Flags: withCommon(
					inputFlag("Directory to bundle"),
					outputFlag(),
					&cli.StringFlag{Name: "entry", Aliases: []string{"e"}, Usage: "Module (path or prefix) the bundle returns"},
					&cli.StringFlag{Name: "manifest", Aliases: []string{"m"}, Usage: "Write a YAML manifest of the bundle to this file"},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Do not print progress"},
				),
				Action: a.action(a.bundleAction),
			},
			{
				Name:      "wrap",
				Usage:     "Wrap a single script in the entrypoint template",
				ArgsUsage: "[file]",
				Flags: withCommon(
					inputFlag("File to wrap, - for stdin"),
					outputFlag(),
					&cli.StringFlag{Name: "name", Usage: "Project name rendered into the template", Value: "templated"},
				),
				Action: a.action(a.wrapAction),
			},
			{
				Name:      "process",
				Usage:     "Run a file through the external processing tool",
				ArgsUsage: "<file>",
				Flags: withCommon(
					inputFlag("File to process"),
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file", Required: true},
				),
				Action: a.action(a.processAction),
			},
			{
				Name:      "check",
				Usage:     "Validate the modules below a directory without writing output",
				ArgsUsage: "<dir>",
				Flags:     withCommon(inputFlag("Directory to check")),
				Action:    a.action(a.checkAction),
			},
			{
				Name:      "list",
				Usage:     "List modules, their prefixes and mangled functions",
				ArgsUsage: "<dir>",
				Flags: withCommon(
					inputFlag("Directory to list"),
					&cli.BoolFlag{Name: "yaml", Usage: "Print the manifest as YAML"},
				),
				Action: a.action(a.listAction),
			},
			{
				Name:      "diff",
				Usage:     "Show how each module is rewritten",
				ArgsUsage: "<dir> [module]",
				Flags:     withCommon(inputFlag("Directory to diff")),
				Action:    a.action(a.diffAction),
			},
		},
	}
}

// withCommon appends the flags shared by every command.
func withCommon(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		&cli.BoolFlag{Name: "verbose", Usage: "Log debug output"},
		&cli.BoolFlag{Name: "no-color", Aliases: []string{"C"}, Usage: "Disable ANSI color output"},
		&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "Modules rewritten in parallel", Value: defaultJobs},
		&cli.BoolFlag{Name: "collect-all", Usage: "Report every diagnostic of a module instead of the first"},
		&cli.StringSliceFlag{Name: "ignore", Usage: "require targets left untouched (default @antiraid)"},
	)
}

func inputFlag(usage string) cli.Flag {
	return &cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: usage}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file, - for stdout", Value: "-"}
}

// action loads the configuration file and configures logging before
// running fn.
func (a *app) action(fn cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := readConfig(configFolderPath); err != nil {
			return err
		}
		configureLogger(a.stderr, cmd.Bool("verbose"))
		return fn(ctx, cmd)
	}
}

// inputArg returns --input or the first positional argument.
func inputArg(cmd *cli.Command, fallback string) (string, error) {
	if in := cmd.String("input"); in != "" {
		return in, nil
	}
	if cmd.NArg() > 0 {
		return cmd.Args().First(), nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("usage: templated %s <input>", cmd.Name)
}

// load reads and parses every module below the input directory.
func (a *app) load(ctx context.Context, cmd *cli.Command, progress bool) (*bundler.Bundler, *bundler.ModuleSet, error) {
	dir, err := inputArg(cmd, "")
	if err != nil {
		return nil, nil, err
	}
	opts := bundlerOptions(cmd, a.version)
	inputs, err := source.Inputs(dir, opts.Extensions)
	if err != nil {
		return nil, nil, err
	}
	if len(inputs) == 0 {
		return nil, nil, fmt.Errorf("no %s files found in %s", strings.Join(opts.Extensions, "/"), dir)
	}
	if progress {
		fmt.Fprintf(a.stderr, "Reading directory %s\n", dir)
		for i, in := range inputs {
			fmt.Fprintf(a.stderr, "[%d/%d] %s\n", i+1, len(inputs), in.Path)
		}
	}
	b := bundler.New(opts)
	set, err := b.Load(ctx, inputs)
	if err != nil {
		return nil, nil, err
	}
	return b, set, nil
}

func (a *app) bundleAction(ctx context.Context, cmd *cli.Command) error {
	b, set, err := a.load(ctx, cmd, !cmd.Bool("quiet"))
	if err != nil {
		return err
	}
	set, err = b.Rewrite(ctx, set)
	if err != nil {
		return err
	}
	out, err := bundler.Emit(set, bundlerOptions(cmd, a.version).Emit)
	if err != nil {
		return err
	}
	if err := source.WriteOutput(cmd.String("output"), out, a.stdout); err != nil {
		return err
	}
	if path := cmd.String("manifest"); path != "" {
		data, err := bundler.MarshalManifest(set)
		if err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
	}
	return nil
}

func (a *app) wrapAction(ctx context.Context, cmd *cli.Command) error {
	in, err := inputArg(cmd, "-")
	if err != nil {
		return err
	}
	body, err := source.ReadInput(in, a.stdin)
	if err != nil {
		return err
	}
	out, err := template.Wrap(body, cmd.String("name"), a.version)
	if err != nil {
		return err
	}
	return source.WriteOutput(cmd.String("output"), out, a.stdout)
}

func (a *app) processAction(ctx context.Context, cmd *cli.Command) error {
	in, err := inputArg(cmd, "")
	if err != nil {
		return err
	}
	if source.IsStdio(in) || source.IsStdio(cmd.String("output")) {
		return fmt.Errorf("process needs file paths for input and output")
	}
	return external.Process(ctx, externalOptions(), in, cmd.String("output"))
}

func (a *app) checkAction(ctx context.Context, cmd *cli.Command) error {
	b, set, err := a.load(ctx, cmd, false)
	if err != nil {
		return err
	}
	if _, err := b.Rewrite(ctx, set); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%d modules ok\n", set.Len())
	return nil
}
