package bundler

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/rubiojr/templated/ast"
	"github.com/rubiojr/templated/parser"
)

// Input is one source file handed to the bundler.
type Input struct {
	Path   string // slash-separated, relative to the bundle root
	Source string
}

// Options configures a Bundler.
type Options struct {
	// Ignore lists require targets left untouched. Nil means DefaultIgnore.
	Ignore []string
	// Extensions are stripped from require paths. Nil means DefaultExtensions.
	Extensions []string
	// Jobs bounds how many modules are rewritten concurrently. Values
	// below 2 rewrite sequentially.
	Jobs int
	// CollectAll reports every diagnostic of a module instead of stopping
	// at the first one.
	CollectAll bool
	// Emit configures the combined output produced by Bundle.
	Emit EmitOptions
}

// Bundler runs the load, rewrite and emit stages over a set of modules.
type Bundler struct {
	opts Options
}

// New creates a Bundler.
func New(opts Options) *Bundler {
	if opts.Ignore == nil {
		opts.Ignore = DefaultIgnore
	}
	if opts.Extensions == nil {
		opts.Extensions = DefaultExtensions
	}
	return &Bundler{opts: opts}
}

// Result is the outcome of a complete bundling run.
type Result struct {
	Set    *ModuleSet
	Output string
}

// Load parses every input in order. A file with syntax errors fails the
// load with a single ParseError diagnostic holding all of its errors.
func (b *Bundler) Load(ctx context.Context, inputs []Input) (*ModuleSet, error) {
	set := NewModuleSet()
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk, err := parser.Parse(in.Path, in.Source)
		if err != nil {
			return nil, &Diagnostic{Kind: ParseError, Path: in.Path, Message: "module does not parse", Err: err}
		}
		if err := set.Add(&SourceModule{Path: in.Path, Source: in.Source, Chunk: chunk}); err != nil {
			return nil, err
		}
		slog.Debug("loaded module", "path", in.Path, "prefix", Prefix(in.Path), "statements", len(chunk.Block.Stmts))
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// Rewrite applies the safety and mangling rules to every module, then
// resolves require calls against the set. The input set is not modified.
func (b *Bundler) Rewrite(ctx context.Context, set *ModuleSet) (*ModuleSet, error) {
	mods, err := b.each(ctx, set.Modules, func(m *SourceModule) (*SourceModule, error) {
		return Walk(m, b.opts.CollectAll, RootScopeSafety(), TopLevelMangler())
	})
	if err != nil {
		return nil, err
	}

	index := NewPrefixIndex(set, b.opts.Extensions)
	mods, err = b.each(ctx, mods, func(m *SourceModule) (*SourceModule, error) {
		out, err := Walk(m, b.opts.CollectAll, ImportInliner(index, b.opts.Ignore))
		if err != nil {
			return nil, err
		}
		return reparse(out)
	})
	if err != nil {
		return nil, err
	}
	return set.replace(mods), nil
}

// Bundle loads, rewrites and emits inputs as one combined module.
func (b *Bundler) Bundle(ctx context.Context, inputs []Input) (*Result, error) {
	set, err := b.Load(ctx, inputs)
	if err != nil {
		return nil, err
	}
	set, err = b.Rewrite(ctx, set)
	if err != nil {
		return nil, err
	}
	out, err := Emit(set, b.opts.Emit)
	if err != nil {
		return nil, err
	}
	return &Result{Set: set, Output: out}, nil
}

// each runs fn over mods, concurrently when Jobs allows it. Results keep
// the order of mods. The first error cancels the remaining work.
func (b *Bundler) each(ctx context.Context, mods []*SourceModule, fn func(*SourceModule) (*SourceModule, error)) ([]*SourceModule, error) {
	out := make([]*SourceModule, len(mods))
	if b.opts.Jobs < 2 {
		for i, m := range mods {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := fn(m)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Jobs)
	for i, m := range mods {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(m)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// reparse prints the rewritten tree and parses it again so that spans
// refer to the new source text.
func reparse(m *SourceModule) (*SourceModule, error) {
	text := ast.Print(m.Chunk)
	chunk, err := parser.Parse(m.Path, text)
	if err != nil {
		return nil, &InternalError{Path: m.Path, Pass: "reparse", Msg: "rewritten module does not parse", Err: err}
	}
	cp := *m
	cp.Source = text
	cp.Chunk = chunk
	return &cp, nil
}
