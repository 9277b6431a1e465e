package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jptrs93/protoprober/internal/generate"
	"github.com/jptrs93/protoprober/internal/generate/backends"
	"github.com/jptrs93/protoprober/internal/ir"
	"github.com/jptrs93/protoprober/internal/parser"

	"golang.org/x/sync/errgroup"
)

type Generate struct {
	Input `embed:""`

	Lang            []string `short:"l" help:"Target languages: cpp, go, python, node or all." default:"all" env:"PROTOPROBER_LANG"`
	Out             string   `short:"o" help:"Output directory." default:"." env:"PROTOPROBER_OUT"`
	UnaryOnly       bool     `help:"Emit the unsupported stub for every streaming method."`
	VariedSentinels bool     `help:"Vary sentinel literals between fields."`
	Seed            uint64   `help:"Seed for varied sentinel selection." default:"1"`
	Jobs            int      `short:"j" help:"Number of probers rendered concurrently." default:"4"`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(ctx context.Context, logger *slog.Logger) error {
	ids, err := backends.Parse(g.Lang)
	if err != nil {
		return err
	}
	files, err := g.parse(ctx)
	if err != nil {
		return err
	}
	logger.Info("generating probers", "files", len(files), "backends", ids, "out", g.Out)

	opts := generate.Options{
		Seed:            g.Seed,
		VariedSentinels: g.VariedSentinels,
		UnaryOnly:       g.UnaryOnly,
		OutDir:          filepath.Clean(g.Out),
		Logger:          logger,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(g.Jobs, 1))
	for _, file := range files {
		for _, id := range ids {
			hooks, err := backends.New(id)
			if err != nil {
				return err
			}
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				return generate.Run(file, hooks, opts, func(name string, content []byte) error {
					out := generate.OutputFile{Path: filepath.Join(opts.OutDir, name), Content: content}
					return generate.WriteFiles([]generate.OutputFile{out}, logger)
				})
			})
		}
	}
	return eg.Wait()
}

func (in Input) parse(ctx context.Context) ([]ir.File, error) {
	if len(in.Protos) == 0 {
		return nil, fmt.Errorf("no proto files provided")
	}
	importPaths := in.ImportPaths
	if len(importPaths) == 0 {
		importPaths = []string{"."}
	}
	p := parser.Parser{ImportPaths: importPaths}
	return p.Parse(ctx, in.Protos)
}
