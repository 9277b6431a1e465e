// Package generate turns a parsed proto file into a gRPC prober client. The
// section order and the traversal live here; each target language supplies a
// Hooks implementation that spells the individual constructs.
package generate

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jptrs93/protoprober/internal/ir"
	"github.com/jptrs93/protoprober/internal/printer"
)

var (
	ErrNoZeroEnumValue = errors.New("enum has no value numbered zero")
	ErrUnknownType     = errors.New("unknown type")
)

type OutputFile struct {
	Path    string
	Content []byte
}

type Options struct {
	// Seed drives the choice between alternative sentinel literals.
	Seed uint64
	// VariedSentinels widens the literal table beyond one value per kind.
	VariedSentinels bool
	// UnaryOnly declines every streaming shape regardless of the backend.
	UnaryOnly bool
	// OutDir prefixes the output paths returned by Generator.Generate.
	OutDir string
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// WriteFunc receives the finished output of one run.
type WriteFunc func(name string, content []byte) error

// Generator runs one backend over a set of files.
type Generator struct {
	Hooks   Hooks
	Options Options
}

func (g Generator) Name() string {
	return g.Hooks.Name()
}

func (g Generator) Generate(files []ir.File) ([]OutputFile, error) {
	outputs := make([]OutputFile, 0, len(files))
	for _, file := range files {
		err := Run(file, g.Hooks, g.Options, func(name string, content []byte) error {
			outputs = append(outputs, OutputFile{Path: filepath.Join(g.Options.OutDir, name), Content: content})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return outputs, nil
}

// OutputName is the stripped proto path followed by the backend suffix.
func OutputName(file ir.File, hooks Hooks) string {
	return ir.StripProto(file.Path) + hooks.Suffix()
}

// Run renders file and hands the result to write exactly once. On failure
// write is not called.
func Run(file ir.File, hooks Hooks, opts Options, write WriteFunc) error {
	content, err := Generate(file, hooks, opts)
	if err != nil {
		return err
	}
	return write(OutputName(file, hooks), content)
}

// Generate renders file and returns the concatenated sections.
func Generate(file ir.File, hooks Hooks, opts Options) ([]byte, error) {
	log := opts.logger().With("backend", hooks.Name(), "file", file.Path)
	r := &run{
		file:    file,
		index:   ir.NewIndex(file),
		hooks:   hooks,
		opts:    opts,
		pick:    newPicker(hooks.Sentinels(opts.VariedSentinels), opts.Seed),
		log:     log,
		aliases: make(map[string]string),
	}
	p := printer.New(hooks.IndentUnit())
	vars := fileVars(file)

	sections := []struct {
		name   string
		render func(*printer.Printer, *printer.Vars) error
	}{
		{"header", r.header},
		{"message helpers", r.messageHelpers},
		{"service probes", r.serviceProbes},
		{"main", r.main},
		{"trailer", r.trailer},
	}
	for _, s := range sections {
		if err := s.render(p, vars); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", file.Path, s.name, err)
		}
		if err := p.Err(); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", file.Path, s.name, err)
		}
		if p.Depth() != 0 {
			return nil, fmt.Errorf("%s: %s: %w: depth %d at section end", file.Path, s.name, printer.ErrUnbalancedIndent, p.Depth())
		}
	}
	log.Debug("rendered prober", "bytes", len(p.Bytes()))
	return p.Bytes(), nil
}

type run struct {
	file  ir.File
	index ir.Index
	hooks Hooks
	opts  Options
	pick  *picker
	log   *slog.Logger
	// aliases maps the path of each imported file the output names to its
	// dependency alias.
	aliases map[string]string
}

func fileVars(file ir.File) *printer.Vars {
	return printer.NewVars(
		"proto_filename", file.Path,
		"proto_filename_without_ext", ir.StripProto(file.Path),
		"proto_basename", ir.BaseName(file.Path),
		"package", file.Package,
		"go_import_path", file.GoImportPath,
	)
}

func (r *run) comment(p *printer.Printer, v *printer.Vars, text string) {
	p.Print(v, r.hooks.CommentPrefix()+text+"\n")
}

// status emits a print statement whose text is rendered against v.
func (r *run) status(p *printer.Printer, v *printer.Vars, text string) {
	r.hooks.StartPrint(p, v)
	p.Print(v, text)
	r.hooks.EndPrint(p, v)
}

func (r *run) header(p *printer.Printer, v *printer.Vars) error {
	r.comment(p, v, "Generated by the gRPC prober generator. DO NOT EDIT.")
	r.comment(p, v, "source: $proto_filename$")
	p.NewLine()
	r.hooks.Package(p, v)
	r.hooks.Imports(p, v)
	r.importDependencies(p, v)
	r.hooks.Flags(p, v)
	return nil
}

func (r *run) main(p *printer.Printer, v *printer.Vars) error {
	r.hooks.StartMain(p, v)
	r.status(p, v, "Prober started")
	p.NewLine()
	r.hooks.ParseFlags(p, v)
	p.NewLine()
	r.hooks.CreateChannel(p, v)
	p.NewLine()
	for _, svc := range r.file.Services {
		r.hooks.CallServiceProbe(p, serviceVars(v, svc))
	}
	if len(r.file.Services) > 0 {
		p.NewLine()
	}
	r.status(p, v, "Prober finished")
	r.hooks.EndFunction(p, v)
	return nil
}

func (r *run) trailer(p *printer.Printer, v *printer.Vars) error {
	r.hooks.Trailer(p, v)
	return nil
}
