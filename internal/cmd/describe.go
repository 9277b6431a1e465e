package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/jptrs93/protoprober/internal/ir"

	yaml "gopkg.in/yaml.v3"
)

type Describe struct {
	Input `embed:""`

	Imports bool `help:"Include the types of imported files."`

	out io.Writer `kong:"-"`
}

// Run is called by Kong when the describe command is executed.
func (d *Describe) Run(ctx context.Context, logger *slog.Logger) error {
	files, err := d.parse(ctx)
	if err != nil {
		return err
	}
	if !d.Imports {
		for i := range files {
			files[i].Imported = nil
		}
	}
	logger.Debug("describing files", "files", len(files))
	return writeYAML(d.writer(), files)
}

func (d *Describe) writer() io.Writer {
	if d.out == nil {
		return os.Stdout
	}
	return d.out
}

func writeYAML(w io.Writer, files []ir.File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(files); err != nil {
		return err
	}
	return enc.Close()
}
