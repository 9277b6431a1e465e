package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jptrs93/protoprober/internal/generate"
	"github.com/jptrs93/protoprober/internal/generate/backends"
)

type ListBackends struct {
	out io.Writer `kong:"-"`
}

// Run is called by Kong when the backends command is executed.
func (l *ListBackends) Run() error {
	w := l.out
	if w == nil {
		w = os.Stdout
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSUFFIX\tSHAPES")
	for _, id := range backends.All {
		hooks, err := backends.New(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", id, hooks.Suffix(), streamingSupport(hooks))
	}
	return tw.Flush()
}

func streamingSupport(hooks generate.Hooks) string {
	var names []string
	for _, shape := range generate.Shapes {
		if hooks.Supports(shape) {
			names = append(names, shape.String())
		}
	}
	if len(names) == len(generate.Shapes) {
		return "all shapes"
	}
	return strings.Join(names, ", ")
}
