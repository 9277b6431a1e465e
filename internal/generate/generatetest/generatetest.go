// Package generatetest runs a backend over txtar fixtures.
//
// A fixture holds one or more .proto files, the first of which is rendered,
// plus a "want" section listing lines that must appear in the output in that
// order and an optional "absent" section listing lines that must not appear.
// Lines are compared after trimming surrounding whitespace; blank lines in
// the sections are ignored.
package generatetest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jptrs93/protoprober/internal/generate"
	"github.com/jptrs93/protoprober/internal/parser"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

// Render parses the fixture's protos and renders the first one.
func Render(t *testing.T, hooks generate.Hooks, archivePath string, opts generate.Options) (*txtar.Archive, []byte) {
	t.Helper()
	archive, err := txtar.ParseFile(archivePath)
	require.NoError(t, err)

	dir := t.TempDir()
	var entry string
	for _, f := range archive.Files {
		if !strings.HasSuffix(f.Name, ".proto") {
			continue
		}
		if entry == "" {
			entry = f.Name
		}
		path := filepath.Join(dir, f.Name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, f.Data, 0o644))
	}
	require.NotEmpty(t, entry, "%s has no .proto file", archivePath)

	p := &parser.Parser{ImportPaths: []string{dir}}
	files, err := p.Parse(context.Background(), []string{entry})
	require.NoError(t, err)
	require.Len(t, files, 1)

	out, err := generate.Generate(files[0], hooks, opts)
	require.NoError(t, err)
	return archive, out
}

// Check renders the fixture and matches the output against its sections.
func Check(t *testing.T, hooks generate.Hooks, archivePath string, opts generate.Options) []byte {
	t.Helper()
	archive, out := Render(t, hooks, archivePath, opts)
	got := trimmedLines(string(out))

	for _, f := range archive.Files {
		switch f.Name {
		case "want":
			next := 0
			for _, line := range trimmedLines(string(f.Data)) {
				found := false
				for next < len(got) {
					next++
					if got[next-1] == line {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("%s: line %q not found in order in output:\n%s", archivePath, line, out)
					return out
				}
			}
		case "absent":
			for _, line := range trimmedLines(string(f.Data)) {
				for _, g := range got {
					if g == line {
						t.Errorf("%s: unexpected line %q in output", archivePath, line)
					}
				}
			}
		}
	}
	return out
}

func trimmedLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
