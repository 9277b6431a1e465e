package python

import (
	"strings"
	"testing"

	"github.com/jptrs93/protoprober/internal/generate"
	"github.com/jptrs93/protoprober/internal/generate/generatetest"
	"github.com/stretchr/testify/assert"
)

func TestGreeter(t *testing.T) {
	out := generatetest.Check(t, Hooks{}, "testdata/greeter.txtar", generate.Options{})
	for _, line := range strings.Split(string(out), "\n") {
		indent := len(line) - len(strings.TrimLeft(line, " "))
		assert.Zero(t, indent%4, "indentation is not a multiple of four: %q", line)
		assert.False(t, strings.HasPrefix(line, "\t"), "tab indentation: %q", line)
	}
}

func TestTopLevelImports(t *testing.T) {
	out := generatetest.Check(t, Hooks{}, "testdata/top_level.txtar", generate.Options{})
	assert.NotContains(t, string(out), "from . import")
}

func TestImportedTypes(t *testing.T) {
	generatetest.Check(t, Hooks{}, "testdata/imported_types.txtar", generate.Options{})
}

func TestKeywordFields(t *testing.T) {
	out := generatetest.Check(t, Hooks{}, "testdata/keywords.txtar", generate.Options{})
	assert.NotContains(t, string(out), "message.class")
	assert.NotContains(t, string(out), "message.if")
}
