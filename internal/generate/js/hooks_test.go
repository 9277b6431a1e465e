package jsg

import (
	"strings"
	"testing"

	"github.com/jptrs93/protoprober/internal/generate"
	"github.com/jptrs93/protoprober/internal/generate/generatetest"
	"github.com/stretchr/testify/assert"
)

func TestGreeter(t *testing.T) {
	out := generatetest.Check(t, Hooks{}, "testdata/greeter.txtar", generate.Options{})
	s := string(out)
	assert.Equal(t, strings.Count(s, "{"), strings.Count(s, "}"), "unbalanced braces")
	assert.Equal(t, strings.Count(s, "("), strings.Count(s, ")"), "unbalanced parentheses")
}

func TestGreeterUnaryOnly(t *testing.T) {
	_, out := generatetest.Render(t, Hooks{}, "testdata/greeter.txtar", generate.Options{UnaryOnly: true})
	s := string(out)
	assert.Contains(t, s, "console.log('\\t\\tProbing server streaming methods is not yet supported!!');\n  return;\n}\n")
	assert.NotContains(t, s, "const producer")
}

func TestImportedTypes(t *testing.T) {
	out := generatetest.Check(t, Hooks{}, "testdata/imported_types.txtar", generate.Options{})
	assert.Equal(t, 1, strings.Count(string(out), "function populateEmpty()"))
}
