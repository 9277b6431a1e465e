package printer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintSubstitutes(t *testing.T) {
	p := New("  ")
	vars := NewVars("name", "Greeter", "method", "SayHello")

	p.Print(vars, "Probe$name$$method$(stub);\n")
	p.Print(vars, "cost: $$5\n")

	require.NoError(t, p.Err())
	assert.Equal(t, "ProbeGreeterSayHello(stub);\ncost: $5\n", p.String())
}

func TestPrintIndentsNonEmptyLines(t *testing.T) {
	p := New("\t")
	p.P("func main() {\n")
	p.Indent()
	p.P("a := 1\n\nb := 2\n")
	p.Print(NewVars("body", "x()\ny()"), "$body$\n")
	p.Outdent()
	p.P("}\n")

	require.NoError(t, p.Err())
	assert.Equal(t, "func main() {\n\ta := 1\n\n\tb := 2\n\tx()\n\ty()\n}\n", p.String())
}

func TestPrintContinuesPartialLine(t *testing.T) {
	p := New("  ")
	p.Indent()
	p.P("std::cout << \"")
	p.Print(NewVars("msg", "hi"), "$msg$")
	p.P("\" << std::endl;\n")

	require.NoError(t, p.Err())
	assert.Equal(t, "  std::cout << \"hi\" << std::endl;\n", p.String())
}

func TestPrintUnresolvedPlaceholder(t *testing.T) {
	tests := []struct {
		name string
		vars *Vars
		tmpl string
	}{
		{name: "missing key", vars: NewVars("a", "1"), tmpl: "x = $b$\n"},
		{name: "nil vars", vars: nil, tmpl: "x = $a$\n"},
		{name: "unterminated", vars: NewVars("a", "1"), tmpl: "x = $a\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := New("  ")
			p.Print(tc.vars, tc.tmpl)
			require.ErrorIs(t, p.Err(), ErrUnresolvedPlaceholder)

			p.P("more output\n")
			assert.NotContains(t, p.String(), "more output")
			assert.False(t, strings.Contains(p.String(), "$"), "delimiter leaked: %q", p.String())
		})
	}
}

func TestOutdentBelowZero(t *testing.T) {
	p := New("  ")
	p.Outdent()
	require.ErrorIs(t, p.Err(), ErrUnbalancedIndent)
}

func TestVarsCloneIsolation(t *testing.T) {
	parent := NewVars("service_name", "Greeter")
	child := parent.With("method_name", "SayHello")
	child.Set("service_name", "Other")

	assert.Equal(t, "Greeter", parent.Get("service_name"))
	_, ok := parent.Lookup("method_name")
	assert.False(t, ok)
	assert.Equal(t, []string{"service_name", "method_name"}, child.Keys())

	parent.Set("field_name", "id")
	assert.Equal(t, "id", parent.Get("field_name"))
	assert.Equal(t, 2, parent.Len())
}

func TestVarsOddPairsPanics(t *testing.T) {
	assert.Panics(t, func() { NewVars("only-key") })
}
