// Package printer is the text emission engine shared by every backend: an
// append-only buffer with an indentation counter and $name$ substitution.
package printer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

const Delimiter = '$'

var (
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")
	ErrUnbalancedIndent      = errors.New("unbalanced indentation")
)

// Printer accumulates generated text. The first error is sticky: once set,
// further output is dropped and Err reports it.
type Printer struct {
	buf         bytes.Buffer
	unit        string
	depth       int
	atLineStart bool
	err         error
}

// New returns a Printer that indents each level with unit.
func New(unit string) *Printer {
	return &Printer{unit: unit, atLineStart: true}
}

// Print renders tmpl against vars. "$key$" is replaced by the bound value and
// "$$" emits a literal delimiter.
func (p *Printer) Print(vars *Vars, tmpl string) {
	if p.err != nil {
		return
	}
	for {
		start := strings.IndexByte(tmpl, Delimiter)
		if start < 0 {
			p.write(tmpl)
			return
		}
		p.write(tmpl[:start])
		rest := tmpl[start+1:]
		end := strings.IndexByte(rest, Delimiter)
		if end < 0 {
			p.err = fmt.Errorf("%w: unterminated %q in %q", ErrUnresolvedPlaceholder, tmpl[start:], tmpl)
			return
		}
		key := rest[:end]
		if key == "" {
			p.write(string(Delimiter))
		} else {
			val, ok := vars.Lookup(key)
			if !ok {
				p.err = fmt.Errorf("%w: $%s$", ErrUnresolvedPlaceholder, key)
				return
			}
			p.write(val)
		}
		tmpl = rest[end+1:]
	}
}

// P prints a template that carries no bindings.
func (p *Printer) P(tmpl string) {
	p.Print(nil, tmpl)
}

func (p *Printer) NewLine() {
	p.write("\n")
}

func (p *Printer) Indent() {
	p.depth++
}

func (p *Printer) Outdent() {
	if p.depth == 0 {
		if p.err == nil {
			p.err = ErrUnbalancedIndent
		}
		return
	}
	p.depth--
}

func (p *Printer) Depth() int {
	return p.depth
}

func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) Bytes() []byte {
	return p.buf.Bytes()
}

func (p *Printer) String() string {
	return p.buf.String()
}

// write appends s, prefixing the indentation at the start of every non-empty
// line.
func (p *Printer) write(s string) {
	if p.err != nil {
		return
	}
	for len(s) > 0 {
		nl := strings.IndexByte(s, '\n')
		line := s
		if nl >= 0 {
			line = s[:nl]
		}
		if line != "" {
			if p.atLineStart {
				for i := 0; i < p.depth; i++ {
					p.buf.WriteString(p.unit)
				}
			}
			p.buf.WriteString(line)
			p.atLineStart = false
		}
		if nl < 0 {
			return
		}
		p.buf.WriteByte('\n')
		p.atLineStart = true
		s = s[nl+1:]
	}
}
