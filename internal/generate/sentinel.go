package generate

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"

	"github.com/jptrs93/protoprober/internal/ir"
)

// Sentinels maps each scalar kind to the source literals a backend may emit
// for it. The first entry is the default literal.
type Sentinels map[ir.Kind][]string

// LiteralStyle spells the literals that differ between target languages.
// Quote renders a string value as a source literal, Bytes renders it as a
// bytes literal.
type LiteralStyle struct {
	True  string
	Quote func(s string) string
	Bytes func(s string) string
}

const (
	DefaultPhrase = "Hello world"
	defaultInt32  = "123"
	defaultInt64  = "1234"
	defaultFloat  = "1.234"
)

var (
	variedIntegers = []string{"12345", "80808", "10000"}
	variedFloats   = []string{"3.1415", "1.6190", "123.321"}
	adjectives     = []string{"hilarious", "stealthy", "finite", "ingratiating"}
	nouns          = []string{"tiger", "lamp", "turnip", "company"}
)

var integerKinds = []ir.Kind{
	ir.KindInt32, ir.KindInt64, ir.KindUint32, ir.KindUint64,
	ir.KindSint32, ir.KindSint64, ir.KindFixed32, ir.KindFixed64,
	ir.KindSfixed32, ir.KindSfixed64,
}

// NewSentinels builds the table for a backend. Without varied every kind has a
// single literal: 123 for 32-bit and 1234 for 64-bit integers, 1.234, true and
// "Hello world". The varied pools replace the numeric literals and add
// adjective-noun phrases after "Hello world".
func NewSentinels(style LiteralStyle, varied bool) Sentinels {
	phrases := []string{DefaultPhrase}
	if varied {
		for _, adj := range adjectives {
			for _, noun := range nouns {
				phrases = append(phrases, adj+" "+noun)
			}
		}
	}

	quote := style.Quote
	if quote == nil {
		quote = strconv.Quote
	}
	bytesLit := style.Bytes
	if bytesLit == nil {
		bytesLit = quote
	}

	table := Sentinels{
		ir.KindBool: {style.True},
	}
	for _, kind := range integerKinds {
		switch {
		case varied:
			table[kind] = slices.Clone(variedIntegers)
		case kind.Is64Bit():
			table[kind] = []string{defaultInt64}
		default:
			table[kind] = []string{defaultInt32}
		}
	}
	floats := []string{defaultFloat}
	if varied {
		floats = slices.Clone(variedFloats)
	}
	table[ir.KindFloat] = floats
	table[ir.KindDouble] = floats
	for _, phrase := range phrases {
		table[ir.KindString] = append(table[ir.KindString], quote(phrase))
		table[ir.KindBytes] = append(table[ir.KindBytes], bytesLit(phrase))
	}
	return table
}

// picker selects literals from a table. Single-entry kinds always yield their
// entry; multi-entry kinds draw from a PRNG seeded once per run so output is
// reproducible for a given seed.
type picker struct {
	table Sentinels
	rng   *rand.Rand
}

func newPicker(table Sentinels, seed uint64) *picker {
	return &picker{table: table, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (pk *picker) pick(kind ir.Kind) (string, error) {
	alts := pk.table[kind]
	switch len(alts) {
	case 0:
		return "", fmt.Errorf("%w: no literal for %s", ErrUnknownType, kind)
	case 1:
		return alts[0], nil
	default:
		return alts[pk.rng.IntN(len(alts))], nil
	}
}
