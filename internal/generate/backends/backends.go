// Package backends names the target languages and builds their hooks.
package backends

import (
	"fmt"

	"github.com/jptrs93/protoprober/internal/generate"
	"github.com/jptrs93/protoprober/internal/generate/cpp"
	gogen "github.com/jptrs93/protoprober/internal/generate/go"
	jsg "github.com/jptrs93/protoprober/internal/generate/js"
	"github.com/jptrs93/protoprober/internal/generate/python"
)

type ID string

const (
	Cpp    ID = "cpp"
	Go     ID = "go"
	Python ID = "python"
	Node   ID = "node"
)

// All lists every backend in a stable order.
var All = []ID{Cpp, Go, Python, Node}

func New(id ID) (generate.Hooks, error) {
	switch id {
	case Cpp:
		return cpp.Hooks{}, nil
	case Go:
		return gogen.Hooks{}, nil
	case Python:
		return python.Hooks{}, nil
	case Node:
		return jsg.Hooks{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want one of %v)", id, All)
	}
}

// Parse resolves a list of names, accepting "all" for every backend.
func Parse(names []string) ([]ID, error) {
	var ids []ID
	seen := make(map[ID]bool)
	for _, name := range names {
		if name == "all" {
			for _, id := range All {
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
			continue
		}
		id := ID(name)
		if _, err := New(id); err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
