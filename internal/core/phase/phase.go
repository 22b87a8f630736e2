package phase

import (
	"errors"
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
)

// ErrDuplicatePhase is returned when a phase name is declared twice.
var ErrDuplicatePhase = errors.New("phase already declared")

// Handle identifies a declared phase. The zero value is invalid.
type Handle struct {
	g    *Graph
	idx  int
	name string
}

func (h Handle) Valid() bool  { return h.g != nil }
func (h Handle) Name() string { return h.name }
func (h Handle) Index() int   { return h.idx }

func (h Handle) String() string {
	if !h.Valid() {
		return "<invalid phase>"
	}
	return h.name
}

// Belongs reports whether h was declared on g.
func (h Handle) Belongs(g *Graph) bool { return h.g != nil && h.g == g }

// Graph is a single linear chain of phases. Every phase except the root
// names the phase it runs after; the chain is built once at startup and
// only read afterwards.
type Graph struct {
	phases *orderedmap.OrderedMap[string, Handle]
	order  []Handle
	preds  []Handle
}

func NewGraph() *Graph {
	return &Graph{
		phases: orderedmap.NewOrderedMap[string, Handle](),
		order:  make([]Handle, 0, 16),
		preds:  make([]Handle, 0, 16),
	}
}

// Declare appends a phase that runs after the given predecessor. The root
// phase is declared with the zero Handle.
//
// Asking for a phase whose predecessor was never declared, or whose
// predecessor is not the current tail of the chain, is a wiring bug and
// panics.
func (g *Graph) Declare(name string, after Handle) (Handle, error) {
	if name == "" {
		return Handle{}, errors.New("phase name is empty")
	}
	if _, ok := g.phases.Get(name); ok {
		return Handle{}, fmt.Errorf("declare %q: %w", name, ErrDuplicatePhase)
	}
	if len(g.order) == 0 {
		if after.Valid() {
			panic(fmt.Sprintf("phase: root %q declared after %q from another graph", name, after.name))
		}
	} else {
		if !after.Valid() {
			panic(fmt.Sprintf("phase: %q declared without a predecessor", name))
		}
		if after.g != g {
			panic(fmt.Sprintf("phase: %q declared after %q from another graph", name, after.name))
		}
		if tail := g.order[len(g.order)-1]; after != tail {
			panic(fmt.Sprintf("phase: %q must follow tail %q, not %q", name, tail.name, after.name))
		}
	}

	h := Handle{g: g, idx: len(g.order), name: name}
	g.phases.Set(name, h)
	g.order = append(g.order, h)
	g.preds = append(g.preds, after)
	return h, nil
}

// MustDeclare is Declare for startup wiring where an error is fatal.
func (g *Graph) MustDeclare(name string, after Handle) Handle {
	h, err := g.Declare(name, after)
	if err != nil {
		panic("phase: " + err.Error())
	}
	return h
}

// Lookup returns the named phase, or the invalid Handle if it does not exist.
func (g *Graph) Lookup(name string) Handle {
	h, _ := g.phases.Get(name)
	return h
}

func (g *Graph) MustLookup(name string) Handle {
	h, ok := g.phases.Get(name)
	if !ok {
		panic(fmt.Sprintf("phase: %q is not declared", name))
	}
	return h
}

// Predecessor returns the phase h runs after (invalid for the root).
func (g *Graph) Predecessor(h Handle) Handle {
	if !h.Belongs(g) {
		return Handle{}
	}
	return g.preds[h.idx]
}

// Order returns the phases in execution order.
func (g *Graph) Order() []Handle {
	out := make([]Handle, 0, g.phases.Len())
	for el := g.phases.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

func (g *Graph) Len() int { return len(g.order) }
