package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/xrsl/jobpilot/pkg/retry"

	clog "github.com/xrsl/jobpilot/pkg/log"
)

// Terminal is the edge target that ends the workflow.
const Terminal = "_terminal"

// StageFunc performs one unit of work. It reads from the state and returns
// its output (or failure) through Result; it must not mutate the state.
type StageFunc func(ctx context.Context, s *State) Result

// GateFunc checks for equivalent prior output before its stage runs. A hit
// returns the cached output and true. Gates never fail: any lookup problem
// is a miss.
type GateFunc func(ctx context.Context, s *State) (any, bool)

// Predicate guards a conditional edge. Predicates must be total; a predicate
// that panics is treated as false.
type Predicate func(s *State) bool

// Edge routes control after a stage finishes. A nil When makes the edge
// unconditional.
type Edge struct {
	When Predicate
	To   string
}

// Descriptor is the static description of one stage: its function, cache
// gate, declared reads/writes, outgoing edges, and execution policy.
type Descriptor struct {
	Name    string
	Run     StageFunc
	Gate    GateFunc
	Reads   []string
	Writes  []string
	Edges   []Edge
	Timeout time.Duration
	Retry   retry.Config
}

// Graph is the static stage table. Stages keep declaration order so edge
// evaluation and validation are deterministic.
type Graph struct {
	stages map[string]*Descriptor
	order  []string
}

// NewGraph builds a graph from descriptors in declaration order.
func NewGraph(descriptors ...*Descriptor) (*Graph, error) {
	g := &Graph{stages: make(map[string]*Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if err := g.add(d); err != nil {
			return nil, err
		}
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) add(d *Descriptor) error {
	if d.Name == "" || d.Name == Terminal {
		return fmt.Errorf("invalid stage name %q", d.Name)
	}
	if d.Run == nil {
		return fmt.Errorf("stage %q has no function", d.Name)
	}
	if _, exists := g.stages[d.Name]; exists {
		return fmt.Errorf("duplicate stage %q", d.Name)
	}
	g.stages[d.Name] = d
	g.order = append(g.order, d.Name)
	return nil
}

// validate enforces the authoring rules: edge targets exist, at most one
// unconditional edge per stage and it comes last, and no cycles.
func (g *Graph) validate() error {
	for _, name := range g.order {
		d := g.stages[name]
		sawUnconditional := false
		for _, e := range d.Edges {
			if sawUnconditional {
				return fmt.Errorf("stage %q: edge after unconditional edge is unreachable", name)
			}
			if e.When == nil {
				sawUnconditional = true
			}
			if e.To == Terminal {
				continue
			}
			if _, ok := g.stages[e.To]; !ok {
				return fmt.Errorf("stage %q: edge to unknown stage %q", name, e.To)
			}
		}
	}
	return g.checkAcyclic()
}

func (g *Graph) checkAcyclic() error {
	const (
		unvisited = iota
		visiting
		done
	)
	marks := make(map[string]int, len(g.order))
	var visit func(name string) error
	visit = func(name string) error {
		switch marks[name] {
		case visiting:
			return fmt.Errorf("cycle through stage %q", name)
		case done:
			return nil
		}
		marks[name] = visiting
		for _, e := range g.stages[name].Edges {
			if e.To == Terminal {
				continue
			}
			if err := visit(e.To); err != nil {
				return err
			}
		}
		marks[name] = done
		return nil
	}
	for _, name := range g.order {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// Stage looks up a descriptor by name.
func (g *Graph) Stage(name string) (*Descriptor, bool) {
	d, ok := g.stages[name]
	return d, ok
}

// Stages returns stage names in declaration order.
func (g *Graph) Stages() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Next selects the successor of a stage for the given state. Edges are
// evaluated in declaration order and the first match wins. A stage with no
// matching edge, or no edges at all, is terminal.
func (g *Graph) Next(d *Descriptor, s *State) (string, bool) {
	for _, e := range d.Edges {
		if e.When == nil || evaluate(e.When, s) {
			if e.To == Terminal {
				return "", false
			}
			return e.To, true
		}
	}
	return "", false
}

// evaluate runs a predicate, treating a panic as false so a broken predicate
// cannot take down the run.
func evaluate(p Predicate, s *State) (matched bool) {
	defer func() {
		if r := recover(); r != nil {
			clog.Warn("edge predicate panicked, treating as false", "panic", r)
			matched = false
		}
	}()
	return p(s)
}
