// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compose

import (
	"fmt"

	"github.com/segmentio/ksuid"

	"github.com/platform-engineering-labs/composa/pkg/model"
)

// Graph is the descriptor graph of one composition pass. It is built up by
// composers, linked once, validated, and then handed across the emitter
// boundary. Nothing in it survives the pass.
type Graph struct {
	PassID      string
	Descriptors []model.ResourceDescriptor
	Violations  []model.Violation

	refs   []model.RefSpec
	rules  []InvariantRule
	index  map[string]int
	linked bool
}

func NewGraph() *Graph {
	return &Graph{
		PassID: ksuid.New().String(),
		index:  make(map[string]int),
	}
}

// Add appends descriptors to the graph. Keys must be unique per kind; a
// duplicate means two composition rules claimed the same resource.
func (g *Graph) Add(descriptors ...model.ResourceDescriptor) error {
	for _, d := range descriptors {
		tuple := d.TupleKey()
		if _, exists := g.index[tuple]; exists {
			return fmt.Errorf("duplicate descriptor %s", tuple)
		}
		g.index[tuple] = len(g.Descriptors)
		g.Descriptors = append(g.Descriptors, d)
	}
	return nil
}

func (g *Graph) AddRef(refs ...model.RefSpec) {
	g.refs = append(g.refs, refs...)
}

func (g *Graph) AddRule(rules ...InvariantRule) {
	g.rules = append(g.rules, rules...)
}

// Lookup finds a descriptor by kind and key.
func (g *Graph) Lookup(kind model.Kind, key string) (*model.ResourceDescriptor, bool) {
	tuple := (&model.ResourceDescriptor{Kind: kind, Key: key}).TupleKey()
	i, ok := g.index[tuple]
	if !ok {
		return nil, false
	}
	return &g.Descriptors[i], true
}

// OfKind returns every descriptor of a kind, in the order they were added.
func (g *Graph) OfKind(kind model.Kind) []model.ResourceDescriptor {
	var result []model.ResourceDescriptor
	for _, d := range g.Descriptors {
		if d.Kind == kind {
			result = append(result, d)
		}
	}
	return result
}

// FirstOf returns the descriptor of a kind with the lexicographically
// smallest key. The ordering key is explicit so one-to-first-of-many
// references select the same target in every pass, regardless of the order
// composers added descriptors in.
func (g *Graph) FirstOf(kind model.Kind) (*model.ResourceDescriptor, bool) {
	first := -1
	for i, d := range g.Descriptors {
		if d.Kind != kind {
			continue
		}
		if first == -1 || d.Key < g.Descriptors[first].Key {
			first = i
		}
	}
	if first == -1 {
		return nil, false
	}
	return &g.Descriptors[first], true
}

// Linked reports whether the cross-reference pass has run.
func (g *Graph) Linked() bool {
	return g.linked
}

// Blocking returns the error-severity subset of the validator's findings.
func (g *Graph) Blocking() []model.Violation {
	var blocking []model.Violation
	for _, v := range g.Violations {
		if v.Severity == model.SeverityError {
			blocking = append(blocking, v)
		}
	}
	return blocking
}
