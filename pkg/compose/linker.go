// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compose

import (
	"fmt"

	"github.com/tidwall/sjson"

	"github.com/platform-engineering-labs/composa/pkg/model"
)

// Link resolves every recorded RefSpec against the pass's descriptor set.
//
// A found target substitutes its handle into the source attribute and records
// a dependency edge. An absent target is legitimate for optional references —
// the attribute resolves to the null sentinel, never an error. Only a
// required reference with no target fails the pass, because it means the
// configuration asked for something unsatisfiable (e.g. an HTTPS listener
// with zero target groups).
func (g *Graph) Link() error {
	for _, ref := range g.refs {
		sourceTuple := (&model.ResourceDescriptor{Kind: ref.SourceKind, Key: ref.SourceKey}).TupleKey()
		sourceIdx, ok := g.index[sourceTuple]
		if !ok {
			// A ref from a descriptor that was never added is a composer
			// authoring bug, not a configuration problem.
			return fmt.Errorf("reference %s names unknown source descriptor %s", ref, sourceTuple)
		}

		target, found := g.resolveTarget(ref)
		if !found {
			if ref.Required {
				return &DanglingReferenceError{Ref: ref}
			}
			attrs, err := sjson.SetRawBytes(g.Descriptors[sourceIdx].Attributes, ref.TargetPath, []byte(model.NullHandle))
			if err != nil {
				return fmt.Errorf("writing null sentinel for %s: %w", ref, err)
			}
			g.Descriptors[sourceIdx].Attributes = attrs
			continue
		}

		attrs, err := sjson.SetBytes(g.Descriptors[sourceIdx].Attributes, ref.TargetPath, model.Handle(target.Kind, target.Key))
		if err != nil {
			return fmt.Errorf("writing handle for %s: %w", ref, err)
		}
		g.Descriptors[sourceIdx].Attributes = attrs
		g.Descriptors[sourceIdx].AddDependency(target.TupleKey())
	}

	g.linked = true
	return nil
}

func (g *Graph) resolveTarget(ref model.RefSpec) (*model.ResourceDescriptor, bool) {
	if ref.TargetKey == "" {
		return g.FirstOf(ref.TargetKind)
	}
	return g.Lookup(ref.TargetKind, ref.TargetKey)
}
