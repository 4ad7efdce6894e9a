// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package emit

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/platform-engineering-labs/jsonpatch"

	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

type Op string

const (
	OpCreate Op = "Create"
	OpUpdate Op = "Update"
	OpDelete Op = "Delete"
	OpNoop   Op = "Noop"
)

// Change is one planned action against the previous snapshot.
type Change struct {
	Kind  model.Kind      `json:"Kind"`
	Key   string          `json:"Key"`
	Op    Op              `json:"Op"`
	Patch json.RawMessage `json:"Patch,omitempty"`
}

type PlanResult struct {
	PassID  string   `json:"PassID"`
	Changes []Change `json:"Changes"`
}

// Plan diffs a finished graph against a previous emission document. The
// snapshot is opaque previous output; composa owns no state of its own. A nil
// or empty snapshot plans a create for every descriptor.
//
// Creates and updates come out in graph order, deletes in snapshot order.
func Plan(g *compose.Graph, snapshot []byte) (*PlanResult, error) {
	if err := checkBoundary(g); err != nil {
		return nil, err
	}

	previous := make(map[string]model.ResourceDescriptor)
	var previousOrder []string
	if len(snapshot) > 0 {
		var doc Document
		if err := json.Unmarshal(snapshot, &doc); err != nil {
			return nil, fmt.Errorf("parsing snapshot: %w", err)
		}
		for _, d := range doc.Resources {
			previous[d.TupleKey()] = d
			previousOrder = append(previousOrder, d.TupleKey())
		}
	}

	plan := &PlanResult{PassID: g.PassID}
	current := make(map[string]bool, len(g.Descriptors))

	for _, d := range g.Descriptors {
		current[d.TupleKey()] = true

		prior, exists := previous[d.TupleKey()]
		if !exists {
			plan.Changes = append(plan.Changes, Change{Kind: d.Kind, Key: d.Key, Op: OpCreate})
			continue
		}

		patch, err := diffAttributes(prior.Attributes, d.Attributes)
		if err != nil {
			return nil, fmt.Errorf("diffing %s: %w", d.TupleKey(), err)
		}
		if patch == nil {
			plan.Changes = append(plan.Changes, Change{Kind: d.Kind, Key: d.Key, Op: OpNoop})
			continue
		}
		plan.Changes = append(plan.Changes, Change{Kind: d.Kind, Key: d.Key, Op: OpUpdate, Patch: patch})
	}

	for _, tuple := range previousOrder {
		if current[tuple] {
			continue
		}
		d := previous[tuple]
		plan.Changes = append(plan.Changes, Change{Kind: d.Kind, Key: d.Key, Op: OpDelete})
	}

	return plan, nil
}

func diffAttributes(prior, desired json.RawMessage) (json.RawMessage, error) {
	collections := jsonpatch.Collections{
		EntitySets: jsonpatch.EntitySets{},
		Arrays:     []jsonpatch.Path{},
	}

	patchOps, err := jsonpatch.CreatePatch(prior, desired, collections, []jsonpatch.Path{}, jsonpatch.PatchStrategyExactMatch)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSON patch: %w", err)
	}
	if len(patchOps) == 0 {
		return nil, nil
	}

	serialized, err := json.Marshal(patchOps)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize patch document: %w", err)
	}
	return serialized, nil
}
