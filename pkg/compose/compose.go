// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package compose evaluates a typed environment configuration into a fully
// resolved, validated graph of resource descriptors in one deterministic,
// side-effect-free pass: attribute resolution, conditional descriptor
// construction, cross-reference linking, then invariant validation.
package compose

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc"

	"github.com/platform-engineering-labs/composa/pkg/model"
)

// Composer contributes one service block's descriptors, references and
// invariant rules to the pass. A composer must not read anything but the
// configuration it is handed, and must contribute nothing when its block is
// absent.
type Composer interface {
	Name() string
	Compose(cfg *model.EnvironmentConfig, g *Graph) error
}

// Compose runs one full composition pass: every composer builds its
// descriptors, the graph is linked, and the invariant rules run.
//
// Attribute-level errors are batched: a composer failing with
// InvalidAttributeError does not stop the remaining composers, so one run
// reports every missing field across the whole configuration. Structural
// errors (AmbiguousComposition, a dangling required reference) fail the pass
// immediately — they indicate bugs or unsatisfiable configurations, not
// fixable fields.
//
// Validator findings never surface as errors here; they are collected on the
// returned graph for the caller to judge.
func Compose(cfg *model.EnvironmentConfig, composers ...Composer) (*Graph, error) {
	g := NewGraph()

	var attributeErrs []error
	for _, composer := range composers {
		err := composer.Compose(cfg, g)
		if err == nil {
			continue
		}

		var invalid *InvalidAttributeError
		if errors.As(err, &invalid) {
			attributeErrs = append(attributeErrs, err)
			continue
		}
		return nil, fmt.Errorf("composer %s: %w", composer.Name(), err)
	}
	if len(attributeErrs) > 0 {
		return nil, errors.Join(attributeErrs...)
	}

	if err := g.Link(); err != nil {
		return nil, err
	}

	g.Validate()

	return g, nil
}

// Result is the outcome of composing one labeled environment.
type Result struct {
	Label string
	Graph *Graph
	Err   error
}

// ComposeAll composes several independent environments concurrently. Each
// pass is pure and shares no mutable state, so caller-level parallelism is
// safe; the core itself stays single-threaded per pass. Results are ordered
// by environment label.
func ComposeAll(cfgs map[string]*model.EnvironmentConfig, composers ...Composer) []Result {
	labels := make([]string, 0, len(cfgs))
	for label := range cfgs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	results := make([]Result, len(labels))

	var wg conc.WaitGroup
	for i, label := range labels {
		wg.Go(func() {
			graph, err := Compose(cfgs[label], composers...)
			results[i] = Result{Label: label, Graph: graph, Err: err}
		})
	}
	wg.Wait()

	return results
}
