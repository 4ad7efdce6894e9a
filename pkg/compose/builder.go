// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compose

import (
	"errors"

	"github.com/platform-engineering-labs/composa/pkg/model"
)

// Build yields zero-or-one descriptors: none when the flag is off, exactly
// one otherwise. The template function is not evaluated at all for a
// disabled group.
func Build(enabled bool, template func() (model.ResourceDescriptor, error)) ([]model.ResourceDescriptor, error) {
	if !enabled {
		return nil, nil
	}

	descriptor, err := template()
	if err != nil {
		return nil, err
	}

	return []model.ResourceDescriptor{descriptor}, nil
}

// BuildEach yields zero-or-many descriptors, one per input item. Output order
// matches the input's iteration order and is never re-sorted: downstream
// indexed references rely on positional stability within a single pass.
// Cross-pass stability comes from keys, not positions.
//
// A sibling with missing attributes does not stop the remaining items:
// InvalidAttributeErrors are collected across the whole group and joined, so
// one run reports every descriptor's missing fields. Any other template
// error aborts immediately.
func BuildEach[T any](enabled bool, items []T, template func(i int, item T) (model.ResourceDescriptor, error)) ([]model.ResourceDescriptor, error) {
	if !enabled || len(items) == 0 {
		return nil, nil
	}

	var invalid []error
	descriptors := make([]model.ResourceDescriptor, 0, len(items))
	for i, item := range items {
		descriptor, err := template(i, item)
		if err != nil {
			var attrErr *InvalidAttributeError
			if errors.As(err, &attrErr) {
				invalid = append(invalid, err)
				continue
			}
			return nil, err
		}
		descriptors = append(descriptors, descriptor)
	}
	if len(invalid) > 0 {
		return nil, errors.Join(invalid...)
	}

	return descriptors, nil
}

// BuildExclusive evaluates two conditional groups that are supposed to
// partition one boolean. Exactly one of them must be produced; both flags
// true, or both false, indicates a miscomputed negation in the composition
// rules and fails the pass with AmbiguousCompositionError.
func BuildExclusive(partition string, a bool, b bool,
	whenA func() ([]model.ResourceDescriptor, error),
	whenB func() ([]model.ResourceDescriptor, error),
) ([]model.ResourceDescriptor, error) {
	if a && b {
		return nil, &AmbiguousCompositionError{Partition: partition, Detail: "both groups would be produced"}
	}
	if !a && !b {
		return nil, &AmbiguousCompositionError{Partition: partition, Detail: "neither group would be produced"}
	}

	if a {
		return whenA()
	}
	return whenB()
}
