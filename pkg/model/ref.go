// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"fmt"
	"strings"
)

// NullHandle is the sentinel a cross-reference resolves to when its target
// was conditionally excluded from the pass. It is emitted as JSON null.
const NullHandle = "null"

// Handle returns the to-be-assigned placeholder for a descriptor. The
// provisioning backend substitutes the real identifier (e.g. an ARN) when the
// resource is created.
func Handle(kind Kind, key string) string {
	return fmt.Sprintf("${%s/%s}", strings.ToLower(string(kind)), key)
}

// RefSpec names a cross-reference from one descriptor's attribute to another
// descriptor's handle.
//
// An empty TargetKey selects the first descriptor of TargetKind in
// lexicographic key order. That order is deliberate: selection must be stable
// across passes, and insertion order is a property of composer authoring, not
// of the configuration.
type RefSpec struct {
	SourceKind Kind
	SourceKey  string

	// Path in the source descriptor's attributes. e.g. "Logging.LogGroup"
	TargetPath string

	TargetKind Kind
	TargetKey  string

	// Required references fail the pass when the target is absent.
	// Optional references resolve to the null sentinel instead.
	Required bool
}

func (r RefSpec) String() string {
	target := r.TargetKey
	if target == "" {
		target = "<first>"
	}
	return fmt.Sprintf("%s/%s.%s -> %s/%s",
		strings.ToLower(string(r.SourceKind)), r.SourceKey, r.TargetPath,
		strings.ToLower(string(r.TargetKind)), target)
}
