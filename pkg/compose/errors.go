// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compose

import (
	"fmt"
	"strings"

	"github.com/platform-engineering-labs/composa/pkg/model"
)

// InvalidAttributeError reports every required field a single descriptor is
// missing, in one error. Resolution of other descriptors continues so a user
// sees all configuration problems in one run.
type InvalidAttributeError struct {
	Descriptor string
	Missing    []string
}

func (e *InvalidAttributeError) Error() string {
	return fmt.Sprintf("descriptor %s: missing required fields with no default: %s",
		e.Descriptor, strings.Join(e.Missing, ", "))
}

// AmbiguousCompositionError indicates a bug in the composition rules
// themselves: two conditionals that are supposed to partition one flag would
// produce both groups, or neither. It fails the whole pass.
type AmbiguousCompositionError struct {
	Partition string
	Detail    string
}

func (e *AmbiguousCompositionError) Error() string {
	return fmt.Sprintf("ambiguous composition for partition %q: %s", e.Partition, e.Detail)
}

// DanglingReferenceError reports a required cross-reference whose target was
// excluded from the pass. The configuration is unsatisfiable; the pass fails.
type DanglingReferenceError struct {
	Ref model.RefSpec
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("required reference %s resolves to no descriptor", e.Ref)
}
