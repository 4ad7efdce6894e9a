// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import "fmt"

type Severity string

const (
	SeverityError    Severity = "Error"
	SeverityAdvisory Severity = "Advisory"
)

// Violation is one invariant-rule finding. Violations are collected, never
// thrown: the caller decides whether any of them block emission.
type Violation struct {
	Rule       string   `json:"Rule"`
	Descriptor string   `json:"Descriptor,omitempty"`
	Detail     string   `json:"Detail"`
	Severity   Severity `json:"Severity"`
}

func (v Violation) String() string {
	if v.Descriptor == "" {
		return fmt.Sprintf("[%s] %s: %s", v.Severity, v.Rule, v.Detail)
	}
	return fmt.Sprintf("[%s] %s: %s: %s", v.Severity, v.Rule, v.Descriptor, v.Detail)
}
