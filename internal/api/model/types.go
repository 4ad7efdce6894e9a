// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"encoding/json"

	"github.com/platform-engineering-labs/composa/pkg/model"
)

type ComposeResponse struct {
	PassID     string                     `json:"PassID"`
	Resources  []model.ResourceDescriptor `json:"Resources"`
	Violations []ViolationReport          `json:"Violations,omitempty"`
}

type ValidateResponse struct {
	PassID     string            `json:"PassID"`
	Valid      bool              `json:"Valid"`
	Violations []ViolationReport `json:"Violations,omitempty"`
}

type ViolationReport struct {
	Rule       string `json:"Rule"`
	Descriptor string `json:"Descriptor,omitempty"`
	Detail     string `json:"Detail"`
	Severity   string `json:"Severity"`
}

type PlanRequest struct {
	Config   *model.EnvironmentConfig `json:"Config"`
	Snapshot json.RawMessage          `json:"Snapshot,omitempty"`
}

type PlanResponse struct {
	PassID  string         `json:"PassID"`
	Changes []ChangeReport `json:"Changes"`
}

type ChangeReport struct {
	Kind  string          `json:"Kind"`
	Key   string          `json:"Key"`
	Op    string          `json:"Op"`
	Patch json.RawMessage `json:"Patch,omitempty"`
}

func ReportViolations(violations []model.Violation) []ViolationReport {
	if len(violations) == 0 {
		return nil
	}
	reports := make([]ViolationReport, len(violations))
	for i, v := range violations {
		reports[i] = ViolationReport{
			Rule:       v.Rule,
			Descriptor: v.Descriptor,
			Detail:     v.Detail,
			Severity:   string(v.Severity),
		}
	}
	return reports
}
