// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package renderer

import (
	"regexp"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/emit"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

func TestRenderViolations_Empty(t *testing.T) {
	result, err := RenderViolations(nil)
	assert.NoError(t, err)

	result = stripAnsiCodes(t, result)
	assert.Contains(t, result, "No violations found.")
}

func TestRenderViolations_TableContainsRuleAndSeverity(t *testing.T) {
	violations := []model.Violation{
		{
			Rule:       "broker-count-per-zone",
			Descriptor: "brokercluster/main",
			Detail:     "broker count must be a multiple of the zone count",
			Severity:   model.SeverityError,
		},
		{
			Rule:     "implicit-primary-target-group",
			Detail:   "no target group is marked primary",
			Severity: model.SeverityAdvisory,
		},
	}

	result, err := RenderViolations(violations)
	assert.NoError(t, err)

	// When run with make test-all, color escape sequences interfere with string assertions
	result = stripAnsiCodes(t, result)

	assert.Contains(t, result, "broker-count-per-zone")
	assert.Contains(t, result, "brokercluster/main")
	assert.Contains(t, result, "Error")
	assert.Contains(t, result, "implicit-primary-target-group")
	assert.Contains(t, result, "Advisory")
}

func TestRenderPlan_NoChanges(t *testing.T) {
	result, err := RenderPlan(&emit.PlanResult{PassID: "pass"})
	assert.NoError(t, err)

	result = stripAnsiCodes(t, result)
	assert.Contains(t, result, "No changes.")
}

func TestRenderPlan_SummaryCountsEveryOp(t *testing.T) {
	plan := &emit.PlanResult{
		PassID: "pass",
		Changes: []emit.Change{
			{Kind: model.KindVPC, Key: "main", Op: emit.OpNoop},
			{Kind: model.KindSubnet, Key: "a", Op: emit.OpCreate},
			{Kind: model.KindSubnet, Key: "b", Op: emit.OpCreate},
			{Kind: model.KindKey, Key: "main", Op: emit.OpUpdate, Patch: json.RawMessage(`[{"op":"replace","path":"/DeletionWindowDays","value":14}]`)},
			{Kind: model.KindLogGroup, Key: "broker-logs", Op: emit.OpDelete},
		},
	}

	result, err := RenderPlan(plan)
	assert.NoError(t, err)

	result = stripAnsiCodes(t, result)

	assert.Contains(t, result, "Plan: 2 to create, 1 to update, 1 to delete, 1 unchanged")
	assert.Contains(t, result, "broker-logs")
	assert.Contains(t, result, "/DeletionWindowDays")
}

func TestRenderGraph_GroupsByKindWithDependencies(t *testing.T) {
	g := compose.NewGraph()
	require.NoError(t, g.Add(
		model.ResourceDescriptor{Kind: model.KindVPC, Key: "main", Attributes: json.RawMessage(`{}`)},
		model.ResourceDescriptor{
			Kind:       model.KindSubnet,
			Key:        "eu-central-1a",
			Attributes: json.RawMessage(`{}`),
			DependsOn:  []string{"vpc/main"},
		},
	))

	result, err := RenderGraph(g)
	assert.NoError(t, err)

	result = stripAnsiCodes(t, result)

	assert.Contains(t, result, "pass "+g.PassID)
	assert.Contains(t, result, "VPC")
	assert.Contains(t, result, "eu-central-1a")
	assert.Contains(t, result, "depends on vpc/main")
}

func stripAnsiCodes(t *testing.T, s string) string {
	t.Helper()

	ansi := regexp.MustCompile("\x1b\\[[0-9;]*m")
	return ansi.ReplaceAllString(s, "")
}
