// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package emit

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

func linkedGraph(t *testing.T, descriptors ...model.ResourceDescriptor) *compose.Graph {
	t.Helper()
	g := compose.NewGraph()
	require.NoError(t, g.Add(descriptors...))
	require.NoError(t, g.Link())
	g.Validate()
	return g
}

func TestEmit_WritesDocumentWithResources(t *testing.T) {
	g := linkedGraph(t, model.ResourceDescriptor{
		Kind:       model.KindVPC,
		Key:        "main",
		Attributes: json.RawMessage(`{"CIDR": "10.0.0.0/16"}`),
	})

	var buf bytes.Buffer
	emitter := &JSONEmitter{W: &buf}
	require.NoError(t, emitter.Emit(g))

	output := buf.String()
	assert.Equal(t, g.PassID, gjson.Get(output, "PassID").String())
	assert.Equal(t, "VPC", gjson.Get(output, "Resources.0.Kind").String())
	assert.Equal(t, "10.0.0.0/16", gjson.Get(output, "Resources.0.Attributes.CIDR").String())
}

func TestEmit_RefusesUnlinkedGraph(t *testing.T) {
	g := compose.NewGraph()
	require.NoError(t, g.Add(model.ResourceDescriptor{
		Kind:       model.KindVPC,
		Key:        "main",
		Attributes: json.RawMessage(`{}`),
	}))

	var buf bytes.Buffer
	err := (&JSONEmitter{W: &buf}).Emit(g)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unresolved cross-references")
}

func TestEmit_RefusesGraphWithBlockingViolations(t *testing.T) {
	g := compose.NewGraph()
	require.NoError(t, g.Add(model.ResourceDescriptor{
		Kind:       model.KindBrokerCluster,
		Key:        "main",
		Attributes: json.RawMessage(`{"Brokers": 5}`),
	}))
	g.AddRule(compose.InvariantRule{
		Name: "broker-count-per-zone",
		Check: func(g *compose.Graph) []model.Violation {
			return []model.Violation{{
				Rule:     "broker-count-per-zone",
				Detail:   "broker count must be a multiple of the zone count",
				Severity: model.SeverityError,
			}}
		},
	})
	require.NoError(t, g.Link())
	g.Validate()

	var buf bytes.Buffer
	err := (&JSONEmitter{W: &buf}).Emit(g)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocking violation")
}

func TestPlan_EmptySnapshotCreatesEverything(t *testing.T) {
	g := linkedGraph(t,
		model.ResourceDescriptor{Kind: model.KindVPC, Key: "main", Attributes: json.RawMessage(`{"CIDR": "10.0.0.0/16"}`)},
		model.ResourceDescriptor{Kind: model.KindKey, Key: "main", Attributes: json.RawMessage(`{"DeletionWindowDays": 30}`)},
	)

	plan, err := Plan(g, nil)

	require.NoError(t, err)
	require.Len(t, plan.Changes, 2)
	assert.Equal(t, OpCreate, plan.Changes[0].Op)
	assert.Equal(t, OpCreate, plan.Changes[1].Op)
}

func TestPlan_UnchangedResourceIsNoop(t *testing.T) {
	g := linkedGraph(t, model.ResourceDescriptor{
		Kind:       model.KindVPC,
		Key:        "main",
		Attributes: json.RawMessage(`{"CIDR": "10.0.0.0/16"}`),
	})

	snapshot, err := EncodeDocument(g, false)
	require.NoError(t, err)

	plan, err := Plan(g, snapshot)

	require.NoError(t, err)
	require.Len(t, plan.Changes, 1)
	assert.Equal(t, OpNoop, plan.Changes[0].Op)
	assert.Nil(t, plan.Changes[0].Patch)
}

func TestPlan_ChangedAttributesProduceUpdateWithPatch(t *testing.T) {
	before := linkedGraph(t, model.ResourceDescriptor{
		Kind:       model.KindKey,
		Key:        "main",
		Attributes: json.RawMessage(`{"DeletionWindowDays": 30}`),
	})
	snapshot, err := EncodeDocument(before, false)
	require.NoError(t, err)

	after := linkedGraph(t, model.ResourceDescriptor{
		Kind:       model.KindKey,
		Key:        "main",
		Attributes: json.RawMessage(`{"DeletionWindowDays": 7}`),
	})

	plan, err := Plan(after, snapshot)

	require.NoError(t, err)
	require.Len(t, plan.Changes, 1)
	assert.Equal(t, OpUpdate, plan.Changes[0].Op)
	assert.NotEmpty(t, plan.Changes[0].Patch)
}

func TestPlan_RemovedResourceIsDeleted(t *testing.T) {
	before := linkedGraph(t,
		model.ResourceDescriptor{Kind: model.KindLogGroup, Key: "broker-logs", Attributes: json.RawMessage(`{"RetentionDays": 7}`)},
	)
	snapshot, err := EncodeDocument(before, false)
	require.NoError(t, err)

	after := linkedGraph(t,
		model.ResourceDescriptor{Kind: model.KindBrokerCluster, Key: "main", Attributes: json.RawMessage(`{"Brokers": 6}`)},
	)

	plan, err := Plan(after, snapshot)

	require.NoError(t, err)
	require.Len(t, plan.Changes, 2)
	assert.Equal(t, OpCreate, plan.Changes[0].Op)
	assert.Equal(t, OpDelete, plan.Changes[1].Op)
	assert.Equal(t, "broker-logs", plan.Changes[1].Key)
}
