// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/composa/pkg/model"
)

type fakeComposer struct {
	name    string
	compose func(cfg *model.EnvironmentConfig, g *Graph) error
}

func (f *fakeComposer) Name() string { return f.name }

func (f *fakeComposer) Compose(cfg *model.EnvironmentConfig, g *Graph) error {
	return f.compose(cfg, g)
}

func TestCompose_BatchesInvalidAttributeErrorsAcrossComposers(t *testing.T) {
	first := &fakeComposer{name: "network", compose: func(cfg *model.EnvironmentConfig, g *Graph) error {
		return &InvalidAttributeError{Descriptor: "vpc/main", Missing: []string{"CIDR"}}
	}}
	second := &fakeComposer{name: "alb", compose: func(cfg *model.EnvironmentConfig, g *Graph) error {
		return &InvalidAttributeError{Descriptor: "targetgroup/app", Missing: []string{"Port"}}
	}}

	_, err := Compose(&model.EnvironmentConfig{}, first, second)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "vpc/main")
	assert.Contains(t, err.Error(), "targetgroup/app")
}

func TestCompose_AmbiguousCompositionFailsImmediately(t *testing.T) {
	reached := false
	first := &fakeComposer{name: "alb", compose: func(cfg *model.EnvironmentConfig, g *Graph) error {
		return &AmbiguousCompositionError{Partition: "certificate", Detail: "both groups would be produced"}
	}}
	second := &fakeComposer{name: "kms", compose: func(cfg *model.EnvironmentConfig, g *Graph) error {
		reached = true
		return nil
	}}

	_, err := Compose(&model.EnvironmentConfig{}, first, second)

	var ambiguous *AmbiguousCompositionError
	require.ErrorAs(t, err, &ambiguous)
	assert.False(t, reached)
}

func TestCompose_LinksAndValidatesTheGraph(t *testing.T) {
	composer := &fakeComposer{name: "msk", compose: func(cfg *model.EnvironmentConfig, g *Graph) error {
		if err := g.Add(descriptor(model.KindBrokerCluster, "main", `{"Brokers": 5, "Logging": {}}`)); err != nil {
			return err
		}
		g.AddRef(model.RefSpec{
			SourceKind: model.KindBrokerCluster, SourceKey: "main",
			TargetPath: "Logging.LogGroup",
			TargetKind: model.KindLogGroup, TargetKey: "broker-logs",
		})
		g.AddRule(brokerCountRule(3))
		return nil
	}}

	g, err := Compose(&model.EnvironmentConfig{}, composer)

	require.NoError(t, err)
	assert.True(t, g.Linked())
	require.Len(t, g.Violations, 1)
	assert.Equal(t, "broker-count-per-zone", g.Violations[0].Rule)
}

func TestCompose_IsIdempotent(t *testing.T) {
	composer := &fakeComposer{name: "kms", compose: func(cfg *model.EnvironmentConfig, g *Graph) error {
		if err := g.Add(
			descriptor(model.KindKey, "main", `{"DeletionWindowDays": 30}`),
			descriptor(model.KindAlias, "main", `{"AliasName": "alias/acme"}`),
		); err != nil {
			return err
		}
		g.AddRef(model.RefSpec{
			SourceKind: model.KindAlias, SourceKey: "main",
			TargetPath: "TargetKey",
			TargetKind: model.KindKey, TargetKey: "main",
			Required: true,
		})
		return nil
	}}

	first, err := Compose(&model.EnvironmentConfig{}, composer)
	require.NoError(t, err)
	second, err := Compose(&model.EnvironmentConfig{}, composer)
	require.NoError(t, err)

	// PassID differs per pass; the descriptor graph must not.
	assert.Equal(t, first.Descriptors, second.Descriptors)
	assert.Equal(t, first.Violations, second.Violations)
}

func TestComposeAll_OrdersResultsByLabelAndIsolatesFailures(t *testing.T) {
	composer := &fakeComposer{name: "network", compose: func(cfg *model.EnvironmentConfig, g *Graph) error {
		if cfg.Environment == "broken" {
			return &InvalidAttributeError{Descriptor: "vpc/main", Missing: []string{"CIDR"}}
		}
		return g.Add(descriptor(model.KindVPC, "main", `{"CIDR": "10.0.0.0/16"}`))
	}}

	results := ComposeAll(map[string]*model.EnvironmentConfig{
		"prod": {Environment: "prod"},
		"dev":  {Environment: "dev"},
		"bad":  {Environment: "broken"},
	}, composer)

	require.Len(t, results, 3)
	assert.Equal(t, "bad", results[0].Label)
	assert.Equal(t, "dev", results[1].Label)
	assert.Equal(t, "prod", results[2].Label)

	var invalid *InvalidAttributeError
	assert.True(t, errors.As(results[0].Err, &invalid))
	assert.NoError(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}
