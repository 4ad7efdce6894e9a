// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package msk composes the streaming block: the broker cluster and its
// conditional CloudWatch log group. The cluster's logging attribute
// back-references the log group and resolves to null when logging is off.
package msk

import (
	"fmt"

	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

var clusterTemplate = compose.AttributeTemplate{
	Fields: []compose.Field{
		{Name: "Brokers", Default: 3},
		{Name: "InstanceType", Default: "kafka.m5.large"},
		{Name: "KafkaVersion", Default: "3.6.0"},
		{Name: "VolumeSize", Default: 100},
	},
}

var logGroupTemplate = compose.AttributeTemplate{
	Fields: []compose.Field{
		{Name: "RetentionDays", Default: 7},
	},
}

type Composer struct{}

func New() *Composer { return &Composer{} }

func (c *Composer) Name() string { return "msk" }

func (c *Composer) Compose(cfg *model.EnvironmentConfig, g *compose.Graph) error {
	streaming := cfg.Streaming
	if streaming == nil {
		return nil
	}

	name := cfg.Prefix() + "-msk"

	logGroups, err := compose.Build(streaming.CloudwatchLogsEnabled, func() (model.ResourceDescriptor, error) {
		logOverrides := map[string]any{}
		if streaming.LogRetentionDays > 0 {
			logOverrides["RetentionDays"] = streaming.LogRetentionDays
		}
		logAttrs, err := compose.Resolve("loggroup/broker-logs", logGroupTemplate, logOverrides,
			compose.WithName(name+"-broker-logs"))
		if err != nil {
			return model.ResourceDescriptor{}, err
		}
		return model.ResourceDescriptor{Kind: model.KindLogGroup, Key: "broker-logs", Attributes: logAttrs}, nil
	})
	if err != nil {
		return err
	}
	if err := g.Add(logGroups...); err != nil {
		return err
	}

	overrides := map[string]any{
		"Logging": map[string]any{"CloudwatchEnabled": streaming.CloudwatchLogsEnabled},
	}
	if streaming.Brokers > 0 {
		overrides["Brokers"] = streaming.Brokers
	}
	if streaming.InstanceType != "" {
		overrides["InstanceType"] = streaming.InstanceType
	}
	if streaming.KafkaVersion != "" {
		overrides["KafkaVersion"] = streaming.KafkaVersion
	}
	if streaming.VolumeSize > 0 {
		overrides["VolumeSize"] = streaming.VolumeSize
	}

	attrs, err := compose.Resolve("brokercluster/main", clusterTemplate, overrides,
		compose.WithName(name),
		compose.WithTags(cfg.Tags, streaming.Tags, name))
	if err != nil {
		return err
	}
	if err := g.Add(model.ResourceDescriptor{Kind: model.KindBrokerCluster, Key: "main", Attributes: attrs}); err != nil {
		return err
	}
	g.AddRef(
		// Null rather than an error when CloudWatch logging is disabled.
		model.RefSpec{SourceKind: model.KindBrokerCluster, SourceKey: "main", TargetPath: "Logging.LogGroup", TargetKind: model.KindLogGroup, TargetKey: "broker-logs"},
		model.RefSpec{SourceKind: model.KindBrokerCluster, SourceKey: "main", TargetPath: "VpcId", TargetKind: model.KindVPC, TargetKey: "main"},
		model.RefSpec{SourceKind: model.KindBrokerCluster, SourceKey: "main", TargetPath: "EncryptionKey", TargetKind: model.KindKey, TargetKey: "main"},
	)

	g.AddRule(brokerDistributionRule(cfg))

	return nil
}

// brokerDistributionRule requires the broker count to spread evenly over the
// environment's availability zones.
func brokerDistributionRule(cfg *model.EnvironmentConfig) compose.InvariantRule {
	zones := 0
	if cfg.Network != nil {
		zones = len(cfg.Network.Zones)
	}
	return compose.InvariantRule{
		Name: "broker-count-per-zone",
		Check: func(g *compose.Graph) []model.Violation {
			if zones == 0 {
				return nil
			}
			var violations []model.Violation
			for _, cluster := range g.OfKind(model.KindBrokerCluster) {
				brokers, _ := cluster.GetPropertyInt("Brokers")
				if brokers%int64(zones) != 0 {
					violations = append(violations, model.Violation{
						Rule:       "broker-count-per-zone",
						Descriptor: cluster.TupleKey(),
						Detail:     fmt.Sprintf("broker count %d is not a multiple of the zone count %d", brokers, zones),
						Severity:   model.SeverityError,
					})
				}
			}
			return violations
		},
	}
}
