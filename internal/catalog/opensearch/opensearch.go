// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package opensearch composes the search block: the domain and its
// conditional audit log group, wired the same way the streaming block wires
// its broker logs.
package opensearch

import (
	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

var domainTemplate = compose.AttributeTemplate{
	Fields: []compose.Field{
		{Name: "InstanceType", Default: "r6g.large.search"},
		{Name: "InstanceCount", Default: 3},
		{Name: "VolumeSize", Default: 100},
		{Name: "EncryptionAtRest", Default: true},
	},
}

type Composer struct{}

func New() *Composer { return &Composer{} }

func (c *Composer) Name() string { return "opensearch" }

func (c *Composer) Compose(cfg *model.EnvironmentConfig, g *compose.Graph) error {
	search := cfg.Search
	if search == nil {
		return nil
	}

	name := cfg.Prefix() + "-search"

	auditLogs, err := compose.Build(search.AuditLogsEnabled, func() (model.ResourceDescriptor, error) {
		logOverrides := map[string]any{}
		if search.LogRetentionDays > 0 {
			logOverrides["RetentionDays"] = search.LogRetentionDays
		}
		logAttrs, err := compose.Resolve("loggroup/audit-logs", compose.AttributeTemplate{
			Fields: []compose.Field{
				{Name: "RetentionDays", Default: 7},
			},
		}, logOverrides, compose.WithName(name+"-audit-logs"))
		if err != nil {
			return model.ResourceDescriptor{}, err
		}
		return model.ResourceDescriptor{Kind: model.KindLogGroup, Key: "audit-logs", Attributes: logAttrs}, nil
	})
	if err != nil {
		return err
	}
	if err := g.Add(auditLogs...); err != nil {
		return err
	}

	overrides := map[string]any{
		"LogPublishing": map[string]any{"AuditEnabled": search.AuditLogsEnabled},
	}
	if search.InstanceType != "" {
		overrides["InstanceType"] = search.InstanceType
	}
	if search.InstanceCount > 0 {
		overrides["InstanceCount"] = search.InstanceCount
	}
	if search.VolumeSize > 0 {
		overrides["VolumeSize"] = search.VolumeSize
	}

	attrs, err := compose.Resolve("domain/main", domainTemplate, overrides,
		compose.WithName(name),
		compose.WithTags(cfg.Tags, search.Tags, name))
	if err != nil {
		return err
	}
	if err := g.Add(model.ResourceDescriptor{Kind: model.KindDomain, Key: "main", Attributes: attrs}); err != nil {
		return err
	}
	g.AddRef(
		model.RefSpec{SourceKind: model.KindDomain, SourceKey: "main", TargetPath: "LogPublishing.AuditLogGroup", TargetKind: model.KindLogGroup, TargetKey: "audit-logs"},
		model.RefSpec{SourceKind: model.KindDomain, SourceKey: "main", TargetPath: "EncryptionKey", TargetKind: model.KindKey, TargetKey: "main"},
	)

	return nil
}
