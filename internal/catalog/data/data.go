// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package data composes the database and cache blocks: the RDS instance with
// its subnet group and conditional read replica, and the ElastiCache cluster.
package data

import (
	"fmt"

	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

var dbInstanceTemplate = compose.AttributeTemplate{
	Fields: []compose.Field{
		{Name: "Engine", Default: "postgres"},
		{Name: "EngineVersion", Default: "16.3"},
		{Name: "InstanceClass", Default: "db.t3.medium"},
		{Name: "Port", Default: 5432},
		{Name: "MultiAZ", Default: false},
		{Name: "BackupRetentionDays", Default: 7},
		{Name: "StorageEncrypted", Default: true},
	},
}

var cacheClusterTemplate = compose.AttributeTemplate{
	Fields: []compose.Field{
		{Name: "Engine", Default: "redis"},
		{Name: "NodeType", Default: "cache.t3.micro"},
		{Name: "Nodes", Default: 1},
		{Name: "Port", Default: 6379},
	},
}

type Composer struct{}

func New() *Composer { return &Composer{} }

func (c *Composer) Name() string { return "data" }

func (c *Composer) Compose(cfg *model.EnvironmentConfig, g *compose.Graph) error {
	if err := c.composeDatabase(cfg, g); err != nil {
		return err
	}
	return c.composeCache(cfg, g)
}

func (c *Composer) composeDatabase(cfg *model.EnvironmentConfig, g *compose.Graph) error {
	db := cfg.Database
	if db == nil {
		return nil
	}

	name := cfg.Prefix() + "-db"

	subnetGroupAttrs, err := compose.Resolve("dbsubnetgroup/db", compose.AttributeTemplate{},
		nil, compose.WithName(name+"-subnets"), compose.WithTags(cfg.Tags, db.Tags, name+"-subnets"))
	if err != nil {
		return err
	}
	if err := g.Add(model.ResourceDescriptor{Kind: model.KindDBSubnetGroup, Key: "db", Attributes: subnetGroupAttrs}); err != nil {
		return err
	}
	g.AddRef(model.RefSpec{SourceKind: model.KindDBSubnetGroup, SourceKey: "db", TargetPath: "VpcId", TargetKind: model.KindVPC, TargetKey: "main"})

	overrides := map[string]any{}
	if db.Engine != "" {
		overrides["Engine"] = db.Engine
	}
	if db.EngineVersion != "" {
		overrides["EngineVersion"] = db.EngineVersion
	}
	if db.InstanceClass != "" {
		overrides["InstanceClass"] = db.InstanceClass
	}
	if db.Port > 0 {
		overrides["Port"] = db.Port
	}
	if db.MultiAZ {
		overrides["MultiAZ"] = true
	}
	if db.BackupRetentionDays != nil {
		overrides["BackupRetentionDays"] = *db.BackupRetentionDays
	}

	attrs, err := compose.Resolve("dbinstance/primary", dbInstanceTemplate, overrides,
		compose.WithName(name),
		compose.WithTags(cfg.Tags, db.Tags, name))
	if err != nil {
		return err
	}
	if err := g.Add(model.ResourceDescriptor{Kind: model.KindDBInstance, Key: "primary", Attributes: attrs}); err != nil {
		return err
	}
	g.AddRef(
		model.RefSpec{SourceKind: model.KindDBInstance, SourceKey: "primary", TargetPath: "SubnetGroup", TargetKind: model.KindDBSubnetGroup, TargetKey: "db", Required: true},
		model.RefSpec{SourceKind: model.KindDBInstance, SourceKey: "primary", TargetPath: "KmsKeyId", TargetKind: model.KindKey, TargetKey: "main"},
	)

	replicas, err := compose.Build(db.ReadReplica, func() (model.ResourceDescriptor, error) {
		replicaOverrides := map[string]any{}
		if db.InstanceClass != "" {
			replicaOverrides["InstanceClass"] = db.InstanceClass
		}
		replicaAttrs, err := compose.Resolve("dbinstance/replica", compose.AttributeTemplate{
			Fields: []compose.Field{
				{Name: "InstanceClass", Default: "db.t3.medium"},
			},
		}, replicaOverrides, compose.WithName(name+"-replica"), compose.WithTags(cfg.Tags, db.Tags, name+"-replica"))
		if err != nil {
			return model.ResourceDescriptor{}, err
		}
		return model.ResourceDescriptor{Kind: model.KindDBInstance, Key: "replica", Attributes: replicaAttrs}, nil
	})
	if err != nil {
		return err
	}
	if err := g.Add(replicas...); err != nil {
		return err
	}
	if len(replicas) > 0 {
		g.AddRef(model.RefSpec{SourceKind: model.KindDBInstance, SourceKey: "replica", TargetPath: "SourceDBInstance", TargetKind: model.KindDBInstance, TargetKey: "primary", Required: true})
	}

	g.AddRule(backupRetentionRule())

	return nil
}

func (c *Composer) composeCache(cfg *model.EnvironmentConfig, g *compose.Graph) error {
	cache := cfg.Cache
	if cache == nil {
		return nil
	}

	name := cfg.Prefix() + "-cache"

	subnetGroupAttrs, err := compose.Resolve("cachesubnetgroup/cache", compose.AttributeTemplate{},
		nil, compose.WithName(name+"-subnets"), compose.WithTags(cfg.Tags, cache.Tags, name+"-subnets"))
	if err != nil {
		return err
	}
	if err := g.Add(model.ResourceDescriptor{Kind: model.KindCacheSubnetGroup, Key: "cache", Attributes: subnetGroupAttrs}); err != nil {
		return err
	}
	g.AddRef(model.RefSpec{SourceKind: model.KindCacheSubnetGroup, SourceKey: "cache", TargetPath: "VpcId", TargetKind: model.KindVPC, TargetKey: "main"})

	overrides := map[string]any{}
	if cache.Engine != "" {
		overrides["Engine"] = cache.Engine
	}
	if cache.NodeType != "" {
		overrides["NodeType"] = cache.NodeType
	}
	if cache.Nodes > 0 {
		overrides["Nodes"] = cache.Nodes
	}
	if cache.Port > 0 {
		overrides["Port"] = cache.Port
	}

	attrs, err := compose.Resolve("cachecluster/main", cacheClusterTemplate, overrides,
		compose.WithName(name),
		compose.WithTags(cfg.Tags, cache.Tags, name))
	if err != nil {
		return err
	}
	if err := g.Add(model.ResourceDescriptor{Kind: model.KindCacheCluster, Key: "main", Attributes: attrs}); err != nil {
		return err
	}
	g.AddRef(model.RefSpec{SourceKind: model.KindCacheCluster, SourceKey: "main", TargetPath: "SubnetGroup", TargetKind: model.KindCacheSubnetGroup, TargetKey: "cache", Required: true})

	return nil
}

func backupRetentionRule() compose.InvariantRule {
	return compose.InvariantRule{
		Name: "backup-retention-range",
		Check: func(g *compose.Graph) []model.Violation {
			var violations []model.Violation
			for _, instance := range g.OfKind(model.KindDBInstance) {
				retention, found := instance.GetPropertyInt("BackupRetentionDays")
				if !found {
					continue
				}
				if retention < 0 || retention > 35 {
					violations = append(violations, model.Violation{
						Rule:       "backup-retention-range",
						Descriptor: instance.TupleKey(),
						Detail:     fmt.Sprintf("backup retention must be within [0,35] days, got %d", retention),
						Severity:   model.SeverityError,
					})
				}
			}
			return violations
		},
	}
}
