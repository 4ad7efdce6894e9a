// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package eks composes the Kubernetes block: the cluster, its node groups,
// the per-ARN policy attachments, and the conditional SSH ingress rule.
package eks

import (
	"fmt"

	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

var clusterTemplate = compose.AttributeTemplate{
	Fields: []compose.Field{
		{Name: "Version", Default: "1.31"},
		{Name: "EndpointPublicAccess", Default: false},
	},
}

var nodeGroupTemplate = compose.AttributeTemplate{
	Fields: []compose.Field{
		{Name: "InstanceType", Default: "t3.medium"},
		{Name: "MinSize", Default: 1},
		{Name: "DesiredSize", Default: 2},
		{Name: "MaxSize", Default: 3},
	},
}

type Composer struct{}

func New() *Composer { return &Composer{} }

func (c *Composer) Name() string { return "eks" }

func (c *Composer) Compose(cfg *model.EnvironmentConfig, g *compose.Graph) error {
	k8s := cfg.Kubernetes
	if k8s == nil {
		return nil
	}

	name := cfg.Prefix() + "-eks"
	overrides := map[string]any{}
	if k8s.Version != "" {
		overrides["Version"] = k8s.Version
	}

	attrs, err := compose.Resolve("cluster/main", clusterTemplate, overrides,
		compose.WithName(name),
		compose.WithTags(cfg.Tags, k8s.Tags, name))
	if err != nil {
		return err
	}
	if err := g.Add(model.ResourceDescriptor{Kind: model.KindCluster, Key: "main", Attributes: attrs}); err != nil {
		return err
	}
	g.AddRef(
		model.RefSpec{SourceKind: model.KindCluster, SourceKey: "main", TargetPath: "VpcId", TargetKind: model.KindVPC, TargetKey: "main"},
		model.RefSpec{SourceKind: model.KindCluster, SourceKey: "main", TargetPath: "EncryptionKey", TargetKind: model.KindKey, TargetKey: "main"},
	)

	nodeGroups, err := compose.BuildEach(len(k8s.NodeGroups) > 0, model.SortedKeys(k8s.NodeGroups),
		func(i int, key string) (model.ResourceDescriptor, error) {
			return c.resolveNodeGroup(cfg, key, k8s.NodeGroups[key])
		})
	if err != nil {
		return err
	}
	if err := g.Add(nodeGroups...); err != nil {
		return err
	}
	for _, ng := range nodeGroups {
		g.AddRef(model.RefSpec{SourceKind: model.KindNodeGroup, SourceKey: ng.Key, TargetPath: "Cluster", TargetKind: model.KindCluster, TargetKey: "main", Required: true})
	}

	// One attachment per declared ARN, in the order the list declares them.
	attachments, err := compose.BuildEach(len(k8s.PolicyArns) > 0, k8s.PolicyArns,
		func(i int, arn string) (model.ResourceDescriptor, error) {
			attachAttrs, err := compose.Resolve(fmt.Sprintf("policyattachment/policy-%d", i), compose.AttributeTemplate{
				Fields: []compose.Field{
					{Name: "PolicyArn", Required: true},
				},
			}, map[string]any{"PolicyArn": arn})
			if err != nil {
				return model.ResourceDescriptor{}, err
			}
			return model.ResourceDescriptor{Kind: model.KindPolicyAttachment, Key: fmt.Sprintf("policy-%d", i), Attributes: attachAttrs}, nil
		})
	if err != nil {
		return err
	}
	if err := g.Add(attachments...); err != nil {
		return err
	}
	for _, attachment := range attachments {
		g.AddRef(model.RefSpec{SourceKind: model.KindPolicyAttachment, SourceKey: attachment.Key, TargetPath: "Cluster", TargetKind: model.KindCluster, TargetKey: "main", Required: true})
	}

	sshRules, err := compose.Build(k8s.RemoteAccessKey != "", func() (model.ResourceDescriptor, error) {
		sshAttrs, err := compose.Resolve("securitygrouprule/eks-ssh", compose.AttributeTemplate{
			Fields: []compose.Field{
				{Name: "Protocol", Default: "tcp"},
				{Name: "FromPort", Default: 22},
				{Name: "ToPort", Default: 22},
				{Name: "KeyName", Required: true},
			},
		}, map[string]any{"KeyName": k8s.RemoteAccessKey})
		if err != nil {
			return model.ResourceDescriptor{}, err
		}
		return model.ResourceDescriptor{Kind: model.KindSecurityGroupRule, Key: "eks-ssh", Attributes: sshAttrs}, nil
	})
	if err != nil {
		return err
	}
	if err := g.Add(sshRules...); err != nil {
		return err
	}
	if len(sshRules) > 0 {
		// Null when the environment has no network block.
		g.AddRef(model.RefSpec{SourceKind: model.KindSecurityGroupRule, SourceKey: "eks-ssh", TargetPath: "SecurityGroupId", TargetKind: model.KindSecurityGroup, TargetKey: "app"})
	}

	g.AddRule(nodeGroupSizingRule())

	return nil
}

func (c *Composer) resolveNodeGroup(cfg *model.EnvironmentConfig, key string, ng model.NodeGroupConfig) (model.ResourceDescriptor, error) {
	overrides := map[string]any{}
	if ng.InstanceType != "" {
		overrides["InstanceType"] = ng.InstanceType
	}
	if ng.MinSize > 0 {
		overrides["MinSize"] = ng.MinSize
	}
	if ng.DesiredSize > 0 {
		overrides["DesiredSize"] = ng.DesiredSize
	}
	if ng.MaxSize > 0 {
		overrides["MaxSize"] = ng.MaxSize
	}

	name := cfg.Prefix() + "-" + key
	attrs, err := compose.Resolve("nodegroup/"+key, nodeGroupTemplate, overrides,
		compose.WithTags(cfg.Tags, cfg.Kubernetes.Tags, name))
	if err != nil {
		return model.ResourceDescriptor{}, err
	}

	return model.ResourceDescriptor{Kind: model.KindNodeGroup, Key: key, Attributes: attrs}, nil
}

func nodeGroupSizingRule() compose.InvariantRule {
	return compose.InvariantRule{
		Name: "node-group-sizing",
		Check: func(g *compose.Graph) []model.Violation {
			var violations []model.Violation
			for _, ng := range g.OfKind(model.KindNodeGroup) {
				minSize, _ := ng.GetPropertyInt("MinSize")
				desired, _ := ng.GetPropertyInt("DesiredSize")
				maxSize, _ := ng.GetPropertyInt("MaxSize")
				if minSize > desired || desired > maxSize {
					violations = append(violations, model.Violation{
						Rule:       "node-group-sizing",
						Descriptor: ng.TupleKey(),
						Detail:     fmt.Sprintf("sizing must satisfy min <= desired <= max, got %d/%d/%d", minSize, desired, maxSize),
						Severity:   model.SeverityError,
					})
				}
			}
			return violations
		},
	}
}
