// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package network composes the VPC block: the VPC itself, one subnet per
// availability zone, the optional NAT gateway, and the security groups the
// other service blocks hang their rules off.
package network

import (
	"fmt"

	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

var vpcTemplate = compose.AttributeTemplate{
	Fields: []compose.Field{
		{Name: "CIDR", Required: true},
		{Name: "EnableDNSSupport", Default: true},
		{Name: "EnableDNSHostnames", Default: true},
	},
}

type Composer struct{}

func New() *Composer { return &Composer{} }

func (c *Composer) Name() string { return "network" }

func (c *Composer) Compose(cfg *model.EnvironmentConfig, g *compose.Graph) error {
	network := cfg.Network
	if network == nil {
		return nil
	}

	name := cfg.Prefix() + "-vpc"
	overrides := map[string]any{}
	if network.CIDR != "" {
		overrides["CIDR"] = network.CIDR
	}

	attrs, err := compose.Resolve("vpc/main", vpcTemplate, overrides,
		compose.WithName(name),
		compose.WithTags(cfg.Tags, network.Tags, name))
	if err != nil {
		return err
	}
	if err := g.Add(model.ResourceDescriptor{Kind: model.KindVPC, Key: "main", Attributes: attrs}); err != nil {
		return err
	}

	subnets, err := compose.BuildEach(len(network.Zones) > 0, network.Zones,
		func(i int, zone string) (model.ResourceDescriptor, error) {
			subnetOverrides := map[string]any{"Zone": zone}
			if i < len(network.SubnetCIDRs) {
				subnetOverrides["CidrBlock"] = network.SubnetCIDRs[i]
			}
			subnetName := name + "-" + zone
			subnetAttrs, err := compose.Resolve("subnet/"+zone, compose.AttributeTemplate{
				Fields: []compose.Field{
					{Name: "Zone", Required: true},
					{Name: "CidrBlock", Required: true},
					{Name: "MapPublicIP", Default: false},
				},
			}, subnetOverrides, compose.WithTags(cfg.Tags, network.Tags, subnetName))
			if err != nil {
				return model.ResourceDescriptor{}, err
			}
			return model.ResourceDescriptor{Kind: model.KindSubnet, Key: zone, Attributes: subnetAttrs}, nil
		})
	if err != nil {
		return err
	}
	if err := g.Add(subnets...); err != nil {
		return err
	}
	for _, subnet := range subnets {
		g.AddRef(model.RefSpec{SourceKind: model.KindSubnet, SourceKey: subnet.Key, TargetPath: "VpcId", TargetKind: model.KindVPC, TargetKey: "main", Required: true})
	}

	natGateways, err := compose.Build(network.NATGateway, func() (model.ResourceDescriptor, error) {
		natAttrs, err := compose.Resolve("natgateway/main", compose.AttributeTemplate{
			Fields: []compose.Field{
				{Name: "ConnectivityType", Default: "public"},
			},
		}, nil, compose.WithTags(cfg.Tags, network.Tags, name+"-nat"))
		if err != nil {
			return model.ResourceDescriptor{}, err
		}
		return model.ResourceDescriptor{Kind: model.KindNatGateway, Key: "main", Attributes: natAttrs}, nil
	})
	if err != nil {
		return err
	}
	if err := g.Add(natGateways...); err != nil {
		return err
	}
	if len(natGateways) > 0 {
		// Lands in the first subnet by lexicographic zone order.
		g.AddRef(model.RefSpec{SourceKind: model.KindNatGateway, SourceKey: "main", TargetPath: "SubnetId", TargetKind: model.KindSubnet, Required: true})
	}

	if err := c.composeSecurityGroups(cfg, g, name); err != nil {
		return err
	}

	g.AddRule(subnetCoverageRule(network))

	return nil
}

func (c *Composer) composeSecurityGroups(cfg *model.EnvironmentConfig, g *compose.Graph, name string) error {
	groups := []string{"app"}
	if cfg.LoadBalancer != nil {
		groups = append(groups, "alb")
	}

	for _, key := range groups {
		sgName := name + "-" + key
		attrs, err := compose.Resolve("securitygroup/"+key, compose.AttributeTemplate{
			Fields: []compose.Field{
				{Name: "Description", Default: "managed by composa"},
			},
		}, nil, compose.WithTags(cfg.Tags, cfg.Network.Tags, sgName))
		if err != nil {
			return err
		}
		if err := g.Add(model.ResourceDescriptor{Kind: model.KindSecurityGroup, Key: key, Attributes: attrs}); err != nil {
			return err
		}
		g.AddRef(model.RefSpec{SourceKind: model.KindSecurityGroup, SourceKey: key, TargetPath: "VpcId", TargetKind: model.KindVPC, TargetKey: "main", Required: true})
	}

	ingressRules, err := compose.Build(cfg.LoadBalancer != nil, func() (model.ResourceDescriptor, error) {
		attrs, err := compose.Resolve("securitygrouprule/app-from-alb", compose.AttributeTemplate{
			Fields: []compose.Field{
				{Name: "Protocol", Default: "tcp"},
				{Name: "FromPort", Default: 0},
				{Name: "ToPort", Default: 65535},
			},
		}, nil)
		if err != nil {
			return model.ResourceDescriptor{}, err
		}
		return model.ResourceDescriptor{Kind: model.KindSecurityGroupRule, Key: "app-from-alb", Attributes: attrs}, nil
	})
	if err != nil {
		return err
	}
	if err := g.Add(ingressRules...); err != nil {
		return err
	}
	if len(ingressRules) > 0 {
		g.AddRef(
			model.RefSpec{SourceKind: model.KindSecurityGroupRule, SourceKey: "app-from-alb", TargetPath: "SecurityGroupId", TargetKind: model.KindSecurityGroup, TargetKey: "app", Required: true},
			model.RefSpec{SourceKind: model.KindSecurityGroupRule, SourceKey: "app-from-alb", TargetPath: "SourceSecurityGroupId", TargetKind: model.KindSecurityGroup, TargetKey: "alb", Required: true},
		)
	}

	return nil
}

func subnetCoverageRule(network *model.NetworkConfig) compose.InvariantRule {
	return compose.InvariantRule{
		Name: "subnet-zone-coverage",
		Check: func(g *compose.Graph) []model.Violation {
			if len(network.Zones) == 0 || len(network.SubnetCIDRs) == len(network.Zones) {
				return nil
			}
			return []model.Violation{{
				Rule:     "subnet-zone-coverage",
				Detail:   fmt.Sprintf("%d subnet CIDRs declared for %d zones", len(network.SubnetCIDRs), len(network.Zones)),
				Severity: model.SeverityError,
			}}
		},
	}
}
