// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package waf composes the web ACL, its managed rule set, and the conditional
// association with the load balancer.
package waf

import (
	"fmt"

	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

var webACLTemplate = compose.AttributeTemplate{
	Fields: []compose.Field{
		{Name: "Scope", Default: "REGIONAL"},
		{Name: "DefaultAction", Default: "allow"},
		{Name: "RateLimit", Default: 2000},
	},
}

type Composer struct{}

func New() *Composer { return &Composer{} }

func (c *Composer) Name() string { return "waf" }

func (c *Composer) Compose(cfg *model.EnvironmentConfig, g *compose.Graph) error {
	fw := cfg.Firewall
	if fw == nil {
		return nil
	}

	name := cfg.Prefix() + "-waf"

	overrides := map[string]any{}
	if fw.RateLimit > 0 {
		overrides["RateLimit"] = fw.RateLimit
	}

	attrs, err := compose.Resolve("webacl/main", webACLTemplate, overrides,
		compose.WithName(name),
		compose.WithTags(cfg.Tags, fw.Tags, name))
	if err != nil {
		return err
	}
	if err := g.Add(model.ResourceDescriptor{Kind: model.KindWebACL, Key: "main", Attributes: attrs}); err != nil {
		return err
	}

	// Managed rules keep their configured order; priority follows position.
	rules, err := compose.BuildEach(len(fw.ManagedRules) > 0, fw.ManagedRules, func(i int, rule string) (model.ResourceDescriptor, error) {
		ruleAttrs, err := compose.Resolve(fmt.Sprintf("webaclrule/%s", rule), compose.AttributeTemplate{
			Fields: []compose.Field{
				{Name: "RuleName", Required: true},
				{Name: "Priority", Required: true},
				{Name: "VendorName", Default: "AWS"},
				{Name: "OverrideAction", Default: "none"},
			},
		}, map[string]any{
			"RuleName": rule,
			"Priority": i + 1,
		})
		if err != nil {
			return model.ResourceDescriptor{}, err
		}
		return model.ResourceDescriptor{Kind: model.KindWebACLRule, Key: rule, Attributes: ruleAttrs}, nil
	})
	if err != nil {
		return err
	}
	if err := g.Add(rules...); err != nil {
		return err
	}
	for _, rule := range rules {
		g.AddRef(model.RefSpec{SourceKind: model.KindWebACLRule, SourceKey: rule.Key, TargetPath: "WebACL", TargetKind: model.KindWebACL, TargetKey: "main", Required: true})
	}

	associations, err := compose.Build(fw.AssociateLoadBalancer, func() (model.ResourceDescriptor, error) {
		assocAttrs, err := compose.Resolve("webaclassociation/alb", compose.AttributeTemplate{}, nil)
		if err != nil {
			return model.ResourceDescriptor{}, err
		}
		return model.ResourceDescriptor{Kind: model.KindWebACLAssociation, Key: "alb", Attributes: assocAttrs}, nil
	})
	if err != nil {
		return err
	}
	if err := g.Add(associations...); err != nil {
		return err
	}
	if len(associations) > 0 {
		g.AddRef(
			model.RefSpec{SourceKind: model.KindWebACLAssociation, SourceKey: "alb", TargetPath: "WebACLArn", TargetKind: model.KindWebACL, TargetKey: "main", Required: true},
			// Resolves to null when the load balancer block is disabled.
			model.RefSpec{SourceKind: model.KindWebACLAssociation, SourceKey: "alb", TargetPath: "ResourceArn", TargetKind: model.KindLoadBalancer, TargetKey: "main"},
		)
	}

	return nil
}
