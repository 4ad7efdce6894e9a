// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package alb composes the load balancer block: the balancer itself, its
// target groups, and the listener pair whose shape is driven entirely by
// certificate presence.
package alb

import (
	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

var loadBalancerTemplate = compose.AttributeTemplate{
	Fields: []compose.Field{
		{Name: "Type", Default: "application"},
		{Name: "Internal", Default: false},
		{Name: "IdleTimeout", Default: 60},
	},
}

var targetGroupTemplate = compose.AttributeTemplate{
	Fields: []compose.Field{
		{Name: "Port", Required: true},
		{Name: "Protocol", Default: "HTTP"},
		{Name: "HealthCheckInterval", Default: 30},
		{Name: "HealthCheckPath", Default: "/"},
	},
}

var httpsListenerTemplate = compose.AttributeTemplate{
	Fields: []compose.Field{
		{Name: "Port", Default: 443},
		{Name: "Protocol", Default: "HTTPS"},
		{Name: "SSLPolicy", Default: "ELBSecurityPolicy-TLS13-1-2-2021-06"},
		{Name: "CertificateArn", Required: true},
	},
}

type Composer struct{}

func New() *Composer { return &Composer{} }

func (c *Composer) Name() string { return "alb" }

func (c *Composer) Compose(cfg *model.EnvironmentConfig, g *compose.Graph) error {
	lb := cfg.LoadBalancer
	if lb == nil {
		return nil
	}

	name := cfg.Prefix() + "-alb"

	overrides := map[string]any{}
	if lb.Internal {
		overrides["Internal"] = true
	}
	if lb.IdleTimeout > 0 {
		overrides["IdleTimeout"] = lb.IdleTimeout
	}

	attrs, err := compose.Resolve("loadbalancer/main", loadBalancerTemplate, overrides,
		compose.WithName(name),
		compose.WithTags(cfg.Tags, lb.Tags, name))
	if err != nil {
		return err
	}
	if err := g.Add(model.ResourceDescriptor{Kind: model.KindLoadBalancer, Key: "main", Attributes: attrs}); err != nil {
		return err
	}
	g.AddRef(
		model.RefSpec{SourceKind: model.KindLoadBalancer, SourceKey: "main", TargetPath: "VpcId", TargetKind: model.KindVPC, TargetKey: "main"},
		model.RefSpec{SourceKind: model.KindLoadBalancer, SourceKey: "main", TargetPath: "SecurityGroup", TargetKind: model.KindSecurityGroup, TargetKey: "alb"},
	)

	targetGroups, err := compose.BuildEach(len(lb.TargetGroups) > 0, model.SortedKeys(lb.TargetGroups),
		func(i int, key string) (model.ResourceDescriptor, error) {
			return c.resolveTargetGroup(cfg, key, lb.TargetGroups[key])
		})
	if err != nil {
		return err
	}
	if err := g.Add(targetGroups...); err != nil {
		return err
	}
	for _, tg := range targetGroups {
		g.AddRef(model.RefSpec{SourceKind: model.KindTargetGroup, SourceKey: tg.Key, TargetPath: "VpcId", TargetKind: model.KindVPC, TargetKey: "main"})
	}

	hasCertificate := lb.CertificateArn != ""
	listeners, err := compose.BuildExclusive("certificate", hasCertificate, !hasCertificate,
		func() ([]model.ResourceDescriptor, error) {
			return c.httpsListenerPair(cfg, lb)
		},
		func() ([]model.ResourceDescriptor, error) {
			return c.plainHTTPListener(cfg)
		})
	if err != nil {
		return err
	}
	if err := g.Add(listeners...); err != nil {
		return err
	}

	// The forward listener's default action must land on a target group.
	forwardKey := "http"
	if hasCertificate {
		forwardKey = "https"
	}
	g.AddRef(model.RefSpec{
		SourceKind: model.KindListener, SourceKey: forwardKey,
		TargetPath: "DefaultAction.TargetGroup",
		TargetKind: model.KindTargetGroup, TargetKey: lb.Primary,
		Required: true,
	})
	for _, listener := range listeners {
		g.AddRef(model.RefSpec{SourceKind: model.KindListener, SourceKey: listener.Key, TargetPath: "LoadBalancer", TargetKind: model.KindLoadBalancer, TargetKey: "main", Required: true})
	}

	g.AddRule(forwardTargetsRule(), implicitPrimaryRule(lb))

	return nil
}

func (c *Composer) resolveTargetGroup(cfg *model.EnvironmentConfig, key string, tg model.TargetGroupConfig) (model.ResourceDescriptor, error) {
	overrides := map[string]any{}
	if tg.Port > 0 {
		overrides["Port"] = tg.Port
	}
	if tg.Protocol != "" {
		overrides["Protocol"] = tg.Protocol
	}
	if tg.HealthCheckInterval > 0 {
		overrides["HealthCheckInterval"] = tg.HealthCheckInterval
	}
	if tg.HealthCheckPath != "" {
		overrides["HealthCheckPath"] = tg.HealthCheckPath
	}

	name := cfg.Prefix() + "-" + key
	attrs, err := compose.Resolve("targetgroup/"+key, targetGroupTemplate, overrides,
		compose.WithName(name),
		compose.WithTags(cfg.Tags, cfg.LoadBalancer.Tags, name))
	if err != nil {
		return model.ResourceDescriptor{}, err
	}

	return model.ResourceDescriptor{Kind: model.KindTargetGroup, Key: key, Attributes: attrs}, nil
}

// httpsListenerPair yields the certificate-present group: a port-80 redirect
// to 443 and the HTTPS listener carrying the certificate.
func (c *Composer) httpsListenerPair(cfg *model.EnvironmentConfig, lb *model.LoadBalancerConfig) ([]model.ResourceDescriptor, error) {
	redirectAttrs, err := compose.Resolve("listener/http", compose.AttributeTemplate{
		Fields: []compose.Field{
			{Name: "Port", Default: 80},
			{Name: "Protocol", Default: "HTTP"},
		},
	}, map[string]any{
		"DefaultAction": map[string]any{
			"Type":         "redirect",
			"RedirectPort": 443,
			"StatusCode":   "HTTP_301",
		},
	})
	if err != nil {
		return nil, err
	}

	httpsAttrs, err := compose.Resolve("listener/https", httpsListenerTemplate, map[string]any{
		"CertificateArn": lb.CertificateArn,
		"DefaultAction":  map[string]any{"Type": "forward"},
	})
	if err != nil {
		return nil, err
	}

	return []model.ResourceDescriptor{
		{Kind: model.KindListener, Key: "http", Attributes: redirectAttrs},
		{Kind: model.KindListener, Key: "https", Attributes: httpsAttrs},
	}, nil
}

// plainHTTPListener yields the certificate-absent group: a single port-80
// forward listener.
func (c *Composer) plainHTTPListener(cfg *model.EnvironmentConfig) ([]model.ResourceDescriptor, error) {
	attrs, err := compose.Resolve("listener/http", compose.AttributeTemplate{
		Fields: []compose.Field{
			{Name: "Port", Default: 80},
			{Name: "Protocol", Default: "HTTP"},
		},
	}, map[string]any{
		"DefaultAction": map[string]any{"Type": "forward"},
	})
	if err != nil {
		return nil, err
	}

	return []model.ResourceDescriptor{
		{Kind: model.KindListener, Key: "http", Attributes: attrs},
	}, nil
}

func forwardTargetsRule() compose.InvariantRule {
	return compose.InvariantRule{
		Name: "listener-forward-targets",
		Check: func(g *compose.Graph) []model.Violation {
			var violations []model.Violation
			for _, listener := range g.OfKind(model.KindListener) {
				action, _ := listener.GetProperty("DefaultAction.Type")
				if action == "forward" && len(g.OfKind(model.KindTargetGroup)) == 0 {
					violations = append(violations, model.Violation{
						Rule:       "listener-forward-targets",
						Descriptor: listener.TupleKey(),
						Detail:     "at least one target group is required when a listener forwards",
						Severity:   model.SeverityError,
					})
				}
			}
			return violations
		},
	}
}

// implicitPrimaryRule flags the silent default: when more than one target
// group exists and none is named primary, selection falls back to
// lexicographic key order.
func implicitPrimaryRule(lb *model.LoadBalancerConfig) compose.InvariantRule {
	return compose.InvariantRule{
		Name: "implicit-primary-target-group",
		Check: func(g *compose.Graph) []model.Violation {
			if lb.Primary != "" || len(lb.TargetGroups) <= 1 {
				return nil
			}
			first, _ := g.FirstOf(model.KindTargetGroup)
			return []model.Violation{{
				Rule:       "implicit-primary-target-group",
				Descriptor: first.TupleKey(),
				Detail:     "no primary target group named; defaulting to first key in lexicographic order",
				Severity:   model.SeverityAdvisory,
			}}
		},
	}
}
