// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package kms composes the encryption block: the key and its conditional
// alias. When the alias is disabled every reference to it resolves to the
// null sentinel, so dependent outputs degrade to null instead of failing.
package kms

import (
	"fmt"

	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

var keyTemplate = compose.AttributeTemplate{
	Fields: []compose.Field{
		{Name: "DeletionWindowDays", Default: 30},
		{Name: "RotationEnabled", Default: true},
		{Name: "Description", Required: true},
	},
}

type Composer struct{}

func New() *Composer { return &Composer{} }

func (c *Composer) Name() string { return "kms" }

func (c *Composer) Compose(cfg *model.EnvironmentConfig, g *compose.Graph) error {
	encryption := cfg.Encryption
	if encryption == nil {
		return nil
	}

	overrides := map[string]any{
		"Description": fmt.Sprintf("%s encryption key", cfg.Prefix()),
	}
	if encryption.DeletionWindowDays > 0 {
		overrides["DeletionWindowDays"] = encryption.DeletionWindowDays
	}
	if encryption.RotationEnabled != nil {
		overrides["RotationEnabled"] = *encryption.RotationEnabled
	}

	name := cfg.Prefix() + "-key"
	attrs, err := compose.Resolve("key/main", keyTemplate, overrides,
		compose.WithTags(cfg.Tags, encryption.Tags, name))
	if err != nil {
		return err
	}
	if err := g.Add(model.ResourceDescriptor{Kind: model.KindKey, Key: "main", Attributes: attrs}); err != nil {
		return err
	}

	aliases, err := compose.Build(encryption.Alias != "", func() (model.ResourceDescriptor, error) {
		aliasAttrs, err := compose.Resolve("alias/main", compose.AttributeTemplate{
			Fields: []compose.Field{
				{Name: "AliasName", Required: true},
			},
		}, map[string]any{"AliasName": "alias/" + encryption.Alias})
		if err != nil {
			return model.ResourceDescriptor{}, err
		}
		return model.ResourceDescriptor{Kind: model.KindAlias, Key: "main", Attributes: aliasAttrs}, nil
	})
	if err != nil {
		return err
	}
	if err := g.Add(aliases...); err != nil {
		return err
	}
	if len(aliases) > 0 {
		g.AddRef(model.RefSpec{SourceKind: model.KindAlias, SourceKey: "main", TargetPath: "TargetKey", TargetKind: model.KindKey, TargetKey: "main", Required: true})
	}

	g.AddRule(deletionWindowRule())

	return nil
}

func deletionWindowRule() compose.InvariantRule {
	return compose.InvariantRule{
		Name: "deletion-window-range",
		Check: func(g *compose.Graph) []model.Violation {
			var violations []model.Violation
			for _, key := range g.OfKind(model.KindKey) {
				window, _ := key.GetPropertyInt("DeletionWindowDays")
				if window < 7 || window > 30 {
					violations = append(violations, model.Violation{
						Rule:       "deletion-window-range",
						Descriptor: key.TupleKey(),
						Detail:     fmt.Sprintf("deletion window must be within [7,30] days, got %d", window),
						Severity:   model.SeverityError,
					})
				}
			}
			return violations
		},
	}
}
