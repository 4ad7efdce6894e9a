// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compose

import (
	"fmt"
	"strings"

	"dario.cat/mergo"
	json "github.com/goccy/go-json"

	"github.com/platform-engineering-labs/composa/pkg/model"
)

// MaxNameLength is the platform-imposed limit derived resource names are
// truncated to.
const MaxNameLength = 32

// Field declares one attribute of a template: its name, whether a value is
// mandatory, and its table-driven default. A nil Default means the field has
// no default; if it is also Required, an override must supply it.
type Field struct {
	Name     string
	Required bool
	Default  any
}

// AttributeTemplate is the per-kind field table attribute resolution starts
// from. Defaults are explicit here, never inferred.
type AttributeTemplate struct {
	Fields []Field
}

// ComputedFn derives attributes after defaults and overrides have been
// applied, e.g. name truncation or the tag merge.
type ComputedFn func(attrs map[string]any)

// Resolve produces the attribute document for one descriptor. Order is fixed:
// per-field defaults, then caller overrides (override wins), then computed
// derivations. Required fields that end up absent, null, or empty-string are
// all reported together in one InvalidAttributeError.
//
// Resolve is pure: the same inputs always yield the same document.
func Resolve(descriptor string, tpl AttributeTemplate, overrides map[string]any, computed ...ComputedFn) (json.RawMessage, error) {
	attrs := make(map[string]any, len(tpl.Fields))
	for _, f := range tpl.Fields {
		if f.Default != nil {
			attrs[f.Name] = f.Default
		}
	}

	if len(overrides) > 0 {
		if err := mergo.Merge(&attrs, overrides, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging overrides for %s: %w", descriptor, err)
		}
	}

	for _, fn := range computed {
		fn(attrs)
	}

	var missing []string
	for _, f := range tpl.Fields {
		if !f.Required {
			continue
		}
		value, ok := attrs[f.Name]
		if !ok || value == nil {
			missing = append(missing, f.Name)
			continue
		}
		if s, isString := value.(string); isString && s == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &InvalidAttributeError{Descriptor: descriptor, Missing: missing}
	}

	serialized, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("serializing attributes for %s: %w", descriptor, err)
	}

	return serialized, nil
}

// TruncateName cuts a derived name down to max characters and trims any
// separator the cut left trailing.
func TruncateName(name string, max int) string {
	if len(name) > max {
		name = name[:max]
	}
	return strings.TrimRight(name, "-")
}

// WithName injects the truncated derived name.
func WithName(name string) ComputedFn {
	return func(attrs map[string]any) {
		attrs["Name"] = TruncateName(name, MaxNameLength)
	}
}

// WithTags injects the deterministic tag merge: base tags, then overrides,
// then the computed Name tag last.
func WithTags(base map[string]string, overrides map[string]string, name string) ComputedFn {
	return func(attrs map[string]any) {
		attrs["Tags"] = model.MergeTags(model.TagsFromMap(base), model.TagsFromMap(overrides), TruncateName(name, MaxNameLength))
	}
}
