// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"pgregory.net/rapid"

	"github.com/platform-engineering-labs/composa/pkg/model"
)

var targetGroupTemplate = AttributeTemplate{
	Fields: []Field{
		{Name: "Port", Required: true},
		{Name: "Protocol", Default: "HTTP"},
		{Name: "HealthCheckInterval", Default: 30},
		{Name: "HealthCheckPath", Default: "/"},
	},
}

func TestResolve_AppliesDefaultsThenOverrides(t *testing.T) {
	attrs, err := Resolve("targetgroup/app", targetGroupTemplate, map[string]any{
		"Port":     8080,
		"Protocol": "HTTPS",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(8080), gjson.GetBytes(attrs, "Port").Int())
	assert.Equal(t, "HTTPS", gjson.GetBytes(attrs, "Protocol").String())
	assert.Equal(t, int64(30), gjson.GetBytes(attrs, "HealthCheckInterval").Int())
	assert.Equal(t, "/", gjson.GetBytes(attrs, "HealthCheckPath").String())
}

func TestResolve_CollectsAllMissingRequiredFields(t *testing.T) {
	tpl := AttributeTemplate{
		Fields: []Field{
			{Name: "CIDR", Required: true},
			{Name: "Zone", Required: true},
			{Name: "Optional"},
		},
	}

	_, err := Resolve("subnet/a", tpl, nil)

	var invalid *InvalidAttributeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "subnet/a", invalid.Descriptor)
	assert.Equal(t, []string{"CIDR", "Zone"}, invalid.Missing)
}

func TestResolve_EmptyStringCountsAsMissing(t *testing.T) {
	tpl := AttributeTemplate{Fields: []Field{{Name: "CIDR", Required: true}}}

	_, err := Resolve("vpc/main", tpl, map[string]any{"CIDR": ""})

	var invalid *InvalidAttributeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"CIDR"}, invalid.Missing)
}

func TestResolve_ComputedRunsAfterOverrides(t *testing.T) {
	attrs, err := Resolve("loadbalancer/main", AttributeTemplate{},
		map[string]any{"Name": "overridden"},
		WithName("acme-prod-alb"))

	require.NoError(t, err)
	assert.Equal(t, "acme-prod-alb", gjson.GetBytes(attrs, "Name").String())
}

func TestResolve_TagMergeInjectsNameLast(t *testing.T) {
	attrs, err := Resolve("loadbalancer/main", AttributeTemplate{}, nil,
		WithTags(map[string]string{"Env": "test"}, map[string]string{"Env": "prod", "Team": "x"}, "acme-prod-alb"))

	require.NoError(t, err)
	tags := gjson.GetBytes(attrs, "Tags").Array()
	require.Len(t, tags, 3)
	assert.Equal(t, "prod", tags[0].Get("Value").String())
	assert.Equal(t, "x", tags[1].Get("Value").String())
	assert.Equal(t, "Name", tags[2].Get("Key").String())
	assert.Equal(t, "acme-prod-alb", tags[2].Get("Value").String())
}

func TestResolve_IsIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		port := rapid.IntRange(1, 65535).Draw(rt, "port")
		proto := rapid.SampledFrom([]string{"HTTP", "HTTPS", "TCP"}).Draw(rt, "proto")
		overrides := map[string]any{"Port": port, "Protocol": proto}

		first, err := Resolve("targetgroup/app", targetGroupTemplate, overrides)
		require.NoError(rt, err)
		second, err := Resolve("targetgroup/app", targetGroupTemplate, overrides)
		require.NoError(rt, err)

		assert.Equal(rt, first, second)
	})
}

func TestTruncateName_TrimsTrailingSeparator(t *testing.T) {
	// 31 chars + "-suffix" forces the cut right after the separator
	name := "a-very-long-project-environment-suffix"

	truncated := TruncateName(name, MaxNameLength)

	assert.LessOrEqual(t, len(truncated), MaxNameLength)
	assert.Equal(t, "a-very-long-project-environment", truncated)
}

func TestTruncateName_LeavesShortNamesAlone(t *testing.T) {
	assert.Equal(t, "short", TruncateName("short", MaxNameLength))
}

func TestMergeTagsProperty_NameAlwaysPresentAndLast(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := rapid.MapOf(rapid.StringMatching(`[A-Z][a-z]{1,8}`), rapid.StringMatching(`[a-z]{1,8}`)).Draw(rt, "base")
		overrides := rapid.MapOf(rapid.StringMatching(`[A-Z][a-z]{1,8}`), rapid.StringMatching(`[a-z]{1,8}`)).Draw(rt, "overrides")

		merged := model.MergeTags(model.TagsFromMap(base), model.TagsFromMap(overrides), "computed")

		require.NotEmpty(rt, merged)
		assert.Equal(rt, model.Tag{Key: "Name", Value: "computed"}, merged[len(merged)-1])
		for key, value := range overrides {
			if key == "Name" {
				continue
			}
			assert.Contains(rt, merged, model.Tag{Key: key, Value: value})
		}
	})
}
