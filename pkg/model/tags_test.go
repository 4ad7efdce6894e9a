// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeTags_OverrideWinsAndNameComesLast(t *testing.T) {
	base := []Tag{{Key: "Env", Value: "test"}}
	overrides := []Tag{{Key: "Env", Value: "prod"}, {Key: "Team", Value: "x"}}

	merged := MergeTags(base, overrides, "acme-prod-alb")

	assert.Equal(t, []Tag{
		{Key: "Env", Value: "prod"},
		{Key: "Team", Value: "x"},
		{Key: "Name", Value: "acme-prod-alb"},
	}, merged)
}

func TestMergeTags_NameFromOverridesIsReplacedAndMovedLast(t *testing.T) {
	base := []Tag{{Key: "Name", Value: "stale"}, {Key: "Env", Value: "test"}}

	merged := MergeTags(base, nil, "fresh")

	assert.Equal(t, []Tag{
		{Key: "Env", Value: "test"},
		{Key: "Name", Value: "fresh"},
	}, merged)
}

func TestMergeTags_EmptyNameLeavesExistingNameUntouched(t *testing.T) {
	base := []Tag{{Key: "Name", Value: "explicit"}}

	merged := MergeTags(base, nil, "")

	assert.Equal(t, []Tag{{Key: "Name", Value: "explicit"}}, merged)
}

func TestMergeTags_IsDeterministicAcrossCalls(t *testing.T) {
	base := TagsFromMap(map[string]string{"B": "2", "A": "1", "C": "3"})
	overrides := TagsFromMap(map[string]string{"C": "30", "D": "4"})

	first := MergeTags(base, overrides, "n")
	second := MergeTags(base, overrides, "n")

	assert.Equal(t, first, second)
	assert.Equal(t, []Tag{
		{Key: "A", Value: "1"},
		{Key: "B", Value: "2"},
		{Key: "C", Value: "30"},
		{Key: "D", Value: "4"},
		{Key: "Name", Value: "n"},
	}, first)
}

func TestTagsFromMap_OrdersKeysLexicographically(t *testing.T) {
	tags := TagsFromMap(map[string]string{"Zulu": "z", "Alpha": "a", "Mike": "m"})

	assert.Equal(t, []Tag{
		{Key: "Alpha", Value: "a"},
		{Key: "Mike", Value: "m"},
		{Key: "Zulu", Value: "z"},
	}, tags)
}

func TestFlexibleTags_UnmarshalsSliceForm(t *testing.T) {
	var tags FlexibleTags
	err := json.Unmarshal([]byte(`[{"Key": "Name", "Value": "MyResource"}]`), &tags)

	assert.NoError(t, err)
	assert.Equal(t, FlexibleTags{{Key: "Name", Value: "MyResource"}}, tags)
}

func TestFlexibleTags_UnmarshalsMapForm(t *testing.T) {
	var tags FlexibleTags
	err := json.Unmarshal([]byte(`{"Name": "MyResource", "Environment": "Production"}`), &tags)

	assert.NoError(t, err)
	assert.Len(t, tags, 2)
	assert.Contains(t, tags, Tag{Key: "Name", Value: "MyResource"})
	assert.Contains(t, tags, Tag{Key: "Environment", Value: "Production"})
}
