// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

type Tag struct {
	Key   string
	Value string
}

// FlexibleTags is a custom type to handle both slice and map JSON formats.
type FlexibleTags []Tag

func (t *FlexibleTags) UnmarshalJSON(data []byte) error {
	// Most resources model Tags as an array
	var tagsAsSlice []Tag
	if err := json.Unmarshal(data, &tagsAsSlice); err == nil {
		*t = tagsAsSlice
		return nil
	}

	// Some resources model Tags as a map
	var tagsAsMap map[string]string
	if err := json.Unmarshal(data, &tagsAsMap); err == nil {
		var tags []Tag
		for key, value := range tagsAsMap {
			tags = append(tags, Tag{Key: key, Value: value})
		}
		*t = tags
		return nil
	}

	return fmt.Errorf("tags field is neither a slice of objects nor a map")
}

// SortedKeys returns a map's keys in lexicographic order. Composers iterate
// keyed collections through this so descriptor order is a property of the
// configuration, not of map iteration.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TagsFromMap converts a tag map into a slice ordered lexicographically by
// key, so the same map always yields the same slice.
func TagsFromMap(m map[string]string) []Tag {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]Tag, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, Tag{Key: k, Value: m[k]})
	}
	return tags
}

// MergeTags merges base tags with override tags and injects the computed Name
// tag last. Merge order is deterministic: base first, then overrides
// (last-writer-wins on key collision, position of a replaced key is kept),
// then Name. An empty name leaves any existing Name tag untouched.
func MergeTags(base []Tag, overrides []Tag, name string) []Tag {
	merged := make([]Tag, 0, len(base)+len(overrides)+1)
	index := make(map[string]int, len(base)+len(overrides))

	upsert := func(tag Tag) {
		if i, ok := index[tag.Key]; ok {
			merged[i].Value = tag.Value
			return
		}
		index[tag.Key] = len(merged)
		merged = append(merged, tag)
	}

	for _, tag := range base {
		upsert(tag)
	}
	for _, tag := range overrides {
		upsert(tag)
	}

	if name != "" {
		// Name always wins and always comes last
		if i, ok := index["Name"]; ok {
			merged = append(merged[:i], merged[i+1:]...)
			for k, v := range index {
				if v > i {
					index[k] = v - 1
				}
			}
		}
		merged = append(merged, Tag{Key: "Name", Value: name})
	}

	return merged
}
