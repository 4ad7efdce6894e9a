// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compose

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/platform-engineering-labs/composa/pkg/model"
)

func listenerTemplate(key string) func() (model.ResourceDescriptor, error) {
	return func() (model.ResourceDescriptor, error) {
		return model.ResourceDescriptor{
			Kind:       model.KindListener,
			Key:        key,
			Attributes: json.RawMessage(`{}`),
		}, nil
	}
}

func TestBuild_DisabledFlagYieldsNothing(t *testing.T) {
	evaluated := false
	descriptors, err := Build(false, func() (model.ResourceDescriptor, error) {
		evaluated = true
		return model.ResourceDescriptor{}, nil
	})

	require.NoError(t, err)
	assert.Empty(t, descriptors)
	assert.False(t, evaluated)
}

func TestBuild_EnabledFlagYieldsExactlyOne(t *testing.T) {
	descriptors, err := Build(true, listenerTemplate("http"))

	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, "listener/http", descriptors[0].TupleKey())
}

func TestBuildEach_PreservesInputOrder(t *testing.T) {
	arns := []string{"arn:aws:iam::0:policy/z", "arn:aws:iam::0:policy/a", "arn:aws:iam::0:policy/m"}

	descriptors, err := BuildEach(true, arns, func(i int, arn string) (model.ResourceDescriptor, error) {
		return model.ResourceDescriptor{
			Kind:       model.KindPolicyAttachment,
			Key:        fmt.Sprintf("policy-%d", i),
			Attributes: json.RawMessage(fmt.Sprintf(`{"PolicyArn": %q}`, arn)),
		}, nil
	})

	require.NoError(t, err)
	require.Len(t, descriptors, 3)
	for i, arn := range arns {
		value, found := descriptors[i].GetProperty("PolicyArn")
		assert.True(t, found)
		assert.Equal(t, arn, value)
	}
}

func TestBuildEach_ReportsMissingAttributesOfEverySibling(t *testing.T) {
	groups := []string{"api", "web"}

	_, err := BuildEach(true, groups, func(i int, key string) (model.ResourceDescriptor, error) {
		return model.ResourceDescriptor{}, &InvalidAttributeError{
			Descriptor: "targetgroup/" + key,
			Missing:    []string{"Port"},
		}
	})

	require.Error(t, err)
	var invalid *InvalidAttributeError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), "targetgroup/api")
	assert.Contains(t, err.Error(), "targetgroup/web")
}

func TestBuildEach_StructuralErrorAbortsImmediately(t *testing.T) {
	evaluated := 0

	_, err := BuildEach(true, []string{"a", "b"}, func(i int, key string) (model.ResourceDescriptor, error) {
		evaluated++
		return model.ResourceDescriptor{}, fmt.Errorf("template for %s is broken", key)
	})

	require.Error(t, err)
	assert.Equal(t, 1, evaluated)

	var invalid *InvalidAttributeError
	assert.False(t, errors.As(err, &invalid))
}

func TestBuildEach_DisabledFlagYieldsNothingRegardlessOfItems(t *testing.T) {
	descriptors, err := BuildEach(false, []string{"a", "b"}, func(i int, s string) (model.ResourceDescriptor, error) {
		t.Fatal("template must not be evaluated for a disabled group")
		return model.ResourceDescriptor{}, nil
	})

	require.NoError(t, err)
	assert.Empty(t, descriptors)
}

func TestBuildExclusive_ExactlyOneGroupProduced(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		hasCertificate := rapid.Bool().Draw(rt, "hasCertificate")

		descriptors, err := BuildExclusive("certificate", hasCertificate, !hasCertificate,
			func() ([]model.ResourceDescriptor, error) {
				return Build(true, listenerTemplate("https"))
			},
			func() ([]model.ResourceDescriptor, error) {
				return Build(true, listenerTemplate("http"))
			})

		require.NoError(rt, err)
		assert.Len(rt, descriptors, 1)
	})
}

func TestBuildExclusive_BothGroupsIsAmbiguous(t *testing.T) {
	_, err := BuildExclusive("certificate", true, true, nil, nil)

	var ambiguous *AmbiguousCompositionError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "certificate", ambiguous.Partition)
}

func TestBuildExclusive_NeitherGroupIsAmbiguous(t *testing.T) {
	_, err := BuildExclusive("certificate", false, false, nil, nil)

	var ambiguous *AmbiguousCompositionError
	require.ErrorAs(t, err, &ambiguous)
}
