// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package model

import (
	"fmt"
)

type APIError string

const (
	InvalidAttributes    APIError = "InvalidAttributes"
	AmbiguousComposition APIError = "AmbiguousComposition"
	DanglingReference    APIError = "DanglingReference"
	InvalidConfig        APIError = "InvalidConfig"
)

type ErrorResponse[T any] struct {
	ErrorType APIError `json:"error"`
	Data      T        `json:"data"`
}

// Error allows ErrorResponse satisfy the error interface
func (e ErrorResponse[T]) Error() string {
	return string(e.ErrorType)
}

type MissingAttributes struct {
	Descriptor string   `json:"Descriptor"`
	Missing    []string `json:"Missing"`
}

type InvalidAttributesError struct {
	Descriptors []MissingAttributes `json:"Descriptors"`
}

func (e InvalidAttributesError) Error() string {
	return fmt.Sprintf("composition rejected: %d descriptors have missing required attributes", len(e.Descriptors))
}

type AmbiguousCompositionError struct {
	Partition string `json:"Partition"`
	Detail    string `json:"Detail"`
}

func (e AmbiguousCompositionError) Error() string {
	return fmt.Sprintf("composition rejected: partition %s is ambiguous: %s", e.Partition, e.Detail)
}

type DanglingReferenceError struct {
	Reference string `json:"Reference"`
}

func (e DanglingReferenceError) Error() string {
	return fmt.Sprintf("composition rejected: required reference %s has no target", e.Reference)
}

type InvalidConfigError struct {
	Reason string `json:"Reason"`
}

func (e InvalidConfigError) Error() string {
	return fmt.Sprintf("the provided configuration is invalid: %s", e.Reason)
}
