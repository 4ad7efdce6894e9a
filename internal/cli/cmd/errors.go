// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cmd

import "fmt"

// FlagError marks a problem with the command line itself: a bad flag value,
// a missing argument. Returning one makes the CLI print the command's usage
// next to the message.
//
// Reserve it for the validate*Options functions. Runtime failures (API
// errors, file errors) are not flag errors and must not trigger usage
// output.
type FlagError struct {
	Err error
}

func (e *FlagError) Error() string {
	return e.Err.Error()
}

func (e *FlagError) Unwrap() error {
	return e.Err
}

// FlagErrorf creates a new FlagError with a formatted message.
func FlagErrorf(format string, args ...interface{}) error {
	return &FlagError{Err: fmt.Errorf(format, args...)}
}

// FlagErrorWrap wraps an existing error as a FlagError.
func FlagErrorWrap(err error) error {
	if err == nil {
		return nil
	}
	return &FlagError{Err: err}
}
