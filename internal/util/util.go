// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package util

import (
	"os"
	"path/filepath"
	"strings"
)

// EnsureFileFolderHierarchy creates the parent directories of a file path.
func EnsureFileFolderHierarchy(path string) error {
	return EnsureFolderHierarchy(filepath.Dir(path))
}

func EnsureFolderHierarchy(path string) error {
	return os.MkdirAll(path, 0755)
}

// ExpandHomePath resolves a leading ~ against the user's home directory,
// falling back to the working directory when the home cannot be determined.
func ExpandHomePath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("./", path[1:])
		}

		return filepath.Join(home, path[1:])
	}

	return path
}
