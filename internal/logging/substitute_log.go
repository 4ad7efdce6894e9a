// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package logging

import (
	"log/slog"
	"strings"
)

// slogWriter routes the standard library's log output into slog, mapping
// conventional level prefixes onto slog levels.
type slogWriter struct{}

func (w *slogWriter) Write(p []byte) (n int, err error) {
	msg := string(p)

	trim := func(prefix string) string {
		return strings.TrimLeft(strings.TrimPrefix(msg, prefix), ": ")
	}

	switch {
	case strings.HasPrefix(msg, "ERROR"):
		slog.Error(trim("ERROR"))
	case strings.HasPrefix(msg, "WARN"):
		slog.Warn(trim("WARN"))
	case strings.HasPrefix(msg, "INFO"):
		slog.Info(trim("INFO"))
	default:
		slog.Debug(msg)
	}

	return len(p), nil
}
