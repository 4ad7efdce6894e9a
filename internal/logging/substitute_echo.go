// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	glog "github.com/labstack/gommon/log"
)

// EchoLogger adapts slog to echo's Logger interface so the API server's
// framework output lands in the same handlers as everything else.
type EchoLogger struct {
	Logger *slog.Logger
}

func NewEchoLogger() *EchoLogger {
	return &EchoLogger{
		Logger: slog.Default(),
	}
}

func (l *EchoLogger) log(level slog.Level, i ...any) {
	l.Logger.Log(context.Background(), level, fmt.Sprint(i...))
}

func (l *EchoLogger) logf(level slog.Level, format string, args ...any) {
	l.Logger.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

func (l *EchoLogger) logj(level slog.Level, j glog.JSON) {
	l.Logger.Log(context.Background(), level, "json", "data", j)
}

func (l *EchoLogger) Output() io.Writer {
	return io.Discard
}

func (l *EchoLogger) SetOutput(w io.Writer) {
	// no-op, slog owns its output
}

func (l *EchoLogger) Prefix() string {
	return ""
}

func (l *EchoLogger) SetPrefix(p string) {
	// no-op, slog owns its prefix
}

func (l *EchoLogger) Level() glog.Lvl {
	return glog.DEBUG
}

func (l *EchoLogger) SetLevel(v glog.Lvl) {
}

func (l *EchoLogger) SetHeader(h string) {
	// no-op, slog owns its header
}

func (l *EchoLogger) Print(i ...any) { l.log(slog.LevelInfo, i...) }
func (l *EchoLogger) Printf(format string, args ...any) { l.logf(slog.LevelInfo, format, args...) }
func (l *EchoLogger) Printj(j glog.JSON) { l.logj(slog.LevelInfo, j) }

func (l *EchoLogger) Debug(i ...any) { l.log(slog.LevelDebug, i...) }
func (l *EchoLogger) Debugf(format string, args ...any) { l.logf(slog.LevelDebug, format, args...) }
func (l *EchoLogger) Debugj(j glog.JSON) { l.logj(slog.LevelDebug, j) }

func (l *EchoLogger) Info(i ...any) { l.log(slog.LevelInfo, i...) }
func (l *EchoLogger) Infof(format string, args ...any) { l.logf(slog.LevelInfo, format, args...) }
func (l *EchoLogger) Infoj(j glog.JSON) { l.logj(slog.LevelInfo, j) }

func (l *EchoLogger) Warn(i ...any) { l.log(slog.LevelWarn, i...) }
func (l *EchoLogger) Warnf(format string, args ...any) { l.logf(slog.LevelWarn, format, args...) }
func (l *EchoLogger) Warnj(j glog.JSON) { l.logj(slog.LevelWarn, j) }

func (l *EchoLogger) Error(i ...any) { l.log(slog.LevelError, i...) }
func (l *EchoLogger) Errorf(format string, args ...any) { l.logf(slog.LevelError, format, args...) }
func (l *EchoLogger) Errorj(j glog.JSON) { l.logj(slog.LevelError, j) }

func (l *EchoLogger) Fatal(i ...any) {
	l.log(slog.LevelError, i...)
	os.Exit(1)
}

func (l *EchoLogger) Fatalf(format string, args ...any) {
	l.logf(slog.LevelError, format, args...)
	os.Exit(1)
}

func (l *EchoLogger) Fatalj(j glog.JSON) {
	l.logj(slog.LevelError, j)
	os.Exit(1)
}

func (l *EchoLogger) Panic(i ...any) {
	s := fmt.Sprint(i...)
	l.Logger.Error(s)
	panic(s)
}

func (l *EchoLogger) Panicf(format string, args ...any) {
	s := fmt.Sprintf(format, args...)
	l.Logger.Error(s)
	panic(s)
}

func (l *EchoLogger) Panicj(j glog.JSON) {
	l.logj(slog.LevelError, j)
	panic(j)
}
