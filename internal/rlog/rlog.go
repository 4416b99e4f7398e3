// Package rlog provides the structured logging interface used across
// reachkit's engines and CLI.
//
// The interface is a deliberately small subset of a structured logger
// (Debug/Info/Warn/Error, each with a message and a field map), so engine
// code never imports zerolog directly; only the zerolog-backed
// implementation in this package does. Discard is a no-op Logger, used by tests
// and by engines that are handed a nil Logger.
package rlog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the logging interface used throughout reachkit.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// Discard implements Logger by doing nothing. It is the default Logger for
// engines constructed without an explicit logger, and for tests.
type Discard struct{}

var _ Logger = Discard{}

func (Discard) Debug(string, map[string]any) {}
func (Discard) Info(string, map[string]any)  {}
func (Discard) Warn(string, map[string]any)  {}
func (Discard) Error(string, map[string]any) {}

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	z zerolog.Logger
}

var _ Logger = (*zerologLogger)(nil)

// Level selects the minimum severity emitted by New.
type Level int

const (
	LevelWarn Level = iota
	LevelInfo
	LevelDebug
)

// New constructs a Logger that writes human-readable lines to w at the given
// level. A nil w defaults to os.Stderr.
func New(w io.Writer, level Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	switch level {
	case LevelDebug:
		zl = zl.Level(zerolog.DebugLevel)
	case LevelInfo:
		zl = zl.Level(zerolog.InfoLevel)
	default:
		zl = zl.Level(zerolog.WarnLevel)
	}
	return &zerologLogger{z: zl}
}

func (l *zerologLogger) with(ev *zerolog.Event, fields map[string]any) *zerolog.Event {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	return ev
}

func (l *zerologLogger) Debug(msg string, fields map[string]any) {
	l.with(l.z.Debug(), fields).Msg(msg)
}

func (l *zerologLogger) Info(msg string, fields map[string]any) {
	l.with(l.z.Info(), fields).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields map[string]any) {
	l.with(l.z.Warn(), fields).Msg(msg)
}

func (l *zerologLogger) Error(msg string, fields map[string]any) {
	l.with(l.z.Error(), fields).Msg(msg)
}
