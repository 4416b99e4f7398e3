package rlog_test

import (
	"bytes"
	"testing"

	"github.com/lmachina/reachkit/internal/rlog"
	"github.com/stretchr/testify/require"
)

func TestDiscardIsNoop(t *testing.T) {
	var l rlog.Logger = rlog.Discard{}
	require.NotPanics(t, func() {
		l.Debug("x", nil)
		l.Info("x", map[string]any{"a": 1})
		l.Warn("x", nil)
		l.Error("x", nil)
	})
}

func TestNewWritesAboveLevel(t *testing.T) {
	var buf bytes.Buffer
	l := rlog.New(&buf, rlog.LevelInfo)
	l.Info("hello", map[string]any{"k": "v"})
	l.Debug("hidden", nil)
	out := buf.String()
	require.Contains(t, out, "hello")
	require.NotContains(t, out, "hidden")
}
