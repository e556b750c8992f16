package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestErrorPrependsErrField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	Error("refresh failed", errors.New("boom"), "source", "work")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "refresh failed", entries[0].Message)
	assert.Equal(t, "boom", fields["err"])
	assert.Equal(t, "work", fields["source"])
}

func TestInfoKeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	Debug("hidden")
	Info("event added", "id", "event-1", "day", "2026-10-15")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "event-1", logs.All()[0].ContextMap()["id"])
}
