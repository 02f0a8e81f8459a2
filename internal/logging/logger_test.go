package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	prev := current()
	Use(zap.New(core))
	t.Cleanup(func() { Use(prev) })
	return logs
}

func TestLevelsAndFields(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	Debug("hidden", nil)
	Info("room created", Fields{"room_id": "r1"})
	Warn("odd", Fields{"count": 2})
	Error("failed", errors.New("boom"), Fields{"user_id": "u"})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "room created", entries[0].Message)
	assert.Equal(t, "r1", entries[0].ContextMap()["room_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
	assert.Equal(t, "u", entries[2].ContextMap()["user_id"])
}

func TestDebugWhenEnabled(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)
	Debug("visible", Fields{"attempt": 1})
	require.Equal(t, 1, logs.Len())
	assert.EqualValues(t, 1, logs.All()[0].ContextMap()["attempt"])
}

func TestUseIgnoresNil(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)
	Use(nil)
	Info("still here", nil)
	assert.Equal(t, 1, logs.Len())
}
