package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"":        LevelInfo,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelNone,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{zapLogger: zap.New(core), level: LevelDebug}

	l.Named("mirror").With(String("set", "default")).Info("mirrored",
		Int("agents", 2),
		Bool("sticky", true),
		Strings("actions", []string{"left", "right"}),
		Error(errors.New("boom")),
		Error(nil),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "mirrored", entry.Message)
	assert.Equal(t, "mirror", entry.LoggerName)

	ctx := entry.ContextMap()
	assert.Equal(t, "default", ctx["set"])
	assert.Equal(t, int64(2), ctx["agents"])
	assert.Equal(t, true, ctx["sticky"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	assert.Equal(t, LevelNone, l.GetLevel())
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.With(Int("a", 1)).Error("y")
	})
}
