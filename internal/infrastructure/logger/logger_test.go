package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		l, err := New(nil)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(&Config{Level: "debug", Format: "json", Output: path})
		require.NoError(t, err)

		l.Info("purchase order submitted")
		require.NoError(t, l.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"purchase order submitted"`)
		assert.Contains(t, string(data), `"level":"info"`)
	})

	t.Run("unwritable file fails", func(t *testing.T) {
		_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "app.log")})
		assert.Error(t, err)
	})

	t.Run("extra cores receive entries", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		l, err := New(&Config{Level: "error", Output: "stderr"}, core)
		require.NoError(t, err)

		l.Info("mirrored")
		assert.Equal(t, 1, recorded.Len())
	})
}

func TestTee(t *testing.T) {
	primary, primaryLogs := observer.New(zapcore.InfoLevel)
	extra, extraLogs := observer.New(zapcore.WarnLevel)

	base, err := New(&Config{Output: "stderr"}, primary)
	require.NoError(t, err)
	l := Tee(base, extra)

	l.Info("info only")
	l.Warn("both")

	assert.Equal(t, 2, primaryLogs.Len())
	require.Equal(t, 1, extraLogs.Len())
	assert.Equal(t, "both", extraLogs.All()[0].Message)
	assert.Same(t, base, Tee(base))
}
