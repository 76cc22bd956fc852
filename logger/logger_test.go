package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfigLevels(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, DefaultConfig(false).Level.Level())
	assert.Equal(t, zapcore.DebugLevel, DefaultConfig(true).Level.Level())
}

func TestNewWithLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "frt.log")

	log, err := New(false, path)
	require.NoError(t, err)
	log.Info("vault saved", zap.String("path", "/tmp/v"))
	log.Debug("hidden")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "vault saved")
	assert.NotContains(t, string(data), "hidden")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestNewAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frt.log")
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0600))

	log, err := New(true, path)
	require.NoError(t, err)
	log.Debug("next")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "previous")
	assert.Contains(t, string(data), "next")
}
