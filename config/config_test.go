package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(os.Getenv("HOME"), ".fortress", "vault.frt"), cfg.File)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.Stdin)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, "aes-256-gcm", cfg.Cipher)
	assert.Equal(t, 30*time.Second, cfg.ClipboardClear)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FORTRESS_FILE", "/tmp/env.frt")
	t.Setenv("FORTRESS_VERBOSE", "true")
	t.Setenv("FORTRESS_CLIPBOARD_CLEAR", "5s")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env.frt", cfg.File)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 5*time.Second, cfg.ClipboardClear)
}

func TestLoadHomeConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	yaml := "file: /srv/vault.frt\ncipher: chacha20-poly1305\nlog_file: /tmp/frt.log\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, ".fortress.yaml"), []byte(yaml), 0600))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "/srv/vault.frt", cfg.File)
	assert.Equal(t, "chacha20-poly1305", cfg.Cipher)
	assert.Equal(t, "/tmp/frt.log", cfg.LogFile)
}

func TestLoadExplicitConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stdin: true\n"), 0600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.True(t, cfg.Stdin)

	_, err = Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsNegativeClear(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FORTRESS_CLIPBOARD_CLEAR", "-1s")

	_, err := Load(viper.New(), "")
	assert.Error(t, err)
}
