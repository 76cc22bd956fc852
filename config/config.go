// Package config resolves fortress settings from defaults, an optional YAML
// file, FORTRESS_* environment variables and command-line flags, in that order
// of precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const (
	KeyFile           = "file"
	KeyVerbose        = "verbose"
	KeyLogFile        = "log_file"
	KeyStdin          = "stdin"
	KeyCipher         = "cipher"
	KeyClipboardClear = "clipboard_clear"

	EnvPrefix = "FORTRESS"
)

type Config struct {
	File           string        `mapstructure:"file"`
	Verbose        bool          `mapstructure:"verbose"`
	LogFile        string        `mapstructure:"log_file"`
	Stdin          bool          `mapstructure:"stdin"`
	Cipher         string        `mapstructure:"cipher"`
	ClipboardClear time.Duration `mapstructure:"clipboard_clear"`
}

// DefaultVaultPath returns ~/.fortress/vault.frt, or a path in the working
// directory when the home directory cannot be determined.
func DefaultVaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "vault.frt"
	}
	return filepath.Join(home, ".fortress", "vault.frt")
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyFile, DefaultVaultPath())
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyStdin, false)
	v.SetDefault(KeyCipher, "aes-256-gcm")
	v.SetDefault(KeyClipboardClear, 30*time.Second)
}

// Load reads cfgFile when given, otherwise $HOME/.fortress.yaml if present.
// A missing default config file is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfgFile)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".fortress")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if cfg.File == "" {
		return nil, errors.WithHint(errors.New("config: vault file path is empty"), "set --file or FORTRESS_FILE")
	}
	if cfg.ClipboardClear < 0 {
		return nil, errors.Newf("config: clipboard_clear must not be negative, got %s", cfg.ClipboardClear)
	}
	return &cfg, nil
}
