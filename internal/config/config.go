// Package config loads codebook settings from defaults, an optional TOML
// file and CODEBOOK_ environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Lattice  LatticeConfig  `mapstructure:"lattice"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
	Validate ValidateConfig `mapstructure:"validate"`
	Generate GenerateConfig `mapstructure:"generate"`
}

// LatticeConfig points at the lattice dataset (.json or .json.xz).
type LatticeConfig struct {
	Path string `mapstructure:"path"`
}

// StoreConfig holds sqlite settings.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ValidateConfig holds validator defaults.
type ValidateConfig struct {
	Strict            bool    `mapstructure:"strict"`
	CoverageThreshold float64 `mapstructure:"coverage_threshold"`
}

// GenerateConfig holds generator defaults.
type GenerateConfig struct {
	Selection string `mapstructure:"selection"`
}

// EnvPrefix prefixes every environment override, e.g. CODEBOOK_STORE_PATH.
const EnvPrefix = "CODEBOOK"

// Load reads configuration from file and env. CODEBOOK_CONFIG names the
// file; otherwise ~/.config/codebook/config.toml is used when present.
func Load() (Config, error) {
	v := viper.New()

	home, _ := os.UserHomeDir()
	v.SetDefault("lattice.path", "")
	v.SetDefault("store.path", filepath.Join(home, ".codebook", "runs.db"))
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("validate.strict", true)
	v.SetDefault("validate.coverage_threshold", 0.2)
	v.SetDefault("generate.selection", "uniform")

	v.SetConfigType("toml")

	cfgPath := os.Getenv(EnvPrefix + "_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "codebook"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicitly named file must exist
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
