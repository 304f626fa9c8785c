package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"pathnet/internal/pathsource"
)

// FileName is the config file looked up in the config directory.
const FileName = "pathnet.cfg.json"

// NetworkConfig holds path network settings
type NetworkConfig struct {
	AutoSearchRadius float64 `json:"autoSearchRadius" mapstructure:"autoSearchRadius"`
	KnotSpacing      float64 `json:"knotSpacing" mapstructure:"knotSpacing"`
	RebuildKnots     bool    `json:"rebuildKnots" mapstructure:"rebuildKnots"`
	// Seed makes next-path selection reproducible when non-zero.
	Seed uint64 `json:"seed" mapstructure:"seed"`
}

// SourceConfig names the file paths are loaded from
type SourceConfig struct {
	File    string             `json:"file" mapstructure:"file"`
	Format  string             `json:"format" mapstructure:"format"`
	Options pathsource.Options `json:"options" mapstructure:"options"`
}

// Config is the full application configuration.
type Config struct {
	LogLevel string        `json:"logLevel" mapstructure:"logLevel"`
	Listen   string        `json:"listen" mapstructure:"listen"`
	Network  NetworkConfig `json:"network" mapstructure:"network"`
	Source   SourceConfig  `json:"source" mapstructure:"source"`
}

// SetDefaults registers default values.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("listen", ":8080")

	viper.SetDefault("network.autoSearchRadius", 0.2)
	viper.SetDefault("network.knotSpacing", 1.0)
	viper.SetDefault("network.rebuildKnots", true)
	viper.SetDefault("network.seed", 0)

	viper.SetDefault("source.file", "")
	viper.SetDefault("source.format", "")
	viper.SetDefault("source.options.simplifyEpsilon", 0.0)
}

// Load reads configuration from the JSON file in configDir, if present, and
// from PATHNET_* environment variables.
func Load(configDir string) error {
	SetDefaults()

	viper.SetEnvPrefix("pathnet")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// Get decodes the current settings.
func Get() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if cfg.Network.AutoSearchRadius <= 0 {
		return Config{}, fmt.Errorf("network.autoSearchRadius must be positive, got %v", cfg.Network.AutoSearchRadius)
	}
	return cfg, nil
}
