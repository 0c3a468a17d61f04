// Package config loads tool settings from a config file and R02_-prefixed
// environment variables, with sane defaults for everything.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DeviceConfig controls discovery and connection.
type DeviceConfig struct {
	// Prefixes are advertised-name prefixes to match during scanning.
	// Empty means the built-in list of known ring brands.
	Prefixes []string `mapstructure:"prefixes"`
	// Address pins the connection to a specific device, skipping
	// name matching entirely.
	Address    string        `mapstructure:"address"`
	ScanWindow time.Duration `mapstructure:"scanWindow"`
}

// TimeoutConfig bounds how long protocol operations wait on the ring.
type TimeoutConfig struct {
	// Exchange covers one command round trip.
	Exchange time.Duration `mapstructure:"exchange"`
	// Bulk covers a whole streaming log transfer.
	Bulk time.Duration `mapstructure:"bulk"`
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the top-level tool configuration.
type Config struct {
	Device   DeviceConfig  `mapstructure:"device"`
	Timeouts TimeoutConfig `mapstructure:"timeouts"`
	Logging  LoggingConfig `mapstructure:"logging"`
}

// Load reads configuration from path, or when path is empty from
// r02ctl.yaml in the working directory or ~/.config/r02ctl/. A missing
// file is fine; defaults and environment variables fill in.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/r02ctl")
		v.SetConfigName("r02ctl")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix("R02")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("device.prefixes", []string{})
	v.SetDefault("device.address", "")
	v.SetDefault("device.scanWindow", "15s")

	v.SetDefault("timeouts.exchange", "5s")
	v.SetDefault("timeouts.bulk", "10s")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
}
