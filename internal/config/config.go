// Package config loads the sftpext command line configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the sftpext configuration.
//
// Sources, highest precedence first:
//  1. command line flags
//  2. environment variables (SFTPEXT_*, nested keys joined by "_")
//  3. the configuration file
//  4. defaults
type Config struct {
	Host string `mapstructure:"host" validate:"required" yaml:"host"`
	Port int    `mapstructure:"port" validate:"min=1,max=65535" yaml:"port"`
	User string `mapstructure:"user" validate:"required" yaml:"user"`

	// At least one of Password, KeyFile and UseAgent must be set.
	Password      string `mapstructure:"password" yaml:"password,omitempty"`
	KeyFile       string `mapstructure:"key_file" validate:"required_without_all=Password UseAgent" yaml:"key_file,omitempty"`
	KeyPassphrase string `mapstructure:"key_passphrase" yaml:"key_passphrase,omitempty"`
	UseAgent      bool   `mapstructure:"use_agent" yaml:"use_agent"`

	KnownHostsFile        string `mapstructure:"known_hosts_file" yaml:"known_hosts_file,omitempty"`
	InsecureIgnoreHostKey bool   `mapstructure:"insecure_ignore_host_key" yaml:"insecure_ignore_host_key"`

	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0" yaml:"timeout"`

	// MaxPacketLength bounds the size of reply packets, zero keeps the client default.
	MaxPacketLength int `mapstructure:"max_packet_length" validate:"omitempty,min=5" yaml:"max_packet_length,omitempty"`

	Output string `mapstructure:"output" validate:"required,oneof=table json yaml" yaml:"output"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level   string `mapstructure:"level" validate:"required,oneof=debug info warn error DEBUG INFO WARN ERROR" yaml:"level"`
	NoColor bool   `mapstructure:"no_color" yaml:"no_color"`
}

// MetricsConfig controls the Prometheus endpoint of the watch command.
type MetricsConfig struct {
	// Listen is the host:port to serve /metrics on, empty disables it.
	Listen string `mapstructure:"listen" validate:"omitempty,hostname_port" yaml:"listen,omitempty"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"gt=0" yaml:"interval"`
}

var defaults = map[string]any{
	"host":                     "",
	"port":                     22,
	"user":                     "",
	"password":                 "",
	"key_file":                 "",
	"key_passphrase":           "",
	"use_agent":                false,
	"known_hosts_file":         "",
	"insecure_ignore_host_key": false,
	"timeout":                  30 * time.Second,
	"max_packet_length":        0,
	"output":                   "table",
	"logging.level":            "info",
	"logging.no_color":         false,
	"metrics.listen":           "",
	"watch.interval":           time.Minute,
}

// FlagKeys maps command line flag names to configuration keys.
var FlagKeys = map[string]string{
	"host":                     "host",
	"port":                     "port",
	"user":                     "user",
	"password":                 "password",
	"key-file":                 "key_file",
	"use-agent":                "use_agent",
	"known-hosts":              "known_hosts_file",
	"insecure-ignore-host-key": "insecure_ignore_host_key",
	"timeout":                  "timeout",
	"max-packet-length":        "max_packet_length",
	"output":                   "output",
	"log-level":                "logging.level",
	"no-color":                 "logging.no_color",
	"listen":                   "metrics.listen",
	"interval":                 "watch.interval",
}

// Load reads the configuration from configPath, the environment, and flags.
// An empty configPath uses the default location, which may be absent.
// Flags may be nil, only flags named in FlagKeys are bound.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("SFTPEXT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "failed to bind flag --%s", name)
				}
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(ConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// Validate checks cfg against its validate tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	return nil
}

// ConfigDir returns $XDG_CONFIG_HOME/sftpext, or ~/.config/sftpext.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sftpext")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "sftpext")
}
