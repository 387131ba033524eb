package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	toml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/nshafer/rws"
)

// EnvPrefix is the prefix of environment variables overriding the config file,
// e.g. RWS_GIVE_UP_AFTER=day.
const EnvPrefix = "RWS_"

// Config holds the connect command settings. Durations accept milliseconds,
// Go duration strings and the symbolic values "day" and "hour".
type Config struct {
	Endpoint         string        `koanf:"endpoint"`
	RetryInterval    time.Duration `koanf:"retry_interval"`
	GiveUpAfter      time.Duration `koanf:"give_up_after"`
	HandshakeTimeout time.Duration `koanf:"handshake_timeout"`
	PingInterval     time.Duration `koanf:"ping_interval"`
	LogLevel         string        `koanf:"log_level"`
	MetricsAddr      string        `koanf:"metrics_addr"`
}

func defaultConfig() *Config {
	return &Config{
		RetryInterval:    3000 * time.Millisecond,
		GiveUpAfter:      rws.Hour,
		HandshakeTimeout: 10 * time.Second,
		LogLevel:         "info",
	}
}

// loadConfig reads defaults, then the TOML file at configPath if given, then
// RWS_ environment variables.
func loadConfig(configPath string) (*Config, error) {
	cfg := defaultConfig()

	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "koanf",
			WeaklyTypedInput: true,
			Result:           cfg,
			DecodeHook:       rws.DurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if c.RetryInterval <= 0 {
		return fmt.Errorf("retry_interval must be positive, got %s", c.RetryInterval)
	}
	if c.PingInterval < 0 {
		return fmt.Errorf("ping_interval must not be negative, got %s", c.PingInterval)
	}
	if _, err := rws.ParseLoggerLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
