// Package config loads the scopectl configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/opengovern/scope-bridge/internal"
	"github.com/opengovern/scope-bridge/internal/logger"
)

const (
	EnvPrefix      = "SCOPECTL_"
	DefaultBaseURL = "http://localhost:8080/api"
	DefaultOutput  = "table"
	DefaultTimeout = "10s"
	DefaultFile    = "scopectl.yaml"
)

type Config struct {
	BaseURL          string `koanf:"base_url"`
	Timeout          string `koanf:"timeout"`
	Token            string `koanf:"token"`
	Output           string `koanf:"output"`
	Verbose          bool   `koanf:"verbose"`
	Debug            bool   `koanf:"debug"`
	LogFile          string `koanf:"log_file"`
	LogLevel         string `koanf:"log_level"`
	ThrottleInterval string `koanf:"throttle_interval"`
	ShowErrors       bool   `koanf:"show_errors"`
	IgnoreErrors     []int  `koanf:"ignore_errors"`
	SessionFile      string `koanf:"session_file"`
}

// TimeoutDuration returns the request timeout. Bare numbers are milliseconds.
func (c *Config) TimeoutDuration() time.Duration {
	return internal.ParseDuration(c.Timeout)
}

func (c *Config) ThrottleDuration() time.Duration {
	return internal.ParseDuration(c.ThrottleInterval)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base_url cannot be empty")
	}

	if c.LogLevel != "" {
		err := logger.ValidateLevel(c.LogLevel)
		if err != nil {
			return err
		}
	}

	if c.Timeout != "" && c.TimeoutDuration() <= 0 {
		return fmt.Errorf("invalid timeout %q", c.Timeout)
	}

	if c.ThrottleInterval != "" && c.ThrottleDuration() <= 0 {
		return fmt.Errorf("invalid throttle_interval %q", c.ThrottleInterval)
	}

	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ""
	}

	return filepath.Join(dir, "scopectl", "session.json")
}

// Load reads the configuration. Precedence (highest to lowest): flags > env vars > config file > defaults.
// Only flags explicitly set on the command line take part.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	err := k.Load(confmap.Provider(map[string]any{
		"base_url":          DefaultBaseURL,
		"timeout":           DefaultTimeout,
		"output":            DefaultOutput,
		"verbose":           false,
		"debug":             false,
		"throttle_interval": "1s",
		"show_errors":       true,
		"session_file":      defaultSessionFile(),
	}, "."), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			cfgFile = DefaultFile
		}
	}

	if cfgFile != "" {
		err = k.Load(file.Provider(cfgFile), yaml.Parser())
		if err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// SCOPECTL_BASE_URL -> base_url
	err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		err = k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}

			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := &Config{}
	err = k.Unmarshal("", cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
