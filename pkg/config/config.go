// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Thermoquad/tofscope/pkg/link"
	"github.com/Thermoquad/tofscope/pkg/telemetry"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultReadBuffer is the size of the transport read buffer in bytes
const DefaultReadBuffer = 1000

// Config holds the tofscope configuration. Command line flags override it.
type Config struct {
	Port            string   `yaml:"port"`
	Baud            int      `yaml:"baud"`
	URL             string   `yaml:"url"`
	Username        string   `yaml:"username"`
	NoSSLVerify     bool     `yaml:"no_ssl_verify"`
	ConsoleCapacity int      `yaml:"console_capacity"`
	ReadBuffer      int      `yaml:"read_buffer"`
	LogLevel        string   `yaml:"log_level"`
	LogFile         string   `yaml:"log_file"`
	StartupCommands []string `yaml:"startup_commands,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Baud:            link.DefaultBaudRate,
		ConsoleCapacity: telemetry.DefaultConsoleCapacity,
		ReadBuffer:      DefaultReadBuffer,
		LogLevel:        zerolog.LevelWarnValue,
	}
}

// DefaultPath returns the default config file path: ~/.tofscope/config.yaml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".tofscope", "config.yaml")
	}
	return filepath.Join(home, ".tofscope", "config.yaml")
}

// Load reads the configuration from the given YAML file path.
// If the file does not exist, it returns the defaults with no error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if c.Baud < 0 {
		return fmt.Errorf("baud must not be negative, got %d", c.Baud)
	}
	if c.ConsoleCapacity < 0 {
		return fmt.Errorf("console_capacity must not be negative, got %d", c.ConsoleCapacity)
	}
	if c.ReadBuffer < 0 {
		return fmt.Errorf("read_buffer must not be negative, got %d", c.ReadBuffer)
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	for _, cmd := range c.StartupCommands {
		if _, err := telemetry.Command(cmd); err != nil {
			return fmt.Errorf("startup_commands: %w", err)
		}
	}
	return nil
}

// Save writes the configuration as YAML, creating the parent directory
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
