// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Thermoquad/tofscope/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Ambient flags
	configPath string
	logLevel   string
	logFile    string

	// cfg is the loaded config file with flag overrides applied
	cfg *config.Config

	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "tofscope",
	Short: "IMU and ToF sensor board monitor",
	Long: `tofscope - A CLI tool for monitoring a sensor board that mixes console
text with binary IMU and time-of-flight telemetry frames on one serial stream.

Console lines are shown as text; frames are checksum-verified and decoded into
a live view of the accelerometer, gyroscope and 8x8 ToF distance grid.

Connection modes:
  Serial:    --port /dev/ttyACM0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

Defaults are read from ~/.tofscope/config.yaml when it exists; flags override
the file. For WebSocket authentication, the password is read from the
TOFSCOPE_PASSWORD environment variable, or prompted interactively if not set.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
			logCloser = nil
		}
	},
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Diagnostic log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write diagnostic logs to a file instead of stderr")
}

// loadConfig reads the config file and lets explicitly set flags win
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("port") || loaded.Port == "" {
		loaded.Port = portName
	}
	if flags.Changed("baud") || loaded.Baud == 0 {
		loaded.Baud = baudRate
	}
	if flags.Changed("url") || loaded.URL == "" {
		loaded.URL = wsURL
	}
	if flags.Changed("username") || loaded.Username == "" {
		loaded.Username = wsUsername
	}
	if flags.Changed("no-ssl-verify") {
		loaded.NoSSLVerify = wsNoSSLVerify
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		loaded.LogFile = logFile
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	return setupLogging(cfg.LogLevel, cfg.LogFile)
}

// setupLogging points the global logger at stderr or a log file
func setupLogging(level, path string) error {
	lvl := zerolog.WarnLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	if path == "" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
			Level(lvl).With().Timestamp().Logger()
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logCloser = f
	log.Logger = zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
