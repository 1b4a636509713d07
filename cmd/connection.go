// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/Thermoquad/tofscope/pkg/config"
	"github.com/Thermoquad/tofscope/pkg/link"
	"github.com/Thermoquad/tofscope/pkg/telemetry"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	if pw := os.Getenv("TOFSCOPE_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// connector opens connections from the effective configuration. The
// password is prompted for once and reused on reconnect.
type connector struct {
	password     string
	havePassword bool
}

// Open opens either a serial or WebSocket connection
func (c *connector) Open() (link.Connection, string, error) {
	if cfg.URL != "" {
		if cfg.Username != "" && !c.havePassword {
			password, err := GetPassword()
			if err != nil {
				return nil, "", err
			}
			c.password = password
			c.havePassword = true
		}

		conn, err := link.OpenWebSocket(cfg.URL, cfg.Username, c.password, cfg.NoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("WebSocket: %s", cfg.URL), nil
	}

	if cfg.Port != "" {
		opts := link.PortOptions{BaudRate: cfg.Baud}
		conn, err := link.OpenSerial(cfg.Port, opts)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("Serial: %s @ %d baud", cfg.Port, cfg.Baud), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}

// OpenConnection opens either a serial or WebSocket connection based on flags
func OpenConnection() (link.Connection, string, error) {
	return (&connector{}).Open()
}

// newSession creates a session wired to the global logger and config
func newSession() *telemetry.Session {
	return telemetry.NewSession(
		telemetry.WithLogger(log.Logger),
		telemetry.WithConsoleCapacity(cfg.ConsoleCapacity),
	)
}

// readBuffer returns a transport read buffer of the configured size
func readBuffer() []byte {
	size := cfg.ReadBuffer
	if size <= 0 {
		size = config.DefaultReadBuffer
	}
	return make([]byte, size)
}

// sendStartupCommands writes the configured startup commands in order
func sendStartupCommands(conn link.Connection) error {
	for _, text := range cfg.StartupCommands {
		if err := link.SendCommand(conn, text); err != nil {
			return fmt.Errorf("startup command %q: %w", text, err)
		}
		log.Debug().Str("command", text).Msg("sent startup command")
	}
	return nil
}
