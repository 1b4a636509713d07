// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/Thermoquad/tofscope/pkg/link"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Interactive TUI showing live IMU and ToF telemetry",
	Long: `Monitor a sensor board via an interactive terminal UI.

Features:
  - 8x8 ToF distance grid as a heat map with per-cell confidence
  - Accelerometer and gyroscope readings
  - Console log of the board's text output
  - Command input for console commands
  - Statistics tracking
  - Automatic reconnection on connection loss

Keys:
  s    Enable serialization (uart set_serialize true)
  t    Start ToF measurements (tof start_measurements)
  /    Type a console command, enter to send, esc to cancel
  c    Clear the console log
  q    Quit

Diagnostic logs are discarded unless --log-file is given, so they do not
overwrite the display.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

// connectionManager handles connection lifecycle and reconnection
type connectionManager struct {
	connector *connector
	conn      link.Connection
	connInfo  string
	mu        sync.RWMutex
	p         *tea.Program
	done      chan struct{}

	// Bytes read since the last batch was handed to the TUI
	pendingMu sync.Mutex
	pending   []byte
}

func (cm *connectionManager) getConn() link.Connection {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.conn
}

func (cm *connectionManager) setConn(conn link.Connection, connInfo string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.conn = conn
	cm.connInfo = connInfo
}

// send writes a command on the current connection
func (cm *connectionManager) send(cmd []byte) error {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.conn == nil {
		return fmt.Errorf("not connected")
	}
	return link.SendRaw(cm.conn, cmd)
}

func (cm *connectionManager) appendPending(data []byte) {
	cm.pendingMu.Lock()
	cm.pending = append(cm.pending, data...)
	cm.pendingMu.Unlock()
}

func (cm *connectionManager) takePending() []byte {
	cm.pendingMu.Lock()
	defer cm.pendingMu.Unlock()
	data := cm.pending
	cm.pending = nil
	return data
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if cfg.LogFile == "" {
		log.Logger = zerolog.Nop()
	}

	conn := &connector{}
	c, connInfo, err := conn.Open()
	if err != nil {
		return err
	}

	cm := &connectionManager{
		connector: conn,
		conn:      c,
		connInfo:  connInfo,
		done:      make(chan struct{}),
	}

	m := initialMonitorModel(cm, connInfo, newSession())
	p := tea.NewProgram(m, tea.WithAltScreen())
	cm.p = p

	if err := sendStartupCommands(c); err != nil {
		log.Warn().Err(err).Msg("failed to send startup commands")
	}
	go cm.readerLoop()

	_, err = p.Run()
	close(cm.done)
	if conn := cm.getConn(); conn != nil {
		conn.Close()
	}
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// readerLoop handles reading from connection with automatic reconnection
func (cm *connectionManager) readerLoop() {
	for {
		select {
		case <-cm.done:
			return
		default:
		}

		if cm.readFromConnection() {
			cm.takePending() // partial data from the dead link
			cm.p.Send(connectionLostMsg{})

			if !cm.reconnect() {
				return
			}
		}
	}
}

// readFromConnection reads until the connection fails.
// Returns true if connection was lost, false if shutdown requested.
func (cm *connectionManager) readFromConnection() bool {
	readerDone := make(chan struct{})

	go func() {
		defer close(readerDone)
		buf := readBuffer()
		conn := cm.getConn()
		for {
			select {
			case <-cm.done:
				return
			default:
			}

			n, err := conn.Read(buf)
			if err != nil {
				log.Debug().Err(err).Msg("read failed")
				return
			}
			if n > 0 {
				cm.appendPending(buf[:n])
			}
		}
	}()

	// Batch sender - hands buffered bytes to the TUI at a fixed rate
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-cm.done:
				return
			case <-readerDone:
				return
			case <-ticker.C:
				if data := cm.takePending(); len(data) > 0 {
					cm.p.Send(monitorDataMsg{data: data})
				}
			}
		}
	}()

	<-readerDone

	select {
	case <-cm.done:
		return false
	default:
		return true
	}
}

// reconnect attempts to reconnect with exponential backoff.
// Returns false if shutdown was requested during reconnection.
func (cm *connectionManager) reconnect() bool {
	if conn := cm.getConn(); conn != nil {
		conn.Close()
	}

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-cm.done:
			return false
		case <-time.After(backoff):
		}

		conn, connInfo, err := cm.connector.Open()
		if err == nil {
			cm.setConn(conn, connInfo)
			cm.p.Send(reconnectedMsg{connInfo: connInfo})
			if err := sendStartupCommands(conn); err != nil {
				log.Warn().Err(err).Msg("failed to send startup commands")
			}
			return true
		}
		log.Debug().Err(err).Dur("backoff", backoff).Msg("reconnect failed")

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
