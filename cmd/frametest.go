// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/tofscope/pkg/telemetry"
	"github.com/spf13/cobra"
)

var (
	frameTestTimeout int
)

var frameTestCmd = &cobra.Command{
	Use:   "frame_test",
	Short: "Test connection by waiting for a valid telemetry frame",
	Long: `Wait for a valid telemetry frame on the connection until timeout.

This command connects to a serial port or WebSocket and waits for any frame
that passes the checksum and decodes. Console text and dropped frames are
counted but otherwise ignored.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Serialization must be enabled on the board; list it in the startup_commands
config entry or run "tofscope send uart set_serialize true" first.`,
	RunE: runFrameTest,
}

func init() {
	rootCmd.AddCommand(frameTestCmd)
	frameTestCmd.Flags().IntVar(&frameTestTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runFrameTest(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("tofscope - Frame Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", frameTestTimeout)
	fmt.Printf("Waiting for valid telemetry frame...\n\n")

	if err := sendStartupCommands(conn); err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	session := newSession()
	buf := readBuffer()

	frameChan := make(chan telemetry.Frame, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}

			for _, ev := range session.Feed(buf[:n]) {
				if ev.Kind == telemetry.EventFrame {
					stats := session.Stats()
					if skipped := stats.Lines + stats.Errors(); skipped > 0 {
						fmt.Printf("(skipped %d lines and dropped frames first)\n", skipped)
					}
					frameChan <- ev.Frame
					return
				}
			}
		}
	}()

	select {
	case frame := <-frameChan:
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Type: %s (0x%02X)\n", telemetry.FormatFrameType(frame.Type()), frame.Type())
		fmt.Printf("  Length: %d bytes\n", frame.Length())
		fmt.Printf("  Checksum: 0x%02X\n", frame.Checksum())
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(frameTestTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", frameTestTimeout)
		os.Exit(1)
	}

	return nil
}
