// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/Thermoquad/tofscope/pkg/link"
	"github.com/Thermoquad/tofscope/pkg/telemetry"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	logShowFrames bool
	logShowStats  bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print console lines and decoded frames as they arrive",
	Long: `Continuously read the board's stream and print it in human-readable form.

Console lines are printed as they are received. With --frames, every decoded
IMU and ToF frame is printed with its values; dropped frames are always
reported.

Supports both serial and WebSocket connections.`,
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().BoolVar(&logShowFrames, "frames", false, "Print decoded frames as well as console lines")
	logCmd.Flags().BoolVar(&logShowStats, "stats", false, "Print statistics when the connection closes")
}

func runLog(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "tofscope - Stream Log\n")
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	fmt.Fprintf(out, "Press Ctrl+C to exit\n\n")

	if err := sendStartupCommands(conn); err != nil {
		return err
	}

	session := newSession()
	buf := readBuffer()

	for {
		n, err := conn.Read(buf)
		if err != nil {
			if errors.Is(err, link.ErrConnectionClosed) || errors.Is(err, io.EOF) {
				log.Info().Msg("connection closed")
				if logShowStats {
					fmt.Fprint(out, session.Stats().String())
				}
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}
		printEvents(out, session.Feed(buf[:n]), logShowFrames)
	}
}

// printEvents writes session events in the log format
func printEvents(out io.Writer, events []telemetry.Event, showFrames bool) {
	for _, ev := range events {
		switch ev.Kind {
		case telemetry.EventText:
			fmt.Fprintf(out, "%s\n", ev.Text)
		case telemetry.EventFrame:
			if showFrames {
				// Decode on its own so each frame prints its own values
				// when several arrive in one read
				scratch := telemetry.NewSnapshot()
				if err := telemetry.Decode(ev.Frame, &scratch); err == nil {
					fmt.Fprint(out, telemetry.FormatFrame(ev.Frame, &scratch))
				}
			}
		case telemetry.EventDropped:
			fmt.Fprintf(out, "[DROPPED] %v\n", ev.Err)
		}
	}
}
