// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/Thermoquad/tofscope/pkg/link"
	"github.com/Thermoquad/tofscope/pkg/telemetry"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	recordDuration time.Duration
)

var recordCmd = &cobra.Command{
	Use:   "record <file>",
	Short: "Record the raw stream to a capture file",
	Long: `Record every transport read to a capture file for later replay.

The capture keeps the exact bytes and read boundaries, so "tofscope replay"
reproduces what a live session saw. Recording stops on Ctrl+C, when the
connection closes, or after --duration.

Supports both serial and WebSocket connections.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().DurationVar(&recordDuration, "duration", 0, "Stop after this long (0 records until interrupted)")
}

func runRecord(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create capture: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	capture, err := telemetry.NewCaptureWriter(w, connInfo)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "tofscope - Record\n")
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	fmt.Fprintf(out, "Capture: %s\n", args[0])
	fmt.Fprintf(out, "Press Ctrl+C to stop\n\n")

	if err := sendStartupCommands(conn); err != nil {
		return err
	}

	session := newSession()
	done := make(chan struct{})
	readErr := make(chan error, 1)

	go func() {
		buf := readBuffer()
		for {
			select {
			case <-done:
				readErr <- nil
				return
			default:
			}
			n, err := conn.Read(buf)
			if err != nil {
				readErr <- err
				return
			}
			if n == 0 {
				continue
			}
			if err := capture.WriteChunk(time.Now(), buf[:n]); err != nil {
				readErr <- err
				return
			}
			session.Feed(buf[:n])
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	var timeout <-chan time.Time
	if recordDuration > 0 {
		timeout = time.After(recordDuration)
	}

	var runErr error
	select {
	case <-interrupt:
		close(done)
		conn.Close()
		<-readErr
	case <-timeout:
		close(done)
		conn.Close()
		<-readErr
	case err := <-readErr:
		if err != nil && !errors.Is(err, link.ErrConnectionClosed) && !errors.Is(err, io.EOF) {
			runErr = fmt.Errorf("read error: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush capture: %w", err)
	}
	log.Info().Str("file", args[0]).Uint64("bytes", session.Stats().BytesFed).Msg("capture written")

	if runErr != nil {
		return runErr
	}
	fmt.Fprint(out, session.Stats().String())
	return nil
}
