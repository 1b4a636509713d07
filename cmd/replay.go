// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Thermoquad/tofscope/pkg/telemetry"
	"github.com/spf13/cobra"
)

var (
	replayRaw      bool
	replayRealtime bool
	replayFrames   bool
	replaySnapshot bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Feed a recorded capture through the decoder",
	Long: `Replay a capture written by "tofscope record" (or "tofscope simulate
--capture") and print the console lines, dropped frames and, with --frames,
decoded frames. A statistics summary and the final telemetry snapshot are
printed at the end.

With --raw the file is treated as a plain byte stream instead and read in
chunks of the configured read buffer size. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayRaw, "raw", false, "Input is a raw byte stream, not a capture")
	replayCmd.Flags().BoolVar(&replayRealtime, "realtime", false, "Honour the recorded timing between reads")
	replayCmd.Flags().BoolVar(&replayFrames, "frames", false, "Print decoded frames as well as console lines")
	replayCmd.Flags().BoolVar(&replaySnapshot, "snapshot", true, "Print the final telemetry snapshot")
}

func runReplay(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}
	in = bufio.NewReader(in)

	out := cmd.OutOrStdout()
	session := newSession()

	if replayRaw {
		buf := readBuffer()
		for {
			n, err := in.Read(buf)
			printEvents(out, session.Feed(buf[:n]), replayFrames)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("read error: %w", err)
			}
		}
	} else {
		capture, err := telemetry.NewCaptureReader(in)
		if err != nil {
			return err
		}
		header := capture.Header()
		fmt.Fprintf(out, "Capture from %s at %s\n\n", header.Source, time.Unix(0, header.Started).Format(time.DateTime))

		var last time.Time
		for {
			chunk, err := capture.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return err
			}
			if replayRealtime && !last.IsZero() {
				time.Sleep(chunk.Timestamp().Sub(last))
			}
			last = chunk.Timestamp()
			printEvents(out, session.Feed(chunk.Data), replayFrames)
		}
	}

	fmt.Fprintln(out)
	if replaySnapshot {
		snap := session.Snapshot()
		fmt.Fprint(out, telemetry.FormatSnapshot(&snap))
	}
	fmt.Fprint(out, session.Stats().String())
	return nil
}
