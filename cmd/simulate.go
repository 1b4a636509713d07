// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Thermoquad/tofscope/pkg/telemetry"
	"github.com/spf13/cobra"
)

var (
	simulateSteps    int
	simulateSeed     int64
	simulateInterval time.Duration
	simulateOutput   string
	simulateCapture  bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate a synthetic sensor board stream",
	Long: `Write a synthetic stream that looks like a sensor board with serialization
enabled: a boot banner, IMU frames every step, an 8x8 ToF frame every 10 steps
and a status line every 25 steps.

The stream is written raw to stdout or --output. With --capture it is written
as a capture file that "tofscope replay" reads directly; each step becomes one
recorded read.

  tofscope simulate --steps 500 | tofscope replay --raw -
  tofscope simulate --capture -o demo.cap && tofscope replay demo.cap`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().IntVar(&simulateSteps, "steps", 100, "Number of IMU samples to generate")
	simulateCmd.Flags().Int64Var(&simulateSeed, "seed", 1, "Random seed")
	simulateCmd.Flags().DurationVar(&simulateInterval, "interval", 0, "Delay between steps")
	simulateCmd.Flags().StringVarP(&simulateOutput, "output", "o", "", "Output file (default stdout)")
	simulateCmd.Flags().BoolVar(&simulateCapture, "capture", false, "Write a capture file instead of raw bytes")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	var out io.Writer = cmd.OutOrStdout()
	if simulateOutput != "" {
		f, err := os.Create(simulateOutput)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", simulateOutput, err)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)

	write := func(data []byte) error {
		_, err := w.Write(data)
		return err
	}
	if simulateCapture {
		capture, err := telemetry.NewCaptureWriter(w, "simulator")
		if err != nil {
			return err
		}
		write = func(data []byte) error {
			return capture.WriteChunk(time.Now(), data)
		}
	}

	sim := telemetry.NewSimulator(simulateSeed)
	if err := write(sim.Boot()); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	for i := 0; i < simulateSteps; i++ {
		if err := write(sim.Next()); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
		if simulateInterval > 0 {
			if err := w.Flush(); err != nil {
				return fmt.Errorf("write error: %w", err)
			}
			time.Sleep(simulateInterval)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}
