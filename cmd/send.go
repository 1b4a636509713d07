// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/Thermoquad/tofscope/pkg/link"
	"github.com/Thermoquad/tofscope/pkg/telemetry"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <command...>",
	Short: "Send one console command to the board",
	Long: `Send a single newline-terminated console command and exit.

The arguments are joined with spaces, so quoting is optional:

  tofscope send -p /dev/ttyACM0 uart set_serialize true
  tofscope send -p /dev/ttyACM0 tof start_measurements

Supports both serial and WebSocket connections.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	command, err := telemetry.Command(text)
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := link.SendRaw(conn, command); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sent %q to %s\n", text, connInfo)
	return nil
}
