// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"fmt"
	"strings"
)

// Outbound console commands understood by the board firmware. Commands are
// newline-terminated ASCII and travel on the same link as the telemetry.
const (
	CmdSetSerialize      = "uart set_serialize"
	CmdStartMeasurements = "tof start_measurements"
)

// Command returns text as a newline-terminated command ready to write.
// A single trailing newline or CR/LF pair in text is accepted.
func Command(text string) ([]byte, error) {
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")

	if text == "" {
		return nil, fmt.Errorf("empty command")
	}
	if strings.ContainsAny(text, "\r\n") {
		return nil, fmt.Errorf("command contains a line break: %q", text)
	}
	if strings.IndexByte(text, FrameStart) >= 0 {
		return nil, fmt.Errorf("command contains the frame start byte 0x%02X", FrameStart)
	}

	return []byte(text + "\n"), nil
}

// SetSerializeCommand enables or disables binary telemetry frames
func SetSerializeCommand(enabled bool) []byte {
	return []byte(fmt.Sprintf("%s %t\n", CmdSetSerialize, enabled))
}

// StartToFCommand starts continuous ToF ranging
func StartToFCommand() []byte {
	return []byte(CmdStartMeasurements + "\n")
}
