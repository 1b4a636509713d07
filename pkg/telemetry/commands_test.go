// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"strings"
	"testing"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{"plain", "tof stop", "tof stop\n", ""},
		{"trailing newline", "help\n", "help\n", ""},
		{"trailing crlf", "help\r\n", "help\n", ""},
		{"empty", "", "", "empty command"},
		{"only newline", "\n", "", "empty command"},
		{"embedded newline", "a\nb", "", "line break"},
		{"embedded cr", "a\rb", "", "line break"},
		{"frame marker", "a\xfeb", "", "frame start byte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Command(tt.input)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Command(%q) error = %v, want containing %q", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Command(%q) error: %v", tt.input, err)
			}
			if string(got) != tt.want {
				t.Errorf("Command(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetSerializeCommand(t *testing.T) {
	if got := string(SetSerializeCommand(true)); got != "uart set_serialize true\n" {
		t.Errorf("SetSerializeCommand(true) = %q", got)
	}
	if got := string(SetSerializeCommand(false)); got != "uart set_serialize false\n" {
		t.Errorf("SetSerializeCommand(false) = %q", got)
	}
}

func TestStartToFCommand(t *testing.T) {
	if got := string(StartToFCommand()); got != "tof start_measurements\n" {
		t.Errorf("StartToFCommand() = %q", got)
	}
}

func TestCommand_EchoIsTokenizedAsText(t *testing.T) {
	// The board echoes commands back; the echo must come out as a console line
	cmd, err := Command(CmdStartMeasurements)
	if err != nil {
		t.Fatalf("Command error: %v", err)
	}
	msgs := NewTokenizer().Feed(cmd)
	if len(msgs) != 1 || msgs[0].Kind != MessageText || msgs[0].Text != CmdStartMeasurements {
		t.Errorf("echo tokenized as %v", tokens(msgs))
	}
}
