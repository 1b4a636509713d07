// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"fmt"
	"strings"
)

// FormatFrameType returns the human-readable name for a frame type
func FormatFrameType(frameType uint8) string {
	switch frameType {
	case FrameIMUTimestamp:
		return "IMU_TIMESTAMP"
	case FrameAccel:
		return "ACCEL"
	case FrameGyro:
		return "GYRO"
	case FrameIMU:
		return "IMU"
	case FrameToF:
		return "TOF"
	default:
		return "UNKNOWN"
	}
}

// FormatFrame formats a frame header line, followed by the decoded fields of
// the given snapshot for the frame's type
func FormatFrame(f Frame, s *Snapshot) string {
	timestamp := f.timestamp.Format("15:04:05.000")
	result := fmt.Sprintf("[%s] %s (0x%02X) len=%d\n", timestamp, FormatFrameType(f.Type()), f.Type(), f.Length())

	switch f.Type() {
	case FrameIMUTimestamp:
		result += fmt.Sprintf("  Timestamp: %d\n", s.IMUTimestamp)
	case FrameAccel:
		result += fmt.Sprintf("  Timestamp: %d, Accel: %s g\n", s.IMUTimestamp, formatVector(s.Accel))
	case FrameGyro:
		result += fmt.Sprintf("  Timestamp: %d, Gyro: %s dps\n", s.IMUTimestamp, formatVector(s.Gyro))
	case FrameIMU:
		result += fmt.Sprintf("  Timestamp: %d, Accel: %s g, Gyro: %s dps\n",
			s.IMUTimestamp, formatVector(s.Accel), formatVector(s.Gyro))
	case FrameToF:
		result += FormatToFGrid(s)
	default:
		result += FormatHex(f.Payload())
	}

	return result
}

// FormatToFGrid formats the 8x8 distance grid with per-cell confidence
func FormatToFGrid(s *Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Max distance: %d mm\n", s.ToFMaxDistance)
	for row := 0; row < ToFGridSide; row++ {
		b.WriteString("  ")
		for col := 0; col < ToFGridSide; col++ {
			fmt.Fprintf(&b, "%5d/%-3d", s.Distance(row, col), s.Confidence(row, col))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatSnapshot formats all snapshot fields
func FormatSnapshot(s *Snapshot) string {
	result := fmt.Sprintf("IMU timestamp: %d\n", s.IMUTimestamp)
	result += fmt.Sprintf("Accel: %s g\n", formatVector(s.Accel))
	result += fmt.Sprintf("Gyro:  %s dps\n", formatVector(s.Gyro))
	result += FormatToFGrid(s)
	return result
}

// FormatHex formats bytes as a hex dump, 16 per line
func FormatHex(data []byte) string {
	result := "  Payload: "
	for i, b := range data {
		if i > 0 && i%16 == 0 {
			result += "\n           "
		}
		result += fmt.Sprintf("%02X ", b)
	}
	return result + "\n"
}

func formatVector(v Vector3) string {
	return fmt.Sprintf("[%8.3f %8.3f %8.3f]", v[0], v[1], v[2])
}
