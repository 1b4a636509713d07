// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package telemetry implements the tofscope serial stream protocol.
//
// The sensor board multiplexes console text and binary telemetry frames on a
// single serial link. Text lines end in LF or CR. Binary frames begin with the
// FrameStart marker and carry their own payload length, a type selector and a
// trailing XOR checksum:
//
//	0      1..3      4       5      6 .. 6+len-1   6+len
//	0xFE   reserved  length  type   payload        checksum
//
// The FrameStart byte must never appear inside console text; the firmware
// guarantees this and the tokenizer relies on it.
package telemetry

// Stream delimiters
const (
	FrameStart     = 0xFE
	LineFeed       = 0x0A
	CarriageReturn = 0x0D
)

// Frame layout
const (
	FrameLengthOffset = 4
	FrameTypeOffset   = 5
	FrameHeaderSize   = 6
	FrameChecksumSize = 1

	// FrameOverhead is the number of non-payload bytes in a frame.
	FrameOverhead = FrameHeaderSize + FrameChecksumSize

	MaxFrameSize = FrameOverhead + 0xFF
)

// MinLineLength is the shortest console line that is reported. Shorter
// segments between delimiters are noise.
const MinLineLength = 2

// Frame types
const (
	FrameIMUTimestamp = 0x00
	FrameAccel        = 0x01
	FrameGyro         = 0x02
	FrameIMU          = 0x03
	FrameToF          = 0x04
)

// Expected payload lengths per frame type
const (
	TimestampSize = 3
	AxisSize      = 2
	VectorSize    = 3 * AxisSize

	LengthIMUTimestamp = TimestampSize
	LengthAccel        = TimestampSize + VectorSize
	LengthGyro         = TimestampSize + VectorSize
	LengthIMU          = TimestampSize + 2*VectorSize

	ToFGridSide  = 8
	ToFCells     = ToFGridSide * ToFGridSide
	ToFCellSize  = 3
	LengthToF8x8 = ToFCells * ToFCellSize
	LengthToF4x4 = 4 * 4 * ToFCellSize
)

// Sensor full-scale ranges. Raw readings are normalised by RawScaleDivisor.
const (
	AccelRangeG     = 4.0
	GyroRangeDPS    = 2000.0
	RawScaleDivisor = 256.0
)

// DefaultToFMaxDistance is the floor for the running maximum distance.
const DefaultToFMaxDistance = 1

// DefaultConsoleCapacity matches the console height of the board's reference
// viewer.
const DefaultConsoleCapacity = 30
