// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import "time"

// Frame is one delimited binary telemetry frame, marker through checksum
type Frame struct {
	raw       []byte
	timestamp time.Time
}

// NewFrame wraps raw frame bytes. The slice is not copied.
func NewFrame(raw []byte) Frame {
	return Frame{raw: raw, timestamp: time.Now()}
}

// Bytes returns the raw frame bytes
func (f Frame) Bytes() []byte {
	return f.raw
}

// Size returns the number of bytes in the frame
func (f Frame) Size() int {
	return len(f.raw)
}

// Length returns the declared payload length, or 0 for a truncated header
func (f Frame) Length() uint8 {
	if len(f.raw) <= FrameLengthOffset {
		return 0
	}
	return f.raw[FrameLengthOffset]
}

// Type returns the frame type selector, or 0xFF for a truncated header
func (f Frame) Type() uint8 {
	if len(f.raw) <= FrameTypeOffset {
		return 0xFF
	}
	return f.raw[FrameTypeOffset]
}

// Payload returns the bytes between the header and the checksum
func (f Frame) Payload() []byte {
	if len(f.raw) < FrameOverhead {
		return nil
	}
	return f.raw[FrameHeaderSize : len(f.raw)-FrameChecksumSize]
}

// Checksum returns the trailing checksum byte
func (f Frame) Checksum() byte {
	if len(f.raw) == 0 {
		return 0
	}
	return f.raw[len(f.raw)-1]
}

// Valid reports whether the frame checksum verifies
func (f Frame) Valid() bool {
	return len(f.raw) >= FrameOverhead && ValidChecksum(f.raw)
}

// Timestamp returns the time the frame was delimited
func (f Frame) Timestamp() time.Time {
	return f.timestamp
}
