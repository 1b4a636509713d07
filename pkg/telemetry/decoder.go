// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Decode errors. A frame that fails to decode leaves the snapshot untouched.
var (
	ErrChecksum         = errors.New("checksum mismatch")
	ErrShortFrame       = errors.New("frame shorter than header")
	ErrUnknownFrameType = errors.New("unknown frame type")
	ErrLengthMismatch   = errors.New("length mismatch")
	ErrUnsupportedGrid  = errors.New("unsupported ToF grid")
)

// expectedLength maps each IMU frame type to its payload length
var expectedLength = map[uint8]uint8{
	FrameIMUTimestamp: LengthIMUTimestamp,
	FrameAccel:        LengthAccel,
	FrameGyro:         LengthGyro,
	FrameIMU:          LengthIMU,
}

// Decode interprets a checksum-valid frame and updates the snapshot in place
func Decode(f Frame, s *Snapshot) error {
	raw := f.raw
	if len(raw) < FrameOverhead {
		return fmt.Errorf("%w: %d bytes", ErrShortFrame, len(raw))
	}

	frameType := raw[FrameTypeOffset]
	length := raw[FrameLengthOffset]
	if len(raw) != int(length)+FrameOverhead {
		return fmt.Errorf("%w: declared %d, frame carries %d", ErrLengthMismatch, length, len(raw)-FrameOverhead)
	}
	payload := raw[FrameHeaderSize : FrameHeaderSize+int(length)]

	switch frameType {
	case FrameIMUTimestamp, FrameAccel, FrameGyro, FrameIMU:
		if want := expectedLength[frameType]; length != want {
			return fmt.Errorf("%w: %s expects %d, got %d", ErrLengthMismatch, FormatFrameType(frameType), want, length)
		}
		decodeIMU(frameType, payload, s)
		s.LastIMU = f.timestamp
		return nil

	case FrameToF:
		switch length {
		case LengthToF8x8:
			decodeToF(payload, s)
			s.LastToF = f.timestamp
			return nil
		case LengthToF4x4:
			return fmt.Errorf("%w: 4x4", ErrUnsupportedGrid)
		default:
			return fmt.Errorf("%w: TOF expects %d, got %d", ErrLengthMismatch, LengthToF8x8, length)
		}

	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnknownFrameType, frameType)
	}
}

// DecodeBytes is a convenience wrapper for raw frame bytes
func DecodeBytes(raw []byte, s *Snapshot) error {
	return Decode(Frame{raw: raw, timestamp: time.Now()}, s)
}

func decodeIMU(frameType uint8, payload []byte, s *Snapshot) {
	s.IMUTimestamp = readUint24(payload)
	axes := payload[TimestampSize:]

	switch frameType {
	case FrameAccel:
		s.Accel = readVector(axes, AccelRangeG)
	case FrameGyro:
		s.Gyro = readVector(axes, GyroRangeDPS)
	case FrameIMU:
		s.Accel = readVector(axes[:VectorSize], AccelRangeG)
		s.Gyro = readVector(axes[VectorSize:], GyroRangeDPS)
	}
}

func decodeToF(payload []byte, s *Snapshot) {
	// The running maximum restarts with every grid
	s.ToFMaxDistance = DefaultToFMaxDistance
	for i := 0; i < ToFCells; i++ {
		cell := payload[i*ToFCellSize:]
		dist := binary.LittleEndian.Uint16(cell)
		s.ToFDistance[i] = dist
		s.ToFConfidence[i] = cell[2]
		if uint32(dist) > s.ToFMaxDistance {
			s.ToFMaxDistance = uint32(dist)
		}
	}
}

// readUint24 reads a little-endian 24-bit value
func readUint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// readVector reads three signed little-endian axes and scales them to the
// sensor's full-scale range
func readVector(b []byte, fullScale float32) Vector3 {
	var v Vector3
	for axis := 0; axis < 3; axis++ {
		raw := int16(binary.LittleEndian.Uint16(b[axis*AxisSize:]))
		v[axis] = ScaleAxis(raw, fullScale)
	}
	return v
}

// ScaleAxis converts a raw signed reading to physical units
func ScaleAxis(raw int16, fullScale float32) float32 {
	return fullScale * float32(raw) / RawScaleDivisor
}
