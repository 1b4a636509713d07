// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"encoding/binary"
	"fmt"
)

// EncodeFrame builds a wire frame with zeroed reserved bytes and a checksum
// that makes the whole frame XOR to zero
func EncodeFrame(frameType uint8, payload []byte) ([]byte, error) {
	if len(payload) > 0xFF {
		return nil, fmt.Errorf("payload too large: %d bytes (max 255)", len(payload))
	}

	frame := make([]byte, 0, len(payload)+FrameOverhead)
	frame = append(frame, FrameStart, 0, 0, 0, uint8(len(payload)), frameType)
	frame = append(frame, payload...)
	frame = append(frame, CalculateChecksum(frame))

	return frame, nil
}

// MustEncodeFrame is EncodeFrame for payloads known to fit.
// Panics on encoding error.
func MustEncodeFrame(frameType uint8, payload []byte) []byte {
	frame, err := EncodeFrame(frameType, payload)
	if err != nil {
		panic(fmt.Sprintf("telemetry: encode error: %v", err))
	}
	return frame
}

// EncodeTimestamp builds a timestamp-only IMU frame
func EncodeTimestamp(ts uint32) []byte {
	return MustEncodeFrame(FrameIMUTimestamp, appendUint24(nil, ts))
}

// EncodeAccel builds an accelerometer frame from raw axis readings
func EncodeAccel(ts uint32, raw [3]int16) []byte {
	payload := appendUint24(nil, ts)
	payload = appendAxes(payload, raw)
	return MustEncodeFrame(FrameAccel, payload)
}

// EncodeGyro builds a gyroscope frame from raw axis readings
func EncodeGyro(ts uint32, raw [3]int16) []byte {
	payload := appendUint24(nil, ts)
	payload = appendAxes(payload, raw)
	return MustEncodeFrame(FrameGyro, payload)
}

// EncodeIMU builds a combined accelerometer and gyroscope frame
func EncodeIMU(ts uint32, accel, gyro [3]int16) []byte {
	payload := appendUint24(nil, ts)
	payload = appendAxes(payload, accel)
	payload = appendAxes(payload, gyro)
	return MustEncodeFrame(FrameIMU, payload)
}

// EncodeToF builds an 8x8 ToF frame
func EncodeToF(distance [ToFCells]uint16, confidence [ToFCells]uint8) []byte {
	payload := make([]byte, 0, LengthToF8x8)
	for i := 0; i < ToFCells; i++ {
		payload = binary.LittleEndian.AppendUint16(payload, distance[i])
		payload = append(payload, confidence[i])
	}
	return MustEncodeFrame(FrameToF, payload)
}

func appendUint24(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16))
}

func appendAxes(b []byte, raw [3]int16) []byte {
	for _, v := range raw {
		b = binary.LittleEndian.AppendUint16(b, uint16(v))
	}
	return b
}
