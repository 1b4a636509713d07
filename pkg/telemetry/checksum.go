// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

// CalculateChecksum returns the XOR of all bytes in data
func CalculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// ValidChecksum reports whether a complete frame, checksum byte included,
// XORs to zero
func ValidChecksum(frame []byte) bool {
	return CalculateChecksum(frame) == 0
}
