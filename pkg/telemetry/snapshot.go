// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import "time"

// Vector3 is a three-axis reading in physical units
type Vector3 [3]float32

// X returns the first axis
func (v Vector3) X() float32 { return v[0] }

// Y returns the second axis
func (v Vector3) Y() float32 { return v[1] }

// Z returns the third axis
func (v Vector3) Z() float32 { return v[2] }

// Snapshot holds the most recent decoded value of every telemetry field.
// Fields are only overwritten by successfully decoded frames.
type Snapshot struct {
	IMUTimestamp uint32  // 24-bit device tick
	Accel        Vector3 // g
	Gyro         Vector3 // degrees per second

	ToFDistance    [ToFCells]uint16 // mm, row-major 8x8
	ToFConfidence  [ToFCells]uint8
	ToFMaxDistance uint32

	// Bookkeeping, set by Decode
	LastIMU time.Time
	LastToF time.Time
}

// NewSnapshot returns a snapshot with default values
func NewSnapshot() Snapshot {
	return Snapshot{ToFMaxDistance: DefaultToFMaxDistance}
}

// Reset restores all fields to their defaults
func (s *Snapshot) Reset() {
	*s = NewSnapshot()
}

// Distance returns the distance reading for a grid cell
func (s *Snapshot) Distance(row, col int) uint16 {
	return s.ToFDistance[row*ToFGridSide+col]
}

// Confidence returns the confidence reading for a grid cell
func (s *Snapshot) Confidence(row, col int) uint8 {
	return s.ToFConfidence[row*ToFGridSide+col]
}

// NormalizedDistance returns a cell's distance relative to the grid maximum,
// in [0, 1]
func (s *Snapshot) NormalizedDistance(row, col int) float64 {
	max := s.ToFMaxDistance
	if max == 0 {
		max = DefaultToFMaxDistance
	}
	return float64(s.Distance(row, col)) / float64(max)
}
