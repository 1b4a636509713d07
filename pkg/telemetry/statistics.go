// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks stream throughput and drop counts
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	BytesFed       uint64
	Lines          uint64
	InvalidLines   uint64
	Frames         uint64
	DecodedFrames  uint64
	ChecksumErrors uint64
	UnknownTypes   uint64
	LengthErrors   uint64
	UnsupportedToF uint64
	FramesByType   map[uint8]uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
		FramesByType:   make(map[uint8]uint64),
	}
}

// AddBytes records n bytes handed to the tokenizer
func (s *Statistics) AddBytes(n int) {
	s.BytesFed += uint64(n)
}

// RecordLine records a delimited console line
func (s *Statistics) RecordLine(valid bool) {
	if valid {
		s.Lines++
	} else {
		s.InvalidLines++
	}
	s.LastUpdateTime = time.Now()
}

// RecordFrame records a delimited frame and the outcome of checking and
// decoding it
func (s *Statistics) RecordFrame(f Frame, err error) {
	s.Frames++
	s.LastUpdateTime = time.Now()

	switch {
	case err == nil:
		s.DecodedFrames++
		s.FramesByType[f.Type()]++
	case errors.Is(err, ErrChecksum):
		s.ChecksumErrors++
	case errors.Is(err, ErrUnknownFrameType):
		s.UnknownTypes++
	case errors.Is(err, ErrUnsupportedGrid):
		s.UnsupportedToF++
	case errors.Is(err, ErrLengthMismatch), errors.Is(err, ErrShortFrame):
		s.LengthErrors++
	}
}

// Errors returns the total number of dropped lines and frames
func (s *Statistics) Errors() uint64 {
	return s.InvalidLines + s.ChecksumErrors + s.UnknownTypes + s.LengthErrors + s.UnsupportedToF
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.DecodedFrames) / elapsed
		s.ErrorRate = float64(s.Errors()) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent, checksumPercent float64
	if s.Frames > 0 {
		validPercent = float64(s.DecodedFrames) * 100.0 / float64(s.Frames)
		checksumPercent = float64(s.ChecksumErrors) * 100.0 / float64(s.Frames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Bytes:           %8d\n", s.BytesFed)
	result += fmt.Sprintf("Console Lines:   %8d\n", s.Lines)
	if s.InvalidLines > 0 {
		result += fmt.Sprintf("Invalid Lines:   %8d\n", s.InvalidLines)
	}
	result += fmt.Sprintf("Frames:          %8d\n", s.Frames)
	result += fmt.Sprintf("Decoded Frames:  %8d (%.1f%%)\n", s.DecodedFrames, validPercent)

	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d (%.1f%%)\n", s.ChecksumErrors, checksumPercent)
	}
	if s.UnknownTypes > 0 {
		result += fmt.Sprintf("Unknown Types:   %8d\n", s.UnknownTypes)
	}
	if s.LengthErrors > 0 {
		result += fmt.Sprintf("Length Errors:   %8d\n", s.LengthErrors)
	}
	if s.UnsupportedToF > 0 {
		result += fmt.Sprintf("4x4 ToF Grids:   %8d\n", s.UnsupportedToF)
	}
	for _, t := range []uint8{FrameIMUTimestamp, FrameAccel, FrameGyro, FrameIMU, FrameToF} {
		if n := s.FramesByType[t]; n > 0 {
			result += fmt.Sprintf("  %-14s %6d\n", FormatFrameType(t)+":", n)
		}
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
