// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Capture files are a CBOR sequence: one CaptureHeader followed by one
// CaptureChunk per transport read. Chunk boundaries are preserved exactly.
const (
	CaptureMagic   = "tofscope-capture"
	CaptureVersion = 1
)

// CaptureHeader is the first item of a capture file
type CaptureHeader struct {
	Magic   string `cbor:"0,keyasint"`
	Version uint   `cbor:"1,keyasint"`
	Source  string `cbor:"2,keyasint,omitempty"`
	Started int64  `cbor:"3,keyasint"` // unix nanoseconds
}

// CaptureChunk is one transport read
type CaptureChunk struct {
	Time int64  `cbor:"0,keyasint"` // unix nanoseconds
	Data []byte `cbor:"1,keyasint"`
}

// Timestamp returns the chunk's receive time
func (c CaptureChunk) Timestamp() time.Time {
	return time.Unix(0, c.Time)
}

// CaptureWriter records transport reads
type CaptureWriter struct {
	enc *cbor.Encoder
}

// NewCaptureWriter writes the capture header and returns a writer
func NewCaptureWriter(w io.Writer, source string) (*CaptureWriter, error) {
	enc := cbor.NewEncoder(w)
	header := CaptureHeader{
		Magic:   CaptureMagic,
		Version: CaptureVersion,
		Source:  source,
		Started: time.Now().UnixNano(),
	}
	if err := enc.Encode(header); err != nil {
		return nil, fmt.Errorf("failed to write capture header: %w", err)
	}
	return &CaptureWriter{enc: enc}, nil
}

// WriteChunk records one read. Empty reads are recorded too.
func (c *CaptureWriter) WriteChunk(at time.Time, data []byte) error {
	rec := CaptureChunk{Time: at.UnixNano(), Data: data}
	if err := c.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to write capture chunk: %w", err)
	}
	return nil
}

// CaptureReader reads a capture file
type CaptureReader struct {
	dec    *cbor.Decoder
	header CaptureHeader
}

// NewCaptureReader reads and validates the capture header
func NewCaptureReader(r io.Reader) (*CaptureReader, error) {
	dec := cbor.NewDecoder(r)
	var header CaptureHeader
	if err := dec.Decode(&header); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty capture file")
		}
		return nil, fmt.Errorf("failed to read capture header: %w", err)
	}
	if header.Magic != CaptureMagic {
		return nil, fmt.Errorf("not a capture file (magic %q)", header.Magic)
	}
	if header.Version != CaptureVersion {
		return nil, fmt.Errorf("unsupported capture version %d", header.Version)
	}
	return &CaptureReader{dec: dec, header: header}, nil
}

// Header returns the capture header
func (c *CaptureReader) Header() CaptureHeader {
	return c.header
}

// Next returns the next chunk, or io.EOF after the last one
func (c *CaptureReader) Next() (CaptureChunk, error) {
	var rec CaptureChunk
	if err := c.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return CaptureChunk{}, io.EOF
		}
		return CaptureChunk{}, fmt.Errorf("failed to read capture chunk: %w", err)
	}
	return rec, nil
}
