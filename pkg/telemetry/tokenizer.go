// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"time"
	"unicode/utf8"
)

// MessageKind identifies what the tokenizer delimited
type MessageKind int

const (
	// MessageText is a console line that decoded as UTF-8
	MessageText MessageKind = iota
	// MessageFrame is a binary frame, not yet checksum-checked
	MessageFrame
	// MessageInvalidText is a console line that was not valid UTF-8
	MessageInvalidText
)

// String returns the kind name
func (k MessageKind) String() string {
	switch k {
	case MessageText:
		return "text"
	case MessageFrame:
		return "frame"
	case MessageInvalidText:
		return "invalid_text"
	default:
		return "unknown"
	}
}

// Message is one unit delimited from the byte stream
type Message struct {
	Kind  MessageKind
	Text  string // MessageText only
	Frame Frame  // MessageFrame only
	Raw   []byte
}

// Tokenizer splits an arbitrarily chunked byte stream into console lines and
// binary frames. Output does not depend on how the stream is chunked.
type Tokenizer struct {
	pending []byte // unfinished message carried from the previous chunk

	inFrame    bool
	frameStart int // offset of the frame marker relative to the current chunk
	haveLength bool
	frameLen   int
}

// NewTokenizer creates a tokenizer in its initial state
func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		pending: make([]byte, 0, MaxFrameSize),
	}
}

// Reset discards any partial line or frame. Call it whenever the underlying
// transport is reopened.
func (t *Tokenizer) Reset() {
	t.pending = t.pending[:0]
	t.inFrame = false
	t.frameStart = 0
	t.haveLength = false
	t.frameLen = 0
}

// Pending returns the number of buffered bytes awaiting a delimiter
func (t *Tokenizer) Pending() int {
	return len(t.pending)
}

// InFrame reports whether a binary frame is partially received
func (t *Tokenizer) InFrame() bool {
	return t.inFrame
}

// Feed scans one chunk and returns every message completed by it. The chunk
// is not retained; callers may reuse its buffer.
func (t *Tokenizer) Feed(chunk []byte) []Message {
	var out []Message
	segStart := 0

	for i, b := range chunk {
		if t.inFrame {
			pos := i - t.frameStart
			if !t.haveLength && pos == FrameLengthOffset {
				t.frameLen = int(b)
				t.haveLength = true
			}
			if t.haveLength && pos+1 >= t.frameLen+FrameOverhead {
				raw := t.take(chunk[segStart : i+1])
				out = append(out, Message{
					Kind:  MessageFrame,
					Frame: Frame{raw: raw, timestamp: time.Now()},
					Raw:   raw,
				})
				t.inFrame = false
				t.haveLength = false
				t.frameLen = 0
				segStart = i + 1
			}
			continue
		}

		if b != LineFeed && b != CarriageReturn && b != FrameStart {
			continue
		}

		body := t.take(chunk[segStart:i])
		if len(body) >= MinLineLength {
			out = append(out, textMessage(body))
		}
		segStart = i + 1

		if b == FrameStart {
			// The marker is the first byte of the frame
			segStart = i
			t.inFrame = true
			t.frameStart = i
			t.haveLength = false
			t.frameLen = 0
		}
	}

	if segStart < len(chunk) {
		t.pending = append(t.pending, chunk[segStart:]...)
	}
	if t.inFrame {
		// Keep the marker offset relative to the next chunk's origin
		t.frameStart -= len(chunk)
	}

	return out
}

// take returns pending ++ part as a fresh slice and clears pending
func (t *Tokenizer) take(part []byte) []byte {
	out := make([]byte, 0, len(t.pending)+len(part))
	out = append(out, t.pending...)
	out = append(out, part...)
	t.pending = t.pending[:0]
	return out
}

func textMessage(body []byte) Message {
	if !utf8.Valid(body) {
		return Message{Kind: MessageInvalidText, Raw: body}
	}
	return Message{Kind: MessageText, Text: string(body), Raw: body}
}
