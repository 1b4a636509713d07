// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"fmt"

	"github.com/rs/zerolog"
)

// EventKind identifies the outcome of a delimited message
type EventKind int

const (
	// EventText is a console line appended to the console log
	EventText EventKind = iota
	// EventFrame is a frame that was decoded into the snapshot
	EventFrame
	// EventDropped is a line or frame that was discarded
	EventDropped
)

// Event reports what happened to one delimited message
type Event struct {
	Kind  EventKind
	Text  string
	Frame Frame
	Err   error // EventDropped only
}

// Session owns all per-connection stream state: the tokenizer, the
// telemetry snapshot, the console log and statistics. It is not safe for
// concurrent use.
type Session struct {
	tokenizer *Tokenizer
	snapshot  Snapshot
	console   *ConsoleLog
	stats     *Statistics
	logger    zerolog.Logger
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithLogger sets the diagnostic logger
func WithLogger(l zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// WithConsoleCapacity sets how many console lines are retained
func WithConsoleCapacity(n int) SessionOption {
	return func(s *Session) {
		s.console = NewConsoleLog(n)
	}
}

// NewSession creates a session with an empty snapshot
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		tokenizer: NewTokenizer(),
		snapshot:  NewSnapshot(),
		console:   NewConsoleLog(DefaultConsoleCapacity),
		stats:     NewStatistics(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Feed processes one chunk read from the transport. Malformed lines and
// frames are dropped and reported as EventDropped; Feed never fails.
func (s *Session) Feed(chunk []byte) []Event {
	s.stats.AddBytes(len(chunk))
	msgs := s.tokenizer.Feed(chunk)
	if len(msgs) == 0 {
		return nil
	}

	events := make([]Event, 0, len(msgs))
	for _, m := range msgs {
		events = append(events, s.handle(m))
	}
	return events
}

func (s *Session) handle(m Message) Event {
	switch m.Kind {
	case MessageText:
		s.stats.RecordLine(true)
		s.console.Append(m.Text)
		return Event{Kind: EventText, Text: m.Text}

	case MessageInvalidText:
		s.stats.RecordLine(false)
		s.logger.Warn().
			Int("length", len(m.Raw)).
			Hex("raw", m.Raw).
			Msg("dropping console line that is not valid UTF-8")
		return Event{Kind: EventDropped, Err: fmt.Errorf("invalid UTF-8 in %d byte line", len(m.Raw))}

	case MessageFrame:
		err := s.processFrame(m.Frame)
		s.stats.RecordFrame(m.Frame, err)
		if err != nil {
			s.logger.Debug().
				Err(err).
				Uint8("frame_type", m.Frame.Type()).
				Uint8("length", m.Frame.Length()).
				Msg("dropping frame")
			return Event{Kind: EventDropped, Frame: m.Frame, Err: err}
		}
		return Event{Kind: EventFrame, Frame: m.Frame}
	}

	return Event{Kind: EventDropped, Err: fmt.Errorf("unknown message kind %d", m.Kind)}
}

func (s *Session) processFrame(f Frame) error {
	if !f.Valid() {
		return fmt.Errorf("%w: frame XORs to 0x%02X", ErrChecksum, CalculateChecksum(f.raw))
	}
	return Decode(f, &s.snapshot)
}

// Reset discards partial stream state. Call it after the transport has been
// reopened; the snapshot, console log and statistics are kept.
func (s *Session) Reset() {
	s.tokenizer.Reset()
}

// ResetAll discards all stream state, telemetry and history
func (s *Session) ResetAll() {
	s.tokenizer.Reset()
	s.snapshot.Reset()
	s.console.Clear()
	s.stats.Reset()
}

// Snapshot returns a copy of the current telemetry
func (s *Session) Snapshot() Snapshot {
	return s.snapshot
}

// Console returns the console log
func (s *Session) Console() *ConsoleLog {
	return s.console
}

// Stats returns the session statistics
func (s *Session) Stats() *Statistics {
	return s.stats
}

// Tokenizer returns the session's tokenizer
func (s *Session) Tokenizer() *Tokenizer {
	return s.tokenizer
}
