// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

// telemetryFields strips bookkeeping times so snapshots from different runs
// can be compared
func telemetryFields(s Snapshot) Snapshot {
	s.LastIMU = time.Time{}
	s.LastToF = time.Time{}
	return s
}

func simulatedStream(steps int) []byte {
	sim := NewSimulator(1)
	var b bytes.Buffer
	b.Write(sim.Boot())
	for i := 0; i < steps; i++ {
		b.Write(sim.Next())
	}
	return b.Bytes()
}

func TestSession_TextAndFrames(t *testing.T) {
	s := NewSession()
	var stream bytes.Buffer
	stream.WriteString("hello\r\n")
	stream.Write(EncodeTimestamp(0x030201))
	stream.Write(EncodeAccel(1, [3]int16{0, 128, 256}))
	stream.WriteString("done\n")

	events := s.Feed(stream.Bytes())
	kinds := make([]EventKind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	want := []EventKind{EventText, EventFrame, EventFrame, EventText}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("event kinds mismatch (-want +got):\n%s", diff)
	}

	snap := s.Snapshot()
	if snap.IMUTimestamp != 1 {
		t.Errorf("IMUTimestamp = %d, want 1 (from the accel frame)", snap.IMUTimestamp)
	}
	if want := (Vector3{0, 2, 4}); snap.Accel != want {
		t.Errorf("Accel = %v, want %v", snap.Accel, want)
	}
	if diff := cmp.Diff([]string{"hello", "done"}, s.Console().Lines()); diff != "" {
		t.Errorf("console mismatch (-want +got):\n%s", diff)
	}

	stats := s.Stats()
	if stats.Lines != 2 || stats.Frames != 2 || stats.DecodedFrames != 2 {
		t.Errorf("stats lines=%d frames=%d decoded=%d, want 2 2 2", stats.Lines, stats.Frames, stats.DecodedFrames)
	}
	if stats.BytesFed != uint64(stream.Len()) {
		t.Errorf("BytesFed = %d, want %d", stats.BytesFed, stream.Len())
	}
}

func TestSession_CorruptChecksumNeverDecoded(t *testing.T) {
	good := EncodeTimestamp(0x000111)
	for bit := 0; bit < 8; bit++ {
		s := NewSession()
		before := s.Snapshot()

		corrupted := append([]byte(nil), good...)
		corrupted[len(corrupted)-1] ^= 1 << bit

		events := s.Feed(corrupted)
		if len(events) != 1 || events[0].Kind != EventDropped {
			t.Fatalf("bit %d: expected one dropped event, got %+v", bit, events)
		}
		if !errors.Is(events[0].Err, ErrChecksum) {
			t.Errorf("bit %d: error = %v, want ErrChecksum", bit, events[0].Err)
		}
		if s.Snapshot() != before {
			t.Errorf("bit %d: snapshot mutated by corrupt frame", bit)
		}
		if s.Stats().ChecksumErrors != 1 {
			t.Errorf("bit %d: ChecksumErrors = %d, want 1", bit, s.Stats().ChecksumErrors)
		}
	}
}

func TestSession_CorruptFrameDoesNotDisturbStream(t *testing.T) {
	bad := EncodeTimestamp(5)
	bad[7] ^= 0x40
	var stream bytes.Buffer
	stream.Write(bad)
	stream.WriteString("still here\n")
	stream.Write(EncodeTimestamp(6))

	s := NewSession()
	events := s.Feed(stream.Bytes())
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Kind != EventDropped || events[1].Kind != EventText || events[2].Kind != EventFrame {
		t.Errorf("unexpected events: %+v", events)
	}
	if s.Snapshot().IMUTimestamp != 6 {
		t.Errorf("IMUTimestamp = %d, want 6", s.Snapshot().IMUTimestamp)
	}
}

func TestSession_InvalidLineLogged(t *testing.T) {
	var logBuf bytes.Buffer
	logger := zerolog.New(&logBuf)
	s := NewSession(WithLogger(logger))

	events := s.Feed([]byte{'o', 'k', 0xFF, '\n', 'f', 'i', 'n', 'e', '\n'})
	if len(events) != 2 || events[0].Kind != EventDropped || events[1].Kind != EventText {
		t.Fatalf("unexpected events: %+v", events)
	}
	if !strings.Contains(logBuf.String(), "not valid UTF-8") {
		t.Errorf("expected warning in log, got %q", logBuf.String())
	}
	if s.Stats().InvalidLines != 1 {
		t.Errorf("InvalidLines = %d, want 1", s.Stats().InvalidLines)
	}
	if diff := cmp.Diff([]string{"fine"}, s.Console().Lines()); diff != "" {
		t.Errorf("console mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_ChunkingDoesNotChangeResult(t *testing.T) {
	stream := simulatedStream(200)

	whole := NewSession(WithConsoleCapacity(100))
	whole.Feed(stream)
	want := telemetryFields(whole.Snapshot())
	wantConsole := whole.Console().Lines()

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		s := NewSession(WithConsoleCapacity(100))
		for pos := 0; pos < len(stream); {
			n := rng.Intn(1000) // zero-length reads included
			if pos+n > len(stream) {
				n = len(stream) - pos
			}
			s.Feed(stream[pos : pos+n])
			pos += n
		}
		if got := telemetryFields(s.Snapshot()); got != want {
			t.Fatalf("round %d: snapshot differs from single-chunk result", round)
		}
		if diff := cmp.Diff(wantConsole, s.Console().Lines()); diff != "" {
			t.Fatalf("round %d: console mismatch (-want +got):\n%s", round, diff)
		}
		if s.Stats().DecodedFrames != whole.Stats().DecodedFrames {
			t.Fatalf("round %d: decoded %d frames, want %d", round, s.Stats().DecodedFrames, whole.Stats().DecodedFrames)
		}
	}
}

func TestSession_ResetDiscardsPartialFrame(t *testing.T) {
	s := NewSession()
	frame := EncodeTimestamp(0x42)
	s.Feed(frame[:6])

	s.Reset()
	events := s.Feed([]byte("reconnected\n"))
	if len(events) != 1 || events[0].Kind != EventText || events[0].Text != "reconnected" {
		t.Fatalf("unexpected events after Reset: %+v", events)
	}
}

func TestSession_ResetKeepsTelemetry(t *testing.T) {
	s := NewSession()
	s.Feed(EncodeTimestamp(0x42))
	s.Feed([]byte("line one\n"))
	s.Reset()
	if s.Snapshot().IMUTimestamp != 0x42 {
		t.Errorf("Reset cleared the snapshot")
	}
	if s.Console().Len() != 1 {
		t.Errorf("Reset cleared the console")
	}

	s.ResetAll()
	if s.Snapshot() != NewSnapshot() {
		t.Errorf("ResetAll left snapshot %+v", s.Snapshot())
	}
	if s.Console().Len() != 0 || s.Stats().Frames != 0 {
		t.Errorf("ResetAll left console=%d frames=%d", s.Console().Len(), s.Stats().Frames)
	}
}

func TestSession_ConsoleCapacity(t *testing.T) {
	s := NewSession(WithConsoleCapacity(2))
	s.Feed([]byte("one\ntwo\nthree\n"))
	if diff := cmp.Diff([]string{"two", "three"}, s.Console().Lines()); diff != "" {
		t.Errorf("console mismatch (-want +got):\n%s", diff)
	}
	if s.Console().Total() != 3 {
		t.Errorf("Total() = %d, want 3", s.Console().Total())
	}
}

func TestSession_DropReasonsCounted(t *testing.T) {
	s := NewSession()
	var stream bytes.Buffer
	stream.Write(MustEncodeFrame(0x42, []byte{1}))
	stream.Write(MustEncodeFrame(FrameToF, make([]byte, LengthToF4x4)))
	stream.Write(MustEncodeFrame(FrameAccel, make([]byte, 4)))
	s.Feed(stream.Bytes())

	stats := s.Stats()
	if stats.UnknownTypes != 1 || stats.UnsupportedToF != 1 || stats.LengthErrors != 1 {
		t.Errorf("unknown=%d unsupported=%d length=%d, want 1 1 1",
			stats.UnknownTypes, stats.UnsupportedToF, stats.LengthErrors)
	}
	if stats.Errors() != 3 {
		t.Errorf("Errors() = %d, want 3", stats.Errors())
	}
	if !strings.Contains(stats.String(), "Unknown Types:") {
		t.Errorf("String() missing unknown types line:\n%s", stats.String())
	}
}
