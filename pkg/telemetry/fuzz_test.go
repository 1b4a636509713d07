// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 500
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 500
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// randomWellFormedStream builds a stream of printable lines and valid frames
func randomWellFormedStream(rng *rand.Rand) []byte {
	var b bytes.Buffer
	for i := rng.Intn(20); i >= 0; i-- {
		switch rng.Intn(5) {
		case 0:
			line := make([]byte, rng.Intn(40))
			for j := range line {
				line[j] = byte(' ' + rng.Intn(95))
			}
			b.Write(line)
			b.WriteString([]string{"\n", "\r", "\r\n"}[rng.Intn(3)])
		case 1:
			b.Write(EncodeTimestamp(rng.Uint32() & 0xFFFFFF))
		case 2:
			b.Write(EncodeIMU(rng.Uint32()&0xFFFFFF,
				[3]int16{int16(rng.Int()), int16(rng.Int()), int16(rng.Int())},
				[3]int16{int16(rng.Int()), int16(rng.Int()), int16(rng.Int())}))
		case 3:
			var dist [ToFCells]uint16
			var conf [ToFCells]uint8
			for j := range dist {
				dist[j] = uint16(rng.Intn(4000))
				conf[j] = uint8(rng.Intn(256))
			}
			b.Write(EncodeToF(dist, conf))
		case 4:
			payload := make([]byte, rng.Intn(32))
			rng.Read(payload)
			b.Write(MustEncodeFrame(uint8(rng.Intn(256)), payload))
		}
	}
	return b.Bytes()
}

// feedRandomChunks feeds data in random chunk sizes, zero included
func feedRandomChunks(rng *rand.Rand, data []byte) []token {
	tok := NewTokenizer()
	var out []Message
	for pos := 0; pos < len(data); {
		n := rng.Intn(64)
		if pos+n > len(data) {
			n = len(data) - pos
		}
		out = append(out, tok.Feed(data[pos:pos+n])...)
		pos += n
	}
	return tokens(out)
}

// ============================================================
// Tokenizer Fuzz Tests
// ============================================================

func TestFuzz_TokenizerRandomBytes(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for round := 0; round < rounds; round++ {
		data := make([]byte, rng.Intn(1024))
		rng.Read(data)

		// Bias towards structural bytes so frames and lines actually form
		for i := range data {
			switch rng.Intn(16) {
			case 0:
				data[i] = FrameStart
			case 1:
				data[i] = LineFeed
			case 2:
				data[i] = CarriageReturn
			}
		}

		whole := feedChunks(data, len(data)+1)
		chunked := feedRandomChunks(rng, data)
		if diff := cmp.Diff(whole, chunked); diff != "" {
			t.Fatalf("round %d: chunking changed tokens (-whole +chunked):\n%s", round, diff)
		}

		s := NewSession()
		s.Feed(data)
		if s.Stats().Frames+s.Stats().Lines+s.Stats().InvalidLines != uint64(len(whole)) {
			t.Fatalf("round %d: stats do not account for every message", round)
		}
	}
}

func TestFuzz_TokenizerWellFormedStreams(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for round := 0; round < rounds; round++ {
		data := randomWellFormedStream(rng)
		want := feedChunks(data, len(data)+1)

		for _, tk := range want {
			if tk.Kind == MessageFrame && !ValidChecksum(tk.Raw) {
				t.Fatalf("round %d: well-formed stream produced a bad frame % X", round, tk.Raw)
			}
			if tk.Kind == MessageInvalidText {
				t.Fatalf("round %d: printable line reported invalid: %q", round, tk.Raw)
			}
		}

		if diff := cmp.Diff(want, feedRandomChunks(rng, data)); diff != "" {
			t.Fatalf("round %d: chunking changed tokens (-whole +chunked):\n%s", round, diff)
		}
	}
}

// ============================================================
// Decoder Fuzz Tests
// ============================================================

func TestFuzz_DecodeRandomFrames(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for round := 0; round < rounds; round++ {
		frameType := uint8(rng.Intn(6))
		payload := make([]byte, rng.Intn(256))
		rng.Read(payload)
		raw := MustEncodeFrame(frameType, payload)
		if rng.Intn(4) == 0 {
			raw = raw[:rng.Intn(len(raw))]
		}

		s := NewSnapshot()
		s.IMUTimestamp = 1234
		before := s

		if err := DecodeBytes(raw, &s); err != nil && s != before {
			t.Fatalf("round %d: failed decode (%v) mutated the snapshot", round, err)
		}
	}
}
