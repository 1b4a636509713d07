// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"fmt"
	"math"
	"math/rand"
)

// Simulator produces a synthetic board stream: console chatter interleaved
// with IMU and ToF frames, as the firmware emits them with serialisation on
type Simulator struct {
	rng  *rand.Rand
	tick uint32
	step int
}

// NewSimulator creates a deterministic simulator for the given seed
func NewSimulator(seed int64) *Simulator {
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

// Boot returns the console banner the board prints on reset
func (s *Simulator) Boot() []byte {
	return []byte("\r\n*** Booting sensor board ***\r\nimu: lsm6dso ready\r\ntof: vl53l5cx ready (8x8)\r\nuart> ")
}

// Next returns the next slice of stream output
func (s *Simulator) Next() []byte {
	s.step++
	s.tick = (s.tick + 10) & 0xFFFFFF

	phase := float64(s.step) / 20.0
	accel := [3]int16{
		int16(8 * math.Sin(phase)),
		int16(8 * math.Cos(phase)),
		64, // 1 g at rest
	}
	gyro := [3]int16{
		int16(s.rng.Intn(5) - 2),
		int16(s.rng.Intn(5) - 2),
		int16(4 * math.Sin(phase/2)),
	}

	out := EncodeIMU(s.tick, accel, gyro)
	if s.step%10 == 0 {
		out = append(out, s.tofFrame(phase)...)
	}
	if s.step%25 == 0 {
		out = append(out, []byte(fmt.Sprintf("status: tick=%d frames=%d\r\n", s.tick, s.step))...)
	}
	return out
}

func (s *Simulator) tofFrame(phase float64) []byte {
	var dist [ToFCells]uint16
	var conf [ToFCells]uint8
	for row := 0; row < ToFGridSide; row++ {
		for col := 0; col < ToFGridSide; col++ {
			// A slanted wall with a nearby object drifting across it
			d := 400 + 60*row + 10*col
			cx := 3.5 + 3*math.Sin(phase/3)
			if math.Abs(float64(col)-cx) < 1.5 && row >= 2 && row <= 5 {
				d = 180 + s.rng.Intn(20)
			}
			i := row*ToFGridSide + col
			dist[i] = uint16(d)
			conf[i] = uint8(60 + s.rng.Intn(40))
		}
	}
	return EncodeToF(dist, conf)
}
