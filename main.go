// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// tofscope - IMU and ToF Sensor Board Monitor
//
// A CLI tool for monitoring a sensor board that interleaves console text
// with binary IMU and time-of-flight telemetry frames on one stream.

package main

import (
	"os"

	"github.com/Thermoquad/tofscope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
