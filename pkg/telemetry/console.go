// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

// ConsoleLog keeps the most recent console lines. Once full, each new line
// evicts the oldest one.
type ConsoleLog struct {
	lines []string
	head  int // index of the oldest line
	count int
	total uint64
}

// NewConsoleLog creates a console log holding up to capacity lines.
// A non-positive capacity selects DefaultConsoleCapacity.
func NewConsoleLog(capacity int) *ConsoleLog {
	if capacity <= 0 {
		capacity = DefaultConsoleCapacity
	}
	return &ConsoleLog{lines: make([]string, capacity)}
}

// Append adds a line, dropping the oldest if the log is full
func (c *ConsoleLog) Append(line string) {
	c.total++
	if c.count < len(c.lines) {
		c.lines[(c.head+c.count)%len(c.lines)] = line
		c.count++
		return
	}
	c.lines[c.head] = line
	c.head = (c.head + 1) % len(c.lines)
}

// Lines returns the retained lines from oldest to newest
func (c *ConsoleLog) Lines() []string {
	out := make([]string, c.count)
	for i := 0; i < c.count; i++ {
		out[i] = c.lines[(c.head+i)%len(c.lines)]
	}
	return out
}

// Last returns up to n of the newest lines, oldest first
func (c *ConsoleLog) Last(n int) []string {
	lines := c.Lines()
	if n >= 0 && n < len(lines) {
		return lines[len(lines)-n:]
	}
	return lines
}

// Len returns the number of retained lines
func (c *ConsoleLog) Len() int { return c.count }

// Cap returns the maximum number of retained lines
func (c *ConsoleLog) Cap() int { return len(c.lines) }

// Total returns the number of lines ever appended
func (c *ConsoleLog) Total() uint64 { return c.total }

// Clear removes all lines
func (c *ConsoleLog) Clear() {
	for i := range c.lines {
		c.lines[i] = ""
	}
	c.head = 0
	c.count = 0
	c.total = 0
}
