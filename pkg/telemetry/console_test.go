// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConsoleLog_DefaultCapacity(t *testing.T) {
	for _, capacity := range []int{0, -5} {
		c := NewConsoleLog(capacity)
		if c.Cap() != DefaultConsoleCapacity {
			t.Errorf("NewConsoleLog(%d).Cap() = %d, want %d", capacity, c.Cap(), DefaultConsoleCapacity)
		}
	}
}

func TestConsoleLog_FillsInOrder(t *testing.T) {
	c := NewConsoleLog(3)
	c.Append("a")
	c.Append("b")
	if diff := cmp.Diff([]string{"a", "b"}, c.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
	if c.Len() != 2 || c.Total() != 2 {
		t.Errorf("Len()=%d Total()=%d, want 2 2", c.Len(), c.Total())
	}
}

func TestConsoleLog_DropsOldest(t *testing.T) {
	c := NewConsoleLog(3)
	for i := 0; i < 7; i++ {
		c.Append(fmt.Sprintf("line %d", i))
	}
	want := []string{"line 4", "line 5", "line 6"}
	if diff := cmp.Diff(want, c.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	if c.Total() != 7 {
		t.Errorf("Total() = %d, want 7", c.Total())
	}
}

func TestConsoleLog_Last(t *testing.T) {
	c := NewConsoleLog(5)
	for _, s := range []string{"a", "b", "c", "d"} {
		c.Append(s)
	}
	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{}},
		{2, []string{"c", "d"}},
		{10, []string{"a", "b", "c", "d"}},
		{-1, []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, c.Last(tt.n)); diff != "" {
			t.Errorf("Last(%d) mismatch (-want +got):\n%s", tt.n, diff)
		}
	}
}

func TestConsoleLog_Clear(t *testing.T) {
	c := NewConsoleLog(2)
	c.Append("a")
	c.Append("b")
	c.Append("c")
	c.Clear()
	if c.Len() != 0 || c.Total() != 0 || len(c.Lines()) != 0 {
		t.Errorf("Clear() left Len=%d Total=%d Lines=%v", c.Len(), c.Total(), c.Lines())
	}
	c.Append("d")
	if diff := cmp.Diff([]string{"d"}, c.Lines()); diff != "" {
		t.Errorf("Lines() after Clear mismatch (-want +got):\n%s", diff)
	}
}
