// sketch_test.go: unit tests for the count-min frequency sketch
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

import "testing"

func TestNewFrequencySketch(t *testing.T) {
	tests := []struct {
		name    string
		maxSize int64
		wantMin int
	}{
		{"small size", 100, 64},
		{"medium size", 1000, 64},
		{"large size", 10_000, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sketch := newFrequencySketch(tt.maxSize)
			if len(sketch.table) < tt.wantMin {
				t.Errorf("table size %d < minimum %d", len(sketch.table), tt.wantMin)
			}
			tableSize := len(sketch.table)
			if tableSize&(tableSize-1) != 0 {
				t.Errorf("table size %d is not a power of 2", tableSize)
			}
			if sketch.tableMask != uint64(tableSize-1) {
				t.Errorf("tableMask %d != %d", sketch.tableMask, tableSize-1)
			}
		})
	}
}

func TestNextPowerOf2(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {4, 4},
		{5, 8}, {8, 8}, {9, 16}, {15, 16}, {16, 16},
		{17, 32}, {1000, 1024},
	}

	for _, tt := range tests {
		got := nextPowerOf2(tt.input)
		if got != tt.expected {
			t.Errorf("nextPowerOf2(%d) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestFrequencySketchIncrementAndEstimate(t *testing.T) {
	sketch := newFrequencySketch(1000)
	key := hashKey("hot-key")

	if got := sketch.estimate(key); got != 0 {
		t.Fatalf("expected 0 before any increment, got %d", got)
	}

	for i := 0; i < 5; i++ {
		sketch.increment(key)
	}

	if got := sketch.estimate(key); got != 5 {
		t.Fatalf("expected estimate 5 after 5 increments, got %d", got)
	}
}

func TestFrequencySketchSaturatesAt15(t *testing.T) {
	sketch := newFrequencySketch(1000)
	key := hashKey("saturating-key")

	for i := 0; i < 100; i++ {
		sketch.increment(key)
	}

	if got := sketch.estimate(key); got != 15 {
		t.Fatalf("expected counter to saturate at 15, got %d", got)
	}
}

func TestFrequencySketchDistinguishesHotFromCold(t *testing.T) {
	sketch := newFrequencySketch(10_000)
	hot := hashKey("hot")
	cold := hashKey("cold")

	for i := 0; i < 10; i++ {
		sketch.increment(hot)
	}
	sketch.increment(cold)

	if sketch.estimate(hot) <= sketch.estimate(cold) {
		t.Fatalf("expected hot key estimate > cold key estimate: hot=%d cold=%d",
			sketch.estimate(hot), sketch.estimate(cold))
	}
}

func TestFrequencySketchResetHalvesCounters(t *testing.T) {
	sketch := newFrequencySketch(1000)
	key := hashKey("aging-key")

	for i := 0; i < 8; i++ {
		sketch.increment(key)
	}
	before := sketch.estimate(key)

	sketch.reset()

	after := sketch.estimate(key)
	if after >= before {
		t.Fatalf("expected reset to halve counters: before=%d after=%d", before, after)
	}
}

func TestHashKeyStableAcrossCalls(t *testing.T) {
	if hashKey("same-input") != hashKey("same-input") {
		t.Fatal("expected hashKey to be deterministic for the same input")
	}
	if hashKey(42) == hashKey(43) {
		t.Fatal("expected distinct ints to hash differently (with overwhelming probability)")
	}
}
