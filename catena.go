// catena.go: package-level tunables for the W-TinyLFU policy engine
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

// Version is the current catena module version.
const Version = "0.1.0"

// Defaults applied by Config.Validate / DefaultConfig when the caller
// leaves a field at its zero value.
const (
	// DefaultMaximumSize bounds a Config with neither MaximumSize nor
	// MaximumWeight set.
	DefaultMaximumSize = 10_000

	// DefaultInitialCapacity sizes a new table's bucket array.
	DefaultInitialCapacity = 16
)

// Segmented-LRU region sizing, spec.md §4.2.
const (
	// WindowRatio is the fraction of MaximumSize/MaximumWeight held in the
	// admission window region. New entries always enter here.
	WindowRatio = 0.01

	// ProtectedRatio is the fraction of the *main* space (total minus
	// window) reserved for the protected region; the remainder is
	// probation. An entry promotes from probation to protected on its
	// second access.
	ProtectedRatio = 0.80
)

// admissionTieBreakPct is the probability, out of 100, that a candidate
// with an estimated frequency equal to the probation victim's is admitted
// anyway. Kept at the top of spec.md's "at most 1%" allowance so ties do
// not systematically favor incumbents forever.
const admissionTieBreakPct = 1

// Count-min sketch sizing, spec.md §4.2.
const (
	// counterBitsDefault is the width of each saturating counter lane.
	counterBitsDefault = 4

	// sketchResetSampleMultiplier ties the sketch's halving threshold to
	// the configured capacity: reset once total increments reach this
	// multiple of the capacity, matching the "periodic halving" policy.
	sketchResetSampleMultiplier = 10
)

// Hierarchical timer wheel spans, spec.md §4.3. Each level's slot
// duration is 64 times the level below it, so levels 0-3 cover delays up
// to 2^54 ns (~208d); anything later goes to the catch-all level 4.
const (
	wheelLevel0SlotNanos = 1_073_741_824         // ~1.07s (2^30 ns), 64 slots
	wheelLevel1SlotNanos = wheelLevel0SlotNanos * 64  // ~1.14m (2^36 ns), 64 slots
	wheelLevel2SlotNanos = wheelLevel1SlotNanos * 64  // ~1.22h (2^42 ns), 64 slots
	wheelLevel3SlotNanos = wheelLevel2SlotNanos * 64  // ~3.26d (2^48 ns), 64 slots
	wheelLevel4SlotNanos = wheelLevel3SlotNanos * 64  // ~208d (2^54 ns), catch-all level; locate only uses slot 0

	wheelSlotsPerLevel = 64
	wheelLevels        = 5
)
