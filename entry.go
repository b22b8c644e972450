// entry.go: per-key cache entry and its policy-engine linkage
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

import "sync/atomic"

// entryState tracks the lifecycle of a table slot, mirroring the
// teacher's entryEmpty/Valid/Deleted/Pending state machine generalized
// from a flat array slot to a hash-chain node.
type entryState int32

const (
	stateLive entryState = iota
	stateRetired
	stateDead
)

// lruRegion identifies which segmented-LRU region currently owns an
// entry's eviction-order link, spec.md §4.2.
type lruRegion int32

const (
	regionNone lruRegion = iota
	regionWindow
	regionProbation
	regionProtected
)

// expireMode identifies which expiration structure currently owns an
// entry's expiration-order link. At most one applies per entry
// (spec.md invariant 4), following precedence: variable > fixed.
type expireMode int32

const (
	expireNone expireMode = iota
	expireVariable
	expireAfterWrite
	expireAfterAccess
)

// entry is one key/value slot in the table. It is also a node in up to
// two intrusive doubly-linked lists at once: an eviction-order list
// (window/probation/protected) and an expiration-order list (the FIFO
// write queue, the LRU access queue, or a timer-wheel bucket).
//
// Field ordering keeps 64-bit atomics first, matching the teacher's
// alignment discipline for 32-bit architectures.
type entry[K comparable, V any] struct {
	hash       uint64
	writeTime  atomic.Int64 // nanoseconds, set on create/replace
	accessTime atomic.Int64 // nanoseconds, set on create/replace/read
	varDeadline atomic.Int64 // absolute deadline for expireVariable; 0 = unset

	key   K
	value atomic.Pointer[V]

	weight atomic.Int32
	state  atomic.Int32 // entryState

	region     atomic.Int32 // lruRegion
	expireMode atomic.Int32 // expireMode

	refreshing atomic.Bool

	// hNext chains entries within the same table bucket.
	hNext atomic.Pointer[entry[K, V]]

	// eviction-order doubly linked list (protected by the owning
	// region's drain-thread-confined access, per spec.md §4.5).
	evPrev *entry[K, V]
	evNext *entry[K, V]

	// expiration-order doubly linked list: either a position in the
	// write/access queue, or a slot in the timer wheel.
	expPrev *entry[K, V]
	expNext *entry[K, V]

	// wheelLevel/wheelSlot cache this entry's current timer wheel
	// bucket so rescheduling on access can unlink it in O(1).
	wheelLevel int
	wheelSlot  int
}

func newEntry[K comparable, V any](key K, hash uint64, value V, weight int, now int64) *entry[K, V] {
	e := &entry[K, V]{key: key, hash: hash}
	e.value.Store(&value)
	e.weight.Store(int32(weight)) // #nosec G115 - weights are small, caller-supplied
	e.state.Store(int32(stateLive))
	e.region.Store(int32(regionWindow))
	e.expireMode.Store(int32(expireNone))
	e.writeTime.Store(now)
	e.accessTime.Store(now)
	return e
}

func (e *entry[K, V]) loadValue() V {
	return *e.value.Load()
}

func (e *entry[K, V]) storeValue(v V) {
	e.value.Store(&v)
}

func (e *entry[K, V]) isLive() bool {
	return entryState(e.state.Load()) == stateLive
}

func (e *entry[K, V]) markDead() {
	e.state.Store(int32(stateDead))
}
