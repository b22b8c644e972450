// buffers.go: read/write event buffers feeding the maintenance drain
//
// Reads are frequent and the buffer's only job is to let the eviction
// policy know "this was touched" without making every Get pay for a
// pointer-chasing list update; losing an occasional read event under
// heavy contention is an acceptable approximation, so the read buffer is
// a striped, bounded, drop-on-full ring. Writes change what the table
// actually contains, so the write buffer never drops — it grows instead.
//
// Grounded on the teacher's xorshift64 fastRand (reused here as the
// per-goroutine stripe selector) and the sync.Map-based pending-work
// bookkeeping in loading.go's inflight registry, adapted from "coalesce
// concurrent loads" to "coalesce concurrent policy events".
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

import (
	"runtime"
	"sync"
	"sync/atomic"
)

const readBufferStripeCapacity = 256

// readStripe is a single-producer-visible, single-consumer bounded ring.
// Multiple producers share it; overflow is simply dropped.
type readStripe[K comparable, V any] struct {
	mu    sync.Mutex
	items []*entry[K, V]
}

func (s *readStripe[K, V]) record(e *entry[K, V]) {
	s.mu.Lock()
	if len(s.items) < readBufferStripeCapacity {
		s.items = append(s.items, e)
	}
	s.mu.Unlock()
}

func (s *readStripe[K, V]) drain() []*entry[K, V] {
	s.mu.Lock()
	out := s.items
	s.items = nil
	s.mu.Unlock()
	return out
}

// readBuffer stripes access events across multiple rings to reduce
// contention, selecting a stripe per call via a fast xorshift RNG shared
// by all read buffers (one package-level atomic state, seeded with a
// fixed constant).
type readBuffer[K comparable, V any] struct {
	stripes []*readStripe[K, V]
	mask    uint64
}

func newReadBuffer[K comparable, V any]() *readBuffer[K, V] {
	n := nextPowerOf2(runtime.GOMAXPROCS(0) * 2)
	if n < 4 {
		n = 4
	}
	stripes := make([]*readStripe[K, V], n)
	for i := range stripes {
		stripes[i] = &readStripe[K, V]{}
	}
	return &readBuffer[K, V]{stripes: stripes, mask: uint64(n - 1)}
}

var stripeRNG atomic.Uint64

func init() {
	stripeRNG.Store(0x9e3779b97f4a7c15)
}

func nextStripeIndex(mask uint64) uint64 {
	for {
		old := stripeRNG.Load()
		x := old
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		if stripeRNG.CompareAndSwap(old, x) {
			return x & mask
		}
	}
}

// Record notes that e was touched. May silently drop under contention.
func (b *readBuffer[K, V]) Record(e *entry[K, V]) {
	b.stripes[nextStripeIndex(b.mask)].record(e)
}

// Drain returns and clears every buffered access event.
func (b *readBuffer[K, V]) Drain() []*entry[K, V] {
	var out []*entry[K, V]
	for _, s := range b.stripes {
		out = append(out, s.drain()...)
	}
	return out
}

// writeTaskKind distinguishes the write-buffer event types the drain
// pipeline applies to policy state.
type writeTaskKind int

const (
	writeTaskAdd writeTaskKind = iota
	writeTaskUpdate
	writeTaskRemove
)

// writeTask is one pending mutation for the drain to fold into the
// eviction/expiration structures. weightDelta carries an in-place weight
// change for writeTaskUpdate (Compute's update path mutates an existing
// entry rather than replacing it, so the eviction region weight totals
// need an explicit adjustment instead of a fresh onAdd).
type writeTask[K comparable, V any] struct {
	kind        writeTaskKind
	entry       *entry[K, V]
	weightDelta int64
}

// writeBuffer is an unbounded MPSC queue: concurrent Put/Remove/Compute
// callers append; only the goroutine running the drain ever calls Drain.
type writeBuffer[K comparable, V any] struct {
	mu    sync.Mutex
	tasks []writeTask[K, V]
}

func newWriteBuffer[K comparable, V any]() *writeBuffer[K, V] {
	return &writeBuffer[K, V]{}
}

func (b *writeBuffer[K, V]) Add(t writeTask[K, V]) {
	b.mu.Lock()
	b.tasks = append(b.tasks, t)
	b.mu.Unlock()
}

func (b *writeBuffer[K, V]) Drain() []writeTask[K, V] {
	b.mu.Lock()
	out := b.tasks
	b.tasks = nil
	b.mu.Unlock()
	return out
}
