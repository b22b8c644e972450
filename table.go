// table.go: sharded concurrent hash table substrate
//
// Reads walk a bucket's hash chain through plain atomic pointer loads
// and never block; mutations take the owning shard's mutex. Each shard
// also tracks which goroutine, if any, is currently inside a compute
// family call on it, so a reentrant computeIfAbsent/compute/merge can be
// rejected instead of deadlocking.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

import (
	"bytes"
	"reflect"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// shardLoadFactor triggers a shard's bucket array to double once its
// entry count exceeds this multiple of the bucket count.
const shardLoadFactor = 2

// bucketSet pairs a shard's bucket array with the mask that indexes it.
// The two are always published together behind a single atomic pointer
// so a lock-free reader can never observe one half of a resize without
// the other: loading a stale buckets slice alongside a fresh, wider
// mask would index out of range.
type bucketSet[K comparable, V any] struct {
	buckets []atomic.Pointer[entry[K, V]]
	mask    uint64
}

type shard[K comparable, V any] struct {
	mu    sync.Mutex
	set   atomic.Pointer[bucketSet[K, V]]
	count atomic.Int64
	owner atomic.Int64 // goroutine id inside a compute call on this shard, 0 = free
}

// table is the generic sharded hash table backing Cache[K, V].
type table[K comparable, V any] struct {
	shards    []*shard[K, V]
	shardMask uint64
	size      atomic.Int64
}

func newTable[K comparable, V any](initialCapacity int) *table[K, V] {
	shardCount := nextPowerOf2(runtime.GOMAXPROCS(0) * 4)
	if shardCount < 16 {
		shardCount = 16
	}
	bucketsPerShard := nextPowerOf2(initialCapacity / shardCount)
	if bucketsPerShard < 8 {
		bucketsPerShard = 8
	}

	shards := make([]*shard[K, V], shardCount)
	for i := range shards {
		sh := &shard[K, V]{}
		sh.set.Store(&bucketSet[K, V]{
			buckets: make([]atomic.Pointer[entry[K, V]], bucketsPerShard),
			mask:    uint64(bucketsPerShard - 1),
		})
		shards[i] = sh
	}
	return &table[K, V]{shards: shards, shardMask: uint64(shardCount - 1)}
}

func (t *table[K, V]) shardFor(hash uint64) *shard[K, V] {
	return t.shards[(hash>>48)&t.shardMask]
}

func (s *shard[K, V]) headPtr(hash uint64) *atomic.Pointer[entry[K, V]] {
	set := s.set.Load()
	return &set.buckets[hash&set.mask]
}

// find walks hash's bucket chain without locking, returning the first
// live entry matching key.
func (s *shard[K, V]) find(hash uint64, key K) *entry[K, V] {
	for e := s.headPtr(hash).Load(); e != nil; e = e.hNext.Load() {
		if e.hash == hash && e.key == key {
			if e.isLive() {
				return e
			}
			return nil
		}
	}
	return nil
}

// Get returns the live entry for key, if any. Lock-free.
func (t *table[K, V]) Get(hash uint64, key K) *entry[K, V] {
	return t.shardFor(hash).find(hash, key)
}

// Len returns the total number of live entries across all shards.
func (t *table[K, V]) Len() int64 {
	return t.size.Load()
}

// Insert unconditionally stores e, replacing and returning any prior
// live entry for the same key (for the caller to unlink from the policy
// engine's lists and notify as Replaced).
func (t *table[K, V]) Insert(e *entry[K, V]) (prior *entry[K, V]) {
	s := t.shardFor(e.hash)
	s.mu.Lock()
	defer s.mu.Unlock()

	head := s.headPtr(e.hash)
	for cur := head.Load(); cur != nil; cur = cur.hNext.Load() {
		if cur.hash == e.hash && cur.key == e.key {
			if cur.isLive() {
				prior = cur
			}
			cur.markDead()
			break
		}
	}

	e.hNext.Store(head.Load())
	head.Store(e)
	if prior == nil {
		s.count.Add(1)
		t.size.Add(1)
		t.maybeResize(s)
	}
	return prior
}

// Remove marks key's entry dead and unlinks it, returning it if present.
func (t *table[K, V]) Remove(hash uint64, key K) *entry[K, V] {
	s := t.shardFor(hash)
	s.mu.Lock()
	defer s.mu.Unlock()

	head := s.headPtr(hash)
	var prev *atomic.Pointer[entry[K, V]] = head
	for cur := head.Load(); cur != nil; cur = cur.hNext.Load() {
		if cur.hash == hash && cur.key == key {
			if !cur.isLive() {
				return nil
			}
			prev.Store(cur.hNext.Load())
			cur.markDead()
			s.count.Add(-1)
			t.size.Add(-1)
			return cur
		}
		prev = &cur.hNext
	}
	return nil
}

// maybeResize doubles s's bucket array once its load factor is exceeded.
// Caller must hold s.mu.
func (t *table[K, V]) maybeResize(s *shard[K, V]) {
	oldSet := s.set.Load()
	old := oldSet.buckets
	if s.count.Load() < int64(len(old))*shardLoadFactor {
		return
	}

	newSize := len(old) * 2
	newBuckets := make([]atomic.Pointer[entry[K, V]], newSize)
	newMask := uint64(newSize - 1)

	for i := range old {
		for e := old[i].Load(); e != nil; {
			next := e.hNext.Load()
			if e.isLive() {
				slot := e.hash & newMask
				e.hNext.Store(newBuckets[slot].Load())
				newBuckets[slot].Store(e)
			}
			e = next
		}
	}

	// Publish the new buckets and mask as one atomic unit: a lock-free
	// reader racing this resize must never see the old, narrower buckets
	// slice paired with the new, wider mask (or vice versa).
	s.set.Store(&bucketSet[K, V]{buckets: newBuckets, mask: newMask})
}

// computeResult carries the outcome of a compute-family callback back
// through table mutation so the caller (cache.go) can run eviction and
// removal-listener bookkeeping outside the shard lock.
type computeResult[K comparable, V any] struct {
	entry       *entry[K, V]
	prior       *entry[K, V]
	created     bool
	removed     bool
	weightDelta int64 // set only when an existing entry was updated in place
}

// ComputeIfAbsent atomically inserts the result of fn only if key is
// absent, returning the existing or newly created entry. fn is invoked
// at most once, under the shard lock; a reentrant call from the same
// goroutine onto the same shard is rejected rather than deadlocking.
func (t *table[K, V]) ComputeIfAbsent(hash uint64, key K, now int64, fn func() (V, int, bool)) (computeResult[K, V], error) {
	s := t.shardFor(hash)
	gid := goroutineID()
	if gid != 0 && s.owner.Load() == gid {
		return computeResult[K, V]{}, NewErrReentrantCompute("ComputeIfAbsent")
	}

	s.mu.Lock()
	s.owner.Store(gid)
	defer func() {
		s.owner.Store(0)
		s.mu.Unlock()
	}()

	if existing := s.find(hash, key); existing != nil {
		return computeResult[K, V]{entry: existing}, nil
	}

	value, weight, ok := fn()
	if !ok {
		return computeResult[K, V]{}, nil
	}

	e := newEntry(key, hash, value, weight, now)
	head := s.headPtr(hash)
	e.hNext.Store(head.Load())
	head.Store(e)
	s.count.Add(1)
	t.size.Add(1)
	t.maybeResize(s)

	return computeResult[K, V]{entry: e, created: true}, nil
}

// Compute atomically applies fn to key's current live value and weight
// (zero weight if absent) and installs fn's result: a present
// (V, weight, true) upserts, an absent result removes the entry if it
// existed. Same reentrancy guard as ComputeIfAbsent.
func (t *table[K, V]) Compute(hash uint64, key K, now int64, fn func(cur *V, curWeight int) (V, int, bool)) (computeResult[K, V], error) {
	s := t.shardFor(hash)
	gid := goroutineID()
	if gid != 0 && s.owner.Load() == gid {
		return computeResult[K, V]{}, NewErrReentrantCompute("Compute")
	}

	s.mu.Lock()
	s.owner.Store(gid)
	defer func() {
		s.owner.Store(0)
		s.mu.Unlock()
	}()

	existing := s.find(hash, key)
	var curPtr *V
	var curWeight int
	if existing != nil {
		v := existing.loadValue()
		curPtr = &v
		curWeight = int(existing.weight.Load())
	}

	value, weight, ok := fn(curPtr, curWeight)

	switch {
	case !ok && existing == nil:
		return computeResult[K, V]{}, nil
	case !ok:
		existing.markDead()
		s.unlink(existing)
		s.count.Add(-1)
		t.size.Add(-1)
		return computeResult[K, V]{prior: existing, removed: true}, nil
	case existing != nil:
		existing.storeValue(value)
		existing.weight.Store(int32(weight)) // #nosec G115
		existing.writeTime.Store(now)
		return computeResult[K, V]{entry: existing, prior: existing, weightDelta: int64(weight - curWeight)}, nil
	default:
		e := newEntry(key, hash, value, weight, now)
		head := s.headPtr(hash)
		e.hNext.Store(head.Load())
		head.Store(e)
		s.count.Add(1)
		t.size.Add(1)
		t.maybeResize(s)
		return computeResult[K, V]{entry: e, created: true}, nil
	}
}

// unlink removes target from its shard's hash chain. Caller must hold
// the shard lock (used only from within Compute today).
func (s *shard[K, V]) unlink(target *entry[K, V]) {
	head := s.headPtr(target.hash)
	if head.Load() == target {
		head.Store(target.hNext.Load())
		return
	}
	for cur := head.Load(); cur != nil; cur = cur.hNext.Load() {
		if cur.hNext.Load() == target {
			cur.hNext.Store(target.hNext.Load())
			return
		}
	}
}

// goroutineID extracts the calling goroutine's numeric id by parsing the
// header line of runtime.Stack's output. This is the standard, if
// informal, technique for obtaining goroutine identity in Go — no
// dependency in the ecosystem exposes it directly, and this path is only
// ever exercised inside the non-hot compute family, already holding a
// shard lock.
func goroutineID() int64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]

	fields := bytes.Fields(buf)
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// isNilArg reports whether v is a nil pointer, interface, map, slice,
// chan, or func — the kinds for which Config's nil-key/nil-value guard
// is meaningful. Value types (including comparable structs) are never
// nil and always report false.
func isNilArg[T any](v T) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
