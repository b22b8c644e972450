// views.go: weakly-consistent key/value/entry collections over a Cache
//
// No teacher file has an equivalent: agilira-balios exposes only
// Keys()/Len() over its string-keyed core. Grounded on the teacher's
// table-walk shape (lock per shard, copy out, move on) generalized to
// the generic substrate here, with golang.org/x/exp/maps supplying the
// map-to-slice snapshot helpers (in no particular order) the teacher's
// string-only Keys() never needed.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

import "golang.org/x/exp/maps"

// snapshot walks every shard under its own lock, collecting one (key,
// value) pair per live entry. The result reflects the table at no single
// instant overall, only shard-by-shard, matching the "weakly consistent"
// iteration spec.md's Views bullet asks for: no ConcurrentModification
// error, no guarantee of a stable cross-shard point in time.
func (c *Cache[K, V]) snapshot() map[K]V {
	out := make(map[K]V, c.Len())
	for _, s := range c.table.shards {
		s.mu.Lock()
		buckets := s.set.Load().buckets
		for i := range buckets {
			for e := buckets[i].Load(); e != nil; e = e.hNext.Load() {
				if e.isLive() {
					out[e.key] = e.loadValue()
				}
			}
		}
		s.mu.Unlock()
	}
	return out
}

// Keys returns a weakly-consistent snapshot of every live key.
func (c *Cache[K, V]) Keys() []K {
	return maps.Keys(c.snapshot())
}

// Values returns a weakly-consistent snapshot of every live value.
func (c *Cache[K, V]) Values() []V {
	return maps.Values(c.snapshot())
}

// Entry pairs a key and value from an Entries snapshot. SetValue writes
// through to the cache with Put, so it also re-inserts the key if it has
// since been removed or expired.
type Entry[K comparable, V any] struct {
	Key   K
	Value V

	cache *Cache[K, V]
}

// SetValue writes v through to the backing cache entry for e.Key, exactly
// as calling cache.Put(e.Key, v) would, and updates e.Value to match.
func (e *Entry[K, V]) SetValue(v V) {
	e.cache.Put(e.Key, v)
	e.Value = v
}

// Entries returns a weakly-consistent snapshot of every live (key, value)
// pair, each writable back through SetValue.
func (c *Cache[K, V]) Entries() []Entry[K, V] {
	snap := c.snapshot()
	out := make([]Entry[K, V], 0, len(snap))
	for k, v := range snap {
		out = append(out, Entry[K, V]{Key: k, Value: v, cache: c})
	}
	return out
}
