// stats.go: lock-free operation counters and their point-in-time snapshot
//
// Grounded on the teacher's interfaces.go CacheStats, widened with the
// loader and eviction-weight fields a read-through, weight-bounded cache
// needs that the teacher's fixed-size, loader-less core never tracked.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

import "sync/atomic"

// Stats is an immutable snapshot of a Cache's counters.
type Stats struct {
	Hits                int64
	Misses              int64
	Sets                int64
	Removals            int64
	Evictions           int64
	EvictionWeight      int64
	Expirations         int64
	LoadSuccesses       int64
	LoadFailures        int64
	TotalLoadTimeNanos  int64
	Size                int64
}

// HitRatio returns Hits / (Hits + Misses), or 0 if there have been no
// lookups yet.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type statsCounters struct {
	hits               atomic.Int64
	misses             atomic.Int64
	sets               atomic.Int64
	removals           atomic.Int64
	evictions          atomic.Int64
	evictionWeight     atomic.Int64
	expirations        atomic.Int64
	loadSuccesses      atomic.Int64
	loadFailures       atomic.Int64
	totalLoadTimeNanos atomic.Int64
}

func newStatsCounters() *statsCounters {
	return &statsCounters{}
}

func (s *statsCounters) snapshot(size int64) Stats {
	return Stats{
		Hits:               s.hits.Load(),
		Misses:             s.misses.Load(),
		Sets:               s.sets.Load(),
		Removals:           s.removals.Load(),
		Evictions:          s.evictions.Load(),
		EvictionWeight:     s.evictionWeight.Load(),
		Expirations:        s.expirations.Load(),
		LoadSuccesses:      s.loadSuccesses.Load(),
		LoadFailures:       s.loadFailures.Load(),
		TotalLoadTimeNanos: s.totalLoadTimeNanos.Load(),
		Size:               size,
	}
}
