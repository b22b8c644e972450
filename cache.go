// cache.go: Cache[K, V], the generic engine tying every layer together
//
// Grounded on the teacher's top-level Set/Get/Delete/Has/Len/Clear/
// Stats/Close method set, merged with cache_generic.go's generic-wrapper
// idea into a single generic type instead of a non-generic inner cache
// wrapped by a generic shell — the teacher's two-layer split existed only
// to paper over its string-keyed substrate, which the generic table.go
// here no longer needs.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

import (
	"context"
	"sync"
	"sync/atomic"
)

// expiryKind selects which expiration bookkeeping structure a Cache
// uses, chosen once at construction from the Config fields set.
type expiryKind int

const (
	expiryKindNone expiryKind = iota
	expiryKindWrite
	expiryKindAccess
	expiryKindCombined // both ExpireAfterWrite and ExpireAfterAccess, tracked as a min-deadline wheel entry
	expiryKindCustom   // Config.ExpireAfter
)

// Cache is a concurrent, bounded, policy-driven in-process cache.
type Cache[K comparable, V any] struct {
	config Config[K, V]

	table    *table[K, V]
	sketch   *frequencySketch
	eviction *evictionPolicy[K, V]

	readBuf  *readBuffer[K, V]
	writeBuf *writeBuffer[K, V]

	drainStatus atomic.Int32
	drainMu     sync.Mutex

	// wakeupCancel cancels the most recently armed Config.Scheduler
	// callback. Only ever touched while drainMu is held.
	wakeupCancel func()

	kind        expiryKind
	writeTTL    int64
	accessTTL   int64
	customEvict Expiry[K, V]
	writeQueue  *expirationQueue[K, V]
	accessQueue *expirationQueue[K, V]
	wheel       *timerWheel[K, V]

	weighted bool

	loader       Loader[K, V]
	loadInflight sync.Map // K -> *loadCall[V]
	refresh      *refreshCoordinator[K, V]

	stats *statsCounters

	closed atomic.Bool
}

// NewCache constructs a Cache from cfg, applying Config.Validate's
// defaults first.
func NewCache[K comparable, V any](cfg Config[K, V]) (*Cache[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := cfg.Ticker.Now()
	weighted := cfg.MaximumWeight > 0
	capacity := cfg.MaximumSize
	if weighted {
		capacity = cfg.MaximumWeight
	}

	sketch := newFrequencySketch(capacity)

	c := &Cache[K, V]{
		config:   cfg,
		table:    newTable[K, V](cfg.InitialCapacity),
		sketch:   sketch,
		eviction: newEvictionPolicy[K, V](capacity, sketch),
		readBuf:  newReadBuffer[K, V](),
		writeBuf: newWriteBuffer[K, V](),
		weighted: weighted,
		loader:   cfg.Loader,
		stats:    newStatsCounters(),
	}

	switch {
	case cfg.ExpireAfter != nil:
		c.kind = expiryKindCustom
		c.customEvict = cfg.ExpireAfter
		c.wheel = newTimerWheel[K, V](now)
	case cfg.ExpireAfterWrite > 0 && cfg.ExpireAfterAccess > 0:
		c.kind = expiryKindCombined
		c.writeTTL = int64(cfg.ExpireAfterWrite)
		c.accessTTL = int64(cfg.ExpireAfterAccess)
		c.wheel = newTimerWheel[K, V](now)
	case cfg.ExpireAfterWrite > 0:
		c.kind = expiryKindWrite
		c.writeTTL = int64(cfg.ExpireAfterWrite)
		c.writeQueue = newExpirationQueue[K, V](expireAfterWrite)
	case cfg.ExpireAfterAccess > 0:
		c.kind = expiryKindAccess
		c.accessTTL = int64(cfg.ExpireAfterAccess)
		c.accessQueue = newExpirationQueue[K, V](expireAfterAccess)
	default:
		c.kind = expiryKindNone
	}

	if cfg.RefreshAfterWrite > 0 && cfg.Loader != nil {
		c.refresh = newRefreshCoordinator(cfg.Loader, cfg.Executor, cfg.Logger, c.applyRefreshResult)
	}

	return c, nil
}

func (c *Cache[K, V]) weightOf(key K, value V) int {
	if c.config.Weigher != nil {
		w := c.config.Weigher(key, value)
		if w < 0 {
			w = 0
		}
		return w
	}
	return 1
}

// deadlineFor computes the absolute expiration deadline for a freshly
// created or replaced entry, for expiryKindCombined/Custom.
func (c *Cache[K, V]) deadlineFor(key K, value V, now int64, isCreate bool, currentDeadline int64) int64 {
	switch c.kind {
	case expiryKindCombined:
		writeDeadline := now + c.writeTTL
		accessDeadline := now + c.accessTTL
		if writeDeadline < accessDeadline {
			return writeDeadline
		}
		return accessDeadline
	case expiryKindCustom:
		var d int64
		if isCreate {
			d = c.customEvict.ExpireAfterCreate(key, value, now)
		} else {
			d = c.customEvict.ExpireAfterUpdate(key, value, now, currentDeadline-now)
		}
		if d < 0 {
			return currentDeadline
		}
		if d == MaxDuration {
			return MaxDuration
		}
		return now + d
	default:
		return MaxDuration
	}
}

func (c *Cache[K, V]) isExpired(e *entry[K, V], now int64) bool {
	switch c.kind {
	case expiryKindWrite:
		return now-e.writeTime.Load() >= c.writeTTL
	case expiryKindAccess:
		return now-e.accessTime.Load() >= c.accessTTL
	case expiryKindCombined, expiryKindCustom:
		return expireMode(e.expireMode.Load()) == expireVariable && now >= e.varDeadline.Load()
	default:
		return false
	}
}

// onInstalled links a newly created or refreshed entry into whichever
// expiration structure the Cache uses. Mutates shared lists; only called
// from within a serialized drain pass.
func (c *Cache[K, V]) onInstalled(e *entry[K, V], now int64, isCreate bool) {
	switch c.kind {
	case expiryKindWrite:
		if isCreate {
			c.writeQueue.append(e)
		} else {
			// e is already linked into the FIFO (Compute's in-place update,
			// or a refreshed value); re-append without unlinking first
			// would corrupt the list.
			c.writeQueue.moveToTail(e)
		}
	case expiryKindAccess:
		if isCreate {
			c.accessQueue.append(e)
		}
	case expiryKindCombined, expiryKindCustom:
		deadline := c.deadlineFor(e.key, e.loadValue(), now, isCreate, e.varDeadline.Load())
		if deadline == MaxDuration {
			c.wheel.Unschedule(e)
		} else {
			c.wheel.Schedule(e, deadline, now)
		}
	}
}

// onAccessed records a read's lock-free-safe side effects immediately:
// the access timestamp, the frequency sketch, and the read-buffer event.
// The corresponding region promotion and expiration rescheduling are
// confined to the drain pass (applyAccessEvent) since they mutate the
// shared eviction/expiration lists.
func (c *Cache[K, V]) onAccessed(e *entry[K, V], now int64) {
	e.accessTime.Store(now)
	c.sketch.increment(e.hash)
	c.readBuf.Record(e)

	if c.refresh != nil {
		writeAge := now - e.writeTime.Load()
		if writeAge >= int64(c.config.RefreshAfterWrite) && !e.refreshing.Load() {
			if e.refreshing.CompareAndSwap(false, true) {
				c.refresh.TriggerAsync(context.Background(), e.key)
			}
		}
	}
}

// applyAccessEvent performs the list-mutating half of a read, invoked
// only from within a serialized drain pass.
func (c *Cache[K, V]) applyAccessEvent(e *entry[K, V], now int64) {
	if !e.isLive() {
		return
	}
	c.eviction.onAccess(e)

	switch c.kind {
	case expiryKindAccess:
		c.accessQueue.moveToTail(e)
	case expiryKindCombined:
		deadline := now + c.accessTTL
		if writeDeadline := e.writeTime.Load() + c.writeTTL; writeDeadline < deadline {
			deadline = writeDeadline
		}
		c.wheel.Schedule(e, deadline, now)
	case expiryKindCustom:
		d := c.customEvict.ExpireAfterRead(e.key, e.loadValue(), now, e.varDeadline.Load()-now)
		if d >= 0 {
			if d == MaxDuration {
				c.wheel.Unschedule(e)
			} else {
				c.wheel.Schedule(e, now+d, now)
			}
		}
	}
}

// onRemoved unlinks e from every policy-engine structure it belongs to.
// Like onInstalled, it mutates shared lists and must only run from
// within a serialized drain pass.
func (c *Cache[K, V]) onRemoved(e *entry[K, V]) {
	switch c.kind {
	case expiryKindWrite:
		c.writeQueue.remove(e)
	case expiryKindAccess:
		c.accessQueue.remove(e)
	case expiryKindCombined, expiryKindCustom:
		c.wheel.Unschedule(e)
	}
	c.eviction.onRemove(e)
}

// Get returns the value for key and true if present and unexpired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	start := c.config.Ticker.Now()
	hash := hashKey(key)
	e := c.table.Get(hash, key)

	if e == nil {
		c.recordGet(start, false)
		var zero V
		return zero, false
	}

	now := c.config.Ticker.Now()
	if c.isExpired(e, now) {
		c.expireNow(e)
		c.recordGet(start, false)
		var zero V
		return zero, false
	}

	// Load the value before onAccessed: it may trigger a refresh, and a
	// synchronous Executor would otherwise let this read return the
	// reloaded value instead of the one it found.
	value := e.loadValue()
	c.onAccessed(e, now)
	c.scheduleDrain()
	c.recordGet(start, true)
	return value, true
}

func (c *Cache[K, V]) recordGet(start int64, hit bool) {
	latency := c.config.Ticker.Now() - start
	if hit {
		c.stats.hits.Add(1)
	} else {
		c.stats.misses.Add(1)
	}
	c.config.MetricsCollector.RecordGet(latency, hit)
}

// Put inserts or replaces key's value, returning the prior value and
// whether one existed. Rejects a nil key or nil value with an
// InvalidArgument-class error.
func (c *Cache[K, V]) Put(key K, value V) (V, bool, error) {
	if isNilArg(key) {
		var zero V
		return zero, false, NewErrNilKey("Put")
	}
	if isNilArg(value) {
		var zero V
		return zero, false, NewErrNilValue("Put")
	}

	start := c.config.Ticker.Now()
	hash := hashKey(key)
	now := c.config.Ticker.Now()
	weight := c.weightOf(key, value)

	e := newEntry(key, hash, value, weight, now)
	prior := c.table.Insert(e)
	c.writeBuf.Add(writeTask[K, V]{kind: writeTaskAdd, entry: e})

	c.stats.sets.Add(1)
	c.config.MetricsCollector.RecordSet(c.config.Ticker.Now() - start)

	var priorValue V
	existed := false
	if prior != nil {
		priorValue = prior.loadValue()
		existed = true
		c.writeBuf.Add(writeTask[K, V]{kind: writeTaskRemove, entry: prior})
		c.notifyRemoval(prior.key, priorValue, Replaced)
	}

	c.scheduleDrain()
	return priorValue, existed, nil
}

// PutIfAbsent inserts value only if key is absent, returning the
// existing value and true if one was already present (the zero value
// and false when value was inserted). Rejects a nil
// key or nil value with an InvalidArgument-class error.
func (c *Cache[K, V]) PutIfAbsent(key K, value V) (V, bool, error) {
	if isNilArg(key) {
		var zero V
		return zero, false, NewErrNilKey("PutIfAbsent")
	}
	if isNilArg(value) {
		var zero V
		return zero, false, NewErrNilValue("PutIfAbsent")
	}

	hash := hashKey(key)
	now := c.config.Ticker.Now()
	weight := c.weightOf(key, value)

	result, err := c.table.ComputeIfAbsent(hash, key, now, func() (V, int, bool) {
		return value, weight, true
	})
	if err != nil {
		var zero V
		return zero, false, err
	}

	if result.created {
		c.writeBuf.Add(writeTask[K, V]{kind: writeTaskAdd, entry: result.entry})
		c.scheduleDrain()
		var zero V
		return zero, false, nil
	}
	return result.entry.loadValue(), true, nil
}

// Remove deletes key, returning its value and whether it was present.
func (c *Cache[K, V]) Remove(key K) (V, bool) {
	start := c.config.Ticker.Now()
	hash := hashKey(key)
	e := c.table.Remove(hash, key)
	if e == nil {
		var zero V
		return zero, false
	}
	c.writeBuf.Add(writeTask[K, V]{kind: writeTaskRemove, entry: e})
	c.scheduleDrain()
	c.stats.removals.Add(1)
	c.config.MetricsCollector.RecordDelete(c.config.Ticker.Now() - start)
	value := e.loadValue()
	c.notifyRemoval(key, value, Explicit)
	return value, true
}

// Invalidate is an alias for Remove that discards the removed value,
// matching the Invalidate/InvalidateAll cache vocabulary.
func (c *Cache[K, V]) Invalidate(key K) {
	c.Remove(key)
}

// InvalidateAll removes every entry, notifying listeners with Explicit.
// Unlike single-key Remove, this walks every shard directly rather than
// going through the write buffer, so it takes the drain lock itself to
// stay serialized against a concurrent drain pass.
func (c *Cache[K, V]) InvalidateAll() {
	c.drainMu.Lock()
	defer c.drainMu.Unlock()

	for _, s := range c.table.shards {
		s.mu.Lock()
		buckets := s.set.Load().buckets
		for i := range buckets {
			for e := buckets[i].Load(); e != nil; e = e.hNext.Load() {
				if e.isLive() {
					e.markDead()
					c.table.size.Add(-1)
					c.onRemoved(e)
					c.notifyRemoval(e.key, e.loadValue(), Explicit)
				}
			}
			buckets[i].Store(nil)
		}
		s.count.Store(0)
		s.mu.Unlock()
	}
}

// Len returns the number of live entries.
func (c *Cache[K, V]) Len() int64 {
	return c.table.Len()
}

// Close stops accepting new work. Cache remains readable; Put/Remove
// after Close return ErrClosed-class behavior is left to callers that
// need it since the core map never needs an OS resource to release.
func (c *Cache[K, V]) Close() {
	c.closed.Store(true)
	c.drainMu.Lock()
	if c.wakeupCancel != nil {
		c.wakeupCancel()
		c.wakeupCancel = nil
	}
	c.drainMu.Unlock()
}

// expireNow removes an entry found already past its deadline on a
// synchronous Get, ahead of the next drain pass sweeping it.
func (c *Cache[K, V]) expireNow(e *entry[K, V]) {
	if removed := c.table.Remove(e.hash, e.key); removed != nil {
		c.writeBuf.Add(writeTask[K, V]{kind: writeTaskRemove, entry: removed})
		c.scheduleDrain()
		c.stats.expirations.Add(1)
		c.config.MetricsCollector.RecordExpiration()
		c.notifyRemoval(removed.key, removed.loadValue(), Expired)
	}
}

// notifyRemoval invokes the configured RemovalListener off the hot path,
// recovering and logging any panic per the ListenerFailure rule.
func (c *Cache[K, V]) notifyRemoval(key K, value V, cause RemovalCause) {
	if c.config.RemovalListener == nil {
		return
	}
	c.config.Executor.Execute(func() {
		defer func() {
			if p := recover(); p != nil {
				c.config.Logger.Error("removal listener panicked", "error", newErrListenerPanicked(p))
			}
		}()
		c.config.RemovalListener(key, value, cause)
	})
}

// applyRefreshResult installs a successful refresh's value, or clears
// the in-flight marker and logs a failure while keeping the stale value.
func (c *Cache[K, V]) applyRefreshResult(key K, value V, err error) {
	hash := hashKey(key)
	e := c.table.Get(hash, key)
	if e == nil {
		return
	}
	defer e.refreshing.Store(false)

	if err == nil && isNilArg(value) {
		err = NewErrNilValue("RefreshAfterWrite")
	}
	if err != nil {
		c.stats.loadFailures.Add(1)
		c.config.Logger.Warn("refresh failed, serving stale value", "error", err)
		c.config.MetricsCollector.RecordLoadFailure(0)
		return
	}

	now := c.config.Ticker.Now()
	e.storeValue(value)
	e.writeTime.Store(now)
	c.writeBuf.Add(writeTask[K, V]{kind: writeTaskUpdate, entry: e})
	c.scheduleDrain()
	c.stats.loadSuccesses.Add(1)
	c.config.MetricsCollector.RecordLoadSuccess(0)
}

// Stats returns a point-in-time snapshot of cache telemetry.
func (c *Cache[K, V]) Stats() Stats {
	return c.stats.snapshot(c.Len())
}

// CleanUp runs one maintenance pass synchronously, applying buffered
// reads/writes and sweeping expired entries. Safe to call from any
// goroutine; concurrent callers coalesce into a single pass via the
// drain state machine.
func (c *Cache[K, V]) CleanUp() {
	c.drain()
}
