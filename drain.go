// drain.go: maintenance pipeline coalescing buffered reads and writes
//
// The status word tracks IDLE/REQUIRED/PROCESSING/PROCESSING_TO_REQUIRED
// so concurrent callers coalesce into a single in-progress pass instead
// of each running their own: a caller that finds PROCESSING already
// underway just bumps the status to PROCESSING_TO_REQUIRED and returns,
// trusting the in-flight pass to loop once more before going idle. The
// goroutine that wins the REQUIRED->PROCESSING transition runs the pass
// itself, on its own stack, rather than handing off to a dedicated
// background worker.
//
// No teacher file has a separate drain concept — agilira-balios applies
// policy inline inside Get/Set. This is new code in the surrounding
// atomics-over-locks idiom, grounded directly on the eviction/expiration
// engines it serializes access to.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

const (
	drainIdle int32 = iota
	drainRequired
	drainProcessing
	drainProcessingToRequired
)

// scheduleDrain requests a maintenance pass, running it on the calling
// goroutine if no pass is currently in flight.
func (c *Cache[K, V]) scheduleDrain() {
	for {
		switch c.drainStatus.Load() {
		case drainIdle:
			if c.drainStatus.CompareAndSwap(drainIdle, drainRequired) {
				continue
			}
		case drainRequired:
			if c.drainStatus.CompareAndSwap(drainRequired, drainProcessing) {
				c.runDrainLoop()
				return
			}
		case drainProcessing:
			if c.drainStatus.CompareAndSwap(drainProcessing, drainProcessingToRequired) {
				return
			}
		case drainProcessingToRequired:
			return
		default:
			return
		}
	}
}

// drain forces a maintenance pass even if no caller is mid-operation,
// used by Cache.CleanUp.
func (c *Cache[K, V]) drain() {
	for {
		status := c.drainStatus.Load()
		if status == drainIdle && c.drainStatus.CompareAndSwap(drainIdle, drainProcessing) {
			c.runDrainLoop()
			return
		}
		if status != drainIdle {
			c.scheduleDrain()
			return
		}
	}
}

func (c *Cache[K, V]) runDrainLoop() {
	c.drainMu.Lock()
	defer c.drainMu.Unlock()

	for {
		now := c.drainOnePass()
		if c.drainStatus.CompareAndSwap(drainProcessing, drainIdle) {
			c.armNextWakeup(now)
			return
		}
		// Another caller bumped us to PROCESSING_TO_REQUIRED while this
		// pass ran; loop once more before relinquishing.
		c.drainStatus.Store(drainProcessing)
	}
}

// armNextWakeup arranges for Config.Scheduler to force another drain at
// the next point an expiration structure has work to do, so expiration
// is not purely access-triggered when a Scheduler is configured. No-op
// when Scheduler is nil. Called only while drainMu is held.
func (c *Cache[K, V]) armNextWakeup(now int64) {
	if c.config.Scheduler == nil {
		return
	}
	if c.wakeupCancel != nil {
		c.wakeupCancel()
		c.wakeupCancel = nil
	}

	delay, ok := c.nextWakeupDelay(now)
	if !ok {
		return
	}
	c.wakeupCancel = c.config.Scheduler.Schedule(delay, func() {
		c.drain()
	})
}

// nextWakeupDelay reports how long until the active expiration structure
// next has work, or ok=false if nothing is currently scheduled to expire.
func (c *Cache[K, V]) nextWakeupDelay(now int64) (int64, bool) {
	switch c.kind {
	case expiryKindWrite:
		if c.writeQueue.head == nil {
			return 0, false
		}
		return nonNegative(c.writeQueue.head.writeTime.Load() + c.writeTTL - now), true
	case expiryKindAccess:
		if c.accessQueue.head == nil {
			return 0, false
		}
		return nonNegative(c.accessQueue.head.accessTime.Load() + c.accessTTL - now), true
	case expiryKindCombined, expiryKindCustom:
		// The wheel buckets by tick rather than tracking a single true
		// minimum deadline; waking up once per finest-level tick keeps
		// expiration timely without an O(entries) scan to find it.
		return wheelLevel0SlotNanos, true
	default:
		return 0, false
	}
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

func (c *Cache[K, V]) drainOnePass() int64 {
	now := c.config.Ticker.Now()

	for _, t := range c.writeBuf.Drain() {
		switch t.kind {
		case writeTaskAdd:
			c.eviction.onAdd(t.entry)
			c.onInstalled(t.entry, now, true)
		case writeTaskUpdate:
			c.eviction.onWeightChange(t.entry, t.weightDelta)
			c.onInstalled(t.entry, now, false)
		case writeTaskRemove:
			c.onRemoved(t.entry)
		}
	}

	for _, e := range c.readBuf.Drain() {
		c.applyAccessEvent(e, now)
	}

	c.expireDue(now)
	c.evictOverflow()
	return now
}

// expireDue sweeps whichever expiration structure this Cache uses for
// entries whose deadline has passed, removing them from the table and
// notifying listeners with Expired.
func (c *Cache[K, V]) expireDue(now int64) {
	var due []*entry[K, V]

	switch c.kind {
	case expiryKindWrite:
		due = c.writeQueue.expired(now, c.writeTTL)
	case expiryKindAccess:
		due = c.accessQueue.expired(now, c.accessTTL)
	case expiryKindCombined, expiryKindCustom:
		due = c.wheel.Advance(now)
	}

	for _, e := range due {
		c.eviction.onRemove(e)
		if removed := c.table.Remove(e.hash, e.key); removed != nil {
			c.stats.expirations.Add(1)
			c.config.MetricsCollector.RecordExpiration()
			c.notifyRemoval(removed.key, removed.loadValue(), Expired)
		}
	}
}

// evictOverflow asks the eviction policy for entries that lost the
// W-TinyLFU admission race or still overflow the capacity bound, removes
// them from the table, and notifies listeners with Size.
func (c *Cache[K, V]) evictOverflow() {
	for _, e := range c.eviction.evictionVictims() {
		if c.kind == expiryKindWrite {
			c.writeQueue.remove(e)
		} else if c.kind == expiryKindAccess {
			c.accessQueue.remove(e)
		} else if c.kind == expiryKindCombined || c.kind == expiryKindCustom {
			c.wheel.Unschedule(e)
		}
		if removed := c.table.Remove(e.hash, e.key); removed != nil {
			c.stats.evictions.Add(1)
			c.stats.evictionWeight.Add(int64(removed.weight.Load()))
			c.config.MetricsCollector.RecordEviction(int(removed.weight.Load()))
			c.notifyRemoval(removed.key, removed.loadValue(), Size)
		}
	}
}
