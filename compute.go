// compute.go: atomic compute-family operations over table.go's per-bin
// locking, wired into the same write-buffer drain pipeline as Put/Remove
// so a Compute's eviction-list and expiration-list bookkeeping happens
// only inside the serialized drain pass, never under the shard lock.
//
// Grounded on table.go's ComputeIfAbsent/Compute primitives and the
// reentrancy guard spec.md §4.1 describes: a mapping or remapping
// function that calls back into the cache on a colliding bin fails with
// an IllegalState-class error instead of deadlocking.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

// ComputeIfAbsent returns key's current value if present, otherwise
// invokes mappingFn and installs its result if mappingFn reports true.
// mappingFn is invoked at most once, under the owning bin's lock; a
// reentrant ComputeIfAbsent/Compute/ComputeIfPresent/Merge call from
// mappingFn onto a colliding bin returns an ErrCodeReentrantCompute error
// instead of deadlocking.
func (c *Cache[K, V]) ComputeIfAbsent(key K, mappingFn func(key K) (V, bool)) (V, bool, error) {
	if isNilArg(key) {
		var zero V
		return zero, false, NewErrNilKey("ComputeIfAbsent")
	}

	hash := hashKey(key)
	now := c.config.Ticker.Now()

	result, err := c.table.ComputeIfAbsent(hash, key, now, func() (V, int, bool) {
		value, ok := mappingFn(key)
		if !ok {
			return value, 0, false
		}
		return value, c.weightOf(key, value), true
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	if result.entry == nil {
		var zero V
		return zero, false, nil
	}
	if result.created {
		c.writeBuf.Add(writeTask[K, V]{kind: writeTaskAdd, entry: result.entry})
		c.scheduleDrain()
		c.stats.sets.Add(1)
		c.config.MetricsCollector.RecordSet(0)
	}
	return result.entry.loadValue(), true, nil
}

// Compute atomically applies remappingFn to key's current value (the
// zero value and found=false if absent) and installs its result:
// returning ok=false removes the entry if one existed. Same reentrancy
// guard as ComputeIfAbsent.
func (c *Cache[K, V]) Compute(key K, remappingFn func(key K, oldValue V, found bool) (newValue V, ok bool)) (V, bool, error) {
	if isNilArg(key) {
		var zero V
		return zero, false, NewErrNilKey("Compute")
	}

	hash := hashKey(key)
	now := c.config.Ticker.Now()

	result, err := c.table.Compute(hash, key, now, func(curPtr *V, curWeight int) (V, int, bool) {
		var oldValue V
		found := curPtr != nil
		if found {
			oldValue = *curPtr
		}
		newValue, ok := remappingFn(key, oldValue, found)
		if !ok {
			return newValue, 0, false
		}
		return newValue, c.weightOf(key, newValue), true
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return c.applyComputeResult(key, result), result.entry != nil, nil
}

// ComputeIfPresent atomically applies remappingFn to key's current value
// only if key is present, removing the entry if remappingFn returns
// ok=false. A no-op, returning found=false, if key is absent.
func (c *Cache[K, V]) ComputeIfPresent(key K, remappingFn func(key K, oldValue V) (newValue V, ok bool)) (V, bool, error) {
	if isNilArg(key) {
		var zero V
		return zero, false, NewErrNilKey("ComputeIfPresent")
	}

	hash := hashKey(key)
	now := c.config.Ticker.Now()

	result, err := c.table.Compute(hash, key, now, func(curPtr *V, curWeight int) (V, int, bool) {
		if curPtr == nil {
			var zero V
			return zero, 0, false
		}
		newValue, ok := remappingFn(key, *curPtr)
		if !ok {
			return newValue, 0, false
		}
		return newValue, c.weightOf(key, newValue), true
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return c.applyComputeResult(key, result), result.entry != nil, nil
}

// Merge combines value into key's current entry via remappingFn(old, new),
// or installs value directly if key is absent. Returning ok=false from
// remappingFn removes the entry.
func (c *Cache[K, V]) Merge(key K, value V, remappingFn func(oldValue, newValue V) (merged V, ok bool)) (V, bool, error) {
	if isNilArg(key) {
		var zero V
		return zero, false, NewErrNilKey("Merge")
	}
	if isNilArg(value) {
		var zero V
		return zero, false, NewErrNilValue("Merge")
	}

	hash := hashKey(key)
	now := c.config.Ticker.Now()

	result, err := c.table.Compute(hash, key, now, func(curPtr *V, curWeight int) (V, int, bool) {
		if curPtr == nil {
			return value, c.weightOf(key, value), true
		}
		merged, ok := remappingFn(*curPtr, value)
		if !ok {
			return merged, 0, false
		}
		return merged, c.weightOf(key, merged), true
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return c.applyComputeResult(key, result), result.entry != nil, nil
}

// applyComputeResult folds a table.Compute outcome into the write-buffer
// drain pipeline and telemetry, mirroring Put/Remove's bookkeeping.
func (c *Cache[K, V]) applyComputeResult(key K, result computeResult[K, V]) V {
	switch {
	case result.removed:
		c.writeBuf.Add(writeTask[K, V]{kind: writeTaskRemove, entry: result.prior})
		c.scheduleDrain()
		c.stats.removals.Add(1)
		c.config.MetricsCollector.RecordDelete(0)
		c.notifyRemoval(key, result.prior.loadValue(), Explicit)
		var zero V
		return zero
	case result.created:
		c.writeBuf.Add(writeTask[K, V]{kind: writeTaskAdd, entry: result.entry})
		c.scheduleDrain()
		c.stats.sets.Add(1)
		c.config.MetricsCollector.RecordSet(0)
		return result.entry.loadValue()
	case result.entry != nil:
		c.writeBuf.Add(writeTask[K, V]{kind: writeTaskUpdate, entry: result.entry, weightDelta: result.weightDelta})
		c.scheduleDrain()
		c.stats.sets.Add(1)
		c.config.MetricsCollector.RecordSet(0)
		return result.entry.loadValue()
	default:
		var zero V
		return zero
	}
}
