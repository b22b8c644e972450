// loading.go: read-through population with singleflight coalescing
//
// Grounded on the teacher's loading.go/loading_generic.go: the same
// per-key in-flight registry and panic-recovery-around-the-user-callback
// shape, retargeted from a non-generic Cache onto Cache[K, V] directly —
// a capability attached at construction (Config.Loader) rather than the
// LoadingCacheProxy-over-CacheProxy wrapper hierarchy a non-generic base
// type would need.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

import (
	"context"
	"sync"
)

// loadCall tracks one in-flight read-through load so concurrent callers
// for the same key share a single Loader invocation.
type loadCall[V any] struct {
	wg    sync.WaitGroup
	value V
	err   error
}

// GetOrLoad returns key's cached value, populating it via Config.Loader
// on a miss. Concurrent GetOrLoad calls for the same key share one
// Loader invocation; a Loader panic is recovered and reported as an
// ErrCodeLoaderPanicked error.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K) (V, error) {
	if isNilArg(key) {
		var zero V
		return zero, NewErrNilKey("GetOrLoad")
	}
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	if c.loader == nil {
		var zero V
		return zero, NewErrNoLoader()
	}

	// Initialize the WaitGroup before any other goroutine can see it:
	// LoadOrStore publishes newCall to coalescing callers immediately, so
	// Add(1) must happen first or a waiter's Wait() can race a zero
	// counter and return before the load completes.
	newCall := &loadCall[V]{}
	newCall.wg.Add(1)
	actual, loaded := c.loadInflight.LoadOrStore(key, newCall)
	call := actual.(*loadCall[V])

	if loaded {
		call.wg.Wait()
		return call.value, call.err
	}

	defer func() {
		c.loadInflight.Delete(key)
		call.wg.Done()
	}()

	start := c.config.Ticker.Now()
	value, err := c.safeLoad(ctx, key)
	latency := c.config.Ticker.Now() - start
	c.stats.totalLoadTimeNanos.Add(latency)

	if err != nil {
		call.err = err
		c.stats.loadFailures.Add(1)
		c.config.MetricsCollector.RecordLoadFailure(latency)
		var zero V
		return zero, err
	}

	call.value = value
	c.stats.loadSuccesses.Add(1)
	c.config.MetricsCollector.RecordLoadSuccess(latency)
	if _, _, putErr := c.Put(key, value); putErr != nil {
		call.err = putErr
		var zero V
		return zero, putErr
	}
	return value, nil
}

// safeLoad invokes the configured Loader, converting a panic into an
// ErrCodeLoaderPanicked error and a context cancellation into an
// ErrCodeLoaderCancelled error.
func (c *Cache[K, V]) safeLoad(ctx context.Context, key K) (value V, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = NewErrLoaderPanicked(p)
		}
	}()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return value, NewErrLoaderCancelled(ctxErr)
	}

	value, loadErr := c.loader(ctx, key)
	if loadErr != nil {
		return value, NewErrLoaderFailed(loadErr)
	}
	return value, nil
}
