// refresh.go: refresh-after-write background reload coordination
//
// Grounded on the teacher's loading.go singleflight (the per-key
// in-flight registry preventing duplicate concurrent work), but
// retargeted from "coalesce blocking GetOrLoad callers" to "coalesce
// background reloads while every reader keeps getting the stale value
// immediately" — so unlike loading.go's loadCall, there are no waiters
// to release, just a marker preventing a second reload from starting.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

import (
	"context"
	"sync"
)

// refreshCoordinator runs Loader in the background for stale entries,
// coalescing concurrent triggers for the same key into one reload.
type refreshCoordinator[K comparable, V any] struct {
	inflight sync.Map // K -> struct{}, marks a key's in-flight reload
	loader   Loader[K, V]
	executor Executor
	logger   Logger
	onDone   func(key K, value V, err error)
}

func newRefreshCoordinator[K comparable, V any](loader Loader[K, V], executor Executor, logger Logger, onDone func(K, V, error)) *refreshCoordinator[K, V] {
	return &refreshCoordinator[K, V]{loader: loader, executor: executor, logger: logger, onDone: onDone}
}

// TriggerAsync starts a background reload for key unless one is already
// in flight. The caller is expected to have already marked the entry as
// refreshing (via entry.refreshing's CAS) before calling this.
func (r *refreshCoordinator[K, V]) TriggerAsync(ctx context.Context, key K) {
	if _, loaded := r.inflight.LoadOrStore(key, struct{}{}); loaded {
		return
	}

	r.executor.Execute(func() {
		defer r.inflight.Delete(key)

		value, err := r.safeLoad(ctx, key)
		r.onDone(key, value, err)
	})
}

func (r *refreshCoordinator[K, V]) safeLoad(ctx context.Context, key K) (value V, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Warn("refresh loader panicked", "key", key, "panic", p)
			err = NewErrLoaderPanicked(p)
		}
	}()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return value, NewErrLoaderCancelled(ctxErr)
	}

	v, loadErr := r.loader(ctx, key)
	if loadErr != nil {
		return v, NewErrLoaderFailed(loadErr)
	}
	return v, nil
}
