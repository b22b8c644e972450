// config.go: configuration for catena caches
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package catena

import (
	"time"
)

// Config holds every construction-time parameter for a Cache[K, V].
// Zero value is valid; Validate fills in defaults the same way the
// upstream cache does — by mutating the struct, not by returning an
// error for anything that can be defaulted instead.
type Config[K comparable, V any] struct {
	// MaximumSize bounds the cache by entry count. Mutually exclusive
	// with MaximumWeight at the semantic level (spec.md §4.2): if both
	// are set, MaximumWeight wins and MaximumSize is ignored.
	MaximumSize int64

	// MaximumWeight bounds the cache by the sum of Weigher(key, value)
	// across live entries. Requires Weigher to be set.
	MaximumWeight int64

	// Weigher computes a per-entry weight. Required when MaximumWeight > 0.
	Weigher Weigher[K, V]

	// ExpireAfterWrite evicts an entry this long after it was created or
	// last replaced, regardless of access. Zero disables it.
	ExpireAfterWrite time.Duration

	// ExpireAfterAccess evicts an entry this long after it was last read
	// or written. Zero disables it.
	ExpireAfterAccess time.Duration

	// ExpireAfter installs a per-entry variable expiration policy backed
	// by the hierarchical timer wheel. When set, it takes precedence over
	// ExpireAfterWrite and ExpireAfterAccess (spec.md §4.3 precedence).
	ExpireAfter Expiry[K, V]

	// RefreshAfterWrite triggers an asynchronous reload this long after an
	// entry was last written, the next time it is read. The stale value is
	// served to that reader while the reload runs in the background. Zero
	// disables it. Requires Loader to be set.
	RefreshAfterWrite time.Duration

	// Loader performs read-through population (GetOrLoad) and background
	// refresh (RefreshAfterWrite). Optional; a cache with no Loader is a
	// plain cache rather than a loading cache.
	Loader Loader[K, V]

	// RemovalListener is notified, exactly once, for every entry that
	// leaves the cache. Optional.
	RemovalListener RemovalListener[K, V]

	// Ticker supplies the current time. Default: the system ticker backed
	// by go-timecache's cached monotonic clock.
	Ticker Ticker

	// Scheduler arms a single wakeup at the next expiration deadline so
	// expiration is not purely access-triggered. Optional; nil means
	// strictly lazy expiration.
	Scheduler Scheduler

	// Executor runs listener notification and refresh loads off the
	// caller's goroutine; maintenance drains never run on it. Default: an
	// unbounded goroutine-per-task executor.
	Executor Executor

	// RecordStats reports whether stats recording was requested. The
	// built-in atomic Stats counters are maintained whether or not it is
	// set; Validate sets it to true when a MetricsCollector is attached.
	RecordStats bool

	// Logger is used for internal diagnostics (listener panics, and loader
	// failures or panics on the refresh path). Default: NoOpLogger.
	Logger Logger

	// MetricsCollector receives per-operation telemetry. Default:
	// NoOpMetricsCollector (zero overhead).
	MetricsCollector MetricsCollector

	// InitialCapacity sizes the hash table's initial bucket count to avoid
	// early resizes. Zero picks a small default.
	InitialCapacity int
}

// Validate normalizes c in place, applying defaults, and returns an error
// only for combinations that cannot be defaulted away (spec.md §7
// InvalidArgument / IllegalState cases).
func (c *Config[K, V]) Validate() error {
	if c.MaximumWeight > 0 && c.Weigher == nil {
		return NewErrMissingWeigher()
	}
	if c.MaximumWeight == 0 && c.MaximumSize <= 0 {
		c.MaximumSize = DefaultMaximumSize
	}
	if c.ExpireAfterWrite < 0 {
		return NewErrInvalidDuration("ExpireAfterWrite", int64(c.ExpireAfterWrite))
	}
	if c.ExpireAfterAccess < 0 {
		return NewErrInvalidDuration("ExpireAfterAccess", int64(c.ExpireAfterAccess))
	}
	if c.RefreshAfterWrite < 0 {
		return NewErrInvalidDuration("RefreshAfterWrite", int64(c.RefreshAfterWrite))
	}
	if c.RefreshAfterWrite > 0 && c.Loader == nil {
		return NewErrNoLoader()
	}

	if c.InitialCapacity <= 0 {
		c.InitialCapacity = DefaultInitialCapacity
	}
	if c.Ticker == nil {
		c.Ticker = systemTicker{}
	}
	if c.Executor == nil {
		c.Executor = goroutineExecutor{}
	}
	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}
	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	} else {
		c.RecordStats = true
	}

	return nil
}

// DefaultConfig returns a Config with sensible defaults: a size-bounded
// cache with no expiration, no loader, and telemetry disabled.
func DefaultConfig[K comparable, V any]() Config[K, V] {
	return Config[K, V]{
		MaximumSize:      DefaultMaximumSize,
		InitialCapacity:  DefaultInitialCapacity,
		Ticker:           systemTicker{},
		Executor:         goroutineExecutor{},
		Logger:           NoOpLogger{},
		MetricsCollector: NoOpMetricsCollector{},
	}
}

// goroutineExecutor runs each task on its own goroutine. This is the
// default Executor; callers with tighter control over concurrency can
// supply a worker-pool-backed Executor instead.
type goroutineExecutor struct{}

func (goroutineExecutor) Execute(f func()) {
	go f()
}
