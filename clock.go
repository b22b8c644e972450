// clock.go: time sources for catena caches
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

import (
	"sync/atomic"

	"github.com/agilira/go-timecache"
)

// systemTicker is the default Ticker, backed by go-timecache's cached
// monotonic clock so the hot path avoids a syscall per operation.
type systemTicker struct{}

func (systemTicker) Now() int64 {
	return timecache.CachedTimeNano()
}

// ManualTicker is a Ticker controlled explicitly by tests, matching the
// fake-clock seam the teacher exposes through Config.TimeProvider across
// its *_test.go files.
type ManualTicker struct {
	nanos atomic.Int64
}

// NewManualTicker creates a ManualTicker starting at the given time.
func NewManualTicker(startNanos int64) *ManualTicker {
	m := &ManualTicker{}
	m.nanos.Store(startNanos)
	return m
}

func (m *ManualTicker) Now() int64 {
	return m.nanos.Load()
}

// Advance moves the clock forward by d nanoseconds.
func (m *ManualTicker) Advance(d int64) {
	m.nanos.Add(d)
}

// Set pins the clock to an absolute nanosecond value.
func (m *ManualTicker) Set(nanos int64) {
	m.nanos.Store(nanos)
}
