// refresh_test.go: unit tests for the background refresh coordinator
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

type syncTestExecutor struct{}

func (syncTestExecutor) Execute(f func()) { f() }

func TestRefreshCoordinatorRunsLoaderAndReportsResult(t *testing.T) {
	var reported struct {
		key   string
		value int
		err   error
	}
	var wg sync.WaitGroup
	wg.Add(1)

	rc := newRefreshCoordinator[string, int](
		func(ctx context.Context, key string) (int, error) { return 42, nil },
		syncTestExecutor{},
		NoOpLogger{},
		func(key string, value int, err error) {
			reported.key, reported.value, reported.err = key, value, err
			wg.Done()
		},
	)

	rc.TriggerAsync(context.Background(), "k")
	wg.Wait()

	if reported.key != "k" || reported.value != 42 || reported.err != nil {
		t.Fatalf("unexpected refresh result: %+v", reported)
	}
}

func TestRefreshCoordinatorCoalescesConcurrentTriggers(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	var done sync.WaitGroup

	rc := newRefreshCoordinator[string, int](
		func(ctx context.Context, key string) (int, error) {
			calls.Add(1)
			<-release
			return 1, nil
		},
		goroutineExecutor{},
		NoOpLogger{},
		func(key string, value int, err error) { done.Done() },
	)

	done.Add(1)
	rc.TriggerAsync(context.Background(), "k")
	rc.TriggerAsync(context.Background(), "k") // should be a no-op: one already in flight
	close(release)
	done.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected exactly one loader invocation while a refresh is in flight, got %d", calls.Load())
	}
}

func TestRefreshCoordinatorRecoversLoaderPanic(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	var gotErr error

	rc := newRefreshCoordinator[string, int](
		func(ctx context.Context, key string) (int, error) {
			panic("loader exploded")
		},
		syncTestExecutor{},
		NoOpLogger{},
		func(key string, value int, err error) {
			gotErr = err
			wg.Done()
		},
	)

	rc.TriggerAsync(context.Background(), "k")
	wg.Wait()

	if !IsLoaderFailure(gotErr) || GetErrorCode(gotErr) != ErrCodeLoaderPanicked {
		t.Fatalf("expected ErrCodeLoaderPanicked, got %v", gotErr)
	}
}

func TestRefreshCoordinatorReportsCancelledContext(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	var gotErr error

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := newRefreshCoordinator[string, int](
		func(ctx context.Context, key string) (int, error) { return 0, nil },
		syncTestExecutor{},
		NoOpLogger{},
		func(key string, value int, err error) {
			gotErr = err
			wg.Done()
		},
	)

	rc.TriggerAsync(ctx, "k")
	wg.Wait()

	if GetErrorCode(gotErr) != ErrCodeLoaderCancelled {
		t.Fatalf("expected ErrCodeLoaderCancelled, got %v", gotErr)
	}
}

func TestRefreshCoordinatorAllowsRetriggerAfterCompletion(t *testing.T) {
	var calls atomic.Int64
	var wg sync.WaitGroup

	rc := newRefreshCoordinator[string, int](
		func(ctx context.Context, key string) (int, error) {
			calls.Add(1)
			return int(calls.Load()), nil
		},
		syncTestExecutor{},
		NoOpLogger{},
		func(key string, value int, err error) { wg.Done() },
	)

	wg.Add(1)
	rc.TriggerAsync(context.Background(), "k")
	wg.Wait()

	wg.Add(1)
	rc.TriggerAsync(context.Background(), "k")
	wg.Wait()

	if calls.Load() != 2 {
		t.Fatalf("expected a second trigger after completion to run again, got %d calls", calls.Load())
	}
}

