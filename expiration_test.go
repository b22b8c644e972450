// expiration_test.go: unit tests for the fixed after-write/after-access
// expiration queues
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package catena

import "testing"

func TestExpirationQueueFIFOOrder(t *testing.T) {
	q := newExpirationQueue[string, int](expireAfterWrite)

	a := newTestEntry("a", 1)
	a.writeTime.Store(0)
	b := newTestEntry("b", 1)
	b.writeTime.Store(10)

	q.append(a)
	q.append(b)

	due := q.expired(100, 50)
	if len(due) != 2 || due[0] != a || due[1] != b {
		t.Fatalf("expected both entries expired in FIFO order, got %+v", due)
	}
}

func TestExpirationQueueStopsAtFirstUnexpired(t *testing.T) {
	q := newExpirationQueue[string, int](expireAfterWrite)

	old := newTestEntry("old", 1)
	old.writeTime.Store(0)
	fresh := newTestEntry("fresh", 1)
	fresh.writeTime.Store(95)

	q.append(old)
	q.append(fresh)

	due := q.expired(100, 50)
	if len(due) != 1 || due[0] != old {
		t.Fatalf("expected only the stale head to expire, got %+v", due)
	}
	if q.head != fresh {
		t.Fatalf("expected fresh entry to remain queue head, got %+v", q.head)
	}
}

func TestExpirationQueueMoveToTailReordersOnAccess(t *testing.T) {
	q := newExpirationQueue[string, int](expireAfterAccess)

	a := newTestEntry("a", 1)
	b := newTestEntry("b", 1)
	q.append(a)
	q.append(b)

	q.moveToTail(a)

	if q.head != b || q.tail != a {
		t.Fatalf("expected b at head and a at tail after moveToTail, got head=%v tail=%v", q.head, q.tail)
	}
}

func TestExpirationQueueRemoveIgnoresForeignMode(t *testing.T) {
	writeQueue := newExpirationQueue[string, int](expireAfterWrite)
	accessQueue := newExpirationQueue[string, int](expireAfterAccess)

	e := newTestEntry("a", 1)
	writeQueue.append(e)

	accessQueue.remove(e)
	if expireMode(e.expireMode.Load()) != expireAfterWrite {
		t.Fatalf("expected remove on the wrong queue to be a no-op, got mode %v", e.expireMode.Load())
	}

	writeQueue.remove(e)
	if expireMode(e.expireMode.Load()) != expireNone {
		t.Fatalf("expected remove on the owning queue to clear expireMode, got %v", e.expireMode.Load())
	}
}
