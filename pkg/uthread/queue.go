// Copyright 2024 The uthread Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package uthread

import "uthread.dev/uthread/pkg/log"

// queue is a doubly-linked circular list with two sentinel nodes that
// never hold thread data, plus a cursor used for round-robin scheduling.
// All operations assume the caller holds the preemption gate (see
// preempt.go) — the queue itself does no locking.
type queue struct {
	head, tail *tcb
	cursor     *tcb
	name       string
}

func newQueue(name string) *queue {
	head, tail := &tcb{}, &tcb{}
	head.next = tail
	tail.prev = head
	return &queue{head: head, tail: tail, cursor: head, name: name}
}

func (q *queue) isEmpty() bool {
	return q.head.next == q.tail
}

// enqueue inserts t immediately before tail. If q was empty, t becomes
// the cursor.
func (q *queue) enqueue(t *tcb) {
	if q.isEmpty() {
		q.cursor = t
	}
	end := q.tail.prev
	end.next = t
	t.prev = end
	t.next = q.tail
	q.tail.prev = t
}

// dequeue unlinks and returns head.next, or nil if q is empty. The
// cursor is left untouched; callers that need cursor-aware removal use
// remove instead.
func (q *queue) dequeue() *tcb {
	if q.isEmpty() {
		return nil
	}
	ret := q.head.next
	ret.next.prev = q.head
	q.head.next = ret.next
	ret.prev, ret.next = nil, nil
	return ret
}

// advance is the round-robin primitive: it moves the cursor to the next
// real node, wrapping to the front once it has reached the last one.
func (q *queue) advance() *tcb {
	if q.isEmpty() {
		return nil
	}
	if q.cursor == q.tail.prev || q.cursor == q.tail || q.cursor == q.head {
		q.cursor = q.head.next
	} else {
		q.cursor = q.cursor.next
	}
	return q.cursor
}

// remove unlinks t from q, advancing the cursor first if it pointed at
// t. Returns false if t is not a member of q.
func (q *queue) remove(t *tcb) bool {
	if !q.contains(t) {
		return false
	}
	if q.cursor == t {
		q.advance()
	}
	if q.isEmpty() {
		// Defensive only: contains(t) above means q holds at least t,
		// and advance never unlinks, so q is not empty here.
		return false
	}
	t.prev.next = t.next
	t.next.prev = t.prev
	t.prev, t.next = nil, nil
	return true
}

func (q *queue) contains(t *tcb) bool {
	for n := q.head.next; n != q.tail; n = n.next {
		if n == t {
			return true
		}
	}
	return false
}

// transfer moves t from q to dst. Failure to remove t from q is a fatal
// invariant violation: the TCB was not where the caller believed it was.
// The scheduler logs and continues, per the best-effort error policy.
func (q *queue) transfer(dst *queue, t *tcb) {
	if !q.remove(t) {
		log.Warningf("uthread: invariant violation: tid %d not present in %s during transfer to %s", t.tid, q.name, dst.name)
		return
	}
	dst.enqueue(t)
}

// findByTID returns the first node with the given tid, or nil.
func (q *queue) findByTID(tid ThreadID) *tcb {
	for n := q.head.next; n != q.tail; n = n.next {
		if n.tid == tid {
			return n
		}
	}
	return nil
}

// findByLock returns the first pure lock-waiter for l: lockWait == l and
// conditionWait == noneID. Condition-waiters (which also set lockWait)
// are excluded.
func (q *queue) findByLock(l LockID) *tcb {
	for n := q.head.next; n != q.tail; n = n.next {
		if n.lockWait == l && n.conditionWait == CondID(noneID) {
			return n
		}
	}
	return nil
}

// findByCondition returns the first node waiting on both l and c. Both
// fields must match: a node only waiting on l's other conditions, or on
// a different lock's same condition index, is not a match.
func (q *queue) findByCondition(l LockID, c CondID) *tcb {
	for n := q.head.next; n != q.tail; n = n.next {
		if n.lockWait == l && n.conditionWait == c {
			return n
		}
	}
	return nil
}

// findSignaled returns the first condition-waiter on l whose awaited
// latch is currently pending.
func (q *queue) findSignaled(l LockID, rec *lockRecord) *tcb {
	for n := q.head.next; n != q.tail; n = n.next {
		if n.lockWait == l && rec.conditions[n.conditionWait] == latchPending {
			return n
		}
	}
	return nil
}
