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

// latch is a condition's sticky single-slot signal: a signal with no
// waiter sets it pending, and the next wait consumes it without
// blocking. A signal while already pending is a no-op.
type latch int

const (
	latchClear   latch = -1
	latchPending latch = 1
)

// lockRecord is one array slot per lock identifier: a binary semaphore
// (available) plus its condition latches.
type lockRecord struct {
	available  bool
	conditions []latch
}

func newLockRecord(numConditions int) lockRecord {
	conditions := make([]latch, numConditions)
	for i := range conditions {
		conditions[i] = latchClear
	}
	return lockRecord{available: true, conditions: conditions}
}

func (s *Scheduler) checkLock(l LockID) error {
	if l < 0 || int(l) >= len(s.locks) {
		return ErrBadLockID
	}
	return nil
}

func (s *Scheduler) checkCond(l LockID, c CondID) error {
	if err := s.checkLock(l); err != nil {
		return err
	}
	if c < 0 || int(c) >= len(s.locks[l].conditions) {
		return ErrBadConditionID
	}
	return nil
}

// acquireLock blocks (by yielding) until l is free, then claims it.
// Called with the gate already disabled; re-disables it on every
// resume since Yield re-enables on the way out.
func (s *Scheduler) acquireLock(l LockID) {
	for !s.locks[l].available {
		self := s.self()
		self.lockWait = l
		s.parked = self
		s.ready.transfer(s.lockWaitQ, self)
		log.Debugf("uthread: tid %d blocked on lock %d", self.tid, l)

		s.gate.enable()
		s.Yield()
		s.gate.disable()
	}
	s.locks[l].available = false
}

// releaseLock releases l, then wakes at most one waiter, but only if l
// was actually held. A stray or double release is a no-op: it must not
// wake a waiter that would then believe it holds l alongside whoever
// (if anyone) already does. Pure lock-waiters have priority over
// condition-waiters whose latch has already been signaled, since a
// resumed condition-waiter re-attempts the lock anyway.
func (s *Scheduler) releaseLock(l LockID) {
	if !s.locks[l].available {
		s.locks[l].available = true

		if waiter := s.lockWaitQ.findByLock(l); waiter != nil {
			waiter.lockWait = LockID(noneID)
			s.lockWaitQ.transfer(s.ready, waiter)
			log.Debugf("uthread: tid %d woken from lock-wait on lock %d", waiter.tid, l)
			return
		}
		if waiter := s.condWait.findSignaled(l, &s.locks[l]); waiter != nil {
			waiter.lockWait = LockID(noneID)
			waiter.conditionWait = CondID(noneID)
			s.condWait.transfer(s.ready, waiter)
			log.Debugf("uthread: tid %d woken from condition-wait (latch already pending) on lock %d", waiter.tid, l)
		}
	}
}

// Lock acquires l, blocking the calling thread if it is held.
func (s *Scheduler) Lock(l LockID) error {
	if err := s.checkLock(l); err != nil {
		return err
	}
	s.gate.disable()
	defer s.gate.enable()
	s.acquireLock(l)
	return nil
}

// Unlock releases l and wakes at most one waiter.
func (s *Scheduler) Unlock(l LockID) error {
	if err := s.checkLock(l); err != nil {
		return err
	}
	s.gate.disable()
	defer s.gate.enable()
	s.releaseLock(l)
	return nil
}

// Wait acquires l (blocking if necessary), then blocks until c's latch
// is pending, consuming it, and returns with l released. The caller need
// not hold l in advance. The lock is released only after this thread has
// parked itself on the condition-wait queue, so a signal arriving
// between the park and the release still finds the waiter present.
func (s *Scheduler) Wait(l LockID, c CondID) error {
	if err := s.checkCond(l, c); err != nil {
		return err
	}
	s.gate.disable()
	defer s.gate.enable()

	s.acquireLock(l)
	for s.locks[l].conditions[c] != latchPending {
		self := s.self()
		self.lockWait = l
		self.conditionWait = c
		s.parked = self
		s.ready.transfer(s.condWait, self)
		s.releaseLock(l)

		log.Debugf("uthread: tid %d waiting on lock %d condition %d", self.tid, l, c)

		s.gate.enable()
		s.Yield()
		s.gate.disable()

		s.acquireLock(l)
	}
	s.locks[l].conditions[c] = latchClear
	s.releaseLock(l)
	return nil
}

// Signal latches c on l pending and wakes at most one matching
// condition-waiter. Safe to call whether or not any waiter currently
// exists: the signal is sticky until a matching Wait consumes it.
func (s *Scheduler) Signal(l LockID, c CondID) error {
	if err := s.checkCond(l, c); err != nil {
		return err
	}
	s.gate.disable()
	defer s.gate.enable()

	s.acquireLock(l)
	if s.locks[l].conditions[c] != latchPending {
		s.locks[l].conditions[c] = latchPending
		if waiter := s.condWait.findByCondition(l, c); waiter != nil {
			waiter.lockWait = LockID(noneID)
			waiter.conditionWait = CondID(noneID)
			s.condWait.transfer(s.ready, waiter)
			log.Debugf("uthread: tid %d woken by signal on lock %d condition %d", waiter.tid, l, c)
		}
	}
	s.releaseLock(l)
	return nil
}
