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

import (
	"os"
	"sync"

	"uthread.dev/uthread/pkg/log"
)

// Scheduler bundles every piece of per-process thread-scheduling
// state: the four queues, the lock record array, the identifier
// counter, the parked-TCB slot and the preemption gate. It is passed
// explicitly rather than kept as package globals, so a process can run
// more than one independent scheduler if it needs to.
type Scheduler struct {
	gate preemptGate

	ready, lockWaitQ, condWait, exited *queue
	locks                             []lockRecord

	nextID ThreadID

	// parked records "the thread that was current, even though it is
	// no longer on the ready queue" across a lock/wait transition that
	// moved it off ready before Yield ran. nil means: use ready's
	// cursor instead.
	parked *tcb

	cfg Config

	initOnce sync.Once
}

// New constructs a Scheduler. Init must still be called (exactly once)
// before any other operation.
func New(cfg Config) *Scheduler {
	return &Scheduler{cfg: cfg}
}

// Init constructs the four queues, the bootstrap TCB, and the
// zero-initialized lock array. It is idempotent: calls after the first
// are silently ignored, matching threadInit's lib_inited guard.
//
// The caller's own goroutine becomes the bootstrap thread's backing
// goroutine: its machine context is "captured in place" simply by
// virtue of being the real call stack that will later park inside
// Yield, Lock, or Wait when some other thread is scheduled.
func (s *Scheduler) Init() {
	s.initOnce.Do(func() {
		s.gate.disable()
		defer s.gate.enable()

		s.ready = newQueue("ready")
		s.lockWaitQ = newQueue("lock-wait")
		s.condWait = newQueue("condition-wait")
		s.exited = newQueue("exit")

		boot := newTCB(0, nil)
		s.nextID = 1
		s.ready.enqueue(boot)
		s.ready.cursor = boot

		s.locks = make([]lockRecord, s.cfg.NumLocks)
		for i := range s.locks {
			s.locks[i] = newLockRecord(s.cfg.ConditionsPerLock)
		}

		log.Infof("uthread: initialized with %d locks, %d conditions/lock", s.cfg.NumLocks, s.cfg.ConditionsPerLock)
	})
}

// Disabled reports whether it is currently unsafe to call Yield from
// outside the logical thread of execution. It satisfies
// pkg/preempttimer's Gate interface, letting the timer-tick handler
// decide whether to skip a tick rather than race the running thread.
func (s *Scheduler) Disabled() bool {
	return s.gate.Disabled()
}

// self returns the TCB that is logically "current": parked if a
// lock/wait transition has moved it off ready, else the ready cursor.
// This is always correct under the single-flow invariant because only
// one backing goroutine is ever unblocked at a time.
func (s *Scheduler) self() *tcb {
	if s.parked != nil {
		return s.parked
	}
	return s.ready.cursor
}

// Create allocates a new thread that will run fn(arg) and assigns it the
// next identifier. The new thread is appended to the ready queue and the
// caller immediately yields once, giving the new thread a chance to run
// before the creator proceeds — this ordering is load-bearing for the
// wait/signal scenarios the package's tests rely on.
func (s *Scheduler) Create(fn func(arg any) any, arg any) ThreadID {
	s.gate.disable()

	parent := s.self()
	child := newTCB(s.nextID, parent)
	child.stack = stackInfo{size: s.cfg.StackSize}
	s.nextID++
	s.ready.enqueue(child)

	log.Infof("uthread: created tid %d (parent %d)", child.tid, parent.tid)

	go s.trampoline(child, fn, arg)

	s.gate.enable()
	s.Yield()
	return child.tid
}

// trampoline is the thin entry point every created thread's backing
// goroutine runs: wait for the first scheduled resume, invoke the user
// function, and call Exit with its result. A user function is never
// allowed to fall off the end without going through Exit, including
// when it panics.
func (s *Scheduler) trampoline(self *tcb, fn func(arg any) any, arg any) {
	park(self)

	result := func() (res any) {
		defer func() {
			if r := recover(); r != nil {
				log.Warningf("uthread: tid %d (stack budget %d bytes) panicked: %v", self.tid, self.stack.size, r)
				res = r
			}
		}()
		return fn(arg)
	}()

	s.Exit(result)
}

// Yield is the central scheduling step: advance the ready cursor and, if
// that names a different thread than the one that was actually running,
// swap into it. It returns once this thread is scheduled again.
func (s *Scheduler) Yield() {
	s.gate.disable()
	defer s.gate.enable()

	var outgoing *tcb
	if s.parked != nil {
		outgoing = s.parked
		s.parked = nil
	} else {
		outgoing = s.ready.cursor
	}

	incoming := s.ready.advance()
	if incoming == nil || outgoing == incoming {
		return
	}

	log.Debugf("uthread: yield tid %d -> tid %d", outgoing.tid, incoming.tid)
	swap(outgoing, incoming)
}

// Join blocks (by yielding) until tid has exited, then stores its result
// and reclaims its TCB. Returns ErrUnknownThread immediately for an
// identifier this Scheduler never assigned; a valid identifier that
// simply hasn't exited yet blocks indefinitely.
func (s *Scheduler) Join(tid ThreadID) (any, error) {
	s.gate.disable()
	if tid < 0 || tid >= s.nextID {
		s.gate.enable()
		return nil, ErrUnknownThread
	}

	waitFor := s.exited.findByTID(tid)
	for waitFor == nil {
		s.gate.enable()
		s.Yield()
		s.gate.disable()
		waitFor = s.exited.findByTID(tid)
	}

	result := waitFor.result
	s.exited.remove(waitFor)
	s.gate.enable()

	log.Infof("uthread: joined tid %d", tid)
	return result, nil
}

// Exit terminates the current thread. If it is the bootstrap thread
// (tid 0), the process exits with the int interpretation of result;
// otherwise the thread's result is stored for a future Join and control
// swaps to its parent. Exit never returns.
func (s *Scheduler) Exit(result any) {
	s.gate.disable()

	self := s.ready.cursor
	s.ready.remove(self)

	if self.tid == 0 {
		log.Infof("uthread: bootstrap thread exiting")
		os.Exit(exitCode(result))
		panic("unreachable: os.Exit does not return")
	}

	self.result = result
	s.exited.enqueue(self)
	s.ready.cursor = self.parent

	log.Infof("uthread: tid %d exited", self.tid)
	swap(self, self.parent)
	panic("unreachable: exited thread resumed")
}

// exitCode interprets result as a process exit code: an *int or a
// plain int; anything else exits 0.
func exitCode(result any) int {
	switch v := result.(type) {
	case *int:
		if v == nil {
			return 0
		}
		return *v
	case int:
		return v
	case nil:
		return 0
	default:
		return 0
	}
}
