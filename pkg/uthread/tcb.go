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

// ThreadID identifies a logical thread. Assigned monotonically on
// creation and never reused; the bootstrap thread is always 0.
type ThreadID int64

// LockID identifies one of the Config.NumLocks lock records.
type LockID int

// CondID identifies one of a lock's Config.ConditionsPerLock condition
// latches.
type CondID int

// noneID marks a TCB's lockWait/conditionWait as "not waiting on
// anything".
const noneID = -1

// stackInfo is a diagnostic stand-in for the fixed-size stack region a
// non-bootstrap thread would be allocated under a real user-space
// context switch. Go goroutines manage their own growable stacks, so
// this carries no backing memory; it exists so trampoline diagnostics
// can still report a thread's stack budget.
type stackInfo struct {
	size int
}

// tcb is a thread control block: the per-thread state record. A tcb is
// intrusive in exactly one of the scheduler's four queues (ready,
// lock-wait, condition-wait, exit) at any moment via prev/next, owned by
// whichever queue currently holds it.
type tcb struct {
	tid   ThreadID
	ctx   *context
	stack stackInfo

	// parent is observational only; never traversed for ownership,
	// except as exit's scheduling hint (see Scheduler.Exit).
	parent *tcb

	lockWait      LockID
	conditionWait CondID

	result any

	prev, next *tcb
}

func newTCB(tid ThreadID, parent *tcb) *tcb {
	return &tcb{
		tid:           tid,
		ctx:           newContext(),
		parent:        parent,
		lockWait:      LockID(noneID),
		conditionWait: CondID(noneID),
	}
}
