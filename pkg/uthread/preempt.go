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

import "sync/atomic"

// preemptGate is the single process-wide flag an external timer-tick
// entry point reads to decide whether it is safe to call Yield from
// outside the single logical flow of execution.
//
// Every library entry point disables the gate on entry and re-enables it
// on exit, which is what actually keeps two goroutines from mutating
// scheduler state concurrently: the channel rendezvous in context.go
// already serializes which goroutine is unblocked, but the gate is what
// an asynchronous preemption-timer caller (running on its own goroutine,
// per pkg/preempttimer) must consult before it is allowed to call Yield
// at all. Because the timer caller and the running logical thread are
// different goroutines, this needs to be an atomic store, not a plain
// bool, to give the timer caller's read a defined happens-before
// relationship with the running thread's write.
type preemptGate struct {
	disabled atomic.Bool
}

func (g *preemptGate) disable() {
	g.disabled.Store(true)
}

func (g *preemptGate) enable() {
	g.disabled.Store(false)
}

// Disabled reports whether entering the scheduler right now would race
// with the logical thread currently running. A preemption-timer caller
// must check this before calling Yield and skip the tick if true.
func (g *preemptGate) Disabled() bool {
	return g.disabled.Load()
}
