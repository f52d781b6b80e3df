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

// context is the opaque "saved machine state" slot named by the thread
// model: a place that holds enough to resume a thread later. There is no
// portable Go primitive that saves/restores a stack, instruction pointer
// and register file the way ucontext_t does, so each logical thread is
// backed by a real goroutine that blocks on resume except while it is
// the single logical thread currently running. swap (below) is the
// realization of the "save current CPU state into slot A, restore slot
// B" primitive the core treats as opaque collaborator.
//
// For the bootstrap thread, context is "populated in place": the
// goroutine that calls Init is the bootstrap thread's own backing
// goroutine, and the first swap that parks it simply blocks that
// goroutine at the call site — a getcontext-in-place, captured for
// free by however deep the call stack happens to be at that point.
type context struct {
	resume chan struct{}
}

func newContext() *context {
	return &context{resume: make(chan struct{})}
}

// swap transfers control from outgoing to incoming: it wakes incoming's
// backing goroutine, then parks outgoing's backing goroutine until some
// later swap wakes it again. Neither of the two statements below
// touches shared scheduler state (both are pure channel
// rendezvous), so no scheduler mutation is ever concurrent with another
// goroutine's mutation: the loser of the handoff is always blocked
// before the winner's first shared-state access.
func swap(outgoing, incoming *tcb) {
	incoming.ctx.resume <- struct{}{}
	<-outgoing.ctx.resume
}

// park blocks the calling goroutine until some later swap targets t.
// Used by a freshly spawned trampoline goroutine to wait for its first
// scheduled resume (every created thread is swapped into, never woken
// without a matching outgoing park, even the first time).
func park(t *tcb) {
	<-t.ctx.resume
}
