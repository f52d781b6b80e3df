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

// Package uthread implements a cooperative, round-robin user-space
// threading library: many logical threads multiplexed onto a single
// logical flow of execution, with create/yield/join/exit and a
// mutex-with-condition-variables synchronization engine.
//
// A logical thread's machine context has no portable Go equivalent to
// ucontext_t's save/restore pair, so it is realized as a real goroutine
// parked on a dedicated rendezvous channel except while it is the one
// logical thread currently running (see context.go). The scheduler and
// lock engine enforce that only one such goroutine is ever unblocked and
// mutating shared state at a time, giving single-flow semantics even
// though the process itself may have many OS threads available to it.
package uthread
