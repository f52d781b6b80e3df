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

// Config holds uthread's compile-time constants from the reference
// design (NUM_LOCKS, CONDITIONS_PER_LOCK, STACK_SIZE) as run-time values
// passed to New.
type Config struct {
	// NumLocks is the size of the lock record array.
	NumLocks int
	// ConditionsPerLock is the number of condition latches per lock.
	ConditionsPerLock int
	// StackSize is a diagnostic stand-in for the fixed-size stack
	// region a non-bootstrap thread would be allocated; see tcb.go.
	StackSize int
}

// DefaultConfig matches the constants used by the preemptive demo
// driver in cmd/threaddemo.
func DefaultConfig() Config {
	return Config{
		NumLocks:          8,
		ConditionsPerLock: 8,
		StackSize:         64 * 1024,
	}
}
