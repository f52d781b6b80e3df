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

import "errors"

// Errors returned at the public API boundary for out-of-range
// lock/condition/thread identifiers, instead of letting such input
// silently corrupt scheduler state.
var (
	// ErrBadLockID is returned when a LockID is outside [0, NumLocks).
	ErrBadLockID = errors.New("uthread: lock id out of range")
	// ErrBadConditionID is returned when a CondID is outside
	// [0, ConditionsPerLock).
	ErrBadConditionID = errors.New("uthread: condition id out of range")
	// ErrUnknownThread is returned by Join for a ThreadID that was
	// never assigned by this scheduler instance. A valid-but-still-
	// running ThreadID instead blocks until that thread exits; joining
	// a thread that never exits simply blocks forever, it is not an
	// error condition.
	ErrUnknownThread = errors.New("uthread: unknown thread id")
)
