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

//go:build preempt_integration

package preempttimer

import (
	"testing"
	"time"

	"uthread.dev/uthread/pkg/uthread"
)

// TestTimerDrivesLockContentionSafely starts a real Timer over a
// scheduler running two threads that contend on a shared counter under
// lock(0), and asserts the counter invariant still holds: every
// increment happens inside the critical section, so the final total is
// exactly 2*n no matter how many preemption ticks land mid
// critical-section.
//
// This depends on real SIGALRM delivery and wall-clock timing, so it
// is gated behind the preempt_integration build tag rather than run by
// default.
func TestTimerDrivesLockContentionSafely(t *testing.T) {
	s := uthread.New(uthread.DefaultConfig())
	s.Init()

	timer := New(s)
	if err := timer.Start(50 * time.Microsecond); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer timer.Stop()

	const n = 20000
	counter := 0
	worker := func(arg any) any {
		for i := 0; i < n; i++ {
			if err := s.Lock(0); err != nil {
				return err
			}
			counter++
			if err := s.Unlock(0); err != nil {
				return err
			}
		}
		return nil
	}

	t1 := s.Create(worker, nil)
	t2 := s.Create(worker, nil)

	if result, err := s.Join(t1); err != nil {
		t.Fatalf("join t1: %v", err)
	} else if result != nil {
		t.Fatalf("t1 returned error: %v", result)
	}
	if result, err := s.Join(t2); err != nil {
		t.Fatalf("join t2: %v", err)
	} else if result != nil {
		t.Fatalf("t2 returned error: %v", result)
	}

	if counter != 2*n {
		t.Fatalf("counter = %d, want %d (preemption broke mutual exclusion)", counter, 2*n)
	}
}
