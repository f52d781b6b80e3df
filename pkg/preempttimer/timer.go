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

// Package preempttimer delivers periodic ticks that call into a
// scheduler's Yield, but only when the scheduler's preemption gate
// says it is safe to do so: it arms a real-time itimer and installs a
// SIGALRM handler that calls Yield whenever the gate is not disabled.
package preempttimer

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"uthread.dev/uthread/pkg/log"
)

// Gate is the subset of *uthread.Scheduler the timer needs: a way to
// check the preemption gate and a way to yield. *uthread.Scheduler
// satisfies this directly.
type Gate interface {
	Disabled() bool
	Yield()
}

// Timer drives preemption ticks into a Gate via SIGALRM, using
// setitimer(2) to arm the clock and a signal handler goroutine in
// place of sigaction(2).
type Timer struct {
	gate Gate

	mu      sync.Mutex
	sigCh   chan os.Signal
	stopCh  chan struct{}
	wg      sync.WaitGroup
	started bool
}

// New returns a Timer that will call gate.Yield on every tick, provided
// gate.Disabled() is false at delivery time.
func New(gate Gate) *Timer {
	return &Timer{gate: gate}
}

// Start arms a real-time itimer at the given interval and begins
// delivering ticks. interval must be positive. A second call without an
// intervening Stop does nothing and returns nil.
func (t *Timer) Start(interval time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return nil
	}

	t.sigCh = make(chan os.Signal, 1)
	t.stopCh = make(chan struct{})
	signal.Notify(t.sigCh, syscall.SIGALRM)

	usec := interval.Microseconds()
	val := unix.Itimerval{
		Value:    unix.Timeval{Sec: usec / 1e6, Usec: usec % 1e6},
		Interval: unix.Timeval{Sec: usec / 1e6, Usec: usec % 1e6},
	}
	if err := unix.Setitimer(unix.ITIMER_REAL, &val, nil); err != nil {
		signal.Stop(t.sigCh)
		return err
	}

	t.started = true
	t.wg.Add(1)
	go t.run()
	log.Infof("preempttimer: armed at %s", interval)
	return nil
}

func (t *Timer) run() {
	defer t.wg.Done()
	for {
		select {
		case <-t.stopCh:
			return
		case <-t.sigCh:
			// This goroutine stands in for a signal-context timer
			// handler. It must not call Yield unless the gate says
			// doing so is safe: the scheduler might be mid-mutation on
			// the goroutine that is currently the single logical
			// thread running.
			if t.gate.Disabled() {
				continue
			}
			t.gate.Yield()
		}
	}
}

// Stop disarms the itimer and stops delivering ticks. Safe to call more
// than once.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return
	}
	var zero unix.Itimerval
	_ = unix.Setitimer(unix.ITIMER_REAL, &zero, nil)
	signal.Stop(t.sigCh)
	close(t.stopCh)
	t.wg.Wait()
	t.started = false
}
