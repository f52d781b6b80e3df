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

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"uthread.dev/uthread/pkg/preempttimer"
	"uthread.dev/uthread/pkg/uthread"
)

const big = 1000

// alternateCmd runs two threads that print their id ten times with a
// yield between prints, and joins both.
type alternateCmd struct{}

func (*alternateCmd) Name() string     { return "alternate" }
func (*alternateCmd) Synopsis() string { return "run two threads that alternate via yield" }
func (*alternateCmd) Usage() string    { return "alternate\n" }
func (*alternateCmd) SetFlags(*flag.FlagSet) {}

func (*alternateCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	s := uthread.New(uthread.DefaultConfig())
	s.Init()

	printer := func(arg any) any {
		tid := arg.(int)
		for i := 0; i < 10; i++ {
			fmt.Printf("thread %d: step %d\n", tid, i)
			s.Yield()
		}
		return nil
	}

	t1 := s.Create(printer, 1)
	t2 := s.Create(printer, 2)

	if _, err := s.Join(t1); err != nil {
		fmt.Println("join t1:", err)
		return subcommands.ExitFailure
	}
	if _, err := s.Join(t2); err != nil {
		fmt.Println("join t2:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// lockContentionCmd runs two threads that each add to a shared counter
// under lock(0), and asserts the final total.
type lockContentionCmd struct {
	n int
}

func (*lockContentionCmd) Name() string     { return "lock-contention" }
func (*lockContentionCmd) Synopsis() string { return "run lock contention on a shared counter" }
func (*lockContentionCmd) Usage() string    { return "lock-contention [-n count]\n" }
func (c *lockContentionCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 1000, "increments per thread")
}

func (c *lockContentionCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	s := uthread.New(uthread.DefaultConfig())
	s.Init()

	counter := 0
	worker := func(arg any) any {
		for i := 0; i < c.n; i++ {
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
	if _, err := s.Join(t1); err != nil {
		fmt.Println("join t1:", err)
		return subcommands.ExitFailure
	}
	if _, err := s.Join(t2); err != nil {
		fmt.Println("join t2:", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("counter = %d (want %d)\n", counter, 2*c.n)
	if counter != 2*c.n {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// waitSignalCmd runs a wait/signal dependency chain between two
// threads, adapted from the reference driver's preemptive example.
type waitSignalCmd struct{}

func (*waitSignalCmd) Name() string     { return "wait-signal" }
func (*waitSignalCmd) Synopsis() string { return "run a wait/signal dependency chain" }
func (*waitSignalCmd) Usage() string    { return "wait-signal\n" }
func (*waitSignalCmd) SetFlags(*flag.FlagSet) {}

func (*waitSignalCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	s := uthread.New(uthread.DefaultConfig())
	s.Init()

	sum := func(param int) int {
		total := param
		for i := 0; i < param*big; i++ {
			total++
		}
		return total
	}

	t1 := func(arg any) any {
		param := arg.(int)
		if err := s.Wait(1, 2); err != nil {
			return err
		}
		fmt.Printf("%d t1 started\n", param)
		result := sum(param)
		fmt.Printf("%d t1: done result=%d\n", param, result)
		if err := s.Signal(1, 1); err != nil {
			return err
		}
		return result
	}
	t2 := func(arg any) any {
		param := arg.(int)
		if err := s.Wait(1, 1); err != nil {
			return err
		}
		fmt.Printf("%d t2 started\n", param)
		result := sum(param)
		fmt.Printf("%d t2: done result=%d\n", param, result)
		return result
	}

	id3 := s.Create(t2, 3)
	id1 := s.Create(t1, 1)

	if err := s.Signal(1, 2); err != nil {
		fmt.Println("signal:", err)
		return subcommands.ExitFailure
	}

	r1, err := s.Join(id1)
	if err != nil {
		fmt.Println("join id1:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("joined #1 --> %v\n", r1)

	r3, err := s.Join(id3)
	if err != nil {
		fmt.Println("join id3:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("joined #3 --> %v\n", r3)
	return subcommands.ExitSuccess
}

// stickySignalCmd issues a signal before anyone waits, showing the
// latch makes the subsequent wait return without blocking.
type stickySignalCmd struct{}

func (*stickySignalCmd) Name() string     { return "sticky-signal" }
func (*stickySignalCmd) Synopsis() string { return "signal before wait does not block" }
func (*stickySignalCmd) Usage() string    { return "sticky-signal\n" }
func (*stickySignalCmd) SetFlags(*flag.FlagSet) {}

func (*stickySignalCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	s := uthread.New(uthread.DefaultConfig())
	s.Init()

	if err := s.Signal(0, 0); err != nil {
		fmt.Println("signal:", err)
		return subcommands.ExitFailure
	}

	tid := s.Create(func(arg any) any {
		if err := s.Wait(0, 0); err != nil {
			return err
		}
		fmt.Println("waiter did not block")
		return nil
	}, nil)

	if _, err := s.Join(tid); err != nil {
		fmt.Println("join:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// joinAfterExitCmd exits a thread with a result before its parent
// calls join, showing join still returns that result.
type joinAfterExitCmd struct{}

func (*joinAfterExitCmd) Name() string     { return "join-after-exit" }
func (*joinAfterExitCmd) Synopsis() string { return "join after the child already exited" }
func (*joinAfterExitCmd) Usage() string    { return "join-after-exit\n" }
func (*joinAfterExitCmd) SetFlags(*flag.FlagSet) {}

func (*joinAfterExitCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	s := uthread.New(uthread.DefaultConfig())
	s.Init()

	tid := s.Create(func(arg any) any { return 7 }, nil)
	result, err := s.Join(tid)
	if err != nil {
		fmt.Println("join:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("joined --> %v\n", result)
	if result != 7 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// preemptCmd runs lock contention under a real preemption timer,
// demonstrating the signal-safety discipline holds.
type preemptCmd struct {
	n              int
	intervalMicros int
}

func (*preemptCmd) Name() string     { return "preempt" }
func (*preemptCmd) Synopsis() string { return "run lock contention under preemption" }
func (*preemptCmd) Usage() string    { return "preempt [-n count] [-interval us]\n" }
func (c *preemptCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 100000, "increments per thread")
	f.IntVar(&c.intervalMicros, "interval", 10, "preemption tick interval in microseconds")
}

func (c *preemptCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	s := uthread.New(uthread.DefaultConfig())
	s.Init()

	timer := preempttimer.New(s)
	if err := timer.Start(time.Duration(c.intervalMicros) * time.Microsecond); err != nil {
		fmt.Println("start timer:", err)
		return subcommands.ExitFailure
	}
	defer timer.Stop()

	counter := 0
	worker := func(arg any) any {
		for i := 0; i < c.n; i++ {
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
	if _, err := s.Join(t1); err != nil {
		fmt.Println("join t1:", err)
		return subcommands.ExitFailure
	}
	if _, err := s.Join(t2); err != nil {
		fmt.Println("join t2:", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("counter = %d (want %d)\n", counter, 2*c.n)
	if counter != 2*c.n {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
