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

// Command threaddemo is the uthread driver: the user program the core
// design treats as an out-of-scope collaborator. It exercises the
// library's end-to-end behavior through a set of subcommands, one per
// scheduling scenario (alternation, lock contention, wait/signal
// ordering, sticky signals, join-after-exit, and preemption).
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"uthread.dev/uthread/pkg/log"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&alternateCmd{}, "")
	subcommands.Register(&lockContentionCmd{}, "")
	subcommands.Register(&waitSignalCmd{}, "")
	subcommands.Register(&stickySignalCmd{}, "")
	subcommands.Register(&joinAfterExitCmd{}, "")
	subcommands.Register(&preemptCmd{}, "")

	flag.Parse()
	log.SetLevel(log.Info)
	os.Exit(int(subcommands.Execute(context.Background())))
}
