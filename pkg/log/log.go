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

// Package log provides the leveled logging surface used throughout
// uthread. It is a thin set of leveled functions over logrus's standard
// logger so that the scheduler's diagnostic stream (thread lifecycle,
// per-operation trace) can be filtered by level independently of the
// standard library's log package. Warnings (invariant violations) are
// always emitted.
package log

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Level is a logging level, ordered least to most verbose.
type Level int

const (
	// Warning is for invariant violations and other best-effort
	// recoveries the scheduler keeps running through.
	Warning Level = iota
	// Info is for thread lifecycle events: create, exit, join.
	Info
	// Debug is for per-operation scheduler trace: queue transfers,
	// context swaps.
	Debug
)

var (
	mu      sync.RWMutex
	emitter = logrus.StandardLogger()
	level   = Info
)

// SetLevel adjusts the minimum level that reaches the emitter.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
	if l >= Debug && emitter.GetLevel() < logrus.DebugLevel {
		emitter.SetLevel(logrus.DebugLevel)
	}
}

// IsLogging reports whether l would currently be emitted.
func IsLogging(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l <= level
}

// Debugf logs per-operation scheduler trace.
func Debugf(format string, args ...any) {
	if !IsLogging(Debug) {
		return
	}
	emitter.Debugf(format, args...)
}

// Infof logs thread lifecycle events.
func Infof(format string, args ...any) {
	if !IsLogging(Info) {
		return
	}
	emitter.Infof(format, args...)
}

// Warningf logs invariant violations. The scheduler is expected to
// continue running after emitting one of these; the log line is the
// only signal the violation occurred.
func Warningf(format string, args ...any) {
	emitter.Warningf(format, args...)
}
