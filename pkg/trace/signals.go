// Copyright 2025 The moj Authors.
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

//go:build linux
// +build linux

package trace

import (
	"fmt"

	"github.com/moloom/moj/pkg/verdict"
	"golang.org/x/sys/unix"
)

// passSignals are resumed without delivery: they carry no information
// about the candidate's fate. SIGURG is load-bearing — the Go runtime
// uses it for preemption, so a candidate that is itself a Go binary
// receives it constantly.
var passSignals = map[unix.Signal]bool{
	unix.SIGWINCH: true,
	unix.SIGCHLD:  true,
	unix.SIGURG:   true,
	unix.SIGCONT:  true,
}

// classifySignal maps a signal-stop to its verdict. pass reports that
// the signal is benign and the tracee should resume (the signal itself
// is swallowed, never delivered).
func classifySignal(sig unix.Signal) (code verdict.Status, msg string, pass bool) {
	switch sig {
	case unix.SIGXCPU:
		return verdict.TLE, "", false
	case unix.SIGXFSZ:
		return verdict.OLE, "", false
	case unix.SIGFPE:
		return verdict.REUser, "Floating point exception", false
	case unix.SIGSEGV:
		return verdict.REUser, "Invalid memory reference", false
	}
	if passSignals[sig] {
		return verdict.AC, "", true
	}
	return verdict.REUser, fmt.Sprintf("Killed by signal %d (%s)", int(sig), unix.SignalName(sig)), false
}
