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
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Kill SIGKILLs pid. The sandbox normally runs with real and effective
// uid swapped; if the unprivileged kill is rejected it regains root for
// just the one signal, then swaps back. SIGKILL is not visible to the
// tracee as a ptrace stop, so this ends a tracee unconditionally.
func Kill(pid int) {
	if err := unix.Kill(pid, unix.SIGKILL); err == unix.EPERM {
		if err := unix.Setreuid(unix.Geteuid(), unix.Getuid()); err != nil {
			logrus.Errorf("kill pid=%d: setreuid: %v", pid, err)
			return
		}
		if err := unix.Kill(pid, unix.SIGKILL); err != nil {
			logrus.Errorf("kill pid=%d: %v", pid, err)
		}
		if err := unix.Setreuid(unix.Geteuid(), unix.Getuid()); err != nil {
			logrus.Errorf("kill pid=%d: setreuid back: %v", pid, err)
		}
	}
}

// KillWait kills pid and reaps it so no zombie outlives the case. A pid
// that was already reaped (ECHILD) is fine.
func KillWait(pid int) {
	Kill(pid)
	var status unix.WaitStatus
	if _, err := wait4(pid, &status, 0, nil); err != nil && err != unix.ECHILD {
		logrus.Errorf("reap pid=%d: %v", pid, err)
	}
}

// Watchdog bounds a supervised process in wall-clock time. When the
// timer fires it kills the process; the owner's wait loop then
// observes the death and attributes the timeout (TLE for a candidate,
// EE for a judge) instead of a runtime error.
type Watchdog struct {
	timer *time.Timer
	fired atomic.Bool
}

// StartWatchdog arms a watchdog that kills pid after d.
func StartWatchdog(d time.Duration, pid int) *Watchdog {
	w := &Watchdog{}
	w.timer = time.AfterFunc(d, func() {
		w.fired.Store(true)
		logrus.Debugf("watchdog fired for pid=%d", pid)
		Kill(pid)
	})
	return w
}

// Stop disarms the watchdog. A concurrent firing may still be in
// flight; check Expired after the wait returns.
func (w *Watchdog) Stop() {
	w.timer.Stop()
}

// Expired reports whether the watchdog killed the process.
func (w *Watchdog) Expired() bool {
	return w.fired.Load()
}
