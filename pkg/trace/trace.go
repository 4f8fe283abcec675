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

// Package trace supervises one traced candidate process: it waits for
// the initial execve stop, then drives the tracee across syscall-stop
// pairs enforcing the syscall policy and the memory limit, and turns
// whatever ends the tracee's life into a verdict.
//
// All calls on a Tracee must come from the OS thread that spawned it
// (runtime.LockOSThread): the kernel reports ptrace stops only to the
// tracer thread.
package trace

import (
	"fmt"
	"os"
	"time"

	"github.com/moloom/moj/pkg/policy"
	"github.com/moloom/moj/pkg/verdict"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Tracee is the parent-side state of one traced candidate.
type Tracee struct {
	// Pid of the candidate setup process (becomes the candidate at exec).
	Pid int

	// msg is the read end of the control pipe; the setup process
	// reports pre-exec failures on it.
	msg *os.File

	// Baseline resource usage at the execve stop. Everything before it
	// (setup process startup included) is attributed to the sandbox,
	// not the candidate.
	PreTimeMS   int
	PreMemoryKB int

	// Final resource usage at tracee exit.
	LastTimeMS   int
	LastMemoryKB int
}

// New returns a Tracee for a just-spawned setup process. msg is the
// read end of the control pipe; the caller keeps ownership and closes
// it after the case.
func New(pid int, msg *os.File) *Tracee {
	return &Tracee{Pid: pid, msg: msg}
}

// WaitPreExec waits for the tracee's first stop, which must be the
// SIGTRAP raised by a successful execve of the candidate under
// PTRACE_TRACEME. On that path it checks the memory limit once (the
// data segment alone can bust it), snapshots the resource baseline and
// resumes the tracee into syscall-stop mode. Every other first event is
// a sandbox failure.
func (t *Tracee) WaitPreExec(memLimitKB int) (verdict.Status, string) {
	var (
		status unix.WaitStatus
		used   unix.Rusage
	)
	if _, err := wait4(t.Pid, &status, 0, &used); err != nil {
		KillWait(t.Pid)
		return verdict.IE, fmt.Sprintf("wait4 error: %v", err)
	}

	switch {
	case status.Stopped():
		var regs unix.PtraceRegs
		if err := unix.PtraceGetRegs(t.Pid, &regs); err != nil {
			KillWait(t.Pid)
			return verdict.IE, fmt.Sprintf("ptrace getregs error: %v", err)
		}
		if status.StopSignal() != unix.SIGTRAP || syscallNumber(&regs) != unix.SYS_EXECVE {
			KillWait(t.Pid)
			return verdict.IE, fmt.Sprintf("child stopped: signal = %d, syscall = %d",
				status.StopSignal(), syscallNumber(&regs))
		}
		if !vmSizeOK(t.Pid, memLimitKB) {
			KillWait(t.Pid)
			return verdict.MLE, ""
		}
		if err := unix.PtraceSyscall(t.Pid, 0); err != nil {
			KillWait(t.Pid)
			return verdict.IE, fmt.Sprintf("ptrace syscall error: %v", err)
		}
		t.PreTimeMS = rusageTimeMS(&used)
		t.PreMemoryKB = rusageMemoryKB(&used)
		logrus.Debugf("execve stop: pid=%d pre_time=%dms pre_memory=%dkb",
			t.Pid, t.PreTimeMS, t.PreMemoryKB)
		return verdict.AC, ""

	case status.Exited():
		switch status.ExitStatus() {
		case 1:
			return verdict.IE, t.readMsg()
		case 2:
			return verdict.IE, "execve error."
		default:
			return verdict.IE, fmt.Sprintf("child exited: value = %d", status.ExitStatus())
		}

	case status.Signaled():
		return verdict.IE, fmt.Sprintf("child terminated: signal = %d", status.Signal())

	default:
		KillWait(t.Pid)
		return verdict.IE, fmt.Sprintf("unknown child status: status = %#x", uint32(status))
	}
}

// Monitor drives the tracee from the first post-execve syscall stop to
// its death and classifies the outcome. On return the tracee is gone:
// either it exited or it was killed and reaped here.
func (t *Tracee) Monitor(timeLimitMS, memLimitKB int) (verdict.Status, string) {
	wd := StartWatchdog(time.Duration(WatchdogSecs(timeLimitMS))*time.Second, t.Pid)
	defer wd.Stop()

	// Syscall direction parity. The execve trap was consumed by
	// WaitPreExec before PTRACE_SYSCALL took effect, so the next
	// SIGTRAP is an entry stop: start at "exit" and toggle before use.
	// PTRACE_O_TRACESYSGOOD is deliberately not set; syscall stops
	// arrive as plain SIGTRAP, which is what this parity scheme (and
	// the signal dispatch below) assumes.
	onExit := true

	for {
		var (
			status unix.WaitStatus
			used   unix.Rusage
		)
		if _, err := wait4(t.Pid, &status, 0, &used); err != nil {
			if wd.Expired() {
				return verdict.TLE, ""
			}
			KillWait(t.Pid)
			return verdict.IE, fmt.Sprintf("wait4 error: %v", err)
		}

		switch {
		case status.Signaled():
			if wd.Expired() {
				return verdict.TLE, ""
			}
			return verdict.REInternal, fmt.Sprintf("child killed: signal = %d", status.Signal())

		case status.Stopped() && status.StopSignal() == unix.SIGTRAP:
			onExit = !onExit

			var regs unix.PtraceRegs
			if err := unix.PtraceGetRegs(t.Pid, &regs); err != nil {
				KillWait(t.Pid)
				return verdict.IE, fmt.Sprintf("ptrace getregs error: %v", err)
			}
			nr := syscallNumber(&regs)

			// Policy is checked on entry only; the exit stop of a
			// rejected call is never reached.
			if !onExit && !policy.SyscallIsValid(nr) {
				KillWait(t.Pid)
				return verdict.REInternal, fmt.Sprintf("syscall = %d", nr)
			}
			if onExit && policy.MemorySyscall(nr) && !vmSizeOK(t.Pid, memLimitKB) {
				KillWait(t.Pid)
				return verdict.MLE, ""
			}

			if err := unix.PtraceSyscall(t.Pid, 0); err != nil {
				KillWait(t.Pid)
				return verdict.IE, fmt.Sprintf("ptrace syscall error: %v", err)
			}

		case status.Stopped():
			sig := status.StopSignal()
			code, msg, pass := classifySignal(sig)
			if !pass {
				KillWait(t.Pid)
				return code, msg
			}
			logrus.Debugf("pid=%d: passing signal %d without delivery", t.Pid, sig)

			// Resume without delivering the signal.
			if err := unix.PtraceSyscall(t.Pid, 0); err != nil {
				KillWait(t.Pid)
				return verdict.IE, fmt.Sprintf("ptrace syscall error: %v", err)
			}

		case status.Exited():
			t.LastTimeMS = rusageTimeMS(&used)
			t.LastMemoryKB = rusageMemoryKB(&used)
			logrus.Debugf("pid=%d exited: last_time=%dms last_memory=%dkb",
				t.Pid, t.LastTimeMS, t.LastMemoryKB)
			return verdict.AC, ""

		default:
			KillWait(t.Pid)
			return verdict.REInternal, "child killed: unknown status"
		}
	}
}

// readMsg drains the setup process's failure report from the control
// pipe.
func (t *Tracee) readMsg() string {
	buf := make([]byte, msgMax)
	n, err := t.msg.Read(buf)
	if n <= 0 {
		return fmt.Sprintf("child exited without a message (read: %v)", err)
	}
	return string(buf[:n])
}

const msgMax = 1024

// wait4 retries unix.Wait4 across EINTR.
func wait4(pid int, status *unix.WaitStatus, options int, rusage *unix.Rusage) (int, error) {
	for {
		wpid, err := unix.Wait4(pid, status, options, rusage)
		if err != unix.EINTR {
			return wpid, err
		}
	}
}

// rusageTimeMS returns user+system CPU time in milliseconds.
func rusageTimeMS(ru *unix.Rusage) int {
	return int(ru.Utime.Sec*1000 + ru.Utime.Usec/1000 +
		ru.Stime.Sec*1000 + ru.Stime.Usec/1000)
}

// rusageMemoryKB approximates resident memory from the minor-fault
// count. Both the baseline and the final reading use this convention,
// so the difference reported for the candidate is internally
// consistent.
func rusageMemoryKB(ru *unix.Rusage) int {
	return int(ru.Minflt) * unix.Getpagesize() / 1024
}
