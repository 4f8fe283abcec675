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

package compare

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/moloom/moj/pkg/trace"
	"github.com/moloom/moj/pkg/verdict"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// judgeTimeout is the judge binary's wall-clock budget. A judge must
// also fit its verdict in the pipe buffer: the parent does not read
// until the judge has terminated.
const judgeTimeout = 5 * time.Second

// Dynamic feeds the candidate's output to the judge binary at ansPath
// and maps the first byte the judge writes to a verdict: '0' AC,
// '1' PE, '2' WA, '3' judge-side pre-exec failure. The judge runs with
// uid set to the real uid, its stdin on the scratch file, its stdout on
// a pipe and its stderr closed.
func Dynamic(out *os.File, ansPath string) (verdict.Status, string) {
	if err := rewind(out); err != nil {
		return verdict.IE, fmt.Sprintf("rewind output error: %v", err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		return verdict.IE, fmt.Sprintf("pipe error: %v", err)
	}
	defer r.Close()

	judge, err := os.StartProcess(ansPath, []string{ansPath}, &os.ProcAttr{
		Files: []*os.File{out, w, nil},
		Sys: &syscall.SysProcAttr{
			Credential: &syscall.Credential{
				Uid: uint32(os.Getuid()),
				Gid: uint32(os.Getgid()),
				// The parent's effective uid is unprivileged here;
				// supplementary groups stay as inherited.
				NoSetGroups: true,
			},
		},
	})
	if err != nil {
		w.Close()
		return verdict.IE, fmt.Sprintf("answer program error: before exec: %v", err)
	}
	w.Close()

	// If the judge writes more than the pipe holds it blocks forever,
	// since nothing drains the pipe until it has terminated. The
	// watchdog breaks that deadlock.
	wd := trace.StartWatchdog(judgeTimeout, judge.Pid)
	var status unix.WaitStatus
	_, werr := waitEINTR(judge.Pid, &status, unix.WUNTRACED)
	wd.Stop()

	if wd.Expired() {
		return verdict.EE, "answer program error: output too much"
	}
	if werr != nil {
		trace.KillWait(judge.Pid)
		return verdict.IE, fmt.Sprintf("wait4 error: %v", werr)
	}
	if status.Stopped() {
		trace.Kill(judge.Pid)
		reap(judge.Pid)
	}

	var ret [1]byte
	if n, _ := r.Read(ret[:]); n != 1 {
		return verdict.EE, "answer program error: no output"
	}
	switch ret[0] {
	case '0':
		return verdict.AC, ""
	case '1':
		return verdict.PE, ""
	case '2':
		return verdict.WA, ""
	case '3':
		return verdict.IE, "answer program error: before exec"
	default:
		return verdict.EE, "answer program error: output unrecognisable"
	}
}

func waitEINTR(pid int, status *unix.WaitStatus, options int) (int, error) {
	for {
		wpid, err := unix.Wait4(pid, status, options, nil)
		if err != unix.EINTR {
			return wpid, err
		}
	}
}

// reap collects a judge that was killed after being found stopped. The
// poll keeps a wedged judge from hanging the verdict path.
func reap(pid int) {
	op := func() error {
		var status unix.WaitStatus
		wpid, err := unix.Wait4(pid, &status, unix.WNOHANG, nil)
		switch {
		case err == unix.ECHILD || wpid == pid:
			return nil
		case err != nil:
			return backoff.Permanent(err)
		default:
			return errors.Errorf("pid %d not reaped yet", pid)
		}
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(100*time.Millisecond), 20)
	if err := backoff.Retry(op, b); err != nil {
		logrus.Errorf("reaping judge pid=%d: %v", pid, err)
	}
}
