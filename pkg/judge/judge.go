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

// Package judge runs a candidate program against a test set and
// produces a single verdict. It owns the per-run resources (run lock,
// scratch output file) and drives each case through the pre-exec
// waiter, the execution monitor and the output comparator.
package judge

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/moloom/moj/pkg/compare"
	"github.com/moloom/moj/pkg/manifest"
	"github.com/moloom/moj/pkg/trace"
	"github.com/moloom/moj/pkg/verdict"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Condition is the immutable configuration of one sandbox run.
type Condition struct {
	// TimeMS is the candidate's CPU time limit in milliseconds.
	TimeMS int
	// MemoryKB is the candidate's virtual memory limit in KiB.
	MemoryKB int
	// FsizeKB is the candidate's output size limit in KiB.
	FsizeKB int
	// Who is the unprivileged uid/gid the candidate runs as.
	Who int
	// BaseDir is the candidate's working directory and the home of the
	// scratch output file.
	BaseDir string
	// DataDir holds the test-set manifest.
	DataDir string
	// Magic names the per-run scratch and lock files.
	Magic string
	// Command is the candidate argv.
	Command []string
}

// Run judges the candidate against every manifest case, short-circuits
// on the first non-AC verdict, and on full success reports the maximum
// time and memory across cases.
func Run(cond *Condition) verdict.Result {
	lock := flock.New(filepath.Join(cond.BaseDir, cond.Magic+".lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return verdict.Errorf(verdict.EE, "lock %s error: %v", lock.Path(), err)
	}
	if !ok {
		return verdict.Errorf(verdict.EE, "another run holds %s", lock.Path())
	}
	defer lock.Unlock()

	m, err := manifest.Load(cond.DataDir)
	if err != nil {
		return verdict.Errorf(verdict.EE, "%v", err)
	}

	out, err := newScratch(cond.BaseDir, cond.Magic)
	if err != nil {
		return verdict.Errorf(verdict.IE, "%v", err)
	}
	defer out.Close()

	var maxTime, maxMemory int
	for i := 0; i < m.Count(); i++ {
		logrus.Debugf("case %d: input=%s answer=%s", i, m.Input(i), m.Answer(i))
		res := runCase(cond, m.Input(i), m.Answer(i), out)
		if res.Code != verdict.AC {
			return res
		}
		if res.TimeMS > maxTime {
			maxTime = res.TimeMS
		}
		if res.MemoryKB > maxMemory {
			maxMemory = res.MemoryKB
		}
	}
	return verdict.Result{Code: verdict.AC, TimeMS: maxTime, MemoryKB: maxMemory}
}

// runCase judges one (input, answer) pair. The scratch file is reset,
// the candidate is run under trace, and its output compared. Whatever
// path is taken, the tracee is dead and reaped and the per-case input
// and pipe fds are closed when this returns.
func runCase(cond *Condition, inPath, ansPath string, out *os.File) verdict.Result {
	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return verdict.Errorf(verdict.IE, "rewind scratch error: %v", err)
	}
	if err := out.Truncate(0); err != nil {
		return verdict.Errorf(verdict.IE, "truncate scratch error: %v", err)
	}

	in, err := os.Open(inPath)
	if err != nil {
		return verdict.Errorf(verdict.IE, "open %s error: %v", inPath, err)
	}
	defer in.Close()

	msgR, msgW, err := os.Pipe()
	if err != nil {
		return verdict.Errorf(verdict.IE, "pipe error: %v", err)
	}
	defer msgR.Close()

	// The thread that forks the setup process is its tracer; every
	// ptrace and wait call for this case must stay on it.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	pid, err := spawnChild(cond, in, out, msgW)
	msgW.Close()
	if err != nil {
		return verdict.Errorf(verdict.IE, "fork error: %v", err)
	}

	t := trace.New(pid, msgR)
	if code, msg := t.WaitPreExec(cond.MemoryKB); code != verdict.AC {
		return verdict.Result{Code: code, Msg: msg}
	}
	if code, msg := t.Monitor(cond.TimeMS, cond.MemoryKB); code != verdict.AC {
		return verdict.Result{Code: code, Msg: msg}
	}
	if code, msg := compare.Answer(out, ansPath); code != verdict.AC {
		return verdict.Result{Code: code, Msg: msg}
	}

	return finishCase(cond, t.LastTimeMS-t.PreTimeMS, t.LastMemoryKB-t.PreMemoryKB)
}

// finishCase applies the resource check an AC from the monitor still
// has pending: the candidate's own usage, baseline subtracted, must fit
// the judged limits.
func finishCase(cond *Condition, usedTimeMS, usedMemoryKB int) verdict.Result {
	if usedTimeMS > cond.TimeMS {
		return verdict.Result{Code: verdict.TLE}
	}
	if usedMemoryKB > cond.MemoryKB {
		return verdict.Result{Code: verdict.MLE}
	}
	return verdict.Result{Code: verdict.AC, TimeMS: usedTimeMS, MemoryKB: usedMemoryKB}
}

// newScratch creates the shared output file and immediately unlinks it:
// the candidate reaches it only as an inherited descriptor, never by
// name. Mode is wide open; the candidate runs as a different uid.
func newScratch(baseDir, magic string) (*os.File, error) {
	path := filepath.Join(baseDir, magic+".out")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0777)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if err := os.Remove(path); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "unlink %s", path)
	}
	return f, nil
}

// selfExe respawns this binary for the candidate setup subcommand.
const selfExe = "/proc/self/exe"

// spawnChild starts the setup process with the case input on stdin, the
// scratch file on stdout, stderr closed, and the control pipe's write
// end on fd 3.
func spawnChild(cond *Condition, in, out, msg *os.File) (int, error) {
	argv := []string{"moj", "child",
		"-time-ms", strconv.Itoa(cond.TimeMS),
		"-fsize-kb", strconv.Itoa(cond.FsizeKB),
		"-who", strconv.Itoa(cond.Who),
		"-basedir", cond.BaseDir,
		"--"}
	argv = append(argv, cond.Command...)

	p, err := os.StartProcess(selfExe, argv, &os.ProcAttr{
		Files: []*os.File{in, out, nil, msg},
	})
	if err != nil {
		return 0, err
	}
	logrus.Debugf("spawned setup process pid=%d for %v", p.Pid, cond.Command)
	return p.Pid, nil
}

// String renders the condition for the startup banner.
func (c *Condition) String() string {
	return fmt.Sprintf("time=%dms memory=%dkb fsize=%dkb who=%d basedir=%s datadir=%s magic=%s command=%v",
		c.TimeMS, c.MemoryKB, c.FsizeKB, c.Who, c.BaseDir, c.DataDir, c.Magic, c.Command)
}
