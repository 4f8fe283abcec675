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

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/google/subcommands"
	"github.com/moloom/moj/pkg/trace"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// msgFd is where the parent wired the write end of the control pipe.
const msgFd = 3

// Child implements subcommands.Command for the internal "child"
// command: the candidate setup process. The parent spawns it with the
// case input on stdin, the scratch file on stdout and stderr closed; it
// finishes the sandbox setup from inside and execs the candidate.
//
// Exit protocol, read by the parent's first wait: a setup failure
// writes its diagnostic to the control pipe and exits 1; a failed exec
// exits 2; a successful exec never returns.
type Child struct {
	timeMS  int
	fsizeKB int
	who     int
	baseDir string
}

// Name implements subcommands.Command.Name.
func (*Child) Name() string {
	return "child"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Child) Synopsis() string {
	return "set up and exec a candidate program (internal use only)"
}

// Usage implements subcommands.Command.Usage.
func (*Child) Usage() string {
	return `child -time-ms <ms> -fsize-kb <kb> -who <uid> -basedir <dir> -- <argv...> - candidate setup process.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *Child) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.timeMS, "time-ms", 0, "candidate time limit in milliseconds.")
	f.IntVar(&c.fsizeKB, "fsize-kb", 0, "candidate output size limit in KiB.")
	f.IntVar(&c.who, "who", 0, "uid/gid the candidate runs as.")
	f.StringVar(&c.baseDir, "basedir", "", "candidate working directory.")
}

// Execute implements subcommands.Command.Execute.
func (c *Child) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	// The traced thread must be the one that execs.
	runtime.LockOSThread()

	msg := os.NewFile(msgFd, "control-pipe")
	fail := func(err error) subcommands.ExitStatus {
		fmt.Fprintf(msg, "%v", err)
		msg.Close()
		os.Exit(1)
		panic("unreachable")
	}

	candidate := f.Args()
	if len(candidate) == 0 {
		return fail(errors.New("no candidate command"))
	}

	// The control pipe must not leak into the candidate; the exec
	// closes it.
	if _, err := unix.FcntlInt(msgFd, unix.F_SETFD, unix.FD_CLOEXEC); err != nil {
		return fail(errors.Wrap(err, "fcntl control pipe"))
	}

	if err := os.Chdir(c.baseDir); err != nil {
		return fail(errors.Wrap(err, "chdir"))
	}
	if err := setRlimits(c.timeMS, c.fsizeKB); err != nil {
		return fail(err)
	}
	if err := setPermission(c.who); err != nil {
		return fail(err)
	}

	if _, _, errno := unix.RawSyscall6(unix.SYS_PTRACE, unix.PTRACE_TRACEME, 0, 0, 0, 0, 0); errno != 0 {
		return fail(errors.Wrap(errno, "ptrace traceme"))
	}

	// PATH lookup mirrors execvp; from here on any failure is an exec
	// failure.
	path, err := exec.LookPath(candidate[0])
	if err == nil {
		unix.Exec(path, candidate, os.Environ())
	}
	os.Exit(2)
	panic("unreachable")
}

// setRlimits applies the candidate's resource envelope: no core files,
// the output size cap, and a CPU cap with enough slack that SIGXCPU
// (and never the kernel's SIGKILL) is what ends an overlong run.
func setRlimits(timeMS, fsizeKB int) error {
	if err := unix.Setrlimit(unix.RLIMIT_CORE, &unix.Rlimit{Cur: 0, Max: 0}); err != nil {
		return errors.Wrap(err, "setrlimit core")
	}
	fsize := uint64(fsizeKB) * 1024
	if err := unix.Setrlimit(unix.RLIMIT_FSIZE, &unix.Rlimit{Cur: fsize, Max: fsize}); err != nil {
		return errors.Wrap(err, "setrlimit fsize")
	}
	soft := uint64(trace.CPULimitSecs(timeMS))
	if err := unix.Setrlimit(unix.RLIMIT_CPU, &unix.Rlimit{Cur: soft, Max: soft + 1}); err != nil {
		return errors.Wrap(err, "setrlimit cpu")
	}
	return nil
}

// setPermission moves the process to the unprivileged identity. The
// parent runs with real and effective uid swapped, so the swap here
// regains euid 0 first; setgid must precede setuid or it would no
// longer be permitted. Both set all three ids.
func setPermission(who int) error {
	if err := unix.Setreuid(unix.Geteuid(), unix.Getuid()); err != nil {
		return errors.Wrap(err, "setreuid")
	}
	if err := unix.Setgid(who); err != nil {
		return errors.Wrap(err, "setgid")
	}
	if err := unix.Setuid(who); err != nil {
		return errors.Wrap(err, "setuid")
	}
	return nil
}
