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

//go:build linux && amd64
// +build linux,amd64

package policy

import "golang.org/x/sys/unix"

// allowedSyscalls is the set of syscalls a candidate program may issue.
// It covers process startup (dynamic loader included), computation and
// stdio; anything that creates processes, opens sockets or signals
// other processes is absent and terminates the candidate.
var allowedSyscalls = map[uint64]string{
	unix.SYS_ACCESS:          "access",
	unix.SYS_ARCH_PRCTL:      "arch_prctl",
	unix.SYS_BRK:             "brk",
	unix.SYS_CLOCK_GETRES:    "clock_getres",
	unix.SYS_CLOCK_GETTIME:   "clock_gettime",
	unix.SYS_CLOCK_NANOSLEEP: "clock_nanosleep",
	unix.SYS_CLOSE:           "close",
	unix.SYS_EXECVE:          "execve",
	unix.SYS_EXIT:            "exit",
	unix.SYS_EXIT_GROUP:      "exit_group",
	unix.SYS_FACCESSAT:       "faccessat",
	unix.SYS_FCNTL:           "fcntl",
	unix.SYS_FSTAT:           "fstat",
	unix.SYS_FUTEX:           "futex",
	unix.SYS_GETCWD:          "getcwd",
	unix.SYS_GETEGID:         "getegid",
	unix.SYS_GETEUID:         "geteuid",
	unix.SYS_GETGID:          "getgid",
	unix.SYS_GETPID:          "getpid",
	unix.SYS_GETRANDOM:       "getrandom",
	unix.SYS_GETRLIMIT:       "getrlimit",
	unix.SYS_GETTIMEOFDAY:    "gettimeofday",
	unix.SYS_GETUID:          "getuid",
	unix.SYS_IOCTL:           "ioctl",
	unix.SYS_LSEEK:           "lseek",
	unix.SYS_LSTAT:           "lstat",
	unix.SYS_MADVISE:         "madvise",
	unix.SYS_MMAP:            "mmap",
	unix.SYS_MPROTECT:        "mprotect",
	unix.SYS_MREMAP:          "mremap",
	unix.SYS_MUNMAP:          "munmap",
	unix.SYS_NANOSLEEP:       "nanosleep",
	unix.SYS_NEWFSTATAT:      "newfstatat",
	unix.SYS_OPEN:            "open",
	unix.SYS_OPENAT:          "openat",
	unix.SYS_PREAD64:         "pread64",
	unix.SYS_PRLIMIT64:       "prlimit64",
	unix.SYS_READ:            "read",
	unix.SYS_READLINK:        "readlink",
	unix.SYS_READLINKAT:      "readlinkat",
	unix.SYS_READV:           "readv",
	unix.SYS_RSEQ:            "rseq",
	unix.SYS_RT_SIGACTION:    "rt_sigaction",
	unix.SYS_RT_SIGPROCMASK:  "rt_sigprocmask",
	unix.SYS_RT_SIGRETURN:    "rt_sigreturn",
	unix.SYS_SCHED_YIELD:     "sched_yield",
	unix.SYS_SET_ROBUST_LIST: "set_robust_list",
	unix.SYS_SET_TID_ADDRESS: "set_tid_address",
	unix.SYS_STAT:            "stat",
	unix.SYS_SYSINFO:         "sysinfo",
	unix.SYS_TIME:            "time",
	unix.SYS_TIMES:           "times",
	unix.SYS_UNAME:           "uname",
	unix.SYS_WRITE:           "write",
	unix.SYS_WRITEV:          "writev",
}

// memorySyscalls are the calls after which the monitor re-checks the
// tracee's VM size. 32-bit kernels also have mmap2 here; amd64 does
// not define it.
var memorySyscalls = map[uint64]string{
	unix.SYS_BRK:    "brk",
	unix.SYS_MMAP:   "mmap",
	unix.SYS_MREMAP: "mremap",
	unix.SYS_MUNMAP: "munmap",
}
