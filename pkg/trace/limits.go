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
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// CPULimitSecs converts the millisecond time limit to the soft
// RLIMIT_CPU value for the candidate. The slack above the limit lets
// the monitor observe SIGXCPU and attribute TLE itself; the hard limit
// is one second above soft so the kernel's SIGKILL never preempts that.
func CPULimitSecs(timeLimitMS int) int {
	if timeLimitMS%1000 == 0 {
		return timeLimitMS/1000 + 1
	}
	return timeLimitMS/1000 + 2
}

// WatchdogSecs is the wall-clock budget for one candidate run, one
// second above the candidate's soft CPU limit (level with its hard
// limit): the watchdog is the escape of last resort for candidates that
// sleep or block instead of burning CPU.
func WatchdogSecs(timeLimitMS int) int {
	if timeLimitMS%1000 == 0 {
		return timeLimitMS/1000 + 2
	}
	return timeLimitMS/1000 + 3
}

// vmSizeOK reads the tracee's total virtual size and checks it against
// the limit. Virtual size deliberately overcounts relative to resident
// size; the limit is conservative by policy. An unreadable statm is
// treated as over-limit.
func vmSizeOK(pid, limitKB int) bool {
	data, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/statm")
	if err != nil {
		return false
	}
	kb, err := statmSizeKB(data, unix.Getpagesize())
	if err != nil {
		return false
	}
	return kb <= limitKB
}

// statmSizeKB converts the first field of /proc/<pid>/statm (total
// program size in pages) to KiB.
func statmSizeKB(statm []byte, pagesize int) (int, error) {
	fields := strings.Fields(string(statm))
	if len(fields) == 0 {
		return 0, strconv.ErrSyntax
	}
	pages, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, err
	}
	return pages * pagesize / 1024, nil
}
