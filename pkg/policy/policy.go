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

// Package policy holds the static system-call policy applied to traced
// candidates. The policy is fixed at build time and read-only at run
// time; the monitor consults it on every syscall-entry stop.
package policy

import "sort"

// SyscallIsValid reports whether a candidate may issue syscall nr.
func SyscallIsValid(nr uint64) bool {
	_, ok := allowedSyscalls[nr]
	return ok
}

// MemorySyscall reports whether syscall nr can change the size of the
// candidate's virtual address space. The monitor re-reads the tracee's
// VM size after each exit stop of these calls.
func MemorySyscall(nr uint64) bool {
	_, ok := memorySyscalls[nr]
	return ok
}

// Name returns the name of an allowed syscall, or "" if nr is not in
// the allow-list.
func Name(nr uint64) string {
	return allowedSyscalls[nr]
}

// Allowed returns the allow-listed syscall numbers in ascending order.
func Allowed() []uint64 {
	nrs := make([]uint64, 0, len(allowedSyscalls))
	for nr := range allowedSyscalls {
		nrs = append(nrs, nr)
	}
	sort.Slice(nrs, func(i, j int) bool { return nrs[i] < nrs[j] })
	return nrs
}
