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

package trace

import "golang.org/x/sys/unix"

// syscallNumber extracts the syscall number from a stopped tracee's
// registers. Orig_rax survives the kernel's in-register return value on
// exit stops, so it is valid at both ends of the pair.
func syscallNumber(regs *unix.PtraceRegs) uint64 {
	return regs.Orig_rax
}
