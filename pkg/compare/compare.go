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

// Package compare decides AC, PE or WA for a candidate's captured
// output: against a static answer file with whitespace-tolerant
// semantics, or by delegating to a problem-specific judge binary.
package compare

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/moloom/moj/pkg/verdict"
	"golang.org/x/sys/unix"
)

// JudgeSuffix marks an answer path as a judge binary rather than a
// static answer file.
const JudgeSuffix = ".exe"

// Answer compares the candidate output in out against ansPath,
// dispatching on the path suffix.
func Answer(out *os.File, ansPath string) (verdict.Status, string) {
	if strings.HasSuffix(ansPath, JudgeSuffix) {
		return Dynamic(out, ansPath)
	}
	return Static(out, ansPath)
}

// Static memory-maps both the candidate output and the answer file and
// applies the whitespace-tolerant comparison. Empty output is WA; an
// empty answer file is broken problem data, EE.
func Static(out *os.File, ansPath string) (verdict.Status, string) {
	ans, err := os.Open(ansPath)
	if err != nil {
		return verdict.EE, fmt.Sprintf("open %s error: %v", ansPath, err)
	}
	defer ans.Close()

	ost, err := out.Stat()
	if err != nil {
		return verdict.IE, fmt.Sprintf("stat output error: %v", err)
	}
	ast, err := ans.Stat()
	if err != nil {
		return verdict.IE, fmt.Sprintf("stat %s error: %v", ansPath, err)
	}
	if ost.Size() == 0 {
		return verdict.WA, ""
	}
	if ast.Size() == 0 {
		return verdict.EE, fmt.Sprintf("no data in %s.", ansPath)
	}

	ob, err := unix.Mmap(int(out.Fd()), 0, int(ost.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return verdict.IE, fmt.Sprintf("mmap output error: %v", err)
	}
	defer unix.Munmap(ob)
	ab, err := unix.Mmap(int(ans.Fd()), 0, int(ast.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return verdict.IE, fmt.Sprintf("mmap %s error: %v", ansPath, err)
	}
	defer unix.Munmap(ab)

	return compareBytes(ob, ab), ""
}

// compareBytes classifies two byte ranges. Byte-exact (after trimming
// trailing whitespace) is AC; equal after skipping whitespace on either
// side is PE; anything else, including either side collapsing to
// nothing, is WA.
func compareBytes(out, ans []byte) verdict.Status {
	out = trimTrailingBlank(out)
	ans = trimTrailingBlank(ans)
	if len(out) == 0 || len(ans) == 0 {
		return verdict.WA
	}

	// First pass: no skipping.
	i, j := 0, 0
	for i < len(out) && j < len(ans) {
		if out[i] != ans[j] {
			break
		}
		i++
		j++
	}
	if i >= len(out) && j >= len(ans) {
		return verdict.AC
	}

	// Second pass: skip whitespace on whichever side currently has it.
	i, j = 0, 0
	for i < len(out) && j < len(ans) {
		if isBlank(out[i]) {
			i++
			continue
		}
		if isBlank(ans[j]) {
			j++
			continue
		}
		if out[i] != ans[j] {
			return verdict.WA
		}
		i++
		j++
	}

	// Both exhausted together is PE; one being a prefix of the other
	// is still WA.
	if i >= len(out) && j >= len(ans) {
		return verdict.PE
	}
	return verdict.WA
}

func trimTrailingBlank(b []byte) []byte {
	n := len(b)
	for n > 0 && isBlank(b[n-1]) {
		n--
	}
	return b[:n]
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

// rewind repositions the scratch file for a reader that consumes it
// from the start. The candidate left the shared offset at end of file.
func rewind(f *os.File) error {
	_, err := f.Seek(0, io.SeekStart)
	return err
}
