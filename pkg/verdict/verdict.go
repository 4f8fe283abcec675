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

// Package verdict defines the judging outcome taxonomy and the fixed
// stdout protocol consumed by the submission frontend.
package verdict

import (
	"fmt"
	"io"
)

// Status is the outcome of judging one submission.
//
// The integer values are the wire protocol: the first line printed by
// Emit is the decimal value of the Status. They must not be reordered.
type Status int

const (
	// AC: the candidate terminated normally, within limits, with
	// byte-exact output (modulo trailing whitespace).
	AC Status = iota
	// PE: output matches only after skipping whitespace.
	PE
	// WA: output differs.
	WA
	// REUser: the candidate crashed in a way worth echoing to the end
	// user, e.g. SIGFPE or SIGSEGV.
	REUser
	// REInternal: the candidate was killed for misbehavior (forbidden
	// syscall, unexpected termination). The diagnostic stays internal.
	REInternal
	// TLE: CPU or wall-clock time limit exceeded.
	TLE
	// MLE: virtual memory limit exceeded.
	MLE
	// OLE: output size limit exceeded.
	OLE
	// IE: a failure inside the sandbox itself.
	IE
	// EE: a failure outside the sandbox: bad manifest, empty answer
	// file, misbehaving judge binary.
	EE
)

var labels = map[Status]string{
	AC:         "Accepted",
	PE:         "Presentation Error",
	WA:         "Wrong Answer",
	REUser:     "Runtime Error",
	REInternal: "Runtime Error",
	TLE:        "Time Limit Exceeded",
	MLE:        "Memory Limit Exceeded",
	OLE:        "Output Limit Exceeded",
	IE:         "Internal Error",
	EE:         "External Error",
}

// String returns the human label printed on the second protocol line.
func (s Status) String() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return fmt.Sprintf("Unknown Status %d", int(s))
}

// Result is one judging outcome. TimeMS and MemoryKB are meaningful for
// AC only; Msg is meaningful for REUser, REInternal, IE and EE only.
type Result struct {
	Code     Status
	TimeMS   int
	MemoryKB int
	Msg      string
}

// Errorf builds an error-carrying Result with a formatted diagnostic.
func Errorf(code Status, format string, args ...any) Result {
	return Result{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Emit writes the fixed verdict protocol: the status code line, the
// label line, then the kind-specific trailer. AC carries time and
// memory; the error kinds carry the diagnostic; the limit and
// comparison kinds carry nothing.
func Emit(w io.Writer, r Result) error {
	if _, err := fmt.Fprintf(w, "%d\n%s\n", int(r.Code), r.Code); err != nil {
		return err
	}
	switch r.Code {
	case AC:
		_, err := fmt.Fprintf(w, "%dms\n%dkb\n", r.TimeMS, r.MemoryKB)
		return err
	case REUser, REInternal, IE, EE:
		_, err := fmt.Fprintf(w, "%s\n", r.Msg)
		return err
	}
	return nil
}
