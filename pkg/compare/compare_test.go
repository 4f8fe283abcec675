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
	"os"
	"path/filepath"
	"testing"

	"github.com/moloom/moj/pkg/verdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareBytes(t *testing.T) {
	tests := []struct {
		name string
		out  string
		ans  string
		want verdict.Status
	}{
		{"identical", "hello\n", "hello\n", verdict.AC},
		{"identity without newline", "42", "42", verdict.AC},
		{"trailing whitespace ignored", "hello\n \n", "hello", verdict.AC},
		{"trailing tabs ignored", "1 2 3\t\t\n", "1 2 3\n", verdict.AC},
		{"interior whitespace is presentation", "he llo", "hello", verdict.PE},
		{"newline layout is presentation", "1\n2\n3\n", "1 2 3\n", verdict.PE},
		{"extra interior spaces both sides", "a  b", "a b", verdict.PE},
		{"different bytes", "HELLO\n", "hello\n", verdict.WA},
		{"output is a prefix", "hell", "hello", verdict.WA},
		{"answer is a prefix", "hello", "hell", verdict.WA},
		{"prefix modulo whitespace", "1 2", "1 2 3", verdict.WA},
		{"whitespace-only output", " \n\t", "hello", verdict.WA},
		{"whitespace-only answer", "hello", "\n\n", verdict.WA},
		{"both whitespace-only", " ", "\n", verdict.WA},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, compareBytes([]byte(tc.out), []byte(tc.ans)))
		})
	}
}

func TestCompareBytesReflexive(t *testing.T) {
	for _, s := range []string{"x", "hello\n", "1 2 3", "a\nb\nc\n"} {
		assert.Equal(t, verdict.AC, compareBytes([]byte(s), []byte(s)))
	}
}

func scratch(t *testing.T, content string) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	_, err = f.WriteString(content)
	require.NoError(t, err)
	return f
}

func answer(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case.ans")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestStatic(t *testing.T) {
	code, msg := Static(scratch(t, "hello\n"), answer(t, "hello\n"))
	assert.Equal(t, verdict.AC, code)
	assert.Empty(t, msg)

	code, _ = Static(scratch(t, "he llo"), answer(t, "hello"))
	assert.Equal(t, verdict.PE, code)

	code, _ = Static(scratch(t, "HELLO\n"), answer(t, "hello\n"))
	assert.Equal(t, verdict.WA, code)
}

func TestStaticEmptyOutputIsWA(t *testing.T) {
	code, _ := Static(scratch(t, ""), answer(t, "hello\n"))
	assert.Equal(t, verdict.WA, code)
}

func TestStaticEmptyAnswerIsEE(t *testing.T) {
	code, msg := Static(scratch(t, "hello\n"), answer(t, ""))
	assert.Equal(t, verdict.EE, code)
	assert.Contains(t, msg, "no data")
}

func TestStaticMissingAnswerIsEE(t *testing.T) {
	code, _ := Static(scratch(t, "hello\n"), filepath.Join(t.TempDir(), "absent.ans"))
	assert.Equal(t, verdict.EE, code)
}

func judgeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "judge.exe")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestDynamic(t *testing.T) {
	tests := []struct {
		name string
		body string
		want verdict.Status
	}{
		{"accepted", "printf 0", verdict.AC},
		{"presentation error", "printf 1", verdict.PE},
		{"wrong answer", "printf 2", verdict.WA},
		{"judge failed early", "printf 3", verdict.IE},
		{"garbage byte", "printf x", verdict.EE},
		{"no output", "exit 0", verdict.EE},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, _ := Dynamic(scratch(t, "hello\n"), judgeScript(t, tc.body))
			assert.Equal(t, tc.want, code)
		})
	}
}

func TestDynamicJudgeReadsCandidateOutput(t *testing.T) {
	// The scratch offset sits at end of file after the candidate run;
	// the judge must still see the output from the start.
	body := `read line; [ "$line" = "hello" ] && printf 0 || printf 2`
	code, _ := Dynamic(scratch(t, "hello\n"), judgeScript(t, body))
	assert.Equal(t, verdict.AC, code)
}

func TestAnswerDispatch(t *testing.T) {
	code, _ := Answer(scratch(t, "hello\n"), answer(t, "hello\n"))
	assert.Equal(t, verdict.AC, code)

	code, _ = Answer(scratch(t, "hello\n"), judgeScript(t, "printf 1"))
	assert.Equal(t, verdict.PE, code)
}
