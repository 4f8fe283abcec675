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

package judge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/moloom/moj/pkg/verdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScratch(t *testing.T) {
	dir := t.TempDir()
	f, err := newScratch(dir, "magic123")
	require.NoError(t, err)
	defer f.Close()

	// Anonymous by name: the path must be gone while the fd stays
	// usable.
	_, err = os.Stat(filepath.Join(dir, "magic123.out"))
	assert.True(t, os.IsNotExist(err))

	_, err = f.WriteString("still writable\n")
	assert.NoError(t, err)
}

func TestFinishCase(t *testing.T) {
	cond := &Condition{TimeMS: 1000, MemoryKB: 65536}

	res := finishCase(cond, 500, 1024)
	assert.Equal(t, verdict.AC, res.Code)
	assert.Equal(t, 500, res.TimeMS)
	assert.Equal(t, 1024, res.MemoryKB)

	// Exactly at the limit is still accepted.
	res = finishCase(cond, 1000, 65536)
	assert.Equal(t, verdict.AC, res.Code)

	res = finishCase(cond, 1001, 1024)
	assert.Equal(t, verdict.TLE, res.Code)

	res = finishCase(cond, 500, 65537)
	assert.Equal(t, verdict.MLE, res.Code)

	// Time wins when both are over.
	res = finishCase(cond, 1001, 65537)
	assert.Equal(t, verdict.TLE, res.Code)
}

func TestRunRefusesHeldLock(t *testing.T) {
	dir := t.TempDir()
	held := flock.New(filepath.Join(dir, "tag.lock"))
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Unlock()

	cond := &Condition{
		TimeMS: 1000, MemoryKB: 65536, FsizeKB: 1024, Who: 1,
		BaseDir: dir, DataDir: dir, Magic: "tag",
		Command: []string{"/bin/true"},
	}
	res := Run(cond)
	assert.Equal(t, verdict.EE, res.Code)
	assert.Contains(t, res.Msg, "tag.lock")
}

func TestRunBadManifestIsEE(t *testing.T) {
	dir := t.TempDir()
	cond := &Condition{
		TimeMS: 1000, MemoryKB: 65536, FsizeKB: 1024, Who: 1,
		BaseDir: dir, DataDir: dir, Magic: "tag",
		Command: []string{"/bin/true"},
	}
	res := Run(cond)
	assert.Equal(t, verdict.EE, res.Code)
}
