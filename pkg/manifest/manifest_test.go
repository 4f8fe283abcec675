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

package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))
	return dir
}

func TestLoad(t *testing.T) {
	dir := write(t, `# test set for problem 1001
4
1001/1.in
1001/1.ans

1001/2.in
# dynamic case
1001/judge.exe
`)
	m, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Count())
	assert.Equal(t, "1001/1.in", m.Input(0))
	assert.Equal(t, "1001/1.ans", m.Answer(0))
	assert.Equal(t, "1001/2.in", m.Input(1))
	assert.Equal(t, "1001/judge.exe", m.Answer(1))
}

func TestLoadExtraLinesIgnored(t *testing.T) {
	dir := write(t, "2\na.in\na.ans\nb.in\nb.ans\n")
	m, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, "a.in", m.Input(0))
	assert.Equal(t, "a.ans", m.Answer(0))
}

func TestLoadShortFile(t *testing.T) {
	// Declares 4 lines but only carries 3: the dangling input has no
	// answer and must not surface as a pair.
	dir := write(t, "4\na.in\na.ans\nb.in\n")
	m, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, "", m.Input(1))
	assert.Equal(t, "", m.Answer(1))
}

func TestLoadZeroCases(t *testing.T) {
	m, err := Load(write(t, "0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Count())
}

func TestLoadBadCount(t *testing.T) {
	_, err := Load(write(t, "two\na.in\na.ans\n"))
	assert.Error(t, err)

	_, err = Load(write(t, "-2\n"))
	assert.Error(t, err)
}

func TestLoadOnlyComments(t *testing.T) {
	_, err := Load(write(t, "# nothing here\n\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestIndexOutOfRange(t *testing.T) {
	m, err := Load(write(t, "2\na.in\na.ans\n"))
	require.NoError(t, err)
	assert.Equal(t, "", m.Input(-1))
	assert.Equal(t, "", m.Answer(1))
}
