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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid() Config {
	return Config{
		TimeMS: 1000, MemoryKB: 65536, FsizeKB: 1024, Who: 1001,
		BaseDir: "/judge/work", DataDir: "/judge/data", Magic: "r42",
	}
}

func TestCondition(t *testing.T) {
	c := valid()
	cond, err := c.Condition([]string{"./a.out", "-x"})
	require.NoError(t, err)
	assert.Equal(t, 1000, cond.TimeMS)
	assert.Equal(t, 65536, cond.MemoryKB)
	assert.Equal(t, 1024, cond.FsizeKB)
	assert.Equal(t, 1001, cond.Who)
	assert.Equal(t, "/judge/work", cond.BaseDir)
	assert.Equal(t, []string{"./a.out", "-x"}, cond.Command)
}

func TestConditionValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errTag string
	}{
		{"zero time", func(c *Config) { c.TimeMS = 0 }, "-t"},
		{"negative memory", func(c *Config) { c.MemoryKB = -1 }, "-m"},
		{"zero fsize", func(c *Config) { c.FsizeKB = 0 }, "-f"},
		{"zero who", func(c *Config) { c.Who = 0 }, "--who"},
		{"empty basedir", func(c *Config) { c.BaseDir = "" }, "--basedir"},
		{"empty datadir", func(c *Config) { c.DataDir = "" }, "--datadir"},
		{"empty magic", func(c *Config) { c.Magic = "" }, "--magic"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(&c)
			_, err := c.Condition([]string{"./a.out"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errTag)
		})
	}
}

func TestConditionNoCandidate(t *testing.T) {
	c := valid()
	_, err := c.Condition(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--end")
}

func TestConditionTOMLDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moj.toml")
	require.NoError(t, os.WriteFile(path, []byte(
		"time_ms = 2000\nmemory_kb = 32768\nfsize_kb = 512\nwho = 1002\n"), 0644))

	c := Config{
		BaseDir: "/judge/work", DataDir: "/judge/data", Magic: "r42",
		Defaults: path,
	}
	cond, err := c.Condition([]string{"./a.out"})
	require.NoError(t, err)
	assert.Equal(t, 2000, cond.TimeMS)
	assert.Equal(t, 32768, cond.MemoryKB)
	assert.Equal(t, 512, cond.FsizeKB)
	assert.Equal(t, 1002, cond.Who)
}

func TestConditionFlagsWinOverTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moj.toml")
	require.NoError(t, os.WriteFile(path, []byte("time_ms = 2000\n"), 0644))

	c := valid()
	c.Defaults = path
	cond, err := c.Condition([]string{"./a.out"})
	require.NoError(t, err)
	assert.Equal(t, 1000, cond.TimeMS)
}

func TestConditionBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moj.toml")
	require.NoError(t, os.WriteFile(path, []byte("time_ms = [oops\n"), 0644))

	c := valid()
	c.Defaults = path
	_, err := c.Condition([]string{"./a.out"})
	assert.Error(t, err)
}
