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

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitEnd(t *testing.T) {
	head, candidate := splitEnd([]string{
		"moj", "run", "-t", "1000", "--end", "./a.out", "--end", "-x",
	})
	assert.Equal(t, []string{"moj", "run", "-t", "1000"}, head)
	// Only the first sentinel splits; the candidate may itself take
	// an --end argument.
	assert.Equal(t, []string{"./a.out", "--end", "-x"}, candidate)
}

func TestSplitEndAbsent(t *testing.T) {
	args := []string{"moj", "syscalls"}
	head, candidate := splitEnd(args)
	assert.Equal(t, args, head)
	assert.Nil(t, candidate)
}
