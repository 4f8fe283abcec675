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

// Package manifest loads the test-set layout file.
//
// The manifest is a line-oriented file named data.conf in the data
// directory. Lines starting with '#' and blank lines are comments. The
// first significant line is an integer N; the next N significant lines
// are file paths, alternating input and expected answer. Lines past N
// are ignored; a truncated file exposes only the complete pairs.
package manifest

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FileName is the fixed name of the manifest inside the data directory.
const FileName = "data.conf"

// Manifest is an ordered, immutable list of (input, answer) pairs.
type Manifest struct {
	paths []string
}

// Load reads and parses <dir>/data.conf.
func Load(dir string) (*Manifest, error) {
	name := filepath.Join(dir, FileName)
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", name)
	}
	defer f.Close()

	var (
		m       Manifest
		counted bool
		want    int
	)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if isComment(line) {
			continue
		}
		if !counted {
			counted = true
			want, err = strconv.Atoi(strings.TrimSpace(line))
			if err != nil {
				return nil, errors.Wrapf(err, "%s: bad entry count %q", name, line)
			}
			if want < 0 {
				return nil, errors.Errorf("%s: negative entry count %d", name, want)
			}
			continue
		}
		// The declared count wins over the actual number of lines.
		if len(m.paths) >= want {
			continue
		}
		m.paths = append(m.paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}
	if !counted {
		return nil, errors.Errorf("%s: no entry count line", name)
	}
	return &m, nil
}

// Count returns the number of complete (input, answer) pairs.
func (m *Manifest) Count() int {
	return len(m.paths) / 2
}

// Input returns the input path of pair i, or "" if out of range.
func (m *Manifest) Input(i int) string {
	if i < 0 || i >= m.Count() {
		return ""
	}
	return m.paths[2*i]
}

// Answer returns the answer path of pair i, or "" if out of range. An
// answer path ending in ".exe" names a judge binary rather than a
// static answer file.
func (m *Manifest) Answer(i int) string {
	if i < 0 || i >= m.Count() {
		return ""
	}
	return m.paths[2*i+1]
}

func isComment(line string) bool {
	return line == "" || line[0] == '#'
}
