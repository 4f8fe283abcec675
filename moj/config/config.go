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

// Package config turns command-line flags, optionally seeded from a
// TOML defaults file, into a validated judge.Condition.
package config

import (
	"flag"

	"github.com/BurntSushi/toml"
	"github.com/moloom/moj/pkg/judge"
	"github.com/pkg/errors"
)

// Config collects the run command's flag values before validation.
type Config struct {
	TimeMS   int
	MemoryKB int
	FsizeKB  int
	Who      int
	BaseDir  string
	DataDir  string
	Magic    string

	// Defaults optionally names a TOML file whose values fill numeric
	// fields left unset on the command line.
	Defaults string
}

// SetFlags registers the run command's flags.
func (c *Config) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.TimeMS, "t", 0, "candidate time limit in milliseconds.")
	f.IntVar(&c.MemoryKB, "m", 0, "candidate memory limit in KiB.")
	f.IntVar(&c.FsizeKB, "f", 0, "candidate output size limit in KiB.")
	f.IntVar(&c.Who, "who", 0, "unprivileged user/group id the candidate runs as.")
	f.StringVar(&c.BaseDir, "basedir", "", "candidate working directory.")
	f.StringVar(&c.DataDir, "datadir", "", "directory containing data.conf.")
	f.StringVar(&c.Magic, "magic", "", "unique tag naming the scratch file.")
	f.StringVar(&c.Defaults, "config", "", "optional TOML file with default limits.")
}

// fileDefaults is the shape of the optional defaults file.
type fileDefaults struct {
	TimeMS   int `toml:"time_ms"`
	MemoryKB int `toml:"memory_kb"`
	FsizeKB  int `toml:"fsize_kb"`
	Who      int `toml:"who"`
}

// Condition validates the collected values and builds the run
// condition. candidate is the argv captured after --end.
func (c *Config) Condition(candidate []string) (*judge.Condition, error) {
	if c.Defaults != "" {
		var d fileDefaults
		if _, err := toml.DecodeFile(c.Defaults, &d); err != nil {
			return nil, errors.Wrapf(err, "-config %s", c.Defaults)
		}
		if c.TimeMS == 0 {
			c.TimeMS = d.TimeMS
		}
		if c.MemoryKB == 0 {
			c.MemoryKB = d.MemoryKB
		}
		if c.FsizeKB == 0 {
			c.FsizeKB = d.FsizeKB
		}
		if c.Who == 0 {
			c.Who = d.Who
		}
	}

	switch {
	case c.TimeMS <= 0:
		return nil, errors.New("-t argument error.")
	case c.MemoryKB <= 0:
		return nil, errors.New("-m argument error.")
	case c.FsizeKB <= 0:
		return nil, errors.New("-f argument error.")
	case c.Who <= 0:
		return nil, errors.New("--who argument error.")
	case c.BaseDir == "":
		return nil, errors.New("--basedir argument error.")
	case c.DataDir == "":
		return nil, errors.New("--datadir argument error.")
	case c.Magic == "":
		return nil, errors.New("--magic argument error.")
	case len(candidate) == 0:
		return nil, errors.New("--end argument error.")
	}

	return &judge.Condition{
		TimeMS:   c.TimeMS,
		MemoryKB: c.MemoryKB,
		FsizeKB:  c.FsizeKB,
		Who:      c.Who,
		BaseDir:  c.BaseDir,
		DataDir:  c.DataDir,
		Magic:    c.Magic,
		Command:  candidate,
	}, nil
}
