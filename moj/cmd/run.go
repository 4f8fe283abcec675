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

// Package cmd implements the moj subcommands.
package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/moloom/moj/moj/config"
	"github.com/moloom/moj/pkg/judge"
	"github.com/moloom/moj/pkg/verdict"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Run implements subcommands.Command for the "run" command.
type Run struct {
	conf config.Config
}

// Name implements subcommands.Command.Name.
func (*Run) Name() string {
	return "run"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Run) Synopsis() string {
	return "judge a candidate program against a test set"
}

// Usage implements subcommands.Command.Usage.
func (*Run) Usage() string {
	return `run -t <ms> -m <kb> -f <kb> --who <uid> --basedir <dir> --datadir <dir> --magic <tag> --end <argv...> - judge a candidate.

The verdict is written to stdout; the process exits 0 for every
verdict, including error verdicts.

`
}

// SetFlags implements subcommands.Command.SetFlags.
func (r *Run) SetFlags(f *flag.FlagSet) {
	r.conf.SetFlags(f)
}

// Execute implements subcommands.Command.Execute. args[0] carries the
// candidate argv captured after --end.
func (r *Run) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	candidate, _ := args[0].([]string)

	// The sandbox must start setuid-root but targeted at an
	// unprivileged identity on every other axis.
	if unix.Geteuid() != 0 {
		return emit(verdict.Errorf(verdict.EE, "euid != 0."))
	}
	if unix.Getegid() == 0 {
		return emit(verdict.Errorf(verdict.EE, "egid == 0."))
	}
	if unix.Getuid() == 0 {
		return emit(verdict.Errorf(verdict.EE, "uid == 0."))
	}
	if unix.Getgid() == 0 {
		return emit(verdict.Errorf(verdict.EE, "gid == 0."))
	}

	// Run unprivileged by default; root is regained transiently where
	// a kill or a credential change demands it.
	if err := unix.Setreuid(unix.Geteuid(), unix.Getuid()); err != nil {
		return emit(verdict.Errorf(verdict.IE, "setreuid error: %v", err))
	}

	cond, err := r.conf.Condition(candidate)
	if err != nil {
		return emit(verdict.Errorf(verdict.EE, "%v", err))
	}

	logrus.Infof("condition: %s", cond)
	logrus.Infof("uid: %d, euid: %d, gid: %d, egid: %d",
		unix.Getuid(), unix.Geteuid(), unix.Getgid(), unix.Getegid())

	return emit(judge.Run(cond))
}

// emit writes the verdict stream. Every judged outcome, error verdicts
// included, is a successful sandbox invocation: the exit code stays 0.
func emit(res verdict.Result) subcommands.ExitStatus {
	if err := verdict.Emit(os.Stdout, res); err != nil {
		logrus.Errorf("writing verdict: %v", err)
	}
	return subcommands.ExitSuccess
}
