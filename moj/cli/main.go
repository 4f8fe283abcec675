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

// Package cli is the main entrypoint for moj.
package cli

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/moloom/moj/moj/cmd"
	"github.com/sirupsen/logrus"
)

var debug = flag.Bool("debug", false, "enable debug logging to stderr.")

// Main is the main entrypoint.
func Main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")

	subcommands.Register(new(cmd.Run), "")

	const helperGroup = "helpers"
	subcommands.Register(new(cmd.Syscalls), helperGroup)

	const internalGroup = "internal use only"
	subcommands.Register(new(cmd.Child), internalGroup)

	// Everything after --end belongs to the candidate and must never
	// reach a flag parser.
	head, candidate := splitEnd(os.Args)
	os.Args = head

	// All subcommands must be registered before flag parsing.
	flag.Parse()

	// stdout carries only the verdict stream; logs go to stderr.
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	os.Exit(int(subcommands.Execute(context.Background(), candidate)))
}

// splitEnd splits argv at the --end sentinel; the tail is the candidate
// command vector.
func splitEnd(args []string) (head, candidate []string) {
	for i, a := range args {
		if a == "--end" {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}
