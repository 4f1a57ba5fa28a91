// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-c-valueflow/analysis"
	"github.com/awslabs/ar-c-valueflow/cmd/cvf/callgraph"
	"github.com/awslabs/ar-c-valueflow/cmd/cvf/tools"
	"github.com/awslabs/ar-c-valueflow/cmd/cvf/values"
)

const usage = `cvf: value-flow analysis of C and C++ programs
Usage:
  cvf [tool] [options] <file or directory path(s)>
Tools:
  - values: derives the values of the expressions of the program and prints them
  - callgraph: prints the functions that do not return and the recursive functions, renders the call graph
Examples:
  Print the values derived in a file: cvf values main.c
  Render the call graph: cvf callgraph -cgout calls.dot src/`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "values":
		flags, err := values.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := values.Run(flags); err != nil {
			errExit(err)
		}
	case "callgraph":
		flags, err := callgraph.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := callgraph.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
