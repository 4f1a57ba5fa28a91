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

// Package callgraph implements a tool printing the call graph of C and C++ files: the functions inferred not to
// return, the recursion cycles, and a DOT rendering of the graph.
package callgraph

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-c-valueflow/analysis"
	"github.com/awslabs/ar-c-valueflow/analysis/config"
	"github.com/awslabs/ar-c-valueflow/analysis/library"
	"github.com/awslabs/ar-c-valueflow/cmd/cvf/tools"
	"github.com/awslabs/ar-c-valueflow/internal/formatutil"
	"github.com/awslabs/ar-c-valueflow/internal/graphutil"
)

// Usage for CLI
const Usage = `Render the call graph of C and C++ files.
Usage:
  cvf callgraph [options] <file or directory path(s)>
Examples:
Print the functions that do not return and the recursive functions
  % cvf callgraph src/
Render the call graph in DOT format
  % cvf callgraph -cgout calls.dot main.c
`

// Flags represents the parsed callgraph sub-command flags.
type Flags struct {
	tools.CommonFlags
	cgOut  string
	cycles bool
}

// NewFlags returns the parsed callgraph sub-command flags from args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("callgraph")
	cgOut := flags.FlagSet.String("cgout", "", "output file for the call graph in DOT format (no output if not specified)")
	cycles := flags.FlagSet.Bool("cycles", false, "print every elementary recursion cycle")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, cgOut: *cgOut, cycles: *cycles}, nil
}

// Summary is what the tool prints about a call graph
type Summary struct {
	NoReturn  []string
	Recursive [][]string
	Cycles    [][]string
}

// Run runs the callgraph tool with flags.
func Run(flags Flags) error {
	cfg, err := tools.LoadConfig(flags.CommonFlags)
	if err != nil {
		return err
	}
	logger := config.NewLogGroup(cfg)
	lib, err := library.FromConfig(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, formatutil.Faint("Reading sources")+"\n")
	program, err := analysis.LoadProgram(context.Background(), cfg, logger, analysis.LoadProgramOptions{
		Exclude: analysis.MakeAbsolute(flags.Exclude),
	}, flags.FlagSet.Args())
	if err != nil {
		return err
	}

	cg, noReturn := Build(lib, program)
	summary := Summarize(cg, noReturn, flags.cycles)
	summary.Write(os.Stdout)

	if flags.cgOut != "" {
		fmt.Fprintf(os.Stderr, formatutil.Faint("Writing call graph in "+flags.cgOut)+"\n")
		f, err := os.Create(flags.cgOut)
		if err != nil {
			return fmt.Errorf("could not create call graph output file: %w", err)
		}
		defer f.Close()
		if err := graphutil.WriteDOT(f, cg, "calls"); err != nil {
			return fmt.Errorf("could not print callgraph: %w", err)
		}
	}
	return nil
}

// Build returns the call graph of all the units of the program, and the functions inferred not to return in each
// unit.
func Build(lib *library.Library, program analysis.LoadedProgram) (*graphutil.CallGraph, []string) {
	cg := graphutil.NewCallGraph()
	seen := map[string]bool{}
	for _, list := range program.Units {
		oracle := library.NewOracle(lib, list.SymbolDatabase())
		cg.Merge(oracle.Calls)
		for _, name := range oracle.NoReturnFunctions() {
			seen[name] = true
		}
	}
	var noReturn []string
	for _, name := range cg.Names {
		if seen[name] {
			noReturn = append(noReturn, name)
		}
	}
	return cg, noReturn
}

// Summarize computes the summary of cg. Elementary cycles are only computed when withCycles is set, since there
// may be exponentially many.
func Summarize(cg *graphutil.CallGraph, noReturn []string, withCycles bool) Summary {
	s := Summary{NoReturn: noReturn, Recursive: graphutil.RecursiveComponents(cg)}
	if withCycles {
		s.Cycles = graphutil.RecursionCycles(cg)
	}
	return s
}

// Write prints the summary to w
func (s Summary) Write(w io.Writer) {
	fmt.Fprintf(w, "%s\n", formatutil.Bold("Functions that do not return:"))
	for _, name := range s.NoReturn {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintf(w, "%s\n", formatutil.Bold("Recursive functions:"))
	for _, c := range s.Recursive {
		fmt.Fprintf(w, "  %s\n", strings.Join(c, ", "))
	}
	if s.Cycles == nil {
		return
	}
	fmt.Fprintf(w, "%s\n", formatutil.Bold("Recursion cycles:"))
	for _, c := range s.Cycles {
		fmt.Fprintf(w, "  %s\n", strings.Join(c, " -> "))
	}
}
