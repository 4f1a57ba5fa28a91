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

// Package values implements the front end of the value-flow analysis: it parses C and C++ files, runs the analysis
// and prints the values derived for each token.
package values

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/awslabs/ar-c-valueflow/analysis"
	"github.com/awslabs/ar-c-valueflow/analysis/config"
	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"github.com/awslabs/ar-c-valueflow/analysis/value"
	"github.com/awslabs/ar-c-valueflow/analysis/valueflow"
	"github.com/awslabs/ar-c-valueflow/cmd/cvf/tools"
	"github.com/awslabs/ar-c-valueflow/internal/formatutil"
)

// Usage for CLI
const Usage = `Derive the values of the expressions of C and C++ files.
Usage:
  cvf values [options] <file or directory path(s)>
Examples:
Print the values of each token of a file
  % cvf values main.c
Analyze a source tree with the settings of a config file, print the derivation of each value
  % cvf values -config config.yaml -paths src/
`

// Flags represents the parsed values sub-command flags.
type Flags struct {
	tools.CommonFlags
	paths      bool
	stats      bool
	debugWarn  bool
	checkLevel string
	out        string
}

// NewFlags returns the parsed values sub-command flags from args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("values")
	paths := flags.FlagSet.Bool("paths", false, "print the derivation of each value")
	stats := flags.FlagSet.Bool("stats", false, "print statistics about the derived values")
	debugWarn := flags.FlagSet.Bool("debug-warnings", false, "print the records of the analysis bailouts")
	checkLevel := flags.FlagSet.String("check-level", "", "override the check level of the config (normal or exhaustive)")
	out := flags.FlagSet.String("o", "", "output file for the values (standard output if not specified)")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{
		CommonFlags: common,
		paths:       *paths,
		stats:       *stats,
		debugWarn:   *debugWarn,
		checkLevel:  *checkLevel,
		out:         *out,
	}, nil
}

// Run runs the values tool with flags.
func Run(flags Flags) error {
	cfg, err := tools.LoadConfig(flags.CommonFlags)
	if err != nil {
		return err
	}
	if flags.debugWarn {
		cfg.DebugWarnings = true
	}
	switch flags.checkLevel {
	case "":
	case config.CheckLevelNormal, config.CheckLevelExhaustive:
		cfg.CheckLevel = flags.checkLevel
	default:
		return fmt.Errorf("invalid check level %q", flags.checkLevel)
	}
	logger := config.NewLogGroup(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(os.Stderr, formatutil.Faint("Reading sources")+"\n")
	program, err := analysis.LoadProgram(ctx, cfg, logger, analysis.LoadProgramOptions{
		Exclude: analysis.MakeAbsolute(flags.Exclude),
	}, flags.FlagSet.Args())
	if err != nil {
		return err
	}

	sink := &valueflow.MemoryErrorLogger{}
	results, err := analysis.RunValueFlow(ctx, analysis.ValueFlowParams{
		Config: cfg,
		Logger: logger,
		Errors: sink,
	}, program)
	if err != nil {
		return fmt.Errorf("value-flow analysis failed: %w", err)
	}
	if ctx.Err() != nil {
		fmt.Fprintf(os.Stderr, formatutil.Yellow("Analysis interrupted, values are partial")+"\n")
	}

	w := io.Writer(os.Stdout)
	colors := true
	if flags.out != "" {
		f, err := os.Create(flags.out)
		if err != nil {
			return fmt.Errorf("could not create output file: %w", err)
		}
		defer f.Close()
		w = f
		colors = false
	}
	for _, r := range results {
		WriteValues(w, r.List, flags.paths, colors)
	}

	if file := cfg.ValuesReportFile(); file != "" {
		if err := writeReport(file, results); err != nil {
			return err
		}
		logger.Infof("Values written in %s", file)
	}

	for _, m := range sink.Messages() {
		fmt.Fprintf(os.Stderr, "%s\n", formatutil.Yellow(m.String()))
	}

	if flags.stats {
		var total analysis.Statistics
		for _, r := range results {
			total.Add(r.Stats)
		}
		fmt.Fprintf(os.Stderr, formatutil.Bold("Statistics")+"\n")
		total.Write(os.Stderr)
	}
	return nil
}

func writeReport(file string, results []analysis.UnitResult) error {
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("could not create report file: %w", err)
	}
	defer f.Close()
	for _, r := range results {
		WriteValues(f, r.List, false, false)
	}
	return nil
}

// WriteValues writes the values of the tokens of list to w, under a header naming the file. With paths, the
// derivation of each value follows its token.
func WriteValues(w io.Writer, list *token.List, paths bool, colors bool) {
	format := plainValues
	header := func(a ...interface{}) string { return fmt.Sprint(a...) }
	if colors {
		format = coloredValues
		header = formatutil.Bold
	}
	fmt.Fprintf(w, "%s\n", header("File ", list.File))
	if !paths {
		valueflow.PrintValues(w, list, format)
		return
	}
	list.Iter(func(tok *token.Token) bool {
		if !hasDerived(tok) {
			return true
		}
		sorted := value.Sorted(tok.Values)
		fmt.Fprintf(w, "%d:%d %s %s\n", tok.Line, tok.Column, tok.ExpressionString(), format(sorted))
		for _, v := range sorted {
			for _, p := range v.ErrorPath {
				fmt.Fprintf(w, "    %s: %s\n", list.Location(p.Tok), p.Info)
			}
		}
		return true
	})
}

func hasDerived(tok *token.Token) bool {
	for _, v := range tok.Values {
		if len(v.ErrorPath) > 0 {
			return true
		}
	}
	return false
}

func plainValues(values []value.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func coloredValues(values []value.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		switch v.Certainty {
		case value.Known:
			parts[i] = formatutil.Green(v.String())
		case value.Impossible:
			parts[i] = formatutil.Red(v.String())
		default:
			parts[i] = formatutil.Yellow(v.String())
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
