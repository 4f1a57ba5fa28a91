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

// Package analysis contains helper functions for loading C and C++ sources and running the value-flow analysis
// over them.
package analysis

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/awslabs/ar-c-valueflow/analysis/config"
	"github.com/awslabs/ar-c-valueflow/analysis/frontend"
	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"github.com/awslabs/ar-c-valueflow/internal/funcutil"
)

// Version is the version of the tools
const Version = "v0.3.1"

// LoadedProgram represents a set of parsed translation units.
type LoadedProgram struct {
	// Units are the token lists of the source files, in the order of Files
	Units []*token.List
	// Files are the paths of the parsed source files
	Files []string
}

// LoadProgramOptions holds the options of LoadProgram
type LoadProgramOptions struct {
	// Exclude is a list of absolute paths; see IsExcluded
	Exclude []string
	// NumRoutines is the number of files parsed in parallel. If <= 0, the value of the config is used.
	NumRoutines int
}

type parseResult struct {
	list *token.List
	err  error
}

// LoadProgram parses the C and C++ files designated by args. Directories are walked recursively and every source
// file they contain is parsed, except the excluded ones.
func LoadProgram(ctx context.Context, cfg *config.Config, logger *config.LogGroup, options LoadProgramOptions,
	args []string) (LoadedProgram, error) {
	files, err := SourceFiles(args, options.Exclude)
	if err != nil {
		return LoadedProgram{}, fmt.Errorf("could not load program: %w", err)
	}
	if len(files) == 0 {
		return LoadedProgram{}, fmt.Errorf("could not load program: no C or C++ source files in %v", args)
	}

	numRoutines := options.NumRoutines
	if numRoutines <= 0 {
		numRoutines = cfg.NumJobs()
	}
	logger.Debugf("Parsing %d files with %d routines", len(files), numRoutines)

	results := funcutil.MapParallel(files, func(file string) parseResult {
		list, err := frontend.ParseFile(ctx, file)
		return parseResult{list, err}
	}, numRoutines)

	program := LoadedProgram{Files: files}
	for i, r := range results {
		if r.err != nil {
			return LoadedProgram{}, fmt.Errorf("could not load program: %s: %w", files[i], r.err)
		}
		program.Units = append(program.Units, r.list)
	}
	return program, nil
}

// SourceFiles returns the source files named by args, walking directories. Files given explicitly must have a C or
// C++ extension; files found in directories are silently skipped when they do not. The result is sorted.
func SourceFiles(args []string, exclude []string) ([]string, error) {
	seen := map[string]bool{}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if _, err := frontend.IsCPPFile(arg); err != nil {
				return nil, err
			}
			if !IsExcluded(arg, exclude) {
				seen[arg] = true
			}
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if IsExcluded(path, exclude) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if _, err := frontend.IsCPPFile(path); err == nil {
				seen[path] = true
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return funcutil.SetToOrderedSlice(seen), nil
}
