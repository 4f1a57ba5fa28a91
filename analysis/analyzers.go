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

package analysis

import (
	"context"
	"time"

	"github.com/awslabs/ar-c-valueflow/analysis/config"
	"github.com/awslabs/ar-c-valueflow/analysis/library"
	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"github.com/awslabs/ar-c-valueflow/analysis/valueflow"
	"github.com/awslabs/ar-c-valueflow/internal/funcutil"
)

// ValueFlowParams represents the arguments for RunValueFlow.
type ValueFlowParams struct {
	Config *config.Config
	Logger *config.LogGroup

	// Library holds the function annotations. If nil, the library of the config is loaded.
	Library *library.Library

	// Errors receives the debug records of the analysis. May be nil.
	Errors valueflow.ErrorLogger

	// NumRoutines is the number of translation units analyzed in parallel. If <= 0, the value of the config is used.
	NumRoutines int
}

// UnitResult is the result of the analysis of one translation unit
type UnitResult struct {
	List  *token.List
	Stats Statistics
	Time  time.Duration
}

// RunValueFlow runs the value-flow analysis on each unit of the program in parallel. The values are attached to the
// tokens of the units; the result summarizes them. Units that have not been analyzed when ctx is cancelled keep
// whatever values were derived so far.
func RunValueFlow(ctx context.Context, params ValueFlowParams, program LoadedProgram) ([]UnitResult, error) {
	lib := params.Library
	if lib == nil {
		var err error
		lib, err = library.FromConfig(params.Config)
		if err != nil {
			return nil, err
		}
	}
	numRoutines := params.NumRoutines
	if numRoutines <= 0 {
		numRoutines = params.Config.NumJobs()
	}

	params.Logger.Infof("Starting value-flow analysis of %d files ...", len(program.Units))
	start := time.Now()

	state := valueflow.NewState(ctx, params.Config, params.Logger, lib, params.Errors)
	results := funcutil.MapParallel(program.Units, func(list *token.List) UnitResult {
		return runSingleUnit(state, list)
	}, numRoutines)

	params.Logger.Infof("Value-flow analysis done (%.2f s).", time.Since(start).Seconds())
	return results, nil
}

func runSingleUnit(state *valueflow.State, list *token.List) UnitResult {
	state.Logger.Debugf("%-10sFile: %-60s ...", "Analyzing", list.File)
	start := time.Now()
	valueflow.Run(state, list)
	res := UnitResult{List: list, Stats: CollectStatistics(list), Time: time.Since(start)}
	state.Logger.Debugf("%-10sFile: %-60s | %d values | %.2f s", " ", list.File, res.Stats.Values(),
		res.Time.Seconds())
	return res
}
