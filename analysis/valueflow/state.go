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

package valueflow

import (
	"context"

	"github.com/awslabs/ar-c-valueflow/analysis/config"
	"github.com/awslabs/ar-c-valueflow/analysis/library"
	"github.com/awslabs/ar-c-valueflow/analysis/token"
)

// State holds what the derivers and the engines share during the analysis of one token list
type State struct {
	Config  *config.Config
	Logger  *config.LogGroup
	Library *library.Library
	Oracle  library.Oracle
	Errors  ErrorLogger

	ctx  context.Context
	file string
}

// NewState returns a state. The oracle is set per token list by ForList. errors may be nil.
func NewState(ctx context.Context, c *config.Config, logger *config.LogGroup, lib *library.Library,
	errors ErrorLogger) *State {
	if ctx == nil {
		ctx = context.Background()
	}
	if lib == nil {
		lib = library.Default()
	}
	return &State{
		Config:  c,
		Logger:  logger,
		Library: lib,
		Errors:  errors,
		ctx:     ctx,
	}
}

// ForList returns a copy of the state for the analysis of list, with an oracle that knows the functions defined
// in list.
func (s *State) ForList(list *token.List) *State {
	c := *s
	c.file = list.File
	c.Oracle = library.NewOracle(s.Library, list.SymbolDatabase())
	return &c
}

// Cancelled returns true once the context of the analysis is done
func (s *State) Cancelled() bool {
	return s.ctx.Err() != nil
}

// Context returns the context of the analysis
func (s *State) Context() context.Context {
	return s.ctx
}

// reportBailout emits the debug record of a bailout
func (s *State) reportBailout(kind BailoutKind, tok *token.Token, msg string) {
	line := 0
	if tok != nil {
		line = tok.Line
	}
	s.Logger.Debugf("%s:%d: %s: %s", s.file, line, kind, msg)
	if s.Errors == nil || !s.Config.DebugWarnings {
		return
	}
	s.Errors.ReportErr(ErrorMessage{
		File:      s.file,
		Line:      line,
		Severity:  SeverityDebug,
		Message:   msg,
		ID:        kind.ID(),
		Certainty: "normal",
	})
}

// report emits the record of a bailout outcome
func (s *State) report(o Outcome, what string) {
	if o.Kind != Bailout {
		return
	}
	s.reportBailout(o.Bailout, o.Tok, what+" bailout: "+o.Reason)
}

func (s *State) noReturn(call *token.Token) bool {
	if s.Oracle == nil {
		return false
	}
	nr, unknown := s.Oracle.IsNoReturn(call)
	if unknown != "" {
		s.Logger.Tracef("%s:%d: unknown function %s", s.file, call.Line, unknown)
	}
	return nr
}
