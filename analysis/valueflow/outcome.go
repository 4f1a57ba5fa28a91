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
	"fmt"

	"github.com/awslabs/ar-c-valueflow/analysis/token"
)

// OutcomeKind is the kind of result of a propagation step
type OutcomeKind int

const (
	// Continue means the propagation can go on after the construct
	Continue OutcomeKind = iota
	// StopAt means the tracked fact does not hold past the token of the outcome
	StopAt
	// Escape means control never reaches the end of the construct (return, break, noreturn call...)
	Escape
	// Bailout means the propagation was abandoned because it could not stay sound
	Bailout
)

func (k OutcomeKind) String() string {
	switch k {
	case Continue:
		return "continue"
	case StopAt:
		return "stop"
	case Escape:
		return "escape"
	case Bailout:
		return "bailout"
	}
	return "unknown"
}

// BailoutKind classifies bailouts
type BailoutKind int

const (
	// SoundnessBailout is raised on unknown calls, loop mutations and global switch variables
	SoundnessBailout BailoutKind = iota
	// IncompleteExpression is raised when a condition references an unresolved name
	IncompleteExpression
	// Disabled is raised when a derivation is turned off by the configuration
	Disabled
	// InternalLimit is raised when a depth or visit guard trips
	InternalLimit
)

func (k BailoutKind) String() string {
	switch k {
	case SoundnessBailout:
		return "bailout"
	case IncompleteExpression:
		return "incomplete expression"
	case Disabled:
		return "disabled"
	case InternalLimit:
		return "internal limit"
	}
	return "unknown"
}

// ID returns the identifier of the debug records of the bailout kind
func (k BailoutKind) ID() string {
	switch k {
	case IncompleteExpression:
		return "valueFlowBailoutIncompleteVar"
	case InternalLimit:
		return "valueFlowMaxIterations"
	}
	return "valueFlowBailout"
}

// Outcome is the result of a propagation step. Tok is the token where the propagation stopped, escaped or
// bailed out.
type Outcome struct {
	Kind    OutcomeKind
	Tok     *token.Token
	Bailout BailoutKind
	Reason  string
}

func (o Outcome) String() string {
	if o.Kind == Continue {
		return "continue"
	}
	loc := "<end>"
	if o.Tok != nil {
		loc = fmt.Sprintf("%s at line %d", o.Tok.Str, o.Tok.Line)
	}
	if o.Reason == "" {
		return fmt.Sprintf("%s at %s", o.Kind, loc)
	}
	return fmt.Sprintf("%s at %s: %s", o.Kind, loc, o.Reason)
}

func proceed() Outcome {
	return Outcome{Kind: Continue}
}

func stopAt(tok *token.Token, reason string) Outcome {
	return Outcome{Kind: StopAt, Tok: tok, Reason: reason}
}

func escapeAt(tok *token.Token) Outcome {
	return Outcome{Kind: Escape, Tok: tok}
}

func bailoutAt(kind BailoutKind, tok *token.Token, reason string) Outcome {
	return Outcome{Kind: Bailout, Tok: tok, Bailout: kind, Reason: reason}
}
