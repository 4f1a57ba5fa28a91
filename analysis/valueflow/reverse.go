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
	"github.com/awslabs/ar-c-valueflow/analysis/value"
	"golang.org/x/tools/container/intsets"
)

// Reverse propagates the candidate values backward from start (excluded). The reads matched by a receive each
// candidate, downgraded to Possible. The walk goes through the enclosing blocks up to the start of the function,
// and stops at a write or declaration of the tracked variable, at a preceding block that modifies it, or when
// leaving a loop that modifies it. Blocks that always escape are skipped, and so is the then-block when leaving
// an else-block.
//
// The candidates are independent facts: the path they follow does not depend on their payload, so they are
// carried together.
func Reverse(s *State, start *token.Token, a Analyzer, values []value.Value) Outcome {
	r := &reverse{s: s, a: a}
	for _, v := range values {
		p := v.Clone()
		p.SetPossible()
		r.values = append(r.values, p)
	}
	return r.walk(start)
}

type reverse struct {
	s       *State
	a       Analyzer
	values  []value.Value
	visited intsets.Sparse
	visits  int

	// entered are the opening braces of the preceding blocks the walk went into
	entered []*token.Token
}

func (r *reverse) walk(start *token.Token) Outcome {
	for tok := start.Previous(); tok != nil; {
		r.visits++
		if r.s.Config.ExceedsMaxVisits(r.visits) {
			return bailoutAt(InternalLimit, tok, "maximum number of visited tokens reached")
		}
		if !r.visited.Insert(int(tok.Ref())) {
			return stopAt(tok, "token already visited")
		}
		if isBoundary(tok) && r.s.Cancelled() {
			return stopAt(tok, "analysis cancelled")
		}
		prev, out := r.step(tok)
		if out.Kind != Continue {
			return out
		}
		tok = prev
	}
	return proceed()
}

func (r *reverse) step(tok *token.Token) (*token.Token, Outcome) {
	switch {
	case tok.Is("}") && tok.Link() != nil:
		open := tok.Link()
		if sc := tok.Scope(); sc != nil && sc.BodyStart() == open && EscapeOf(r.s, open) != nil {
			// control leaving this block does not reach start
			return open.Previous(), proceed()
		}
		if ModifiedIn(r.s, r.a, open, tok) {
			return nil, stopAt(tok, fmt.Sprintf("%s is modified in a preceding block", r.a))
		}
		r.entered = append(r.entered, open)
		return tok.Previous(), proceed()
	case tok.Is("{"):
		if n := len(r.entered); n > 0 && r.entered[n-1] == tok {
			r.entered = r.entered[:n-1]
			return tok.Previous(), proceed()
		}
		return r.leave(tok)
	case isCaseLabel(tok) && tok.Scope() != nil && tok.Scope().Type == token.Switch:
		// the label is reached from the switch condition
		return r.leave(tok.Scope().BodyStart())
	case isStatementLabel(tok):
		return nil, stopAt(tok, "label")
	case tok.IsCall():
		ann := r.s.Library.LookupCall(tok)
		for i, arg := range CallArguments(tok) {
			if r.a.IsAliasOf(arg) && !ann.IsConstArg(i+1) {
				return nil, stopAt(tok, fmt.Sprintf("%s is passed to %s by address", r.a, calleeName(tok)))
			}
		}
	}
	switch r.a.Match(tok) {
	case ReadMatch:
		if assignsTracked(r.a, tok) {
			// the right operand of an assignment to the variable reads its previous value
			break
		}
		for _, v := range r.values {
			tok.AddValue(v.WithSourceAnnotation(0))
		}
	case WriteMatch:
		return nil, stopAt(tok, fmt.Sprintf("%s is assigned", r.a))
	case Inconclusive:
		return nil, bailoutAt(SoundnessBailout, tok, fmt.Sprintf("%s may be modified through its address", r.a))
	}
	return tok.Previous(), proceed()
}

// leave handles the opening brace of a block enclosing start
func (r *reverse) leave(open *token.Token) (*token.Token, Outcome) {
	sc := open.Scope()
	switch {
	case sc == nil || sc.Type == token.Function || sc.Type == token.Global:
		return nil, stopAt(open, "start of function")
	case sc.IsLoop():
		if ModifiedIn(r.s, r.a, open, open.Link()) {
			return nil, stopAt(open, fmt.Sprintf("%s is modified in loop", r.a))
		}
	case sc.Type == token.Else:
		// the then-block did not run
		if e := open.Previous(); e.Is("else") && e.Previous().Is("}") && e.Previous().Link() != nil {
			return e.Previous().Link().Previous(), proceed()
		}
	}
	return open.Previous(), proceed()
}

// assignsTracked returns true if tok is in an expression assigning the expression tracked by a
func assignsTracked(a Analyzer, tok *token.Token) bool {
	top := tok.AstTop()
	return top != tok && top.IsAssignmentOp() && top.AstOperand1() != nil && a.Match(top.AstOperand1()) == WriteMatch
}
