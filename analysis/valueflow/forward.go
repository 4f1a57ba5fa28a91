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

	"github.com/awslabs/ar-c-valueflow/analysis/library"
	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"github.com/awslabs/ar-c-valueflow/analysis/value"
	"golang.org/x/tools/container/intsets"
)

// Forward propagates v along the tokens from start up to end (excluded), attaching it to the reads matched by a.
// Each token is visited at most once, so loop bodies are walked once. The returned outcome tells how the walk
// ended; reporting a bailout is left to the caller.
func Forward(s *State, start, end *token.Token, a Analyzer, v value.Value) Outcome {
	w := &forward{s: s, a: a, v: v}
	return w.walk(start, end, 0)
}

type forward struct {
	s       *State
	a       Analyzer
	v       value.Value
	visited intsets.Sparse
	visits  int

	// labels > 0 while walking a switch body entered by the walk, where case labels are not join points
	labels int
}

func before(tok, end *token.Token) bool {
	return tok != nil && (end == nil || tok.Ref() < end.Ref())
}

func isBoundary(tok *token.Token) bool {
	return tok.Is(";") || tok.Is("{") || tok.Is("}")
}

func (w *forward) walk(start, end *token.Token, depth int) Outcome {
	if w.s.Config.ExceedsMaxDepth(depth) {
		return bailoutAt(InternalLimit, start, "maximum branch depth reached")
	}
	for tok := start; before(tok, end); {
		w.visits++
		if w.s.Config.ExceedsMaxVisits(w.visits) {
			return bailoutAt(InternalLimit, tok, "maximum number of visited tokens reached")
		}
		if !w.visited.Insert(int(tok.Ref())) {
			return stopAt(tok, "token already visited")
		}
		if isBoundary(tok) && w.s.Cancelled() {
			return stopAt(tok, "analysis cancelled")
		}
		if w.a.ShouldStopAt(tok) {
			return stopAt(tok, "end of scope")
		}
		next, out := w.step(tok, depth)
		if out.Kind != Continue {
			return out
		}
		tok = next
	}
	return proceed()
}

// step processes the construct starting at tok and returns the token following it
func (w *forward) step(tok *token.Token, depth int) (*token.Token, Outcome) {
	switch {
	case tok.Is("if") && tok.Next().Is("("):
		return w.ifStatement(tok, depth)
	case (tok.Is("for") || tok.Is("while")) && loopBody(tok) != nil:
		return w.loop(tok, depth)
	case tok.Is("do") && tok.Next().Is("{"):
		return w.doLoop(tok, depth)
	case tok.Is("switch") && tok.Next().Is("("):
		return w.switchStatement(tok, depth)
	case tok.Is("return") || tok.Is("throw"):
		if out := w.walk(tok.Next(), endOfStatement(tok), depth); out.Kind != Continue {
			return nil, out
		}
		return nil, escapeAt(tok)
	case tok.Is("break") || tok.Is("continue") || tok.Is("goto"):
		return nil, escapeAt(tok)
	case isCaseLabel(tok):
		colon := labelColon(tok)
		if w.labels == 0 || colon == nil {
			return nil, stopAt(tok, "case label")
		}
		return colon.Next(), proceed()
	case isStatementLabel(tok):
		return nil, stopAt(tok, "label")
	case tok.Is("{") && tok.Link() != nil:
		if out := w.walk(tok.Next(), tok.Link(), depth+1); out.Kind != Continue {
			return nil, out
		}
		return tok.Link().Next(), proceed()
	case tok.Is("}"):
		return w.leave(tok)
	case tok.IsCall():
		if out := w.call(tok); out.Kind != Continue {
			return nil, out
		}
	case tok.Is(")") && tok.Link().IsCall() && isUnconditional(tok.Link()):
		if w.s.noReturn(tok.Link()) {
			return nil, escapeAt(tok)
		}
	}
	return tok.Next(), w.match(tok)
}

func (w *forward) match(tok *token.Token) Outcome {
	m := w.a.Match(tok)
	switch m {
	case NoMatch:
		return proceed()
	case Inconclusive:
		return bailoutAt(SoundnessBailout, tok, fmt.Sprintf("%s may be modified through its address", w.a))
	}
	nv, ok := w.a.Update(tok, m, w.v)
	if !ok {
		return stopAt(tok, fmt.Sprintf("%s is modified", w.a))
	}
	if m == ReadMatch {
		tok.AddValue(nv.WithSourceAnnotation(1))
	} else {
		w.v = nv
	}
	return proceed()
}

type branch struct {
	start *token.Token
	out   Outcome
}

func (w *forward) ifStatement(tok *token.Token, depth int) (*token.Token, Outcome) {
	open := tok.Next()
	closeParen := open.Link()
	if closeParen == nil || !closeParen.Next().Is("{") || closeParen.Next().Link() == nil {
		return nil, bailoutAt(SoundnessBailout, tok, "malformed if statement")
	}
	if out := w.walk(open.Next(), closeParen, depth); out.Kind != Continue {
		return nil, out
	}
	thenStart := closeParen.Next()
	last := thenStart.Link()
	branches := []branch{{thenStart, w.walk(thenStart.Next(), last, depth+1)}}
	complete := false
	if elseStart := elseBlock(last); elseStart != nil {
		complete = true
		branches = append(branches, branch{elseStart, w.walk(elseStart.Next(), elseStart.Link(), depth+1)})
		last = elseStart.Link()
	}
	return w.join(last, complete, branches)
}

// join computes the outcome after a conditional construct ending at last. complete is true when one of the
// branches is always taken.
func (w *forward) join(last *token.Token, complete bool, branches []branch) (*token.Token, Outcome) {
	allEscape := complete
	for _, b := range branches {
		switch b.out.Kind {
		case Bailout:
			return nil, b.out
		case StopAt:
			if EscapeOf(w.s, b.start) == nil {
				return nil, b.out
			}
		case Continue:
			allEscape = false
		}
	}
	if allEscape {
		return nil, escapeAt(last)
	}
	return last.Next(), proceed()
}

func (w *forward) loop(tok *token.Token, depth int) (*token.Token, Outcome) {
	open := tok.Next()
	body := loopBody(tok)
	if ModifiedIn(w.s, w.a, open, body.Link()) {
		return nil, bailoutAt(SoundnessBailout, tok, fmt.Sprintf("%s is modified in %s loop", w.a, tok.Str))
	}
	if out := w.walk(open.Next(), open.Link(), depth); out.Kind != Continue {
		return nil, out
	}
	out := w.walk(body.Next(), body.Link(), depth+1)
	if out.Kind == Bailout || out.Kind == StopAt {
		return nil, out
	}
	// the body may not run, an escape inside it does not end the walk
	return body.Link().Next(), proceed()
}

func (w *forward) doLoop(tok *token.Token, depth int) (*token.Token, Outcome) {
	body := tok.Next()
	whileTok := body.Link().Next()
	if !whileTok.Is("while") || !whileTok.Next().Is("(") || whileTok.Next().Link() == nil {
		return nil, bailoutAt(SoundnessBailout, tok, "malformed do loop")
	}
	open := whileTok.Next()
	if ModifiedIn(w.s, w.a, body, open.Link()) {
		return nil, bailoutAt(SoundnessBailout, tok, fmt.Sprintf("%s is modified in do loop", w.a))
	}
	out := w.walk(body.Next(), body.Link(), depth+1)
	if out.Kind != Continue {
		// the body of a do loop always runs
		return nil, out
	}
	if out := w.walk(open.Next(), open.Link(), depth); out.Kind != Continue {
		return nil, out
	}
	return open.Link().Next(), proceed()
}

func (w *forward) switchStatement(tok *token.Token, depth int) (*token.Token, Outcome) {
	open := tok.Next()
	closeParen := open.Link()
	if closeParen == nil || !closeParen.Next().Is("{") || closeParen.Next().Link() == nil {
		return nil, bailoutAt(SoundnessBailout, tok, "malformed switch statement")
	}
	if out := w.walk(open.Next(), closeParen, depth); out.Kind != Continue {
		return nil, out
	}
	body := closeParen.Next()
	end := body.Link()
	if ModifiedIn(w.s, w.a, body, end) {
		return nil, bailoutAt(SoundnessBailout, tok, fmt.Sprintf("%s is modified in switch", w.a))
	}
	w.labels++
	defer func() { w.labels-- }()
	for pos := body.Next(); before(pos, end); {
		out := w.walk(pos, end, depth+1)
		switch out.Kind {
		case Continue:
			return end.Next(), proceed()
		case Escape:
			// control resumes at the next label
			pos = nextCaseLabel(out.Tok, body)
		default:
			return nil, out
		}
	}
	return end.Next(), proceed()
}

// leave handles the closing brace of a block that encloses the start of the walk
func (w *forward) leave(tok *token.Token) (*token.Token, Outcome) {
	sc := tok.Scope()
	switch {
	case sc == nil || sc.Type == token.Function || sc.Type == token.Global:
		return nil, stopAt(tok, "end of function")
	case sc.IsLoop():
		return nil, stopAt(tok, "end of loop body")
	case sc.Type == token.Switch:
		return nil, stopAt(tok, "end of switch")
	case sc.Type == token.If || sc.Type == token.Else:
		// the code after the if statement is also reached through the other branch
		return nil, stopAt(tok, "end of conditional block")
	}
	return tok.Next(), proceed()
}

func (w *forward) call(paren *token.Token) Outcome {
	ann := w.s.Library.LookupCall(paren)
	if w.a.ModifiedByCalls() && !ann.Pure {
		return bailoutAt(SoundnessBailout, paren, fmt.Sprintf("%s may be modified by call to %s", w.a,
			calleeName(paren)))
	}
	for i, arg := range CallArguments(paren) {
		if w.a.IsAliasOf(arg) && !ann.IsConstArg(i+1) {
			return bailoutAt(SoundnessBailout, paren, fmt.Sprintf("%s is passed to %s by address", w.a,
				calleeName(paren)))
		}
	}
	return proceed()
}

// ModifiedIn returns true if the expression of a may be modified between start and end (both included): written,
// stored by address, or passed by address to a call that can write through it.
func ModifiedIn(s *State, a Analyzer, start, end *token.Token) bool {
	for t := start; t != nil && t.Ref() <= end.Ref(); t = t.Next() {
		switch a.Match(t) {
		case WriteMatch, Inconclusive:
			return true
		}
		if !t.IsCall() {
			continue
		}
		ann := s.Library.LookupCall(t)
		if a.ModifiedByCalls() && !ann.Pure {
			return true
		}
		for i, arg := range CallArguments(t) {
			if a.IsAliasOf(arg) && !ann.IsConstArg(i+1) {
				return true
			}
		}
	}
	return false
}

// EscapeOf returns the token through which control always leaves the block opened by start, nil if the end of
// the block is reachable. When several escapes are found, break and continue are preferred since they leave the
// least.
func EscapeOf(s *State, start *token.Token) *token.Token {
	end := start.Link()
	if end == nil {
		return nil
	}
	for t := start.Next(); before(t, end); t = t.Next() {
		switch {
		case t.Is("return") || t.Is("throw") || t.Is("break") || t.Is("continue") || t.Is("goto"):
			return t
		case isCaseLabel(t) || isStatementLabel(t):
			// the rest of the block can be entered through the label
			return nil
		case t.Is("if") && t.Next().Is("(") && t.Next().Link() != nil:
			thenStart := t.Next().Link().Next()
			if !thenStart.Is("{") || thenStart.Link() == nil {
				continue
			}
			e1 := EscapeOf(s, thenStart)
			t = thenStart.Link()
			elseStart := elseBlock(t)
			if elseStart == nil {
				continue
			}
			t = elseStart.Link()
			if e1 == nil {
				continue
			}
			if e2 := EscapeOf(s, elseStart); e2 != nil {
				if isLoopExit(e2) {
					return e2
				}
				return e1
			}
		case t.Is("{") && t.Link() != nil:
			if sc := t.Scope(); sc != nil && sc.Type == token.Unconditional && sc.BodyStart() == t {
				if e := EscapeOf(s, t); e != nil {
					return e
				}
			}
			// loop and switch bodies: a break inside does not leave this block
			t = t.Link()
		case t.Is(")") && t.Link().IsCall() && isUnconditional(t.Link()):
			if s.noReturn(t.Link()) {
				return t
			}
		}
	}
	return nil
}

func isLoopExit(tok *token.Token) bool {
	return tok.Is("break") || tok.Is("continue")
}

func isUnconditional(tok *token.Token) bool {
	return !tok.IsShortCircuited()
}

// elseBlock returns the opening brace of the else block following the then block closed by thenEnd
func elseBlock(thenEnd *token.Token) *token.Token {
	e := thenEnd.Next()
	if e.Is("else") && e.Next().Is("{") && e.Next().Link() != nil {
		return e.Next()
	}
	return nil
}

// loopBody returns the opening brace of the body of the for or while loop at tok, nil if tok does not start a loop
func loopBody(tok *token.Token) *token.Token {
	open := tok.Next()
	if !open.Is("(") || open.Link() == nil {
		return nil
	}
	body := open.Link().Next()
	if !body.Is("{") || body.Link() == nil || body.Scope() == nil || body.Scope().ClassDef() != tok {
		return nil
	}
	return body
}

// endOfStatement returns the semicolon ending the statement starting at tok
func endOfStatement(tok *token.Token) *token.Token {
	for t := tok; t != nil; t = t.Next() {
		switch {
		case t.Is(";"):
			return t
		case (t.Is("(") || t.Is("[")) && t.Link() != nil:
			t = t.Link()
		case t.Is("{") || t.Is("}"):
			return t
		}
	}
	return nil
}

func isCaseLabel(tok *token.Token) bool {
	return tok.Is("case") || (tok.Is("default") && tok.Next().Is(":"))
}

// isStatementLabel returns true for the name of a goto label
func isStatementLabel(tok *token.Token) bool {
	if tok.Kind != token.Name || !tok.Next().Is(":") || tok.AstParent() != nil {
		return false
	}
	colon := tok.Next()
	if colon.AstOperand1() != nil || colon.AstParent() != nil {
		return false
	}
	p := tok.Previous()
	return p == nil || p.Is(";") || p.Is("{") || p.Is("}") || p.Is(":")
}

// labelColon returns the colon ending the case label at tok
func labelColon(tok *token.Token) *token.Token {
	for t := tok.Next(); t != nil; t = t.Next() {
		switch {
		case t.Is(":") && t.AstOperand1() == nil && t.AstParent() == nil:
			return t
		case (t.Is("(") || t.Is("[")) && t.Link() != nil:
			t = t.Link()
		case t.Is(";") || t.Is("{") || t.Is("}"):
			return nil
		}
	}
	return nil
}

// nextCaseLabel returns the first label of the switch body opened by body that follows tok
func nextCaseLabel(tok, body *token.Token) *token.Token {
	end := body.Link()
	for t := tok.Next(); before(t, end); t = t.Next() {
		switch {
		case isCaseLabel(t) && t.Scope() == body.Scope():
			return t
		case t.Is("{") && t.Link() != nil && t.Scope() != nil && t.Scope().Type == token.Switch:
			t = t.Link()
		}
	}
	return nil
}

func calleeName(paren *token.Token) string {
	ns, name, ok := library.CallName(paren)
	if !ok {
		return "unknown function"
	}
	if ns != "" {
		return ns + "::" + name
	}
	return name
}
