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
	"math"

	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"github.com/awslabs/ar-c-valueflow/analysis/value"
)

// A fact is a value to propagate with the analyzer recognizing where it applies
type fact struct {
	a Analyzer
	v value.Value
}

// ConditionExpressions derives the values implied by the conditions of the if statements of db. In the
// then-block, each operand of a top-level && holds; in the else-block, each operand of a top-level || is false.
// When the then-block always escapes, the facts of the else-branch also hold after the if statement (and
// symmetrically when only the else-block escapes).
//
// The analysis only runs at the exhaustive check level.
func ConditionExpressions(s *State, db *token.SymbolDatabase) {
	var ifs []*token.Scope
	for _, sc := range db.Scopes {
		if sc.Type == token.If && sc.ClassDef() != nil {
			ifs = append(ifs, sc)
		}
	}
	if len(ifs) == 0 {
		return
	}
	if !s.Config.IsExhaustive() {
		s.reportBailout(Disabled, ifs[0].ClassDef(),
			"condition expression analysis is disabled at the normal check level")
		return
	}
	for _, sc := range ifs {
		if s.Cancelled() {
			return
		}
		deriveCondition(s, sc)
	}
}

func deriveCondition(s *State, sc *token.Scope) {
	ifTok := sc.ClassDef()
	cond := ifTok.Next().AstOperand2()
	if cond == nil {
		return
	}
	if tok := incompleteIn(cond); tok != nil {
		s.reportBailout(IncompleteExpression, tok,
			fmt.Sprintf("condition expression bailout: skipping condition with incomplete variable %s", tok.Str))
		return
	}
	if cond.HasKnownIntValue() {
		s.Logger.Tracef("%s:%d: condition '%s' is constant", s.file, ifTok.Line, cond.ExpressionString())
		return
	}
	if tok := sideEffectIn(s, cond); tok != nil {
		s.Logger.Tracef("%s:%d: condition '%s' has side effects at %s", s.file, ifTok.Line,
			cond.ExpressionString(), tok.Str)
		return
	}

	thenStart, thenEnd := sc.BodyStart(), sc.BodyEnd()
	elseStart := elseBlock(thenEnd)
	thenFacts := conditionFacts(Flatten(cond, "&&"), true)
	elseFacts := conditionFacts(Flatten(cond, "||"), false)

	for _, f := range thenFacts {
		propagate(s, f, thenStart.Next(), thenEnd)
	}
	if elseStart != nil {
		for _, f := range elseFacts {
			propagate(s, f, elseStart.Next(), elseStart.Link())
		}
	}

	thenEscape := EscapeOf(s, thenStart)
	var elseEscape *token.Token
	if elseStart != nil {
		elseEscape = EscapeOf(s, elseStart)
	}
	switch {
	case thenEscape != nil && elseStart == nil:
		redirect(s, ifTok, thenEscape, thenEnd.Next(), elseFacts, nil)
	case thenEscape != nil && elseEscape == nil:
		redirect(s, ifTok, thenEscape, elseStart.Link().Next(), elseFacts, elseStart)
	case elseEscape != nil && thenEscape == nil:
		redirect(s, ifTok, elseEscape, elseStart.Link().Next(), thenFacts, thenStart)
	}
}

func propagate(s *State, f fact, start, end *token.Token) {
	out := Forward(s, start, end, f.a, f.v)
	s.report(out, "condition expression")
	s.Logger.Tracef("%s: %s propagated from line %d: %s", s.file, f.a, start.Line, out)
}

// redirect propagates facts after an if statement one branch of which escapes through esc. When through is not
// nil, it is the block of the other branch, and the facts it modifies are dropped.
func redirect(s *State, ifTok, esc, start *token.Token, facts []fact, through *token.Token) {
	end := redirectEnd(ifTok, esc)
	for _, f := range facts {
		if through != nil && ModifiedIn(s, f.a, through, through.Link()) {
			continue
		}
		v := f.v.WithPath(esc.Ref(), fmt.Sprintf("the other branch leaves through '%s'", esc.Str))
		propagate(s, fact{f.a, v}, start, end)
	}
}

// redirectEnd returns the end of the region where the facts of the non-escaping branch hold: the enclosing loop
// (or switch, for a break) for break and continue, the function otherwise.
func redirectEnd(ifTok, esc *token.Token) *token.Token {
	sc := ifTok.Scope()
	if isLoopExit(esc) {
		for x := sc; x != nil && x.Type != token.Function; x = x.NestedIn {
			if x.IsLoop() || (esc.Is("break") && x.Type == token.Switch) {
				return x.BodyEnd()
			}
		}
	}
	if fs := sc.FunctionOf(); fs != nil {
		return fs.BodyEnd()
	}
	return sc.BodyEnd()
}

// Flatten returns the operands of the top-level op (&& or ||) operators of cond, left to right
func Flatten(cond *token.Token, op string) []*token.Token {
	var res []*token.Token
	work := []*token.Token{cond}
	for len(work) > 0 {
		t := work[len(work)-1]
		work = work[:len(work)-1]
		if t == nil {
			continue
		}
		if t.Str == op && t.IsLogicalOp() {
			work = append(work, t.AstOperand2(), t.AstOperand1())
			continue
		}
		res = append(res, t)
	}
	return res
}

// conditionFacts returns the facts implied by the conditions when they are all true (assumeTrue) or all false
func conditionFacts(conds []*token.Token, assumeTrue bool) []fact {
	var facts []fact
	for _, c := range conds {
		desc := c.ExpressionString()
		truth := truthValue(c)
		truth.Condition = c.Ref()
		if assumeTrue {
			truth = truth.WithPath(c.Ref(), fmt.Sprintf("Assuming condition '%s' is true", desc))
		} else {
			truth = truth.Negate(c.Ref(), fmt.Sprintf("Assuming condition '%s' is false", desc))
		}
		if c.ExprID != 0 {
			facts = append(facts,
				fact{NewSameExpression(c), truth.WithSourceAnnotation(0)},
				fact{NewOppositeExpression(c), truth.WithSourceAnnotation(0)})
		}
		v, x, ok := comparisonFact(c)
		if !ok {
			continue
		}
		x.Condition = c.Ref()
		if assumeTrue {
			x = x.WithPath(c.Ref(), fmt.Sprintf("Assuming that condition '%s' is true", desc))
		} else {
			x = x.Negate(c.Ref(), fmt.Sprintf("Assuming that condition '%s' is false", desc))
		}
		facts = append(facts, fact{NewVariableForward(v), x.WithSourceAnnotation(0)})
	}
	return facts
}

// truthValue returns the value of a true condition: Known 1 for boolean expressions, Impossible 0 for other
// expressions, which may hold any non-zero value
func truthValue(c *token.Token) value.Value {
	if isBoolean(c) {
		v := value.NewInt(1)
		v.SetKnown()
		v.Truth = true
		return v
	}
	v := value.NewInt(0)
	v.SetImpossible()
	return v
}

func isBoolean(c *token.Token) bool {
	if c.IsComparisonOp() || c.IsLogicalOp() || c.IsNot() || c.Kind == token.Boolean {
		return true
	}
	v := c.Variable()
	return v != nil && v.IsBool() && !v.IsPointer()
}

// comparisonFact returns the value of the variable compared to a constant in c when c is true
func comparisonFact(c *token.Token) (*token.Variable, value.Value, bool) {
	if !c.IsComparisonOp() {
		return nil, value.Value{}, false
	}
	op := c.Str
	x, k := c.AstOperand1(), c.AstOperand2()
	if x.Variable() == nil {
		x, k = k, x
		op = mirroredOp[op]
	}
	v := x.Variable()
	if v == nil || x.Kind != token.Name || v.IsFloating() || v.IsArray() {
		return nil, value.Value{}, false
	}
	n, ok := k.KnownIntValue()
	if !ok {
		return nil, value.Value{}, false
	}
	if (n == math.MinInt64 && (op == "<" || op == ">=")) || (n == math.MaxInt64 && (op == ">" || op == "<=")) {
		// the bound would exclude every value, or none
		return nil, value.Value{}, false
	}
	val := value.NewInt(n)
	switch op {
	case "==":
		val.SetKnown()
	case "!=":
		val.SetImpossible()
	case "<":
		val.SetImpossible()
		val.Bound = value.Lower
	case "<=":
		val.SetImpossible()
		val.Bound = value.Lower
		val.IntValue = n + 1
	case ">":
		val.SetImpossible()
		val.Bound = value.Upper
	case ">=":
		val.SetImpossible()
		val.Bound = value.Upper
		val.IntValue = n - 1
	default:
		return nil, value.Value{}, false
	}
	return v, val, true
}

// incompleteIn returns the first unresolved name of the expression rooted at expr
func incompleteIn(expr *token.Token) *token.Token {
	var res *token.Token
	visitAst(expr, func(t *token.Token) bool {
		if t.IsIncomplete() {
			res = t
			return false
		}
		return true
	})
	return res
}

// sideEffectIn returns the first token of the expression rooted at expr that has a side effect: an assignment,
// an increment or decrement, or a call to a function that is not pure
func sideEffectIn(s *State, expr *token.Token) *token.Token {
	var res *token.Token
	visitAst(expr, func(t *token.Token) bool {
		if t.IsAssignmentOp() || t.IsIncDecOp() || (t.IsCall() && !s.Library.LookupCall(t).Pure) {
			res = t
			return false
		}
		return true
	})
	return res
}

// visitAst calls f on the tokens of the expression tree rooted at root, in pre-order, until f returns false
func visitAst(root *token.Token, f func(*token.Token) bool) {
	work := []*token.Token{root}
	for len(work) > 0 {
		t := work[len(work)-1]
		work = work[:len(work)-1]
		if t == nil {
			continue
		}
		if !f(t) {
			return
		}
		work = append(work, t.AstOperand2(), t.AstOperand1())
	}
}
