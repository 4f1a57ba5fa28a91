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
)

// MatchKind classifies the use of a tracked expression at a token
type MatchKind int

const (
	// NoMatch means the token is unrelated to the tracked expression
	NoMatch MatchKind = iota
	// ReadMatch means the token reads the tracked expression
	ReadMatch
	// WriteMatch means the token modifies the tracked expression
	WriteMatch
	// Inconclusive means the token may modify the tracked expression in a way that cannot be followed, e.g.
	// its address is stored
	Inconclusive
)

func (m MatchKind) String() string {
	switch m {
	case ReadMatch:
		return "read"
	case WriteMatch:
		return "write"
	case Inconclusive:
		return "inconclusive"
	}
	return "none"
}

// An Analyzer tells the engines how one expression is used along a walk. Analyzers are created for one
// propagation and have no side effects.
type Analyzer interface {
	// Match classifies the use of the tracked expression at tok
	Match(tok *token.Token) MatchKind

	// Update returns the value to attach at a read, or the value to carry on after a write. It returns false
	// when the propagation must stop at tok.
	Update(tok *token.Token, m MatchKind, v value.Value) (value.Value, bool)

	// IsAliasOf returns true if passing the argument arg to a call gives the callee a way to modify the tracked
	// expression
	IsAliasOf(arg *token.Token) bool

	// ModifiedByCalls returns true if any call with side effects may modify the tracked expression
	ModifiedByCalls() bool

	// ShouldStopAt returns true if the propagation cannot go past tok, e.g. the end of the scope of a variable
	ShouldStopAt(tok *token.Token) bool

	String() string
}

// dependencies are the variables an expression reads
type dependencies struct {
	vars map[int]*token.Variable

	// memory is true when the expression reads memory any call may write: globals, dereferences, subscripts
	// and members
	memory bool
}

func dependenciesOf(expr *token.Token) dependencies {
	d := dependencies{vars: map[int]*token.Variable{}}
	work := []*token.Token{expr}
	for len(work) > 0 {
		t := work[len(work)-1]
		work = work[:len(work)-1]
		if t == nil {
			continue
		}
		if v := t.Variable(); v != nil {
			d.vars[v.ID] = v
			if v.IsGlobal() && !v.IsConst() {
				d.memory = true
			}
		}
		switch {
		case t.IsUnaryOp() && t.Str == "*", t.Str == "[", t.Str == "->", t.Str == ".", t.IsCall():
			d.memory = true
		}
		work = append(work, t.AstOperand1(), t.AstOperand2())
	}
	return d
}

// match classifies writes and address escapes of the dependencies. It returns false when the token is not a
// modification of a dependency.
func (d dependencies) match(tok *token.Token) (MatchKind, bool) {
	if tok.VarID == 0 || d.vars[tok.VarID] == nil {
		return NoMatch, false
	}
	if isWritten(tok) || tok.IsDeclaration() {
		return WriteMatch, true
	}
	if addr := addressOf(tok); addr != nil {
		if argumentCall(addr) != nil {
			// decided at the call
			return NoMatch, true
		}
		return Inconclusive, true
	}
	if isReferenceBinding(tok) {
		return Inconclusive, true
	}
	return NoMatch, false
}

func (d dependencies) isAliasOf(arg *token.Token) bool {
	if arg == nil {
		return false
	}
	if arg.IsUnaryOp() && arg.Str == "&" {
		op := arg.AstOperand1()
		return op != nil && op.VarID != 0 && d.vars[op.VarID] != nil
	}
	if arg.VarID == 0 || d.vars[arg.VarID] == nil {
		return false
	}
	// a bare variable may bind to a non-const reference in C++, arrays decay to pointers
	return arg.List().IsCPP || arg.Variable().IsArray()
}

// isWritten returns true if tok is the left operand of an assignment or the operand of ++/--
func isWritten(tok *token.Token) bool {
	p := tok.AstParent()
	if p == nil {
		return false
	}
	if p.IsAssignmentOp() && p.AstOperand1() == tok {
		return true
	}
	return p.IsIncDecOp()
}

// addressOf returns the & operator taking the address of tok, nil if there is none
func addressOf(tok *token.Token) *token.Token {
	p := tok.AstParent()
	if p != nil && p.IsUnaryOp() && p.Str == "&" && p.AstOperand1() == tok {
		return p
	}
	return nil
}

// isReferenceBinding returns true if tok initializes or is assigned to a C++ reference
func isReferenceBinding(tok *token.Token) bool {
	p := tok.AstParent()
	if p == nil || !p.Is("=") || p.AstOperand2() != tok {
		return false
	}
	v := p.AstOperand1().Variable()
	return v != nil && v.IsReference()
}

// argumentCall returns the call tok is a direct argument of, nil if tok is not an argument
func argumentCall(tok *token.Token) *token.Token {
	t := tok
	for p := t.AstParent(); p != nil; p = t.AstParent() {
		switch {
		case p.Is(","):
			t = p
		case p.IsCall() && p.AstOperand2() == t:
			return p
		default:
			return nil
		}
	}
	return nil
}

// CallArguments returns the arguments of the call at paren, in order
func CallArguments(paren *token.Token) []*token.Token {
	var args []*token.Token
	work := []*token.Token{paren.AstOperand2()}
	for len(work) > 0 {
		t := work[len(work)-1]
		work = work[:len(work)-1]
		if t == nil {
			continue
		}
		if t.Is(",") && t.AstOperand1() != nil {
			work = append(work, t.AstOperand2(), t.AstOperand1())
			continue
		}
		args = append(args, t)
	}
	return args
}

// SameExpressionAnalyzer follows the occurrences of an expression: its reads receive the carried value
type SameExpressionAnalyzer struct {
	expr *token.Token
	deps dependencies
}

// NewSameExpression returns an analyzer following the expression rooted at expr
func NewSameExpression(expr *token.Token) *SameExpressionAnalyzer {
	return &SameExpressionAnalyzer{expr: expr, deps: dependenciesOf(expr)}
}

func (a *SameExpressionAnalyzer) Match(tok *token.Token) MatchKind {
	if m, ok := a.deps.match(tok); ok {
		return m
	}
	if tok != a.expr && tok.ExprID != 0 && tok.ExprID == a.expr.ExprID && !isWritten(tok) {
		return ReadMatch
	}
	return NoMatch
}

func (a *SameExpressionAnalyzer) Update(_ *token.Token, m MatchKind, v value.Value) (value.Value, bool) {
	return v, m == ReadMatch
}

func (a *SameExpressionAnalyzer) IsAliasOf(arg *token.Token) bool { return a.deps.isAliasOf(arg) }

func (a *SameExpressionAnalyzer) ModifiedByCalls() bool { return a.deps.memory }

func (a *SameExpressionAnalyzer) ShouldStopAt(*token.Token) bool { return false }

func (a *SameExpressionAnalyzer) String() string {
	return fmt.Sprintf("'%s'", a.expr.ExpressionString())
}

// OppositeExpressionAnalyzer follows the logical opposites of an expression: they receive the negation of the
// carried value
type OppositeExpressionAnalyzer struct {
	expr *token.Token
	deps dependencies
}

// NewOppositeExpression returns an analyzer following the opposites of the expression rooted at expr
func NewOppositeExpression(expr *token.Token) *OppositeExpressionAnalyzer {
	return &OppositeExpressionAnalyzer{expr: expr, deps: dependenciesOf(expr)}
}

func (a *OppositeExpressionAnalyzer) Match(tok *token.Token) MatchKind {
	if m, ok := a.deps.match(tok); ok {
		return m
	}
	if isOpposite(a.expr, tok) && !isWritten(tok) {
		return ReadMatch
	}
	return NoMatch
}

func (a *OppositeExpressionAnalyzer) Update(tok *token.Token, m MatchKind, v value.Value) (value.Value, bool) {
	if m != ReadMatch {
		return v, false
	}
	nv := v.Negate(tok.Ref(), fmt.Sprintf("'%s' is the opposite of '%s'", tok.ExpressionString(),
		a.expr.ExpressionString()))
	if nv.Truth && nv.IntValue != 0 && !isBoolean(tok) {
		// a true operand of ! that is not a boolean is only known to be non-zero
		nv.Truth = false
		if nv.IsKnown() {
			nv.IntValue = 0
			nv.SetImpossible()
		}
	}
	return nv, true
}

func (a *OppositeExpressionAnalyzer) IsAliasOf(arg *token.Token) bool { return a.deps.isAliasOf(arg) }

func (a *OppositeExpressionAnalyzer) ModifiedByCalls() bool { return a.deps.memory }

func (a *OppositeExpressionAnalyzer) ShouldStopAt(*token.Token) bool { return false }

func (a *OppositeExpressionAnalyzer) String() string {
	return fmt.Sprintf("opposite of '%s'", a.expr.ExpressionString())
}

var negatedOp = map[string]string{"==": "!=", "!=": "==", "<": ">=", ">=": "<", ">": "<=", "<=": ">"}

var mirroredOp = map[string]string{"==": "==", "!=": "!=", "<": ">", ">": "<", "<=": ">=", ">=": "<="}

func sameExpr(a, b *token.Token) bool {
	return a != nil && b != nil && a.ExprID != 0 && a.ExprID == b.ExprID
}

// isOpposite returns true if tok is the logical negation of cond
func isOpposite(cond, tok *token.Token) bool {
	if cond == tok {
		return false
	}
	if tok.IsNot() && sameExpr(tok.AstOperand1(), cond) {
		return true
	}
	if cond.IsNot() && sameExpr(cond.AstOperand1(), tok) {
		return true
	}
	if !cond.IsComparisonOp() || !tok.IsComparisonOp() {
		return false
	}
	c1, c2 := cond.AstOperand1(), cond.AstOperand2()
	t1, t2 := tok.AstOperand1(), tok.AstOperand2()
	if sameExpr(c1, t1) && sameExpr(c2, t2) {
		return tok.Str == negatedOp[cond.Str]
	}
	if sameExpr(c1, t2) && sameExpr(c2, t1) {
		return tok.Str == negatedOp[mirroredOp[cond.Str]]
	}
	return false
}

// VariableAnalyzer follows the reads of one variable. The forward variant lets a write re-establish the carried
// fact; the reverse variant stops at any write or declaration.
type VariableAnalyzer struct {
	v       *token.Variable
	deps    dependencies
	reverse bool
}

// NewVariableForward returns the analyzer of the forward propagation of a value of v
func NewVariableForward(v *token.Variable) *VariableAnalyzer {
	return &VariableAnalyzer{v: v, deps: variableDependencies(v)}
}

// NewVariableReverse returns the analyzer of the reverse propagation of a value of v
func NewVariableReverse(v *token.Variable) *VariableAnalyzer {
	return &VariableAnalyzer{v: v, deps: variableDependencies(v), reverse: true}
}

func variableDependencies(v *token.Variable) dependencies {
	return dependencies{
		vars:   map[int]*token.Variable{v.ID: v},
		memory: v.IsGlobal() && !v.IsConst(),
	}
}

// Variable returns the tracked variable
func (a *VariableAnalyzer) Variable() *token.Variable { return a.v }

func (a *VariableAnalyzer) Match(tok *token.Token) MatchKind {
	if tok.VarID != a.v.ID {
		return NoMatch
	}
	if m, ok := a.deps.match(tok); ok {
		return m
	}
	return ReadMatch
}

func (a *VariableAnalyzer) Update(tok *token.Token, m MatchKind, v value.Value) (value.Value, bool) {
	switch {
	case m == ReadMatch:
		return v, true
	case a.reverse || m != WriteMatch:
		return v, false
	}
	// x = k keeps a known fact x == k
	p := tok.AstParent()
	if p == nil || !p.Is("=") || !v.IsKnown() || v.Bound != value.Point || v.Truth {
		return v, false
	}
	k, ok := p.AstOperand2().KnownIntValue()
	if !ok || k != v.IntValue {
		return v, false
	}
	return v.WithPath(tok.Ref(), fmt.Sprintf("%s is assigned %d", a.v.Name, k)), true
}

func (a *VariableAnalyzer) IsAliasOf(arg *token.Token) bool { return a.deps.isAliasOf(arg) }

func (a *VariableAnalyzer) ModifiedByCalls() bool { return a.deps.memory }

func (a *VariableAnalyzer) ShouldStopAt(tok *token.Token) bool {
	return !a.reverse && a.v.Scope != nil && a.v.Scope.Type != token.Global && tok == a.v.Scope.BodyEnd()
}

func (a *VariableAnalyzer) String() string {
	return fmt.Sprintf("variable %s", a.v.Name)
}
