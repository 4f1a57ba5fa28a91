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

package token

import (
	"strings"

	"github.com/awslabs/ar-c-valueflow/analysis/value"
)

// Kind classifies tokens.
type Kind int

const (
	Other Kind = iota
	Name
	Keyword
	Type
	Number
	Char
	String
	Boolean
	ArithmeticOp
	BitOp
	ComparisonOp
	LogicalOp
	AssignmentOp
	IncDecOp
	Bracket
	Punct
)

type flag uint16

const (
	flagSynthetic flag = 1 << iota
	flagIncomplete
	flagCall
	flagFunctionName
	flagDeclaration
	flagUnary
	flagCast
)

// Token is an element of a token List. Tokens are stored contiguously in the list and refer to each other by index;
// a *Token is only valid as long as the list is not modified by a Builder.
type Token struct {
	list  *List
	index value.Ref

	// Str is the text of the token
	Str  string
	Kind Kind

	// Line and Column are 1-based
	Line   int
	Column int

	next, prev value.Ref
	link       value.Ref
	astParent  value.Ref
	astOp1     value.Ref
	astOp2     value.Ref
	scope      *Scope
	flags      flag

	// ExprID identifies syntactically equal side-effect free expressions within a function. 0 means the
	// expression cannot be tracked.
	ExprID int

	// VarID is the id of the variable this name token refers to, 0 if none
	VarID int

	// Values is the set of values inferred for the expression rooted at this token
	Values []value.Value
}

// Ref returns the reference of the token in its list
func (t *Token) Ref() value.Ref { return t.index }

// List returns the token list t belongs to
func (t *Token) List() *List { return t.list }

func (t *Token) at(r value.Ref) *Token {
	if t == nil {
		return nil
	}
	return t.list.At(r)
}

// Next returns the next token, nil at the end of the list
func (t *Token) Next() *Token { return t.at(t.next) }

// Previous returns the previous token, nil at the beginning of the list
func (t *Token) Previous() *Token { return t.at(t.prev) }

// Link returns the matching delimiter of a bracket token, nil otherwise
func (t *Token) Link() *Token { return t.at(t.link) }

// AstParent returns the parent in the expression tree
func (t *Token) AstParent() *Token { return t.at(t.astParent) }

// AstOperand1 returns the first operand in the expression tree
func (t *Token) AstOperand1() *Token { return t.at(t.astOp1) }

// AstOperand2 returns the second operand in the expression tree
func (t *Token) AstOperand2() *Token { return t.at(t.astOp2) }

// TokAt returns the token n positions after t (or before if n is negative)
func (t *Token) TokAt(n int) *Token {
	tok := t
	for ; n > 0 && tok != nil; n-- {
		tok = tok.Next()
	}
	for ; n < 0 && tok != nil; n++ {
		tok = tok.Previous()
	}
	return tok
}

// Scope returns the innermost scope containing the token
func (t *Token) Scope() *Scope { return t.scope }

// Variable returns the variable the token refers to, nil if it is not a variable
func (t *Token) Variable() *Variable {
	if t == nil || t.VarID == 0 || t.list.db == nil {
		return nil
	}
	return t.list.db.Variable(t.VarID)
}

// Is returns true if the token is non-nil and its text is s
func (t *Token) Is(s string) bool { return t != nil && t.Str == s }

// IsName returns true for identifiers and keywords
func (t *Token) IsName() bool {
	return t != nil && (t.Kind == Name || t.Kind == Keyword || t.Kind == Type || t.Kind == Boolean)
}

// IsNumber returns true for number literals
func (t *Token) IsNumber() bool { return t != nil && t.Kind == Number }

// IsComparisonOp returns true for ==, !=, <, <=, > and >=
func (t *Token) IsComparisonOp() bool { return t != nil && t.Kind == ComparisonOp }

// IsLogicalOp returns true for && and || (the ! operator is a unary logical operator, see IsNot)
func (t *Token) IsLogicalOp() bool { return t != nil && (t.Str == "&&" || t.Str == "||") }

// IsNot returns true for the logical negation operator
func (t *Token) IsNot() bool { return t != nil && t.Str == "!" && t.astOp1 != value.NoRef }

// IsAssignmentOp returns true for =, +=, -=, ...
func (t *Token) IsAssignmentOp() bool { return t != nil && t.Kind == AssignmentOp }

// IsIncDecOp returns true for ++ and --
func (t *Token) IsIncDecOp() bool { return t != nil && t.Kind == IncDecOp }

// IsUnaryOp returns true for operators with a single operand (including &x and *p)
func (t *Token) IsUnaryOp() bool { return t != nil && t.flags&flagUnary != 0 }

// IsCall returns true for the opening parenthesis of a function call
func (t *Token) IsCall() bool { return t != nil && t.flags&flagCall != 0 }

// IsShortCircuited returns true if the evaluation of t is guarded by a short-circuit or ternary operator
func (t *Token) IsShortCircuited() bool {
	for p := t.AstParent(); p != nil; p = p.AstParent() {
		if p.IsLogicalOp() || p.Is("?") {
			return true
		}
	}
	return false
}

// IsCast returns true for the opening parenthesis of a cast
func (t *Token) IsCast() bool { return t != nil && t.flags&flagCast != 0 }

// IsFunctionName returns true for the name of a called or defined function
func (t *Token) IsFunctionName() bool { return t != nil && t.flags&flagFunctionName != 0 }

// IsDeclaration returns true for the name token of a declared variable
func (t *Token) IsDeclaration() bool { return t != nil && t.flags&flagDeclaration != 0 }

// IsSynthetic returns true for tokens inserted by the front end, e.g. braces around single statement bodies
func (t *Token) IsSynthetic() bool { return t != nil && t.flags&flagSynthetic != 0 }

// IsIncomplete returns true for identifiers that could not be resolved to a declaration
func (t *Token) IsIncomplete() bool { return t != nil && t.flags&flagIncomplete != 0 }

// HasKnownIntValue returns true if a known integer value is attached to the token
func (t *Token) HasKnownIntValue() bool { return t != nil && value.HasKnownInt(t.Values) }

// KnownIntValue returns the known integer value attached to the token
func (t *Token) KnownIntValue() (int64, bool) {
	if t == nil {
		return 0, false
	}
	return value.KnownInt(t.Values)
}

// AddValue attaches v to the token unless an equal value is already attached. Returns true if the value was added.
func (t *Token) AddValue(v value.Value) bool {
	var added bool
	t.Values, added = value.Add(t.Values, v)
	return added
}

// AstTop returns the root of the expression tree t belongs to
func (t *Token) AstTop() *Token {
	top := t
	for top.AstParent() != nil {
		top = top.AstParent()
	}
	return top
}

// IsAncestorOf returns true if t is a strict ancestor of other in the expression tree
func (t *Token) IsAncestorOf(other *Token) bool {
	for p := other.AstParent(); p != nil; p = p.AstParent() {
		if p == t {
			return true
		}
	}
	return false
}

// ExpressionRange returns the first and last tokens of the expression rooted at t
func (t *Token) ExpressionRange() (*Token, *Token) {
	first, last := t, t
	var visit func(*Token)
	visit = func(x *Token) {
		if x == nil {
			return
		}
		if x.index < first.index {
			first = x
		}
		end := x
		if x.link != value.NoRef && (x.Str == "(" || x.Str == "[") {
			end = x.Link()
		}
		if end.index > last.index {
			last = end
		}
		visit(x.AstOperand1())
		visit(x.AstOperand2())
	}
	visit(t)
	// widen the range until the brackets inside it are balanced
	for changed := true; changed; {
		changed = false
		for tok := first; tok != nil && tok.index <= last.index; tok = tok.Next() {
			l := tok.Link()
			if l == nil || tok.Str == "{" || tok.Str == "}" {
				continue
			}
			if l.index < first.index {
				first, changed = l, true
			} else if l.index > last.index {
				last, changed = l, true
			}
		}
	}
	return first, last
}

// ExpressionString returns the source text of the expression rooted at t, without whitespace except between two
// words.
func (t *Token) ExpressionString() string {
	if t == nil {
		return ""
	}
	first, last := t.ExpressionRange()
	var b strings.Builder
	var prev *Token
	for tok := first; tok != nil; tok = tok.Next() {
		if tok.IsSynthetic() {
			continue
		}
		if prev != nil && isWordLike(prev) && isWordLike(tok) {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Str)
		prev = tok
		if tok == last {
			break
		}
	}
	return b.String()
}

func isWordLike(t *Token) bool {
	return t.IsName() || t.IsNumber() || t.Kind == Char || t.Kind == String
}

func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Str
}

// SimpleMatch returns true if the tokens starting at tok have the texts of the space-separated words in pattern.
func SimpleMatch(tok *Token, pattern string) bool {
	for _, w := range strings.Fields(pattern) {
		if tok == nil || tok.Str != w {
			return false
		}
		tok = tok.Next()
	}
	return true
}
