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
	"fmt"

	"github.com/awslabs/ar-c-valueflow/analysis/value"
)

// List is the token arena of one translation unit. Tokens are stored contiguously and are addressed by their
// value.Ref index. A list is built once by a Builder and is read-only afterwards, except for the Values of its tokens.
type List struct {
	// File is the name of the source file the tokens come from
	File string

	// IsCPP is true for C++ sources
	IsCPP bool

	tokens []Token
	db     *SymbolDatabase
}

// Len returns the number of tokens in the list
func (l *List) Len() int { return len(l.tokens) }

// At returns the token at index r, nil if r is out of bounds
func (l *List) At(r value.Ref) *Token {
	if r < 0 || int(r) >= len(l.tokens) {
		return nil
	}
	return &l.tokens[r]
}

// Front returns the first token of the list
func (l *List) Front() *Token { return l.At(0) }

// Back returns the last token of the list
func (l *List) Back() *Token { return l.At(value.Ref(len(l.tokens) - 1)) }

// SymbolDatabase returns the symbol database associated with the list
func (l *List) SymbolDatabase() *SymbolDatabase { return l.db }

// Iter calls f on each token in order, stopping when f returns false
func (l *List) Iter(f func(*Token) bool) {
	for i := range l.tokens {
		if !f(&l.tokens[i]) {
			return
		}
	}
}

// Location returns a file:line:column string for the token at r
func (l *List) Location(r value.Ref) string {
	tok := l.At(r)
	if tok == nil {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, tok.Line, tok.Column)
}

// A Builder constructs a token List and its SymbolDatabase. All the methods take and return references instead of
// pointers, since the arena may grow while building.
type Builder struct {
	list *List
	db   *SymbolDatabase
}

// NewBuilder returns a builder for a list of tokens from file
func NewBuilder(file string, isCPP bool) *Builder {
	l := &List{File: file, IsCPP: isCPP}
	db := &SymbolDatabase{list: l, Variables: []*Variable{nil}, Functions: map[string]*FunctionDef{}}
	l.db = db
	return &Builder{list: l, db: db}
}

// Add appends a token and returns its reference
func (b *Builder) Add(str string, kind Kind, line int, column int) value.Ref {
	r := value.Ref(len(b.list.tokens))
	prev := value.NoRef
	if r > 0 {
		prev = r - 1
		b.list.tokens[r-1].next = r
	}
	b.list.tokens = append(b.list.tokens, Token{
		list:      b.list,
		index:     r,
		Str:       str,
		Kind:      kind,
		Line:      line,
		Column:    column,
		next:      value.NoRef,
		prev:      prev,
		link:      value.NoRef,
		astParent: value.NoRef,
		astOp1:    value.NoRef,
		astOp2:    value.NoRef,
	})
	return r
}

// AddSynthetic appends a token that does not appear in the source
func (b *Builder) AddSynthetic(str string, kind Kind, line int, column int) value.Ref {
	r := b.Add(str, kind, line, column)
	b.list.tokens[r].flags |= flagSynthetic
	return r
}

// LinkOf returns the reference of the delimiter matching r
func (b *Builder) LinkOf(r value.Ref) value.Ref { return b.list.tokens[r].link }

// Len returns the number of tokens added so far
func (b *Builder) Len() int { return len(b.list.tokens) }

// Str returns the text of the token at r
func (b *Builder) Str(r value.Ref) string { return b.list.tokens[r].Str }

// TokenKind returns the kind of the token at r
func (b *Builder) TokenKind(r value.Ref) Kind { return b.list.tokens[r].Kind }

// SetKind changes the kind of the token at r
func (b *Builder) SetKind(r value.Ref, k Kind) { b.list.tokens[r].Kind = k }

// Link links two matching delimiters
func (b *Builder) Link(open, close value.Ref) {
	b.list.tokens[open].link = close
	b.list.tokens[close].link = open
}

// SetOperands sets the operands of op in the expression tree. Either operand may be NoRef.
func (b *Builder) SetOperands(op, op1, op2 value.Ref) {
	t := &b.list.tokens[op]
	t.astOp1 = op1
	t.astOp2 = op2
	if op1 != value.NoRef {
		b.list.tokens[op1].astParent = op
	}
	if op2 != value.NoRef {
		b.list.tokens[op2].astParent = op
	}
}

// Operands returns the operands of op
func (b *Builder) Operands(op value.Ref) (value.Ref, value.Ref) {
	return b.list.tokens[op].astOp1, b.list.tokens[op].astOp2
}

// MarkUnary marks op as a unary operator
func (b *Builder) MarkUnary(op value.Ref) { b.list.tokens[op].flags |= flagUnary }

// MarkCall marks the opening parenthesis of a call
func (b *Builder) MarkCall(paren value.Ref) { b.list.tokens[paren].flags |= flagCall }

// MarkCast marks the opening parenthesis of a cast
func (b *Builder) MarkCast(paren value.Ref) { b.list.tokens[paren].flags |= flagCast }

// MarkFunctionName marks a token as the name of a function
func (b *Builder) MarkFunctionName(r value.Ref) { b.list.tokens[r].flags |= flagFunctionName }

// MarkIncomplete marks a name that could not be resolved
func (b *Builder) MarkIncomplete(r value.Ref) { b.list.tokens[r].flags |= flagIncomplete }

// SetVarID sets the variable id of a name token
func (b *Builder) SetVarID(r value.Ref, id int) { b.list.tokens[r].VarID = id }

// VarID returns the variable id of the token at r
func (b *Builder) VarID(r value.Ref) int { return b.list.tokens[r].VarID }

// SetExprID sets the expression id of the token at r
func (b *Builder) SetExprID(r value.Ref, id int) { b.list.tokens[r].ExprID = id }

// AddValue attaches a value to the token at r, typically the known value of a literal
func (b *Builder) AddValue(r value.Ref, v value.Value) {
	t := &b.list.tokens[r]
	t.Values, _ = value.Add(t.Values, v)
}

// NewScope opens a new scope nested in parent. The body start and end are set by SetBody.
func (b *Builder) NewScope(typ ScopeType, parent *Scope, classDef value.Ref) *Scope {
	s := &Scope{
		list:      b.list,
		Type:      typ,
		NestedIn:  parent,
		classDef:  classDef,
		bodyStart: value.NoRef,
		bodyEnd:   value.NoRef,
	}
	if parent != nil {
		parent.Nested = append(parent.Nested, s)
	}
	b.db.Scopes = append(b.db.Scopes, s)
	if typ == Function {
		b.db.FunctionScopes = append(b.db.FunctionScopes, s)
	}
	return s
}

// SetClassDef sets the token of the statement governing the scope
func (b *Builder) SetClassDef(s *Scope, r value.Ref) {
	s.classDef = r
}

// SetBody sets the delimiters of the scope body
func (b *Builder) SetBody(s *Scope, start, end value.Ref) {
	s.bodyStart = start
	s.bodyEnd = end
}

// SetScope records the innermost scope of the tokens in [from, to]
func (b *Builder) SetScope(from, to value.Ref, s *Scope) {
	for r := from; r <= to && int(r) < len(b.list.tokens); r++ {
		if b.list.tokens[r].scope == nil {
			b.list.tokens[r].scope = s
		}
	}
}

// DeclareVariable registers a new variable declared by the name token at nameTok and returns it.
func (b *Builder) DeclareVariable(name string, nameTok value.Ref, typeName string, scope *Scope, props Properties) *Variable {
	v := &Variable{
		ID:       len(b.db.Variables),
		Name:     name,
		TypeName: typeName,
		Scope:    scope,
		nameTok:  nameTok,
		list:     b.list,
		props:    props,
	}
	b.db.Variables = append(b.db.Variables, v)
	if scope != nil {
		scope.Variables = append(scope.Variables, v)
	}
	if nameTok != value.NoRef {
		b.list.tokens[nameTok].VarID = v.ID
		b.list.tokens[nameTok].flags |= flagDeclaration
	}
	return v
}

// DeclareFunction registers a function defined in the translation unit.
func (b *Builder) DeclareFunction(name string, nameTok value.Ref, scope *Scope, noReturn bool) *FunctionDef {
	f := &FunctionDef{Name: name, nameTok: nameTok, Scope: scope, NoReturnAttribute: noReturn, list: b.list}
	b.db.Functions[name] = f
	if scope != nil {
		scope.Function = f
	}
	if nameTok != value.NoRef {
		b.list.tokens[nameTok].flags |= flagFunctionName
	}
	return f
}

// LinkBrackets links every (, [ and { to its matching closing delimiter. Unbalanced delimiters stay unlinked.
func (b *Builder) LinkBrackets() {
	var stack []value.Ref
	closing := map[string]string{")": "(", "]": "[", "}": "{"}
	for i := range b.list.tokens {
		t := &b.list.tokens[i]
		switch t.Str {
		case "(", "[", "{":
			if t.Kind == Bracket {
				stack = append(stack, t.index)
			}
		case ")", "]", "}":
			if t.Kind != Bracket || len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			if b.list.tokens[top].Str != closing[t.Str] {
				continue
			}
			stack = stack[:len(stack)-1]
			b.Link(top, t.index)
		}
	}
}

// Finish returns the built list. The builder must not be used afterwards.
func (b *Builder) Finish() *List {
	l := b.list
	b.list = nil
	return l
}
