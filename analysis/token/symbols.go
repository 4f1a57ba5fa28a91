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
	"github.com/awslabs/ar-c-valueflow/analysis/value"
)

// ScopeType is the kind of statement governing a scope
type ScopeType int

const (
	Global ScopeType = iota
	Function
	If
	Else
	Switch
	For
	While
	Do
	Unconditional
)

func (t ScopeType) String() string {
	switch t {
	case Global:
		return "global"
	case Function:
		return "function"
	case If:
		return "if"
	case Else:
		return "else"
	case Switch:
		return "switch"
	case For:
		return "for"
	case While:
		return "while"
	case Do:
		return "do"
	default:
		return "block"
	}
}

// Scope is a brace-delimited region of the program.
type Scope struct {
	list *List

	Type     ScopeType
	NestedIn *Scope
	Nested   []*Scope

	// Function is set for function scopes
	Function *FunctionDef

	// Variables declared directly in the scope
	Variables []*Variable

	classDef  value.Ref
	bodyStart value.Ref
	bodyEnd   value.Ref
}

// ClassDef returns the token of the statement governing the scope (if, else, switch, for, while, do, or the name of
// a function). Nil for the global scope and unconditional blocks.
func (s *Scope) ClassDef() *Token { return s.list.At(s.classDef) }

// BodyStart returns the opening brace of the scope body
func (s *Scope) BodyStart() *Token { return s.list.At(s.bodyStart) }

// BodyEnd returns the closing brace of the scope body
func (s *Scope) BodyEnd() *Token { return s.list.At(s.bodyEnd) }

// IsLoop returns true for for, while and do scopes
func (s *Scope) IsLoop() bool {
	return s != nil && (s.Type == For || s.Type == While || s.Type == Do)
}

// IsExecutable returns true for scopes containing statements
func (s *Scope) IsExecutable() bool { return s != nil && s.Type != Global }

// FunctionOf returns the function scope enclosing s, nil if s is not inside a function
func (s *Scope) FunctionOf() *Scope {
	for x := s; x != nil; x = x.NestedIn {
		if x.Type == Function {
			return x
		}
	}
	return nil
}

// EnclosingLoop returns the innermost loop scope enclosing s (s included), nil if there is none inside the function
func (s *Scope) EnclosingLoop() *Scope {
	for x := s; x != nil && x.Type != Function; x = x.NestedIn {
		if x.IsLoop() {
			return x
		}
	}
	return nil
}

// Properties are the attributes of a variable
type Properties uint16

const (
	Local Properties = 1 << iota
	Argument
	GlobalVar
	Const
	Pointer
	Reference
	Array
	Static
	Bool
	Floating
)

// Variable is a declared variable
type Variable struct {
	list *List

	ID       int
	Name     string
	TypeName string
	Scope    *Scope

	nameTok value.Ref
	props   Properties
}

// NameToken returns the token where the variable is declared
func (v *Variable) NameToken() *Token { return v.list.At(v.nameTok) }

func (v *Variable) has(p Properties) bool { return v != nil && v.props&p != 0 }

// IsLocal returns true for variables declared in a function body
func (v *Variable) IsLocal() bool { return v.has(Local) }

// IsArgument returns true for function parameters
func (v *Variable) IsArgument() bool { return v.has(Argument) }

// IsGlobal returns true for variables declared at namespace scope
func (v *Variable) IsGlobal() bool { return v.has(GlobalVar) }

// IsConst returns true for const-qualified variables (for pointers: const pointers)
func (v *Variable) IsConst() bool { return v.has(Const) }

// IsPointer returns true for pointer variables
func (v *Variable) IsPointer() bool { return v.has(Pointer) }

// IsReference returns true for C++ references
func (v *Variable) IsReference() bool { return v.has(Reference) }

// IsArray returns true for arrays
func (v *Variable) IsArray() bool { return v.has(Array) }

// IsStatic returns true for static variables
func (v *Variable) IsStatic() bool { return v.has(Static) }

// IsBool returns true for variables of boolean type
func (v *Variable) IsBool() bool { return v.has(Bool) }

// IsFloating returns true for variables of floating point type
func (v *Variable) IsFloating() bool { return v.has(Floating) }

// FunctionDef is a function defined in the translation unit
type FunctionDef struct {
	list *List

	Name  string
	Scope *Scope

	// NoReturnAttribute is true if the definition carries a noreturn specifier or attribute
	NoReturnAttribute bool

	nameTok value.Ref
}

// NameToken returns the name token of the definition
func (f *FunctionDef) NameToken() *Token { return f.list.At(f.nameTok) }

// SymbolDatabase holds the scopes, variables and functions of a token list
type SymbolDatabase struct {
	list *List

	// Scopes are all the scopes, in source order of their opening
	Scopes []*Scope

	// FunctionScopes are the bodies of the functions defined in the list
	FunctionScopes []*Scope

	// Variables is indexed by variable id; Variables[0] is nil
	Variables []*Variable

	// Functions maps names to definitions
	Functions map[string]*FunctionDef
}

// List returns the token list of the database
func (db *SymbolDatabase) List() *List { return db.list }

// Variable returns the variable with the given id
func (db *SymbolDatabase) Variable(id int) *Variable {
	if id <= 0 || id >= len(db.Variables) {
		return nil
	}
	return db.Variables[id]
}

// MaxVarID returns the largest variable id
func (db *SymbolDatabase) MaxVarID() int { return len(db.Variables) - 1 }
