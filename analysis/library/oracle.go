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

package library

import (
	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"github.com/awslabs/ar-c-valueflow/internal/graphutil"
)

// An Oracle tells whether calls return
type Oracle interface {
	// IsNoReturn returns true if the function called at call never returns. When nothing is known about the
	// called function, it returns false and the name of the function.
	IsNoReturn(call *token.Token) (noReturn bool, unknownName string)
}

// TUOracle answers with the library annotations and with what it infers about the functions defined in one
// translation unit.
//
// A defined function is inferred not to return when it has a noreturn attribute, or when it contains no return
// statement and its body calls a function that does not return outside of any nested block and of any
// short-circuit or ternary operand. The inference runs over the call graph bottom-up, so the property goes up
// chains of wrappers.
type TUOracle struct {
	lib      *Library
	defined  map[string]*token.Scope
	noReturn map[string]bool

	// Calls is the call graph of the translation unit. Functions that are called but not defined are leaves.
	Calls *graphutil.CallGraph
}

// NewOracle builds the call graph of the functions in db and infers which of them do not return
func NewOracle(lib *Library, db *token.SymbolDatabase) *TUOracle {
	o := &TUOracle{
		lib:      lib,
		defined:  map[string]*token.Scope{},
		noReturn: map[string]bool{},
		Calls:    CallGraphOf(db),
	}
	for _, fs := range db.FunctionScopes {
		if fs.Function != nil {
			o.defined[fs.Function.Name] = fs
		}
	}
	for _, scc := range graphutil.BottomUp(o.Calls) {
		for changed := true; changed; {
			changed = false
			for _, name := range scc {
				fs := o.defined[name]
				if fs != nil && !o.noReturn[name] && o.infer(fs) {
					o.noReturn[name] = true
					changed = true
				}
			}
		}
	}
	return o
}

// CallGraphOf returns the call graph of the functions defined in db
func CallGraphOf(db *token.SymbolDatabase) *graphutil.CallGraph {
	cg := graphutil.NewCallGraph()
	for _, fs := range db.FunctionScopes {
		if fs.Function == nil {
			continue
		}
		caller := fs.Function.Name
		cg.AddNode(caller)
		forBody(fs, func(tok *token.Token) {
			if !tok.IsCall() {
				return
			}
			if _, callee, ok := CallName(tok); ok {
				cg.AddEdge(caller, callee)
			}
		})
	}
	return cg
}

func forBody(fs *token.Scope, f func(tok *token.Token)) {
	end := fs.BodyEnd()
	for tok := fs.BodyStart(); tok != nil && tok != end; tok = tok.Next() {
		f(tok)
	}
}

func (o *TUOracle) infer(fs *token.Scope) bool {
	if fs.Function.NoReturnAttribute {
		return true
	}
	hasReturn, callsNoReturn := false, false
	forBody(fs, func(tok *token.Token) {
		if tok.Is("return") {
			hasReturn = true
		}
		if tok.IsCall() && tok.Scope() == fs && !tok.IsShortCircuited() {
			if nr, _ := o.IsNoReturn(tok); nr {
				callsNoReturn = true
			}
		}
	})
	return !hasReturn && callsNoReturn
}

// IsNoReturn implements Oracle
func (o *TUOracle) IsNoReturn(call *token.Token) (bool, string) {
	namespace, name, ok := CallName(call)
	if !ok {
		return false, ""
	}
	if fs, isDefined := o.defined[name]; isDefined && namespace == "" {
		return o.noReturn[name] || fs.Function.NoReturnAttribute, ""
	}
	a := o.lib.Lookup(namespace, name)
	if a.Known {
		return a.NoReturn, ""
	}
	return false, name
}

// NoReturnFunctions returns the names of the defined functions that do not return
func (o *TUOracle) NoReturnFunctions() []string {
	var res []string
	for _, name := range o.Calls.Names {
		if o.noReturn[name] {
			res = append(res, name)
		}
	}
	return res
}
