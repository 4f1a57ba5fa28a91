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

package frontend

import (
	"strings"

	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"github.com/awslabs/ar-c-valueflow/analysis/value"
	sitter "github.com/smacker/go-tree-sitter"
)

// declInfo is what the specifiers of a declaration say about each of its declarators
type declInfo struct {
	typeName string
	props    token.Properties
	decl     *sitter.Node
}

func (cv *converter) declInfo(n *sitter.Node, base token.Properties) declInfo {
	info := declInfo{props: base, decl: n}
	var parts []string
	forChildren(n, func(_ int, field string, ch *sitter.Node) {
		switch {
		case field == "declarator" || field == "value" || field == "default_value" || field == "right":
		case ch.Type() == "type_qualifier":
			q := cv.text(ch)
			if q == "const" || q == "constexpr" {
				info.props |= token.Const
			}
			parts = append(parts, q)
		case ch.Type() == "storage_class_specifier":
			if cv.text(ch) == "static" {
				info.props |= token.Static
			}
		case field == "type":
			parts = append(parts, cv.text(ch))
		}
	})
	info.typeName = strings.Join(parts, " ")
	for _, w := range strings.Fields(info.typeName) {
		switch w {
		case "bool", "_Bool":
			info.props |= token.Bool
		case "float", "double":
			info.props |= token.Floating
		}
	}
	return info
}

// declaration emits a declaration and declares its variables with the base properties
func (cv *converter) declaration(n *sitter.Node, base token.Properties) {
	if base == token.Local && !cv.inFunction() {
		base = token.GlobalVar
	}
	info := cv.declInfo(n, base)
	forChildren(n, func(_ int, field string, ch *sitter.Node) {
		switch {
		case field == "declarator":
			cv.declarator(ch, info)
		case field == "default_value" || field == "value" || field == "right":
			cv.generic(ch)
		case ch.ChildCount() == 0:
			cv.leaf(ch)
		default:
			cv.typeNode(ch)
		}
	})
}

// declarator emits a declarator and declares the variable it names. It returns the name token, or NoRef when the
// declarator does not declare a variable.
func (cv *converter) declarator(n *sitter.Node, info declInfo) value.Ref {
	switch n.Type() {
	case "identifier", "field_identifier":
		r := cv.leafAs(n, token.Name)
		if r != value.NoRef {
			cv.declareVariable(r, info)
		}
		return r
	case "init_declarator":
		nameTok, eq, top := value.NoRef, value.NoRef, value.NoRef
		forChildren(n, func(_ int, field string, ch *sitter.Node) {
			switch {
			case field == "declarator":
				nameTok = cv.declarator(ch, info)
			case ch.Type() == "=":
				eq = cv.leaf(ch)
			case field == "value" && isExpression(ch.Type()):
				top = cv.expr(ch)
			default:
				cv.generic(ch)
			}
		})
		if eq != value.NoRef && nameTok != value.NoRef {
			cv.b.SetOperands(eq, nameTok, top)
		}
		return nameTok
	case "pointer_declarator":
		// a qualifier before the star applies to the pointee
		info.props = info.props&^(token.Const|token.Bool|token.Floating) | token.Pointer
		nameTok := value.NoRef
		forChildren(n, func(_ int, field string, ch *sitter.Node) {
			switch {
			case field == "declarator":
				nameTok = cv.declarator(ch, info)
			case ch.Type() == "type_qualifier" && cv.text(ch) == "const":
				info.props |= token.Const
				cv.leaf(ch)
			default:
				cv.typeNode(ch)
			}
		})
		return nameTok
	case "array_declarator":
		info.props = info.props&^(token.Bool|token.Floating) | token.Array
		nameTok := value.NoRef
		forChildren(n, func(_ int, field string, ch *sitter.Node) {
			switch {
			case field == "declarator":
				nameTok = cv.declarator(ch, info)
			case field == "size":
				cv.generic(ch)
			default:
				cv.leaf(ch)
			}
		})
		return nameTok
	case "reference_declarator", "parenthesized_declarator", "attributed_declarator":
		if n.Type() == "reference_declarator" {
			info.props |= token.Reference
		}
		nameTok := value.NoRef
		forChildren(n, func(_ int, field string, ch *sitter.Node) {
			switch {
			case ch.IsNamed() && (field == "declarator" || isDeclarator(ch.Type())):
				nameTok = cv.declarator(ch, info)
			case ch.ChildCount() == 0:
				cv.leaf(ch)
			default:
				cv.typeNode(ch)
			}
		})
		return nameTok
	case "function_declarator":
		cv.prototype(n, info)
		return value.NoRef
	default:
		cv.generic(n)
		return value.NoRef
	}
}

// prototype emits a function declaration without a body. Parameter names are not declared.
func (cv *converter) prototype(n *sitter.Node, info declInfo) {
	name := ""
	forChildren(n, func(_ int, field string, ch *sitter.Node) {
		if field == "declarator" {
			if r := cv.functionName(ch); r != value.NoRef {
				name = cv.b.Str(r)
				cv.b.MarkFunctionName(r)
			}
			return
		}
		cv.typeNode(ch)
	})
	if name == "" {
		return
	}
	cv.functions[name] = true
	if info.decl != nil {
		header := cv.text(info.decl)
		if strings.Contains(header, "noreturn") || strings.Contains(header, "_Noreturn") {
			cv.noReturnDecl[name] = true
		}
	}
}

func (cv *converter) declareVariable(r value.Ref, info declInfo) {
	name := cv.b.Str(r)
	v := cv.b.DeclareVariable(name, r, info.typeName, cv.scope(), info.props)
	cv.frames[len(cv.frames)-1].names[name] = v
}

// typeNode emits type specifiers and type definitions. Names in types are not resolved, except in array sizes
// and enumerator values.
func (cv *converter) typeNode(n *sitter.Node) {
	if isSkipped(n.Type()) {
		return
	}
	if n.Type() == "enum_specifier" {
		cv.enumSpecifier(n)
		return
	}
	if n.ChildCount() == 0 {
		cv.leaf(n)
		return
	}
	forChildren(n, func(_ int, field string, ch *sitter.Node) {
		if (field == "size" || field == "value") && isExpression(ch.Type()) {
			cv.expr(ch)
			return
		}
		cv.typeNode(ch)
	})
}

// enumSpecifier emits an enum and records the values of its enumerators
func (cv *converter) enumSpecifier(n *sitter.Node) {
	forChildren(n, func(_ int, field string, ch *sitter.Node) {
		if field != "body" {
			cv.typeNode(ch)
			return
		}
		next := int64(0)
		forChildren(ch, func(_ int, _ string, e *sitter.Node) {
			if e.Type() != "enumerator" {
				cv.typeNode(e)
				return
			}
			nameTok, val := value.NoRef, next
			forChildren(e, func(_ int, field string, part *sitter.Node) {
				switch field {
				case "name":
					nameTok = cv.leafAs(part, token.Name)
				case "value":
					if c, ok := cv.consts[cv.expr(part)]; ok {
						val = c
					}
				default:
					cv.leaf(part)
				}
			})
			if nameTok != value.NoRef {
				cv.enums[cv.b.Str(nameTok)] = val
				cv.consts[nameTok] = val
				cv.b.AddValue(nameTok, known(val))
			}
			next = val + 1
		})
	})
}

func known(x int64) value.Value {
	v := value.NewInt(x)
	v.SetKnown()
	return v
}
