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
	"math"

	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"github.com/awslabs/ar-c-valueflow/analysis/value"
	sitter "github.com/smacker/go-tree-sitter"
)

// expr emits an expression and returns the top of its expression tree, or NoRef for expressions without a tree
// (initializer lists, lambdas...).
func (cv *converter) expr(n *sitter.Node) value.Ref {
	switch n.Type() {
	case "identifier":
		return cv.name(n)
	case "number_literal", "char_literal", "true", "false", "null", "nullptr", "string_literal",
		"concatenated_string", "raw_string_literal", "system_lib_string", "user_defined_literal":
		return cv.literal(n)
	case "this":
		return cv.leafAs(n, token.Name)
	case "parenthesized_expression":
		top := value.NoRef
		forChildren(n, func(_ int, _ string, ch *sitter.Node) {
			if ch.IsNamed() {
				top = cv.expr(ch)
			} else {
				cv.leaf(ch)
			}
		})
		return top
	case "binary_expression", "assignment_expression", "comma_expression":
		return cv.binary(n)
	case "unary_expression", "pointer_expression", "update_expression":
		return cv.unary(n)
	case "call_expression":
		return cv.call(n)
	case "field_expression":
		op, obj, field := value.NoRef, value.NoRef, value.NoRef
		forChildren(n, func(_ int, name string, ch *sitter.Node) {
			switch name {
			case "argument":
				obj = cv.expr(ch)
			case "field":
				field = cv.leafAs(ch, token.Name)
			default:
				op = cv.leaf(ch)
			}
		})
		if op == value.NoRef {
			return obj
		}
		cv.b.SetOperands(op, obj, field)
		return op
	case "subscript_expression":
		open, arr, idx := value.NoRef, value.NoRef, value.NoRef
		forChildren(n, func(_ int, name string, ch *sitter.Node) {
			switch {
			case name == "argument":
				arr = cv.expr(ch)
			case ch.Type() == "[":
				open = cv.leaf(ch)
			case ch.Type() == "subscript_argument_list":
				forChildren(ch, func(_ int, _ string, a *sitter.Node) {
					switch {
					case a.Type() == "[":
						open = cv.leaf(a)
					case a.IsNamed():
						idx = cv.expr(a)
					default:
						cv.leaf(a)
					}
				})
			case ch.IsNamed():
				idx = cv.expr(ch)
			default:
				cv.leaf(ch)
			}
		})
		if open == value.NoRef {
			return arr
		}
		cv.b.SetOperands(open, arr, idx)
		return open
	case "conditional_expression":
		cond, q, a, colon, b := value.NoRef, value.NoRef, value.NoRef, value.NoRef, value.NoRef
		forChildren(n, func(_ int, name string, ch *sitter.Node) {
			switch {
			case name == "condition":
				cond = cv.expr(ch)
			case name == "consequence":
				a = cv.expr(ch)
			case name == "alternative":
				b = cv.expr(ch)
			case ch.Type() == "?":
				q = cv.leaf(ch)
			case ch.Type() == ":":
				colon = cv.leaf(ch)
			}
		})
		if q == value.NoRef || colon == value.NoRef {
			return cond
		}
		cv.b.SetOperands(colon, a, b)
		cv.b.SetOperands(q, cond, colon)
		return q
	case "cast_expression":
		open, v := value.NoRef, value.NoRef
		forChildren(n, func(_ int, name string, ch *sitter.Node) {
			switch {
			case name == "value":
				v = cv.expr(ch)
			case ch.Type() == "(" && open == value.NoRef:
				open = cv.leaf(ch)
			case name == "type":
				cv.typeNode(ch)
			default:
				cv.leaf(ch)
			}
		})
		if open == value.NoRef {
			return v
		}
		cv.b.MarkCast(open)
		cv.b.SetOperands(open, v, value.NoRef)
		return open
	case "sizeof_expression", "alignof_expression":
		kw, v := value.NoRef, value.NoRef
		forChildren(n, func(i int, name string, ch *sitter.Node) {
			switch {
			case i == 0:
				kw = cv.leaf(ch)
			case name == "type":
				cv.typeNode(ch)
			case ch.IsNamed() && isExpression(ch.Type()):
				v = cv.expr(ch)
			default:
				cv.typeNode(ch)
			}
		})
		if kw != value.NoRef {
			cv.b.SetOperands(kw, v, value.NoRef)
		}
		return kw
	case "qualified_identifier", "template_function", "destructor_name", "operator_name":
		last := value.NoRef
		forChildren(n, func(_ int, _ string, ch *sitter.Node) {
			var r value.Ref
			if ch.ChildCount() > 0 {
				r = cv.expr(ch)
			} else {
				r = cv.leaf(ch)
			}
			if r != value.NoRef && cv.b.TokenKind(r) == token.Name {
				last = r
			}
		})
		return last
	default:
		cv.generic(n)
		return value.NoRef
	}
}

// name emits an identifier and resolves it to a variable, an enumerator or a function
func (cv *converter) name(n *sitter.Node) value.Ref {
	r := cv.leafAs(n, token.Name)
	if r == value.NoRef {
		return r
	}
	s := cv.b.Str(r)
	if v := cv.lookup(s); v != nil {
		cv.b.SetVarID(r, v.ID)
		return r
	}
	if x, ok := cv.enums[s]; ok {
		cv.consts[r] = x
		cv.b.AddValue(r, known(x))
		return r
	}
	if cv.functions[s] {
		cv.b.MarkFunctionName(r)
		return r
	}
	cv.b.MarkIncomplete(r)
	return r
}

// literal emits a literal with its known value
func (cv *converter) literal(n *sitter.Node) value.Ref {
	if n.Type() == "concatenated_string" {
		first := value.NoRef
		forChildren(n, func(_ int, _ string, ch *sitter.Node) {
			if r := cv.leafAs(ch, token.String); first == value.NoRef {
				first = r
			}
		})
		return first
	}
	r := cv.leaf(n)
	if r == value.NoRef {
		return r
	}
	s := cv.b.Str(r)
	switch n.Type() {
	case "number_literal":
		if isFloatLiteral(s) {
			if f, ok := parseFloatLiteral(s); ok {
				v := value.NewFloat(f)
				v.SetKnown()
				cv.b.AddValue(r, v)
			}
			return r
		}
		if x, ok := parseIntLiteral(s); ok {
			cv.consts[r] = x
			cv.b.AddValue(r, known(x))
		}
	case "char_literal":
		if x, ok := parseCharLiteral(s); ok {
			cv.consts[r] = x
			cv.b.AddValue(r, known(x))
		}
	case "true":
		cv.consts[r] = 1
		cv.b.AddValue(r, known(1))
	case "false", "null", "nullptr":
		cv.consts[r] = 0
		cv.b.AddValue(r, known(0))
	}
	return r
}

func (cv *converter) binary(n *sitter.Node) value.Ref {
	op, lhs, rhs := value.NoRef, value.NoRef, value.NoRef
	forChildren(n, func(_ int, _ string, ch *sitter.Node) {
		switch {
		case !ch.IsNamed() && ch.ChildCount() == 0 && op == value.NoRef:
			op = cv.leaf(ch)
		case lhs == value.NoRef && op == value.NoRef:
			lhs = cv.expr(ch)
		default:
			rhs = cv.expr(ch)
		}
	})
	if op == value.NoRef {
		return lhs
	}
	cv.b.SetOperands(op, lhs, rhs)
	if x, ok := cv.consts[lhs]; ok {
		if y, ok := cv.consts[rhs]; ok {
			if z, ok := foldBinary(cv.b.Str(op), x, y); ok {
				cv.consts[op] = z
			}
		}
	}
	return op
}

func (cv *converter) unary(n *sitter.Node) value.Ref {
	op, arg := value.NoRef, value.NoRef
	forChildren(n, func(_ int, _ string, ch *sitter.Node) {
		if !ch.IsNamed() && ch.ChildCount() == 0 && op == value.NoRef {
			op = cv.leaf(ch)
			return
		}
		arg = cv.expr(ch)
	})
	if op == value.NoRef {
		return arg
	}
	cv.b.SetOperands(op, arg, value.NoRef)
	cv.b.MarkUnary(op)
	if x, ok := cv.consts[arg]; ok {
		switch cv.b.Str(op) {
		case "-":
			if x != math.MinInt64 {
				cv.consts[op] = -x
				cv.b.AddValue(op, known(-x))
			}
		case "+":
			cv.consts[op] = x
			cv.b.AddValue(op, known(x))
		case "~":
			cv.consts[op] = ^x
		}
	}
	return op
}

// call emits a call. The opening parenthesis is the top of the call tree: its first operand is the called
// function, its second the arguments chained by commas from the left.
func (cv *converter) call(n *sitter.Node) value.Ref {
	fn, open := value.NoRef, value.NoRef
	forChildren(n, func(_ int, field string, ch *sitter.Node) {
		if field == "function" {
			if ch.Type() == "identifier" {
				fn = cv.leafAs(ch, token.Name)
				if v := cv.lookup(cv.b.Str(fn)); v != nil {
					cv.b.SetVarID(fn, v.ID)
				}
			} else {
				fn = cv.expr(ch)
			}
			if fn != value.NoRef && cv.b.TokenKind(fn) == token.Name && cv.b.VarID(fn) == 0 {
				cv.b.MarkFunctionName(fn)
			}
			return
		}
		if field != "arguments" {
			cv.generic(ch)
			return
		}
		args, comma := value.NoRef, value.NoRef
		forChildren(ch, func(_ int, _ string, a *sitter.Node) {
			switch a.Type() {
			case "(":
				open = cv.leaf(a)
			case ")":
				cv.leaf(a)
			case ",":
				comma = cv.leaf(a)
			default:
				arg := cv.expr(a)
				if args == value.NoRef || comma == value.NoRef {
					args = arg
					return
				}
				cv.b.SetOperands(comma, args, arg)
				args, comma = comma, value.NoRef
			}
		})
		if open != value.NoRef {
			cv.b.MarkCall(open)
			cv.b.SetOperands(open, fn, args)
		}
	})
	if open == value.NoRef {
		return fn
	}
	return open
}

// foldBinary evaluates x op y, failing on division by zero and on results that do not fit in an int64
func foldBinary(op string, x, y int64) (int64, bool) {
	switch op {
	case "+":
		r := x + y
		return r, (r > x) == (y > 0)
	case "-":
		r := x - y
		return r, (r < x) == (y > 0)
	case "*":
		if x == 0 || y == 0 {
			return 0, true
		}
		r := x * y
		return r, r/y == x && !(y == -1 && x == math.MinInt64)
	case "/":
		if y == 0 || (x == math.MinInt64 && y == -1) {
			return 0, false
		}
		return x / y, true
	case "%":
		if y == 0 || (x == math.MinInt64 && y == -1) {
			return 0, false
		}
		return x % y, true
	case "<<":
		if y < 0 || y > 63 {
			return 0, false
		}
		return x << uint(y), true
	case ">>":
		if y < 0 || y > 63 {
			return 0, false
		}
		return x >> uint(y), true
	case "&":
		return x & y, true
	case "|":
		return x | y, true
	case "^":
		return x ^ y, true
	}
	return 0, false
}
