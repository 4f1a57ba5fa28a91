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

// frame is a lexical block: the variables declared in it are visible until it is popped
type frame struct {
	scope *token.Scope
	names map[string]*token.Variable
}

// converter walks the concrete syntax tree produced by tree-sitter and emits tokens in source order through a
// token.Builder. The expression trees, scopes and symbols are built during the same walk.
type converter struct {
	src   []byte
	isCPP bool
	b     *token.Builder

	global *token.Scope
	frames []*frame

	// enums maps enumerator names to their values
	enums map[string]int64
	// consts maps tokens to the integer constant they evaluate to, for literals and folded unary expressions
	consts map[value.Ref]int64
	// functions is the set of declared or defined function names
	functions map[string]bool
	// noReturnDecl is the set of functions whose declaration carries a noreturn specifier
	noReturnDecl map[string]bool
}

func newConverter(filename string, src []byte, isCPP bool) *converter {
	return &converter{
		src:          src,
		isCPP:        isCPP,
		b:            token.NewBuilder(filename, isCPP),
		enums:        map[string]int64{},
		consts:       map[value.Ref]int64{},
		functions:    map[string]bool{},
		noReturnDecl: map[string]bool{},
	}
}

func (cv *converter) push(s *token.Scope) {
	cv.frames = append(cv.frames, &frame{scope: s, names: map[string]*token.Variable{}})
}

func (cv *converter) pop() {
	cv.frames = cv.frames[:len(cv.frames)-1]
}

func (cv *converter) scope() *token.Scope {
	return cv.frames[len(cv.frames)-1].scope
}

func (cv *converter) inFunction() bool {
	return cv.scope().FunctionOf() != nil
}

func (cv *converter) lookup(name string) *token.Variable {
	for i := len(cv.frames) - 1; i >= 0; i-- {
		if v, ok := cv.frames[i].names[name]; ok {
			return v
		}
	}
	return nil
}

func (cv *converter) text(n *sitter.Node) string {
	return n.Content(cv.src)
}

// leaf emits the token of a leaf node. Missing nodes inserted by error recovery are not emitted.
func (cv *converter) leaf(n *sitter.Node) value.Ref {
	if n.IsMissing() {
		return value.NoRef
	}
	s := cv.text(n)
	p := n.StartPoint()
	return cv.b.Add(s, classify(n, s), int(p.Row)+1, int(p.Column)+1)
}

// leafAs emits the token of a leaf node with the given kind
func (cv *converter) leafAs(n *sitter.Node, kind token.Kind) value.Ref {
	r := cv.leaf(n)
	if r != value.NoRef {
		cv.b.SetKind(r, kind)
	}
	return r
}

// synthetic emits a token that is not in the source, at the position of n
func (cv *converter) synthetic(s string, n *sitter.Node, atEnd bool) value.Ref {
	p := n.StartPoint()
	if atEnd {
		p = n.EndPoint()
	}
	return cv.b.AddSynthetic(s, token.Bracket, int(p.Row)+1, int(p.Column)+1)
}

func (cv *converter) translationUnit(root *sitter.Node) {
	cv.global = cv.b.NewScope(token.Global, nil, value.NoRef)
	cv.push(cv.global)
	forChildren(root, func(_ int, _ string, ch *sitter.Node) {
		cv.topLevel(ch)
	})
	cv.pop()
}

func (cv *converter) topLevel(n *sitter.Node) {
	switch n.Type() {
	case "function_definition":
		cv.functionDefinition(n)
	case "declaration", "field_declaration":
		cv.declaration(n, token.GlobalVar)
	case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef":
		cv.preprocBranch(n, cv.topLevel)
	case "linkage_specification", "namespace_definition", "declaration_list", "template_declaration":
		forChildren(n, func(_ int, field string, ch *sitter.Node) {
			switch {
			case ch.ChildCount() == 0:
				cv.leaf(ch)
			case field == "name" || field == "parameters":
				cv.generic(ch)
			default:
				cv.topLevel(ch)
			}
		})
	default:
		if isSkipped(n.Type()) {
			return
		}
		if n.ChildCount() == 0 {
			cv.leaf(n)
			return
		}
		cv.typeNode(n)
	}
}

// preprocBranch processes the contents of a conditional directive with f. All branches are processed.
func (cv *converter) preprocBranch(n *sitter.Node, f func(*sitter.Node)) {
	forChildren(n, func(_ int, field string, ch *sitter.Node) {
		if field == "name" || field == "condition" || ch.ChildCount() == 0 && !ch.IsNamed() {
			return
		}
		f(ch)
	})
}

// functionDefinition processes a function definition: specifiers, declarator with parameters, and body.
func (cv *converter) functionDefinition(n *sitter.Node) {
	body := n.ChildByFieldName("body")
	if body == nil {
		cv.generic(n)
		return
	}
	header := string(cv.src[n.StartByte():body.StartByte()])
	noReturn := strings.Contains(header, "noreturn") || strings.Contains(header, "_Noreturn")

	s := cv.b.NewScope(token.Function, cv.scope(), value.NoRef)
	cv.push(s)
	name, nameTok := "", value.NoRef
	forChildren(n, func(_ int, field string, ch *sitter.Node) {
		switch field {
		case "body":
			cv.b.SetClassDef(s, nameTok)
			if name != "" {
				cv.functions[name] = true
				cv.b.DeclareFunction(name, nameTok, s, noReturn || cv.noReturnDecl[name])
			}
			cv.block(ch, s)
		case "declarator":
			name, nameTok = cv.functionDeclarator(ch)
		default:
			cv.typeNode(ch)
		}
	})
	cv.pop()
}

// functionDeclarator emits the declarator of a function definition and declares its parameters in the current
// scope. It returns the function name and its token.
func (cv *converter) functionDeclarator(n *sitter.Node) (string, value.Ref) {
	switch n.Type() {
	case "function_declarator":
		name, nameTok := "", value.NoRef
		forChildren(n, func(_ int, field string, ch *sitter.Node) {
			switch field {
			case "declarator":
				nameTok = cv.functionName(ch)
				if nameTok != value.NoRef {
					name = cv.b.Str(nameTok)
				}
			case "parameters":
				cv.parameters(ch)
			default:
				cv.typeNode(ch)
			}
		})
		return name, nameTok
	case "pointer_declarator", "reference_declarator", "parenthesized_declarator", "attributed_declarator":
		name, nameTok := "", value.NoRef
		forChildren(n, func(_ int, field string, ch *sitter.Node) {
			if field == "declarator" || ch.Type() == "function_declarator" {
				name, nameTok = cv.functionDeclarator(ch)
				return
			}
			cv.typeNode(ch)
		})
		return name, nameTok
	default:
		r := cv.functionName(n)
		if r == value.NoRef {
			return "", r
		}
		return cv.b.Str(r), r
	}
}

// functionName emits a possibly qualified function name and returns the token of its last component
func (cv *converter) functionName(n *sitter.Node) value.Ref {
	if n.ChildCount() == 0 {
		return cv.leafAs(n, token.Name)
	}
	last := value.NoRef
	forChildren(n, func(_ int, _ string, ch *sitter.Node) {
		r := cv.functionName(ch)
		if r != value.NoRef && cv.b.TokenKind(r) == token.Name {
			last = r
		}
	})
	return last
}

func (cv *converter) parameters(n *sitter.Node) {
	forChildren(n, func(_ int, _ string, ch *sitter.Node) {
		switch ch.Type() {
		case "parameter_declaration", "optional_parameter_declaration":
			cv.declaration(ch, token.Argument)
		case "comment":
		default:
			cv.typeNode(ch)
		}
	})
}

// block emits the body of a compound statement in scope s. A body that is a single statement is wrapped in
// synthetic braces so that every scope has delimiters.
func (cv *converter) block(n *sitter.Node, s *token.Scope) {
	cv.push(s)
	defer cv.pop()
	start, end := value.NoRef, value.NoRef
	if n.Type() == "compound_statement" {
		forChildren(n, func(_ int, _ string, ch *sitter.Node) {
			switch ch.Type() {
			case "{":
				start = cv.leaf(ch)
			case "}":
				end = cv.leaf(ch)
			default:
				cv.statement(ch)
			}
		})
	} else {
		start = cv.synthetic("{", n, false)
		cv.statement(n)
	}
	if start == value.NoRef {
		start = cv.synthetic("{", n, false)
	}
	if end == value.NoRef {
		end = cv.synthetic("}", n, true)
	}
	cv.b.Link(start, end)
	cv.b.SetBody(s, start, end)
	cv.b.SetScope(start, end, s)
}

func (cv *converter) statement(n *sitter.Node) {
	switch n.Type() {
	case "compound_statement":
		cv.block(n, cv.b.NewScope(token.Unconditional, cv.scope(), value.NoRef))
	case "if_statement":
		cv.ifStatement(n)
	case "switch_statement":
		cv.switchStatement(n)
	case "while_statement":
		cv.whileStatement(n)
	case "do_statement":
		cv.doStatement(n)
	case "for_statement", "for_range_loop":
		cv.forStatement(n)
	case "return_statement", "throw_statement":
		cv.keywordExpression(n)
	case "declaration":
		cv.declaration(n, token.Local)
	case "function_definition":
		cv.functionDefinition(n)
	case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef":
		cv.preprocBranch(n, cv.statement)
	case "type_definition", "struct_specifier", "enum_specifier", "union_specifier", "class_specifier":
		cv.typeNode(n)
	default:
		if isSkipped(n.Type()) {
			return
		}
		cv.generic(n)
	}
}

// generic emits the children of n in order, dispatching expressions and statements to their handlers
func (cv *converter) generic(n *sitter.Node) {
	if n.ChildCount() == 0 {
		if isExpression(n.Type()) {
			cv.expr(n)
		} else {
			cv.leaf(n)
		}
		return
	}
	forChildren(n, func(_ int, _ string, ch *sitter.Node) {
		t := ch.Type()
		switch {
		case isSkipped(t):
		case isExpression(t):
			cv.expr(ch)
		case isStatement(t):
			cv.statement(ch)
		case ch.ChildCount() == 0:
			cv.leaf(ch)
		default:
			cv.generic(ch)
		}
	})
}

func (cv *converter) ifStatement(n *sitter.Node) {
	ifTok, elseTok := value.NoRef, value.NoRef
	forChildren(n, func(_ int, field string, ch *sitter.Node) {
		switch {
		case ch.Type() == "if":
			ifTok = cv.leaf(ch)
		case field == "condition":
			cv.condition(ch, ifTok)
		case field == "consequence":
			cv.block(ch, cv.b.NewScope(token.If, cv.scope(), ifTok))
		case ch.Type() == "else_clause":
			forChildren(ch, func(_ int, _ string, e *sitter.Node) {
				if e.Type() == "else" {
					elseTok = cv.leaf(e)
					return
				}
				cv.block(e, cv.b.NewScope(token.Else, cv.scope(), elseTok))
			})
		case ch.Type() == "else":
			elseTok = cv.leaf(ch)
		case field == "alternative":
			cv.block(ch, cv.b.NewScope(token.Else, cv.scope(), elseTok))
		default:
			cv.generic(ch)
		}
	})
}

// condition emits the parenthesized condition of an if, while, do-while or switch statement. The opening
// parenthesis gets the keyword as first operand and the condition as second.
func (cv *converter) condition(n *sitter.Node, kw value.Ref) {
	open, top := value.NoRef, value.NoRef
	forChildren(n, func(_ int, field string, ch *sitter.Node) {
		t := ch.Type()
		switch {
		case t == "(":
			open = cv.leaf(ch)
		case t == ")":
			cv.leaf(ch)
		case isSkipped(t):
		case t == "declaration":
			cv.declaration(ch, token.Local)
		case field == "initializer" || t == "init_statement":
			cv.generic(ch)
		case isExpression(t):
			top = cv.expr(ch)
		default:
			cv.generic(ch)
		}
	})
	if open != value.NoRef && kw != value.NoRef {
		cv.b.SetOperands(open, kw, top)
	}
}

func (cv *converter) switchStatement(n *sitter.Node) {
	kw := value.NoRef
	forChildren(n, func(_ int, field string, ch *sitter.Node) {
		switch {
		case ch.Type() == "switch":
			kw = cv.leaf(ch)
		case field == "condition":
			cv.condition(ch, kw)
		case field == "body":
			cv.block(ch, cv.b.NewScope(token.Switch, cv.scope(), kw))
		default:
			cv.generic(ch)
		}
	})
}

func (cv *converter) whileStatement(n *sitter.Node) {
	kw := value.NoRef
	forChildren(n, func(_ int, field string, ch *sitter.Node) {
		switch {
		case ch.Type() == "while":
			kw = cv.leaf(ch)
		case field == "condition":
			cv.condition(ch, kw)
		case field == "body":
			cv.block(ch, cv.b.NewScope(token.While, cv.scope(), kw))
		default:
			cv.generic(ch)
		}
	})
}

func (cv *converter) doStatement(n *sitter.Node) {
	doTok, whileTok := value.NoRef, value.NoRef
	forChildren(n, func(_ int, field string, ch *sitter.Node) {
		switch {
		case ch.Type() == "do":
			doTok = cv.leaf(ch)
		case ch.Type() == "while":
			whileTok = cv.leaf(ch)
		case field == "body":
			cv.block(ch, cv.b.NewScope(token.Do, cv.scope(), doTok))
		case field == "condition":
			cv.condition(ch, whileTok)
		default:
			cv.generic(ch)
		}
	})
}

// forStatement emits a for loop. The loop scope starts at the header so that the variables declared there are
// scoped to the loop.
func (cv *converter) forStatement(n *sitter.Node) {
	kw := value.NoRef
	var s *token.Scope
	forChildren(n, func(_ int, field string, ch *sitter.Node) {
		t := ch.Type()
		switch {
		case t == "for":
			kw = cv.leaf(ch)
			s = cv.b.NewScope(token.For, cv.scope(), kw)
			cv.push(s)
		case s == nil:
			cv.generic(ch)
		case field == "body":
			cv.block(ch, s)
		case t == "declaration" || t == "init_statement":
			cv.declaration(ch, token.Local)
		case field == "declarator":
			info := cv.declInfo(n, token.Local)
			cv.declarator(ch, info)
		case field == "type":
			cv.typeNode(ch)
		case isSkipped(t):
		case isExpression(t):
			cv.expr(ch)
		case ch.ChildCount() == 0:
			cv.leaf(ch)
		default:
			cv.generic(ch)
		}
	})
	if s != nil {
		cv.pop()
	}
}

// keywordExpression emits return and throw statements. The keyword gets the returned expression as operand.
func (cv *converter) keywordExpression(n *sitter.Node) {
	kw, top := value.NoRef, value.NoRef
	forChildren(n, func(i int, _ string, ch *sitter.Node) {
		t := ch.Type()
		switch {
		case i == 0:
			kw = cv.leaf(ch)
		case isSkipped(t):
		case isExpression(t):
			top = cv.expr(ch)
		default:
			cv.generic(ch)
		}
	})
	if kw != value.NoRef && top != value.NoRef {
		cv.b.SetOperands(kw, top, value.NoRef)
	}
}

func (cv *converter) finish() *token.List {
	if n := cv.b.Len(); n > 0 {
		cv.b.SetScope(0, value.Ref(n-1), cv.global)
	}
	cv.b.LinkBrackets()
	l := cv.b.Finish()
	assignExprIDs(l)
	return l
}

func forChildren(n *sitter.Node, f func(i int, field string, ch *sitter.Node)) {
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if ch == nil || ch.Type() == "comment" {
			continue
		}
		f(i, n.FieldNameForChild(i), ch)
	}
}
