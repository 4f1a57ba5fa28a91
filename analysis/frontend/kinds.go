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
	"github.com/awslabs/ar-c-valueflow/analysis/token"
	sitter "github.com/smacker/go-tree-sitter"
)

var keywords = map[string]bool{
	"if": true, "else": true, "switch": true, "case": true, "default": true, "while": true, "do": true,
	"for": true, "return": true, "break": true, "continue": true, "goto": true, "sizeof": true, "alignof": true,
	"_Alignof": true, "throw": true, "try": true, "catch": true, "new": true, "delete": true, "struct": true,
	"enum": true, "union": true, "class": true, "typedef": true, "static": true, "extern": true, "const": true,
	"volatile": true, "inline": true, "register": true, "auto": true, "constexpr": true, "namespace": true,
	"template": true, "typename": true, "public": true, "private": true, "protected": true, "virtual": true,
	"override": true, "final": true, "noexcept": true, "operator": true, "using": true, "friend": true,
	"explicit": true, "mutable": true, "restrict": true, "_Noreturn": true, "noreturn": true,
}

var operatorKinds = map[string]token.Kind{
	"==": token.ComparisonOp, "!=": token.ComparisonOp, "<": token.ComparisonOp, "<=": token.ComparisonOp,
	">": token.ComparisonOp, ">=": token.ComparisonOp,
	"&&": token.LogicalOp, "||": token.LogicalOp, "!": token.LogicalOp,
	"=": token.AssignmentOp, "+=": token.AssignmentOp, "-=": token.AssignmentOp, "*=": token.AssignmentOp,
	"/=": token.AssignmentOp, "%=": token.AssignmentOp, "<<=": token.AssignmentOp, ">>=": token.AssignmentOp,
	"&=": token.AssignmentOp, "|=": token.AssignmentOp, "^=": token.AssignmentOp,
	"++": token.IncDecOp, "--": token.IncDecOp,
	"+": token.ArithmeticOp, "-": token.ArithmeticOp, "*": token.ArithmeticOp, "/": token.ArithmeticOp,
	"%": token.ArithmeticOp,
	"&": token.BitOp, "|": token.BitOp, "^": token.BitOp, "~": token.BitOp, "<<": token.BitOp, ">>": token.BitOp,
	"(": token.Bracket, ")": token.Bracket, "[": token.Bracket, "]": token.Bracket, "{": token.Bracket,
	"}": token.Bracket,
}

// classify returns the token kind of the leaf n with text s
func classify(n *sitter.Node, s string) token.Kind {
	switch n.Type() {
	case "identifier", "field_identifier", "statement_identifier", "namespace_identifier":
		return token.Name
	case "type_identifier", "primitive_type", "sized_type_specifier", "auto":
		return token.Type
	case "number_literal":
		return token.Number
	case "char_literal":
		return token.Char
	case "string_literal", "raw_string_literal", "system_lib_string", "string_content":
		return token.String
	case "true", "false":
		return token.Boolean
	case "null", "nullptr":
		return token.Keyword
	}
	if k, ok := operatorKinds[s]; ok && !n.IsNamed() {
		return k
	}
	if keywords[s] {
		return token.Keyword
	}
	if n.IsNamed() {
		return token.Other
	}
	return token.Punct
}

// isExpression returns true for the node types handled by expr
func isExpression(t string) bool {
	switch t {
	case "identifier", "number_literal", "char_literal", "true", "false", "null", "nullptr", "string_literal",
		"concatenated_string", "raw_string_literal", "system_lib_string", "user_defined_literal", "this",
		"parenthesized_expression", "binary_expression", "assignment_expression", "comma_expression",
		"unary_expression", "pointer_expression", "update_expression", "call_expression", "field_expression",
		"subscript_expression", "conditional_expression", "cast_expression", "sizeof_expression",
		"alignof_expression", "qualified_identifier", "template_function", "compound_literal_expression",
		"initializer_list", "lambda_expression", "new_expression", "delete_expression", "generic_expression",
		"gnu_asm_expression", "offsetof_expression":
		return true
	}
	return false
}

// isStatement returns true for the node types handled by statement
func isStatement(t string) bool {
	switch t {
	case "compound_statement", "if_statement", "switch_statement", "while_statement", "do_statement",
		"for_statement", "for_range_loop", "return_statement", "throw_statement", "declaration",
		"expression_statement", "case_statement", "labeled_statement", "break_statement", "continue_statement",
		"goto_statement", "function_definition", "type_definition", "try_statement", "preproc_if",
		"preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef", "struct_specifier", "enum_specifier",
		"union_specifier", "class_specifier":
		return true
	}
	return false
}

func isDeclarator(t string) bool {
	switch t {
	case "identifier", "init_declarator", "pointer_declarator", "array_declarator", "reference_declarator",
		"parenthesized_declarator", "attributed_declarator", "function_declarator":
		return true
	}
	return false
}

// isSkipped returns true for nodes that produce no tokens: comments and directives other than conditionals
func isSkipped(t string) bool {
	switch t {
	case "comment", "preproc_include", "preproc_def", "preproc_function_def", "preproc_call", "preproc_directive":
		return true
	}
	return false
}
