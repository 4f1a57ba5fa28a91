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
	"strconv"
	"strings"

	"github.com/awslabs/ar-c-valueflow/analysis/token"
)

// assignExprIDs gives each expression of each function an expression id. Variables use their variable id.
// Syntactically equal expressions in the same function share an id, except that calls and writes are always
// distinct. Ids of non-variable expressions start after the largest variable id.
func assignExprIDs(l *token.List) {
	db := l.SymbolDatabase()
	next := db.MaxVarID() + 1
	for _, fs := range db.FunctionScopes {
		end := fs.BodyEnd()
		start := fs.ClassDef()
		if start == nil {
			start = fs.BodyStart()
		}
		if start == nil || end == nil {
			continue
		}
		ids := map[string]int{}
		keys := map[*token.Token]string{}
		for tok := start; tok != nil && tok != end; tok = tok.Next() {
			if !isExpressionToken(tok) {
				continue
			}
			if tok.VarID != 0 {
				tok.ExprID = tok.VarID
				continue
			}
			key := exprKey(tok, keys)
			id, ok := ids[key]
			if !ok {
				id = next
				next++
				ids[key] = id
			}
			tok.ExprID = id
		}
	}
}

func isExpressionToken(tok *token.Token) bool {
	switch tok.Kind {
	case token.Name, token.Number, token.Char, token.String, token.Boolean:
		return true
	case token.Keyword:
		return tok.Str == "sizeof" || tok.Str == "NULL" || tok.Str == "nullptr"
	case token.Type, token.Other:
		return false
	case token.Bracket:
		return tok.IsCall() || tok.IsCast() || tok.Str == "[" && tok.AstOperand1() != nil
	}
	if tok.Str == "," {
		return false
	}
	return tok.AstOperand1() != nil || tok.AstOperand2() != nil
}

// exprKey returns a structural key for the expression rooted at tok
func exprKey(tok *token.Token, keys map[*token.Token]string) string {
	if tok == nil {
		return "_"
	}
	if k, ok := keys[tok]; ok {
		return k
	}
	var k string
	switch {
	case tok.VarID != 0:
		k = "v" + strconv.Itoa(tok.VarID)
	case tok.IsCall(), tok.IsAssignmentOp(), tok.IsIncDecOp():
		k = "#" + strconv.Itoa(int(tok.Ref()))
	case tok.Kind == token.Number, tok.Kind == token.Char, tok.Kind == token.Boolean:
		k = "n" + tok.Str
	case tok.Kind == token.String:
		k = "s" + tok.Str
	case tok.Kind == token.Name:
		k = "m" + tok.Str
	case tok.IsCast():
		var parts []string
		for t := tok.Next(); t != nil && t != tok.Link(); t = t.Next() {
			parts = append(parts, t.Str)
		}
		k = "cast(" + strings.Join(parts, " ") + ")" + exprKey(tok.AstOperand1(), keys)
	default:
		k = tok.Str + "(" + exprKey(tok.AstOperand1(), keys) + "," + exprKey(tok.AstOperand2(), keys) + ")"
	}
	keys[tok] = k
	return k
}
