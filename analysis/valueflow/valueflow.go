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
	"io"
	"strings"

	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"github.com/awslabs/ar-c-valueflow/analysis/value"
)

// Run derives the values of the tokens of list. The condition expressions are analyzed first, then the switch
// variables. Values stay attached to the tokens of the list; bailouts are reported to the error logger of s.
func Run(s *State, list *token.List) {
	s = s.ForList(list)
	db := list.SymbolDatabase()
	s.Logger.Debugf("%s: value flow over %d functions", list.File, len(db.FunctionScopes))
	ConditionExpressions(s, db)
	SwitchVariables(s, db)
	if s.Config.DebugNormal {
		var b strings.Builder
		PrintValues(&b, list, nil)
		s.Logger.Infof("values of %s:\n%s", list.File, b.String())
	}
}

// A ValueFormatter formats the values of a token for printing
type ValueFormatter func(values []value.Value) string

// PrintValues writes to w one line per token carrying values: its location, its text and its values, sorted.
// Constants are omitted. If format is nil, values are printed as {v1, v2}.
func PrintValues(w io.Writer, list *token.List, format ValueFormatter) {
	if format == nil {
		format = formatValues
	}
	list.Iter(func(tok *token.Token) bool {
		if len(tok.Values) == 0 || isConstant(tok) {
			return true
		}
		fmt.Fprintf(w, "%d:%d %s %s\n", tok.Line, tok.Column, tok.ExpressionString(), format(value.Sorted(tok.Values)))
		return true
	})
}

func formatValues(values []value.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// isConstant returns true for the literals, enumerators and folded constants valued by the front end
func isConstant(tok *token.Token) bool {
	return len(tok.Values) == 1 && tok.Values[0].IsKnown() && len(tok.Values[0].ErrorPath) == 0
}
