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

package analysis

import (
	"fmt"
	"io"

	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"github.com/awslabs/ar-c-valueflow/analysis/value"
)

// Statistics counts the values derived by the analysis
type Statistics struct {
	NumberOfTokens    uint
	NumberOfScopes    uint
	NumberOfFunctions uint
	TokensWithValues  uint
	KnownValues       uint
	PossibleValues    uint
	ImpossibleValues  uint
	ConditionValues   uint
	LiteralValues     uint
}

// CollectStatistics returns the statistics of the values attached to the tokens of list. Values attached by the
// front end to literals are counted separately.
func CollectStatistics(list *token.List) Statistics {
	var s Statistics
	s.NumberOfTokens = uint(list.Len())
	if db := list.SymbolDatabase(); db != nil {
		s.NumberOfScopes = uint(len(db.Scopes))
		s.NumberOfFunctions = uint(len(db.FunctionScopes))
	}
	list.Iter(func(tok *token.Token) bool {
		derived := false
		for _, v := range tok.Values {
			if len(v.ErrorPath) == 0 {
				s.LiteralValues++
				continue
			}
			derived = true
			switch v.Certainty {
			case value.Known:
				s.KnownValues++
			case value.Impossible:
				s.ImpossibleValues++
			default:
				s.PossibleValues++
			}
			if v.Condition != value.NoRef {
				s.ConditionValues++
			}
		}
		if derived {
			s.TokensWithValues++
		}
		return true
	})
	return s
}

// Values returns the number of values derived by the analysis
func (s Statistics) Values() uint {
	return s.KnownValues + s.PossibleValues + s.ImpossibleValues
}

// Add adds the counts of other to s
func (s *Statistics) Add(other Statistics) {
	s.NumberOfTokens += other.NumberOfTokens
	s.NumberOfScopes += other.NumberOfScopes
	s.NumberOfFunctions += other.NumberOfFunctions
	s.TokensWithValues += other.TokensWithValues
	s.KnownValues += other.KnownValues
	s.PossibleValues += other.PossibleValues
	s.ImpossibleValues += other.ImpossibleValues
	s.ConditionValues += other.ConditionValues
	s.LiteralValues += other.LiteralValues
}

// Write prints the statistics to w
func (s Statistics) Write(w io.Writer) {
	fmt.Fprintf(w, "Tokens:             %d\n", s.NumberOfTokens)
	fmt.Fprintf(w, "Scopes:             %d\n", s.NumberOfScopes)
	fmt.Fprintf(w, "Functions:          %d\n", s.NumberOfFunctions)
	fmt.Fprintf(w, "Tokens with values: %d\n", s.TokensWithValues)
	fmt.Fprintf(w, "Known values:       %d\n", s.KnownValues)
	fmt.Fprintf(w, "Possible values:    %d\n", s.PossibleValues)
	fmt.Fprintf(w, "Impossible values:  %d\n", s.ImpossibleValues)
	fmt.Fprintf(w, "  with a condition: %d\n", s.ConditionValues)
	fmt.Fprintf(w, "Literal values:     %d\n", s.LiteralValues)
}
