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

	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"github.com/awslabs/ar-c-valueflow/analysis/value"
)

// A caseChain is a sequence of consecutive case labels with no statement in between
type caseChain struct {
	labels     []*token.Token
	values     []int64
	hasDefault bool
	incomplete bool

	// colon ends the last label of the chain
	colon *token.Token
}

// SwitchVariables derives the values of the variables controlling the switch statements of db from their case
// labels. A chain of fallthrough labels gives one value per label; the values are Known only for a chain of one
// label that is reached directly, either at the start of the body or right after a break. The values are
// propagated backward from the switch to the earlier reads of the variable, and forward into the case body when
// the switch-case-forward option is set.
func SwitchVariables(s *State, db *token.SymbolDatabase) {
	for _, sc := range db.Scopes {
		if s.Cancelled() {
			return
		}
		if sc.Type == token.Switch && sc.ClassDef() != nil {
			deriveSwitch(s, sc)
		}
	}
}

func deriveSwitch(s *State, sc *token.Scope) {
	switchTok := sc.ClassDef()
	ctrl := switchTok.Next().AstOperand2()
	v := ctrl.Variable()
	if v == nil || ctrl.Kind != token.Name {
		s.Logger.Tracef("%s:%d: switch is not controlled by a variable", s.file, switchTok.Line)
		return
	}
	if v.IsGlobal() && !v.IsConst() {
		s.reportBailout(SoundnessBailout, switchTok,
			fmt.Sprintf("switch variable bailout: %s is a global variable that may change in the case body", v.Name))
		return
	}

	var candidates []value.Value
	for _, ch := range caseChains(sc) {
		if ch.hasDefault || ch.incomplete {
			continue
		}
		known := len(ch.labels) == 1 && directlyReachable(ch.labels[0], sc)
		var values []value.Value
		for i, label := range ch.labels {
			x := value.NewInt(ch.values[i])
			if known {
				x.SetKnown()
			}
			x.Condition = label.Ref()
			x = x.WithPath(label.Ref(), fmt.Sprintf("case %d: %s is %d", ch.values[i], v.Name, ch.values[i]))
			values = append(values, x.WithSourceAnnotation(0))
		}
		candidates = append(candidates, values...)
		if !s.Config.SwitchCaseForward {
			continue
		}
		for _, x := range values {
			out := Forward(s, ch.colon.Next(), sc.BodyEnd(), NewVariableForward(v), x)
			s.report(out, "switch variable")
		}
	}
	if len(candidates) == 0 {
		return
	}
	out := Reverse(s, sc.BodyStart(), NewVariableReverse(v), candidates)
	s.report(out, "switch variable")
}

// caseChains collects the labels of the switch body, skipping nested blocks
func caseChains(sc *token.Scope) []*caseChain {
	var chains []*caseChain
	var cur *caseChain
	end := sc.BodyEnd()
	for t := sc.BodyStart().Next(); before(t, end); t = t.Next() {
		if t.Is("{") && t.Link() != nil {
			t = t.Link()
			continue
		}
		if !isCaseLabel(t) {
			continue
		}
		colon := labelColon(t)
		if colon == nil {
			continue
		}
		if cur == nil || t.Previous() != cur.colon {
			cur = &caseChain{}
			chains = append(chains, cur)
		}
		cur.labels = append(cur.labels, t)
		if t.Is("default") {
			cur.hasDefault = true
			cur.values = append(cur.values, 0)
		} else {
			n, ok := t.Next().AstTop().KnownIntValue()
			cur.incomplete = cur.incomplete || !ok
			cur.values = append(cur.values, n)
		}
		cur.colon = colon
		t = colon
	}
	return chains
}

// directlyReachable returns true if the label is at the start of the switch body or right after a break
func directlyReachable(label *token.Token, sc *token.Scope) bool {
	p := label.Previous()
	return p == sc.BodyStart() || (p.Is(";") && p.Previous().Is("break"))
}
