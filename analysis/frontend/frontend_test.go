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

package frontend_test

import (
	"testing"

	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"github.com/awslabs/ar-c-valueflow/analysis/value"
	"github.com/awslabs/ar-c-valueflow/internal/analysistest"
	"github.com/google/go-cmp/cmp"
)

func TestIfElseScopes(t *testing.T) {
	list := analysistest.Parse(t, `
int f(int x) {
    if (x == 5) {
        x = 1;
    } else
        x = 2;
    return x;
}`)
	ifTok := analysistest.FindToken(list, "if (", 0)
	if ifTok == nil {
		t.Fatalf("no if")
	}
	paren := ifTok.Next()
	if paren.AstOperand1() != ifTok {
		t.Errorf("expected the condition parenthesis to have the keyword as first operand")
	}
	if cond := paren.AstOperand2(); !cond.Is("==") {
		t.Errorf("expected condition ==, got %v", cond)
	}
	thenStart := paren.Link().Next()
	if !thenStart.Is("{") || thenStart.Scope().Type != token.If {
		t.Fatalf("expected the then block to start an if scope, got %v", thenStart)
	}
	elseTok := thenStart.Link().Next()
	if !elseTok.Is("else") {
		t.Fatalf("expected else, got %v", elseTok)
	}
	elseStart := elseTok.Next()
	if !elseStart.IsSynthetic() || !elseStart.Is("{") {
		t.Fatalf("expected a synthetic brace after else, got %v", elseStart)
	}
	if elseStart.Scope().Type != token.Else {
		t.Errorf("expected else scope, got %v", elseStart.Scope().Type)
	}
	if elseStart.Link() == nil || !elseStart.Link().Next().Is("return") {
		t.Errorf("expected the synthetic else block to end before return")
	}
}

func TestVariables(t *testing.T) {
	list := analysistest.Parse(t, `
int g;
int f(int x, const int *p, int *const q) {
    bool b = x > 0;
    static int s;
    return x + g;
}`)
	db := list.SymbolDatabase()
	byName := map[string]*token.Variable{}
	for _, v := range db.Variables[1:] {
		byName[v.Name] = v
	}
	for name, check := range map[string]func(v *token.Variable) bool{
		"g": (*token.Variable).IsGlobal,
		"x": (*token.Variable).IsArgument,
		"p": func(v *token.Variable) bool { return v.IsPointer() && !v.IsConst() },
		"q": func(v *token.Variable) bool { return v.IsPointer() && v.IsConst() },
		"b": func(v *token.Variable) bool { return v.IsLocal() && v.IsBool() },
		"s": func(v *token.Variable) bool { return v.IsLocal() && v.IsStatic() },
	} {
		v := byName[name]
		if v == nil {
			t.Errorf("variable %s not declared", name)
			continue
		}
		if !check(v) {
			t.Errorf("variable %s has unexpected properties", name)
		}
	}
	ret := analysistest.FindToken(list, "return x", 0).Next()
	if ret.Variable() != byName["x"] {
		t.Errorf("x in return does not refer to the parameter")
	}
	if ret.ExprID != ret.VarID {
		t.Errorf("expected the expression id of a variable to be its variable id")
	}
}

func TestExpressionIDs(t *testing.T) {
	list := analysistest.Parse(t, `
int h(void);
void f(int a, int b) {
    int x = a + b;
    int y = a + b;
    int z = h() + h();
}`)
	p1 := analysistest.FindToken(list, "+", 0)
	p2 := analysistest.FindToken(list, "+", 1)
	if p1.ExprID == 0 || p1.ExprID != p2.ExprID {
		t.Errorf("expected equal expression ids for a + b, got %d and %d", p1.ExprID, p2.ExprID)
	}
	c1 := analysistest.FindToken(list, "(", 2)
	c2 := analysistest.FindToken(list, "(", 3)
	if !c1.IsCall() || !c2.IsCall() {
		t.Fatalf("expected calls, got %v and %v", c1, c2)
	}
	if c1.ExprID == c2.ExprID {
		t.Errorf("expected distinct expression ids for two calls")
	}
	if p1.ExprID <= list.SymbolDatabase().MaxVarID() {
		t.Errorf("expression ids must not collide with variable ids")
	}
}

func TestCallTree(t *testing.T) {
	list := analysistest.Parse(t, `
void g(int, int, int);
void f(int a) { g(a, 1, a + 1); }`)
	name := analysistest.FindToken(list, "g (", 1)
	paren := name.Next()
	if !paren.IsCall() || paren.AstOperand1() != name {
		t.Fatalf("expected call with the function name as first operand")
	}
	if !name.IsFunctionName() {
		t.Errorf("expected g to be a function name")
	}
	args := paren.AstOperand2()
	if !args.Is(",") || !args.AstOperand2().Is("+") {
		t.Errorf("expected arguments chained by commas, got %v", args)
	}
	if !args.AstOperand1().Is(",") || !args.AstOperand1().AstOperand1().Is("a") {
		t.Errorf("expected the first comma to hold the first two arguments")
	}
}

func TestKnownLiteralValues(t *testing.T) {
	list := analysistest.Parse(t, `
enum color { RED, GREEN = 5, BLUE };
int f(void) { return 0x10 + 'a' + -3 + BLUE; }`)
	for _, tc := range []struct {
		pattern string
		n       int
		want    int64
	}{
		{"0x10", 0, 16},
		{"'a'", 0, 97},
		{"-", 0, -3},
		{"BLUE", 1, 6},
		{"RED", 0, 0},
	} {
		tok := analysistest.FindToken(list, tc.pattern, tc.n)
		if tok == nil {
			t.Errorf("no token %q", tc.pattern)
			continue
		}
		got, ok := tok.KnownIntValue()
		if !ok || got != tc.want {
			t.Errorf("%s: expected known %d, got %v", tc.pattern, tc.want, tok.Values)
		}
	}
}

func TestFloatLiteral(t *testing.T) {
	list := analysistest.Parse(t, `double f(void) { return 1.5; }`)
	tok := analysistest.FindToken(list, "1.5", 0)
	want := []value.Value{value.NewFloat(1.5)}
	want[0].SetKnown()
	if diff := cmp.Diff(want, tok.Values); diff != "" {
		t.Errorf("unexpected values (-want +got):\n%s", diff)
	}
}

func TestIncompleteNames(t *testing.T) {
	list := analysistest.Parse(t, `void f(void) { int x = UNKNOWN_MACRO; x = known(x); }`)
	if tok := analysistest.FindToken(list, "UNKNOWN_MACRO", 0); !tok.IsIncomplete() {
		t.Errorf("expected an unresolved name to be incomplete")
	}
	if tok := analysistest.FindToken(list, "known", 0); tok.IsIncomplete() || !tok.IsFunctionName() {
		t.Errorf("expected a called name to be a function name")
	}
}

func TestNoReturnAttribute(t *testing.T) {
	list := analysistest.Parse(t, `
_Noreturn void die(const char *msg) { for (;;) {} }
void ok(void) {}`)
	fns := list.SymbolDatabase().Functions
	if f := fns["die"]; f == nil || !f.NoReturnAttribute {
		t.Errorf("expected die to be noreturn")
	}
	if f := fns["ok"]; f == nil || f.NoReturnAttribute {
		t.Errorf("expected ok to return")
	}
}

func TestLoopAndSwitchScopes(t *testing.T) {
	list := analysistest.Parse(t, `
void f(int x) {
    for (int i = 0; i < x; i++) { x--; }
    while (x) x--;
    do { x++; } while (x < 3);
    switch (x) { case 1: x = 2; break; default: break; }
}`)
	var types []token.ScopeType
	for _, s := range list.SymbolDatabase().Scopes {
		types = append(types, s.Type)
	}
	want := []token.ScopeType{token.Global, token.Function, token.For, token.While, token.Do, token.Switch}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("unexpected scopes (-want +got):\n%s", diff)
	}
	i := analysistest.FindToken(list, "i <", 0)
	if i.Variable() == nil || i.Variable().Scope.Type != token.For {
		t.Errorf("expected the loop variable to be scoped to the loop")
	}
}

func TestCPPReferenceParameter(t *testing.T) {
	list := analysistest.ParseCPP(t, `
void g(int &r) { r = 1; }
bool h(bool b) { return b && true; }`)
	r := analysistest.FindToken(list, "r =", 0)
	if v := r.Variable(); v == nil || !v.IsReference() || !v.IsArgument() {
		t.Errorf("expected r to be a reference parameter")
	}
	b := analysistest.FindToken(list, "b &&", 0)
	if v := b.Variable(); v == nil || !v.IsBool() {
		t.Errorf("expected b to be a bool")
	}
}
