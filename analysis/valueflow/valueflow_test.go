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

package valueflow_test

import (
	"context"
	"embed"
	"io/fs"
	"path"
	"testing"

	"github.com/awslabs/ar-c-valueflow/analysis/config"
	"github.com/awslabs/ar-c-valueflow/analysis/library"
	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"github.com/awslabs/ar-c-valueflow/analysis/value"
	"github.com/awslabs/ar-c-valueflow/analysis/valueflow"
	"github.com/awslabs/ar-c-valueflow/internal/analysistest"
	"github.com/google/go-cmp/cmp"
)

//go:embed testdata
var testfsys embed.FS

func newState(ctx context.Context, cfg *config.Config) (*valueflow.State, *valueflow.MemoryErrorLogger) {
	sink := &valueflow.MemoryErrorLogger{}
	return valueflow.NewState(ctx, cfg, config.NewLogGroup(cfg), library.Default(), sink), sink
}

func debugConfig() *config.Config {
	cfg := config.NewDefault()
	cfg.DebugWarnings = true
	return cfg
}

// run parses src and runs the value flow with cfg
func run(t *testing.T, src string, cfg *config.Config) (*token.List, *valueflow.MemoryErrorLogger) {
	t.Helper()
	list := analysistest.Parse(t, src)
	s, sink := newState(context.Background(), cfg)
	valueflow.Run(s, list)
	return list, sink
}

// derived returns the values attached by the engine, leaving out the constants of the front end
func derived(tok *token.Token) []value.Value {
	var res []value.Value
	for _, v := range tok.Values {
		if len(v.ErrorPath) > 0 {
			res = append(res, v)
		}
	}
	return res
}

type fv struct {
	Certainty value.Certainty
	Bound     value.Bound
	Value     int64
}

func facts(values []value.Value) []fv {
	var res []fv
	for _, v := range value.Sorted(values) {
		res = append(res, fv{v.Certainty, v.Bound, v.IntValue})
	}
	return res
}

func TestAnnotatedPrograms(t *testing.T) {
	entries, err := fs.ReadDir(testfsys, "testdata")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if ext := path.Ext(e.Name()); ext != ".c" && ext != ".cpp" {
			continue
		}
		name := e.Name()
		t.Run(name, func(t *testing.T) {
			list, cfg, err := analysistest.LoadTest(testfsys, "testdata", name)
			if err != nil {
				t.Fatalf("failed to load %s: %v", name, err)
			}
			s, _ := newState(context.Background(), cfg)
			valueflow.Run(s, list)
			expectations, err := analysistest.GetExpectedValues(testfsys, "testdata", name)
			if err != nil {
				t.Fatalf("failed to read annotations of %s: %v", name, err)
			}
			if len(expectations) == 0 {
				t.Fatalf("no annotations in %s", name)
			}
			analysistest.CheckExpectations(t, list, expectations)
		})
	}
}

func TestConditionSplit(t *testing.T) {
	list, _ := run(t, `
int use(int);
void f(int x) {
	if (x == 5) {
		use(x);
	} else {
		use(x);
	}
}`, config.NewDefault())
	inThen := analysistest.FindToken(list, "x ) ;", 0)
	inElse := analysistest.FindToken(list, "x ) ;", 1)
	if diff := cmp.Diff([]fv{{value.Known, value.Point, 5}}, facts(inThen.Values)); diff != "" {
		t.Errorf("unexpected values in then-block (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]fv{{value.Impossible, value.Point, 5}}, facts(inElse.Values)); diff != "" {
		t.Errorf("unexpected values in else-block (-want +got):\n%s", diff)
	}
	cond := analysistest.FindToken(list, "==", 0)
	if inThen.Values[0].Condition != cond.Ref() {
		t.Errorf("expected the value to be derived from %s", cond.ExpressionString())
	}
}

func TestEscapeRedirection(t *testing.T) {
	list, _ := run(t, `
int f(int x) {
	int y;
	if (x == 5) { return 0; }
	y = x;
	return y;
}`, config.NewDefault())
	x := analysistest.FindToken(list, "x ;", 0)
	if !value.HasImpossible(x.Values, 5) {
		t.Errorf("expected x to be known not 5 after the if, got %v", x.Values)
	}
	if value.HasKnown(x.Values, 5) {
		t.Errorf("x cannot be known 5 after the if, got %v", x.Values)
	}
}

func TestConjunctionFlattening(t *testing.T) {
	list, _ := run(t, `
int use(int);
void f(bool a, bool b) {
	if (a && b) {
		use(a);
		use(b);
	}
}`, config.NewDefault())
	a := analysistest.FindToken(list, "a ) ;", 0)
	b := analysistest.FindToken(list, "b ) ;", 0)
	for _, tok := range []*token.Token{a, b} {
		if diff := cmp.Diff([]fv{{value.Known, value.Point, 1}}, facts(tok.Values)); diff != "" {
			t.Errorf("unexpected values of %s (-want +got):\n%s", tok.Str, diff)
		}
	}
	if len(a.Values) == 1 && len(b.Values) == 1 && a.Values[0].Condition == b.Values[0].Condition {
		t.Errorf("a and b should be derived from two distinct conditions")
	}
}

func TestRelationalBounds(t *testing.T) {
	list, _ := run(t, `
int use(int);
void f(int x) {
	if (x < 10) {
		use(x);
	} else {
		use(x);
	}
	if (3 >= x) {
		use(x);
	}
}`, config.NewDefault())
	tests := []struct {
		n    int
		want []fv
	}{
		{0, []fv{{value.Impossible, value.Lower, 10}}},
		{1, []fv{{value.Impossible, value.Upper, 9}}},
		{2, []fv{{value.Impossible, value.Lower, 4}}},
	}
	for _, test := range tests {
		tok := analysistest.FindToken(list, "x ) ;", test.n)
		if diff := cmp.Diff(test.want, facts(tok.Values)); diff != "" {
			t.Errorf("occurrence %d: unexpected values (-want +got):\n%s", test.n, diff)
		}
	}
}

func TestOppositeExpression(t *testing.T) {
	list, _ := run(t, `
int use(int);
void f(int x) {
	if (x > 3) {
		use(x <= 3);
		use(3 >= x);
		use(!(x > 3));
	}
}`, config.NewDefault())
	tests := []struct {
		pattern string
		want    int64
	}{
		{"<= 3", 0},
		{">= x", 0},
		{"! (", 0},
	}
	for _, test := range tests {
		tok := analysistest.FindToken(list, test.pattern, 0)
		if !value.HasKnown(tok.Values, test.want) {
			t.Errorf("expected %s to be known %d, got %v", tok.ExpressionString(), test.want, tok.Values)
		}
	}
}

func TestSwitchFallthroughCertainty(t *testing.T) {
	list, _ := run(t, `
int use(int);
void f(int x) {
	switch (x) { case 1: case 2: use(x); break; default: break; }
}
void g(int x) {
	switch (x) { case 1: use(x); break; }
}`, config.NewDefault())
	u := analysistest.FindToken(list, "x ) ; break", 0)
	if diff := cmp.Diff([]fv{{value.Possible, value.Point, 1}, {value.Possible, value.Point, 2}},
		facts(u.Values)); diff != "" {
		t.Errorf("unexpected values at U (-want +got):\n%s", diff)
	}
	v := analysistest.FindToken(list, "x ) ; break", 1)
	if diff := cmp.Diff([]fv{{value.Known, value.Point, 1}}, facts(v.Values)); diff != "" {
		t.Errorf("unexpected values at V (-want +got):\n%s", diff)
	}
}

func TestSwitchCaseForwardOption(t *testing.T) {
	cfg := config.NewDefault()
	cfg.SwitchCaseForward = false
	list, _ := run(t, `
int use(int);
void f(int x) {
	use(x);
	switch (x) { case 1: use(x); break; }
}`, cfg)
	before := analysistest.FindToken(list, "x ) ;", 0)
	inCase := analysistest.FindToken(list, "x ) ;", 1)
	if !value.HasPossible(before.Values, 1) {
		t.Errorf("expected the case value to reach the read before the switch, got %v", before.Values)
	}
	if len(inCase.Values) != 0 {
		t.Errorf("expected no values in the case body without switch-case-forward, got %v", inCase.Values)
	}
}

func TestGlobalSwitchBailout(t *testing.T) {
	list, sink := run(t, `
int use(int);
int mode;
void f(void) {
	switch (mode) { case 1: use(mode); break; }
}`, debugConfig())
	list.Iter(func(tok *token.Token) bool {
		if vs := derived(tok); len(vs) > 0 {
			t.Errorf("unexpected values %v at %s", vs, list.Location(tok.Ref()))
		}
		return true
	})
	msgs := sink.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one debug record, got %v", msgs)
	}
	if msgs[0].Severity != valueflow.SeverityDebug || msgs[0].ID != "valueFlowBailout" || msgs[0].Line != 5 {
		t.Errorf("unexpected record %v", msgs[0])
	}
}

func TestConstGlobalSwitch(t *testing.T) {
	list, sink := run(t, `
int use(int);
const int mode = 1;
void f(void) {
	switch (mode) { case 1: use(mode); break; }
}`, debugConfig())
	m := analysistest.FindToken(list, "mode ) ;", 0)
	if !value.HasKnown(m.Values, 1) {
		t.Errorf("expected mode to be known 1 in the case body, got %v", m.Values)
	}
	if sink.Len() != 0 {
		t.Errorf("expected no debug records, got %v", sink.Messages())
	}
}

func TestIdempotence(t *testing.T) {
	b, err := fs.ReadFile(testfsys, "testdata/conditions.c")
	if err != nil {
		t.Fatal(err)
	}
	list := analysistest.Parse(t, string(b))
	s, _ := newState(context.Background(), config.NewDefault())
	valueflow.Run(s, list)
	counts := map[value.Ref]int{}
	list.Iter(func(tok *token.Token) bool {
		counts[tok.Ref()] = len(tok.Values)
		return true
	})
	valueflow.Run(s, list)
	db := list.SymbolDatabase()
	valueflow.ConditionExpressions(s.ForList(list), db)
	valueflow.SwitchVariables(s.ForList(list), db)
	list.Iter(func(tok *token.Token) bool {
		if n := len(tok.Values); n != counts[tok.Ref()] {
			t.Errorf("%s: %d values after a second run, %d before", list.Location(tok.Ref()), n, counts[tok.Ref()])
		}
		return true
	})
}

func TestLoopBailout(t *testing.T) {
	list, sink := run(t, `
int use(int);
void f(int x, int n) {
	if (x == 1) {
		while (n > 0) {
			use(x);
			x++;
		}
		use(x);
	}
}`, debugConfig())
	for i := 0; i < 2; i++ {
		tok := analysistest.FindToken(list, "x ) ;", i)
		if len(tok.Values) != 0 {
			t.Errorf("occurrence %d: expected no values, got %v", i, tok.Values)
		}
	}
	if sink.Len() == 0 {
		t.Errorf("expected debug records for the loop bailout")
	}
	for _, m := range sink.Messages() {
		if m.ID != "valueFlowBailout" || m.Line != 5 {
			t.Errorf("unexpected record %v", m)
		}
	}
}

func TestLibraryConstArgument(t *testing.T) {
	src := `
int use(int);
void inspect(int *p);
void f(int x) {
	if (x == 1) {
		inspect(&x);
		use(x);
	}
}`
	cfg := debugConfig()
	tests := []struct {
		name string
		lib  *library.Library
		want bool
	}{
		{"unknown", library.Default(), false},
		{"const", library.New(config.FunctionSpec{
			FunctionIdentifier: config.FunctionIdentifier{Name: "inspect"},
			ConstArgs:          []int{1},
		}), true},
		{"pure", library.New(config.FunctionSpec{
			FunctionIdentifier: config.FunctionIdentifier{Name: "inspect"},
			Pure:               true,
			ConstArgs:          []int{0},
		}), true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			list := analysistest.Parse(t, src)
			sink := &valueflow.MemoryErrorLogger{}
			s := valueflow.NewState(context.Background(), cfg, config.NewLogGroup(cfg), test.lib, sink)
			valueflow.Run(s, list)
			x := analysistest.FindToken(list, "x ) ;", 0)
			if got := value.HasKnown(x.Values, 1); got != test.want {
				t.Errorf("expected known value %v, got %v", test.want, x.Values)
			}
			if bailed := sink.Len() > 0; bailed == test.want {
				t.Errorf("unexpected debug records %v", sink.Messages())
			}
		})
	}
}

func TestCPPReferenceArgument(t *testing.T) {
	list := analysistest.ParseCPP(t, `
int use(int);
void g(int &r);
void f(int x) {
	if (x == 1) {
		g(x);
		use(x);
	}
}`)
	s, _ := newState(context.Background(), config.NewDefault())
	valueflow.Run(s, list)
	for i := 0; i < 2; i++ {
		x := analysistest.FindToken(list, "x ) ;", i)
		if len(x.Values) != 0 {
			t.Errorf("occurrence %d: expected no values after passing x to g, got %v", i, x.Values)
		}
	}
}

func TestIncompleteCondition(t *testing.T) {
	list, sink := run(t, `
int use(int);
void f(int x) {
	if (x == LIMIT) { use(x); }
}`, debugConfig())
	x := analysistest.FindToken(list, "x ) ;", 0)
	if len(x.Values) != 0 {
		t.Errorf("expected no values, got %v", x.Values)
	}
	msgs := sink.Messages()
	if len(msgs) != 1 || msgs[0].ID != "valueFlowBailoutIncompleteVar" {
		t.Errorf("expected one incomplete variable record, got %v", msgs)
	}
}

func TestDisabledAtNormalLevel(t *testing.T) {
	cfg := debugConfig()
	cfg.CheckLevel = config.CheckLevelNormal
	list, sink := run(t, `
int use(int);
void f(int x) {
	if (x == 1) { use(x); }
	if (x == 2) { use(x); }
}`, cfg)
	list.Iter(func(tok *token.Token) bool {
		if vs := derived(tok); len(vs) > 0 {
			t.Errorf("unexpected values %v at %s", vs, list.Location(tok.Ref()))
		}
		return true
	})
	if sink.Len() != 1 {
		t.Errorf("expected one debug record, got %v", sink.Messages())
	}
}

func TestInternalLimit(t *testing.T) {
	cfg := debugConfig()
	cfg.MaxForwardDepth = 1
	list, sink := run(t, `
int use(int);
void f(int x, int c, int d) {
	if (x == 1) {
		if (c) {
			if (d) {
				use(x);
			}
		}
	}
}`, cfg)
	x := analysistest.FindToken(list, "x ) ;", 0)
	if value.HasKnown(x.Values, 1) {
		t.Errorf("expected the walk to stop before the innermost block, got %v", x.Values)
	}
	found := false
	for _, m := range sink.Messages() {
		found = found || m.ID == "valueFlowMaxIterations"
	}
	if !found {
		t.Errorf("expected a record of the depth limit, got %v", sink.Messages())
	}
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	list := analysistest.Parse(t, `
int use(int);
void f(int x) {
	if (x == 1) { use(x); }
	switch (x) { case 2: use(x); break; }
}`)
	s, _ := newState(ctx, config.NewDefault())
	valueflow.Run(s, list)
	list.Iter(func(tok *token.Token) bool {
		if vs := derived(tok); len(vs) > 0 {
			t.Errorf("unexpected values %v at %s after cancellation", vs, list.Location(tok.Ref()))
		}
		return true
	})
}

func TestErrorPath(t *testing.T) {
	list, _ := run(t, `
int use(int);
void f(int x) {
	if (x != 2) { return; }
	use(x);
}`, config.NewDefault())
	x := analysistest.FindToken(list, "x ) ;", 0)
	if len(x.Values) != 1 {
		t.Fatalf("expected one value, got %v", x.Values)
	}
	var infos []string
	for _, p := range x.Values[0].ErrorPath {
		infos = append(infos, p.Info)
	}
	want := []string{"Assuming that condition 'x!=2' is false", "the other branch leaves through 'return'"}
	if diff := cmp.Diff(want, infos); diff != "" {
		t.Errorf("unexpected error path (-want +got):\n%s", diff)
	}
}

func TestEscapeRedirectionStaysInBranch(t *testing.T) {
	list, _ := run(t, `
int use(int);
void f(int a, int x) {
	if (a) {
		if (x == 5) { return; }
		use(x);
	}
	use(x);
	if (a) {
		use(0);
	} else {
		if (x == 6) { return; }
		use(x);
	}
	use(x);
}`, config.NewDefault())
	tests := []struct {
		n    int
		want []fv
	}{
		{0, []fv{{value.Impossible, value.Point, 5}}},
		{1, nil},
		{2, []fv{{value.Impossible, value.Point, 6}}},
		{3, nil},
	}
	for _, test := range tests {
		tok := analysistest.FindToken(list, "x ) ;", test.n)
		if diff := cmp.Diff(test.want, facts(derived(tok))); diff != "" {
			t.Errorf("occurrence %d: unexpected values (-want +got):\n%s", test.n, diff)
		}
	}
}

func TestOppositeOfNonBooleanOperand(t *testing.T) {
	list, _ := run(t, `
int use(int);
void f(int x, int *p, bool b) {
	if (!x) {
		use(x);
	} else {
		use(x);
	}
	if (!p) {
		use(0);
	} else {
		use(*p);
	}
	if (!b) {
		use(0);
	} else {
		use(b);
	}
}`, config.NewDefault())
	tests := []struct {
		pattern string
		n       int
		want    []fv
	}{
		{"x ) ;", 0, []fv{{value.Known, value.Point, 0}}},
		{"x ) ;", 1, []fv{{value.Impossible, value.Point, 0}}},
		{"p ) ;", 0, []fv{{value.Impossible, value.Point, 0}}},
		{"b ) ;", 0, []fv{{value.Known, value.Point, 1}}},
	}
	for _, test := range tests {
		tok := analysistest.FindToken(list, test.pattern, test.n)
		if diff := cmp.Diff(test.want, facts(derived(tok))); diff != "" {
			t.Errorf("%s (%d): unexpected values (-want +got):\n%s", test.pattern, test.n, diff)
		}
	}
}

func TestExtremeRelationalBounds(t *testing.T) {
	list, _ := run(t, `
int use(int);
void f(long x) {
	if (x <= 9223372036854775807) {
		use(x);
	} else {
		use(x);
	}
	if (x > 9223372036854775807) {
		use(x);
	}
	if (x < 100) {
		use(x);
	}
}`, config.NewDefault())
	for n := 0; n < 3; n++ {
		tok := analysistest.FindToken(list, "x ) ;", n)
		if vs := derived(tok); len(vs) > 0 {
			t.Errorf("occurrence %d: expected no values, got %v", n, vs)
		}
	}
	tok := analysistest.FindToken(list, "x ) ;", 3)
	if diff := cmp.Diff([]fv{{value.Impossible, value.Lower, 100}}, facts(derived(tok))); diff != "" {
		t.Errorf("unexpected values (-want +got):\n%s", diff)
	}
}

// stopAtRead follows the reads of a variable and asks the propagation to stop at the read stop
type stopAtRead struct {
	name string
	stop *token.Token
}

func (a *stopAtRead) Match(tok *token.Token) valueflow.MatchKind {
	if tok.Str == a.name && tok.VarID != 0 && !tok.IsDeclaration() {
		return valueflow.ReadMatch
	}
	return valueflow.NoMatch
}

func (a *stopAtRead) Update(tok *token.Token, _ valueflow.MatchKind, v value.Value) (value.Value, bool) {
	return v, tok != a.stop
}

func (a *stopAtRead) IsAliasOf(*token.Token) bool { return false }

func (a *stopAtRead) ModifiedByCalls() bool { return false }

func (a *stopAtRead) ShouldStopAt(*token.Token) bool { return false }

func (a *stopAtRead) String() string { return a.name }

func TestNoValuesPastStop(t *testing.T) {
	list := analysistest.Parse(t, `
int use(int);
void f(int x) {
	use(x);
	use(x);
	if (x) { use(x); }
	use(x);
}`)
	s, _ := newState(context.Background(), config.NewDefault())
	// occurrence 0 of "x )" is the parameter
	a := &stopAtRead{name: "x", stop: analysistest.FindToken(list, "x )", 2)}
	body := analysistest.FindToken(list, "{", 0)
	v := value.NewInt(3)
	v.SetKnown()
	out := valueflow.Forward(s, body.Next(), body.Link(), a, v)
	if out.Kind != valueflow.StopAt || out.Tok != a.stop {
		t.Fatalf("expected the propagation to stop at the second read, got %s", out)
	}
	if !value.HasKnown(analysistest.FindToken(list, "x )", 1).Values, 3) {
		t.Errorf("expected the first read to receive the value")
	}
	for n := 2; n < 6; n++ {
		if tok := analysistest.FindToken(list, "x )", n); len(tok.Values) > 0 {
			t.Errorf("read %d after the stop received %v", n, tok.Values)
		}
	}
}
