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

package value

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func known(x int64) Value {
	v := NewInt(x)
	v.SetKnown()
	return v
}

func impossible(x int64, b Bound) Value {
	v := NewInt(x)
	v.SetImpossible()
	v.Bound = b
	return v
}

func TestNegate(t *testing.T) {
	truth := known(1)
	truth.Truth = true
	possible := NewInt(3)
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"truth", truth, "Known 0"},
		{"known", known(5), "Impossible 5"},
		{"impossible", impossible(5, Point), "Known 5"},
		{"lower", impossible(10, Lower), "Impossible<=9"},
		{"upper", impossible(3, Upper), "Impossible>=4"},
		{"possible", possible, "Possible 3"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			n := test.v.Negate(7, "negated")
			if got := n.String(); got != test.want {
				t.Errorf("Negate(%s) = %s, want %s", test.v, got, test.want)
			}
			if len(n.ErrorPath) != len(test.v.ErrorPath)+1 || n.ErrorPath[len(n.ErrorPath)-1].Tok != 7 {
				t.Errorf("expected one more path entry, got %v", n.ErrorPath)
			}
			if back := n.Negate(8, "again"); !back.Equal(test.v) {
				t.Errorf("negating twice should give back %s, got %s", test.v, back)
			}
		})
	}
}

func TestNegateExtremeBounds(t *testing.T) {
	for _, v := range []Value{impossible(math.MinInt64, Lower), impossible(math.MaxInt64, Upper)} {
		n := v.Negate(1, "negated")
		if n.IsImpossible() || n.IsKnown() {
			t.Errorf("Negate(%s) = %s, the negation excludes no value", v, n)
		}
		if n.IntValue != v.IntValue {
			t.Errorf("Negate(%s) changed the bound to %d", v, n.IntValue)
		}
	}
}

func TestWithPathDoesNotShare(t *testing.T) {
	v := known(1).WithPath(1, "first")
	a := v.WithPath(2, "a")
	b := v.WithPath(3, "b")
	if a.ErrorPath[1].Info != "a" || b.ErrorPath[1].Info != "b" {
		t.Errorf("paths of copies should be independent, got %v and %v", a.ErrorPath, b.ErrorPath)
	}
	if len(v.ErrorPath) != 1 {
		t.Errorf("the original path should not grow, got %v", v.ErrorPath)
	}
}

func TestAdd(t *testing.T) {
	var values []Value
	values, added := Add(values, known(1).WithPath(0, "from one condition"))
	if !added {
		t.Fatalf("expected the first value to be added")
	}
	values, added = Add(values, known(1).WithPath(4, "from another condition"))
	if added || len(values) != 1 {
		t.Errorf("equal facts should be deduplicated, got %v", values)
	}
	values, _ = Add(values, impossible(1, Point))
	values, _ = Add(values, impossible(1, Lower))
	if len(values) != 3 {
		t.Errorf("expected 3 values, got %v", values)
	}
	if !HasKnown(values, 1) || !HasImpossible(values, 1) || HasPossible(values, 1) {
		t.Errorf("unexpected predicates on %v", values)
	}
	if x, ok := KnownInt(values); !ok || x != 1 {
		t.Errorf("expected known int 1, got %d %v", x, ok)
	}
}

func TestSorted(t *testing.T) {
	values := []Value{impossible(2, Upper), known(4), NewInt(9), NewInt(1), impossible(2, Point)}
	var got []string
	for _, v := range Sorted(values) {
		got = append(got, v.String())
	}
	want := []string{"Possible 1", "Possible 9", "Known 4", "Impossible 2", "Impossible<=2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
	if values[0].Bound != Upper {
		t.Errorf("Sorted should not modify its argument")
	}
}

func TestFilter(t *testing.T) {
	values := []Value{known(1), NewInt(2), NewInt(3)}
	if n := len(Filter(values, Possible)); n != 2 {
		t.Errorf("expected 2 possible values, got %d", n)
	}
	if n := len(Filter(values, Impossible)); n != 0 {
		t.Errorf("expected no impossible values, got %d", n)
	}
}
