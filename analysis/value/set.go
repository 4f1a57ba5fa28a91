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
	"golang.org/x/exp/slices"
)

// Add appends v to values unless a value stating the same fact is already present. It returns the new slice and
// whether v was added.
func Add(values []Value, v Value) ([]Value, bool) {
	for _, w := range values {
		if w.Equal(v) {
			return values, false
		}
	}
	return append(values, v), true
}

// KnownInt returns the integer payload of the first known integer value, if there is one.
func KnownInt(values []Value) (int64, bool) {
	for _, v := range values {
		if v.IsKnown() && v.IsInt() && v.Bound == Point {
			return v.IntValue, true
		}
	}
	return 0, false
}

// HasKnownInt returns true if one of the values is a known integer
func HasKnownInt(values []Value) bool {
	_, ok := KnownInt(values)
	return ok
}

// Has returns true if values contains a value with certainty c, point bound and integer payload x
func Has(values []Value, c Certainty, x int64) bool {
	for _, v := range values {
		if v.Certainty == c && v.Bound == Point && v.IsInt() && v.IntValue == x {
			return true
		}
	}
	return false
}

// HasKnown returns true if x is a known value
func HasKnown(values []Value, x int64) bool { return Has(values, Known, x) }

// HasPossible returns true if x is a possible value
func HasPossible(values []Value, x int64) bool { return Has(values, Possible, x) }

// HasImpossible returns true if x is an impossible value
func HasImpossible(values []Value, x int64) bool { return Has(values, Impossible, x) }

// Filter returns the values with certainty c
func Filter(values []Value, c Certainty) []Value {
	var r []Value
	for _, v := range values {
		if v.Certainty == c {
			r = append(r, v)
		}
	}
	return r
}

// Sorted returns a copy of values sorted by certainty, bound and payload. Used for stable printing.
func Sorted(values []Value) []Value {
	r := make([]Value, len(values))
	copy(r, values)
	slices.SortStableFunc(r, func(a, b Value) bool {
		if a.Certainty != b.Certainty {
			return a.Certainty < b.Certainty
		}
		if a.Bound != b.Bound {
			return a.Bound < b.Bound
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Kind == Float {
			return a.FloatValue < b.FloatValue
		}
		return a.IntValue < b.IntValue
	})
	return r
}
