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

// Package value defines the facts inferred by the value-flow engine: a [Value] states that an expression may, must,
// or cannot hold a given number at a token.
package value

import (
	"fmt"
	"math"
	"strconv"
)

// Ref is a non-owning reference to a token of a token list (the index of the token in the list's arena).
// NoRef is the null reference.
type Ref int32

// NoRef is the reference that points to no token
const NoRef Ref = -1

// Certainty is the certainty level of a value.
type Certainty int

const (
	// Possible means the expression may hold the value. It is the zero value.
	Possible Certainty = iota
	// Known means the expression must hold the value.
	Known
	// Impossible means the expression provably does not hold the value.
	Impossible
)

func (c Certainty) String() string {
	switch c {
	case Known:
		return "Known"
	case Impossible:
		return "Impossible"
	default:
		return "Possible"
	}
}

// Bound qualifies range-like values.
type Bound int

const (
	// Point values are about one single number
	Point Bound = iota
	// Lower values are about every number greater than or equal to the payload
	Lower
	// Upper values are about every number lower than or equal to the payload
	Upper
)

func (b Bound) String() string {
	switch b {
	case Lower:
		return "Lower"
	case Upper:
		return "Upper"
	default:
		return "Point"
	}
}

// Kind is the tag of the payload of a value.
type Kind int

const (
	// Int payloads are stored in IntValue
	Int Kind = iota
	// Float payloads are stored in FloatValue
	Float
)

// A PathItem is one step of the derivation trail of a value.
type PathItem struct {
	Tok  Ref
	Info string
}

// Value is one inferred fact: the expression at the token the value is attached to may/must/cannot hold the payload.
// Values are copied by value; the ErrorPath slice is never shared between two values that are both mutated (see
// Clone).
type Value struct {
	Certainty  Certainty
	Bound      Bound
	Kind       Kind
	IntValue   int64
	FloatValue float64

	// Truth is true when the payload is the boolean-normalized truth value of a condition (0 or 1).
	Truth bool

	// Condition is the token that caused the derivation (lookup only).
	Condition Ref

	// ErrorPath is the human-readable derivation trail. It only grows.
	ErrorPath []PathItem

	// Origin is where in the engine the value was minted. Only set in builds with the valueflowdebug tag.
	Origin string
}

// NewInt returns a Possible integer value with no condition.
func NewInt(v int64) Value {
	return Value{Kind: Int, IntValue: v, Condition: NoRef}
}

// NewFloat returns a Possible float value with no condition.
func NewFloat(f float64) Value {
	return Value{Kind: Float, FloatValue: f, Condition: NoRef}
}

// IsKnown returns true if the certainty of v is Known
func (v Value) IsKnown() bool { return v.Certainty == Known }

// IsPossible returns true if the certainty of v is Possible
func (v Value) IsPossible() bool { return v.Certainty == Possible }

// IsImpossible returns true if the certainty of v is Impossible
func (v Value) IsImpossible() bool { return v.Certainty == Impossible }

// IsInt returns true if the payload is an integer
func (v Value) IsInt() bool { return v.Kind == Int }

// SetKnown sets the certainty to Known
func (v *Value) SetKnown() { v.Certainty = Known }

// SetPossible sets the certainty to Possible
func (v *Value) SetPossible() { v.Certainty = Possible }

// SetImpossible sets the certainty to Impossible
func (v *Value) SetImpossible() { v.Certainty = Impossible }

// Clone returns a copy of v that does not share its error path with v.
func (v Value) Clone() Value {
	c := v
	c.ErrorPath = make([]PathItem, len(v.ErrorPath), len(v.ErrorPath)+1)
	copy(c.ErrorPath, v.ErrorPath)
	return c
}

// WithPath returns a copy of v with a new entry at the end of its error path.
func (v Value) WithPath(tok Ref, info string) Value {
	c := v.Clone()
	c.ErrorPath = append(c.ErrorPath, PathItem{Tok: tok, Info: info})
	return c
}

// Equal returns true if the two values state the same fact (certainty, bound and payload). Provenance is ignored.
func (v Value) Equal(w Value) bool {
	if v.Certainty != w.Certainty || v.Bound != w.Bound || v.Kind != w.Kind {
		return false
	}
	if v.Kind == Float {
		return v.FloatValue == w.FloatValue
	}
	return v.IntValue == w.IntValue
}

// Negate returns the value stating the opposite truth of the condition v was derived from. An entry explaining the
// assumption is appended to the error path.
//
// A truth value Known b becomes Known !b. Otherwise Known v and Impossible v are exchanged for point values, and
// the impossible ranges are complemented: Impossible >= k becomes Impossible <= k-1 and vice versa.
func (v Value) Negate(tok Ref, info string) Value {
	n := v.WithPath(tok, info)
	switch {
	case v.Truth && v.Certainty != Impossible:
		if v.IntValue == 0 {
			n.IntValue = 1
		} else {
			n.IntValue = 0
		}
	case v.Bound == Lower && v.Certainty == Impossible:
		if v.IntValue == math.MinInt64 {
			// no value is excluded by the negation
			n.Certainty = Possible
			break
		}
		n.Bound = Upper
		n.IntValue = v.IntValue - 1
	case v.Bound == Upper && v.Certainty == Impossible:
		if v.IntValue == math.MaxInt64 {
			n.Certainty = Possible
			break
		}
		n.Bound = Lower
		n.IntValue = v.IntValue + 1
	case v.Certainty == Known:
		n.Certainty = Impossible
		n.Truth = false
	case v.Certainty == Impossible:
		n.Certainty = Known
	}
	return n
}

// Payload returns the payload formatted as a string
func (v Value) Payload() string {
	if v.Kind == Float {
		return strconv.FormatFloat(v.FloatValue, 'g', -1, 64)
	}
	return strconv.FormatInt(v.IntValue, 10)
}

func (v Value) String() string {
	op := " "
	switch v.Bound {
	case Lower:
		op = ">="
	case Upper:
		op = "<="
	}
	return fmt.Sprintf("%s%s%s", v.Certainty, op, v.Payload())
}
