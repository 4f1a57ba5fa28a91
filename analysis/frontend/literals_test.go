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
	"math"
	"testing"
)

func TestParseIntLiteral(t *testing.T) {
	for _, tc := range []struct {
		text string
		want int64
		ok   bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"42u", 42, true},
		{"42UL", 42, true},
		{"0x1F", 31, true},
		{"0b101", 5, true},
		{"017", 15, true},
		{"1'000", 1000, true},
		{"9223372036854775807", math.MaxInt64, true},
		{"0xFFFFFFFFFFFFFFFF", 0, false},
		{"18446744073709551615ULL", 0, false},
		{"09", 0, false},
	} {
		got, ok := parseIntLiteral(tc.text)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseIntLiteral(%q) = %d, %v; want %d, %v", tc.text, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseCharLiteral(t *testing.T) {
	for _, tc := range []struct {
		text string
		want int64
	}{
		{`'a'`, 97},
		{`'\n'`, 10},
		{`'\0'`, 0},
		{`'\x41'`, 65},
		{`'\101'`, 65},
		{`L'b'`, 98},
	} {
		got, ok := parseCharLiteral(tc.text)
		if !ok || got != tc.want {
			t.Errorf("parseCharLiteral(%q) = %d, %v; want %d", tc.text, got, ok, tc.want)
		}
	}
}

func TestFloatLiterals(t *testing.T) {
	if !isFloatLiteral("1.5f") || !isFloatLiteral("1e3") || !isFloatLiteral("0x1p4") {
		t.Errorf("expected float literals")
	}
	if isFloatLiteral("0xE") || isFloatLiteral("10") {
		t.Errorf("expected integer literals")
	}
	if f, ok := parseFloatLiteral("2.5f"); !ok || f != 2.5 {
		t.Errorf("parseFloatLiteral(2.5f) = %v, %v", f, ok)
	}
}

func TestFoldBinaryOverflow(t *testing.T) {
	for _, tc := range []struct {
		op   string
		x, y int64
		want int64
		ok   bool
	}{
		{"+", 2, 3, 5, true},
		{"+", math.MaxInt64, 1, 0, false},
		{"+", math.MinInt64, -1, 0, false},
		{"-", math.MinInt64, 1, 0, false},
		{"-", -1, math.MaxInt64, math.MinInt64, true},
		{"*", math.MaxInt64, 2, 0, false},
		{"*", math.MinInt64, -1, 0, false},
		{"*", -4, 5, -20, true},
		{"/", math.MinInt64, -1, 0, false},
		{"/", 7, 0, 0, false},
		{"%", 7, 3, 1, true},
		{"<<", 1, 64, 0, false},
	} {
		got, ok := foldBinary(tc.op, tc.x, tc.y)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("foldBinary(%q, %d, %d) = %d, %v; want %d, %v", tc.op, tc.x, tc.y, got, ok, tc.want, tc.ok)
		}
	}
}
