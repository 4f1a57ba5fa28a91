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
	"strconv"
	"strings"
)

// parseIntLiteral returns the value of a C integer literal (decimal, octal, hexadecimal or binary, with optional
// suffixes and digit separators). Literals that do not fit in an int64 have no value.
func parseIntLiteral(text string) (int64, bool) {
	s := strings.ReplaceAll(text, "'", "")
	s = strings.TrimRight(s, "uUlLzZ")
	if s == "" {
		return 0, false
	}
	base := 10
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "0x"):
		base, s = 16, s[2:]
	case strings.HasPrefix(lower, "0b"):
		base, s = 2, s[2:]
	case len(s) > 1 && s[0] == '0':
		base, s = 8, s[1:]
	}
	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// isFloatLiteral returns true for floating point literals such as 1.5, 1e3f or 0x1p4
func isFloatLiteral(text string) bool {
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") {
		return strings.ContainsAny(lower, ".p")
	}
	return strings.ContainsAny(lower, ".e")
}

func parseFloatLiteral(text string) (float64, bool) {
	s := strings.ReplaceAll(text, "'", "")
	s = strings.TrimRight(s, "fFlL")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var simpleEscapes = map[byte]int64{
	'n': '\n', 't': '\t', 'r': '\r', '0': 0, '\\': '\\', '\'': '\'', '"': '"', 'a': 7, 'b': 8, 'f': 12, 'v': 11,
	'?': '?',
}

// parseCharLiteral returns the value of a single-character literal, e.g. 'a' or '\n'. Multi-character and wide
// literals beyond the first character are not supported.
func parseCharLiteral(text string) (int64, bool) {
	start := strings.IndexByte(text, '\'')
	end := strings.LastIndexByte(text, '\'')
	if start < 0 || end <= start+1 {
		return 0, false
	}
	body := text[start+1 : end]
	if body[0] != '\\' {
		if len(body) != 1 {
			return 0, false
		}
		return int64(body[0]), true
	}
	if len(body) < 2 {
		return 0, false
	}
	switch body[1] {
	case 'x':
		v, err := strconv.ParseInt(body[2:], 16, 64)
		return v, err == nil
	case '1', '2', '3', '4', '5', '6', '7':
		v, err := strconv.ParseInt(body[1:], 8, 64)
		return v, err == nil
	}
	if len(body) == 2 {
		v, ok := simpleEscapes[body[1]]
		if ok && body[1] == '0' {
			return 0, true
		}
		return v, ok
	}
	if body[1] == '0' {
		v, err := strconv.ParseInt(body[1:], 8, 64)
		return v, err == nil
	}
	return 0, false
}
