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

// Package analysistest contains helpers to load C test programs and the value annotations they carry.
package analysistest

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/awslabs/ar-c-valueflow/analysis/config"
	"github.com/awslabs/ar-c-valueflow/analysis/frontend"
	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"github.com/awslabs/ar-c-valueflow/analysis/value"
)

// LoadTest parses the file named file in the directory dir of fsys. If the directory contains a config.yaml, it is
// loaded, otherwise the default configuration is returned.
func LoadTest(fsys fs.FS, dir string, file string) (*token.List, *config.Config, error) {
	cfg := config.NewDefault()
	configFile := path.Join(dir, "config.yaml")
	if b, err := fs.ReadFile(fsys, configFile); err == nil {
		cfg, err = config.LoadFromBytes(configFile, b)
		if err != nil {
			return nil, nil, fmt.Errorf("could not load config %s: %w", configFile, err)
		}
	}
	filename := path.Join(dir, file)
	src, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read %s: %w", filename, err)
	}
	isCPP, err := frontend.IsCPPFile(filename)
	if err != nil {
		return nil, nil, err
	}
	list, err := frontend.Parse(context.Background(), filename, src, isCPP)
	if err != nil {
		return nil, nil, err
	}
	return list, cfg, nil
}

// Parse parses the C source src, failing the test on error.
func Parse(t *testing.T, src string) *token.List {
	return parse(t, "test.c", src, false)
}

// ParseCPP parses the C++ source src, failing the test on error.
func ParseCPP(t *testing.T, src string) *token.List {
	return parse(t, "test.cpp", src, true)
}

func parse(t *testing.T, name string, src string, isCPP bool) *token.List {
	t.Helper()
	list, err := frontend.Parse(context.Background(), name, []byte(src), isCPP)
	if err != nil {
		t.Fatalf("failed to parse %s: %v", name, err)
	}
	return list
}

// FindToken returns the n-th (0-based) token where the tokens match the space-separated pattern, or nil.
func FindToken(list *token.List, pattern string, n int) *token.Token {
	for tok := list.Front(); tok != nil; tok = tok.Next() {
		if token.SimpleMatch(tok, pattern) {
			if n == 0 {
				return tok
			}
			n--
		}
	}
	return nil
}

// FindTokenOnLine returns the first token with text s on the given line, or nil.
func FindTokenOnLine(list *token.List, s string, line int) *token.Token {
	for tok := list.Front(); tok != nil; tok = tok.Next() {
		if tok.Line == line && tok.Str == s {
			return tok
		}
	}
	return nil
}

// Match annotations of the form "@Known(x, 5)", "@Possible(x, 5)", "@Impossible(x, 5)" and "@NoValues(x)"
var ValueRegex = regexp.MustCompile(`@(Known|Possible|Impossible|NoValues)\((\w+)(?:\s*,\s*(-?\d+))?\)`)

// LPos is a position without column
type LPos struct {
	Filename string
	Line     int
}

func (p LPos) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// An Expectation is a value the analysis must (or, for NoValues, must not) attach to the first token named Name on
// the line of the annotation.
type Expectation struct {
	Pos       LPos
	Name      string
	Certainty value.Certainty
	Value     int64
	NoValues  bool
}

func (e Expectation) String() string {
	if e.NoValues {
		return fmt.Sprintf("%s: %s has no values", e.Pos, e.Name)
	}
	return fmt.Sprintf("%s: %s %s %d", e.Pos, e.Name, e.Certainty, e.Value)
}

// GetExpectedValues reads the annotations in the comments of the file dir/file in fsys.
func GetExpectedValues(fsys fs.FS, dir string, file string) ([]Expectation, error) {
	filename := path.Join(dir, file)
	f, err := fsys.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var expectations []Expectation
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		idx := strings.Index(text, "//")
		if idx < 0 {
			continue
		}
		for _, m := range ValueRegex.FindAllStringSubmatch(text[idx:], -1) {
			e := Expectation{Pos: LPos{Filename: filename, Line: line}, Name: m[2]}
			switch m[1] {
			case "Known":
				e.Certainty = value.Known
			case "Possible":
				e.Certainty = value.Possible
			case "Impossible":
				e.Certainty = value.Impossible
			case "NoValues":
				e.NoValues = true
			}
			if !e.NoValues {
				if m[3] == "" {
					return nil, fmt.Errorf("%s: annotation %s needs a value", e.Pos, m[0])
				}
				e.Value, err = strconv.ParseInt(m[3], 10, 64)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", e.Pos, err)
				}
			}
			expectations = append(expectations, e)
		}
	}
	return expectations, scanner.Err()
}

// CheckExpectations reports an error for every expectation that the values in list do not satisfy.
func CheckExpectations(t *testing.T, list *token.List, expectations []Expectation) {
	t.Helper()
	for _, e := range expectations {
		tok := FindTokenOnLine(list, e.Name, e.Pos.Line)
		if tok == nil {
			t.Errorf("%s: no token %q", e.Pos, e.Name)
			continue
		}
		if e.NoValues {
			if len(tok.Values) > 0 {
				t.Errorf("%s: expected no values, got %v", e, tok.Values)
			}
			continue
		}
		if !value.Has(tok.Values, e.Certainty, e.Value) {
			t.Errorf("expected %s, got %v", e, tok.Values)
		}
	}
}
