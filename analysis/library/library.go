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

// Package library contains the annotations of the functions the analysis cannot see: functions that never
// return, pure functions and parameters a function never writes through. Annotations come from built-in defaults
// for the C and C++ standard libraries, from the config file and from YAML library files of the form:
//
//	functions:
//	  - name: "fatal|die"
//	    noreturn: true
//	  - name: my_strlen
//	    pure: true
//	  - name: log_value
//	    const-args: [0]
package library

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-c-valueflow/analysis/config"
	"github.com/awslabs/ar-c-valueflow/analysis/token"
	"gopkg.in/yaml.v3"
)

// File is the contents of a library file
type File struct {
	Functions []config.FunctionSpec `yaml:"functions"`
}

// Library is a set of function annotations
type Library struct {
	specs []config.FunctionSpec
}

// New returns a library containing the given annotations
func New(specs ...config.FunctionSpec) *Library {
	l := &Library{}
	l.Add(specs...)
	return l
}

// Add adds annotations to the library
func (l *Library) Add(specs ...config.FunctionSpec) {
	for _, spec := range specs {
		spec.FunctionIdentifier = config.CompileRegexes(spec.FunctionIdentifier)
		l.specs = append(l.specs, spec)
	}
}

// Len returns the number of annotations in the library
func (l *Library) Len() int {
	return len(l.specs)
}

// LoadBytes adds the annotations of the library file filename with contents b
func (l *Library) LoadBytes(filename string, b []byte) error {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("could not unmarshal library file %s: %w", filename, err)
	}
	for i, spec := range f.Functions {
		if spec.Name == "" {
			return fmt.Errorf("library file %s: function %d has no name", filename, i)
		}
	}
	l.Add(f.Functions...)
	return nil
}

// LoadFile adds the annotations of the library file filename
func (l *Library) LoadFile(filename string) error {
	b, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("could not read library file: %w", err)
	}
	return l.LoadBytes(filename, b)
}

// FromConfig returns the default library extended with the annotations of the config and of its library files
func FromConfig(c *config.Config) (*Library, error) {
	l := Default()
	l.Add(c.Library...)
	for _, f := range c.LibraryPaths() {
		if err := l.LoadFile(f); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Annotation is the union of the annotations of a function
type Annotation struct {
	// Known is true if at least one annotation matched
	Known     bool
	NoReturn  bool
	Pure      bool
	allConst  bool
	constArgs map[int]bool
}

// IsConstArg returns true if the function never writes through its i-th (1-based) argument
func (a Annotation) IsConstArg(i int) bool {
	return a.Pure || a.allConst || a.constArgs[i]
}

// Lookup returns the annotation of the function name in the C++ namespace namespace (empty for C functions)
func (l *Library) Lookup(namespace string, name string) Annotation {
	var a Annotation
	for _, spec := range l.specs {
		if !spec.Matches(namespace, name) {
			continue
		}
		a.Known = true
		a.NoReturn = a.NoReturn || spec.NoReturn
		a.Pure = a.Pure || spec.Pure
		for _, i := range spec.ConstArgs {
			if i == 0 {
				a.allConst = true
				continue
			}
			if a.constArgs == nil {
				a.constArgs = map[int]bool{}
			}
			a.constArgs[i] = true
		}
	}
	return a
}

// LookupCall returns the annotation of the function called at call
func (l *Library) LookupCall(call *token.Token) Annotation {
	namespace, name, ok := CallName(call)
	if !ok {
		return Annotation{}
	}
	return l.Lookup(namespace, name)
}

// CallName returns the namespace and the name of the function called at tok, which is either the opening
// parenthesis of the call or the name of the function. ok is false when the callee is not a plain function name
// (function pointers, member calls).
func CallName(tok *token.Token) (namespace string, name string, ok bool) {
	if tok.IsCall() {
		tok = tok.AstOperand1()
	}
	if tok == nil || !tok.IsName() || tok.VarID != 0 {
		return "", "", false
	}
	name = tok.Str
	for prev := tok.Previous(); prev.Is("::") && prev.Previous().IsName(); prev = prev.Previous().Previous() {
		if namespace == "" {
			namespace = prev.Previous().Str
		} else {
			namespace = prev.Previous().Str + "::" + namespace
		}
	}
	return namespace, name, true
}
