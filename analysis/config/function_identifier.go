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

package config

import (
	"regexp"
)

// FunctionIdentifier identifies C or C++ functions. Each field is a regex if it compiles to one, otherwise it is
// compared as a string. An empty field matches anything.
type FunctionIdentifier struct {
	// Name is the unqualified name of the function
	Name string `yaml:"name"`
	// Namespace is the C++ qualifier of the function (e.g. "std"), empty for C functions
	Namespace string `yaml:"namespace"`
	// This will not be part of the yaml config
	computedRegexs *functionIdentifierRegex
}

type functionIdentifierRegex struct {
	nameRegex      *regexp.Regexp
	namespaceRegex *regexp.Regexp
}

// CompileRegexes compiles the strings in the function identifier into regexes. It compiles all identifiers into
// regexes or none.
func CompileRegexes(fid FunctionIdentifier) FunctionIdentifier {
	nameRegex, err := regexp.Compile("^(" + fid.Name + ")$")
	if err != nil {
		return fid
	}
	namespaceRegex, err := regexp.Compile("^(" + fid.Namespace + ")$")
	if err != nil {
		return fid
	}
	fid.computedRegexs = &functionIdentifierRegex{
		nameRegex:      nameRegex,
		namespaceRegex: namespaceRegex,
	}
	return fid
}

// Matches returns true if the function with qualifier namespace and unqualified name is identified by fid.
func (fid FunctionIdentifier) Matches(namespace string, name string) bool {
	return FunctionIdentifier{Name: name, Namespace: namespace}.equalOnNonEmptyFields(fid)
}

// equalOnNonEmptyFields returns true if each of the receiver's fields are either equal to the corresponding
// argument's field, or the argument's field is empty
func (fid FunctionIdentifier) equalOnNonEmptyFields(fidRef FunctionIdentifier) bool {
	if fidRef.computedRegexs != nil {
		return (fidRef.computedRegexs.nameRegex.MatchString(fid.Name) || fidRef.Name == "") &&
			(fidRef.computedRegexs.namespaceRegex.MatchString(fid.Namespace) || fidRef.Namespace == "")
	}
	return (fid.Name == fidRef.Name || fidRef.Name == "") &&
		(fid.Namespace == fidRef.Namespace || fidRef.Namespace == "")
}

// ExistsFid is true if there is some x in a such that f(x) is true.
func ExistsFid(a []FunctionIdentifier, f func(identifier FunctionIdentifier) bool) bool {
	for _, x := range a {
		if f(x) {
			return true
		}
	}
	return false
}
