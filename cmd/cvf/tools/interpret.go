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

package tools

import "regexp"

// Captures errors happening before any analysis starts (sources could not be parsed)
var regexCouldNotLoad = regexp.MustCompile("could not load program")

// Captures the kind of error that happen when you put a flag at the end instead of source files
var flagAfterFiles = regexp.MustCompile("stat -(\\w+): no such file or directory")

// Captures files that are neither C nor C++
var unsupportedExtension = regexp.MustCompile("unsupported file extension")

// Captures errors in the library annotation files
var libraryError = regexp.MustCompile("could not (read|unmarshal) library file")

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotLoad.MatchString(errMsg) {
		if flagAfterFiles.MatchString(errMsg) {
			return "all command line flags should be before the path to the files to analyze"
		}
		if unsupportedExtension.MatchString(errMsg) {
			return "only C (.c) and C++ (.cpp, .cc, .cxx, .h, .hpp) files can be analyzed"
		}
		return "make sure you have provided the right paths to the C or C++ files to analyze"
	}
	if libraryError.MatchString(errMsg) {
		return "library-files in the config are relative to the config file"
	}
	return ""
}
