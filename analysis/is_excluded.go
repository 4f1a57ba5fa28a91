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

package analysis

import (
	"os"
	"path/filepath"
	"strings"
)

// MakeAbsolute returns the paths in excludeRelative made absolute with respect to the working directory
func MakeAbsolute(excludeRelative []string) []string {
	result := make([]string, 0, len(excludeRelative))

	cwd, _ := os.Getwd()

	for _, s := range excludeRelative {
		var excludeAbsolute string
		if strings.HasPrefix(s, "/") {
			excludeAbsolute = s
		} else {
			excludeAbsolute = cwd + "/" + s
		}
		result = append(result, excludeAbsolute)
	}

	return result
}

func isExcludedOne(filename string, exclude string) bool {
	if filepath.Ext(exclude) != "" {
		return filename == exclude // full match required
	} else if strings.HasSuffix(exclude, "/") {
		return strings.HasPrefix(filename+"/", exclude) // prefix match required
	} else {
		return filename == exclude || strings.HasPrefix(filename, exclude+"/") // prefix match plus / required
	}
}

// IsExcluded returns true if the file is excluded by one of the paths in exclude. A path with an extension
// excludes exactly that file, any other path excludes the directory and everything below it.
func IsExcluded(filename string, exclude []string) bool {
	if len(exclude) == 0 {
		return false
	}
	abs, err := filepath.Abs(filename)
	if err != nil {
		abs = filename
	}
	for _, e := range exclude {
		if isExcludedOne(abs, e) {
			return true
		}
	}

	return false
}
