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

// Package formatutil colors the output of the tools when it goes to a terminal.
package formatutil

import (
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

var (
	Bold   = Color("1")
	Faint  = Color("2")
	Red    = Color("1;31")
	Green  = Color("1;32")
	Yellow = Color("1;33")
)

// colors is 1 when escape sequences are emitted
var colors int32

func init() {
	if os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd())) {
		colors = 1
	}
}

// SetColors enables or disables the escape sequences, regardless of the terminal
func SetColors(enabled bool) {
	if enabled {
		atomic.StoreInt32(&colors, 1)
	} else {
		atomic.StoreInt32(&colors, 0)
	}
}

// Color returns a function formatting its arguments like fmt.Sprint, in the SGR style code when the standard
// output is a terminal and NO_COLOR is not set.
func Color(code string) func(...interface{}) string {
	return func(args ...interface{}) string {
		s := fmt.Sprint(args...)
		if atomic.LoadInt32(&colors) == 0 {
			return s
		}
		return "\033[" + code + "m" + s + "\033[0m"
	}
}
