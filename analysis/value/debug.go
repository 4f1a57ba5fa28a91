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

//go:build valueflowdebug

package value

import (
	"fmt"
	"runtime"
)

// WithSourceAnnotation records where the value was minted. skip is the number of stack frames to skip above the
// caller of WithSourceAnnotation.
func (v Value) WithSourceAnnotation(skip int) Value {
	_, file, line, ok := runtime.Caller(skip + 1)
	if ok {
		v.Origin = fmt.Sprintf("%s:%d", file, line)
	}
	return v
}
