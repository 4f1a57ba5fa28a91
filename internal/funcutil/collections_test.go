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

package funcutil

import (
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMapParallel(t *testing.T) {
	var input []int
	for i := 0; i < 100; i++ {
		input = append(input, i)
	}
	var calls int64
	square := func(x int) int {
		atomic.AddInt64(&calls, 1)
		return x * x
	}
	want := Map(input, square)
	for _, n := range []int{0, 1, 4, 200} {
		atomic.StoreInt64(&calls, 0)
		got := MapParallel(input, square, n)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%d routines: results out of order (-want +got):\n%s", n, diff)
		}
		if c := atomic.LoadInt64(&calls); c != 100 {
			t.Errorf("%d routines: expected f to be called once per element, got %d calls", n, c)
		}
	}
	if got := MapParallel(nil, square, 4); len(got) != 0 {
		t.Errorf("expected an empty result, got %v", got)
	}
}

func TestSetToOrderedSlice(t *testing.T) {
	got := SetToOrderedSlice(map[string]bool{"b.c": true, "a.c": true, "z.c": false, "c.cpp": true})
	if diff := cmp.Diff([]string{"a.c", "b.c", "c.cpp"}, got); diff != "" {
		t.Errorf("unexpected slice (-want +got):\n%s", diff)
	}
}
