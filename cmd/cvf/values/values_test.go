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

package values

import (
	"context"
	"strings"
	"testing"

	"github.com/awslabs/ar-c-valueflow/analysis/config"
	"github.com/awslabs/ar-c-valueflow/analysis/library"
	"github.com/awslabs/ar-c-valueflow/analysis/valueflow"
	"github.com/awslabs/ar-c-valueflow/internal/analysistest"
)

const src = `
int use(int);
void f(int x) {
	if (x == 5) {
		use(x);
	}
}
`

func TestWriteValues(t *testing.T) {
	list := analysistest.Parse(t, src)
	cfg := config.NewDefault()
	valueflow.Run(valueflow.NewState(context.Background(), cfg, config.NewLogGroup(cfg), library.Default(), nil), list)

	var b strings.Builder
	WriteValues(&b, list, false, false)
	out := b.String()
	if !strings.HasPrefix(out, "File test.c\n") {
		t.Errorf("expected a file header, got:\n%s", out)
	}
	if !strings.Contains(out, "5:7 x {Known 5}") {
		t.Errorf("expected the value of x on line 5, got:\n%s", out)
	}

	b.Reset()
	WriteValues(&b, list, true, false)
	out = b.String()
	if !strings.Contains(out, "test.c:4:8: Assuming that condition 'x==5' is true") {
		t.Errorf("expected the derivation of the value, got:\n%s", out)
	}
}

func TestFlags(t *testing.T) {
	flags, err := NewFlags([]string{"-paths", "-check-level", "normal", "-o", "out.txt", "a.c"})
	if err != nil {
		t.Fatal(err)
	}
	if !flags.paths || flags.checkLevel != "normal" || flags.out != "out.txt" {
		t.Errorf("unexpected flags %+v", flags)
	}
	if args := flags.FlagSet.Args(); len(args) != 1 || args[0] != "a.c" {
		t.Errorf("unexpected arguments %v", args)
	}
}
