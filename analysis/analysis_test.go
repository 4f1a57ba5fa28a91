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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-c-valueflow/analysis/config"
	"github.com/awslabs/ar-c-valueflow/analysis/valueflow"
	"github.com/google/go-cmp/cmp"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestIsExcluded(t *testing.T) {
	tests := []struct {
		file    string
		exclude []string
		want    bool
	}{
		{"/src/a.c", nil, false},
		{"/src/a.c", []string{"/src/a.c"}, true},
		{"/src/b.c", []string{"/src/a.c"}, false},
		{"/src/vendor/x.c", []string{"/src/vendor"}, true},
		{"/src/vendor/x.c", []string{"/src/vendor/"}, true},
		{"/src/vendored.c", []string{"/src/vendor"}, false},
		{"/src/vendor", []string{"/src/vendor"}, true},
	}
	for _, test := range tests {
		if got := IsExcluded(test.file, test.exclude); got != test.want {
			t.Errorf("IsExcluded(%q, %v) = %v, want %v", test.file, test.exclude, got, test.want)
		}
	}
}

func TestSourceFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.c":          "int main(void) { return 0; }\n",
		"util/str.cpp":    "int f(int x) { return x; }\n",
		"util/README.md":  "not a source\n",
		"third_party/z.c": "int z;\n",
	})
	files, err := SourceFiles([]string{dir}, MakeAbsolute([]string{filepath.Join(dir, "third_party")}))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "main.c"), filepath.Join(dir, "util/str.cpp")}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("unexpected files (-want +got):\n%s", diff)
	}

	if _, err := SourceFiles([]string{filepath.Join(dir, "util/README.md")}, nil); err == nil {
		t.Errorf("expected an error for a file that is not a C or C++ source")
	}
}

func TestLoadAndRun(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.c": `
int use(int);
void f(int x) {
	if (x == 5) { use(x); }
}
`,
		"b.c": `
int use(int);
void g(int y) {
	switch (y) { case 2: use(y); break; }
}
`,
	})
	cfg := config.NewDefault()
	cfg.DebugWarnings = true
	logger := config.NewLogGroup(cfg)
	program, err := LoadProgram(context.Background(), cfg, logger, LoadProgramOptions{NumRoutines: 2}, []string{dir})
	if err != nil {
		t.Fatalf("failed to load program: %v", err)
	}
	if len(program.Units) != 2 {
		t.Fatalf("expected two units, got %d", len(program.Units))
	}
	sink := &valueflow.MemoryErrorLogger{}
	results, err := RunValueFlow(context.Background(), ValueFlowParams{
		Config: cfg,
		Logger: logger,
		Errors: sink,
	}, program)
	if err != nil {
		t.Fatalf("failed to run: %v", err)
	}
	var total Statistics
	for _, r := range results {
		if r.Stats.Values() == 0 {
			t.Errorf("expected values in %s", r.List.File)
		}
		total.Add(r.Stats)
	}
	if total.NumberOfFunctions != 2 {
		t.Errorf("expected 2 functions, got %d", total.NumberOfFunctions)
	}
	if total.KnownValues == 0 {
		t.Errorf("expected known values, got %+v", total)
	}
	if sink.Len() != 0 {
		t.Errorf("unexpected debug records %v", sink.Messages())
	}
}
