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

package library_test

import (
	"embed"
	"testing"

	"github.com/awslabs/ar-c-valueflow/analysis/config"
	"github.com/awslabs/ar-c-valueflow/analysis/library"
	"github.com/awslabs/ar-c-valueflow/internal/analysistest"
)

//go:embed testdata
var testfsys embed.FS

func loadLibrary(t *testing.T, name string) *library.Library {
	b, err := testfsys.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	l := library.New()
	if err := l.LoadBytes(name, b); err != nil {
		t.Fatalf("failed to load %s: %v", name, err)
	}
	return l
}

func TestLoadLibraryFile(t *testing.T) {
	l := loadLibrary(t, "lib.yaml")
	if l.Len() != 4 {
		t.Errorf("expected 4 annotations, got %d", l.Len())
	}
	if a := l.Lookup("", "die"); !a.Known || !a.NoReturn {
		t.Errorf("expected die to be noreturn")
	}
	if a := l.Lookup("", "my_strlen"); !a.Pure || !a.IsConstArg(1) {
		t.Errorf("expected my_strlen to be pure")
	}
	a := l.Lookup("", "log_value")
	if !a.IsConstArg(1) || a.IsConstArg(2) || !a.IsConstArg(3) {
		t.Errorf("unexpected const args for log_value: %+v", a)
	}
	if a := l.Lookup("", "panic"); a.Known {
		t.Errorf("expected panic without namespace to be unknown")
	}
	if a := l.Lookup("app", "panic"); !a.NoReturn {
		t.Errorf("expected app::panic to be noreturn")
	}
}

func TestLoadInvalidLibraryFile(t *testing.T) {
	b, _ := testfsys.ReadFile("testdata/bad.yaml")
	if err := library.New().LoadBytes("bad.yaml", b); err == nil {
		t.Errorf("expected an error for a function without name")
	}
	if err := library.New().LoadBytes("bad.yaml", []byte("functions: [")); err == nil {
		t.Errorf("expected an error for invalid yaml")
	}
}

func TestDefaults(t *testing.T) {
	l := library.Default()
	for _, tc := range []struct {
		namespace, name string
		noReturn, pure  bool
	}{
		{"", "exit", true, false},
		{"", "abort", true, false},
		{"std", "terminate", true, false},
		{"", "strlen", false, true},
		{"", "printf", false, false},
	} {
		a := l.Lookup(tc.namespace, tc.name)
		if !a.Known || a.NoReturn != tc.noReturn || a.Pure != tc.pure {
			t.Errorf("%s::%s: unexpected annotation %+v", tc.namespace, tc.name, a)
		}
	}
	if !l.Lookup("", "printf").IsConstArg(2) {
		t.Errorf("expected printf not to write through its arguments")
	}
	if l.Lookup("", "memcpy").IsConstArg(1) {
		t.Errorf("expected memcpy to write through its first argument")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Library = []config.FunctionSpec{{FunctionIdentifier: config.FunctionIdentifier{Name: "bail.*"}, NoReturn: true}}
	l, err := library.FromConfig(cfg)
	if err != nil {
		t.Fatalf("failed to build library: %v", err)
	}
	if !l.Lookup("", "bail_out").NoReturn || !l.Lookup("", "exit").NoReturn {
		t.Errorf("expected both config and default annotations")
	}
	cfg.LibraryFiles = []string{"does-not-exist.yaml"}
	if _, err := library.FromConfig(cfg); err == nil {
		t.Errorf("expected an error for a missing library file")
	}
}

func TestCallName(t *testing.T) {
	list := analysistest.ParseCPP(t, `void f() { std::exit(1); g(2); }`)
	ns, name, ok := library.CallName(analysistest.FindToken(list, "exit (", 0).Next())
	if !ok || ns != "std" || name != "exit" {
		t.Errorf("expected std::exit, got %q %q %v", ns, name, ok)
	}
	ns, name, ok = library.CallName(analysistest.FindToken(list, "g", 0))
	if !ok || ns != "" || name != "g" {
		t.Errorf("expected g, got %q %q %v", ns, name, ok)
	}
}
