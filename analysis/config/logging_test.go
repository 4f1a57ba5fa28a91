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
	"bytes"
	"strings"
	"testing"
)

func TestLogGroupLevels(t *testing.T) {
	cfg := NewDefault()
	cfg.LogLevel = int(WarnLevel)
	var buf bytes.Buffer
	l := NewLogGroupWithWriter(cfg, &buf)
	l.Debugf("bailout at %d", 3)
	l.Infof("analyzing %s", "a.c")
	l.Warnf("skipping %s", "b.c")
	l.Errorf("failed")
	out := buf.String()
	if strings.Contains(out, "[DEBUG]") || strings.Contains(out, "[INFO]") {
		t.Errorf("messages above the warning level were printed:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] ") || !strings.Contains(out, "skipping b.c") {
		t.Errorf("missing warning in:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR] ") {
		t.Errorf("missing error in:\n%s", out)
	}
	if l.Level() != WarnLevel {
		t.Errorf("expected level %d, got %d", WarnLevel, l.Level())
	}
}

func TestLogGroupTrace(t *testing.T) {
	cfg := NewDefault()
	cfg.LogLevel = int(TraceLevel)
	var buf bytes.Buffer
	NewLogGroupWithWriter(cfg, &buf).Tracef("visiting %s", "x")
	if !strings.Contains(buf.String(), "[TRACE] visiting x") {
		t.Errorf("expected a trace message, got %q", buf.String())
	}
}
