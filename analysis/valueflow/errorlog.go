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

package valueflow

import (
	"fmt"
	"sync"
)

// SeverityDebug is the severity of every record the value-flow analysis emits
const SeverityDebug = "debug"

// ErrorMessage is a record of the error sink
type ErrorMessage struct {
	File      string
	Line      int
	Severity  string
	Message   string
	ID        string
	Certainty string
}

func (m ErrorMessage) String() string {
	return fmt.Sprintf("%s:%d: %s: %s [%s]", m.File, m.Line, m.Severity, m.Message, m.ID)
}

// An ErrorLogger receives the records of the analysis. Implementations must be safe for concurrent use when the
// same logger is shared by analyses running in parallel.
type ErrorLogger interface {
	ReportErr(msg ErrorMessage)
}

// MemoryErrorLogger keeps the records in memory
type MemoryErrorLogger struct {
	mu       sync.Mutex
	messages []ErrorMessage
}

// ReportErr implements ErrorLogger
func (l *MemoryErrorLogger) ReportErr(msg ErrorMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// Messages returns a copy of the records received so far
func (l *MemoryErrorLogger) Messages() []ErrorMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := make([]ErrorMessage, len(l.messages))
	copy(res, l.messages)
	return res
}

// Len returns the number of records received so far
func (l *MemoryErrorLogger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}
