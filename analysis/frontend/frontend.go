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

// Package frontend turns C and C++ sources into the token graph analyzed by the value-flow engine. It parses the
// sources with tree-sitter and builds the token list, the expression trees, the scopes, the variables and the
// expression identities.
//
// The front end is deliberately small: there is no preprocessing (directives are ignored, macros are not
// expanded) and no type checking beyond what is needed to classify variables.
package frontend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/awslabs/ar-c-valueflow/analysis/token"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// parserPool holds tree-sitter parsers so that each goroutine can parse without sharing a parser.
type parserPool struct {
	cPool   sync.Pool
	cppPool sync.Pool
}

var pool = &parserPool{
	cPool: sync.Pool{
		New: func() interface{} {
			parser := sitter.NewParser()
			parser.SetLanguage(c.GetLanguage())
			return parser
		},
	},
	cppPool: sync.Pool{
		New: func() interface{} {
			parser := sitter.NewParser()
			parser.SetLanguage(cpp.GetLanguage())
			return parser
		},
	},
}

func getParser(isCPP bool) *sitter.Parser {
	if isCPP {
		return pool.cppPool.Get().(*sitter.Parser)
	}
	return pool.cPool.Get().(*sitter.Parser)
}

func putParser(isCPP bool, parser *sitter.Parser) {
	parser.Reset()
	if isCPP {
		pool.cppPool.Put(parser)
	} else {
		pool.cPool.Put(parser)
	}
}

// IsCPPFile returns true if the file extension denotes a C++ source. Headers ending in .h are parsed as C++.
// It returns an error for extensions that are neither C nor C++.
func IsCPPFile(filename string) (bool, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".c":
		return false, nil
	case ".cpp", ".cxx", ".cc", ".c++", ".hpp", ".hxx", ".hh", ".h++", ".h":
		return true, nil
	default:
		return false, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// ParseFile reads and parses the file at path.
func ParseFile(ctx context.Context, path string) (*token.List, error) {
	isCPP, err := IsCPPFile(path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return Parse(ctx, path, src, isCPP)
}

// Parse parses src, the contents of the file filename, and returns its token list. The symbol database is reachable
// from the list.
func Parse(ctx context.Context, filename string, src []byte, isCPP bool) (*token.List, error) {
	parser := getParser(isCPP)
	defer putParser(isCPP, parser)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filename, err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("failed to parse file %s: empty tree", filename)
	}

	cv := newConverter(filename, src, isCPP)
	cv.translationUnit(root)
	return cv.finish(), nil
}
