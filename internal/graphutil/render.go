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

package graphutil

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/topo"
)

// WriteDOT writes the call graph in DOT format to w
func WriteDOT(w io.Writer, cg *CallGraph, name string) error {
	b, err := dot.Marshal(NewCallgraphIterator(cg), name, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render call graph: %w", err)
	}
	_, err = w.Write(b)
	return err
}

// RecursiveComponents returns the sets of mutually recursive functions: the strongly connected components with
// more than one function, and the functions calling themselves. Names are sorted in each component, and the
// components are sorted by their first name.
func RecursiveComponents(cg *CallGraph) [][]string {
	g := NewCallgraphIterator(cg)
	var res [][]string
	for _, component := range topo.TarjanSCC(g) {
		if len(component) == 1 && !g.HasEdgeFromTo(component[0].ID(), component[0].ID()) {
			continue
		}
		names := make([]string, len(component))
		for i, n := range component {
			names[i] = n.(CNode).Name
		}
		sort.Strings(names)
		res = append(res, names)
	}
	sort.Slice(res, func(i, j int) bool { return res[i][0] < res[j][0] })
	return res
}

// Reaches returns true if there is a call path from the function from to the function to
func Reaches(cg *CallGraph, from, to string) bool {
	x, ok1 := cg.ID(from)
	y, ok2 := cg.ID(to)
	if !ok1 || !ok2 {
		return false
	}
	g := NewCallgraphIterator(cg)
	return topo.PathExistsIn(g, g.IDMap[x], g.IDMap[y])
}
