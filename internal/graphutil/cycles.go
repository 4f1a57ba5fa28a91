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
	"sort"

	"github.com/yourbasic/graph"
)

// FindAllElementaryCycles finds all elementary cycles in the graph cg, using Donald B. Johnson's algorithm
// presented in "Finding All The Elementary Circuits of a Directed Graph", 1975.
// Each cycle starts and ends with the same node id. Self-calls are cycles of length one.
func FindAllElementaryCycles(cg CGraph) [][]int64 {
	j := &johnson{}
	for _, k := range cg.Keys {
		if cg.Edges[k][k] {
			j.cycles = append(j.cycles, []int64{k, k})
		}
	}
	start := 0
	for start < len(cg.Keys) {
		sub := Subgraph(cg, cg.Keys[start:])
		least := int64(-1)
		for _, component := range graph.StrongComponents(sub) {
			if len(component) < 2 {
				continue
			}
			sort.Ints(component)
			if least < 0 || int64(component[0]) < least {
				least = int64(component[0])
			}
		}
		if least < 0 {
			break
		}
		j.reset()
		j.circuit(least, least, withoutSelfLoops(Subgraph(cg, componentOf(sub, least))))
		start = indexOf(cg.Keys, least) + 1
	}
	return j.cycles
}

// RecursionCycles returns the elementary cycles of the call graph as function names
func RecursionCycles(cg *CallGraph) [][]string {
	var res [][]string
	for _, cycle := range FindAllElementaryCycles(NewCallgraphIterator(cg)) {
		names := make([]string, len(cycle))
		for i, id := range cycle {
			names[i] = cg.Names[id]
		}
		res = append(res, names)
	}
	return res
}

type johnson struct {
	blocked map[int64]bool
	blist   map[int64]map[int64]bool
	stack   []int64
	cycles  [][]int64
}

func (j *johnson) reset() {
	j.blocked = map[int64]bool{}
	j.blist = map[int64]map[int64]bool{}
	j.stack = nil
}

func (j *johnson) unblock(u int64) {
	j.blocked[u] = false
	for w := range j.blist[u] {
		delete(j.blist[u], w)
		if j.blocked[w] {
			j.unblock(w)
		}
	}
}

func (j *johnson) circuit(v int64, s int64, g CGraph) bool {
	found := false
	j.stack = append(j.stack, v)
	j.blocked[v] = true
	for _, w := range sortedKeys(g.Edges[v]) {
		if w == s {
			cycle := make([]int64, len(j.stack), len(j.stack)+1)
			copy(cycle, j.stack)
			j.cycles = append(j.cycles, append(cycle, w))
			found = true
		} else if !j.blocked[w] && j.circuit(w, s, g) {
			found = true
		}
	}
	if found {
		j.unblock(v)
	} else {
		for w := range g.Edges[v] {
			if j.blist[w] == nil {
				j.blist[w] = map[int64]bool{}
			}
			j.blist[w][v] = true
		}
	}
	j.stack = j.stack[:len(j.stack)-1]
	return found
}

// componentOf returns the strongly connected component of g containing v
func componentOf(g CGraph, v int64) []int64 {
	for _, component := range graph.StrongComponents(g) {
		for _, x := range component {
			if int64(x) == v {
				res := make([]int64, len(component))
				for i, y := range component {
					res[i] = int64(y)
				}
				return res
			}
		}
	}
	return []int64{v}
}

func withoutSelfLoops(g CGraph) CGraph {
	for k, out := range g.Edges {
		delete(out, k)
	}
	return g
}

func indexOf(keys []int64, k int64) int {
	for i, x := range keys {
		if x == k {
			return i
		}
	}
	return len(keys)
}
