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
	"math/rand"
	"testing"
)

// checkBottomUp verifies that the components partition the graph, that each component is strongly connected and
// that no function reaches a function of a later component.
func checkBottomUp(cg *CallGraph, sccs [][]string) error {
	position := map[string]int{}
	for i, scc := range sccs {
		for _, f := range scc {
			if _, seen := position[f]; seen {
				return fmt.Errorf("%s appears in two components", f)
			}
			position[f] = i
		}
		for _, f := range scc {
			for _, g := range scc {
				if f != g && !Reaches(cg, f, g) {
					return fmt.Errorf("%s does not reach %s in component %v", f, g, scc)
				}
			}
		}
	}
	for _, f := range cg.Names {
		i, ok := position[f]
		if !ok {
			return fmt.Errorf("%s is missing", f)
		}
		for _, g := range cg.Names {
			if position[g] > i && Reaches(cg, f, g) {
				return fmt.Errorf("%s reaches %s, which comes later", f, g)
			}
		}
	}
	return nil
}

func graphOf(edges map[string][]string) *CallGraph {
	cg := NewCallGraph()
	for caller, callees := range edges {
		cg.AddNode(caller)
		for _, callee := range callees {
			cg.AddEdge(caller, callee)
		}
	}
	return cg
}

func TestBottomUpShapes(t *testing.T) {
	for name, edges := range map[string]map[string][]string{
		"self":     {"f": {"f"}},
		"leaf":     {"f": {}},
		"chain":    {"main": {"init", "run"}, "run": {"step"}, "step": {}},
		"diamond":  {"main": {"a", "b"}, "a": {"log"}, "b": {"log"}},
		"mutual":   {"main": {"even"}, "even": {"odd"}, "odd": {"even", "abort"}},
		"two-loop": {"main": {"p", "q"}, "p": {"main"}, "q": {"q"}},
	} {
		t.Run(name, func(t *testing.T) {
			cg := graphOf(edges)
			if err := checkBottomUp(cg, BottomUp(cg)); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestBottomUpRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1337))
	for i := 0; i < 40; i++ {
		size := 5 + r.Intn(40)
		cg := NewCallGraph()
		for f := 0; f < size; f++ {
			caller := fmt.Sprintf("f%d", f)
			cg.AddNode(caller)
			for k := 0; k < 3; k++ {
				if r.Float32() < 0.6 {
					cg.AddEdge(caller, fmt.Sprintf("f%d", r.Intn(size)))
				}
			}
		}
		if err := checkBottomUp(cg, BottomUp(cg)); err != nil {
			t.Fatalf("graph %d: %v", i, err)
		}
	}
}

func TestBottomUp(t *testing.T) {
	cg := NewCallGraph()
	cg.AddEdge("main", "parse")
	cg.AddEdge("parse", "expr")
	cg.AddEdge("expr", "term")
	cg.AddEdge("term", "expr")
	cg.AddEdge("main", "die")
	order := map[string]int{}
	for i, scc := range BottomUp(cg) {
		for _, name := range scc {
			order[name] = i
		}
	}
	if order["expr"] != order["term"] {
		t.Errorf("expected expr and term in the same component")
	}
	if order["expr"] >= order["parse"] || order["parse"] >= order["main"] || order["die"] >= order["main"] {
		t.Errorf("expected callees before callers, got %v", order)
	}
}

func TestStronglyConnectedComponentsInts(t *testing.T) {
	succ := map[int][]int{0: {1}, 1: {2}, 2: {0, 3}, 3: {}}
	sccs := StronglyConnectedComponents([]int{0, 1, 2, 3}, func(n int) []int { return succ[n] })
	if len(sccs) != 2 || len(sccs[0]) != 1 || sccs[0][0] != 3 || len(sccs[1]) != 3 {
		t.Errorf("unexpected components %v", sccs)
	}
}
