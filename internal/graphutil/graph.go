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

// Package graphutil contains the call graph of a translation unit and the graph algorithms run over it: strongly
// connected components, elementary cycles and DOT rendering.
package graphutil

import (
	"sort"

	"gonum.org/v1/gonum/graph"
)

// CallGraph is a directed graph between function names. Node ids are the indices in Names.
type CallGraph struct {
	// Names are the function names, indexed by node id
	Names []string

	// Out is the adjacency relation: Out[x][y] means x calls y
	Out map[int64]map[int64]bool

	ids map[string]int64
}

// NewCallGraph returns an empty call graph
func NewCallGraph() *CallGraph {
	return &CallGraph{Out: map[int64]map[int64]bool{}, ids: map[string]int64{}}
}

// AddNode adds a function to the graph if it is not present and returns its id
func (cg *CallGraph) AddNode(name string) int64 {
	if id, ok := cg.ids[name]; ok {
		return id
	}
	id := int64(len(cg.Names))
	cg.Names = append(cg.Names, name)
	cg.ids[name] = id
	cg.Out[id] = map[int64]bool{}
	return id
}

// AddEdge adds a call edge from caller to callee, adding the nodes when needed
func (cg *CallGraph) AddEdge(caller, callee string) {
	x := cg.AddNode(caller)
	y := cg.AddNode(callee)
	cg.Out[x][y] = true
}

// Merge adds the nodes and edges of other to cg. Functions with the same name are the same node.
func (cg *CallGraph) Merge(other *CallGraph) {
	for x, name := range other.Names {
		cg.AddNode(name)
		for y := range other.Out[int64(x)] {
			cg.AddEdge(name, other.Names[y])
		}
	}
}

// ID returns the id of the node of a function
func (cg *CallGraph) ID(name string) (int64, bool) {
	id, ok := cg.ids[name]
	return id, ok
}

// Callees returns the names of the functions called by name, sorted
func (cg *CallGraph) Callees(name string) []string {
	id, ok := cg.ids[name]
	if !ok {
		return nil
	}
	var res []string
	for y := range cg.Out[id] {
		res = append(res, cg.Names[y])
	}
	sort.Strings(res)
	return res
}

// CGraph is a view of a CallGraph that satisfies both yourbasic's graph.Iterator and Gonum's graph.Directed, so that
// the algorithms of both libraries can run on call graphs.
type CGraph struct {
	// The order of the graph
	order int

	// Graph is the call graph the CGraph was constructed from
	Graph *CallGraph

	// IDMap maps from node IDs to CNodes
	IDMap map[int64]CNode

	// Keys are all the node IDs, sorted
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge between IDMap[x] and IDMap[y]
	Edges map[int64]map[int64]bool
}

// NewCallgraphIterator returns the view of cg
func NewCallgraphIterator(cg *CallGraph) CGraph {
	n := len(cg.Names)
	idmap := make(map[int64]CNode, n)
	edges := make(map[int64]map[int64]bool, n)
	keys := make([]int64, n)
	for i, name := range cg.Names {
		id := int64(i)
		keys[i] = id
		idmap[id] = CNode{id: id, Name: name}
		edges[id] = make(map[int64]bool, len(cg.Out[id]))
		for y := range cg.Out[id] {
			edges[id][y] = true
		}
	}
	return CGraph{
		order: n,
		Graph: cg,
		IDMap: idmap,
		Edges: edges,
		Keys:  keys,
	}
}

// Subgraph returns a new graph that is the original graph with only the nodes in include. Only the edges that have
// both the origin and destination nodes in the include nodes are kept in the resulting graph.
// The order and the IDMap of the subgraph are the same as in the original, so node ids stay consistent across
// subgraphs.
func Subgraph(original CGraph, include []int64) CGraph {
	kept := make(map[int64]bool, len(include))
	for _, i := range include {
		kept[i] = true
	}
	edges := make(map[int64]map[int64]bool, len(include))
	for _, i := range include {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if kept[e] {
				edges[i][e] = true
			}
		}
	}
	keys := make([]int64, len(include))
	copy(keys, include)
	return CGraph{
		order: original.order,
		Graph: original.Graph,
		IDMap: original.IDMap,
		Edges: edges,
		Keys:  keys,
	}
}

// Order implements the graph.Iterator interface of yourbasic/graph
func (c CGraph) Order() int {
	return c.order
}

// Visit implements the graph.Iterator interface of yourbasic/graph
func (c CGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	out, ok := c.Edges[int64(v)]
	if !ok {
		return false
	}
	for _, w := range sortedKeys(out) {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// *************** Gonum interface implementation **********************

// Node returns the node with the given id, or nil
func (c CGraph) Node(id int64) graph.Node {
	if _, ok := c.Edges[id]; !ok {
		return nil
	}
	return c.IDMap[id]
}

// Nodes returns the set of nodes in the graph
func (c CGraph) Nodes() graph.Nodes {
	return c.nodeSet(c.Keys)
}

// From returns the nodes called by the node id
func (c CGraph) From(id int64) graph.Nodes {
	return c.nodeSet(sortedKeys(c.Edges[id]))
}

// To returns the nodes calling the node id
func (c CGraph) To(id int64) graph.Nodes {
	var ids []int64
	for _, x := range c.Keys {
		if c.Edges[x][id] {
			ids = append(ids, x)
		}
	}
	return c.nodeSet(ids)
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (c CGraph) HasEdgeBetween(xid, yid int64) bool {
	return c.Edges[xid][yid] || c.Edges[yid][xid]
}

// HasEdgeFromTo returns true if uid calls vid
func (c CGraph) HasEdgeFromTo(uid, vid int64) bool {
	return c.Edges[uid][vid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (c CGraph) Edge(uid, vid int64) graph.Edge {
	if c.Edges[uid][vid] {
		return CEdge{from: c.IDMap[uid], to: c.IDMap[vid]}
	}
	return nil
}

func (c CGraph) nodeSet(ids []int64) *NodeSet {
	return &NodeSet{nodes: c.IDMap, ids: ids, cur: -1}
}

func sortedKeys(m map[int64]bool) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// *************** Nodes implementation **********************

// CNode is a function of the call graph. It implements graph.Node, and dot.Node for rendering.
type CNode struct {
	id   int64
	Name string
}

// ID returns the id of the node
func (n CNode) ID() int64 {
	return n.id
}

// DOTID returns the name of the function, used as node identifier in DOT output
func (n CNode) DOTID() string {
	return n.Name
}

func (n CNode) String() string {
	return n.Name
}

// NodeSet implements the graph.Nodes interface, an iterator over a set of nodes
type NodeSet struct {
	// nodes is the set of nodes in the iterator
	nodes map[int64]CNode

	// ids is the set of node ids in the iterator
	ids []int64

	// cur is the current index of the iterator. The current node is nodes[ids[cur]]
	// invariant: -1 <= cur < len(ids); -1 before the first call to Next
	cur int
}

// Next moves the current node to the next, and returns true if such a node exists. Otherwise, returns false
// and the current node has not changed.
func (ns *NodeSet) Next() bool {
	if ns.cur < len(ns.ids)-1 {
		ns.cur++
		return true
	}
	return false
}

// Len returns the number of nodes remaining in the iterator
func (ns *NodeSet) Len() int {
	return len(ns.ids) - ns.cur - 1
}

// Reset restarts the iteration
func (ns *NodeSet) Reset() {
	ns.cur = -1
}

// Node returns the current node in the set
func (ns *NodeSet) Node() graph.Node {
	if ns.cur < 0 || ns.cur >= len(ns.ids) {
		return nil
	}
	return ns.nodes[ns.ids[ns.cur]]
}

// *************** Edge implementation **********************

// CEdge implements the graph.Edge interface
type CEdge struct {
	from CNode
	to   CNode
}

// From returns the origin of the edge
func (e CEdge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e CEdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e CEdge) ReversedEdge() graph.Edge {
	return CEdge{from: e.to, to: e.from}
}
