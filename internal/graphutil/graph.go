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

// Package graphutil adapts control-flow graphs to the interfaces of existing
// graph libraries, and implements graph algorithms that are not provided by
// those libraries.
package graphutil

import (
	"fmt"
	"sort"

	"github.com/awslabs/taintflow/analysis/ir"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
)

// FlowGraph is an abstraction over a CFG to work with existing graph
// libraries. It implements the methods to satisfy yourbasic's graph.Iterator
// and Gonum's graph.Graph.
type FlowGraph struct {
	// The order of the graph
	order int

	// The original CFG the FlowGraph was constructed from
	Graph *ir.CFG

	// IDMap maps from node IDs to FNodes
	IDMap map[int64]FNode

	// Keys are all the node IDs
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge between IDMap[x] and IDMap[y]
	Edges map[int64]map[int64]bool
}

// NewCFGIterator returns a new flow graph iterator where node ids correspond to the ir.NodeID of each CFG node
func NewCFGIterator(g *ir.CFG) FlowGraph {
	n := len(g.Nodes)
	idmap := make(map[int64]FNode, n)
	edges := make(map[int64]map[int64]bool, n)
	keys := make([]int64, n)
	for i, node := range g.Nodes {
		keys[i] = int64(node.ID)
		idmap[int64(node.ID)] = FNode{node}
		edges[int64(node.ID)] = map[int64]bool{}
		for _, s := range node.Succs {
			edges[int64(node.ID)][int64(s)] = true
		}
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return FlowGraph{
		order: n,
		Graph: g,
		IDMap: idmap,
		Edges: edges,
		Keys:  keys,
	}
}

// Subgraph returns a new graph that is the original graph with only the nodes in include. Only the edges that have
// both the origin and destination nodes in the include nodes are kept in the resulting graph.
// The subgraph's order, Graph and IDMap are the same as in origin, meaning that node indices will stay consistent
// across subgraphs.
func Subgraph(original FlowGraph, include []int64) FlowGraph {
	included := make(map[int64]bool, len(include))
	edges := make(map[int64]map[int64]bool, len(include))
	keys := make([]int64, len(include))

	for j, i := range include {
		keys[j] = i
		included[i] = true
	}

	for _, i := range include {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if included[e] {
				edges[i][e] = true
			}
		}
	}

	return FlowGraph{
		order: original.Order(),
		Graph: original.Graph,
		IDMap: original.IDMap,
		Edges: edges,
		Keys:  keys,
	}
}

// Order implements the order of the graph.Iterator interface for the FlowGraph
func (c FlowGraph) Order() int {
	return c.order
}

// Visit implements the graph.Iterator interface for the FlowGraph
func (c FlowGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if _, ok := c.IDMap[int64(v)]; !ok {
		return false
	}
	for w := range c.Edges[int64(v)] {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// *************** Graph interface implementation **********************

// Node implements the Graph interface
func (c FlowGraph) Node(id int64) graph.Node {
	return c.IDMap[id]
}

// Nodes returns the set of nodes in the graph
func (c FlowGraph) Nodes() graph.Nodes {
	keys := make([]int64, len(c.IDMap))

	i := 0
	for k := range c.IDMap {
		keys[i] = k
		i++
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return &NodeSet{
		nodes: c.IDMap,
		ids:   keys,
		cur:   -1,
	}
}

// From returns the set of nodes reachable from the id
func (c FlowGraph) From(id int64) graph.Nodes {
	var keys []int64

	for out := range c.Edges[id] {
		keys = append(keys, out)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return &NodeSet{
		nodes: c.IDMap,
		ids:   keys,
		cur:   -1,
	}
}

// To returns the set of nodes with an edge into the id
func (c FlowGraph) To(id int64) graph.Nodes {
	var keys []int64

	for from, outs := range c.Edges {
		if outs[id] {
			keys = append(keys, from)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return &NodeSet{
		nodes: c.IDMap,
		ids:   keys,
		cur:   -1,
	}
}

// HasEdgeFromTo returns a boolean indicating whether a directed edge exists from xid to yid
func (c FlowGraph) HasEdgeFromTo(xid, yid int64) bool {
	return c.Edges[xid][yid]
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (c FlowGraph) HasEdgeBetween(xid, yid int64) bool {
	xe := c.Edges[xid]
	ye := c.Edges[yid]
	return xe[yid] || ye[xid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (c FlowGraph) Edge(uid, vid int64) graph.Edge {
	ue := c.Edges[uid]
	if ue != nil {
		if ue[vid] {
			return FEdge{from: c.IDMap[uid], to: c.IDMap[vid]}
		}
	}
	return nil
}

// *************** Nodes implementation **********************

// FNode is a wrapper around an *ir.Node that implements the graph.Node interface
type FNode struct {
	Node *ir.Node
}

// ID returns the id of the node
func (n FNode) ID() int64 {
	return int64(n.Node.ID)
}

func (n FNode) String() string {
	if n.Node == nil {
		return ""
	}
	return n.Node.String()
}

// DOTID returns the graphviz identifier of the node
func (n FNode) DOTID() string {
	return fmt.Sprintf("n%d", n.Node.ID)
}

// Attributes returns the graphviz attributes of the node
func (n FNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: n.Node.String()}}
}

// NodeSet implements the graph.Nodes interface, an iterator over a set of nodes.
// A fresh iterator is positioned before the first node; Next must be called
// before the first Node.
type NodeSet struct {
	// nodes is the set of nodes in the iterator
	nodes map[int64]FNode

	// ids is the set of node ids in the iterator
	ids []int64

	// cur is the current index of the iterator. The current node is nodes[ids[cur]]
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

// Len returns the length of the node set
func (ns *NodeSet) Len() int {
	return len(ns.ids)
}

// Reset repositions the iterator before the first node in the set
func (ns *NodeSet) Reset() {
	ns.cur = -1
}

// Node return the current node in the set
func (ns *NodeSet) Node() graph.Node {
	return ns.nodes[ns.ids[ns.cur]]
}

// *************** Edge implementation **********************

// FEdge implements the graph.Edge interface
type FEdge struct {
	from FNode
	to   FNode
}

// From returns the origin of the edge
func (e FEdge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e FEdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e FEdge) ReversedEdge() graph.Edge {
	return FEdge{from: e.to, to: e.from}
}
