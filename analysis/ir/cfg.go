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

package ir

import (
	"fmt"

	"github.com/awslabs/taintflow/internal/funcutil"
)

// A NodeID indexes a node inside one CFG. Node IDs are dense: the node with
// ID i is Nodes[i].
type NodeID int

// A NodeKind discriminates the statement kinds of CFG nodes.
type NodeKind int

const (
	// KindEntry is the function entry; it carries no statement.
	KindEntry NodeKind = iota
	// KindExit is a function exit; it carries no statement.
	KindExit
	// KindNop carries no dataflow effect (e.g. lowered debug statements).
	KindNop
	// KindAssign assigns RHS to LHS (strong update).
	KindAssign
	// KindExprStmt evaluates RHS for effect only (e.g. a bare call).
	KindExprStmt
	// KindBranch evaluates the condition RHS; all successors receive the
	// same environment.
	KindBranch
	// KindReturn returns RHS (possibly nil for bare returns).
	KindReturn
)

func (k NodeKind) String() string {
	switch k {
	case KindEntry:
		return "entry"
	case KindExit:
		return "exit"
	case KindNop:
		return "nop"
	case KindAssign:
		return "assign"
	case KindExprStmt:
		return "exprstmt"
	case KindBranch:
		return "branch"
	case KindReturn:
		return "return"
	default:
		return "invalid"
	}
}

// A Node is one statement of the CFG.
type Node struct {
	ID   NodeID
	Kind NodeKind

	// LHS is the target of a KindAssign.
	LHS LVal

	// RHS is the assigned expression, the evaluated expression, the branch
	// condition or the returned expression, depending on Kind. It is nil for
	// entry, exit, nop and bare returns.
	RHS *Expr

	// Succs lists the IDs of the successor nodes.
	Succs []NodeID

	// Pos is the source position of the statement.
	Pos Pos
}

func (n *Node) String() string {
	switch n.Kind {
	case KindAssign:
		return fmt.Sprintf("n%d: %s := %s", n.ID, n.LHS, n.RHS)
	case KindExprStmt:
		return fmt.Sprintf("n%d: %s", n.ID, n.RHS)
	case KindBranch:
		return fmt.Sprintf("n%d: if %s", n.ID, n.RHS)
	case KindReturn:
		if n.RHS == nil {
			return fmt.Sprintf("n%d: return", n.ID)
		}
		return fmt.Sprintf("n%d: return %s", n.ID, n.RHS)
	default:
		return fmt.Sprintf("n%d: %s", n.ID, n.Kind)
	}
}

// A CFG is the control-flow graph of one function body. The graph is the
// sole input representation of the taint analysis.
type CFG struct {
	// Name identifies the function. It may be zero for anonymous bodies, in
	// which case self-recursion handling and summary recording are disabled.
	Name FuncRef

	// Params are the formal parameters, in declaration order.
	Params []Var

	// Entry is the ID of the entry node.
	Entry NodeID

	// Nodes holds every node; Nodes[i].ID must equal i.
	Nodes []*Node
}

// Node returns the node with the given ID, or nil when out of range.
func (g *CFG) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.Nodes) {
		return nil
	}
	return g.Nodes[id]
}

// Validate checks the structural invariants of the graph: a valid entry node,
// dense node IDs and no dangling edges. A malformed graph is a caller error;
// the diagnostic identifies the offending node.
func (g *CFG) Validate() error {
	if len(g.Nodes) == 0 {
		return fmt.Errorf("cfg %s: empty graph", g.Name)
	}
	if g.Node(g.Entry) == nil {
		return fmt.Errorf("cfg %s: entry node %d does not exist", g.Name, g.Entry)
	}
	for i, n := range g.Nodes {
		if n == nil {
			return fmt.Errorf("cfg %s: node %d is nil", g.Name, i)
		}
		if n.ID != NodeID(i) {
			return fmt.Errorf("cfg %s: node at index %d has ID %d", g.Name, i, n.ID)
		}
		for _, s := range n.Succs {
			if g.Node(s) == nil {
				return fmt.Errorf("cfg %s: node %d has dangling successor %d", g.Name, n.ID, s)
			}
		}
		switch n.Kind {
		case KindAssign:
			if n.RHS == nil {
				return fmt.Errorf("cfg %s: assignment node %d has no RHS", g.Name, n.ID)
			}
		case KindExprStmt, KindBranch:
			if n.RHS == nil {
				return fmt.Errorf("cfg %s: %s node %d has no expression", g.Name, n.Kind, n.ID)
			}
		}
	}
	return nil
}

// Preds computes the predecessor edges of the graph. The result maps every
// node ID to the list of its predecessors, in increasing ID order.
func (g *CFG) Preds() map[NodeID][]NodeID {
	preds := make(map[NodeID][]NodeID, len(g.Nodes))
	for _, n := range g.Nodes {
		for _, s := range n.Succs {
			preds[s] = append(preds[s], n.ID)
		}
	}
	return preds
}

// ReversePostorder returns the IDs of the nodes reachable from entry in
// reverse postorder. Seeding a forward worklist in this order lets acyclic
// regions converge in a single pass.
func (g *CFG) ReversePostorder() []NodeID {
	seen := make([]bool, len(g.Nodes))
	var post []NodeID
	var visit func(id NodeID)
	visit = func(id NodeID) {
		seen[id] = true
		for _, s := range g.Node(id).Succs {
			if !seen[s] {
				visit(s)
			}
		}
		post = append(post, id)
	}
	if g.Node(g.Entry) != nil {
		visit(g.Entry)
	}
	funcutil.Reverse(post)
	return post
}

// Unreachable returns the IDs of the nodes with no path from entry. Such
// nodes keep bottom environments in the analysis result.
func (g *CFG) Unreachable() []NodeID {
	reachable := make(map[NodeID]bool, len(g.Nodes))
	for _, id := range g.ReversePostorder() {
		reachable[id] = true
	}
	var out []NodeID
	for _, n := range g.Nodes {
		if !reachable[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}
