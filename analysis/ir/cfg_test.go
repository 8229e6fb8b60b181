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
	"strings"
	"testing"
)

func diamond() *CFG {
	x := Var{Name: "x", ID: 0}
	return &CFG{
		Name: FuncRef{Package: "p", Name: "f"},
		Nodes: []*Node{
			{ID: 0, Kind: KindEntry, Succs: []NodeID{1}},
			{ID: 1, Kind: KindBranch, RHS: NewVarRead(x, NoPos), Succs: []NodeID{2, 3}},
			{ID: 2, Kind: KindNop, Succs: []NodeID{4}},
			{ID: 3, Kind: KindNop, Succs: []NodeID{4}},
			{ID: 4, Kind: KindExit},
		},
	}
}

func TestValidateAcceptsWellFormedGraph(t *testing.T) {
	if err := diamond().Validate(); err != nil {
		t.Errorf("diamond should validate, got %v", err)
	}
}

func TestValidateDiagnostics(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mangle func(*CFG)
		want   string
	}{
		{"empty graph", func(g *CFG) { g.Nodes = nil }, "empty graph"},
		{"bad entry", func(g *CFG) { g.Entry = 99 }, "entry node 99"},
		{"misnumbered node", func(g *CFG) { g.Nodes[2].ID = 7 }, "node at index 2 has ID 7"},
		{"dangling successor", func(g *CFG) { g.Nodes[3].Succs = []NodeID{42} }, "dangling successor 42"},
		{"assignment without RHS", func(g *CFG) { g.Nodes[2].Kind = KindAssign }, "no RHS"},
		{"branch without condition", func(g *CFG) { g.Nodes[1].RHS = nil }, "no expression"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			g := diamond()
			tc.mangle(g)
			err := g.Validate()
			if err == nil {
				t.Fatalf("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("diagnostic %q should contain %q", err, tc.want)
			}
		})
	}
}

func TestPredsMirrorsSuccs(t *testing.T) {
	preds := diamond().Preds()
	if len(preds[4]) != 2 || preds[4][0] != 2 || preds[4][1] != 3 {
		t.Errorf("join node should have both arms as predecessors, got %v", preds[4])
	}
	if len(preds[0]) != 0 {
		t.Errorf("entry should have no predecessors, got %v", preds[0])
	}
}

func TestReversePostorderVisitsBeforeSuccessors(t *testing.T) {
	rpo := diamond().ReversePostorder()
	if len(rpo) != 5 {
		t.Fatalf("all nodes are reachable, got order %v", rpo)
	}
	index := map[NodeID]int{}
	for i, id := range rpo {
		index[id] = i
	}
	// in an acyclic graph every edge goes forward in the order
	for _, n := range diamond().Nodes {
		for _, s := range n.Succs {
			if index[n.ID] >= index[s] {
				t.Errorf("edge %d->%d goes backwards in %v", n.ID, s, rpo)
			}
		}
	}
}

func TestUnreachableNodes(t *testing.T) {
	g := diamond()
	g.Nodes = append(g.Nodes, &Node{ID: 5, Kind: KindNop})
	if err := g.Validate(); err != nil {
		t.Fatalf("orphan nodes are structurally valid: %v", err)
	}
	un := g.Unreachable()
	if len(un) != 1 || un[0] != 5 {
		t.Errorf("expected node 5 to be unreachable, got %v", un)
	}
	if rpo := g.ReversePostorder(); len(rpo) != 5 {
		t.Errorf("rpo should skip unreachable nodes, got %v", rpo)
	}
}

func TestExprStrings(t *testing.T) {
	x := Var{Name: "x", ID: 1}
	for _, tc := range []struct {
		expr *Expr
		want string
	}{
		{NewLit("1", Int, NoPos), "1"},
		{NewVarRead(x, NoPos), "x#1"},
		{NewFieldRead(x, ".a", NoPos), "x#1.a"},
		{NewBinop("+", NewVarRead(x, NoPos), NewLit("1", Int, NoPos), Int, NoPos), "x#1 + 1"},
		{NewCall(FuncRef{Package: "p", Name: "f"}, []*Expr{NewVarRead(x, NoPos)}, NoPos), "p.f(x#1)"},
	} {
		if got := tc.expr.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
