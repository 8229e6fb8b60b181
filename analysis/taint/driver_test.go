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

package taint

import (
	"testing"

	"github.com/awslabs/taintflow/analysis/ir"
)

// callChainGraph builds a function that calls each of the given callees once
// and returns a literal.
func callChainGraph(t *testing.T, fn string, callees ...string) *ir.CFG {
	b := newBuilder(fn)
	prev := ir.NodeID(0)
	for _, c := range callees {
		id := b.stmt(callTo(c))
		b.edge(prev, id)
		prev = id
	}
	r := b.ret(ir.NewLit("0", ir.Int, ir.NoPos))
	e := b.exitNode()
	b.chain(prev, r, e)
	return b.build(t)
}

func TestBottomUpOrderCalleesFirst(t *testing.T) {
	top := callChainGraph(t, "top", "mid")
	mid := callChainGraph(t, "mid", "leaf")
	leaf := callChainGraph(t, "leaf")

	ordered := BottomUpOrder([]*ir.CFG{top, mid, leaf})
	if len(ordered) != 3 {
		t.Fatalf("got %d graphs, want 3", len(ordered))
	}
	index := map[string]int{}
	for i, g := range ordered {
		index[g.Name.Name] = i
	}
	if index["leaf"] > index["mid"] || index["mid"] > index["top"] {
		t.Errorf("call chain not ordered bottom-up: %v", index)
	}
}

func TestBottomUpOrderRecursiveGroup(t *testing.T) {
	a := callChainGraph(t, "a", "b")
	bb := callChainGraph(t, "b", "a")
	anon := callChainGraph(t, "")
	anon.Name = ir.FuncRef{}

	ordered := BottomUpOrder([]*ir.CFG{anon, a, bb})
	if len(ordered) != 3 {
		t.Fatalf("got %d graphs, want 3", len(ordered))
	}
	if !ordered[2].Name.IsZero() {
		t.Errorf("anonymous graph is not last: %v", ordered[2].Name)
	}
	names := map[string]bool{ordered[0].Name.Name: true, ordered[1].Name.Name: true}
	if !names["a"] || !names["b"] {
		t.Errorf("recursive group lost a member: %v", names)
	}
}

func TestCalleesFindsNestedCalls(t *testing.T) {
	b := newBuilder("f")
	x := b.fresh("x")
	n := b.assign(lv(x), callTo("outer", callTo("inner")))
	e := b.exitNode()
	b.chain(0, n, e)
	g := b.build(t)

	var names []string
	for _, ref := range Callees(g) {
		names = append(names, ref.Name)
	}
	if len(names) != 2 || names[0] != "outer" || names[1] != "inner" {
		t.Errorf("got callees %v, want [outer inner]", names)
	}
}

// A wrapper that ignores its argument must not propagate taint through a
// caller analyzed after it; analyzed before it, the conservative policy
// would.
func TestBottomUpOrderSharpensSummaries(t *testing.T) {
	wrap := func() *ir.CFG {
		b := newBuilder("wrap", "p")
		r := b.ret(ir.NewLit("0", ir.Int, ir.NoPos))
		e := b.exitNode()
		b.chain(0, r, e)
		return b.build(t)
	}()

	caller := func() *ir.CFG {
		b := newBuilder("caller")
		x := b.fresh("x")
		y := b.fresh("y")
		n1 := b.assign(lv(x), callTo("source"))
		n2 := b.assign(lv(y), callTo("wrap", ir.NewVarRead(x, ir.NoPos)))
		n3 := b.stmt(callTo("sink", ir.NewVarRead(y, ir.NoPos)))
		e := b.exitNode()
		b.chain(0, n1, n2, n3, e)
		return b.build(t)
	}()

	findings := 0
	a := &Analysis{Preds: testPredicates(nil)}
	a.OnFinding = Dedup(func(Finding) { findings++ })

	caches := NewCaches()
	for _, g := range BottomUpOrder([]*ir.CFG{caller, wrap}) {
		if _, err := a.Run(g, caches, Env{}); err != nil {
			t.Fatalf("run %s: %v", g.Name, err)
		}
	}
	if findings != 0 {
		t.Errorf("got %d findings, want 0: wrap's summary should stop the flow", findings)
	}
}
