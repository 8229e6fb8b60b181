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
	"github.com/awslabs/taintflow/analysis/ir"
	"github.com/awslabs/taintflow/internal/graphutil"
)

// BottomUpOrder orders the graphs so that callees come before their callers
// wherever the call graph permits: when the caller runs, the callee's
// inferred signature is already in the summary cache. The order within a
// mutually recursive group is unspecified. Anonymous graphs sort last, since
// nothing can call them by name.
func BottomUpOrder(graphs []*ir.CFG) []*ir.CFG {
	byRef := make(map[ir.FuncRef]*ir.CFG, len(graphs))
	var named []ir.FuncRef
	var anon []*ir.CFG
	for _, g := range graphs {
		if g.Name.IsZero() {
			anon = append(anon, g)
			continue
		}
		if _, dup := byRef[g.Name]; !dup {
			byRef[g.Name] = g
			named = append(named, g.Name)
		}
	}

	successors := func(ref ir.FuncRef) []ir.FuncRef {
		var out []ir.FuncRef
		seen := map[ir.FuncRef]bool{}
		for _, callee := range Callees(byRef[ref]) {
			if _, local := byRef[callee]; local && !seen[callee] {
				seen[callee] = true
				out = append(out, callee)
			}
		}
		return out
	}

	// Components come out callee-first.
	ordered := make([]*ir.CFG, 0, len(graphs))
	for _, scc := range graphutil.StronglyConnectedComponents(named, successors) {
		for _, ref := range scc {
			ordered = append(ordered, byRef[ref])
		}
	}
	return append(ordered, anon...)
}

// Callees returns the named call targets appearing anywhere in the graph,
// in node order, duplicates included.
func Callees(g *ir.CFG) []ir.FuncRef {
	var refs []ir.FuncRef
	for _, n := range g.Nodes {
		collectCallees(n.RHS, &refs)
	}
	return refs
}

func collectCallees(e *ir.Expr, refs *[]ir.FuncRef) {
	if e == nil {
		return
	}
	if e.Kind == ir.ExprCall && !e.Callee.IsZero() {
		*refs = append(*refs, e.Callee)
	}
	for _, a := range e.Args {
		collectCallees(a, refs)
	}
}
