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

// StronglyConnectedComponents runs Tarjan's algorithm over the directed graph
// spanned by nodes and successors, where successors returns the targets of the
// edges out of a node. Each returned slice holds the members of one strongly
// connected component; the order inside a component is unspecified. Components
// come out successors-first: a component is emitted before every component
// that has an edge into it. On a call graph that means the callees of a
// function sit in an earlier component than the function itself, which is the
// order a summary-driven analysis wants to process functions in.
func StronglyConnectedComponents[T comparable](nodes []T, successors func(T) []T) (sccs [][]T) {
	var stack []T
	onStack := make(map[T]bool)
	index := make(map[T]int)
	lowlink := make(map[T]int)
	next := 0

	var connect func(v T)

	connect = func(v T) {
		index[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true
		for _, w := range successors(v) {
			if _, seen := index[w]; !seen {
				connect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] && index[w] < lowlink[v] {
				// w is on the stack, so it belongs to the current component.
				lowlink[v] = index[w]
			}
		}
		if lowlink[v] != index[v] {
			return
		}
		// v is the root of a component: everything above it on the stack
		// belongs to the same component.
		var scc []T
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		sccs = append(sccs, scc)
	}

	for _, v := range nodes {
		if _, seen := index[v]; !seen {
			connect(v)
		}
	}
	return sccs
}
