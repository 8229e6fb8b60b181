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

package graphutil_test

import (
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/awslabs/taintflow/analysis/ir"
	"github.com/awslabs/taintflow/internal/funcutil"
	"github.com/awslabs/taintflow/internal/graphutil"
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
)

// buildCFG builds a CFG whose edges are given explicitly; node kinds are
// irrelevant to the graph algorithms under test.
func buildCFG(t *testing.T, edges map[int][]int, n int) *ir.CFG {
	t.Helper()
	g := &ir.CFG{Entry: 0}
	for i := 0; i < n; i++ {
		node := &ir.Node{ID: ir.NodeID(i), Kind: ir.KindNop}
		for _, s := range edges[i] {
			node.Succs = append(node.Succs, ir.NodeID(s))
		}
		g.Nodes = append(g.Nodes, node)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("test graph is malformed: %v", err)
	}
	return g
}

func TestFindAllElementaryCycles(t *testing.T) {
	// 0 -> 1 -> 2 -> 1 (loop), 2 -> 3 -> 4 -> 3 (loop), 4 -> 5
	g := buildCFG(t, map[int][]int{
		0: {1},
		1: {2},
		2: {1, 3},
		3: {4},
		4: {3, 5},
	}, 6)

	iterator := graphutil.NewCFGIterator(g)
	stats := graph.Check(iterator)
	t.Logf("Stats:\n\tsize: %d\n\tmulti: %d\n\tloops: %d\n\tisolated: %d",
		stats.Size, stats.Multi, stats.Loops, stats.Isolated)

	cycles := graphutil.FindAllElementaryCycles(iterator)
	expected := []string{"121", "343"}

	n := len(cycles)
	if n != 2 {
		t.Fatalf("Expected 2 elementary cycles, found %d", n)
	}
	results := make([]string, n)
	for i, cycle := range cycles {
		results[i] = strings.Join(
			funcutil.Map(cycle, func(_x int64) string { return strconv.Itoa(int(_x)) }),
			"")
	}
	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	if !slices.Equal(results, expected) {
		t.Logf("Cycles:")
		for i, s := range results {
			t.Logf("Cycle %d: %s", i, s)
		}
		t.Fatalf("Cycles not as expected")
	}
}

func TestLoopHeaders(t *testing.T) {
	tests := []struct {
		name  string
		edges map[int][]int
		n     int
		want  []int64
	}{
		{
			name:  "acyclic diamond",
			edges: map[int][]int{0: {1, 2}, 1: {3}, 2: {3}},
			n:     4,
			want:  nil,
		},
		{
			name:  "single loop",
			edges: map[int][]int{0: {1}, 1: {2}, 2: {1, 3}},
			n:     4,
			want:  []int64{1},
		},
		{
			name:  "two loops",
			edges: map[int][]int{0: {1}, 1: {2}, 2: {1, 3}, 3: {4}, 4: {3, 5}},
			n:     6,
			want:  []int64{1, 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildCFG(t, tt.edges, tt.n)
			got := graphutil.LoopHeaders(graphutil.NewCFGIterator(g))
			if !slices.Equal(got, tt.want) {
				t.Errorf("LoopHeaders() = %v, want %v", got, tt.want)
			}
		})
	}
}
