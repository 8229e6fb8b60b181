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

package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awslabs/taintflow/analysis/ir"
)

func sampleCFG(t *testing.T) *ir.CFG {
	t.Helper()
	x := ir.Var{Name: "x", ID: 1}
	g := &ir.CFG{
		Name: ir.FuncRef{Package: "example.com/p", Name: "sample"},
		Nodes: []*ir.Node{
			{ID: 0, Kind: ir.KindEntry, Succs: []ir.NodeID{1}},
			{ID: 1, Kind: ir.KindAssign, LHS: ir.LVal{Base: x},
				RHS:   ir.NewLit("1", ir.Int, ir.Pos{}),
				Succs: []ir.NodeID{2}},
			{ID: 2, Kind: ir.KindReturn, RHS: ir.NewVarRead(x, ir.Pos{}),
				Succs: []ir.NodeID{3}},
			{ID: 3, Kind: ir.KindExit},
		},
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("fixture cfg is invalid: %v", err)
	}
	return g
}

func TestWriteDot(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDot(&buf, sampleCFG(t)); err != nil {
		t.Fatalf("WriteDot returned %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "digraph") {
		t.Errorf("output is not a directed graph:\n%s", out)
	}
	if !strings.Contains(out, "sample") {
		t.Errorf("output does not name the function:\n%s", out)
	}
	if !strings.Contains(out, "->") {
		t.Errorf("output has no edges:\n%s", out)
	}
	if !strings.Contains(out, "x#1 := 1") {
		t.Errorf("output does not label the assignment:\n%s", out)
	}
}

func TestWriteDotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.dot")
	if err := WriteDotFile(path, sampleCFG(t)); err != nil {
		t.Fatalf("WriteDotFile returned %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if !strings.Contains(string(b), "digraph") {
		t.Errorf("file does not contain dot output:\n%s", b)
	}
}
