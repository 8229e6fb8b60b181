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

	"github.com/awslabs/taintflow/analysis/config"
	"github.com/awslabs/taintflow/analysis/ir"
)

func predicateTestConfig(t *testing.T) *config.Config {
	t.Helper()
	c := config.NewDefault()
	c.TaintTrackingProblems = []config.TaintSpec{
		{
			Sources: []config.CodeIdentifier{
				{Package: "example.com/app/secrets", Method: "ReadToken"},
				{Field: "token"},
			},
			Sinks:      []config.CodeIdentifier{{Package: "log", Method: "Printf"}},
			Sanitizers: []config.CodeIdentifier{{Method: "Scrub"}},
			SafeCalls:  []config.CodeIdentifier{{Package: "strconv", Method: "Atoi"}},
		},
	}
	return c
}

func callNode(pkg, name string) *ir.Node {
	return &ir.Node{
		Kind: ir.KindAssign,
		LHS:  ir.LVal{Base: ir.Var{Name: "x", ID: 1}},
		RHS:  ir.NewCall(ir.FuncRef{Package: pkg, Name: name}, nil, ir.NoPos),
	}
}

func TestPredicatesFromConfigCalls(t *testing.T) {
	p := PredicatesFromConfig(predicateTestConfig(t))

	if !p.IsSource(callNode("example.com/app/secrets", "ReadToken")) {
		t.Errorf("configured source call not recognized")
	}
	if p.IsSource(callNode("example.com/app/secrets", "ReadName")) {
		t.Errorf("unrelated call recognized as source")
	}
	if !p.IsSink(callNode("log", "Printf")) {
		t.Errorf("configured sink call not recognized")
	}
	if p.IsSink(callNode("log", "SetOutput")) {
		t.Errorf("unrelated call recognized as sink")
	}
	if !p.IsSafeCall(ir.FuncRef{Package: "strconv", Name: "Atoi"}) {
		t.Errorf("configured safe call not recognized")
	}
	if p.IsSafeCall(ir.FuncRef{Package: "strconv", Name: "Quote"}) {
		t.Errorf("unrelated call recognized as safe")
	}
}

func TestPredicatesFromConfigFieldSource(t *testing.T) {
	p := PredicatesFromConfig(predicateTestConfig(t))

	o := ir.Var{Name: "o", ID: 2}
	read := &ir.Node{
		Kind: ir.KindAssign,
		LHS:  ir.LVal{Base: ir.Var{Name: "x", ID: 1}},
		RHS:  ir.NewFieldRead(o, ".token", ir.NoPos),
	}
	if !p.IsSource(read) {
		t.Errorf("configured field source not recognized")
	}
	other := &ir.Node{
		Kind: ir.KindAssign,
		LHS:  ir.LVal{Base: ir.Var{Name: "x", ID: 1}},
		RHS:  ir.NewFieldRead(o, ".name", ir.NoPos),
	}
	if p.IsSource(other) {
		t.Errorf("unrelated field recognized as source")
	}
}

func TestPredicatesFromConfigSanitizerPropagates(t *testing.T) {
	p := PredicatesFromConfig(predicateTestConfig(t))

	scrub := ir.NewCall(ir.FuncRef{Package: "example.com/app", Name: "Scrub"}, nil, ir.NoPos)
	args := []Set{NewSet(NewSourceLabel(ir.Pos{File: "t.go", Line: 1}))}
	out, ok := p.Propagator(scrub, args)
	if !ok {
		t.Fatalf("sanitizer call did not trigger propagation override")
	}
	if out.IsTainted() {
		t.Errorf("sanitizer output is tainted: %s", out)
	}

	other := ir.NewCall(ir.FuncRef{Package: "example.com/app", Name: "Copy"}, nil, ir.NoPos)
	if _, ok := p.Propagator(other, args); ok {
		t.Errorf("unrelated call triggered propagation override")
	}
}
