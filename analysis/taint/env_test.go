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

func TestEnvStrongUpdateAndSparsity(t *testing.T) {
	x := ir.Var{Name: "x", ID: 1}
	e := NewEnv()
	if !e.Lookup(x).IsEmpty() {
		t.Errorf("an unbound variable is untainted")
	}

	e.Bind(ir.LVal{Base: x}, NewSet(NewSourceLabel(posAt(1))))
	if e.Lookup(x).Size() != 1 {
		t.Errorf("bound taint should be observable")
	}

	e.Bind(ir.LVal{Base: x}, Bottom)
	if e.Size() != 0 {
		t.Errorf("binding bottom should remove the key, env has %d bindings", e.Size())
	}
}

func TestEnvFieldLookupUnions(t *testing.T) {
	x := ir.Var{Name: "x", ID: 1}
	e := NewEnv()
	fieldTaint := NewSet(NewSourceLabel(posAt(1)))
	e.Bind(ir.LVal{Base: x, Path: ".a"}, fieldTaint)

	if !e.LookupLVal(ir.LVal{Base: x, Path: ".b"}).IsEmpty() {
		t.Errorf("a sibling field should be clean")
	}
	if !e.LookupLVal(ir.LVal{Base: x, Path: ".a"}).Equal(fieldTaint) {
		t.Errorf("the exact field should carry its taint")
	}
	if !e.Lookup(x).Equal(fieldTaint) {
		t.Errorf("reading the whole object should union its fields' taint")
	}

	baseTaint := NewSet(NewCallLabel(posAt(2)))
	e.Bind(ir.LVal{Base: x}, baseTaint)
	if got := e.LookupLVal(ir.LVal{Base: x, Path: ".b"}); !got.Equal(baseTaint) {
		t.Errorf("a tainted object taints all of its fields, got %s", got)
	}
}

func TestEnvJoinAndEqual(t *testing.T) {
	x := ir.Var{Name: "x", ID: 1}
	y := ir.Var{Name: "y", ID: 2}
	a := NewEnv()
	b := NewEnv()
	la := NewSet(NewSourceLabel(posAt(1)))
	lb := NewSet(NewSourceLabel(posAt(2)))
	a.Bind(ir.LVal{Base: x}, la)
	b.Bind(ir.LVal{Base: x}, lb)
	b.Bind(ir.LVal{Base: y}, lb)

	j := a.Join(b)
	if j.Lookup(x).Size() != 2 {
		t.Errorf("join should union per-key taints, got %s", j.Lookup(x))
	}
	if !j.Lookup(y).Equal(lb) {
		t.Errorf("keys present on one side only should carry over")
	}
	// join leaves its operands untouched
	if a.Lookup(x).Size() != 1 || a.Size() != 1 {
		t.Errorf("join must not mutate its receiver")
	}

	if !j.Equal(b.Join(a)) {
		t.Errorf("join should be commutative")
	}
	if j.Equal(a) {
		t.Errorf("environments with different bindings should not be equal")
	}
}

func TestEnvControlTaintSlot(t *testing.T) {
	e := NewEnv()
	if !e.ControlTaint().IsEmpty() {
		t.Errorf("control taint starts at bottom")
	}
	ct := NewSet(NewSourceLabel(posAt(1))).AsControl()
	e.SetControlTaint(ct)
	if !e.ControlTaint().Equal(ct) {
		t.Errorf("control taint should round-trip")
	}

	// the control slot survives copies and joins like any binding
	j := NewEnv().Join(e.Copy())
	if !j.ControlTaint().Equal(ct) {
		t.Errorf("control taint should survive copy and join")
	}

	e.SetControlTaint(Bottom)
	if e.Size() != 0 {
		t.Errorf("clearing control taint should drop the reserved key")
	}
}
