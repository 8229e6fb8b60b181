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

func posAt(line int) ir.Pos { return ir.Pos{File: "x.go", Line: line} }

func TestSetUnionLatticeLaws(t *testing.T) {
	a := NewSet(NewSourceLabel(posAt(1)))
	b := NewSet(NewSourceLabel(posAt(2)), NewCallLabel(posAt(3)))

	if !a.Union(b).Equal(b.Union(a)) {
		t.Errorf("union should be commutative")
	}
	if !a.Union(a).Equal(a) {
		t.Errorf("union should be idempotent")
	}
	if !a.Union(Bottom).Equal(a) || !Bottom.Union(a).Equal(a) {
		t.Errorf("bottom should be the union identity")
	}
	if got := a.Union(b).Size(); got != 3 {
		t.Errorf("union of disjoint sets should have 3 labels, got %d", got)
	}
}

func TestSetTraceExcludedFromIdentity(t *testing.T) {
	l := NewSourceLabel(posAt(1))
	stepped := l.WithStep(posAt(2), "assigned to x")
	if l.key() != stepped.key() {
		t.Errorf("appending a trace step must not change label identity")
	}
	if !NewSet(l).Equal(NewSet(stepped)) {
		t.Errorf("sets differing only in traces should be equal")
	}
	// the union keeps the receiver's instance, so traces stay stable
	u := NewSet(l).Union(NewSet(stepped))
	if u.Size() != 1 || len(u.Labels()[0].Trace()) != 0 {
		t.Errorf("union should keep the receiver's label instance")
	}
}

func TestSetSubtractIsExact(t *testing.T) {
	la := NewSourceLabel(posAt(1))
	lb := NewSourceLabel(posAt(2))
	s := NewSet(la, lb)
	got := s.Subtract(NewSet(la))
	if got.Size() != 1 || !got.Has(lb) {
		t.Errorf("subtracting A from {A,B} should leave {B}, got %s", got)
	}
	if !s.Subtract(NewSet(NewSourceLabel(posAt(9)))).Equal(s) {
		t.Errorf("subtracting an absent label should be a no-op")
	}
	if !Bottom.Subtract(s).IsEmpty() {
		t.Errorf("subtracting from bottom should stay bottom")
	}
}

func TestSetIsTaintedIgnoresParamLabels(t *testing.T) {
	if NewSet(NewParamLabel(0, ir.NoPos)).IsTainted() {
		t.Errorf("provenance labels alone are not taint")
	}
	if !NewSet(NewParamLabel(0, ir.NoPos), NewSourceLabel(posAt(1))).IsTainted() {
		t.Errorf("a source label makes the set tainted")
	}
}

func TestCallPathChangesIdentityUpToDepthBound(t *testing.T) {
	l := NewSourceLabel(posAt(1))
	viaF := l.WithCallPath("f")
	viaG := l.WithCallPath("g")
	if viaF.key() == viaG.key() {
		t.Errorf("different call paths should be distinct taints")
	}

	deep := l
	for i := 0; i < 10; i++ {
		deep = deep.WithCallPath("h")
	}
	if n := len(deep.CallPath); n == 0 {
		t.Fatalf("call path should have been extended")
	}
	bounded := deep.WithCallPath("i")
	if bounded.key() != deep.key() {
		t.Errorf("call path should stop growing at the depth bound")
	}
}

func TestAsControlReclassifies(t *testing.T) {
	l := NewSourceLabel(posAt(1))
	s := NewSet(l).AsControl()
	if s.Size() != 1 || s.Labels()[0].Class != ControlTaint {
		t.Errorf("expected a control-class label, got %s", s)
	}
	// data and control variants of the same origin are distinct taints
	if NewSet(l).Union(s).Size() != 2 {
		t.Errorf("data and control labels of one origin should coexist")
	}
}
